package domain

import "time"

// RecurrenceKind classifies how often a task repeats.
type RecurrenceKind string

const (
	RecurrenceNone    RecurrenceKind = "none"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
)

func (k RecurrenceKind) IsValid() bool {
	switch k {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// DueMode distinguishes tasks with a fixed deadline from weekly tasks that
// may be completed any time during the week.
type DueMode string

const (
	DueModeExact    DueMode = "exact"
	DueModeFlexible DueMode = "flexible"
)

// TaskStatus follows open -> submitted -> {approved, rejected}; a rejected
// task may be resubmitted, an approved occurrence is terminal.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusSubmitted TaskStatus = "submitted"
	TaskStatusApproved  TaskStatus = "approved"
	TaskStatusRejected  TaskStatus = "rejected"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusSubmitted, TaskStatusApproved, TaskStatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status state machine allows moving to next.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusOpen:
		return next == TaskStatusSubmitted
	case TaskStatusSubmitted:
		return next == TaskStatusApproved || next == TaskStatusRejected
	case TaskStatusRejected:
		return next == TaskStatusSubmitted
	default:
		return false
	}
}

// Task represents one stored occurrence of a chore. Recurring tasks keep
// every historical occurrence as its own row; the reconciler picks the
// visible one.
type Task struct {
	ID              string         `json:"id"`
	FamilyID        string         `json:"family_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	AssigneeID      string         `json:"assignee_id"`
	RecurrenceKind  RecurrenceKind `json:"recurrence_kind"`
	DueMode         DueMode        `json:"due_mode"`
	ActiveWeekdays  []int          `json:"active_weekdays,omitempty"`
	DueAt           *time.Time     `json:"due_at,omitempty"`
	Points          int            `json:"points"`
	PenaltyEnabled  bool           `json:"penalty_enabled"`
	PenaltyPoints   int            `json:"penalty_points"`
	ReminderOffsets []int          `json:"reminder_offsets_minutes"`
	TemplateID      string         `json:"template_id,omitempty"`
	IsActive        bool           `json:"is_active"`
	Status          TaskStatus     `json:"status"`
	CreatedByID     string         `json:"created_by_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsRecurring reports whether the task has a repeating identity.
func (t *Task) IsRecurring() bool {
	return t != nil && t.RecurrenceKind != RecurrenceNone && t.RecurrenceKind != ""
}

// HasFixedDeadline reports whether the task carries an exact due timestamp.
// Weekly tasks in flexible mode are due "any time this week" and have none.
func (t *Task) HasFixedDeadline() bool {
	if t == nil {
		return false
	}
	if t.RecurrenceKind == RecurrenceWeekly && t.DueMode == DueModeFlexible {
		return false
	}
	return t.DueAt != nil
}

// ActivityTime is the authoritative "last touched" marker used by the
// reconciler and analytics: updated_at, else created_at, else due_at,
// else the zero time.
func (t *Task) ActivityTime() time.Time {
	if t == nil {
		return time.Time{}
	}
	if !t.UpdatedAt.IsZero() {
		return t.UpdatedAt
	}
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt
	}
	if t.DueAt != nil {
		return *t.DueAt
	}
	return time.Time{}
}
