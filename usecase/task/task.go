// Package task implements the chore lifecycle: creation with derived due
// dates, submission and review, recurrence rollover on approval, special
// template claims, reminder feeds and the overdue penalty sweep.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
	"github.com/choreboard/backend/usecase"
	"github.com/choreboard/backend/usecase/reconcile"
	"github.com/choreboard/backend/usecase/schedule"
)

type UseCase struct {
	tasks     repository.TaskRepository
	templates repository.TemplateRepository
	members   repository.MemberRepository
	ledger    repository.LedgerRepository
	events    usecase.EventSink
	logger    *zap.Logger
	now       func() time.Time
}

func New(
	tasks repository.TaskRepository,
	templates repository.TemplateRepository,
	members repository.MemberRepository,
	ledger repository.LedgerRepository,
	events usecase.EventSink,
	logger *zap.Logger,
) *UseCase {
	if events == nil {
		events = usecase.NopEventSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		templates: templates,
		members:   members,
		ledger:    ledger,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock. Tests only.
func (uc *UseCase) WithNow(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// CreateInput carries the fields a task is created from. The due timestamp
// of recurring tasks is derived from DueTime and the recurrence settings,
// never supplied directly.
type CreateInput struct {
	FamilyID        string
	Title           string
	Description     string
	AssigneeID      string
	RecurrenceKind  domain.RecurrenceKind
	DueMode         domain.DueMode
	ActiveWeekdays  []int
	DueTime         *schedule.TimeOfDay
	DueAt           *time.Time
	Points          int
	PenaltyEnabled  bool
	PenaltyPoints   int
	ReminderOffsets []int
	CreatedByID     string
}

func (uc *UseCase) CreateTask(ctx context.Context, input CreateInput) (*domain.Task, error) {
	now := uc.now()

	if input.Title == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "title is required", domain.ErrInvalidPayload)
	}
	if input.Points < 0 || input.PenaltyPoints < 0 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "points must not be negative", domain.ErrInvalidPayload)
	}
	kind := input.RecurrenceKind
	if kind == "" {
		kind = domain.RecurrenceNone
	}
	if !kind.IsValid() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown recurrence kind", domain.ErrInvalidPayload)
	}
	mode := input.DueMode
	if mode == "" {
		mode = domain.DueModeExact
	}

	if input.PenaltyEnabled && !schedule.SupportsPenalty(kind, mode) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "penalty is not supported for this recurrence", domain.ErrInvalidPayload)
	}
	if !schedule.ValidateReminderOffsets(input.ReminderOffsets, kind, mode) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unsupported reminder offsets", domain.ErrInvalidPayload)
	}

	dueAt, err := deriveDue(kind, mode, input.ActiveWeekdays, input.DueTime, input.DueAt, now)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:              uuid.NewString(),
		FamilyID:        input.FamilyID,
		Title:           input.Title,
		Description:     input.Description,
		AssigneeID:      input.AssigneeID,
		RecurrenceKind:  kind,
		DueMode:         mode,
		ActiveWeekdays:  input.ActiveWeekdays,
		DueAt:           dueAt,
		Points:          input.Points,
		PenaltyEnabled:  input.PenaltyEnabled,
		PenaltyPoints:   input.PenaltyPoints,
		ReminderOffsets: input.ReminderOffsets,
		IsActive:        true,
		Status:          domain.TaskStatusOpen,
		CreatedByID:     input.CreatedByID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, created.FamilyID, domain.EventTaskCreated, created)
	return created, nil
}

// deriveDue computes the stored due timestamp for a new task. Weekly
// flexible tasks carry none; weekly exact tasks anchor on the first
// active weekday.
func deriveDue(kind domain.RecurrenceKind, mode domain.DueMode, weekdays []int, tod *schedule.TimeOfDay, explicit *time.Time, now time.Time) (*time.Time, error) {
	switch kind {
	case domain.RecurrenceDaily:
		if tod == nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "daily tasks need a due time", domain.ErrInvalidPayload)
		}
		due, err := schedule.NextDailyOccurrence(*tod, weekdays, now)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "no valid occurrence for the given weekdays", err)
		}
		return &due, nil
	case domain.RecurrenceWeekly:
		if mode == domain.DueModeFlexible {
			return nil, nil
		}
		if tod == nil || len(weekdays) == 0 {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "weekly tasks need a weekday and due time", domain.ErrInvalidPayload)
		}
		due, err := schedule.NextWeeklyOccurrence(weekdays[0], *tod, now)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "no valid occurrence for the given weekday", err)
		}
		return &due, nil
	case domain.RecurrenceMonthly:
		if explicit == nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "monthly tasks need a due date", domain.ErrInvalidPayload)
		}
		return schedule.AlignDue(explicit, kind, weekdays, now), nil
	default:
		return explicit, nil
	}
}

// UpdateInput holds the editable fields. Nil pointers leave a field as is.
type UpdateInput struct {
	Title           *string
	Description     *string
	AssigneeID      *string
	ActiveWeekdays  []int
	DueTime         *schedule.TimeOfDay
	DueAt           *time.Time
	Points          *int
	PenaltyEnabled  *bool
	PenaltyPoints   *int
	ReminderOffsets []int
}

func (uc *UseCase) UpdateTask(ctx context.Context, id string, input UpdateInput) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	if input.Title != nil {
		if *input.Title == "" {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "title is required", domain.ErrInvalidPayload)
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.AssigneeID != nil {
		task.AssigneeID = *input.AssigneeID
	}
	if input.ActiveWeekdays != nil {
		task.ActiveWeekdays = input.ActiveWeekdays
	}
	if input.Points != nil {
		if *input.Points < 0 {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "points must not be negative", domain.ErrInvalidPayload)
		}
		task.Points = *input.Points
	}
	if input.PenaltyEnabled != nil {
		task.PenaltyEnabled = *input.PenaltyEnabled
	}
	if input.PenaltyPoints != nil {
		task.PenaltyPoints = *input.PenaltyPoints
	}
	if input.ReminderOffsets != nil {
		task.ReminderOffsets = input.ReminderOffsets
	}

	if task.PenaltyEnabled && !schedule.SupportsPenalty(task.RecurrenceKind, task.DueMode) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "penalty is not supported for this recurrence", domain.ErrInvalidPayload)
	}
	if !schedule.ValidateReminderOffsets(task.ReminderOffsets, task.RecurrenceKind, task.DueMode) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unsupported reminder offsets", domain.ErrInvalidPayload)
	}

	// Re-derive the due timestamp when the schedule changed, otherwise
	// just realign a stale one.
	if input.DueTime != nil || input.DueAt != nil || input.ActiveWeekdays != nil {
		explicit := input.DueAt
		if explicit == nil {
			explicit = task.DueAt
		}
		due, err := deriveDue(task.RecurrenceKind, task.DueMode, task.ActiveWeekdays, input.DueTime, explicit, now)
		if err != nil {
			return nil, err
		}
		task.DueAt = due
	} else {
		task.DueAt = schedule.AlignDue(task.DueAt, task.RecurrenceKind, task.ActiveWeekdays, now)
	}

	task.UpdatedAt = now
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.emit(ctx, task.FamilyID, domain.EventTaskUpdated, task)
	return task, nil
}

// SubmitTask moves an open or rejected task to submitted. Only the
// assignee may submit.
func (uc *UseCase) SubmitTask(ctx context.Context, id, memberID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID != memberID {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only the assignee can submit a task")
	}
	if !task.Status.CanTransitionTo(domain.TaskStatusSubmitted) {
		return nil, domain.NewError(domain.ErrCodeConflict, fmt.Sprintf("cannot submit a task in status %q", task.Status))
	}

	task.Status = domain.TaskStatusSubmitted
	task.UpdatedAt = uc.now()
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.emit(ctx, task.FamilyID, domain.EventTaskSubmitted, task)
	return task, nil
}

// ReviewTask resolves a submitted task. Approval credits the assignee and,
// for recurring tasks, spawns the next occurrence as a fresh open row.
// Rejection sends the task back for resubmission.
func (uc *UseCase) ReviewTask(ctx context.Context, id, reviewerID string, approve bool) (*domain.Task, error) {
	reviewer, err := uc.members.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewer.Role.IsManager() {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only managers can review tasks")
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := domain.TaskStatusRejected
	if approve {
		next = domain.TaskStatusApproved
	}
	if !task.Status.CanTransitionTo(next) {
		return nil, domain.NewError(domain.ErrCodeConflict, fmt.Sprintf("cannot move task from %q to %q", task.Status, next))
	}

	now := uc.now()
	task.Status = next
	task.UpdatedAt = now
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if approve {
		if task.Points > 0 && task.AssigneeID != "" {
			if _, err := uc.ledger.Append(ctx, &domain.LedgerEntry{
				ID:          uuid.NewString(),
				FamilyID:    task.FamilyID,
				MemberID:    task.AssigneeID,
				SourceType:  domain.SourceTaskApproval,
				SourceID:    task.ID,
				PointsDelta: task.Points,
				Description: task.Title,
				CreatedByID: reviewerID,
				CreatedAt:   now,
			}); err != nil {
				return nil, err
			}
		}
		if err := uc.spawnNextOccurrence(ctx, task, now); err != nil {
			return nil, err
		}
	}

	uc.emit(ctx, task.FamilyID, domain.EventTaskReviewed, task)
	return task, nil
}

// spawnNextOccurrence creates the follow-up row for a recurring task. The
// approved occurrence stays untouched as history.
func (uc *UseCase) spawnNextOccurrence(ctx context.Context, task *domain.Task, now time.Time) error {
	if !task.IsRecurring() {
		return nil
	}
	// Weekly flexible tasks stay undated; everything else rolls the due
	// date forward from the previous occurrence.
	var nextDue *time.Time
	if task.RecurrenceKind != domain.RecurrenceWeekly || task.DueMode != domain.DueModeFlexible {
		nextDue = schedule.NextOccurrenceAfter(task.DueAt, task.RecurrenceKind, task.ActiveWeekdays, now)
	}

	next := *task
	next.ID = uuid.NewString()
	next.DueAt = nextDue
	next.Status = domain.TaskStatusOpen
	next.CreatedAt = now
	next.UpdatedAt = now

	if _, err := uc.tasks.Create(ctx, &next); err != nil {
		return err
	}
	uc.logger.Info("spawned next occurrence",
		zap.String("task_id", task.ID),
		zap.String("next_id", next.ID),
		zap.String("kind", string(task.RecurrenceKind)))
	return nil
}

// SetActive pauses or resumes a task. Reactivating realigns a stale due
// date so the task does not come back instantly overdue.
func (uc *UseCase) SetActive(ctx context.Context, id string, active bool) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	task.IsActive = active
	if active {
		task.DueAt = schedule.AlignDue(task.DueAt, task.RecurrenceKind, task.ActiveWeekdays, now)
	}
	task.UpdatedAt = now
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.emit(ctx, task.FamilyID, domain.EventTaskUpdated, task)
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	uc.emit(ctx, task.FamilyID, domain.EventTaskDeleted, task)
	return nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// ListTasks returns the reconciled view: one row per recurring identity
// (the latest occurrence) plus every one-off, in stable order.
func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return reconcile.LatestOccurrences(tasks), nil
}

// ListHistory returns raw occurrence rows without deduplication.
func (uc *UseCase) ListHistory(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) emit(ctx context.Context, familyID, eventType string, payload any) {
	if err := uc.events.Record(ctx, familyID, eventType, payload); err != nil {
		uc.logger.Error("failed to record event", zap.String("event_type", eventType), zap.Error(err))
	}
}
