package task

import (
	"context"
	"testing"
	"time"

	"github.com/choreboard/backend/domain"
)

func seedTask(f *fixture, task domain.Task) {
	_, _ = f.tasks.Create(context.Background(), &task)
}

func TestApplyOverduePenalties(t *testing.T) {
	f := newFixture(monday) // Monday 2026-02-09 12:00
	missed := time.Date(2026, 2, 8, 18, 0, 0, 0, time.UTC)

	seedTask(f, domain.Task{
		ID: "task-missed", FamilyID: "fam-1", Title: "dishes", AssigneeID: "kid-1",
		RecurrenceKind: domain.RecurrenceDaily, DueMode: domain.DueModeExact,
		DueAt: &missed, PenaltyEnabled: true, PenaltyPoints: 5,
		IsActive: true, Status: domain.TaskStatusOpen,
		CreatedAt: missed, UpdatedAt: missed,
	})
	// Submitted tasks are not penalized even when overdue.
	seedTask(f, domain.Task{
		ID: "task-submitted", FamilyID: "fam-1", Title: "laundry", AssigneeID: "kid-1",
		RecurrenceKind: domain.RecurrenceDaily, DueMode: domain.DueModeExact,
		DueAt: &missed, PenaltyEnabled: true, PenaltyPoints: 5,
		IsActive: true, Status: domain.TaskStatusSubmitted,
		CreatedAt: missed, UpdatedAt: missed,
	})
	// Penalty disabled.
	seedTask(f, domain.Task{
		ID: "task-no-penalty", FamilyID: "fam-1", Title: "vacuum", AssigneeID: "kid-1",
		RecurrenceKind: domain.RecurrenceDaily, DueMode: domain.DueModeExact,
		DueAt: &missed, IsActive: true, Status: domain.TaskStatusOpen,
		CreatedAt: missed, UpdatedAt: missed,
	})

	applied, err := f.uc.ApplyOverduePenalties(context.Background(), "fam-1")
	if err != nil {
		t.Fatalf("ApplyOverduePenalties: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}

	balance, _ := f.ledger.BalanceFor(context.Background(), "kid-1")
	if balance != -5 {
		t.Fatalf("balance = %d, want -5", balance)
	}

	// The missed occurrence rolled forward, so a second sweep is a no-op.
	swept, _ := f.tasks.GetByID(context.Background(), "task-missed")
	if swept.DueAt == nil || !swept.DueAt.After(monday) {
		t.Fatalf("due not rolled forward: %v", swept.DueAt)
	}
	applied, err = f.uc.ApplyOverduePenalties(context.Background(), "fam-1")
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if applied != 0 {
		t.Fatalf("second sweep applied = %d, want 0", applied)
	}
}

func TestClaimTemplateEnforcesQuota(t *testing.T) {
	f := newFixture(monday)
	f.tpls.templates["tpl-1"] = &domain.SpecialTaskTemplate{
		ID: "tpl-1", FamilyID: "fam-1", Title: "wash the car", Points: 20,
		IntervalType: domain.IntervalWeekly, MaxClaimsPerInterval: 2, IsActive: true,
	}

	first, err := f.uc.ClaimTemplate(context.Background(), "tpl-1", "kid-1")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if first.TemplateID != "tpl-1" || first.Points != 20 || first.RecurrenceKind != domain.RecurrenceNone {
		t.Fatalf("unexpected claimed task: %+v", first)
	}
	if _, err := f.uc.ClaimTemplate(context.Background(), "tpl-1", "kid-1"); err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if _, err := f.uc.ClaimTemplate(context.Background(), "tpl-1", "kid-1"); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("third claim: got %v, want CONFLICT", err)
	}

	// Another member has their own quota.
	if _, err := f.uc.ClaimTemplate(context.Background(), "tpl-1", "parent-1"); err != nil {
		t.Fatalf("claim by other member: %v", err)
	}

	availability, err := f.uc.TemplateAvailability(context.Background(), "fam-1", "kid-1")
	if err != nil {
		t.Fatalf("TemplateAvailability: %v", err)
	}
	if len(availability) != 1 || availability[0].UsedCount != 2 || availability[0].RemainingCount != 0 {
		t.Fatalf("unexpected availability: %+v", availability)
	}
}

func TestUpcomingReminders(t *testing.T) {
	f := newFixture(monday)
	dueSoon := monday.Add(3 * time.Hour) // 15:00
	seedTask(f, domain.Task{
		ID: "task-dated", FamilyID: "fam-1", Title: "homework", AssigneeID: "kid-1",
		RecurrenceKind: domain.RecurrenceDaily, DueMode: domain.DueModeExact,
		DueAt: &dueSoon, ReminderOffsets: []int{15, 60},
		IsActive: true, Status: domain.TaskStatusOpen,
		CreatedAt: monday, UpdatedAt: monday,
	})
	// Flexible weekly: no deadline, no reminders.
	seedTask(f, domain.Task{
		ID: "task-flex", FamilyID: "fam-1", Title: "tidy room", AssigneeID: "kid-1",
		RecurrenceKind: domain.RecurrenceWeekly, DueMode: domain.DueModeFlexible,
		IsActive: true, Status: domain.TaskStatusOpen,
		CreatedAt: monday, UpdatedAt: monday,
	})
	// Paused: no reminders while inactive.
	seedTask(f, domain.Task{
		ID: "task-paused", FamilyID: "fam-1", Title: "water plants", AssigneeID: "kid-1",
		RecurrenceKind: domain.RecurrenceDaily, DueMode: domain.DueModeExact,
		DueAt: &dueSoon, ReminderOffsets: []int{30},
		IsActive: false, Status: domain.TaskStatusOpen,
		CreatedAt: monday, UpdatedAt: monday,
	})
	// Submitted but not yet reviewed: still in the feed.
	dueLater := monday.Add(5 * time.Hour) // 17:00
	seedTask(f, domain.Task{
		ID: "task-submitted", FamilyID: "fam-1", Title: "dishes", AssigneeID: "kid-1",
		RecurrenceKind: domain.RecurrenceDaily, DueMode: domain.DueModeExact,
		DueAt: &dueLater, ReminderOffsets: []int{15},
		IsActive: true, Status: domain.TaskStatusSubmitted,
		CreatedAt: monday, UpdatedAt: monday,
	})

	reminders, err := f.uc.UpcomingReminders(context.Background(), "fam-1")
	if err != nil {
		t.Fatalf("UpcomingReminders: %v", err)
	}
	if len(reminders) != 3 {
		t.Fatalf("expected 3 reminders, got %d", len(reminders))
	}
	// Soonest first: the 60-minute offset fires before the 15-minute one.
	if reminders[0].Offset != 60 || reminders[1].Offset != 15 {
		t.Fatalf("unexpected order: %d, %d", reminders[0].Offset, reminders[1].Offset)
	}
	if got := reminders[0].RemindAt.Format("15:04"); got != "14:00" {
		t.Fatalf("first reminder at %s, want 14:00", got)
	}
	for _, r := range reminders {
		if r.Task.ID == "task-paused" {
			t.Fatalf("paused task produced a reminder")
		}
	}
	if reminders[2].Task.ID != "task-submitted" {
		t.Fatalf("submitted task missing from feed, got %s", reminders[2].Task.ID)
	}
}
