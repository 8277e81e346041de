package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
	"github.com/choreboard/backend/usecase/schedule"
)

type fakeTaskRepo struct {
	tasks map[string]*domain.Task
	order []string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, id := range r.order {
		task := r.tasks[id]
		if filter.FamilyID != "" && task.FamilyID != filter.FamilyID {
			continue
		}
		if filter.AssigneeID != "" && task.AssigneeID != filter.AssigneeID {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeTaskRepo) ListDueBetween(_ context.Context, familyID string, from, to time.Time) ([]domain.Task, error) {
	var out []domain.Task
	for _, id := range r.order {
		task := r.tasks[id]
		if task.FamilyID != familyID || task.DueAt == nil {
			continue
		}
		if task.DueAt.Before(from) || !task.DueAt.Before(to) {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeTaskRepo) CountTemplateClaims(_ context.Context, templateID, memberID string, from, to time.Time) (int, error) {
	count := 0
	for _, id := range r.order {
		task := r.tasks[id]
		if task.TemplateID != templateID || task.AssigneeID != memberID {
			continue
		}
		if task.CreatedAt.Before(from) || !task.CreatedAt.Before(to) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	clone := *task
	r.tasks[task.ID] = &clone
	r.order = append(r.order, task.ID)
	return task, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeTemplateRepo struct {
	templates map[string]*domain.SpecialTaskTemplate
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id string) (*domain.SpecialTaskTemplate, error) {
	tpl, ok := r.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	clone := *tpl
	return &clone, nil
}

func (r *fakeTemplateRepo) ListByFamily(_ context.Context, familyID string, activeOnly bool) ([]domain.SpecialTaskTemplate, error) {
	var out []domain.SpecialTaskTemplate
	for _, tpl := range r.templates {
		if tpl.FamilyID != familyID {
			continue
		}
		if activeOnly && !tpl.IsActive {
			continue
		}
		out = append(out, *tpl)
	}
	return out, nil
}

func (r *fakeTemplateRepo) Create(_ context.Context, tpl *domain.SpecialTaskTemplate) (*domain.SpecialTaskTemplate, error) {
	clone := *tpl
	r.templates[tpl.ID] = &clone
	return tpl, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, tpl *domain.SpecialTaskTemplate) error {
	clone := *tpl
	r.templates[tpl.ID] = &clone
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	delete(r.templates, id)
	return nil
}

type fakeMemberRepo struct {
	members map[string]*domain.Member
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id string) (*domain.Member, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	clone := *member
	return &clone, nil
}

func (r *fakeMemberRepo) GetByEmail(_ context.Context, email string) (*domain.Member, error) {
	for _, member := range r.members {
		if member.Email == email {
			clone := *member
			return &clone, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (r *fakeMemberRepo) ListByFamily(_ context.Context, familyID string) ([]domain.Member, error) {
	var out []domain.Member
	for _, member := range r.members {
		if member.FamilyID == familyID {
			out = append(out, *member)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) ListFamilyIDs(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, member := range r.members {
		if member.IsActive && !seen[member.FamilyID] {
			seen[member.FamilyID] = true
			out = append(out, member.FamilyID)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Create(_ context.Context, member *domain.Member) (*domain.Member, error) {
	clone := *member
	r.members[member.ID] = &clone
	return member, nil
}

func (r *fakeMemberRepo) Update(_ context.Context, member *domain.Member) error {
	clone := *member
	r.members[member.ID] = &clone
	return nil
}

type fakeLedgerRepo struct {
	entries []domain.LedgerEntry
}

func (r *fakeLedgerRepo) BalanceFor(_ context.Context, memberID string) (int, error) {
	sum := 0
	for _, entry := range r.entries {
		if entry.MemberID == memberID {
			sum += entry.PointsDelta
		}
	}
	return sum, nil
}

func (r *fakeLedgerRepo) List(_ context.Context, filter repository.LedgerFilter) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, entry := range r.entries {
		if filter.MemberID != "" && entry.MemberID != filter.MemberID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *fakeLedgerRepo) Append(_ context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	r.entries = append(r.entries, *entry)
	return entry, nil
}

type fixture struct {
	uc      *UseCase
	tasks   *fakeTaskRepo
	ledger  *fakeLedgerRepo
	members *fakeMemberRepo
	tpls    *fakeTemplateRepo
}

// monday is 2026-02-09, a Monday.
var monday = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func newFixture(now time.Time) *fixture {
	tasks := newFakeTaskRepo()
	tpls := &fakeTemplateRepo{templates: make(map[string]*domain.SpecialTaskTemplate)}
	members := &fakeMemberRepo{members: map[string]*domain.Member{
		"parent-1": {ID: "parent-1", FamilyID: "fam-1", Role: domain.RoleParent, IsActive: true},
		"kid-1":    {ID: "kid-1", FamilyID: "fam-1", Role: domain.RoleChild, IsActive: true},
	}}
	ledger := &fakeLedgerRepo{}
	uc := New(tasks, tpls, members, ledger, nil, nil).WithNow(func() time.Time { return now })
	return &fixture{uc: uc, tasks: tasks, ledger: ledger, members: members, tpls: tpls}
}

func TestCreateTaskDerivesDailyDue(t *testing.T) {
	f := newFixture(monday) // Monday 12:00
	created, err := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID:       "fam-1",
		Title:          "dishes",
		AssigneeID:     "kid-1",
		RecurrenceKind: domain.RecurrenceDaily,
		DueTime:        &schedule.TimeOfDay{Hour: 18, Minute: 0},
		ActiveWeekdays: []int{schedule.Monday, schedule.Wednesday, schedule.Friday},
		Points:         10,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.DueAt == nil {
		t.Fatal("due date not derived")
	}
	if got := created.DueAt.Format("2006-01-02 15:04"); got != "2026-02-09 18:00" {
		t.Fatalf("due = %s, want 2026-02-09 18:00", got)
	}
	if created.Status != domain.TaskStatusOpen {
		t.Fatalf("status = %s, want open", created.Status)
	}
}

func TestCreateTaskWeeklyFlexibleHasNoDue(t *testing.T) {
	f := newFixture(monday)
	created, err := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID:       "fam-1",
		Title:          "tidy room",
		AssigneeID:     "kid-1",
		RecurrenceKind: domain.RecurrenceWeekly,
		DueMode:        domain.DueModeFlexible,
		Points:         5,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.DueAt != nil {
		t.Fatalf("flexible weekly task must not carry a due date, got %v", created.DueAt)
	}
}

func TestCreateTaskRejectsEmptyWeekdaySet(t *testing.T) {
	f := newFixture(monday)
	_, err := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID:       "fam-1",
		Title:          "dishes",
		RecurrenceKind: domain.RecurrenceDaily,
		DueTime:        &schedule.TimeOfDay{Hour: 18, Minute: 0},
		ActiveWeekdays: []int{},
	})
	if !errors.Is(err, domain.ErrUnschedulable) {
		t.Fatalf("got %v, want ErrUnschedulable", err)
	}
}

func TestCreateTaskRejectsUnsupportedPenalty(t *testing.T) {
	f := newFixture(monday)
	_, err := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID:       "fam-1",
		Title:          "tidy room",
		RecurrenceKind: domain.RecurrenceWeekly,
		DueMode:        domain.DueModeFlexible,
		PenaltyEnabled: true,
		PenaltyPoints:  5,
	})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("got %v, want INVALID domain error", err)
	}
}

func TestCreateTaskRejectsDisallowedReminderOffsets(t *testing.T) {
	f := newFixture(monday)
	cases := []struct {
		name    string
		kind    domain.RecurrenceKind
		mode    domain.DueMode
		offsets []int
		due     *schedule.TimeOfDay
		days    []int
	}{
		{
			name:    "daily rejects day-level offsets",
			kind:    domain.RecurrenceDaily,
			mode:    domain.DueModeExact,
			offsets: []int{1440},
			due:     &schedule.TimeOfDay{Hour: 18},
			days:    []int{0, 2, 4},
		},
		{
			name:    "weekly flexible rejects any offset",
			kind:    domain.RecurrenceWeekly,
			mode:    domain.DueModeFlexible,
			offsets: []int{15},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateTask(context.Background(), CreateInput{
				FamilyID:        "fam-1",
				Title:           "trash",
				RecurrenceKind:  tc.kind,
				DueMode:         tc.mode,
				ActiveWeekdays:  tc.days,
				DueTime:         tc.due,
				ReminderOffsets: tc.offsets,
			})
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("got %v, want INVALID domain error", err)
			}
		})
	}
}

func TestUpdateTaskRejectsDisallowedReminderOffsets(t *testing.T) {
	f := newFixture(monday)
	created, err := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID:       "fam-1",
		Title:          "dishes",
		RecurrenceKind: domain.RecurrenceDaily,
		DueMode:        domain.DueModeExact,
		ActiveWeekdays: []int{0, 2, 4},
		DueTime:        &schedule.TimeOfDay{Hour: 18},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	_, err = f.uc.UpdateTask(context.Background(), created.ID, UpdateInput{
		ReminderOffsets: []int{2880},
	})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("got %v, want INVALID domain error", err)
	}

	_, err = f.uc.UpdateTask(context.Background(), created.ID, UpdateInput{
		ReminderOffsets: []int{15, 60},
	})
	if err != nil {
		t.Fatalf("UpdateTask with allowed offsets: %v", err)
	}
}

func TestSubmitRequiresAssignee(t *testing.T) {
	f := newFixture(monday)
	created, err := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID: "fam-1", Title: "one-off", AssigneeID: "kid-1", Points: 5,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := f.uc.SubmitTask(context.Background(), created.ID, "parent-1"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("submit by non-assignee: got %v, want FORBIDDEN", err)
	}
	submitted, err := f.uc.SubmitTask(context.Background(), created.ID, "kid-1")
	if err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}
	if submitted.Status != domain.TaskStatusSubmitted {
		t.Fatalf("status = %s, want submitted", submitted.Status)
	}
	// Double submission is a conflict.
	if _, err := f.uc.SubmitTask(context.Background(), created.ID, "kid-1"); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("second submit: got %v, want CONFLICT", err)
	}
}

func TestApproveCreditsAndSpawnsNextOccurrence(t *testing.T) {
	f := newFixture(monday)
	created, err := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID:       "fam-1",
		Title:          "dishes",
		AssigneeID:     "kid-1",
		RecurrenceKind: domain.RecurrenceDaily,
		DueTime:        &schedule.TimeOfDay{Hour: 18, Minute: 0},
		ActiveWeekdays: []int{schedule.Monday, schedule.Wednesday},
		Points:         10,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := f.uc.SubmitTask(context.Background(), created.ID, "kid-1"); err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}

	reviewed, err := f.uc.ReviewTask(context.Background(), created.ID, "parent-1", true)
	if err != nil {
		t.Fatalf("ReviewTask: %v", err)
	}
	if reviewed.Status != domain.TaskStatusApproved {
		t.Fatalf("status = %s, want approved", reviewed.Status)
	}

	balance, _ := f.ledger.BalanceFor(context.Background(), "kid-1")
	if balance != 10 {
		t.Fatalf("balance = %d, want 10", balance)
	}

	// History keeps the approved row and adds a fresh open occurrence on
	// the next active weekday.
	all, _ := f.tasks.List(context.Background(), repository.TaskFilter{FamilyID: "fam-1"})
	if len(all) != 2 {
		t.Fatalf("expected 2 occurrence rows, got %d", len(all))
	}
	next := all[1]
	if next.Status != domain.TaskStatusOpen {
		t.Fatalf("next status = %s, want open", next.Status)
	}
	if got := next.DueAt.Format("2006-01-02 15:04"); got != "2026-02-11 18:00" {
		t.Fatalf("next due = %s, want 2026-02-11 18:00", got)
	}
}

func TestRejectAllowsResubmission(t *testing.T) {
	f := newFixture(monday)
	created, _ := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID: "fam-1", Title: "one-off", AssigneeID: "kid-1", Points: 5,
	})
	if _, err := f.uc.SubmitTask(context.Background(), created.ID, "kid-1"); err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}

	rejected, err := f.uc.ReviewTask(context.Background(), created.ID, "parent-1", false)
	if err != nil {
		t.Fatalf("ReviewTask: %v", err)
	}
	if rejected.Status != domain.TaskStatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	// No credit, no spawned occurrence.
	if balance, _ := f.ledger.BalanceFor(context.Background(), "kid-1"); balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
	if _, err := f.uc.SubmitTask(context.Background(), created.ID, "kid-1"); err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
}

func TestReviewRequiresManager(t *testing.T) {
	f := newFixture(monday)
	created, _ := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID: "fam-1", Title: "one-off", AssigneeID: "kid-1", Points: 5,
	})
	if _, err := f.uc.SubmitTask(context.Background(), created.ID, "kid-1"); err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}
	if _, err := f.uc.ReviewTask(context.Background(), created.ID, "kid-1", true); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("review by child: got %v, want FORBIDDEN", err)
	}
}

func TestApproveIsTerminal(t *testing.T) {
	f := newFixture(monday)
	created, _ := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID: "fam-1", Title: "one-off", AssigneeID: "kid-1", Points: 5,
	})
	_, _ = f.uc.SubmitTask(context.Background(), created.ID, "kid-1")
	if _, err := f.uc.ReviewTask(context.Background(), created.ID, "parent-1", true); err != nil {
		t.Fatalf("ReviewTask: %v", err)
	}
	if _, err := f.uc.SubmitTask(context.Background(), created.ID, "kid-1"); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("submit after approval: got %v, want CONFLICT", err)
	}
	if _, err := f.uc.ReviewTask(context.Background(), created.ID, "parent-1", false); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("re-review after approval: got %v, want CONFLICT", err)
	}
}

func TestListTasksReturnsReconciledView(t *testing.T) {
	f := newFixture(monday)
	created, _ := f.uc.CreateTask(context.Background(), CreateInput{
		FamilyID:       "fam-1",
		Title:          "dishes",
		AssigneeID:     "kid-1",
		RecurrenceKind: domain.RecurrenceDaily,
		DueTime:        &schedule.TimeOfDay{Hour: 18, Minute: 0},
		ActiveWeekdays: []int{schedule.Monday, schedule.Tuesday},
		Points:         10,
	})
	_, _ = f.uc.SubmitTask(context.Background(), created.ID, "kid-1")
	if _, err := f.uc.ReviewTask(context.Background(), created.ID, "parent-1", true); err != nil {
		t.Fatalf("ReviewTask: %v", err)
	}

	visible, err := f.uc.ListTasks(context.Background(), repository.TaskFilter{FamilyID: "fam-1"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("reconciled view has %d rows, want 1", len(visible))
	}
	if visible[0].Status != domain.TaskStatusOpen {
		t.Fatalf("visible occurrence status = %s, want the fresh open row", visible[0].Status)
	}

	history, _ := f.uc.ListHistory(context.Background(), repository.TaskFilter{FamilyID: "fam-1"})
	if len(history) != 2 {
		t.Fatalf("history has %d rows, want 2", len(history))
	}
}

func TestSetActiveRealignsStaleDue(t *testing.T) {
	f := newFixture(monday)
	stale := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC) // a Monday five weeks back
	task := &domain.Task{
		ID:             "task-stale",
		FamilyID:       "fam-1",
		Title:          "laundry",
		AssigneeID:     "kid-1",
		RecurrenceKind: domain.RecurrenceWeekly,
		DueMode:        domain.DueModeExact,
		DueAt:          &stale,
		Status:         domain.TaskStatusOpen,
		CreatedAt:      stale,
		UpdatedAt:      stale,
	}
	_, _ = f.tasks.Create(context.Background(), task)

	resumed, err := f.uc.SetActive(context.Background(), "task-stale", true)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if got := resumed.DueAt.Format("2006-01-02 15:04"); got != "2026-02-09 18:00" {
		t.Fatalf("realigned due = %s, want 2026-02-09 18:00", got)
	}
}
