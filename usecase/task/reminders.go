package task

import (
	"context"
	"sort"
	"time"

	"github.com/choreboard/backend/domain"
)

// Reminder is one pending reminder for a dated task: the task and the
// point in time the reminder fires.
type Reminder struct {
	Task     domain.Task `json:"task"`
	RemindAt time.Time   `json:"remind_at"`
	Offset   int         `json:"offset_minutes"`
}

// reminderLookahead bounds how far into the future the feed looks. The
// largest supported offset is two days, one extra day covers clients that
// poll infrequently.
const reminderLookahead = 3 * 24 * time.Hour

// UpcomingReminders returns reminders due between now and the lookahead
// horizon, soonest first. Flexible weekly tasks never appear: they have no
// deadline to remind about. Paused tasks are skipped; submitted ones stay
// in the feed until they are reviewed.
func (uc *UseCase) UpcomingReminders(ctx context.Context, familyID string) ([]Reminder, error) {
	now := uc.now()
	tasks, err := uc.tasks.ListDueBetween(ctx, familyID, now, now.Add(reminderLookahead))
	if err != nil {
		return nil, err
	}

	var out []Reminder
	for _, task := range tasks {
		if !task.IsActive || !task.HasFixedDeadline() {
			continue
		}
		if task.Status != domain.TaskStatusOpen && task.Status != domain.TaskStatusSubmitted {
			continue
		}
		for _, offset := range task.ReminderOffsets {
			remindAt := task.DueAt.Add(-time.Duration(offset) * time.Minute)
			if remindAt.Before(now) {
				continue
			}
			out = append(out, Reminder{Task: task, RemindAt: remindAt, Offset: offset})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}
