package task

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/usecase/schedule"
)

// ApplyOverduePenalties debits members for penalty-enabled tasks whose due
// date passed while still open, then rolls each task to its next
// occurrence so the penalty fires at most once per missed deadline.
// Returns the number of penalties applied. Run periodically by the
// background sweeper.
func (uc *UseCase) ApplyOverduePenalties(ctx context.Context, familyID string) (int, error) {
	now := uc.now()
	// The sweep looks back far enough to catch tasks missed while the
	// service was down.
	tasks, err := uc.tasks.ListDueBetween(ctx, familyID, now.AddDate(0, -1, 0), now)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range tasks {
		task := tasks[i]
		if !task.PenaltyEnabled || task.PenaltyPoints <= 0 || task.AssigneeID == "" {
			continue
		}
		if task.Status != domain.TaskStatusOpen || !task.IsActive {
			continue
		}
		if !task.HasFixedDeadline() || !task.DueAt.Before(now) {
			continue
		}
		if !schedule.SupportsPenalty(task.RecurrenceKind, task.DueMode) {
			continue
		}

		if _, err := uc.ledger.Append(ctx, &domain.LedgerEntry{
			ID:          uuid.NewString(),
			FamilyID:    task.FamilyID,
			MemberID:    task.AssigneeID,
			SourceType:  domain.SourceTaskPenalty,
			SourceID:    task.ID,
			PointsDelta: -task.PenaltyPoints,
			Description: task.Title,
			CreatedAt:   now,
		}); err != nil {
			return applied, err
		}

		// Advance the missed occurrence instead of leaving it overdue,
		// so the next sweep does not charge it again.
		task.DueAt = schedule.AlignDue(task.DueAt, task.RecurrenceKind, task.ActiveWeekdays, now)
		task.UpdatedAt = now
		if err := uc.tasks.Update(ctx, &task); err != nil {
			return applied, err
		}

		applied++
		uc.logger.Info("penalty applied",
			zap.String("task_id", task.ID),
			zap.String("member_id", task.AssigneeID),
			zap.Int("points", task.PenaltyPoints))
		uc.emit(ctx, task.FamilyID, domain.EventTaskPenalty, task)
	}
	return applied, nil
}
