package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/usecase/analytics"
)

// claimWindow returns the half-open interval the template's claim quota
// applies to, in now's location.
func claimWindow(interval domain.ClaimInterval, now time.Time) (time.Time, time.Time) {
	year, month, day := now.Date()
	switch interval {
	case domain.IntervalDaily:
		start := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, 1)
	case domain.IntervalMonthly:
		start := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return analytics.WeekRange(now)
	}
}

// TemplateAvailability reports remaining claims per active template for one
// member in the current interval window.
func (uc *UseCase) TemplateAvailability(ctx context.Context, familyID, memberID string) ([]domain.TemplateAvailability, error) {
	templates, err := uc.templates.ListByFamily(ctx, familyID, true)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	out := make([]domain.TemplateAvailability, 0, len(templates))
	for _, tpl := range templates {
		from, to := claimWindow(tpl.IntervalType, now)
		used, err := uc.tasks.CountTemplateClaims(ctx, tpl.ID, memberID, from, to)
		if err != nil {
			return nil, err
		}
		remaining := tpl.MaxClaimsPerInterval - used
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, domain.TemplateAvailability{
			Template:       tpl,
			UsedCount:      used,
			RemainingCount: remaining,
		})
	}
	return out, nil
}

// ClaimTemplate generates a one-off task from a special template, counting
// the claim against the member's quota for the current interval.
func (uc *UseCase) ClaimTemplate(ctx context.Context, templateID, memberID string) (*domain.Task, error) {
	tpl, err := uc.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return nil, domain.NewError(domain.ErrCodeConflict, "template is not active")
	}
	now := uc.now()

	from, to := claimWindow(tpl.IntervalType, now)
	used, err := uc.tasks.CountTemplateClaims(ctx, tpl.ID, memberID, from, to)
	if err != nil {
		return nil, err
	}
	if used >= tpl.MaxClaimsPerInterval {
		return nil, domain.NewError(domain.ErrCodeConflict, "claim limit reached for the current interval")
	}

	task := &domain.Task{
		ID:             uuid.NewString(),
		FamilyID:       tpl.FamilyID,
		Title:          tpl.Title,
		Description:    tpl.Description,
		AssigneeID:     memberID,
		RecurrenceKind: domain.RecurrenceNone,
		DueMode:        domain.DueModeExact,
		Points:         tpl.Points,
		TemplateID:     tpl.ID,
		IsActive:       true,
		Status:         domain.TaskStatusOpen,
		CreatedByID:    memberID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("template claimed",
		zap.String("template_id", tpl.ID),
		zap.String("member_id", memberID),
		zap.Int("used", used+1))
	uc.emit(ctx, created.FamilyID, domain.EventTaskCreated, created)
	return created, nil
}
