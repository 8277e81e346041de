package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/choreboard/backend/repository"
	"github.com/choreboard/backend/usecase/reconcile"
)

// Service assembles the reporting views from stored task history.
type Service struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(tasks repository.TaskRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tasks: tasks, logger: logger, now: time.Now}
}

// WithNow overrides the clock. Tests only.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Overview is the dashboard payload: board counts over the reconciled
// view, completion figures over the raw history.
type Overview struct {
	Board          StatusCounts   `json:"board"`
	History        StatusCounts   `json:"history"`
	CompletionRate int            `json:"completion_rate"`
	WeeklyTrend    []TrendPoint   `json:"weekly_trend"`
	WeekApprovals  map[string]int `json:"week_approvals"`
}

func (s *Service) Overview(ctx context.Context, familyID string) (*Overview, error) {
	history, err := s.tasks.List(ctx, repository.TaskFilter{FamilyID: familyID})
	if err != nil {
		return nil, err
	}
	now := s.now()
	board := reconcile.LatestOccurrences(history)
	weekStart, weekEnd := WeekRange(now)

	return &Overview{
		Board:          CountByStatus(board),
		History:        CountByStatus(history),
		CompletionRate: CompletionRate(history),
		WeeklyTrend:    WeeklyTrend(history, now),
		WeekApprovals:  MemberWeekCounts(history, weekStart, weekEnd),
	}, nil
}

// MemberOverview reports one member's completion figures.
func (s *Service) MemberOverview(ctx context.Context, familyID, memberID string) (*Overview, error) {
	history, err := s.tasks.List(ctx, repository.TaskFilter{FamilyID: familyID, AssigneeID: memberID})
	if err != nil {
		return nil, err
	}
	now := s.now()
	board := reconcile.LatestOccurrences(history)
	weekStart, weekEnd := WeekRange(now)

	return &Overview{
		Board:          CountByStatus(board),
		History:        CountByStatus(history),
		CompletionRate: CompletionRate(history),
		WeeklyTrend:    WeeklyTrend(history, now),
		WeekApprovals:  MemberWeekCounts(history, weekStart, weekEnd),
	}, nil
}
