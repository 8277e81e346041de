package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/choreboard/backend/repository"
	taskUC "github.com/choreboard/backend/usecase/task"
)

// SweeperConfig controls the overdue penalty sweep.
type SweeperConfig struct {
	Schedule string
}

// PenaltySweeper periodically walks every family and applies penalty
// debits for recurring tasks whose deadline passed without a submission.
type PenaltySweeper struct {
	tasks   *taskUC.UseCase
	members repository.MemberRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SweeperConfig
}

func NewPenaltySweeper(
	tasks *taskUC.UseCase,
	members repository.MemberRepository,
	logger *zap.Logger,
	cfg SweeperConfig,
) *PenaltySweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &PenaltySweeper{
		tasks:   tasks,
		members: members,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(),
	}

	_, _ = s.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("penalty sweep failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *PenaltySweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("penalty sweeper started", zap.String("schedule", s.cfg.Schedule))
}

// Stop gracefully stops the scheduler.
func (s *PenaltySweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("penalty sweeper stopped")
}

// Sweep applies overdue penalties across all active families.
func (s *PenaltySweeper) Sweep(ctx context.Context) error {
	families, err := s.members.ListFamilyIDs(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, familyID := range families {
		applied, err := s.tasks.ApplyOverduePenalties(ctx, familyID)
		if err != nil {
			s.logger.Error("family sweep failed",
				zap.String("family_id", familyID),
				zap.Error(err))
			continue
		}
		total += applied
	}

	if total > 0 {
		s.logger.Info("overdue penalties applied", zap.Int("count", total))
	}
	return nil
}
