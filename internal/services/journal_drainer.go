package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/choreboard/backend/internal/infrastructure/journal"
	"github.com/choreboard/backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// DrainerConfig controls how the local event journal is flushed to Postgres.
type DrainerConfig struct {
	Schedule  string
	BatchSize int
	Retention time.Duration
}

// JournalDrainer moves recorded activity events from the local bbolt
// journal into the live_events table, so the feed survives restarts and
// short database outages without losing entries.
type JournalDrainer struct {
	store   *journal.Store
	events  repository.EventRepository
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     DrainerConfig
}

func NewJournalDrainer(
	store *journal.Store,
	events repository.EventRepository,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg DrainerConfig,
) *JournalDrainer {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 10s"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &JournalDrainer{
		store:   store,
		events:  events,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(),
	}

	_, _ = d.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.Drain(ctx); err != nil {
			d.logger.Error("journal drain failed", zap.Error(err))
		}
	})
	_, _ = d.cron.AddFunc("@every 1h", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		d.cleanup(ctx)
	})

	return d
}

// Start launches the cron scheduler.
func (d *JournalDrainer) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("journal drainer started", zap.String("schedule", d.cfg.Schedule))
}

// Stop gracefully stops the scheduler and flushes one final batch.
func (d *JournalDrainer) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	if err := d.Drain(ctx); err != nil {
		d.logger.Warn("final journal drain failed", zap.Error(err))
	}
	d.logger.Info("journal drainer stopped")
}

// Drain flushes up to one batch of journaled events into Postgres.
func (d *JournalDrainer) Drain(ctx context.Context) error {
	if d == nil || d.store == nil {
		return nil
	}
	if d.monitor != nil && !d.monitor.IsOnline() {
		d.logger.Debug("skipping journal drain (offline)")
		return nil
	}

	batch, err := d.store.GetBatch(d.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	if err := d.events.CreateBatch(ctx, batch); err != nil {
		return err
	}
	if err := d.store.Remove(batch); err != nil {
		d.logger.Warn("failed to purge drained journal entries", zap.Error(err))
	}

	d.logger.Debug("journal batch drained", zap.Int("count", len(batch)))
	return nil
}

func (d *JournalDrainer) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-d.cfg.Retention)
	if err := d.store.Cleanup(cutoff); err != nil {
		d.logger.Warn("journal cleanup failed", zap.Error(err))
	}
	removed, err := d.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		d.logger.Warn("event retention sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		d.logger.Info("expired events removed", zap.Int("count", removed))
	}
}
