package repository

import (
	"context"
	"time"

	"github.com/choreboard/backend/domain"
)

type EventRepository interface {
	// ListSince returns events for a family created after the given
	// timestamp, oldest first.
	ListSince(ctx context.Context, familyID string, since time.Time, limit int) ([]domain.LiveEvent, error)
	CreateBatch(ctx context.Context, events []domain.LiveEvent) error
	// DeleteOlderThan prunes delivered events past their retention window.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
