package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed implementation of EventRepository.
func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) ListSince(ctx context.Context, familyID string, since time.Time, limit int) ([]domain.LiveEvent, error) {
	const query = `
	SELECT id, family_id, event_type, payload, created_at
	FROM live_events
	WHERE family_id = $1 AND created_at > $2
	ORDER BY created_at ASC
	LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, familyID, since, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.LiveEvent
	for rows.Next() {
		var event domain.LiveEvent
		if err := rows.Scan(
			&event.ID,
			&event.FamilyID,
			&event.EventType,
			&event.Payload,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) CreateBatch(ctx context.Context, events []domain.LiveEvent) error {
	if len(events) == 0 {
		return nil
	}

	const query = `
	INSERT INTO live_events (id, family_id, event_type, payload, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(query, event.ID, event.FamilyID, event.EventType, event.Payload, event.CreatedAt)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *eventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	const query = `DELETE FROM live_events WHERE created_at < $1`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
