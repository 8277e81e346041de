package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a Postgres-backed implementation of LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) repository.LedgerRepository {
	return &ledgerRepository{pool: pool}
}

func (r *ledgerRepository) BalanceFor(ctx context.Context, memberID string) (int, error) {
	const query = `
	SELECT COALESCE(SUM(points_delta), 0)
	FROM points_ledger
	WHERE member_id = $1
	`
	var balance int
	if err := r.pool.QueryRow(ctx, query, memberID).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *ledgerRepository) List(ctx context.Context, filter repository.LedgerFilter) ([]domain.LedgerEntry, error) {
	const query = `
	SELECT id, family_id, member_id, source_type, source_id, points_delta,
	       description, created_by_id, created_at
	FROM points_ledger
	WHERE ($1 = '' OR family_id = $1)
	  AND ($2 = '' OR member_id = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.FamilyID, filter.MemberID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			entry     domain.LedgerEntry
			createdBy *string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.FamilyID,
			&entry.MemberID,
			&entry.SourceType,
			&entry.SourceID,
			&entry.PointsDelta,
			&entry.Description,
			&createdBy,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if createdBy != nil {
			entry.CreatedByID = *createdBy
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *ledgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	if entry == nil {
		return nil, domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO points_ledger (id, family_id, member_id, source_type, source_id, points_delta, description, created_by_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.FamilyID,
		entry.MemberID,
		entry.SourceType,
		entry.SourceID,
		entry.PointsDelta,
		entry.Description,
		nullableID(entry.CreatedByID),
	).Scan(&entry.CreatedAt); err != nil {
		return nil, err
	}
	return entry, nil
}
