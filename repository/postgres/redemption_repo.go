package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

type redemptionRepository struct {
	pool *pgxpool.Pool
}

// NewRedemptionRepository returns a Postgres-backed implementation of RedemptionRepository.
func NewRedemptionRepository(pool *pgxpool.Pool) repository.RedemptionRepository {
	return &redemptionRepository{pool: pool}
}

const redemptionColumns = `
	id, reward_id, requested_by_id, status, comment, reviewed_by_id, requested_at, reviewed_at`

func (r *redemptionRepository) GetByID(ctx context.Context, id string) (*domain.RewardRedemption, error) {
	const query = `SELECT` + redemptionColumns + ` FROM reward_redemptions WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanRedemption(row)
}

func (r *redemptionRepository) FindPending(ctx context.Context, rewardID string) (*domain.RewardRedemption, error) {
	const query = `
	SELECT` + redemptionColumns + `
	FROM reward_redemptions
	WHERE reward_id = $1 AND status = 'pending'
	ORDER BY requested_at DESC
	LIMIT 1
	`
	row := r.pool.QueryRow(ctx, query, rewardID)
	return scanRedemption(row)
}

func (r *redemptionRepository) ListPending(ctx context.Context, familyID string) ([]domain.RewardRedemption, error) {
	const query = `
	SELECT rr.id, rr.reward_id, rr.requested_by_id, rr.status, rr.comment,
	       rr.reviewed_by_id, rr.requested_at, rr.reviewed_at
	FROM reward_redemptions rr
	JOIN rewards rw ON rw.id = rr.reward_id
	WHERE rw.family_id = $1 AND rr.status = 'pending'
	ORDER BY rr.requested_at ASC
	`
	rows, err := r.pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var redemptions []domain.RewardRedemption
	for rows.Next() {
		redemption, err := scanRedemption(rows)
		if err != nil {
			return nil, err
		}
		redemptions = append(redemptions, *redemption)
	}
	return redemptions, rows.Err()
}

func (r *redemptionRepository) Create(ctx context.Context, redemption *domain.RewardRedemption) (*domain.RewardRedemption, error) {
	if redemption == nil {
		return nil, domain.ErrInvalidPayload
	}
	if redemption.ID == "" {
		redemption.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO reward_redemptions (id, reward_id, requested_by_id, status, comment)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING requested_at
	`
	if err := r.pool.QueryRow(ctx, query,
		redemption.ID,
		redemption.RewardID,
		redemption.RequestedByID,
		redemption.Status,
		redemption.Comment,
	).Scan(&redemption.RequestedAt); err != nil {
		return nil, err
	}
	return redemption, nil
}

func (r *redemptionRepository) Update(ctx context.Context, redemption *domain.RewardRedemption) error {
	if redemption == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE reward_redemptions
	SET status = $2,
		comment = $3,
		reviewed_by_id = $4,
		reviewed_at = $5
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		redemption.ID,
		redemption.Status,
		redemption.Comment,
		nullableID(redemption.ReviewedByID),
		redemption.ReviewedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRedemptionNotFound
	}
	return nil
}

func scanRedemption(row interface {
	Scan(dest ...interface{}) error
}) (*domain.RewardRedemption, error) {
	var (
		redemption domain.RewardRedemption
		reviewedBy *string
		reviewedAt *time.Time
	)
	if err := row.Scan(
		&redemption.ID,
		&redemption.RewardID,
		&redemption.RequestedByID,
		&redemption.Status,
		&redemption.Comment,
		&reviewedBy,
		&redemption.RequestedAt,
		&reviewedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRedemptionNotFound
		}
		return nil, err
	}
	if reviewedBy != nil {
		redemption.ReviewedByID = *reviewedBy
	}
	redemption.ReviewedAt = reviewedAt
	return &redemption, nil
}
