package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

type rewardRepository struct {
	pool *pgxpool.Pool
}

// NewRewardRepository returns a Postgres-backed implementation of RewardRepository.
func NewRewardRepository(pool *pgxpool.Pool) repository.RewardRepository {
	return &rewardRepository{pool: pool}
}

const rewardColumns = `
	id, family_id, title, description, cost_points, is_shareable, is_active,
	created_by_id, created_at`

func (r *rewardRepository) GetByID(ctx context.Context, id string) (*domain.Reward, error) {
	const query = `SELECT` + rewardColumns + ` FROM rewards WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanReward(row)
}

func (r *rewardRepository) List(ctx context.Context, filter repository.RewardFilter) ([]domain.Reward, error) {
	const query = `
	SELECT` + rewardColumns + `
	FROM rewards
	WHERE ($1 = '' OR family_id = $1)
	  AND (NOT $2 OR is_active)
	ORDER BY created_at ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.FamilyID, filter.ActiveOnly, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []domain.Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, *reward)
	}
	return rewards, rows.Err()
}

func (r *rewardRepository) Create(ctx context.Context, reward *domain.Reward) (*domain.Reward, error) {
	if reward == nil {
		return nil, domain.ErrInvalidPayload
	}
	if reward.ID == "" {
		reward.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO rewards (id, family_id, title, description, cost_points, is_shareable, is_active, created_by_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		reward.ID,
		reward.FamilyID,
		reward.Title,
		reward.Description,
		reward.CostPoints,
		reward.IsShareable,
		reward.IsActive,
		reward.CreatedByID,
	).Scan(&reward.CreatedAt); err != nil {
		return nil, err
	}
	return reward, nil
}

func (r *rewardRepository) Update(ctx context.Context, reward *domain.Reward) error {
	if reward == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE rewards
	SET title = $2,
		description = $3,
		cost_points = $4,
		is_shareable = $5,
		is_active = $6
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		reward.ID,
		reward.Title,
		reward.Description,
		reward.CostPoints,
		reward.IsShareable,
		reward.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRewardNotFound
	}
	return nil
}

func (r *rewardRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM rewards WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRewardNotFound
	}
	return nil
}

func scanReward(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Reward, error) {
	var reward domain.Reward
	if err := row.Scan(
		&reward.ID,
		&reward.FamilyID,
		&reward.Title,
		&reward.Description,
		&reward.CostPoints,
		&reward.IsShareable,
		&reward.IsActive,
		&reward.CreatedByID,
		&reward.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, err
	}
	return &reward, nil
}
