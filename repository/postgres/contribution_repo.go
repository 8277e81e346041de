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

type contributionRepository struct {
	pool *pgxpool.Pool
}

// NewContributionRepository returns a Postgres-backed implementation of ContributionRepository.
func NewContributionRepository(pool *pgxpool.Pool) repository.ContributionRepository {
	return &contributionRepository{pool: pool}
}

func (r *contributionRepository) ListByReward(ctx context.Context, rewardID string) ([]domain.RewardContribution, error) {
	const query = `
	SELECT id, family_id, reward_id, member_id, points_reserved, status, redemption_id, created_at
	FROM reward_contributions
	WHERE reward_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, rewardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributions []domain.RewardContribution
	for rows.Next() {
		var (
			c            domain.RewardContribution
			redemptionID *string
		)
		if err := rows.Scan(
			&c.ID,
			&c.FamilyID,
			&c.RewardID,
			&c.MemberID,
			&c.PointsReserved,
			&c.Status,
			&redemptionID,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if redemptionID != nil {
			c.RedemptionID = *redemptionID
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

func (r *contributionRepository) Create(ctx context.Context, contribution *domain.RewardContribution) (*domain.RewardContribution, error) {
	if contribution == nil {
		return nil, domain.ErrInvalidPayload
	}
	if contribution.ID == "" {
		contribution.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO reward_contributions (id, family_id, reward_id, member_id, points_reserved, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		contribution.ID,
		contribution.FamilyID,
		contribution.RewardID,
		contribution.MemberID,
		contribution.PointsReserved,
		contribution.Status,
	).Scan(&contribution.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, err
	}
	return contribution, nil
}

func (r *contributionRepository) UpdateStatusByReward(ctx context.Context, rewardID string, from []domain.ContributionStatus, to domain.ContributionStatus, redemptionID string) error {
	const query = `
	UPDATE reward_contributions
	SET status = $2,
		redemption_id = COALESCE($3, redemption_id)
	WHERE reward_id = $1
	  AND status = ANY($4)
	`
	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}
	_, err := r.pool.Exec(ctx, query, rewardID, to, nullableID(redemptionID), statuses)
	return err
}
