package repository

import (
	"context"

	"github.com/choreboard/backend/domain"
)

type RewardFilter struct {
	FamilyID   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type RewardRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reward, error)
	List(ctx context.Context, filter RewardFilter) ([]domain.Reward, error)
	Create(ctx context.Context, reward *domain.Reward) (*domain.Reward, error)
	Update(ctx context.Context, reward *domain.Reward) error
	Delete(ctx context.Context, id string) error
}

type ContributionRepository interface {
	ListByReward(ctx context.Context, rewardID string) ([]domain.RewardContribution, error)
	Create(ctx context.Context, contribution *domain.RewardContribution) (*domain.RewardContribution, error)
	// UpdateStatusByReward rewrites the status of every contribution in
	// the given statuses, linking them to a redemption when redemptionID
	// is non-empty.
	UpdateStatusByReward(ctx context.Context, rewardID string, from []domain.ContributionStatus, to domain.ContributionStatus, redemptionID string) error
}

type RedemptionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RewardRedemption, error)
	// FindPending returns the pending redemption for a reward, or
	// domain.ErrRedemptionNotFound when there is none.
	FindPending(ctx context.Context, rewardID string) (*domain.RewardRedemption, error)
	ListPending(ctx context.Context, familyID string) ([]domain.RewardRedemption, error)
	Create(ctx context.Context, redemption *domain.RewardRedemption) (*domain.RewardRedemption, error)
	Update(ctx context.Context, redemption *domain.RewardRedemption) error
}
