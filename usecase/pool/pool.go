// Package pool derives the shared-funding state of a reward and enforces
// the contribution invariants: remaining need never negative, one pending
// redemption at a time, requests rejected rather than clamped.
package pool

import (
	"sort"

	"github.com/choreboard/backend/domain"
)

// BuildProgress folds a reward's contribution history into the derived
// pooling state for the current cycle. Only reserved and submitted
// contributions count toward the running total; released ones were given
// back and consumed ones belong to a completed redemption.
func BuildProgress(reward *domain.Reward, contributions []domain.RewardContribution, pendingRedemptionID string) domain.ContributionProgress {
	active := make([]domain.RewardContribution, 0, len(contributions))
	for _, c := range contributions {
		if c.Status.IsActive() {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	total := 0
	for _, c := range active {
		total += c.PointsReserved
	}

	remaining := reward.CostPoints - total
	if remaining < 0 {
		remaining = 0
	}

	return domain.ContributionProgress{
		RewardID:            reward.ID,
		CostPoints:          reward.CostPoints,
		TotalReserved:       total,
		RemainingPoints:     remaining,
		PendingRedemptionID: pendingRedemptionID,
		Contributions:       active,
	}
}

// CanContribute validates a contribution request against the pool state
// and the contributor's balance. The returned error is one of the typed
// rejections; nil means the request may proceed.
func CanContribute(progress domain.ContributionProgress, contributorBalance, requestedPoints int) error {
	if progress.PendingRedemptionID != "" {
		return domain.ErrRedemptionPending
	}
	if requestedPoints < 1 {
		return domain.ErrInvalidPayload
	}
	if requestedPoints > progress.RemainingPoints {
		return domain.ErrPoolExceeded
	}
	if requestedPoints > contributorBalance {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// MaxSelectable is the largest contribution a member could make right now.
func MaxSelectable(progress domain.ContributionProgress, contributorBalance int) int {
	max := progress.RemainingPoints
	if contributorBalance < max {
		max = contributorBalance
	}
	if max < 0 {
		return 0
	}
	return max
}
