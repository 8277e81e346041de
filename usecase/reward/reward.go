// Package reward implements the reward catalog, the contribution pool for
// shareable rewards and the redemption review flow.
package reward

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
	"github.com/choreboard/backend/usecase"
	"github.com/choreboard/backend/usecase/pool"
)

type UseCase struct {
	rewards       repository.RewardRepository
	contributions repository.ContributionRepository
	redemptions   repository.RedemptionRepository
	ledger        repository.LedgerRepository
	members       repository.MemberRepository
	events        usecase.EventSink
	logger        *zap.Logger
	now           func() time.Time
}

func New(
	rewards repository.RewardRepository,
	contributions repository.ContributionRepository,
	redemptions repository.RedemptionRepository,
	ledger repository.LedgerRepository,
	members repository.MemberRepository,
	events usecase.EventSink,
	logger *zap.Logger,
) *UseCase {
	if events == nil {
		events = usecase.NopEventSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		rewards:       rewards,
		contributions: contributions,
		redemptions:   redemptions,
		ledger:        ledger,
		members:       members,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// WithNow overrides the clock. Tests only.
func (uc *UseCase) WithNow(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

type CreateInput struct {
	FamilyID    string
	Title       string
	Description string
	CostPoints  int
	IsShareable bool
	CreatedByID string
}

func (uc *UseCase) CreateReward(ctx context.Context, input CreateInput) (*domain.Reward, error) {
	if input.Title == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "title is required", domain.ErrInvalidPayload)
	}
	if input.CostPoints <= 0 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "cost must be positive", domain.ErrInvalidPayload)
	}

	reward := &domain.Reward{
		ID:          uuid.NewString(),
		FamilyID:    input.FamilyID,
		Title:       input.Title,
		Description: input.Description,
		CostPoints:  input.CostPoints,
		IsShareable: input.IsShareable,
		IsActive:    true,
		CreatedByID: input.CreatedByID,
		CreatedAt:   uc.now(),
	}
	created, err := uc.rewards.Create(ctx, reward)
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, created.FamilyID, domain.EventRewardCreated, created)
	return created, nil
}

func (uc *UseCase) GetReward(ctx context.Context, id string) (*domain.Reward, error) {
	return uc.rewards.GetByID(ctx, id)
}

func (uc *UseCase) ListRewards(ctx context.Context, filter repository.RewardFilter) ([]domain.Reward, error) {
	return uc.rewards.List(ctx, filter)
}

func (uc *UseCase) UpdateReward(ctx context.Context, reward *domain.Reward) (*domain.Reward, error) {
	if reward.Title == "" || reward.CostPoints <= 0 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "title and positive cost are required", domain.ErrInvalidPayload)
	}
	if err := uc.rewards.Update(ctx, reward); err != nil {
		return nil, err
	}
	uc.emit(ctx, reward.FamilyID, domain.EventRewardUpdated, reward)
	return reward, nil
}

func (uc *UseCase) DeleteReward(ctx context.Context, id string) error {
	reward, err := uc.rewards.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.rewards.Delete(ctx, id); err != nil {
		return err
	}
	uc.emit(ctx, reward.FamilyID, domain.EventRewardDeleted, reward)
	return nil
}

// Progress returns the derived pooling state for one reward.
func (uc *UseCase) Progress(ctx context.Context, rewardID string) (*domain.ContributionProgress, error) {
	reward, err := uc.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	contributions, err := uc.contributions.ListByReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	pendingID, err := uc.pendingRedemptionID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	progress := pool.BuildProgress(reward, contributions, pendingID)
	return &progress, nil
}

func (uc *UseCase) pendingRedemptionID(ctx context.Context, rewardID string) (string, error) {
	pending, err := uc.redemptions.FindPending(ctx, rewardID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return "", nil
		}
		return "", err
	}
	return pending.ID, nil
}

// Contribute reserves part of the member's balance toward a shareable
// reward. The requested amount is validated against the remaining pool
// need and the live balance and rejected outright when either is
// exceeded. Filling the pool opens a redemption request automatically.
func (uc *UseCase) Contribute(ctx context.Context, rewardID, memberID string, points int) (*domain.ContributionProgress, error) {
	reward, err := uc.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive {
		return nil, domain.NewError(domain.ErrCodeConflict, "reward is not active")
	}
	if !reward.IsShareable {
		return nil, domain.NewError(domain.ErrCodeConflict, "reward does not accept pooled contributions")
	}

	contributions, err := uc.contributions.ListByReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	pendingID, err := uc.pendingRedemptionID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	balance, err := uc.ledger.BalanceFor(ctx, memberID)
	if err != nil {
		return nil, err
	}

	progress := pool.BuildProgress(reward, contributions, pendingID)
	if err := pool.CanContribute(progress, balance, points); err != nil {
		return nil, err
	}

	now := uc.now()
	contribution := &domain.RewardContribution{
		ID:             uuid.NewString(),
		FamilyID:       reward.FamilyID,
		RewardID:       reward.ID,
		MemberID:       memberID,
		PointsReserved: points,
		Status:         domain.ContributionReserved,
		CreatedAt:      now,
	}
	created, err := uc.contributions.Create(ctx, contribution)
	if err != nil {
		return nil, err
	}
	if _, err := uc.ledger.Append(ctx, &domain.LedgerEntry{
		ID:          uuid.NewString(),
		FamilyID:    reward.FamilyID,
		MemberID:    memberID,
		SourceType:  domain.SourceRewardContribution,
		SourceID:    created.ID,
		PointsDelta: -points,
		Description: reward.Title,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	contributions = append(contributions, *created)
	progress = pool.BuildProgress(reward, contributions, pendingID)
	uc.emit(ctx, reward.FamilyID, domain.EventContributionUpdated, progress)

	// A filled pool opens the redemption without a separate request step.
	if progress.Filled() {
		redemption, err := uc.openRedemption(ctx, reward, memberID, now)
		if err != nil {
			return nil, err
		}
		progress.PendingRedemptionID = redemption.ID
	}
	return &progress, nil
}

// openRedemption creates the pending request and moves the active
// contributions to submitted so they can no longer be withdrawn.
func (uc *UseCase) openRedemption(ctx context.Context, reward *domain.Reward, requestedByID string, now time.Time) (*domain.RewardRedemption, error) {
	redemption := &domain.RewardRedemption{
		ID:            uuid.NewString(),
		RewardID:      reward.ID,
		RequestedByID: requestedByID,
		Status:        domain.RedemptionPending,
		RequestedAt:   now,
	}
	created, err := uc.redemptions.Create(ctx, redemption)
	if err != nil {
		return nil, err
	}
	if err := uc.contributions.UpdateStatusByReward(ctx, reward.ID,
		[]domain.ContributionStatus{domain.ContributionReserved},
		domain.ContributionSubmitted, created.ID); err != nil {
		return nil, err
	}
	uc.logger.Info("redemption opened",
		zap.String("reward_id", reward.ID),
		zap.String("redemption_id", created.ID))
	uc.emit(ctx, reward.FamilyID, domain.EventRedeemRequested, created)
	return created, nil
}

// Redeem spends a member's own points on a non-shareable reward in one
// step: the full cost is debited and a pending redemption is opened for
// manager review.
func (uc *UseCase) Redeem(ctx context.Context, rewardID, memberID string) (*domain.RewardRedemption, error) {
	reward, err := uc.rewards.GetByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive {
		return nil, domain.NewError(domain.ErrCodeConflict, "reward is not active")
	}
	if reward.IsShareable {
		return nil, domain.NewError(domain.ErrCodeConflict, "shareable rewards are redeemed through the pool")
	}
	if pendingID, err := uc.pendingRedemptionID(ctx, rewardID); err != nil {
		return nil, err
	} else if pendingID != "" {
		return nil, domain.ErrRedemptionPending
	}

	balance, err := uc.ledger.BalanceFor(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if balance < reward.CostPoints {
		return nil, domain.ErrInsufficientBalance
	}

	now := uc.now()
	contribution := &domain.RewardContribution{
		ID:             uuid.NewString(),
		FamilyID:       reward.FamilyID,
		RewardID:       reward.ID,
		MemberID:       memberID,
		PointsReserved: reward.CostPoints,
		Status:         domain.ContributionReserved,
		CreatedAt:      now,
	}
	if _, err := uc.contributions.Create(ctx, contribution); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.Append(ctx, &domain.LedgerEntry{
		ID:          uuid.NewString(),
		FamilyID:    reward.FamilyID,
		MemberID:    memberID,
		SourceType:  domain.SourceRewardRedemption,
		SourceID:    contribution.ID,
		PointsDelta: -reward.CostPoints,
		Description: reward.Title,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	return uc.openRedemption(ctx, reward, memberID, now)
}

// ReviewRedemption resolves a pending request. Approval consumes the
// submitted contributions for good; rejection releases them and refunds
// every contributor with a compensating ledger entry.
func (uc *UseCase) ReviewRedemption(ctx context.Context, redemptionID, reviewerID string, approve bool, comment string) (*domain.RewardRedemption, error) {
	reviewer, err := uc.members.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewer.Role.IsManager() {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only managers can review redemptions")
	}

	redemption, err := uc.redemptions.GetByID(ctx, redemptionID)
	if err != nil {
		return nil, err
	}
	if redemption.Status != domain.RedemptionPending {
		return nil, domain.NewError(domain.ErrCodeConflict, "redemption has already been reviewed")
	}
	reward, err := uc.rewards.GetByID(ctx, redemption.RewardID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	redemption.ReviewedByID = reviewerID
	redemption.ReviewedAt = &now
	redemption.Comment = comment

	if approve {
		redemption.Status = domain.RedemptionApproved
		if err := uc.contributions.UpdateStatusByReward(ctx, reward.ID,
			[]domain.ContributionStatus{domain.ContributionSubmitted},
			domain.ContributionConsumed, redemption.ID); err != nil {
			return nil, err
		}
	} else {
		redemption.Status = domain.RedemptionRejected
		if err := uc.refundContributors(ctx, reward, redemption.ID, now); err != nil {
			return nil, err
		}
		if err := uc.contributions.UpdateStatusByReward(ctx, reward.ID,
			[]domain.ContributionStatus{domain.ContributionSubmitted},
			domain.ContributionReleased, redemption.ID); err != nil {
			return nil, err
		}
	}

	if err := uc.redemptions.Update(ctx, redemption); err != nil {
		return nil, err
	}
	uc.emit(ctx, reward.FamilyID, domain.EventRedeemReviewed, redemption)
	return redemption, nil
}

// refundContributors appends one compensating credit per submitted
// contribution before the release flips their status.
func (uc *UseCase) refundContributors(ctx context.Context, reward *domain.Reward, redemptionID string, now time.Time) error {
	contributions, err := uc.contributions.ListByReward(ctx, reward.ID)
	if err != nil {
		return err
	}
	for _, c := range contributions {
		if c.Status != domain.ContributionSubmitted {
			continue
		}
		if _, err := uc.ledger.Append(ctx, &domain.LedgerEntry{
			ID:          uuid.NewString(),
			FamilyID:    reward.FamilyID,
			MemberID:    c.MemberID,
			SourceType:  domain.SourceRewardContribution,
			SourceID:    redemptionID,
			PointsDelta: c.PointsReserved,
			Description: reward.Title,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ListPendingRedemptions returns the review queue for managers.
func (uc *UseCase) ListPendingRedemptions(ctx context.Context, familyID string) ([]domain.RewardRedemption, error) {
	return uc.redemptions.ListPending(ctx, familyID)
}

func (uc *UseCase) emit(ctx context.Context, familyID, eventType string, payload any) {
	if err := uc.events.Record(ctx, familyID, eventType, payload); err != nil {
		uc.logger.Error("failed to record event", zap.String("event_type", eventType), zap.Error(err))
	}
}
