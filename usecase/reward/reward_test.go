package reward

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

type fakeRewardRepo struct {
	rewards map[string]*domain.Reward
}

func (r *fakeRewardRepo) GetByID(_ context.Context, id string) (*domain.Reward, error) {
	reward, ok := r.rewards[id]
	if !ok {
		return nil, domain.ErrRewardNotFound
	}
	clone := *reward
	return &clone, nil
}

func (r *fakeRewardRepo) List(_ context.Context, filter repository.RewardFilter) ([]domain.Reward, error) {
	var out []domain.Reward
	for _, reward := range r.rewards {
		if filter.FamilyID != "" && reward.FamilyID != filter.FamilyID {
			continue
		}
		if filter.ActiveOnly && !reward.IsActive {
			continue
		}
		out = append(out, *reward)
	}
	return out, nil
}

func (r *fakeRewardRepo) Create(_ context.Context, reward *domain.Reward) (*domain.Reward, error) {
	clone := *reward
	r.rewards[reward.ID] = &clone
	return reward, nil
}

func (r *fakeRewardRepo) Update(_ context.Context, reward *domain.Reward) error {
	clone := *reward
	r.rewards[reward.ID] = &clone
	return nil
}

func (r *fakeRewardRepo) Delete(_ context.Context, id string) error {
	delete(r.rewards, id)
	return nil
}

type fakeContributionRepo struct {
	contributions []domain.RewardContribution
}

func (r *fakeContributionRepo) ListByReward(_ context.Context, rewardID string) ([]domain.RewardContribution, error) {
	var out []domain.RewardContribution
	for _, c := range r.contributions {
		if c.RewardID == rewardID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContributionRepo) Create(_ context.Context, c *domain.RewardContribution) (*domain.RewardContribution, error) {
	r.contributions = append(r.contributions, *c)
	return c, nil
}

func (r *fakeContributionRepo) UpdateStatusByReward(_ context.Context, rewardID string, from []domain.ContributionStatus, to domain.ContributionStatus, redemptionID string) error {
	for i := range r.contributions {
		c := &r.contributions[i]
		if c.RewardID != rewardID {
			continue
		}
		for _, status := range from {
			if c.Status == status {
				c.Status = to
				if redemptionID != "" {
					c.RedemptionID = redemptionID
				}
				break
			}
		}
	}
	return nil
}

type fakeRedemptionRepo struct {
	redemptions map[string]*domain.RewardRedemption
}

func (r *fakeRedemptionRepo) GetByID(_ context.Context, id string) (*domain.RewardRedemption, error) {
	redemption, ok := r.redemptions[id]
	if !ok {
		return nil, domain.ErrRedemptionNotFound
	}
	clone := *redemption
	return &clone, nil
}

func (r *fakeRedemptionRepo) FindPending(_ context.Context, rewardID string) (*domain.RewardRedemption, error) {
	for _, redemption := range r.redemptions {
		if redemption.RewardID == rewardID && redemption.Status == domain.RedemptionPending {
			clone := *redemption
			return &clone, nil
		}
	}
	return nil, domain.ErrRedemptionNotFound
}

func (r *fakeRedemptionRepo) ListPending(_ context.Context, _ string) ([]domain.RewardRedemption, error) {
	var out []domain.RewardRedemption
	for _, redemption := range r.redemptions {
		if redemption.Status == domain.RedemptionPending {
			out = append(out, *redemption)
		}
	}
	return out, nil
}

func (r *fakeRedemptionRepo) Create(_ context.Context, redemption *domain.RewardRedemption) (*domain.RewardRedemption, error) {
	clone := *redemption
	r.redemptions[redemption.ID] = &clone
	return redemption, nil
}

func (r *fakeRedemptionRepo) Update(_ context.Context, redemption *domain.RewardRedemption) error {
	clone := *redemption
	r.redemptions[redemption.ID] = &clone
	return nil
}

type fakeLedgerRepo struct {
	entries []domain.LedgerEntry
}

func (r *fakeLedgerRepo) BalanceFor(_ context.Context, memberID string) (int, error) {
	sum := 0
	for _, entry := range r.entries {
		if entry.MemberID == memberID {
			sum += entry.PointsDelta
		}
	}
	return sum, nil
}

func (r *fakeLedgerRepo) List(_ context.Context, filter repository.LedgerFilter) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, entry := range r.entries {
		if filter.MemberID != "" && entry.MemberID != filter.MemberID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *fakeLedgerRepo) Append(_ context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	r.entries = append(r.entries, *entry)
	return entry, nil
}

type fakeMemberRepo struct {
	members map[string]*domain.Member
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id string) (*domain.Member, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	clone := *member
	return &clone, nil
}

func (r *fakeMemberRepo) GetByEmail(_ context.Context, _ string) (*domain.Member, error) {
	return nil, domain.ErrMemberNotFound
}

func (r *fakeMemberRepo) ListByFamily(_ context.Context, _ string) ([]domain.Member, error) {
	return nil, nil
}

func (r *fakeMemberRepo) Create(_ context.Context, member *domain.Member) (*domain.Member, error) {
	return member, nil
}

func (r *fakeMemberRepo) ListFamilyIDs(_ context.Context) ([]string, error) {
	return []string{"fam-1"}, nil
}

func (r *fakeMemberRepo) Update(_ context.Context, _ *domain.Member) error { return nil }

type fixture struct {
	uc            *UseCase
	rewards       *fakeRewardRepo
	contributions *fakeContributionRepo
	redemptions   *fakeRedemptionRepo
	ledger        *fakeLedgerRepo
}

var testNow = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	rewards := &fakeRewardRepo{rewards: map[string]*domain.Reward{
		"reward-pool": {ID: "reward-pool", FamilyID: "fam-1", Title: "zoo trip", CostPoints: 100, IsShareable: true, IsActive: true},
		"reward-solo": {ID: "reward-solo", FamilyID: "fam-1", Title: "ice cream", CostPoints: 30, IsActive: true},
	}}
	contributions := &fakeContributionRepo{}
	redemptions := &fakeRedemptionRepo{redemptions: make(map[string]*domain.RewardRedemption)}
	ledger := &fakeLedgerRepo{}
	members := &fakeMemberRepo{members: map[string]*domain.Member{
		"parent-1": {ID: "parent-1", FamilyID: "fam-1", Role: domain.RoleParent, IsActive: true},
		"kid-1":    {ID: "kid-1", FamilyID: "fam-1", Role: domain.RoleChild, IsActive: true},
		"kid-2":    {ID: "kid-2", FamilyID: "fam-1", Role: domain.RoleChild, IsActive: true},
	}}
	uc := New(rewards, contributions, redemptions, ledger, members, nil, nil).
		WithNow(func() time.Time { return testNow })
	return &fixture{uc: uc, rewards: rewards, contributions: contributions, redemptions: redemptions, ledger: ledger}
}

func (f *fixture) credit(memberID string, points int) {
	f.ledger.entries = append(f.ledger.entries, domain.LedgerEntry{
		MemberID: memberID, PointsDelta: points, SourceType: domain.SourceTaskApproval,
	})
}

func TestContributeReservesPointsAndDebitsBalance(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 50)

	progress, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-1", 40)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	if progress.TotalReserved != 40 || progress.RemainingPoints != 60 {
		t.Fatalf("progress = %+v, want 40 reserved / 60 remaining", progress)
	}
	if balance, _ := f.ledger.BalanceFor(context.Background(), "kid-1"); balance != 10 {
		t.Fatalf("balance = %d, want 10", balance)
	}
}

func TestContributeRejectionsAreTyped(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 50)
	f.credit("kid-2", 5)
	if _, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-1", 40); err != nil {
		t.Fatalf("seed contribution: %v", err)
	}

	cases := []struct {
		name    string
		member  string
		points  int
		wantErr error
	}{
		{"over remaining need is not clamped", "kid-2", 65, domain.ErrPoolExceeded},
		{"over balance", "kid-2", 10, domain.ErrInsufficientBalance},
		{"zero points", "kid-2", 0, domain.ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Contribute(context.Background(), "reward-pool", tc.member, tc.points)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestContributeToNonShareableRewardFails(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 50)
	if _, err := f.uc.Contribute(context.Background(), "reward-solo", "kid-1", 10); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("got %v, want CONFLICT", err)
	}
}

func TestFillingPoolOpensRedemption(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 60)
	f.credit("kid-2", 60)

	if _, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-1", 60); err != nil {
		t.Fatalf("first contribution: %v", err)
	}
	progress, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-2", 40)
	if err != nil {
		t.Fatalf("filling contribution: %v", err)
	}
	if progress.RemainingPoints != 0 {
		t.Fatalf("remaining = %d, want 0", progress.RemainingPoints)
	}
	if progress.PendingRedemptionID == "" {
		t.Fatal("filled pool must open a redemption")
	}

	// Contributions moved to submitted, further contributions blocked.
	for _, c := range f.contributions.contributions {
		if c.Status != domain.ContributionSubmitted {
			t.Fatalf("contribution %s status = %s, want submitted", c.ID, c.Status)
		}
	}
	f.credit("kid-1", 100)
	if _, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-1", 1); !errors.Is(err, domain.ErrRedemptionPending) {
		t.Fatalf("got %v, want ErrRedemptionPending", err)
	}
}

func TestApproveRedemptionConsumesContributions(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 100)
	progress, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-1", 100)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	redemption, err := f.uc.ReviewRedemption(context.Background(), progress.PendingRedemptionID, "parent-1", true, "")
	if err != nil {
		t.Fatalf("ReviewRedemption: %v", err)
	}
	if redemption.Status != domain.RedemptionApproved {
		t.Fatalf("status = %s, want approved", redemption.Status)
	}
	for _, c := range f.contributions.contributions {
		if c.Status != domain.ContributionConsumed {
			t.Fatalf("contribution status = %s, want consumed", c.Status)
		}
	}
	// Points stay spent.
	if balance, _ := f.ledger.BalanceFor(context.Background(), "kid-1"); balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}

func TestRejectRedemptionRefundsContributors(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 60)
	f.credit("kid-2", 40)
	if _, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-1", 60); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	progress, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-2", 40)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	redemption, err := f.uc.ReviewRedemption(context.Background(), progress.PendingRedemptionID, "parent-1", false, "not this month")
	if err != nil {
		t.Fatalf("ReviewRedemption: %v", err)
	}
	if redemption.Status != domain.RedemptionRejected {
		t.Fatalf("status = %s, want rejected", redemption.Status)
	}
	for _, c := range f.contributions.contributions {
		if c.Status != domain.ContributionReleased {
			t.Fatalf("contribution status = %s, want released", c.Status)
		}
	}
	// Both contributors got their points back.
	if balance, _ := f.ledger.BalanceFor(context.Background(), "kid-1"); balance != 60 {
		t.Fatalf("kid-1 balance = %d, want 60", balance)
	}
	if balance, _ := f.ledger.BalanceFor(context.Background(), "kid-2"); balance != 40 {
		t.Fatalf("kid-2 balance = %d, want 40", balance)
	}

	// Pool reopens for a fresh cycle.
	fresh, err := f.uc.Progress(context.Background(), "reward-pool")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if fresh.TotalReserved != 0 || fresh.RemainingPoints != 100 || fresh.PendingRedemptionID != "" {
		t.Fatalf("pool did not reset: %+v", fresh)
	}
}

func TestReviewRequiresManager(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 100)
	progress, err := f.uc.Contribute(context.Background(), "reward-pool", "kid-1", 100)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	if _, err := f.uc.ReviewRedemption(context.Background(), progress.PendingRedemptionID, "kid-2", true, ""); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("got %v, want FORBIDDEN", err)
	}
}

func TestDirectRedeem(t *testing.T) {
	f := newFixture()
	f.credit("kid-1", 25)
	if _, err := f.uc.Redeem(context.Background(), "reward-solo", "kid-1"); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}

	f.credit("kid-1", 10)
	redemption, err := f.uc.Redeem(context.Background(), "reward-solo", "kid-1")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if redemption.Status != domain.RedemptionPending {
		t.Fatalf("status = %s, want pending", redemption.Status)
	}
	if balance, _ := f.ledger.BalanceFor(context.Background(), "kid-1"); balance != 5 {
		t.Fatalf("balance = %d, want 5", balance)
	}

	// Pool rewards reject the direct path.
	f.credit("kid-2", 200)
	if _, err := f.uc.Redeem(context.Background(), "reward-pool", "kid-2"); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("got %v, want CONFLICT", err)
	}
}
