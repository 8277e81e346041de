package pool

import (
	"errors"
	"testing"
	"time"

	"github.com/choreboard/backend/domain"
)

func contribution(id string, points int, status domain.ContributionStatus, createdAt time.Time) domain.RewardContribution {
	return domain.RewardContribution{
		ID:             id,
		RewardID:       "reward-1",
		MemberID:       "member-" + id,
		PointsReserved: points,
		Status:         status,
		CreatedAt:      createdAt,
	}
}

func TestBuildProgressCountsActiveContributions(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	reward := &domain.Reward{ID: "reward-1", CostPoints: 100}
	contributions := []domain.RewardContribution{
		contribution("a", 40, domain.ContributionReserved, base),
		contribution("b", 30, domain.ContributionReserved, base.Add(time.Minute)),
		contribution("c", 25, domain.ContributionReleased, base.Add(2*time.Minute)),
		contribution("d", 50, domain.ContributionConsumed, base.Add(3*time.Minute)),
	}

	progress := BuildProgress(reward, contributions, "")
	if progress.TotalReserved != 70 {
		t.Fatalf("total reserved = %d, want 70", progress.TotalReserved)
	}
	if progress.RemainingPoints != 30 {
		t.Fatalf("remaining = %d, want 30", progress.RemainingPoints)
	}
	if len(progress.Contributions) != 2 {
		t.Fatalf("expected 2 active contributions, got %d", len(progress.Contributions))
	}
}

func TestBuildProgressOrdersByCreationTime(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	reward := &domain.Reward{ID: "reward-1", CostPoints: 50}
	contributions := []domain.RewardContribution{
		contribution("later", 10, domain.ContributionSubmitted, base.Add(time.Hour)),
		contribution("earlier", 10, domain.ContributionReserved, base),
	}

	progress := BuildProgress(reward, contributions, "")
	if progress.Contributions[0].ID != "earlier" || progress.Contributions[1].ID != "later" {
		t.Fatalf("unexpected order: %s, %s", progress.Contributions[0].ID, progress.Contributions[1].ID)
	}
}

func TestBuildProgressRemainingNeverNegative(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	reward := &domain.Reward{ID: "reward-1", CostPoints: 20}
	contributions := []domain.RewardContribution{
		contribution("a", 15, domain.ContributionReserved, base),
		contribution("b", 15, domain.ContributionSubmitted, base.Add(time.Minute)),
	}

	progress := BuildProgress(reward, contributions, "")
	if progress.RemainingPoints != 0 {
		t.Fatalf("remaining = %d, want 0", progress.RemainingPoints)
	}
	if !progress.Filled() {
		t.Fatal("pool covering the cost must be redeemable")
	}
}

func TestCanContribute(t *testing.T) {
	progress := domain.ContributionProgress{
		RewardID:        "reward-1",
		CostPoints:      100,
		TotalReserved:   70,
		RemainingPoints: 30,
	}

	cases := []struct {
		name      string
		progress  domain.ContributionProgress
		balance   int
		requested int
		wantErr   error
	}{
		{"fits need and balance", progress, 50, 30, nil},
		{"exceeds remaining need", progress, 50, 40, domain.ErrPoolExceeded},
		{"exceeds balance", progress, 5, 10, domain.ErrInsufficientBalance},
		{"zero points", progress, 50, 0, domain.ErrInvalidPayload},
		{"negative points", progress, 50, -3, domain.ErrInvalidPayload},
		{
			"blocked while redemption pending",
			domain.ContributionProgress{RewardID: "reward-1", CostPoints: 100, RemainingPoints: 100, PendingRedemptionID: "red-1"},
			1000, 1, domain.ErrRedemptionPending,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanContribute(tc.progress, tc.balance, tc.requested)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCanContributeRedemptionPendingBeatsEverything(t *testing.T) {
	// Even a perfectly valid request is rejected while a redemption is
	// outstanding.
	progress := domain.ContributionProgress{
		RewardID:            "reward-1",
		CostPoints:          100,
		RemainingPoints:     30,
		PendingRedemptionID: "red-1",
	}
	if err := CanContribute(progress, 30, 30); !errors.Is(err, domain.ErrRedemptionPending) {
		t.Fatalf("got %v, want ErrRedemptionPending", err)
	}
}

func TestMaxSelectable(t *testing.T) {
	progress := domain.ContributionProgress{RemainingPoints: 30}
	cases := []struct {
		balance int
		want    int
	}{
		{50, 30},
		{20, 20},
		{0, 0},
		{-5, 0},
	}
	for _, tc := range cases {
		if got := MaxSelectable(progress, tc.balance); got != tc.want {
			t.Errorf("MaxSelectable(balance=%d) = %d, want %d", tc.balance, got, tc.want)
		}
	}
}
