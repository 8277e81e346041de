// Package points exposes balances, the ledger history and manual
// adjustments. A balance is never stored: it is always the sum of the
// member's ledger deltas.
package points

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
	"github.com/choreboard/backend/usecase"
)

type UseCase struct {
	ledger  repository.LedgerRepository
	members repository.MemberRepository
	events  usecase.EventSink
	logger  *zap.Logger
	now     func() time.Time
}

func New(ledger repository.LedgerRepository, members repository.MemberRepository, events usecase.EventSink, logger *zap.Logger) *UseCase {
	if events == nil {
		events = usecase.NopEventSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		ledger:  ledger,
		members: members,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// WithNow overrides the clock. Tests only.
func (uc *UseCase) WithNow(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// MemberBalance pairs a member with their current balance.
type MemberBalance struct {
	Member  domain.Member `json:"member"`
	Balance int           `json:"balance"`
}

func (uc *UseCase) Balance(ctx context.Context, memberID string) (int, error) {
	if _, err := uc.members.GetByID(ctx, memberID); err != nil {
		return 0, err
	}
	return uc.ledger.BalanceFor(ctx, memberID)
}

// FamilyBalances returns every active member's balance.
func (uc *UseCase) FamilyBalances(ctx context.Context, familyID string) ([]MemberBalance, error) {
	members, err := uc.members.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	out := make([]MemberBalance, 0, len(members))
	for _, m := range members {
		if !m.IsActive {
			continue
		}
		balance, err := uc.ledger.BalanceFor(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, MemberBalance{Member: m, Balance: balance})
	}
	return out, nil
}

func (uc *UseCase) History(ctx context.Context, filter repository.LedgerFilter) ([]domain.LedgerEntry, error) {
	return uc.ledger.List(ctx, filter)
}

// Adjust applies a manual correction by a manager. The delta may be
// negative; a reason is mandatory so the history stays auditable.
func (uc *UseCase) Adjust(ctx context.Context, memberID, adjusterID string, delta int, reason string) (*domain.LedgerEntry, error) {
	if delta == 0 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "adjustment delta must not be zero", domain.ErrInvalidPayload)
	}
	if reason == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "adjustment reason is required", domain.ErrInvalidPayload)
	}

	adjuster, err := uc.members.GetByID(ctx, adjusterID)
	if err != nil {
		return nil, err
	}
	if !adjuster.Role.IsManager() {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only managers can adjust balances")
	}
	member, err := uc.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	entry, err := uc.ledger.Append(ctx, &domain.LedgerEntry{
		ID:          uuid.NewString(),
		FamilyID:    member.FamilyID,
		MemberID:    member.ID,
		SourceType:  domain.SourceManualAdjustment,
		SourceID:    adjusterID,
		PointsDelta: delta,
		Description: reason,
		CreatedByID: adjusterID,
		CreatedAt:   uc.now(),
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("balance adjusted",
		zap.String("member_id", member.ID),
		zap.Int("delta", delta))
	uc.emit(ctx, member.FamilyID, domain.EventPointsAdjusted, entry)
	return entry, nil
}

func (uc *UseCase) emit(ctx context.Context, familyID, eventType string, payload any) {
	if err := uc.events.Record(ctx, familyID, eventType, payload); err != nil {
		uc.logger.Error("failed to record event", zap.String("event_type", eventType), zap.Error(err))
	}
}
