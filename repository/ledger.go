package repository

import (
	"context"

	"github.com/choreboard/backend/domain"
)

type LedgerFilter struct {
	FamilyID string
	MemberID string
	Limit    int
	Offset   int
}

type LedgerRepository interface {
	// BalanceFor sums the points deltas of one member.
	BalanceFor(ctx context.Context, memberID string) (int, error)
	List(ctx context.Context, filter LedgerFilter) ([]domain.LedgerEntry, error)
	Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
}
