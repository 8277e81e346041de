package repository

import (
	"context"

	"github.com/choreboard/backend/domain"
)

type MemberRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	ListByFamily(ctx context.Context, familyID string) ([]domain.Member, error)
	// ListFamilyIDs returns the distinct family identifiers with at
	// least one active member.
	ListFamilyIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, member *domain.Member) (*domain.Member, error)
	Update(ctx context.Context, member *domain.Member) error
}
