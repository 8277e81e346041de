package repository

import (
	"context"

	"github.com/choreboard/backend/domain"
)

type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SpecialTaskTemplate, error)
	ListByFamily(ctx context.Context, familyID string, activeOnly bool) ([]domain.SpecialTaskTemplate, error)
	Create(ctx context.Context, template *domain.SpecialTaskTemplate) (*domain.SpecialTaskTemplate, error)
	Update(ctx context.Context, template *domain.SpecialTaskTemplate) error
	Delete(ctx context.Context, id string) error
}
