package repository

import (
	"context"
	"time"

	"github.com/choreboard/backend/domain"
)

type TaskFilter struct {
	FamilyID   string
	AssigneeID string
	Status     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// ListDueBetween returns active open tasks whose due date falls in
	// [from, to), for reminder feeds and the penalty sweep.
	ListDueBetween(ctx context.Context, familyID string, from, to time.Time) ([]domain.Task, error)
	// CountTemplateClaims counts occurrences generated from a template for
	// one member within [from, to).
	CountTemplateClaims(ctx context.Context, templateID, memberID string, from, to time.Time) (int, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
