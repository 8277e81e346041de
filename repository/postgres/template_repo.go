package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository returns a Postgres-backed implementation of TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) repository.TemplateRepository {
	return &templateRepository{pool: pool}
}

const templateColumns = `
	id, family_id, title, description, points, interval_type,
	max_claims_per_interval, is_active, created_by_id, created_at, updated_at`

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.SpecialTaskTemplate, error) {
	const query = `SELECT` + templateColumns + ` FROM special_task_templates WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTemplate(row)
}

func (r *templateRepository) ListByFamily(ctx context.Context, familyID string, activeOnly bool) ([]domain.SpecialTaskTemplate, error) {
	const query = `
	SELECT` + templateColumns + `
	FROM special_task_templates
	WHERE family_id = $1
	  AND (NOT $2 OR is_active)
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, familyID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []domain.SpecialTaskTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *template)
	}
	return templates, rows.Err()
}

func (r *templateRepository) Create(ctx context.Context, template *domain.SpecialTaskTemplate) (*domain.SpecialTaskTemplate, error) {
	if template == nil {
		return nil, domain.ErrInvalidPayload
	}
	if template.ID == "" {
		template.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO special_task_templates (id, family_id, title, description, points, interval_type, max_claims_per_interval, is_active, created_by_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		template.ID,
		template.FamilyID,
		template.Title,
		template.Description,
		template.Points,
		template.IntervalType,
		template.MaxClaimsPerInterval,
		template.IsActive,
		template.CreatedByID,
	).Scan(&template.CreatedAt, &template.UpdatedAt); err != nil {
		return nil, err
	}
	return template, nil
}

func (r *templateRepository) Update(ctx context.Context, template *domain.SpecialTaskTemplate) error {
	if template == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE special_task_templates
	SET title = $2,
		description = $3,
		points = $4,
		interval_type = $5,
		max_claims_per_interval = $6,
		is_active = $7,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		template.ID,
		template.Title,
		template.Description,
		template.Points,
		template.IntervalType,
		template.MaxClaimsPerInterval,
		template.IsActive,
	).Scan(&template.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTemplateNotFound
		}
		return err
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM special_task_templates WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func scanTemplate(row interface {
	Scan(dest ...interface{}) error
}) (*domain.SpecialTaskTemplate, error) {
	var template domain.SpecialTaskTemplate
	if err := row.Scan(
		&template.ID,
		&template.FamilyID,
		&template.Title,
		&template.Description,
		&template.Points,
		&template.IntervalType,
		&template.MaxClaimsPerInterval,
		&template.IsActive,
		&template.CreatedByID,
		&template.CreatedAt,
		&template.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &template, nil
}
