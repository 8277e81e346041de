package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/choreboard/backend/domain"
	"github.com/choreboard/backend/repository"
)

const taskColumns = `
	id, family_id, title, description, assignee_id, recurrence_kind, due_mode,
	active_weekdays, due_at, points, penalty_enabled, penalty_points,
	reminder_offsets, template_id, is_active, status, created_by_id,
	created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `SELECT` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR family_id = $1)
	  AND ($2 = '' OR assignee_id = $2)
	  AND ($3 = '' OR status = $3)
	  AND (NOT $4 OR is_active)
	ORDER BY created_at ASC
	LIMIT $5 OFFSET $6
	`
	rows, err := r.pool.Query(ctx, query,
		filter.FamilyID, filter.AssigneeID, filter.Status, filter.ActiveOnly,
		clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *taskRepository) ListDueBetween(ctx context.Context, familyID string, from, to time.Time) ([]domain.Task, error) {
	const query = `
	SELECT` + taskColumns + `
	FROM tasks
	WHERE family_id = $1
	  AND due_at IS NOT NULL
	  AND due_at >= $2
	  AND due_at < $3
	ORDER BY due_at ASC
	`
	rows, err := r.pool.Query(ctx, query, familyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *taskRepository) CountTemplateClaims(ctx context.Context, templateID, memberID string, from, to time.Time) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM tasks
	WHERE template_id = $1
	  AND assignee_id = $2
	  AND created_at >= $3
	  AND created_at < $4
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, templateID, memberID, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (
		id, family_id, title, description, assignee_id, recurrence_kind, due_mode,
		active_weekdays, due_at, points, penalty_enabled, penalty_points,
		reminder_offsets, template_id, is_active, status, created_by_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.FamilyID,
		task.Title,
		task.Description,
		task.AssigneeID,
		task.RecurrenceKind,
		task.DueMode,
		task.ActiveWeekdays,
		task.DueAt,
		task.Points,
		task.PenaltyEnabled,
		task.PenaltyPoints,
		task.ReminderOffsets,
		nullableID(task.TemplateID),
		task.IsActive,
		task.Status,
		task.CreatedByID,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		assignee_id = $4,
		active_weekdays = $5,
		due_at = $6,
		points = $7,
		penalty_enabled = $8,
		penalty_points = $9,
		reminder_offsets = $10,
		is_active = $11,
		status = $12,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.AssigneeID,
		task.ActiveWeekdays,
		task.DueAt,
		task.Points,
		task.PenaltyEnabled,
		task.PenaltyPoints,
		task.ReminderOffsets,
		task.IsActive,
		task.Status,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		due        *time.Time
		templateID *string
	)

	if err := row.Scan(
		&task.ID,
		&task.FamilyID,
		&task.Title,
		&task.Description,
		&task.AssigneeID,
		&task.RecurrenceKind,
		&task.DueMode,
		&task.ActiveWeekdays,
		&due,
		&task.Points,
		&task.PenaltyEnabled,
		&task.PenaltyPoints,
		&task.ReminderOffsets,
		&templateID,
		&task.IsActive,
		&task.Status,
		&task.CreatedByID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueAt = due
	if templateID != nil {
		task.TemplateID = *templateID
	}

	return &task, nil
}

// nullableID maps an empty string to SQL NULL so foreign keys stay clean.
func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
