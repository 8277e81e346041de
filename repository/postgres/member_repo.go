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

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation of MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) repository.MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `
	id, family_id, display_name, email, role, is_active, created_at, updated_at`

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	const query = `SELECT` + memberColumns + ` FROM members WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanMember(row)
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	const query = `SELECT` + memberColumns + ` FROM members WHERE email = $1`
	row := r.pool.QueryRow(ctx, query, email)
	return scanMember(row)
}

func (r *memberRepository) ListByFamily(ctx context.Context, familyID string) ([]domain.Member, error) {
	const query = `
	SELECT` + memberColumns + `
	FROM members
	WHERE family_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (r *memberRepository) ListFamilyIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT family_id FROM members WHERE is_active = TRUE ORDER BY family_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) (*domain.Member, error) {
	if member == nil {
		return nil, domain.ErrInvalidPayload
	}
	if member.ID == "" {
		member.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO members (id, family_id, display_name, email, role, is_active)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		member.ID,
		member.FamilyID,
		member.DisplayName,
		member.Email,
		member.Role,
		member.IsActive,
	).Scan(&member.CreatedAt, &member.UpdatedAt); err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE members
	SET display_name = $2,
		email = $3,
		role = $4,
		is_active = $5,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		member.ID,
		member.DisplayName,
		member.Email,
		member.Role,
		member.IsActive,
	).Scan(&member.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrMemberNotFound
		}
		return err
	}
	return nil
}

func scanMember(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Member, error) {
	var member domain.Member
	if err := row.Scan(
		&member.ID,
		&member.FamilyID,
		&member.DisplayName,
		&member.Email,
		&member.Role,
		&member.IsActive,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}
