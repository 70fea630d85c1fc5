package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository reads tenant members.
type Repository interface {
	List(ctx context.Context, companyID uuid.UUID, page shared.Page) ([]User, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*User, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const userColumns = `id, company_id, email, full_name, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *pgxRepository) List(ctx context.Context, companyID uuid.UUID, page shared.Page) ([]User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE company_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`, userColumns)

	rows, err := r.pool.Query(ctx, query, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *pgxRepository) Get(ctx context.Context, companyID, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND company_id = $2`, userColumns)
	u, err := scanUser(r.pool.QueryRow(ctx, query, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
