package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian/internal/platform/db"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository persists quotations scoped to their owning company.
type Repository interface {
	LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error)
	Create(ctx context.Context, q *Quotation) error
	Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Quotation, error)
	List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Quotation, error)
	Update(ctx context.Context, scope shared.Scope, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const quotationColumns = `id, lead_id, company_id, quote_number, amount, currency,
	status, valid_until, notes, created_by, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.LeadID, &q.CompanyID, &q.QuoteNumber, &q.Amount, &q.Currency,
		&q.Status, &q.ValidUntil, &q.Notes, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *pgxRepository) LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1 AND company_id = $2)`,
		leadID, scope.CompanyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lead exists: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) Create(ctx context.Context, q *Quotation) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	query := `
		INSERT INTO quotations (
			id, lead_id, company_id, quote_number, amount, currency, status,
			valid_until, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		q.ID, q.LeadID, q.CompanyID, q.QuoteNumber, q.Amount, q.Currency,
		q.Status, q.ValidUntil, q.Notes, q.CreatedBy,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == db.UniqueViolation {
			return shared.ErrConflict
		}
		return fmt.Errorf("create quotation: %w", err)
	}
	return nil
}

func (r *pgxRepository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Quotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM quotations WHERE id = $1 AND company_id = $2`, quotationColumns)
	q, err := scanQuotation(r.pool.QueryRow(ctx, query, id, scope.CompanyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	return q, nil
}

func (r *pgxRepository) List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Quotation, error) {
	conditions := []string{"company_id = $1"}
	args := []any{scope.CompanyID}

	if !scope.Admin {
		args = append(args, scope.UserID)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.LeadID != nil {
		args = append(args, *filter.LeadID)
		conditions = append(conditions, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM quotations
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		quotationColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()

	out := make([]Quotation, 0)
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates)+1)
	args := []any{id, scope.CompanyID}
	for col, val := range updates {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE quotations SET %s WHERE id = $1 AND company_id = $2`,
		strings.Join(sets, ", "))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM quotations WHERE id = $1 AND company_id = $2`, id, scope.CompanyID)
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
