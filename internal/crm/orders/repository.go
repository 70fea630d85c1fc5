package orders

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

// Repository persists orders scoped to their owning company.
type Repository interface {
	LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error)
	// QuotationBelongsTo reports whether the quotation exists under the scope's
	// company and references the given lead.
	QuotationBelongsTo(ctx context.Context, scope shared.Scope, quotationID, leadID uuid.UUID) (bool, error)
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Order, error)
	List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Order, error)
	Update(ctx context.Context, scope shared.Scope, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const orderColumns = `id, lead_id, company_id, quotation_id, order_number, amount,
	currency, status, notes, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.LeadID, &o.CompanyID, &o.QuotationID, &o.OrderNumber, &o.Amount,
		&o.Currency, &o.Status, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
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

func (r *pgxRepository) QuotationBelongsTo(ctx context.Context, scope shared.Scope, quotationID, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quotations WHERE id = $1 AND lead_id = $2 AND company_id = $3)`,
		quotationID, leadID, scope.CompanyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("quotation lookup: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	query := `
		INSERT INTO orders (
			id, lead_id, company_id, quotation_id, order_number, amount,
			currency, status, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		o.ID, o.LeadID, o.CompanyID, o.QuotationID, o.OrderNumber, o.Amount,
		o.Currency, o.Status, o.Notes, o.CreatedBy,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == db.UniqueViolation {
			return shared.ErrConflict
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *pgxRepository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 AND company_id = $2`, orderColumns)
	o, err := scanOrder(r.pool.QueryRow(ctx, query, id, scope.CompanyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *pgxRepository) List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Order, error) {
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
		SELECT %s FROM orders
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
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

	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $1 AND company_id = $2`,
		strings.Join(sets, ", "))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM orders WHERE id = $1 AND company_id = $2`, id, scope.CompanyID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
