package leads

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

// Repository persists leads scoped to their owning company.
type Repository interface {
	Create(ctx context.Context, lead *Lead) error
	Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Lead, error)
	List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Lead, error)
	Update(ctx context.Context, scope shared.Scope, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const leadColumns = `id, company_id, business_name, contact_person, email, phone,
	country, state, city, pincode, stage, lat, lng, lead_source, next_action,
	notes, is_active, created_by, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.BusinessName, &l.ContactPerson, &l.Email, &l.Phone,
		&l.Country, &l.State, &l.City, &l.Pincode, &l.Stage, &l.Lat, &l.Lng,
		&l.LeadSource, &l.NextAction, &l.Notes, &l.IsActive, &l.CreatedBy,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *pgxRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	query := `
		INSERT INTO leads (
			id, company_id, business_name, contact_person, email, phone,
			country, state, city, pincode, stage, lat, lng, lead_source,
			next_action, notes, is_active, created_by, search_key,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, NOW(), NOW()
		)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		lead.ID, lead.CompanyID, lead.BusinessName, lead.ContactPerson,
		lead.Email, lead.Phone, lead.Country, lead.State, lead.City,
		lead.Pincode, lead.Stage, lead.Lat, lead.Lng, lead.LeadSource,
		lead.NextAction, lead.Notes, lead.IsActive, lead.CreatedBy,
		searchKeyFor(lead),
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return translateLeadError(err)
	}
	return nil
}

func (r *pgxRepository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1 AND company_id = $2`, leadColumns)
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, scope.CompanyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *pgxRepository) List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Lead, error) {
	conditions := []string{"company_id = $1"}
	args := []any{scope.CompanyID}

	if !scope.Admin {
		args = append(args, scope.UserID)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.Stage != nil {
		args = append(args, *filter.Stage)
		conditions = append(conditions, fmt.Sprintf("stage = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+FoldSearchTerm(*filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("search_key LIKE $%d", len(args)))
	}

	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		leadColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	out := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, *lead)
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

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $1 AND company_id = $2`,
		strings.Join(sets, ", "))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translateLeadError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM leads WHERE id = $1 AND company_id = $2`, id, scope.CompanyID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// searchKeyFor precomputes the folded haystack the search filter matches
// against.
func searchKeyFor(l *Lead) string {
	parts := []string{l.BusinessName}
	if l.ContactPerson != nil {
		parts = append(parts, *l.ContactPerson)
	}
	if l.Email != nil {
		parts = append(parts, *l.Email)
	}
	return FoldSearchTerm(strings.Join(parts, " "))
}

func translateLeadError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == db.UniqueViolation {
		return shared.ErrConflict
	}
	return fmt.Errorf("lead write: %w", err)
}
