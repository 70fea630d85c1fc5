package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian/internal/platform/db"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Repository provides PostgreSQL backed persistence for tasks.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error)
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Task, error)
	List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Task, error)
	// LastForLead returns the most recently created task of a lead within
	// the tenant, or ErrNotFound. Ties on creation time break by id,
	// descending, so the last inserted row wins deterministically.
	LastForLead(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (*Task, error)
	ListDue(ctx context.Context, scope shared.Scope, from, to *time.Time, excludeDone bool) ([]Task, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const taskColumns = `id, lead_id, company_id, created_by, assigned_to, title, description,
	status, priority, due_date, completed_at, lat, lng, distance_km, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.LeadID, &t.CompanyID, &t.CreatedBy, &t.AssignedTo, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.DueDate, &t.CompletedAt, &t.Lat, &t.Lng, &t.DistanceKm,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1 AND company_id = $2)`,
		leadID, scope.CompanyID).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, task *Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO tasks (
			id, lead_id, company_id, created_by, assigned_to, title, description,
			status, priority, due_date, completed_at, lat, lng, distance_km,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING created_at, updated_at`,
		task.ID, task.LeadID, task.CompanyID, task.CreatedBy, task.AssignedTo, task.Title,
		task.Description, task.Status, task.Priority, task.DueDate, task.CompletedAt,
		task.Lat, task.Lng, task.DistanceKm,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Task, error) {
	return scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND company_id = $2`,
		id, scope.CompanyID))
}

func (r *repository) List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Task, error) {
	conditions := []string{"company_id = $1"}
	args := []any{scope.CompanyID}
	argPos := 2

	if !scope.Admin {
		conditions = append(conditions, fmt.Sprintf("(assigned_to = $%d OR created_by = $%d)", argPos, argPos))
		args = append(args, scope.UserID)
		argPos++
	}
	if filter.LeadID != nil {
		conditions = append(conditions, fmt.Sprintf("lead_id = $%d", argPos))
		args = append(args, *filter.LeadID)
		argPos++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), argPos, argPos+1)
	args = append(args, page.Limit, page.Offset)

	return r.queryTasks(ctx, query, args...)
}

func (r *repository) LastForLead(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (*Task, error) {
	return scanTask(r.db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE company_id = $1 AND lead_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		scope.CompanyID, leadID))
}

func (r *repository) ListDue(ctx context.Context, scope shared.Scope, from, to *time.Time, excludeDone bool) ([]Task, error) {
	conditions := []string{"company_id = $1", "due_date IS NOT NULL"}
	args := []any{scope.CompanyID}
	argPos := 2

	if !scope.Admin {
		conditions = append(conditions, fmt.Sprintf("(assigned_to = $%d OR created_by = $%d)", argPos, argPos))
		args = append(args, scope.UserID)
		argPos++
	}
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("due_date >= $%d", argPos))
		args = append(args, *from)
		argPos++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("due_date < $%d", argPos))
		args = append(args, *to)
		argPos++
	}
	if excludeDone {
		conditions = append(conditions, fmt.Sprintf("status <> $%d", argPos))
		args = append(args, string(StatusDone))
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE %s
		ORDER BY due_date ASC, id ASC`,
		strings.Join(conditions, " AND "))

	return r.queryTasks(ctx, query, args...)
}

var updatableColumns = []string{
	"title", "description", "status", "priority", "due_date", "completed_at",
	"assigned_to", "lat", "lng", "distance_km",
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range updatableColumns {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), argPos)
	args = append(args, id)
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}
