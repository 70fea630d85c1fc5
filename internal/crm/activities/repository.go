package activities

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

// Repository provides PostgreSQL backed persistence for activities. Every
// read is parameterized by the caller's scope so tenant filtering cannot be
// skipped per call site.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error)
	Create(ctx context.Context, activity *Activity) error
	Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Activity, error)
	List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Activity, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, scope shared.Scope) (Summary, error)
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

const activityColumns = `id, lead_id, company_id, type, title, description, status, due_date,
	completed_at, outcome, next_task, next_task_date, priority, assigned_to, created_by,
	created_at, verified_event, verification_type, call_duration, device_id, geo_lat,
	geo_long, gps_verified, parent_activity_id, auto_generated, trust_score_impact,
	source_channel, meta`

func scanActivity(row pgx.Row) (*Activity, error) {
	var a Activity
	err := row.Scan(
		&a.ID, &a.LeadID, &a.CompanyID, &a.Type, &a.Title, &a.Description, &a.Status, &a.DueDate,
		&a.CompletedAt, &a.Outcome, &a.NextTask, &a.NextTaskAt, &a.Priority, &a.AssignedTo, &a.CreatedBy,
		&a.CreatedAt, &a.VerifiedEvent, &a.VerificationType, &a.CallDuration, &a.DeviceID, &a.GeoLat,
		&a.GeoLong, &a.GPSVerified, &a.ParentActivityID, &a.AutoGenerated, &a.TrustScoreImpact,
		&a.SourceChannel, &a.Meta,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1 AND company_id = $2)`,
		leadID, scope.CompanyID).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, activity *Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO activities (
			id, lead_id, company_id, type, title, description, status, due_date,
			completed_at, outcome, next_task, next_task_date, priority, assigned_to,
			created_by, created_at, verified_event, verification_type, call_duration,
			device_id, geo_lat, geo_long, gps_verified, parent_activity_id,
			auto_generated, trust_score_impact, source_channel, meta
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, NOW(), $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		) RETURNING created_at`,
		activity.ID, activity.LeadID, activity.CompanyID, activity.Type, activity.Title,
		activity.Description, activity.Status, activity.DueDate, activity.CompletedAt,
		activity.Outcome, activity.NextTask, activity.NextTaskAt, activity.Priority,
		activity.AssignedTo, activity.CreatedBy, activity.VerifiedEvent,
		activity.VerificationType, activity.CallDuration, activity.DeviceID,
		activity.GeoLat, activity.GeoLong, activity.GPSVerified, activity.ParentActivityID,
		activity.AutoGenerated, activity.TrustScoreImpact, activity.SourceChannel, activity.Meta,
	).Scan(&activity.CreatedAt)
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Activity, error) {
	return scanActivity(r.db.QueryRow(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = $1 AND company_id = $2`,
		id, scope.CompanyID))
}

func (r *repository) List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Activity, error) {
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
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *filter.Type)
		argPos++
	}
	if filter.Verified != nil {
		conditions = append(conditions, fmt.Sprintf("verified_event = $%d", argPos))
		args = append(args, *filter.Verified)
		argPos++
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argPos))
		args = append(args, *filter.AssignedTo)
		argPos++
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *filter.DateFrom)
		argPos++
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, *filter.DateTo)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), argPos, argPos+1)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

// updatableColumns is the closed set of columns a patch may touch. Protected
// columns (id, company_id, created_by, created_at) are deliberately absent.
var updatableColumns = []string{
	"type", "title", "description", "status", "due_date", "completed_at",
	"outcome", "next_task", "next_task_date", "priority", "assigned_to",
	"verified_event", "verification_type", "call_duration", "device_id",
	"geo_lat", "geo_long", "gps_verified", "trust_score_impact",
	"source_channel", "meta",
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	var sets []string
	var args []any
	argPos := 1
	for _, col := range updatableColumns {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	if len(sets) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE activities SET %s WHERE id = $%d", strings.Join(sets, ", "), argPos)
	args = append(args, id)
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Summary(ctx context.Context, scope shared.Scope) (Summary, error) {
	conditions := "company_id = $1"
	args := []any{scope.CompanyID, pendingStatuses, string(StatusCompleted)}
	if !scope.Admin {
		conditions += " AND (assigned_to = $4 OR created_by = $4)"
		args = append(args, scope.UserID)
	}
	var s Summary
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE verified_event),
		       COUNT(*) FILTER (WHERE status = ANY($2)),
		       COUNT(*) FILTER (WHERE status = $3)
		FROM activities
		WHERE %s`, conditions), args...).
		Scan(&s.Total, &s.Verified, &s.Pending, &s.Completed)
	return s, err
}
