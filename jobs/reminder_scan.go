package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridian-crm/meridian/internal/jobs"
)

// ReminderScanJob surfaces open tasks approaching their due date across all
// companies.
type ReminderScanJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReminderScanJob initialises the reminder scan handler.
func NewReminderScanJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReminderScanJob {
	return &ReminderScanJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type dueTask struct {
	ID        string
	CompanyID string
	LeadID    string
	Title     string
	DueDate   time.Time
}

// Handle executes the reminder scan logic.
func (j *ReminderScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil {
		return errors.New("reminder scan: handler not configured")
	}
	var payload ReminderScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowHours <= 0 {
		payload.WindowHours = 24
	}

	now := j.now()
	tracker := j.metrics().Track(TaskReminderScan)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.Int("window_hours", payload.WindowHours))
	logger.Info("starting reminder scan")

	due, err := j.scan(ctx, now, time.Duration(payload.WindowHours)*time.Hour)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	perCompany := make(map[string]int)
	for _, task := range due {
		logger.Info("task due soon",
			slog.String("task_id", task.ID),
			slog.String("company_id", task.CompanyID),
			slog.String("lead_id", task.LeadID),
			slog.String("title", task.Title),
			slog.Duration("due_in", task.DueDate.Sub(now)),
		)
		perCompany[task.CompanyID]++
	}
	for company, count := range perCompany {
		j.metrics().AddDueTasks(company, count)
	}

	logger.Info("completed reminder scan",
		slog.Int("due_tasks", len(due)),
		slog.Int("companies", len(perCompany)),
		slog.Duration("duration", time.Since(now)),
	)
	return nil
}

func (j *ReminderScanJob) scan(ctx context.Context, now time.Time, window time.Duration) ([]dueTask, error) {
	if j.Pool == nil {
		return nil, errors.New("reminder scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT id, company_id, lead_id, title, due_date
		FROM tasks
		WHERE status <> 'Done'
		  AND due_date IS NOT NULL
		  AND due_date >= $1 AND due_date <= $2
		ORDER BY company_id, due_date ASC`,
		now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]dueTask, 0)
	for rows.Next() {
		var task dueTask
		if err := rows.Scan(&task.ID, &task.CompanyID, &task.LeadID, &task.Title, &task.DueDate); err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (j *ReminderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReminderScan))
	}
	return slog.Default().With(slog.String("job", TaskReminderScan))
}

func (j *ReminderScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ReminderScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
