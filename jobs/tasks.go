package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReminderScan is the task type for the periodic due-task scan.
	TaskReminderScan = "task:reminder_scan"
)

// ReminderScanPayload configures a reminder scan run.
type ReminderScanPayload struct {
	// WindowHours bounds how far ahead the scan looks for due tasks.
	WindowHours int `json:"window_hours"`
}

// NewReminderScanTask constructs an Asynq task for the reminder scan.
func NewReminderScanTask(windowHours int) (*asynq.Task, error) {
	data, err := json.Marshal(ReminderScanPayload{WindowHours: windowHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReminderScan, data), nil
}
