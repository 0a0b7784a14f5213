// Package notify carries due-task notices from the scheduler to downstream
// consumers. The scheduler decides what is due; delivery lives here.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// DueTask is one task found due on a given run date.
type DueTask struct {
	ProgramID   uuid.UUID `json:"program_id"`
	ProgramName string    `json:"program_name"`
	TaskID      uuid.UUID `json:"task_id"`
	TaskName    string    `json:"task_name"`
	Vendor      string    `json:"vendor,omitempty"`
	Frequency   string    `json:"frequency"`
	DueDate     string    `json:"due_date"` // ISO date of the run that found it due
}

// Notice is the batch of tasks one scheduler pass found due.
type Notice struct {
	RunDate string    `json:"run_date"`
	Tasks   []DueTask `json:"tasks"`
}

// Notifier delivers a due-task notice. Implementations must tolerate empty
// notices; a pass with nothing due still completes without error.
type Notifier interface {
	PublishDue(ctx context.Context, n Notice) error
	Close() error
}

// LogNotifier writes notices to the structured log. It is the default when
// no broker is configured.
type LogNotifier struct{}

func (LogNotifier) PublishDue(_ context.Context, n Notice) error {
	if len(n.Tasks) == 0 {
		return nil
	}
	for _, task := range n.Tasks {
		slog.Info("maintenance task due",
			slog.String("run_date", n.RunDate),
			slog.String("program", task.ProgramName),
			slog.String("task", task.TaskName),
			slog.String("vendor", task.Vendor),
			slog.String("frequency", task.Frequency))
	}
	return nil
}

func (LogNotifier) Close() error { return nil }
