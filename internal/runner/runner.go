// Package runner executes the daily scheduler pass: evaluate every active
// task of every active program against today's date and hand the due ones to
// the notifier. One pass per calendar date; overlapping triggers are
// deduplicated through a storage-backed run lock.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/pmtrack/internal/logfields"
	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
	"git.home.luguber.info/inful/pmtrack/internal/metrics"
	"git.home.luguber.info/inful/pmtrack/internal/notify"
	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
	"git.home.luguber.info/inful/pmtrack/internal/store"
)

// ProgramError records one program whose evaluation failed during a pass.
// A failing program never aborts the pass; the remaining programs still run.
type ProgramError struct {
	ProgramID   uuid.UUID `json:"program_id"`
	ProgramName string    `json:"program_name"`
	Message     string    `json:"message"`
}

// Report summarizes one pass.
type Report struct {
	RunDate  string         `json:"run_date"`
	Skipped  bool           `json:"skipped"` // another trigger already ran this date
	Programs int            `json:"programs"`
	Checked  int            `json:"checked"`
	Due      []notify.DueTask `json:"due"`
	Errors   []ProgramError `json:"errors,omitempty"`
}

// Runner evaluates due tasks and hands them off for notification.
type Runner struct {
	store    *store.Store
	notifier notify.Notifier
	recorder metrics.Recorder
	log      *slog.Logger
}

// New creates a Runner. A nil notifier falls back to log output; a nil
// recorder disables metrics.
func New(s *store.Store, n notify.Notifier, rec metrics.Recorder, log *slog.Logger) *Runner {
	if n == nil {
		n = notify.LogNotifier{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{store: s, notifier: n, recorder: rec, log: log}
}

// RunOnce executes one pass for the given date. The first caller for a date
// wins the run lock; later callers get a skipped report. A pass that fails
// after winning releases the lock so a retry can run the date. Manual
// triggers and the cron schedule share this path.
func (r *Runner) RunOnce(ctx context.Context, today recurrence.Date) (Report, error) {
	start := time.Now()
	report := Report{RunDate: today.String()}

	won, err := r.store.AcquireRunLock(ctx, report.RunDate)
	if err != nil {
		r.recorder.IncPassResult(metrics.ResultFailed)
		return report, errors.WrapError(err, errors.CategoryStorage, "failed to acquire run lock").Build()
	}
	if !won {
		report.Skipped = true
		r.recorder.IncPassResult(metrics.ResultSkipped)
		r.log.Info("pass already ran for this date", logfields.RunDate(report.RunDate))
		return report, nil
	}

	programs, err := r.store.ListActivePrograms(ctx)
	if err != nil {
		r.failPass(ctx, report.RunDate)
		return report, errors.WrapError(err, errors.CategoryStorage, "failed to load active programs").Build()
	}
	report.Programs = len(programs)

	for _, p := range programs {
		due, checked, perr := r.evaluateProgram(p, today)
		report.Checked += checked
		report.Due = append(report.Due, due...)
		if perr != nil {
			report.Errors = append(report.Errors, ProgramError{
				ProgramID:   p.ID,
				ProgramName: p.Name,
				Message:     perr.Error(),
			})
			r.recorder.IncProgramError()
			r.log.Warn("program evaluation failed",
				logfields.ProgramID(p.ID.String()),
				slog.String("name", p.Name),
				logfields.Error(perr))
		}
	}

	r.recorder.ObserveDueTasks(len(report.Due))

	if err := r.notifier.PublishDue(ctx, notify.Notice{RunDate: report.RunDate, Tasks: report.Due}); err != nil {
		r.recorder.IncNotification(metrics.ResultFailed)
		r.failPass(ctx, report.RunDate)
		return report, errors.WrapError(err, errors.CategoryNotify, "failed to publish due-task notice").
			WithContext(logfields.KeyRunDate, report.RunDate).
			WithContext(logfields.KeyDueCount, len(report.Due)).
			Retryable().Build()
	}
	if len(report.Due) > 0 {
		r.recorder.IncNotification(metrics.ResultSuccess)
	}

	elapsed := time.Since(start)
	r.recorder.ObservePassDuration(elapsed)
	r.recorder.IncPassResult(metrics.ResultSuccess)
	r.log.Info("pass completed",
		logfields.RunDate(report.RunDate),
		slog.Int("programs", report.Programs),
		slog.Int("checked", report.Checked),
		logfields.DueCount(len(report.Due)),
		slog.Int("errors", len(report.Errors)),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return report, nil
}

// failPass releases the run lock so a retry can claim the date again. Only
// a completed pass keeps its lock row.
func (r *Runner) failPass(ctx context.Context, runDate string) {
	r.recorder.IncPassResult(metrics.ResultFailed)
	if err := r.store.ReleaseRunLock(ctx, runDate); err != nil {
		r.log.Error("failed to release run lock after failed pass",
			logfields.RunDate(runDate), logfields.Error(err))
	}
}

// evaluateProgram checks every active task of one program. A malformed rule
// fails the program but not the pass; the tasks already evaluated still
// count.
func (r *Runner) evaluateProgram(p maintenance.MaintenanceProgram, today recurrence.Date) ([]notify.DueTask, int, error) {
	var (
		due     []notify.DueTask
		checked int
		firstErr error
	)
	for _, t := range p.Tasks {
		if !t.Status.IsActive() {
			continue
		}
		checked++
		isDue, err := recurrence.IsDue(t.Rule, t.Anchor(), today)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if isDue {
			due = append(due, notify.DueTask{
				ProgramID:   p.ID,
				ProgramName: p.Name,
				TaskID:      t.ID,
				TaskName:    t.Name,
				Vendor:      t.Vendor,
				Frequency:   string(t.Rule.Frequency),
				DueDate:     today.String(),
			})
		}
	}
	return due, checked, firstErr
}
