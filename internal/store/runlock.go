package store

import (
	"context"
	"time"
)

// AcquireRunLock claims the daily-runner lock for a run date (ISO-8601).
// Returns true when this caller won the claim. A second runner for the same
// date observes zero affected rows and must skip its pass; the insert-or-
// ignore makes the claim atomic without explicit locking.
func (s *Store) AcquireRunLock(ctx context.Context, runDate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO runner_passes (run_date, started_at) VALUES (?, ?)",
		runDate, toUnix(time.Now()),
	)
	if err != nil {
		return false, wrap("acquire run lock", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("acquire run lock", err)
	}
	return n == 1, nil
}

// ReleaseRunLock gives the date back after a failed pass, so a retry (cron
// or manual backfill) can claim it again. A completed pass keeps its row.
func (s *Store) ReleaseRunLock(ctx context.Context, runDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM runner_passes WHERE run_date = ?", runDate)
	return wrap("release run lock", err)
}
