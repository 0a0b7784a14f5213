package store

import (
	"context"
	"fmt"
)

// AllocateChecklistCode hands out the next globally unique checklist code as
// an 8-digit zero-padded decimal string. The first allocation returns
// "00000001".
//
// The counter row holds the next value to hand out plus one. Initialization
// and increment-and-fetch happen in a single upsert so the storage engine,
// not the application, serializes concurrent allocations: N concurrent
// callers receive N distinct contiguous values with no duplicates and no
// gaps, and correctness survives process restarts.
func (s *Store) AllocateChecklistCode(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sequence_counter (id, next_value) VALUES (1, 2)
		ON CONFLICT(id) DO UPDATE SET next_value = next_value + 1
		RETURNING next_value - 1`,
	).Scan(&next)
	if err != nil {
		return "", wrap("allocate checklist code", err)
	}

	return fmt.Sprintf("%08d", next), nil
}

// PeekChecklistCode returns the code the next allocation would produce
// without consuming it. Display only (the create-item form shows it); the
// stored item always uses a fresh allocation.
func (s *Store) PeekChecklistCode(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next int64
	err := s.db.QueryRowContext(ctx,
		"SELECT next_value FROM sequence_counter WHERE id = 1",
	).Scan(&next)
	if err != nil {
		if IsNotFound(err) {
			return fmt.Sprintf("%08d", 1), nil
		}
		return "", wrap("peek checklist code", err)
	}

	return fmt.Sprintf("%08d", next), nil
}
