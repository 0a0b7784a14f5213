package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
)

// UpsertAssignment creates a wing's assignment record or replaces its
// program set wholesale. Full-replace semantics: the previous set is
// discarded, never merged, so the call is idempotent. The upsert is one
// statement, so concurrent replacements serialize in the storage engine.
func (s *Store) UpsertAssignment(ctx context.Context, a *maintenance.WingAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(a.ProgramIDs))
	for i, id := range a.ProgramIDs {
		ids[i] = id.String()
	}
	programJSON, err := json.Marshal(ids)
	if err != nil {
		return wrap("marshal program ids", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wing_assignments (wing_id, property_id, program_ids, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(wing_id) DO UPDATE SET
			property_id = excluded.property_id,
			program_ids = excluded.program_ids,
			updated_at = excluded.updated_at`,
		a.WingID.String(), a.PropertyID.String(), programJSON, toUnix(a.UpdatedAt),
	)
	return wrap("upsert assignment", err)
}

// GetAssignment fetches the assignment record for a wing, if any.
func (s *Store) GetAssignment(ctx context.Context, wingID uuid.UUID) (maintenance.WingAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT wing_id, property_id, program_ids, updated_at
		 FROM wing_assignments WHERE wing_id = ?`, wingID.String())

	a, err := scanAssignment(row)
	if err != nil {
		return a, wrap("get assignment", err)
	}
	return a, nil
}

// ListAssignmentsByProperty fetches every assignment record belonging to a
// property's wings.
func (s *Store) ListAssignmentsByProperty(ctx context.Context, propertyID uuid.UUID) ([]maintenance.WingAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT wing_id, property_id, program_ids, updated_at
		 FROM wing_assignments WHERE property_id = ?`, propertyID.String())
	if err != nil {
		return nil, wrap("query assignments", err)
	}
	defer rows.Close()

	var assignments []maintenance.WingAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, wrap("scan assignment", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate assignments", err)
	}
	return assignments, nil
}

func scanAssignment(row rowScanner) (maintenance.WingAssignment, error) {
	var (
		a              maintenance.WingAssignment
		wingRaw, pRaw  string
		programJSON    []byte
		updatedAt      int64
	)
	err := row.Scan(&wingRaw, &pRaw, &programJSON, &updatedAt)
	if err != nil {
		return a, err
	}
	if a.WingID, err = uuid.Parse(wingRaw); err != nil {
		return a, err
	}
	if a.PropertyID, err = uuid.Parse(pRaw); err != nil {
		return a, err
	}

	var ids []string
	if err := json.Unmarshal(programJSON, &ids); err != nil {
		return a, err
	}
	a.ProgramIDs = make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue // tolerate malformed soft references
		}
		a.ProgramIDs = append(a.ProgramIDs, id)
	}

	a.UpdatedAt = fromUnix(updatedAt)
	return a, nil
}
