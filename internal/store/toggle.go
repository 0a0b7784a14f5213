package store

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
)

// toggleTables maps each toggleable entity kind to its table. Wings live in
// their own table even though the API exposes them through their property.
var toggleTables = map[maintenance.EntityKind]string{
	maintenance.KindProgram:  "programs",
	maintenance.KindTask:     "tasks",
	maintenance.KindWing:     "wings",
	maintenance.KindCategory: "checklist_categories",
	maintenance.KindItem:     "checklist_items",
}

// ToggleStatus flips an entity between active and inactive and returns the
// new status. The flip is computed inside a single UPDATE so two racing
// toggles serialize in the storage engine; there is no application-level
// read-modify-write window to lose.
func (s *Store) ToggleStatus(ctx context.Context, ref maintenance.EntityRef) (maintenance.Status, error) {
	table, ok := toggleTables[ref.Kind]
	if !ok {
		return "", errors.ValidationError("unknown entity kind").
			WithContext("kind", string(ref.Kind)).Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := "UPDATE " + table + ` SET status = CASE status
			WHEN 'active' THEN 'inactive' ELSE 'active' END
		WHERE id = ? RETURNING status`
	args := []any{ref.ID.String()}

	// Wings have no updated_at column; everything else records the flip time.
	if ref.Kind != maintenance.KindWing {
		query = "UPDATE " + table + ` SET status = CASE status
				WHEN 'active' THEN 'inactive' ELSE 'active' END,
			updated_at = ?
			WHERE id = ? RETURNING status`
		args = []any{toUnix(time.Now()), ref.ID.String()}
	}

	var raw string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if IsNotFound(err) {
			return "", errors.NotFoundError(string(ref.Kind) + " not found").
				WithContext("id", ref.ID.String()).Build()
		}
		return "", wrap("toggle status", err)
	}

	status, err := maintenance.ParseStatus(raw)
	if err != nil {
		return "", wrap("toggle status", err)
	}
	return status, nil
}
