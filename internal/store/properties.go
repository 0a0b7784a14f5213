package store

import (
	"context"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
)

// CreateProperty persists a property and its wings in one transaction.
func (s *Store) CreateProperty(ctx context.Context, p *maintenance.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin create property", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO properties (id, name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID.String(), p.Name, string(p.Status), toUnix(p.CreatedAt), toUnix(p.UpdatedAt),
	)
	if err != nil {
		return wrap("insert property", err)
	}

	for _, w := range p.Wings {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO wings (id, property_id, name, status) VALUES (?, ?, ?, ?)",
			w.ID.String(), p.ID.String(), w.Name, string(w.Status),
		)
		if err != nil {
			return wrap("insert wing", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("commit create property", err)
	}
	return nil
}

// AddWing appends a wing to an existing property.
func (s *Store) AddWing(ctx context.Context, w *maintenance.Wing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO wings (id, property_id, name, status) VALUES (?, ?, ?, ?)",
		w.ID.String(), w.PropertyID.String(), w.Name, string(w.Status),
	)
	return wrap("add wing", err)
}

// GetProperty fetches one property with all of its wings.
func (s *Store) GetProperty(ctx context.Context, id uuid.UUID) (maintenance.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p                    maintenance.Property
		idRaw, status        string
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, status, created_at, updated_at FROM properties WHERE id = ?",
		id.String(),
	).Scan(&idRaw, &p.Name, &status, &createdAt, &updatedAt)
	if err != nil {
		return p, wrap("get property", err)
	}
	if p.ID, err = uuid.Parse(idRaw); err != nil {
		return p, wrap("get property", err)
	}
	p.Status = maintenance.Status(status)
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)

	p.Wings, err = s.wingsForProperty(ctx, id)
	return p, err
}

// ListProperties returns one page of active properties, newest first, with
// the total active-property count. Wings are not loaded for list pages.
func (s *Store) ListProperties(ctx context.Context, offset, limit int) ([]maintenance.Property, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM properties WHERE status = 'active'").Scan(&total); err != nil {
		return nil, 0, wrap("count properties", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, created_at, updated_at FROM properties
		 WHERE status = 'active' ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, wrap("query properties", err)
	}
	defer rows.Close()

	var properties []maintenance.Property
	for rows.Next() {
		var (
			p                    maintenance.Property
			idRaw, status        string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&idRaw, &p.Name, &status, &createdAt, &updatedAt); err != nil {
			return nil, 0, wrap("scan property", err)
		}
		if p.ID, err = uuid.Parse(idRaw); err != nil {
			return nil, 0, wrap("scan property", err)
		}
		p.Status = maintenance.Status(status)
		p.CreatedAt = fromUnix(createdAt)
		p.UpdatedAt = fromUnix(updatedAt)
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("iterate properties", err)
	}
	return properties, total, nil
}

func (s *Store) wingsForProperty(ctx context.Context, propertyID uuid.UUID) ([]maintenance.Wing, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, property_id, name, status FROM wings WHERE property_id = ? ORDER BY rowid",
		propertyID.String())
	if err != nil {
		return nil, wrap("query wings", err)
	}
	defer rows.Close()

	var wings []maintenance.Wing
	for rows.Next() {
		w, err := scanWing(rows)
		if err != nil {
			return nil, wrap("scan wing", err)
		}
		wings = append(wings, w)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate wings", err)
	}
	return wings, nil
}

// GetWing fetches a single wing.
func (s *Store) GetWing(ctx context.Context, id uuid.UUID) (maintenance.Wing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, property_id, name, status FROM wings WHERE id = ?", id.String())
	w, err := scanWing(row)
	if err != nil {
		return w, wrap("get wing", err)
	}
	return w, nil
}

func scanWing(row rowScanner) (maintenance.Wing, error) {
	var (
		w             maintenance.Wing
		idRaw, pidRaw string
		status        string
	)
	err := row.Scan(&idRaw, &pidRaw, &w.Name, &status)
	if err != nil {
		return w, err
	}
	if w.ID, err = uuid.Parse(idRaw); err != nil {
		return w, err
	}
	if w.PropertyID, err = uuid.Parse(pidRaw); err != nil {
		return w, err
	}
	w.Status = maintenance.Status(status)
	return w, nil
}
