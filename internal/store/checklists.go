package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
)

// CreateCategory persists a checklist category. Duplicate names surface as
// a unique violation.
func (s *Store) CreateCategory(ctx context.Context, c *maintenance.ChecklistCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checklist_categories (id, name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, string(c.Status), toUnix(c.CreatedAt), toUnix(c.UpdatedAt),
	)
	return wrap("insert category", err)
}

// RenameCategory updates a category name.
func (s *Store) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE checklist_categories SET name = ?, updated_at = ? WHERE id = ?",
		name, toUnix(time.Now()), id.String(),
	)
	if err != nil {
		return wrap("rename category", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("rename category", sql.ErrNoRows)
	}
	return nil
}

// GetCategory fetches one category.
func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (maintenance.ChecklistCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		c                    maintenance.ChecklistCategory
		idRaw, status        string
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, status, created_at, updated_at FROM checklist_categories WHERE id = ?",
		id.String(),
	).Scan(&idRaw, &c.Name, &status, &createdAt, &updatedAt)
	if err != nil {
		return c, wrap("get category", err)
	}
	if c.ID, err = uuid.Parse(idRaw); err != nil {
		return c, wrap("get category", err)
	}
	c.Status = maintenance.Status(status)
	c.CreatedAt = fromUnix(createdAt)
	c.UpdatedAt = fromUnix(updatedAt)
	return c, nil
}

// ListCategories returns one page of categories, newest first, with the
// total count.
func (s *Store) ListCategories(ctx context.Context, offset, limit int) ([]maintenance.ChecklistCategory, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM checklist_categories").Scan(&total); err != nil {
		return nil, 0, wrap("count categories", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, created_at, updated_at FROM checklist_categories
		 ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, wrap("query categories", err)
	}
	defer rows.Close()

	var categories []maintenance.ChecklistCategory
	for rows.Next() {
		var (
			c                    maintenance.ChecklistCategory
			idRaw, status        string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&idRaw, &c.Name, &status, &createdAt, &updatedAt); err != nil {
			return nil, 0, wrap("scan category", err)
		}
		if c.ID, err = uuid.Parse(idRaw); err != nil {
			return nil, 0, wrap("scan category", err)
		}
		c.Status = maintenance.Status(status)
		c.CreatedAt = fromUnix(createdAt)
		c.UpdatedAt = fromUnix(updatedAt)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("iterate categories", err)
	}
	return categories, total, nil
}

// CreateItem persists a checklist item. The caller has already drawn the
// item's code from the allocator.
func (s *Store) CreateItem(ctx context.Context, it *maintenance.ChecklistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checklist_items (id, category_id, code, name, type, frequency, day,
			month, date, file_ref, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID.String(), it.CategoryID.String(), it.Code, it.Name, nullStr(it.Type),
		string(it.Rule.Frequency), nullStr(it.Rule.Day), nullInt(it.Rule.Month), nullInt(it.Rule.Date),
		nullStr(it.FileRef), string(it.Status), toUnix(it.CreatedAt), toUnix(it.UpdatedAt),
	)
	return wrap("insert checklist item", err)
}

// UpdateItem rewrites an item's mutable fields. The code is immutable once
// allocated.
func (s *Store) UpdateItem(ctx context.Context, it *maintenance.ChecklistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE checklist_items SET name = ?, type = ?, frequency = ?, day = ?, month = ?,
			date = ?, file_ref = ?, updated_at = ?
		 WHERE id = ?`,
		it.Name, nullStr(it.Type),
		string(it.Rule.Frequency), nullStr(it.Rule.Day), nullInt(it.Rule.Month), nullInt(it.Rule.Date),
		nullStr(it.FileRef), toUnix(it.UpdatedAt), it.ID.String(),
	)
	if err != nil {
		return wrap("update checklist item", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("update checklist item", sql.ErrNoRows)
	}
	return nil
}

// GetItem fetches one checklist item.
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (maintenance.ChecklistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, category_id, code, name, type, frequency, day, month, date,
			file_ref, status, created_at, updated_at
		 FROM checklist_items WHERE id = ?`, id.String())

	it, err := scanItem(row)
	if err != nil {
		return it, wrap("get checklist item", err)
	}
	return it, nil
}

// ListItemsByCategory fetches a category's items in creation order.
func (s *Store) ListItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]maintenance.ChecklistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category_id, code, name, type, frequency, day, month, date,
			file_ref, status, created_at, updated_at
		 FROM checklist_items WHERE category_id = ? ORDER BY code`, categoryID.String())
	if err != nil {
		return nil, wrap("query checklist items", err)
	}
	defer rows.Close()

	var items []maintenance.ChecklistItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrap("scan checklist item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate checklist items", err)
	}
	return items, nil
}

func scanItem(row rowScanner) (maintenance.ChecklistItem, error) {
	var (
		it                   maintenance.ChecklistItem
		idRaw, catRaw        string
		itemType, fileRef    sql.NullString
		freq                 string
		day                  sql.NullString
		month, date          sql.NullInt64
		status               string
		createdAt, updatedAt int64
	)
	err := row.Scan(&idRaw, &catRaw, &it.Code, &it.Name, &itemType, &freq, &day,
		&month, &date, &fileRef, &status, &createdAt, &updatedAt)
	if err != nil {
		return it, err
	}
	if it.ID, err = uuid.Parse(idRaw); err != nil {
		return it, err
	}
	if it.CategoryID, err = uuid.Parse(catRaw); err != nil {
		return it, err
	}
	it.Type = itemType.String
	it.FileRef = fileRef.String
	it.Rule = recurrence.Rule{
		Frequency: recurrence.Frequency(freq),
		Day:       day.String,
		Month:     int(month.Int64),
		Date:      int(date.Int64),
	}
	it.Status = maintenance.Status(status)
	it.CreatedAt = fromUnix(createdAt)
	it.UpdatedAt = fromUnix(updatedAt)
	return it, nil
}
