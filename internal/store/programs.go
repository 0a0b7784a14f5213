package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
)

// CreateProgram persists a program together with its initial tasks in one
// transaction.
func (s *Store) CreateProgram(ctx context.Context, p *maintenance.MaintenanceProgram) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin create program", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO programs (id, name, status, created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Name, string(p.Status),
		p.CreatedBy.String(), p.UpdatedBy.String(),
		toUnix(p.CreatedAt), toUnix(p.UpdatedAt),
	)
	if err != nil {
		return wrap("insert program", err)
	}

	for i := range p.Tasks {
		if err := insertTask(ctx, tx, &p.Tasks[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("commit create program", err)
	}
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, t *maintenance.MaintenanceTask) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (id, program_id, name, vendor, frequency, day, month, date,
			position, status, created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.ProgramID.String(), t.Name, t.Vendor,
		string(t.Rule.Frequency), nullStr(t.Rule.Day), nullInt(t.Rule.Month), nullInt(t.Rule.Date),
		t.Position, string(t.Status),
		t.CreatedBy.String(), t.UpdatedBy.String(),
		toUnix(t.CreatedAt), toUnix(t.UpdatedAt),
	)
	return wrap("insert task", err)
}

// AddTask appends a task to its program. The position is assigned inside the
// insert (current max + 1) so the declaration order is an owned-collection
// property of the program, never a caller-supplied index.
func (s *Store) AddTask(ctx context.Context, t *maintenance.MaintenanceTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, program_id, name, vendor, frequency, day, month, date,
			position, status, created_by, updated_by, created_at, updated_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE(MAX(position), 0) + 1, ?, ?, ?, ?, ?
		 FROM tasks WHERE program_id = ?`,
		t.ID.String(), t.ProgramID.String(), t.Name, t.Vendor,
		string(t.Rule.Frequency), nullStr(t.Rule.Day), nullInt(t.Rule.Month), nullInt(t.Rule.Date),
		string(t.Status),
		t.CreatedBy.String(), t.UpdatedBy.String(),
		toUnix(t.CreatedAt), toUnix(t.UpdatedAt),
		t.ProgramID.String(),
	)
	if err != nil {
		return wrap("add task", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("add task", sql.ErrNoRows)
	}
	return nil
}

// UpdateTask rewrites a task's mutable fields. The task keeps its position
// and creation anchor.
func (s *Store) UpdateTask(ctx context.Context, t *maintenance.MaintenanceTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, vendor = ?, frequency = ?, day = ?, month = ?, date = ?,
			updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.Vendor,
		string(t.Rule.Frequency), nullStr(t.Rule.Day), nullInt(t.Rule.Month), nullInt(t.Rule.Date),
		t.UpdatedBy.String(), toUnix(t.UpdatedAt),
		t.ID.String(),
	)
	if err != nil {
		return wrap("update task", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("update task", sql.ErrNoRows)
	}
	return nil
}

// RenameProgram updates the program name. Duplicate names surface as a
// unique violation.
func (s *Store) RenameProgram(ctx context.Context, id uuid.UUID, name string, actor uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE programs SET name = ?, updated_by = ?, updated_at = ? WHERE id = ?",
		name, actor.String(), toUnix(time.Now()), id.String(),
	)
	if err != nil {
		return wrap("rename program", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("rename program", sql.ErrNoRows)
	}
	return nil
}

// GetProgram fetches one program with its tasks in declaration order.
func (s *Store) GetProgram(ctx context.Context, id uuid.UUID) (maintenance.MaintenanceProgram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, status, created_by, updated_by, created_at, updated_at
		 FROM programs WHERE id = ?`, id.String())

	p, err := scanProgram(row)
	if err != nil {
		return maintenance.MaintenanceProgram{}, wrap("get program", err)
	}

	tasks, err := s.tasksForProgram(ctx, id)
	if err != nil {
		return maintenance.MaintenanceProgram{}, err
	}
	p.Tasks = tasks
	return p, nil
}

// GetProgramsByIDs fetches the given programs in descending creation-time
// order, each with tasks in declaration order. IDs that match no row are
// silently skipped: assignments hold soft references and a deleted program
// must not fail resolution.
func (s *Store) GetProgramsByIDs(ctx context.Context, ids []uuid.UUID) ([]maintenance.MaintenanceProgram, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := "?"
	args := []any{ids[0].String()}
	for _, id := range ids[1:] {
		placeholders += ", ?"
		args = append(args, id.String())
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, created_by, updated_by, created_at, updated_at
		 FROM programs WHERE id IN (`+placeholders+`)
		 ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, wrap("query programs", err)
	}
	defer rows.Close()

	programs, err := scanPrograms(rows)
	if err != nil {
		return nil, err
	}

	for i := range programs {
		tasks, err := s.tasksForProgram(ctx, programs[i].ID)
		if err != nil {
			return nil, err
		}
		programs[i].Tasks = tasks
	}
	return programs, nil
}

// ListPrograms returns one page of programs (without tasks), newest first,
// along with the total program count.
func (s *Store) ListPrograms(ctx context.Context, offset, limit int) ([]maintenance.MaintenanceProgram, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM programs").Scan(&total); err != nil {
		return nil, 0, wrap("count programs", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, created_by, updated_by, created_at, updated_at
		 FROM programs ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, wrap("query programs", err)
	}
	defer rows.Close()

	programs, err := scanPrograms(rows)
	if err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}

// ListActivePrograms returns every active program with its tasks, for the
// daily runner pass.
func (s *Store) ListActivePrograms(ctx context.Context) ([]maintenance.MaintenanceProgram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, created_by, updated_by, created_at, updated_at
		 FROM programs WHERE status = 'active' ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, wrap("query active programs", err)
	}
	defer rows.Close()

	programs, err := scanPrograms(rows)
	if err != nil {
		return nil, err
	}

	for i := range programs {
		tasks, err := s.tasksForProgram(ctx, programs[i].ID)
		if err != nil {
			return nil, err
		}
		programs[i].Tasks = tasks
	}
	return programs, nil
}

func (s *Store) tasksForProgram(ctx context.Context, programID uuid.UUID) ([]maintenance.MaintenanceTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, program_id, name, vendor, frequency, day, month, date,
			position, status, created_by, updated_by, created_at, updated_at
		 FROM tasks WHERE program_id = ? ORDER BY position`, programID.String())
	if err != nil {
		return nil, wrap("query tasks", err)
	}
	defer rows.Close()

	var tasks []maintenance.MaintenanceTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrap("scan task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate tasks", err)
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row rowScanner) (maintenance.MaintenanceProgram, error) {
	var (
		p                    maintenance.MaintenanceProgram
		idRaw, status        string
		createdBy, updatedBy sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&idRaw, &p.Name, &status, &createdBy, &updatedBy, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.ID, err = uuid.Parse(idRaw)
	if err != nil {
		return p, err
	}
	p.Status = maintenance.Status(status)
	p.CreatedBy = parseNullUUID(createdBy)
	p.UpdatedBy = parseNullUUID(updatedBy)
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return p, nil
}

func scanPrograms(rows *sql.Rows) ([]maintenance.MaintenanceProgram, error) {
	var programs []maintenance.MaintenanceProgram
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, wrap("scan program", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate programs", err)
	}
	return programs, nil
}

func scanTask(row rowScanner) (maintenance.MaintenanceTask, error) {
	var (
		t                    maintenance.MaintenanceTask
		idRaw, progRaw       string
		freq                 string
		day                  sql.NullString
		month, date          sql.NullInt64
		status               string
		createdBy, updatedBy sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&idRaw, &progRaw, &t.Name, &t.Vendor, &freq, &day, &month, &date,
		&t.Position, &status, &createdBy, &updatedBy, &createdAt, &updatedAt)
	if err != nil {
		return t, err
	}
	if t.ID, err = uuid.Parse(idRaw); err != nil {
		return t, err
	}
	if t.ProgramID, err = uuid.Parse(progRaw); err != nil {
		return t, err
	}
	t.Rule = recurrence.Rule{
		Frequency: recurrence.Frequency(freq),
		Day:       day.String,
		Month:     int(month.Int64),
		Date:      int(date.Int64),
	}
	t.Status = maintenance.Status(status)
	t.CreatedBy = parseNullUUID(createdBy)
	t.UpdatedBy = parseNullUUID(updatedBy)
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	return t, nil
}

func parseNullUUID(v sql.NullString) uuid.UUID {
	if !v.Valid {
		return uuid.Nil
	}
	id, err := uuid.Parse(v.String)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
