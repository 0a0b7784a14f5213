package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/foundation"
	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/pmtrack/internal/logfields"
	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
	"git.home.luguber.info/inful/pmtrack/internal/store"
)

// TaskInput describes one task in a create or update request.
type TaskInput struct {
	Name   string          `json:"name"`
	Vendor string          `json:"vendor"`
	Rule   recurrence.Rule `json:"rule"`
}

// CreateProgramInput describes a new program with its initial tasks.
type CreateProgramInput struct {
	Name  string      `json:"name"`
	Tasks []TaskInput `json:"tasks"`
	Actor uuid.UUID   `json:"-"`
}

// ProgramService manages maintenance programs and their tasks.
type ProgramService struct {
	store *store.Store
	log   *slog.Logger
}

// NewProgramService creates a ProgramService.
func NewProgramService(s *store.Store, log *slog.Logger) *ProgramService {
	if log == nil {
		log = slog.Default()
	}
	return &ProgramService{store: s, log: log}
}

func validateTaskInput(in TaskInput) foundation.ValidationResult {
	return foundation.Required("name", in.Name).
		Combine(in.Rule.Validate())
}

// Create validates and persists a new program. Program names are unique
// across the portfolio; task names are unique within the program.
func (svc *ProgramService) Create(ctx context.Context, in CreateProgramInput) (maintenance.MaintenanceProgram, error) {
	var p maintenance.MaintenanceProgram

	vr := foundation.Required("name", in.Name)
	seen := map[string]bool{}
	for _, t := range in.Tasks {
		vr = vr.Combine(validateTaskInput(t))
		if seen[t.Name] {
			vr = vr.Combine(foundation.Invalid(
				foundation.NewFieldError("tasks", "duplicate", "duplicate task name: "+t.Name)))
		}
		seen[t.Name] = true
	}
	if err := vr.ToError(); err != nil {
		return p, err
	}

	now := time.Now()
	p = maintenance.MaintenanceProgram{
		ID:        uuid.New(),
		Name:      in.Name,
		Status:    maintenance.StatusActive,
		CreatedBy: in.Actor,
		UpdatedBy: in.Actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, t := range in.Tasks {
		p.Tasks = append(p.Tasks, maintenance.MaintenanceTask{
			ID:        uuid.New(),
			ProgramID: p.ID,
			Name:      t.Name,
			Vendor:    t.Vendor,
			Rule:      t.Rule,
			Position:  i + 1,
			Status:    maintenance.StatusActive,
			CreatedBy: in.Actor,
			UpdatedBy: in.Actor,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := svc.store.CreateProgram(ctx, &p); err != nil {
		if store.IsUniqueViolation(err) {
			return p, errors.AlreadyExistsError("a program with this name already exists").
				WithContext("name", in.Name).Build()
		}
		return p, errors.WrapError(err, errors.CategoryStorage, "failed to create program").Build()
	}

	svc.log.Info("program created",
		logfields.ProgramID(p.ID.String()),
		slog.String("name", p.Name),
		slog.Int("tasks", len(p.Tasks)))
	return p, nil
}

// Rename changes a program's name, keeping the uniqueness guarantee.
func (svc *ProgramService) Rename(ctx context.Context, id uuid.UUID, name string, actor uuid.UUID) (maintenance.MaintenanceProgram, error) {
	var p maintenance.MaintenanceProgram
	if err := foundation.Required("name", name).ToError(); err != nil {
		return p, err
	}

	if err := svc.store.RenameProgram(ctx, id, name, actor); err != nil {
		switch {
		case store.IsNotFound(err):
			return p, errors.NotFoundError("program not found").
				WithContext(logfields.KeyProgramID, id.String()).Build()
		case store.IsUniqueViolation(err):
			return p, errors.AlreadyExistsError("a program with this name already exists").
				WithContext("name", name).Build()
		default:
			return p, errors.WrapError(err, errors.CategoryStorage, "failed to rename program").Build()
		}
	}
	return svc.Get(ctx, id)
}

// AddTask appends a task to an existing program, after its current tasks.
func (svc *ProgramService) AddTask(ctx context.Context, programID uuid.UUID, in TaskInput, actor uuid.UUID) (maintenance.MaintenanceTask, error) {
	var t maintenance.MaintenanceTask
	if err := validateTaskInput(in).ToError(); err != nil {
		return t, err
	}
	if _, err := svc.Get(ctx, programID); err != nil {
		return t, err
	}

	now := time.Now()
	t = maintenance.MaintenanceTask{
		ID:        uuid.New(),
		ProgramID: programID,
		Name:      in.Name,
		Vendor:    in.Vendor,
		Rule:      in.Rule,
		Status:    maintenance.StatusActive,
		CreatedBy: actor,
		UpdatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := svc.store.AddTask(ctx, &t); err != nil {
		if store.IsUniqueViolation(err) {
			return t, errors.AlreadyExistsError("a task with this name already exists in the program").
				WithContext("name", in.Name).Build()
		}
		return t, errors.WrapError(err, errors.CategoryStorage, "failed to add task").Build()
	}

	svc.log.Info("task added",
		logfields.ProgramID(programID.String()),
		logfields.TaskID(t.ID.String()),
		slog.String("name", t.Name))
	return t, nil
}

// UpdateTask rewrites a task's name, vendor and recurrence rule. The task
// keeps its position and its recurrence anchor.
func (svc *ProgramService) UpdateTask(ctx context.Context, taskID uuid.UUID, in TaskInput, actor uuid.UUID) error {
	if err := validateTaskInput(in).ToError(); err != nil {
		return err
	}

	t := maintenance.MaintenanceTask{
		ID:        taskID,
		Name:      in.Name,
		Vendor:    in.Vendor,
		Rule:      in.Rule,
		UpdatedBy: actor,
		UpdatedAt: time.Now(),
	}
	if err := svc.store.UpdateTask(ctx, &t); err != nil {
		switch {
		case store.IsNotFound(err):
			return errors.NotFoundError("task not found").
				WithContext(logfields.KeyTaskID, taskID.String()).Build()
		case store.IsUniqueViolation(err):
			return errors.AlreadyExistsError("a task with this name already exists in the program").
				WithContext("name", in.Name).Build()
		default:
			return errors.WrapError(err, errors.CategoryStorage, "failed to update task").Build()
		}
	}
	return nil
}

// Get fetches one program with its tasks in declaration order.
func (svc *ProgramService) Get(ctx context.Context, id uuid.UUID) (maintenance.MaintenanceProgram, error) {
	p, err := svc.store.GetProgram(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return p, errors.NotFoundError("program not found").
				WithContext(logfields.KeyProgramID, id.String()).Build()
		}
		return p, errors.WrapError(err, errors.CategoryStorage, "failed to load program").Build()
	}
	return p, nil
}

// List returns one page of programs, newest first.
func (svc *ProgramService) List(ctx context.Context, page, perPage int) (Page[maintenance.MaintenanceProgram], error) {
	offset, limit := pageBounds(page, perPage)
	items, total, err := svc.store.ListPrograms(ctx, offset, limit)
	if err != nil {
		return Page[maintenance.MaintenanceProgram]{},
			errors.WrapError(err, errors.CategoryStorage, "failed to list programs").Build()
	}
	return pageOf(items, page, perPage, total), nil
}

// Toggle flips an entity between active and inactive and returns the new
// status. The same endpoint serves programs, tasks, wings, categories and
// checklist items.
func (svc *ProgramService) Toggle(ctx context.Context, ref maintenance.EntityRef) (maintenance.Status, error) {
	status, err := svc.store.ToggleStatus(ctx, ref)
	if err != nil {
		return status, err
	}
	svc.log.Info("status toggled",
		slog.String("kind", string(ref.Kind)),
		slog.String("id", ref.ID.String()),
		slog.String("status", string(status)))
	return status, nil
}
