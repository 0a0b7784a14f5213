package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/pmtrack/internal/logfields"
	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
	"git.home.luguber.info/inful/pmtrack/internal/store"
	"git.home.luguber.info/inful/pmtrack/internal/util/sets"
)

// ResolvedTask is a task in the context of the program that owns it, as seen
// from a property's flattened task view.
type ResolvedTask struct {
	maintenance.MaintenanceTask
	ProgramName string `json:"program_name"`
}

// AssignmentResolver links wings to programs and answers the two read views
// derived from those links: wing usage per property and the flattened,
// paginated task list per property.
type AssignmentResolver struct {
	store *store.Store
	log   *slog.Logger
}

// NewAssignmentResolver creates an AssignmentResolver.
func NewAssignmentResolver(s *store.Store, log *slog.Logger) *AssignmentResolver {
	if log == nil {
		log = slog.Default()
	}
	return &AssignmentResolver{store: s, log: log}
}

// AssignPrograms replaces a wing's program set wholesale. Assigning an empty
// set keeps the record; the wing then counts as used with nothing applicable.
// Program ids are stored as soft references and are not checked for
// existence here.
func (r *AssignmentResolver) AssignPrograms(ctx context.Context, wingID uuid.UUID, programIDs []uuid.UUID) (maintenance.WingAssignment, error) {
	var a maintenance.WingAssignment

	wing, err := r.store.GetWing(ctx, wingID)
	if err != nil {
		if store.IsNotFound(err) {
			return a, errors.NotFoundError("wing not found").
				WithContext(logfields.KeyWingID, wingID.String()).Build()
		}
		return a, errors.WrapError(err, errors.CategoryStorage, "failed to load wing").Build()
	}

	// Dedupe while preserving the caller's order.
	seen := sets.New[uuid.UUID]()
	deduped := make([]uuid.UUID, 0, len(programIDs))
	for _, id := range programIDs {
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		deduped = append(deduped, id)
	}

	a = maintenance.WingAssignment{
		WingID:     wingID,
		PropertyID: wing.PropertyID,
		ProgramIDs: deduped,
		UpdatedAt:  time.Now(),
	}
	if err := r.store.UpsertAssignment(ctx, &a); err != nil {
		return a, errors.WrapError(err, errors.CategoryStorage, "failed to save assignment").Build()
	}

	r.log.Info("wing assignment replaced",
		logfields.WingID(wingID.String()),
		logfields.PropertyID(wing.PropertyID.String()),
		slog.Int("programs", len(deduped)))
	return a, nil
}

// ListWingsForProperty returns the property's active wings, each flagged
// with whether an assignment record exists for it. The flag reflects record
// existence, not record content: a wing assigned an empty program set is
// still used. Inactive wings are omitted.
func (r *AssignmentResolver) ListWingsForProperty(ctx context.Context, propertyID uuid.UUID) ([]maintenance.WingUsage, error) {
	property, err := r.store.GetProperty(ctx, propertyID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, errors.NotFoundError("property not found").
				WithContext(logfields.KeyPropertyID, propertyID.String()).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to load property").Build()
	}

	assignments, err := r.store.ListAssignmentsByProperty(ctx, propertyID)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to load assignments").Build()
	}
	assigned := sets.New[uuid.UUID]()
	for _, a := range assignments {
		assigned.Add(a.WingID)
	}

	usages := make([]maintenance.WingUsage, 0, len(property.Wings))
	for _, w := range property.Wings {
		if !w.Status.IsActive() {
			continue
		}
		usages = append(usages, maintenance.WingUsage{Wing: w, Used: assigned.Has(w.ID)})
	}
	return usages, nil
}

// ResolveTasksForProperty flattens every task of every program assigned to
// any of the property's wings into one paginated list. Programs appear
// newest first, tasks in declaration order within each program. Wing status
// does not filter this view; an assignment contributes regardless. Dangling
// program ids are skipped silently. A property with nothing assigned yields
// page 1 of 0 pages with an empty item list.
func (r *AssignmentResolver) ResolveTasksForProperty(ctx context.Context, propertyID uuid.UUID, page, perPage int) (Page[ResolvedTask], error) {
	var empty Page[ResolvedTask]

	if _, err := r.store.GetProperty(ctx, propertyID); err != nil {
		if store.IsNotFound(err) {
			return empty, errors.NotFoundError("property not found").
				WithContext(logfields.KeyPropertyID, propertyID.String()).Build()
		}
		return empty, errors.WrapError(err, errors.CategoryStorage, "failed to load property").Build()
	}

	assignments, err := r.store.ListAssignmentsByProperty(ctx, propertyID)
	if err != nil {
		return empty, errors.WrapError(err, errors.CategoryStorage, "failed to load assignments").Build()
	}

	// Union of program ids across all of the property's wing assignments.
	// The same program assigned to several wings contributes its tasks once.
	programIDs := sets.New[uuid.UUID]()
	for _, a := range assignments {
		for _, id := range a.ProgramIDs {
			programIDs.Add(id)
		}
	}
	if len(programIDs) == 0 {
		return paginate([]ResolvedTask{}, page, perPage), nil
	}

	programs, err := r.store.GetProgramsByIDs(ctx, programIDs.Values())
	if err != nil {
		return empty, errors.WrapError(err, errors.CategoryStorage, "failed to load programs").Build()
	}

	var tasks []ResolvedTask
	for _, p := range programs {
		for _, t := range p.Tasks {
			tasks = append(tasks, ResolvedTask{MaintenanceTask: t, ProgramName: p.Name})
		}
	}
	if tasks == nil {
		tasks = []ResolvedTask{}
	}
	return paginate(tasks, page, perPage), nil
}
