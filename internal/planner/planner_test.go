package planner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
	"git.home.luguber.info/inful/pmtrack/internal/store"
)

type fixture struct {
	store      *store.Store
	programs   *ProgramService
	properties *PropertyService
	resolver   *AssignmentResolver
	checklists *ChecklistService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return fixture{
		store:      s,
		programs:   NewProgramService(s, nil),
		properties: NewPropertyService(s, nil),
		resolver:   NewAssignmentResolver(s, nil),
		checklists: NewChecklistService(s, nil),
	}
}

func monthlyTask(name string, date int) TaskInput {
	return TaskInput{
		Name:   name,
		Vendor: "Acme Maintenance",
		Rule:   recurrence.Rule{Frequency: recurrence.FreqMonthly, Date: date},
	}
}

func (f fixture) createProgram(t *testing.T, name string, tasks ...TaskInput) maintenance.MaintenanceProgram {
	t.Helper()
	p, err := f.programs.Create(context.Background(), CreateProgramInput{
		Name:  name,
		Tasks: tasks,
		Actor: uuid.New(),
	})
	require.NoError(t, err)
	return p
}

func (f fixture) createProperty(t *testing.T, name string, wings ...string) maintenance.Property {
	t.Helper()
	p, err := f.properties.Create(context.Background(), CreatePropertyInput{Name: name, Wings: wings})
	require.NoError(t, err)
	return p
}

func TestCreateProgramValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.programs.Create(ctx, CreateProgramInput{Name: "  "})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	// Weekly rules take a day, not a date.
	_, err = f.programs.Create(ctx, CreateProgramInput{
		Name: "Bad rule",
		Tasks: []TaskInput{{
			Name: "T", Rule: recurrence.Rule{Frequency: recurrence.FreqWeekly, Date: 10},
		}},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = f.programs.Create(ctx, CreateProgramInput{
		Name:  "Dup tasks",
		Tasks: []TaskInput{monthlyTask("Same", 1), monthlyTask("Same", 2)},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestCreateProgramDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.createProgram(t, "Fire safety", monthlyTask("Sprinklers", 1))

	_, err := f.programs.Create(context.Background(), CreateProgramInput{Name: "Fire safety"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
}

func TestRenameProgram(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProgram(t, "Old", monthlyTask("T", 1))
	f.createProgram(t, "Taken", monthlyTask("T", 1))

	got, err := f.programs.Rename(ctx, p.ID, "New", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	_, err = f.programs.Rename(ctx, p.ID, "Taken", uuid.New())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))

	_, err = f.programs.Rename(ctx, uuid.New(), "Ghost", uuid.New())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestAddTaskToMissingProgram(t *testing.T) {
	f := newFixture(t)

	_, err := f.programs.AddTask(context.Background(), uuid.New(), monthlyTask("T", 1), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProgram(t, "HVAC", monthlyTask("Filters", 1), monthlyTask("Coils", 15))
	actor := uuid.New()

	err := f.programs.UpdateTask(ctx, p.Tasks[0].ID, TaskInput{
		Name:   "Filter replacement",
		Vendor: "AirCo",
		Rule:   recurrence.Rule{Frequency: recurrence.FreqQuarterly, Date: 5},
	}, actor)
	require.NoError(t, err)

	got, err := f.programs.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "Filter replacement", got.Tasks[0].Name)
	assert.Equal(t, "AirCo", got.Tasks[0].Vendor)
	assert.Equal(t, recurrence.FreqQuarterly, got.Tasks[0].Rule.Frequency)
	assert.Equal(t, actor, got.Tasks[0].UpdatedBy)
	// Position and the second task are untouched.
	assert.Equal(t, "Coils", got.Tasks[1].Name)

	err = f.programs.UpdateTask(ctx, uuid.New(), monthlyTask("Ghost", 1), actor)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestToggleViaService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createProgram(t, "Elevators", monthlyTask("Cables", 1))

	status, err := f.programs.Toggle(ctx, maintenance.EntityRef{Kind: maintenance.KindProgram, ID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, maintenance.StatusInactive, status)
}

func TestListWingsUsageFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prop := f.createProperty(t, "Harbor Tower", "W1", "W2", "W3", "W4")
	program := f.createProgram(t, "HVAC", monthlyTask("Filters", 1))

	// W1: assigned a real program. W2: assigned an empty set. W3: never
	// assigned. W4: toggled inactive.
	_, err := f.resolver.AssignPrograms(ctx, prop.Wings[0].ID, []uuid.UUID{program.ID})
	require.NoError(t, err)
	_, err = f.resolver.AssignPrograms(ctx, prop.Wings[1].ID, nil)
	require.NoError(t, err)
	_, err = f.programs.Toggle(ctx, maintenance.EntityRef{Kind: maintenance.KindWing, ID: prop.Wings[3].ID})
	require.NoError(t, err)

	usages, err := f.resolver.ListWingsForProperty(ctx, prop.ID)
	require.NoError(t, err)
	require.Len(t, usages, 3, "inactive wing excluded")

	byName := map[string]bool{}
	for _, u := range usages {
		byName[u.Name] = u.Used
	}
	assert.True(t, byName["W1"])
	assert.True(t, byName["W2"], "empty assignment still marks the wing used")
	assert.False(t, byName["W3"])
}

func TestAssignProgramsUnknownWing(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.AssignPrograms(context.Background(), uuid.New(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestAssignProgramsDedupes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prop := f.createProperty(t, "Harbor Tower", "W1")
	program := f.createProgram(t, "HVAC", monthlyTask("Filters", 1))

	a, err := f.resolver.AssignPrograms(ctx, prop.Wings[0].ID,
		[]uuid.UUID{program.ID, program.ID, program.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{program.ID}, a.ProgramIDs)
}

func TestResolveTasksEmptyProperty(t *testing.T) {
	f := newFixture(t)
	prop := f.createProperty(t, "Empty Estate", "W1")

	page, err := f.resolver.ResolveTasksForProperty(context.Background(), prop.ID, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.TotalPages)
}

func TestResolveTasksFlattensAndDedupes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prop := f.createProperty(t, "Harbor Tower", "W1", "W2")
	first := f.createProgram(t, "First program", monthlyTask("A1", 1), monthlyTask("A2", 2))
	second := f.createProgram(t, "Second program", monthlyTask("B1", 3))
	dangling := uuid.New()

	// Both wings reference the first program; its tasks must appear once.
	_, err := f.resolver.AssignPrograms(ctx, prop.Wings[0].ID, []uuid.UUID{first.ID, dangling})
	require.NoError(t, err)
	_, err = f.resolver.AssignPrograms(ctx, prop.Wings[1].ID, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)

	page, err := f.resolver.ResolveTasksForProperty(ctx, prop.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.TotalPages)

	// Newest program first, tasks in declaration order within it.
	assert.Equal(t, "B1", page.Items[0].Name)
	assert.Equal(t, "Second program", page.Items[0].ProgramName)
	assert.Equal(t, "A1", page.Items[1].Name)
	assert.Equal(t, "A2", page.Items[2].Name)
}

func TestResolveTasksKeepsInactiveWingAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prop := f.createProperty(t, "Harbor Tower", "W1")
	program := f.createProgram(t, "HVAC", monthlyTask("Filters", 1))
	_, err := f.resolver.AssignPrograms(ctx, prop.Wings[0].ID, []uuid.UUID{program.ID})
	require.NoError(t, err)

	// Wing status filters the wing listing, not the flattened task view:
	// an assignment on a deactivated wing still contributes its programs.
	_, err = f.programs.Toggle(ctx, maintenance.EntityRef{Kind: maintenance.KindWing, ID: prop.Wings[0].ID})
	require.NoError(t, err)

	page, err := f.resolver.ResolveTasksForProperty(ctx, prop.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Filters", page.Items[0].Name)
	assert.Equal(t, 1, page.TotalPages)
}

func TestResolveTasksPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prop := f.createProperty(t, "Harbor Tower", "W1")
	tasks := make([]TaskInput, 0, 7)
	for _, n := range []string{"T1", "T2", "T3", "T4", "T5", "T6", "T7"} {
		tasks = append(tasks, monthlyTask(n, 1))
	}
	program := f.createProgram(t, "Big program", tasks...)
	_, err := f.resolver.AssignPrograms(ctx, prop.Wings[0].ID, []uuid.UUID{program.ID})
	require.NoError(t, err)

	page, err := f.resolver.ResolveTasksForProperty(ctx, prop.ID, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "T4", page.Items[0].Name)

	// A page past the end is empty but keeps the page arithmetic.
	page, err = f.resolver.ResolveTasksForProperty(ctx, prop.ID, 9, 3)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
}

func TestChecklistLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	next, err := f.checklists.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "00000001", next)

	cat, err := f.checklists.CreateCategory(ctx, "Lobby")
	require.NoError(t, err)

	_, err = f.checklists.CreateCategory(ctx, "Lobby")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))

	item, err := f.checklists.CreateItem(ctx, cat.ID, ItemInput{
		Name: "Inspect extinguishers",
		Rule: recurrence.Rule{Frequency: recurrence.FreqWeekly, Day: "monday"},
	})
	require.NoError(t, err)
	assert.Equal(t, "00000001", item.Code)

	second, err := f.checklists.CreateItem(ctx, cat.ID, ItemInput{
		Name: "Test alarm panel",
		Rule: recurrence.Rule{Frequency: recurrence.FreqDaily},
	})
	require.NoError(t, err)
	assert.Equal(t, "00000002", second.Code)

	updated, err := f.checklists.UpdateItem(ctx, item.ID, ItemInput{
		Name: "Inspect extinguisher gauges",
		Rule: recurrence.Rule{Frequency: recurrence.FreqWeekly, Day: "friday"},
	})
	require.NoError(t, err)
	assert.Equal(t, "00000001", updated.Code, "code survives updates")
	assert.Equal(t, "friday", updated.Rule.Day)

	items, err := f.checklists.ListItems(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "00000001", items[0].Code)

	_, err = f.checklists.CreateItem(ctx, uuid.New(), ItemInput{
		Name: "Orphan",
		Rule: recurrence.Rule{Frequency: recurrence.FreqDaily},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestListProgramsPaged(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"P1", "P2", "P3"} {
		f.createProgram(t, name, monthlyTask("T", 1))
	}

	page, err := f.programs.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "P3", page.Items[0].Name, "newest first")
}
