// Package maintenance holds the preventive-maintenance domain model:
// properties and their wings, maintenance programs with recurring tasks,
// wing↔program assignments, and checklist categories with sequentially
// coded items.
package maintenance

import (
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
)

// Property is a managed building subdivided into wings.
type Property struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Wings     []Wing    `json:"wings"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Wing is a subdivision of a property, independently activatable.
type Wing struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
}

// MaintenanceProgram is a named PM program owning an ordered list of tasks.
// Program names are unique across the portfolio.
type MaintenanceProgram struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Tasks     []MaintenanceTask `json:"tasks"`
	Status    Status            `json:"status"`
	CreatedBy uuid.UUID         `json:"created_by"`
	UpdatedBy uuid.UUID         `json:"updated_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// MaintenanceTask is one recurring unit of work, owned exclusively by its
// program. CreatedAt doubles as the recurrence anchor: quarterly rules count
// from its month, bi-annual rules from its year.
type MaintenanceTask struct {
	ID        uuid.UUID       `json:"id"`
	ProgramID uuid.UUID       `json:"program_id"`
	Name      string          `json:"name"`
	Vendor    string          `json:"vendor"`
	Rule      recurrence.Rule `json:"rule"`
	Position  int             `json:"position"` // declaration order within the program
	Status    Status          `json:"status"`
	CreatedBy uuid.UUID       `json:"created_by"`
	UpdatedBy uuid.UUID       `json:"updated_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Anchor returns the task's recurrence anchor date.
func (t MaintenanceTask) Anchor() recurrence.Date {
	return recurrence.DateOf(t.CreatedAt)
}

// WingAssignment links one wing to the set of programs applicable to it.
// At most one record exists per wing; updates replace the program set
// wholesale. Program ids are soft references — a deleted program leaves a
// dangling id that readers filter out.
type WingAssignment struct {
	WingID     uuid.UUID   `json:"wing_id"`
	PropertyID uuid.UUID   `json:"property_id"`
	ProgramIDs []uuid.UUID `json:"program_ids"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// WingUsage is a wing annotated with whether an assignment record exists for
// it, independent of whether that record's program set is empty.
type WingUsage struct {
	Wing
	Used bool `json:"used"`
}

// ChecklistCategory owns checklist items. Category names are unique.
type ChecklistCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChecklistItem is an inspection item tied to a category, identified by a
// globally unique, zero-padded 8-digit sequential code. FileRef is an opaque
// reference supplied by the upload collaborator; byte handling stays there.
type ChecklistItem struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Type       string          `json:"type,omitempty"`
	Rule       recurrence.Rule `json:"rule"`
	FileRef    string          `json:"file_ref,omitempty"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// EntityKind names a toggleable entity class for the generic status toggle.
type EntityKind string

const (
	KindProgram  EntityKind = "program"
	KindTask     EntityKind = "task"
	KindWing     EntityKind = "wing"
	KindCategory EntityKind = "category"
	KindItem     EntityKind = "checklist_item"
)

// EntityRef identifies one toggleable entity.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}
