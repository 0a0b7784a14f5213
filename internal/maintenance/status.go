package maintenance

import (
	"git.home.luguber.info/inful/pmtrack/internal/foundation"
)

// Status is the two-variant activation state shared by programs, tasks,
// wings and checklist entities. It is always one of exactly two values;
// raw integers never cross an interface.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var statusNormalizer = foundation.NewNormalizer(map[string]Status{
	string(StatusActive):   StatusActive,
	string(StatusInactive): StatusInactive,
}, Status(""))

// ParseStatus normalizes a raw status string.
func ParseStatus(raw string) (Status, error) {
	return statusNormalizer.NormalizeWithError(raw)
}

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// IsActive reports whether the status is active.
func (s Status) IsActive() bool {
	return s == StatusActive
}
