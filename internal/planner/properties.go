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
	"git.home.luguber.info/inful/pmtrack/internal/store"
)

// CreatePropertyInput describes a new property with its initial wings.
type CreatePropertyInput struct {
	Name  string   `json:"name"`
	Wings []string `json:"wings"`
}

// PropertyService manages properties and their wings.
type PropertyService struct {
	store *store.Store
	log   *slog.Logger
}

// NewPropertyService creates a PropertyService.
func NewPropertyService(s *store.Store, log *slog.Logger) *PropertyService {
	if log == nil {
		log = slog.Default()
	}
	return &PropertyService{store: s, log: log}
}

// Create validates and persists a new property with its wings.
func (svc *PropertyService) Create(ctx context.Context, in CreatePropertyInput) (maintenance.Property, error) {
	var p maintenance.Property

	vr := foundation.Required("name", in.Name)
	seen := map[string]bool{}
	for _, wn := range in.Wings {
		vr = vr.Combine(foundation.Required("wings", wn))
		if seen[wn] {
			vr = vr.Combine(foundation.Invalid(
				foundation.NewFieldError("wings", "duplicate", "duplicate wing name: "+wn)))
		}
		seen[wn] = true
	}
	if err := vr.ToError(); err != nil {
		return p, err
	}

	now := time.Now()
	p = maintenance.Property{
		ID:        uuid.New(),
		Name:      in.Name,
		Status:    maintenance.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, wn := range in.Wings {
		p.Wings = append(p.Wings, maintenance.Wing{
			ID:         uuid.New(),
			PropertyID: p.ID,
			Name:       wn,
			Status:     maintenance.StatusActive,
		})
	}

	if err := svc.store.CreateProperty(ctx, &p); err != nil {
		return p, errors.WrapError(err, errors.CategoryStorage, "failed to create property").Build()
	}

	svc.log.Info("property created",
		logfields.PropertyID(p.ID.String()),
		slog.String("name", p.Name),
		slog.Int("wings", len(p.Wings)))
	return p, nil
}

// AddWing appends a wing to an existing property.
func (svc *PropertyService) AddWing(ctx context.Context, propertyID uuid.UUID, name string) (maintenance.Wing, error) {
	var w maintenance.Wing
	if err := foundation.Required("name", name).ToError(); err != nil {
		return w, err
	}
	if _, err := svc.Get(ctx, propertyID); err != nil {
		return w, err
	}

	w = maintenance.Wing{
		ID:         uuid.New(),
		PropertyID: propertyID,
		Name:       name,
		Status:     maintenance.StatusActive,
	}
	if err := svc.store.AddWing(ctx, &w); err != nil {
		return w, errors.WrapError(err, errors.CategoryStorage, "failed to add wing").Build()
	}

	svc.log.Info("wing added",
		logfields.PropertyID(propertyID.String()),
		logfields.WingID(w.ID.String()),
		slog.String("name", name))
	return w, nil
}

// Get fetches one property with all of its wings.
func (svc *PropertyService) Get(ctx context.Context, id uuid.UUID) (maintenance.Property, error) {
	p, err := svc.store.GetProperty(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return p, errors.NotFoundError("property not found").
				WithContext(logfields.KeyPropertyID, id.String()).Build()
		}
		return p, errors.WrapError(err, errors.CategoryStorage, "failed to load property").Build()
	}
	return p, nil
}

// List returns one page of properties, newest first.
func (svc *PropertyService) List(ctx context.Context, page, perPage int) (Page[maintenance.Property], error) {
	offset, limit := pageBounds(page, perPage)
	items, total, err := svc.store.ListProperties(ctx, offset, limit)
	if err != nil {
		return Page[maintenance.Property]{},
			errors.WrapError(err, errors.CategoryStorage, "failed to list properties").Build()
	}
	return pageOf(items, page, perPage, total), nil
}
