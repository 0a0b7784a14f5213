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

// ItemInput describes a checklist item in a create or update request. The
// code is never part of the input; it comes from the allocator.
type ItemInput struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Rule    recurrence.Rule `json:"rule"`
	FileRef string          `json:"file_ref"`
}

// ChecklistService manages checklist categories and their coded items.
type ChecklistService struct {
	store *store.Store
	log   *slog.Logger
}

// NewChecklistService creates a ChecklistService.
func NewChecklistService(s *store.Store, log *slog.Logger) *ChecklistService {
	if log == nil {
		log = slog.Default()
	}
	return &ChecklistService{store: s, log: log}
}

// CreateCategory validates and persists a new category. Names are unique.
func (svc *ChecklistService) CreateCategory(ctx context.Context, name string) (maintenance.ChecklistCategory, error) {
	var c maintenance.ChecklistCategory
	if err := foundation.Required("name", name).ToError(); err != nil {
		return c, err
	}

	now := time.Now()
	c = maintenance.ChecklistCategory{
		ID:        uuid.New(),
		Name:      name,
		Status:    maintenance.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := svc.store.CreateCategory(ctx, &c); err != nil {
		if store.IsUniqueViolation(err) {
			return c, errors.AlreadyExistsError("a category with this name already exists").
				WithContext("name", name).Build()
		}
		return c, errors.WrapError(err, errors.CategoryStorage, "failed to create category").Build()
	}

	svc.log.Info("checklist category created",
		logfields.CategoryID(c.ID.String()),
		slog.String("name", name))
	return c, nil
}

// RenameCategory changes a category name, keeping uniqueness.
func (svc *ChecklistService) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	if err := foundation.Required("name", name).ToError(); err != nil {
		return err
	}

	if err := svc.store.RenameCategory(ctx, id, name); err != nil {
		switch {
		case store.IsNotFound(err):
			return errors.NotFoundError("category not found").
				WithContext(logfields.KeyCategoryID, id.String()).Build()
		case store.IsUniqueViolation(err):
			return errors.AlreadyExistsError("a category with this name already exists").
				WithContext("name", name).Build()
		default:
			return errors.WrapError(err, errors.CategoryStorage, "failed to rename category").Build()
		}
	}
	return nil
}

// ListCategories returns one page of categories, newest first.
func (svc *ChecklistService) ListCategories(ctx context.Context, page, perPage int) (Page[maintenance.ChecklistCategory], error) {
	offset, limit := pageBounds(page, perPage)
	items, total, err := svc.store.ListCategories(ctx, offset, limit)
	if err != nil {
		return Page[maintenance.ChecklistCategory]{},
			errors.WrapError(err, errors.CategoryStorage, "failed to list categories").Build()
	}
	return pageOf(items, page, perPage, total), nil
}

// NextCode previews the code the next created item will receive, without
// consuming it. Display only; creation draws its own code atomically.
func (svc *ChecklistService) NextCode(ctx context.Context) (string, error) {
	code, err := svc.store.PeekChecklistCode(ctx)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryStorage, "failed to read next code").Build()
	}
	return code, nil
}

// CreateItem validates the input, draws the next sequential code and
// persists the item. The code draw and the insert are not one transaction;
// a failed insert leaves a consumed code, which is acceptable because codes
// guarantee uniqueness and ordering, not dense usage.
func (svc *ChecklistService) CreateItem(ctx context.Context, categoryID uuid.UUID, in ItemInput) (maintenance.ChecklistItem, error) {
	var it maintenance.ChecklistItem

	vr := foundation.Required("name", in.Name).Combine(in.Rule.Validate())
	if err := vr.ToError(); err != nil {
		return it, err
	}

	if _, err := svc.store.GetCategory(ctx, categoryID); err != nil {
		if store.IsNotFound(err) {
			return it, errors.NotFoundError("category not found").
				WithContext(logfields.KeyCategoryID, categoryID.String()).Build()
		}
		return it, errors.WrapError(err, errors.CategoryStorage, "failed to load category").Build()
	}

	code, err := svc.store.AllocateChecklistCode(ctx)
	if err != nil {
		return it, errors.WrapError(err, errors.CategoryStorage, "failed to allocate item code").Build()
	}

	now := time.Now()
	it = maintenance.ChecklistItem{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Code:       code,
		Name:       in.Name,
		Type:       in.Type,
		Rule:       in.Rule,
		FileRef:    in.FileRef,
		Status:     maintenance.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := svc.store.CreateItem(ctx, &it); err != nil {
		return it, errors.WrapError(err, errors.CategoryStorage, "failed to create checklist item").Build()
	}

	svc.log.Info("checklist item created",
		logfields.ItemID(it.ID.String()),
		logfields.CategoryID(categoryID.String()),
		slog.String("code", code))
	return it, nil
}

// UpdateItem rewrites an item's mutable fields. The code never changes.
func (svc *ChecklistService) UpdateItem(ctx context.Context, itemID uuid.UUID, in ItemInput) (maintenance.ChecklistItem, error) {
	var it maintenance.ChecklistItem

	vr := foundation.Required("name", in.Name).Combine(in.Rule.Validate())
	if err := vr.ToError(); err != nil {
		return it, err
	}

	it = maintenance.ChecklistItem{
		ID:        itemID,
		Name:      in.Name,
		Type:      in.Type,
		Rule:      in.Rule,
		FileRef:   in.FileRef,
		UpdatedAt: time.Now(),
	}
	if err := svc.store.UpdateItem(ctx, &it); err != nil {
		if store.IsNotFound(err) {
			return it, errors.NotFoundError("checklist item not found").
				WithContext(logfields.KeyItemID, itemID.String()).Build()
		}
		return it, errors.WrapError(err, errors.CategoryStorage, "failed to update checklist item").Build()
	}
	return svc.GetItem(ctx, itemID)
}

// GetItem fetches one checklist item.
func (svc *ChecklistService) GetItem(ctx context.Context, id uuid.UUID) (maintenance.ChecklistItem, error) {
	it, err := svc.store.GetItem(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return it, errors.NotFoundError("checklist item not found").
				WithContext(logfields.KeyItemID, id.String()).Build()
		}
		return it, errors.WrapError(err, errors.CategoryStorage, "failed to load checklist item").Build()
	}
	return it, nil
}

// ListItems returns a category's items in code order.
func (svc *ChecklistService) ListItems(ctx context.Context, categoryID uuid.UUID) ([]maintenance.ChecklistItem, error) {
	if _, err := svc.store.GetCategory(ctx, categoryID); err != nil {
		if store.IsNotFound(err) {
			return nil, errors.NotFoundError("category not found").
				WithContext(logfields.KeyCategoryID, categoryID.String()).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to load category").Build()
	}

	items, err := svc.store.ListItemsByCategory(ctx, categoryID)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to list checklist items").Build()
	}
	return items, nil
}
