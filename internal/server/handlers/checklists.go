package handlers

import (
	"net/http"

	"git.home.luguber.info/inful/pmtrack/internal/planner"
	"git.home.luguber.info/inful/pmtrack/internal/server/responses"
)

// HandleCreateCategory creates a checklist category.
func (a *API) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	c, err := a.Checklists.CreateCategory(r.Context(), in.Name)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.Created(w, "category created", c)
}

// HandleListCategories returns one page of categories.
func (a *API) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	result, err := a.Checklists.ListCategories(r.Context(), page, perPage)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "categories", result)
}

// HandleRenameCategory changes a category name.
func (a *API) HandleRenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	if err := a.Checklists.RenameCategory(r.Context(), id, in.Name); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "category renamed", nil)
}

// HandleCreateItem creates a checklist item under a category. The item code
// is allocated server-side and returned in the response.
func (a *API) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	var in planner.ItemInput
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	item, err := a.Checklists.CreateItem(r.Context(), id, in)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.Created(w, "checklist item created", item)
}

// HandleListItems returns a category's items in code order.
func (a *API) HandleListItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	items, err := a.Checklists.ListItems(r.Context(), id)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "checklist items", items)
}

// HandleUpdateItem rewrites an item's mutable fields.
func (a *API) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	var in planner.ItemInput
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	item, err := a.Checklists.UpdateItem(r.Context(), id, in)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "checklist item updated", item)
}

// HandleNextCode previews the next item code without consuming it.
func (a *API) HandleNextCode(w http.ResponseWriter, r *http.Request) {
	code, err := a.Checklists.NextCode(r.Context())
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "next code", map[string]string{"code": code})
}
