package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/planner"
	"git.home.luguber.info/inful/pmtrack/internal/server/responses"
)

// HandleCreateProperty creates a property with its wings.
func (a *API) HandleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var in planner.CreatePropertyInput
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	p, err := a.Properties.Create(r.Context(), in)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.Created(w, "property created", p)
}

// HandleListProperties returns one page of properties.
func (a *API) HandleListProperties(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	result, err := a.Properties.List(r.Context(), page, perPage)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "properties", result)
}

// HandleGetProperty returns one property with all of its wings.
func (a *API) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	p, err := a.Properties.Get(r.Context(), id)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "property", p)
}

// HandleAddWing appends a wing to a property.
func (a *API) HandleAddWing(w http.ResponseWriter, r *http.Request) {
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

	wing, err := a.Properties.AddWing(r.Context(), id, in.Name)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.Created(w, "wing added", wing)
}

// HandleListWings returns the property's active wings with usage flags.
func (a *API) HandleListWings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	usages, err := a.Resolver.ListWingsForProperty(r.Context(), id)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "wings", usages)
}

// HandleAssignPrograms replaces a wing's program set.
func (a *API) HandleAssignPrograms(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	var in struct {
		ProgramIDs []uuid.UUID `json:"program_ids"`
	}
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	assignment, err := a.Resolver.AssignPrograms(r.Context(), id, in.ProgramIDs)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "programs assigned", assignment)
}

// HandleResolveTasks returns the property's flattened, paginated task list.
func (a *API) HandleResolveTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	page, perPage := pageParams(r)

	result, err := a.Resolver.ResolveTasksForProperty(r.Context(), id, page, perPage)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "tasks", result)
}
