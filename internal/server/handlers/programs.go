package handlers

import (
	"net/http"

	"git.home.luguber.info/inful/pmtrack/internal/maintenance"
	"git.home.luguber.info/inful/pmtrack/internal/planner"
	"git.home.luguber.info/inful/pmtrack/internal/server/responses"
)

// HandleCreateProgram creates a program with its initial tasks.
func (a *API) HandleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var in planner.CreateProgramInput
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	act, err := actor(r)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	in.Actor = act

	p, err := a.Programs.Create(r.Context(), in)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.Created(w, "program created", p)
}

// HandleListPrograms returns one page of programs.
func (a *API) HandleListPrograms(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	result, err := a.Programs.List(r.Context(), page, perPage)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "programs", result)
}

// HandleGetProgram returns one program with its tasks.
func (a *API) HandleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	p, err := a.Programs.Get(r.Context(), id)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "program", p)
}

// HandleRenameProgram changes a program's name.
func (a *API) HandleRenameProgram(w http.ResponseWriter, r *http.Request) {
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
	act, err := actor(r)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	p, err := a.Programs.Rename(r.Context(), id, in.Name, act)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "program renamed", p)
}

// HandleAddTask appends a task to a program.
func (a *API) HandleAddTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	var in planner.TaskInput
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	act, err := actor(r)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	t, err := a.Programs.AddTask(r.Context(), id, in, act)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.Created(w, "task added", t)
}

// HandleUpdateTask rewrites a task's mutable fields.
func (a *API) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	var in planner.TaskInput
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	act, err := actor(r)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	if err := a.Programs.UpdateTask(r.Context(), id, in, act); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "task updated", nil)
}

// HandleToggleStatus flips an entity between active and inactive. One
// endpoint serves every toggleable kind.
func (a *API) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	var in maintenance.EntityRef
	if err := decode(r, &in); err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}

	status, err := a.Programs.Toggle(r.Context(), in)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "status toggled", map[string]string{"status": string(status)})
}
