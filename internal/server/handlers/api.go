// Package handlers implements the HTTP handlers of the maintenance API.
// Handlers decode and delegate; domain rules live in the planner services.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/pmtrack/internal/planner"
	"git.home.luguber.info/inful/pmtrack/internal/runner"
	"git.home.luguber.info/inful/pmtrack/internal/server/responses"
)

// actorHeader carries the id of the user performing a mutation. Upstream
// auth terminates before this service; the header is trusted as-is.
const actorHeader = "X-Actor-ID"

// API bundles the services behind the HTTP surface.
type API struct {
	Programs   *planner.ProgramService
	Properties *planner.PropertyService
	Resolver   *planner.AssignmentResolver
	Checklists *planner.ChecklistService
	Runner     *runner.Runner
	Errors     *errors.HTTPErrorAdapter
	Log        *slog.Logger
}

// NewAPI creates the handler set.
func NewAPI(
	programs *planner.ProgramService,
	properties *planner.PropertyService,
	resolver *planner.AssignmentResolver,
	checklists *planner.ChecklistService,
	r *runner.Runner,
	log *slog.Logger,
) *API {
	if log == nil {
		log = slog.Default()
	}
	return &API{
		Programs:   programs,
		Properties: properties,
		Resolver:   resolver,
		Checklists: checklists,
		Runner:     r,
		Errors:     errors.NewHTTPErrorAdapter(log),
		Log:        log,
	}
}

// HandleHealth reports liveness.
func (a *API) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	responses.OK(w, "healthy", map[string]string{"status": "healthy"})
}

// decode parses the request body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.ValidationError("invalid request body").
			WithContext("detail", err.Error()).Build()
	}
	return nil
}

// pathID parses the named chi URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ValidationError("invalid " + name).
			WithContext(name, raw).Build()
	}
	return id, nil
}

// pageParams reads ?page= and ?per_page= with defaults.
func pageParams(r *http.Request) (page, perPage int) {
	page = 1
	perPage = planner.DefaultPerPage
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			perPage = n
		}
	}
	return page, perPage
}

// actor extracts the acting user id, if the gateway forwarded one.
func actor(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(actorHeader)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ValidationError("invalid actor id").Build()
	}
	return id, nil
}
