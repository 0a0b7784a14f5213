package handlers

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/pmtrack/internal/recurrence"
	"git.home.luguber.info/inful/pmtrack/internal/server/responses"
)

// HandleTriggerRun executes the daily pass immediately. The run lock still
// applies: a manual trigger after today's scheduled pass reports skipped.
// An optional ?date=YYYY-MM-DD runs a pass for that date instead of today,
// which is how missed days are backfilled.
func (a *API) HandleTriggerRun(w http.ResponseWriter, r *http.Request) {
	today := recurrence.DateOf(time.Now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := recurrence.ParseDate(raw)
		if err != nil {
			a.Errors.WriteErrorResponse(w, r,
				errors.ValidationError("date must be YYYY-MM-DD").Build())
			return
		}
		today = parsed
	}

	report, err := a.Runner.RunOnce(r.Context(), today)
	if err != nil {
		a.Errors.WriteErrorResponse(w, r, err)
		return
	}
	responses.OK(w, "pass executed", report)
}
