package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pmtrack/internal/notify"
	"git.home.luguber.info/inful/pmtrack/internal/planner"
	"git.home.luguber.info/inful/pmtrack/internal/runner"
	"git.home.luguber.info/inful/pmtrack/internal/server/handlers"
	"git.home.luguber.info/inful/pmtrack/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	api := handlers.NewAPI(
		planner.NewProgramService(s, nil),
		planner.NewPropertyService(s, nil),
		planner.NewAssignmentResolver(s, nil),
		planner.NewChecklistService(s, nil),
		runner.New(s, notify.LogNotifier{}, nil, nil),
		nil,
	)
	srv := New(api, Options{Addr: ":0"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type envelope struct {
	Status     bool            `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", uuid.NewString())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func createProgram(t *testing.T, ts *httptest.Server, name string) uuid.UUID {
	t.Helper()
	code, env := doJSON(t, http.MethodPost, ts.URL+"/programs", map[string]any{
		"name": name,
		"tasks": []map[string]any{{
			"name":   "Filter swap",
			"vendor": "CoolAir",
			"rule":   map[string]any{"frequency": "monthly", "date": 15},
		}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var data struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.ID
}

func createProperty(t *testing.T, ts *httptest.Server, name string, wings ...string) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	code, env := doJSON(t, http.MethodPost, ts.URL+"/properties", map[string]any{
		"name": name, "wings": wings,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var data struct {
		ID    uuid.UUID `json:"id"`
		Wings []struct {
			ID uuid.UUID `json:"id"`
		} `json:"wings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	ids := make([]uuid.UUID, 0, len(data.Wings))
	for _, w := range data.Wings {
		ids = append(ids, w.ID)
	}
	return data.ID, ids
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	code, env := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
}

func TestProgramLifecycleHTTP(t *testing.T) {
	ts := newTestServer(t)
	id := createProgram(t, ts, "Fire safety")

	code, env := doJSON(t, http.MethodGet, ts.URL+"/programs/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)

	// Duplicate name maps to 400 with the envelope shape.
	code, env = doJSON(t, http.MethodPost, ts.URL+"/programs", map[string]any{"name": "Fire safety"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Status)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.NotEmpty(t, env.Message)

	// Unknown program maps to 404.
	code, _ = doJSON(t, http.MethodGet, ts.URL+"/programs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Malformed id maps to 400.
	code, _ = doJSON(t, http.MethodGet, ts.URL+"/programs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestToggleHTTP(t *testing.T) {
	ts := newTestServer(t)
	id := createProgram(t, ts, "Elevators")

	code, env := doJSON(t, http.MethodPost, ts.URL+"/status/toggle", map[string]any{
		"kind": "program", "id": id,
	})
	require.Equal(t, http.StatusOK, code)
	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "inactive", data["status"])

	code, env = doJSON(t, http.MethodPost, ts.URL+"/status/toggle", map[string]any{
		"kind": "program", "id": id,
	})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "active", data["status"])
}

func TestResolveTasksEmptyPropertyHTTP(t *testing.T) {
	ts := newTestServer(t)
	propID, _ := createProperty(t, ts, "Empty Estate", "W1")

	code, env := doJSON(t, http.MethodGet, ts.URL+"/properties/"+propID.String()+"/tasks", nil)
	require.Equal(t, http.StatusOK, code)

	var page struct {
		Items      []json.RawMessage `json:"items"`
		Page       int               `json:"page"`
		TotalPages int               `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.TotalPages)
}

func TestAssignAndListWingsHTTP(t *testing.T) {
	ts := newTestServer(t)
	programID := createProgram(t, ts, "HVAC")
	propID, wingIDs := createProperty(t, ts, "Harbor Tower", "W1", "W2")

	code, _ := doJSON(t, http.MethodPut, ts.URL+"/wings/"+wingIDs[0].String()+"/programs",
		map[string]any{"program_ids": []uuid.UUID{programID}})
	require.Equal(t, http.StatusOK, code)

	code, env := doJSON(t, http.MethodGet, ts.URL+"/properties/"+propID.String()+"/wings", nil)
	require.Equal(t, http.StatusOK, code)

	var usages []struct {
		ID   uuid.UUID `json:"id"`
		Used bool      `json:"used"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &usages))
	require.Len(t, usages, 2)
	byID := map[uuid.UUID]bool{}
	for _, u := range usages {
		byID[u.ID] = u.Used
	}
	assert.True(t, byID[wingIDs[0]])
	assert.False(t, byID[wingIDs[1]])

	code, env = doJSON(t, http.MethodGet, ts.URL+"/properties/"+propID.String()+"/tasks", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Items      []json.RawMessage `json:"items"`
		TotalPages int               `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.TotalPages)
}

func TestChecklistHTTP(t *testing.T) {
	ts := newTestServer(t)

	code, env := doJSON(t, http.MethodGet, ts.URL+"/items/next-code", nil)
	require.Equal(t, http.StatusOK, code)
	var next map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &next))
	assert.Equal(t, "00000001", next["code"])

	code, env = doJSON(t, http.MethodPost, ts.URL+"/categories", map[string]any{"name": "Lobby"})
	require.Equal(t, http.StatusCreated, code)
	var cat struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cat))

	code, env = doJSON(t, http.MethodPost, ts.URL+"/categories/"+cat.ID.String()+"/items",
		map[string]any{
			"name": "Check extinguishers",
			"type": "safety",
			"rule": map[string]any{"frequency": "weekly", "day": "monday"},
		})
	require.Equal(t, http.StatusCreated, code)
	var item struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, "00000001", item.Code)
}

func TestTriggerRunHTTP(t *testing.T) {
	ts := newTestServer(t)
	createProgram(t, ts, "Daily rounds")

	code, env := doJSON(t, http.MethodPost, ts.URL+"/runner/run?date=2026-09-07", nil)
	require.Equal(t, http.StatusOK, code)
	var report struct {
		RunDate string `json:"run_date"`
		Skipped bool   `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "2026-09-07", report.RunDate)
	assert.False(t, report.Skipped)

	// The same date again reports skipped.
	code, env = doJSON(t, http.MethodPost, ts.URL+"/runner/run?date=2026-09-07", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.True(t, report.Skipped)

	code, _ = doJSON(t, http.MethodPost, ts.URL+"/runner/run?date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestValidationErrorShape(t *testing.T) {
	ts := newTestServer(t)

	code, env := doJSON(t, http.MethodPost, ts.URL+"/programs", map[string]any{
		"name": "Bad rule",
		"tasks": []map[string]any{{
			"name": "T",
			"rule": map[string]any{"frequency": "fortnightly"},
		}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Status)
	assert.Contains(t, env.Message, "frequency")

	var data []any
	require.NoError(t, json.Unmarshal(env.Data, &data), "error envelope data is a list")
	assert.Empty(t, data)
}

func TestListProgramsPaginationHTTP(t *testing.T) {
	ts := newTestServer(t)
	for i := 1; i <= 3; i++ {
		createProgram(t, ts, fmt.Sprintf("Program %d", i))
	}

	code, env := doJSON(t, http.MethodGet, ts.URL+"/programs?page=2&per_page=2", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Items      []json.RawMessage `json:"items"`
		Page       int               `json:"page"`
		TotalPages int               `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
}
