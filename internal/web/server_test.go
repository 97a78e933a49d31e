package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/state"
	"github.com/derickschaefer/ezdota/internal/web"
	"github.com/derickschaefer/ezdota/internal/window"
)

// ─── Fixtures ─────────────────────────────────────────────────────────────────

// history has three matches inside Mon-Fri 09-18 UTC and one on a Sunday.
func history() []model.Match {
	at := func(d, h int) int64 { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC).UnixMilli() }
	m := func(id int64, ts int64, o model.Outcome) model.Match {
		return model.Match{
			ID:        id,
			Hero:      model.HeroRef{ID: 1, Name: "Anti-Mage"},
			Outcome:   o,
			Timestamp: ts,
			Duration:  model.Duration{Seconds: 1800, Formatted: "30:00"},
			Type:      model.TypeRanked,
		}
	}
	return []model.Match{
		m(4, at(8, 12), model.OutcomeWin), // Sunday
		m(3, at(6, 10), model.OutcomeWin),
		m(2, at(5, 15), model.OutcomeLoss),
		m(1, at(5, 9), model.OutcomeWin),
	}
}

func utcPolicy() window.Policy {
	p := window.DefaultPolicy()
	p.Location = time.UTC
	return p
}

func newServer(t *testing.T, refresh web.RefreshFunc) (*state.Container, http.Handler) {
	t.Helper()
	st := state.New(utcPolicy(), window.ModeWorkday)
	return st, web.NewServer(st, refresh, zerolog.Nop()).Routes()
}

func loadedServer(t *testing.T) (*state.Container, http.Handler) {
	t.Helper()
	st, h := newServer(t, nil)
	st.Load(history(), nil)
	st.SetPlayer(&model.Player{AccountID: 1, Name: "tester"})
	return st, h
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ─── JSON endpoints ───────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	_, h := newServer(t, nil)
	rec := do(t, h, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["loaded"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, h := newServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestEndpointsRequireData(t *testing.T) {
	_, h := newServer(t, nil)
	for _, path := range []string{"/api/dashboard", "/api/insights", "/api/report"} {
		rec := do(t, h, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		var body errorBody
		decode(t, rec, &body)
		assert.Equal(t, "NO_DATA", body.Error.Code, path)
	}
}

func TestDashboardUsesActiveSubset(t *testing.T) {
	st, h := loadedServer(t)

	var body struct {
		Mode      string `json:"mode"`
		Player    struct{ Name string }
		Dashboard struct {
			WinRate struct{ Rate, Wins, Losses, Total int } `json:"win_rate"`
		} `json:"dashboard"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/dashboard"), &body)
	assert.Equal(t, "workday", body.Mode)
	assert.Equal(t, "tester", body.Player.Name)
	assert.Equal(t, 3, body.Dashboard.WinRate.Total, "Sunday match excluded")
	assert.Equal(t, 67, body.Dashboard.WinRate.Rate)

	require.NoError(t, st.SetMode(window.ModeAll))
	decode(t, do(t, h, http.MethodGet, "/api/dashboard"), &body)
	assert.Equal(t, 4, body.Dashboard.WinRate.Total)
}

func TestReport(t *testing.T) {
	_, h := loadedServer(t)
	var body struct {
		Policy string `json:"policy"`
		Report struct {
			Total      int `json:"total"`
			TotalDays  int `json:"total_days"`
			RecentDays []struct {
				Date string `json:"date"`
			} `json:"recent_days"`
		} `json:"report"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/report"), &body)
	assert.Equal(t, "Mon,Tue,Wed,Thu,Fri 09:00-18:00", body.Policy)
	assert.Equal(t, 3, body.Report.Total)
	assert.Equal(t, 2, body.Report.TotalDays)
	require.Len(t, body.Report.RecentDays, 2)
	assert.Equal(t, "2026-03-06", body.Report.RecentDays[0].Date)
}

func TestInsightsNeedFiveMatches(t *testing.T) {
	_, h := loadedServer(t)
	var body struct {
		Insights []struct{ Title string } `json:"insights"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/insights"), &body)
	require.Len(t, body.Insights, 1)
	assert.Equal(t, "Not Enough Data", body.Insights[0].Title)
}

func TestToggleMode(t *testing.T) {
	st, h := loadedServer(t)
	var body struct{ Mode string }
	decode(t, do(t, h, http.MethodPost, "/api/mode/toggle"), &body)
	assert.Equal(t, "all", body.Mode)
	assert.Equal(t, window.ModeAll, st.Snapshot().Mode)

	decode(t, do(t, h, http.MethodPost, "/api/mode/toggle"), &body)
	assert.Equal(t, "workday", body.Mode)
}

func TestToggleRejectsGet(t *testing.T) {
	_, h := loadedServer(t)
	rec := do(t, h, http.MethodGet, "/api/mode/toggle")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body.Error.Code)
}

func TestNotFound(t *testing.T) {
	_, h := loadedServer(t)
	rec := do(t, h, http.MethodGet, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

// ─── Refresh ──────────────────────────────────────────────────────────────────

func TestRefresh(t *testing.T) {
	var st *state.Container
	calls := 0
	st, h := newServer(t, func(ctx context.Context) error {
		calls++
		st.Load(history()[:2], nil)
		return nil
	})

	rec := do(t, h, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct{ Version, Matches int }
	decode(t, rec, &body)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, body.Matches)
	assert.Equal(t, 1, body.Version)
}

func TestRefreshFailure(t *testing.T) {
	_, h := newServer(t, func(ctx context.Context) error { return errors.New("api down") })
	rec := do(t, h, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "REFRESH_FAILED", body.Error.Code)
	assert.Contains(t, body.Error.Message, "api down")
}

func TestRefreshDisabled(t *testing.T) {
	_, h := newServer(t, nil)
	rec := do(t, h, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	var logs bytes.Buffer
	st := state.New(utcPolicy(), window.ModeWorkday)
	h := web.NewServer(st, func(ctx context.Context) error { panic("boom") }, zerolog.New(&logs)).Routes()

	rec := do(t, h, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"status":500`)
}

// ─── HTML ─────────────────────────────────────────────────────────────────────

func TestReportPage(t *testing.T) {
	_, h := loadedServer(t)
	rec := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	page := rec.Body.String()
	assert.Contains(t, page, "<h1>tester</h1>")
	assert.Contains(t, page, "Mode: <strong>workday</strong>")
	assert.Contains(t, page, "2026-03-05")
	assert.Contains(t, page, "Not Enough Data")
	assert.NotContains(t, page, "2026-03-08", "Sunday is outside the workday")
}

func TestReportPageBeforeLoad(t *testing.T) {
	_, h := newServer(t, nil)
	rec := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No match data loaded yet.")
}

func TestReportPageEscapesNames(t *testing.T) {
	st, h := loadedServer(t)
	st.SetPlayer(&model.Player{Name: "<script>x</script>"})
	page := do(t, h, http.MethodGet, "/").Body.String()
	assert.NotContains(t, page, "<script>x</script>")
	assert.Contains(t, page, "&lt;script&gt;")
}

func TestReportPageTimesUsePolicyZone(t *testing.T) {
	p := window.DefaultPolicy()
	p.Location = time.FixedZone("UTC+9", 9*3600)
	st := state.New(p, window.ModeWorkday)
	st.Load([]model.Match{{
		ID:        7,
		Hero:      model.HeroRef{ID: 2, Name: "Axe"},
		Outcome:   model.OutcomeWin,
		Timestamp: time.Date(2026, 3, 5, 1, 30, 0, 0, time.UTC).UnixMilli(),
		Duration:  model.Duration{Seconds: 1800, Formatted: "30:00"},
	}}, nil)
	h := web.NewServer(st, nil, zerolog.Nop()).Routes()

	page := do(t, h, http.MethodGet, "/").Body.String()
	assert.Contains(t, page, "2026-03-05")
	assert.Contains(t, page, "<td>10:30</td>", "shown in the policy zone, same as its day group")
}
