// Package web serves the workday report as an HTML page and the session's
// aggregates as JSON, backed by a state.Container.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/insight"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/state"
	"github.com/derickschaefer/ezdota/internal/util"
	"github.com/derickschaefer/ezdota/internal/window"
)

//go:embed templates/*.html
var templateFS embed.FS

// RefreshFunc reloads the container's data from its source.
type RefreshFunc func(ctx context.Context) error

// Server holds the handlers' dependencies.
type Server struct {
	state   *state.Container
	refresh RefreshFunc
	log     zerolog.Logger
	tmpl    *template.Template
	now     func() time.Time
}

// NewServer builds a Server. refresh may be nil, in which case
// POST /api/refresh answers 501.
func NewServer(st *state.Container, refresh RefreshFunc, log zerolog.Logger) *Server {
	s := &Server{
		state:   st,
		refresh: refresh,
		log:     log.With().Str("component", "web").Logger(),
		now:     time.Now,
	}
	funcs := template.FuncMap{
		"clock": func(loc *time.Location, ms int64) string { return time.UnixMilli(ms).In(loc).Format("15:04") },
		"ago":   func(ms int64) string { return util.RelativeTime(time.UnixMilli(ms), s.now()) },
	}
	s.tmpl = template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return s
}

// Routes returns the router with logging and recovery installed.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(s.log))
	r.Use(recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, newAPIError(ErrCodeNotFound, "no route for "+r.URL.Path, http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, newAPIError(ErrCodeMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path, http.StatusMethodNotAllowed))
	})

	r.Get("/", s.handleReport)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/insights", s.handleInsights)
		r.Get("/report", s.handleReportJSON)
		r.Post("/mode/toggle", s.handleToggleMode)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

// loaded returns the current snapshot, or writes NO_DATA and returns false
// when nothing has been loaded yet.
func (s *Server) loaded(w http.ResponseWriter) (state.Snapshot, bool) {
	snap := s.state.Snapshot()
	if snap.LoadedAt.IsZero() {
		writeError(w, errNoData())
		return snap, false
	}
	return snap, true
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

type dashboardResponse struct {
	Mode      window.Mode       `json:"mode"`
	Version   uint64            `json:"version"`
	Player    *model.Player     `json:"player,omitempty"`
	Dashboard analyze.Dashboard `json:"dashboard"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loaded(w)
	if !ok {
		return
	}
	writeJSON(w, dashboardResponse{
		Mode:      snap.Mode,
		Version:   snap.Version,
		Player:    snap.Player,
		Dashboard: analyze.Summarize(snap.Active, s.now()),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loaded(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"mode":     snap.Mode,
		"insights": insight.Generate(snap.Active),
	})
}

type reportResponse struct {
	Mode   window.Mode           `json:"mode"`
	Policy string                `json:"policy"`
	Report analyze.WorkdayReport `json:"report"`
}

func (s *Server) report(snap state.Snapshot) reportResponse {
	return reportResponse{
		Mode:   snap.Mode,
		Policy: snap.Policy.String(),
		Report: analyze.Workday(snap.Active, snap.Policy.Location, analyze.DefaultRecentDays),
	}
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loaded(w)
	if !ok {
		return
	}
	writeJSON(w, s.report(snap))
}

func (s *Server) handleToggleMode(w http.ResponseWriter, r *http.Request) {
	mode := s.state.ToggleMode()
	zerolog.Ctx(r.Context()).Info().Str("mode", string(mode)).Msg("filter mode toggled")
	writeJSON(w, map[string]interface{}{"mode": mode})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		writeError(w, newAPIError(ErrCodeRefreshDisabled, "refresh is not available for this data source", http.StatusNotImplemented))
		return
	}
	if err := s.refresh(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("refresh failed")
		writeError(w, errRefreshFailed(err))
		return
	}
	snap := s.state.Snapshot()
	writeJSON(w, map[string]interface{}{
		"version": snap.Version,
		"matches": len(snap.Matches),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"loaded":  !snap.LoadedAt.IsZero(),
		"matches": len(snap.Matches),
		"version": snap.Version,
	})
}

// ─── HTML ─────────────────────────────────────────────────────────────────────

type pageData struct {
	Player   *model.Player
	Mode     window.Mode
	Policy   string
	Report   analyze.WorkdayReport
	Insights []insight.Insight
	Loaded   bool
	// Location is the zone match times are shown in; it matches the day
	// grouping of Report.
	Location *time.Location
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	rep := s.report(snap)
	data := pageData{
		Player:   snap.Player,
		Mode:     snap.Mode,
		Policy:   rep.Policy,
		Report:   rep.Report,
		Insights: insight.Generate(snap.Active),
		Loaded:   !snap.LoadedAt.IsZero(),
		Location: snap.Policy.Location,
	}
	if data.Location == nil {
		data.Location = time.Local
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "report.html", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render report page")
	}
}
