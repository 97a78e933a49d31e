package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/app"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/render"
	"github.com/derickschaefer/ezdota/internal/window"
)

// ─── Session ──────────────────────────────────────────────────────────────────

// session is a command's loaded match history. active is the subset
// selected by the filter mode.
type session struct {
	deps   *app.Deps
	loaded *app.Loaded
	active []model.Match
	start  time.Time
}

// loadSession loads the history named by --source / --input and applies
// the filter mode.
func loadSession(ctx context.Context, deps *app.Deps) (*session, error) {
	start := time.Now()
	src, err := app.ParseSource(globalFlags.Source)
	if err != nil {
		return nil, err
	}
	loaded, err := deps.LoadMatches(ctx, app.LoadOptions{Source: src, Input: globalFlags.Input})
	if err != nil {
		return nil, err
	}
	cfg := deps.Config
	active := window.Active(loaded.Matches, cfg.Mode, cfg.Policy)
	deps.Logger.Info().
		Int("loaded", len(loaded.Matches)).
		Int("active", len(active)).
		Str("mode", string(cfg.Mode)).
		Msg("history ready")
	return &session{deps: deps, loaded: loaded, active: active, start: start}, nil
}

// result wraps data in a Result envelope carrying the session's warnings
// and timing.
func (s *session) result(command, kind string, data interface{}, items int) *model.Result {
	return newResult(s.deps, command, kind, data, items, s.start, s.loaded.Warnings)
}

func newResult(deps *app.Deps, command, kind string, data interface{}, items int, start time.Time, warnings []string) *model.Result {
	hits, _ := deps.Client.CacheStats()
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        data,
		Warnings:    warnings,
		Stats: model.ResultStats{
			CacheHit:   hits > 0,
			DurationMs: time.Since(start).Milliseconds(),
			Items:      items,
		},
	}
}

// localZone is the timezone dates are grouped in.
func localZone(deps *app.Deps) *time.Location {
	if loc := deps.Config.Policy.Location; loc != nil {
		return loc
	}
	return time.Local
}

// emit renders result to stdout (or --out) and the footer to stderr.
func emit(cmd *cobra.Command, deps *app.Deps, result *model.Result) error {
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := render.Render(w, result, deps.Config.Format); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if !deps.Config.Quiet {
		render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	}
	return nil
}

// outputWriter returns def, or the --out file when one was given. The
// returned close function must always be called.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// ─── Tables ───────────────────────────────────────────────────────────────────

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// printKVTableTo renders a two-column key/value list with aligned columns.
func printKVTableTo(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}

// ─── Parsing ──────────────────────────────────────────────────────────────────

// parseMatchID parses a positive OpenDota match id.
func parseMatchID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid match id %q: expected a positive integer", s)
	}
	return id, nil
}

func humanBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
