package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/app"
	"github.com/derickschaefer/ezdota/internal/state"
	"github.com/derickschaefer/ezdota/internal/web"
)

var serveFlags struct {
	Addr    string
	Archive bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workday report as a local web page and JSON API",
	Long: `Load the match history once and serve it over HTTP:

  GET  /                  HTML workday report
  GET  /api/dashboard     dashboard aggregates (JSON)
  GET  /api/insights      insights (JSON)
  GET  /api/report        workday report (JSON)
  POST /api/mode/toggle   switch between workday and all
  POST /api/refresh       re-fetch from OpenDota, bypassing the cache
  GET  /healthz           liveness and load status

--archive saves every loaded history into the SQLite archive as well.
Stop the server with Ctrl-C; in-flight requests get ten seconds to finish.`,
	Example: `  ezdota serve
  ezdota serve --addr :9000 --mode all
  ezdota serve --archive --verbose --json-logs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		cfg := deps.Config
		log := deps.Logger
		addr := cfg.ListenAddr
		if serveFlags.Addr != "" {
			addr = serveFlags.Addr
		}

		src, err := app.ParseSource(globalFlags.Source)
		if err != nil {
			return err
		}
		opts := app.LoadOptions{Source: src, Input: globalFlags.Input}

		st := state.New(cfg.Policy, cfg.Mode, state.WithLogger(log))
		st.Subscribe(func(s state.Snapshot) {
			log.Info().
				Uint64("version", s.Version).
				Str("mode", string(s.Mode)).
				Int("matches", len(s.Matches)).
				Int("active", len(s.Active)).
				Msg("state updated")
		})
		if serveFlags.Archive {
			if err := deps.RequireArchive(); err != nil {
				return err
			}
			st.Subscribe(archiveOnLoad(cmd.Context(), deps))
		}

		ctx := cmd.Context()
		if err := loadInto(ctx, st, deps, opts); err != nil {
			return err
		}

		var refresh web.RefreshFunc
		if opts.Input == "" {
			fresh := deps.Refreshing()
			refresh = func(ctx context.Context) error {
				return loadInto(ctx, st, fresh, opts)
			}
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		server := &http.Server{
			Handler:           web.NewServer(st, refresh, log).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		shutdownChannel := make(chan os.Signal, 1)
		signal.Notify(shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(shutdownChannel)

		serveErr := make(chan error, 1)
		go func() {
			log.Info().Str("address", ln.Addr().String()).Msg("ezdota listening")
			serveErr <- server.Serve(ln)
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving http://%s (Ctrl-C to stop)\n", ln.Addr())

		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-shutdownChannel:
		}

		log.Info().Msg("shutting down server")
		shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownContext); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
		log.Info().Msg("server stopped")
		return nil
	},
}

// loadInto fetches the history through d and publishes it to st.
func loadInto(ctx context.Context, st *state.Container, d *app.Deps, opts app.LoadOptions) error {
	loaded, err := d.LoadMatches(ctx, opts)
	if err != nil {
		return err
	}
	for _, w := range loaded.Warnings {
		d.Logger.Warn().Msg(w)
	}
	if loaded.Player != nil {
		st.SetPlayer(loaded.Player)
	}
	st.Load(loaded.Matches, loaded.Heroes)
	return nil
}

// archiveOnLoad returns a subscriber that saves each newly loaded history
// to the archive. Mode toggles and player updates are ignored.
func archiveOnLoad(ctx context.Context, deps *app.Deps) state.Subscriber {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func(s state.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.LoadedAt.IsZero() || s.LoadedAt.Equal(last) {
			return
		}
		last = s.LoadedAt
		n, err := deps.Archive.Save(ctx, deps.Config.PlayerID, s.Matches)
		if err != nil {
			deps.Logger.Error().Err(err).Msg("archiving loaded matches")
			return
		}
		deps.Logger.Info().Int("saved", n).Msg("matches archived")
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveFlags.Addr, "addr", "", "listen address (default: 127.0.0.1:8080)")
	serveCmd.Flags().BoolVar(&serveFlags.Archive, "archive", false, "save every loaded history to the archive")
}
