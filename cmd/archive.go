package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/app"
	"github.com/derickschaefer/ezdota/internal/archive"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/transform"
	"github.com/derickschaefer/ezdota/internal/util"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Keep a long-term SQLite history of normalized matches",
	Long: `OpenDota only returns a player's recent matches. The archive keeps every
match you have ever saved in a local SQLite file so history can grow past
the fetch limit. Analytics commands read it with --source archive.`,
}

// ─── archive save ─────────────────────────────────────────────────────────────

var archiveSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Fetch the recent history and upsert it into the archive",
	Long: `Save the full fetched history (not just the workday subset). Matches
already in the archive are replaced with the fresh copy.`,
	Example: `  ezdota archive save
  ezdota archive save --limit 500
  ezdota archive save --input history.jsonl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx := cmd.Context()
		loaded, err := deps.LoadMatches(ctx, app.LoadOptions{Source: app.SourceAPI, Input: globalFlags.Input})
		if err != nil {
			return err
		}
		if err := deps.RequireArchive(); err != nil {
			return err
		}
		n, err := deps.Archive.Save(ctx, deps.Config.PlayerID, loaded.Matches)
		if err != nil {
			return fmt.Errorf("saving to archive: %w", err)
		}
		total, err := deps.Archive.Count(ctx, archive.Filter{AccountID: deps.Config.PlayerID})
		if err != nil {
			return err
		}
		for _, w := range loaded.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Archived %d matches for player %d\n", n, deps.Config.PlayerID)
		fmt.Fprintf(cmd.OutOrStdout(), "  %d matches stored in %s\n", total, deps.Config.ArchivePath)
		return nil
	},
}

// ─── archive list ─────────────────────────────────────────────────────────────

var archiveListFlags struct {
	Hero   int
	Type   string
	Result string
	Since  string
	Until  string
	Max    int
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived matches, newest first",
	Long: `List archived matches for the tracked player. Unlike the analytics
commands this ignores the filter mode and shows every stored match that
passes the selectors.`,
	Example: `  ezdota archive list --max 20
  ezdota archive list --hero 14 --result loss
  ezdota archive list --since 2026-01-01 --format csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		f, err := archiveFilter(deps)
		if err != nil {
			return err
		}
		if err := deps.RequireArchive(); err != nil {
			return err
		}
		start := time.Now()
		ms, err := deps.Archive.List(cmd.Context(), f)
		if err != nil {
			return err
		}
		return emit(cmd, deps, newResult(deps, "archive list", model.KindMatches, ms, len(ms), start, nil))
	},
}

func archiveFilter(deps *app.Deps) (archive.Filter, error) {
	fl := archiveListFlags
	f := archive.Filter{AccountID: deps.Config.PlayerID, HeroID: fl.Hero, Limit: fl.Max}
	if fl.Type != "" {
		t, err := transform.ParseType(fl.Type)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	if fl.Result != "" {
		o, err := transform.ParseOutcome(fl.Result)
		if err != nil {
			return f, err
		}
		f.Outcome = o
	}
	loc := localZone(deps)
	if fl.Since != "" {
		t, err := util.ParseDate(fl.Since, loc)
		if err != nil {
			return f, fmt.Errorf("--since: %w", err)
		}
		f.Since = t
	}
	if fl.Until != "" {
		t, err := util.ParseDate(fl.Until, loc)
		if err != nil {
			return f, fmt.Errorf("--until: %w", err)
		}
		f.Until = t.AddDate(0, 0, 1)
	}
	return f, nil
}

// ─── archive stats ────────────────────────────────────────────────────────────

var archiveStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show how many matches are archived per account",
	Example: `  ezdota archive stats`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := deps.RequireArchive(); err != nil {
			return err
		}

		stats, err := deps.Archive.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading archive stats: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Archive: %s\n\n", deps.Config.ArchivePath)
		if len(stats) == 0 {
			fmt.Fprintln(w, "  (empty)")
			return nil
		}
		printSimpleTable(w, []string{"ACCOUNT", "MATCHES", "OLDEST", "NEWEST"}, func(add func(...string)) {
			for _, s := range stats {
				add(strconv.FormatInt(s.AccountID, 10), strconv.Itoa(s.Matches),
					s.Oldest.In(localZone(deps)).Format("2006-01-02 15:04"),
					s.Newest.In(localZone(deps)).Format("2006-01-02 15:04"))
			}
		})
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveSaveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveStatsCmd)

	f := archiveListCmd.Flags()
	f.IntVar(&archiveListFlags.Hero, "hero", 0, "hero id")
	f.StringVar(&archiveListFlags.Type, "type", "", "match type: ranked|normal|turbo")
	f.StringVar(&archiveListFlags.Result, "result", "", "outcome: win|loss|unknown")
	f.StringVar(&archiveListFlags.Since, "since", "", "first date to include (YYYY-MM-DD)")
	f.StringVar(&archiveListFlags.Until, "until", "", "last date to include (YYYY-MM-DD)")
	f.IntVar(&archiveListFlags.Max, "max", 0, "maximum rows to return (0 = all)")
}
