package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/chart"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/normalize"
	"github.com/derickschaefer/ezdota/internal/transform"
	"github.com/derickschaefer/ezdota/internal/util"
)

// ─── matches ──────────────────────────────────────────────────────────────────

var matchesFlags struct {
	Hero   string
	Type   string
	Result string
	Lane   string
	Since  string
	Until  string
	Last   int
	Raw    bool
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the active matches, newest first",
	Long: `List the active match set with optional selectors.

Selectors combine; --last is applied after the others, so
"--hero Pudge --last 5" is the five most recent Pudge games.
--since and --until take YYYY-MM-DD dates in the configured timezone and
are both inclusive.

--raw prints the unprocessed API records instead, for piping into a file
that can later be read back with --input.`,
	Example: `  ezdota matches
  ezdota matches --hero Pudge --result win
  ezdota matches --type ranked --since 2026-03-01 --format csv
  ezdota matches --mode all --raw --format jsonl > history.jsonl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		opts, err := matchSelectors(localZone(deps))
		if err != nil {
			return err
		}

		s, err := loadSession(cmd.Context(), deps)
		if err != nil {
			return err
		}

		if matchesFlags.Raw {
			if s.loaded.Raw == nil {
				return fmt.Errorf("--raw needs API or --input data; archived matches are already normalized")
			}
			return emit(cmd, deps, s.result("matches", model.KindRawMatches, s.loaded.Raw, len(s.loaded.Raw)))
		}

		selected := transform.Apply(s.active, opts)
		return emit(cmd, deps, s.result("matches", model.KindMatches, selected, len(selected)))
	},
}

// matchSelectors parses the selector flags into transform options.
func matchSelectors(loc *time.Location) (transform.Options, error) {
	var o transform.Options
	f := matchesFlags

	if f.Hero != "" {
		if id, err := strconv.Atoi(f.Hero); err == nil {
			o.HeroID = id
		} else {
			o.HeroName = f.Hero
		}
	}
	if f.Type != "" {
		t, err := transform.ParseType(f.Type)
		if err != nil {
			return o, err
		}
		o.Type = t
	}
	if f.Result != "" {
		r, err := transform.ParseOutcome(f.Result)
		if err != nil {
			return o, err
		}
		o.Outcome = r
	}
	if f.Lane != "" {
		l, err := transform.ParseLane(f.Lane)
		if err != nil {
			return o, err
		}
		o.Lane = l
	}
	if f.Since != "" {
		t, err := util.ParseDate(f.Since, loc)
		if err != nil {
			return o, fmt.Errorf("--since: %w", err)
		}
		o.Since = t
	}
	if f.Until != "" {
		t, err := util.ParseDate(f.Until, loc)
		if err != nil {
			return o, fmt.Errorf("--until: %w", err)
		}
		o.Until = t.AddDate(0, 0, 1)
	}
	if f.Last < 0 {
		return o, fmt.Errorf("--last must be >= 0")
	}
	o.Last = f.Last
	return o, nil
}

// ─── match ────────────────────────────────────────────────────────────────────

var matchChart bool

var matchCmd = &cobra.Command{
	Use:   "match <match_id>",
	Short: "Scoreboard and advantage curves for a single match",
	Long: `Fetch one match from OpenDota and print its scoreboard.

The tracked player's row is marked when their profile is public.
--chart plots Radiant's gold advantage per minute instead.`,
	Example: `  ezdota match 7651234567
  ezdota match 7651234567 --chart
  ezdota match 7651234567 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseMatchID(args[0])
		if err != nil {
			return err
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		ctx := cmd.Context()
		raw, err := deps.Client.GetMatch(ctx, id)
		if err != nil {
			return err
		}

		var warnings []string
		catalog, err := deps.Client.GetHeroStats(ctx)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("hero names unavailable: %v", err))
		}
		detail := normalize.Detail(raw, normalize.Heroes(catalog), deps.Config.PlayerID)

		if matchChart {
			points := chart.Points(detail.GoldAdvantage, func(i int) string { return fmt.Sprintf("%dm", i) })
			title := fmt.Sprintf("Match %d, Radiant gold advantage", detail.ID)
			return chart.Plot(cmd.OutOrStdout(), title, points, chart.PlotOptions{})
		}

		result := newResult(deps, "match", model.KindMatchDetail, &detail, len(detail.Players), start, warnings)
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(matchCmd)

	f := matchesCmd.Flags()
	f.StringVar(&matchesFlags.Hero, "hero", "", "hero id or localized name")
	f.StringVar(&matchesFlags.Type, "type", "", "match type: ranked|normal|turbo")
	f.StringVar(&matchesFlags.Result, "result", "", "outcome: win|loss|unknown")
	f.StringVar(&matchesFlags.Lane, "lane", "", "lane: safe|mid|off|jungle")
	f.StringVar(&matchesFlags.Since, "since", "", "first date to include (YYYY-MM-DD)")
	f.StringVar(&matchesFlags.Until, "until", "", "last date to include (YYYY-MM-DD)")
	f.IntVar(&matchesFlags.Last, "last", 0, "keep only the N most recent matches")
	f.BoolVar(&matchesFlags.Raw, "raw", false, "print raw API records instead of normalized matches")

	matchCmd.Flags().BoolVar(&matchChart, "chart", false, "plot the gold advantage curve")
}
