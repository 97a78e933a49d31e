// Package cmd implements the ezdota CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/app"
	"github.com/derickschaefer/ezdota/internal/config"
	"github.com/derickschaefer/ezdota/internal/logging"
	"github.com/derickschaefer/ezdota/internal/render"
	"github.com/derickschaefer/ezdota/internal/window"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	PlayerID int64
	APIKey   string
	Format   string
	Out      string
	NoCache  bool
	Refresh  bool
	Timeout  string
	Rate     float64
	Limit    int
	Mode     string
	Input    string
	Source   string
	Quiet    bool
	Verbose  bool
	Debug    bool
	JSONLogs bool
}

// rootCmd is the base command. Running `ezdota` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "ezdota",
	Short: "ezdota: Dota 2 match-history analytics from OpenDota",
	Long: `ezdota fetches one player's recent Dota 2 matches from the OpenDota API,
filters them to a "paid hours" work schedule, and reports win rates, hero
records, play-style scores and rule-based insights.

Data provided by the OpenDota API; https://www.opendota.com/

Quick start:
  ezdota config init           # create a config.json with your player id
  ezdota dashboard             # overview of matches played on the clock
  ezdota report --mode all     # day-by-day report over the full history
  ezdota serve                 # the same report as a local web page`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves config and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	cfg.NoCache = globalFlags.NoCache
	cfg.Refresh = globalFlags.Refresh
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if globalFlags.PlayerID != 0 {
		cfg.PlayerID = globalFlags.PlayerID
	}
	if globalFlags.APIKey != "" {
		cfg.APIKey = globalFlags.APIKey
	}
	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", globalFlags.Timeout, err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if globalFlags.Limit > 0 {
		cfg.MatchLimit = globalFlags.Limit
	}
	if globalFlags.Mode != "" {
		m, err := window.ParseMode(globalFlags.Mode)
		if err != nil {
			return nil, err
		}
		cfg.Mode = m
	}
	if !render.ValidFormat(cfg.Format) {
		return nil, fmt.Errorf("invalid format %q: expected one of %v", cfg.Format, render.Formats)
	}
	return cfg, cfg.Validate()
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level := logging.Level(cfg.Quiet, cfg.Verbose, cfg.Debug)
	log := logging.New(os.Stderr, level)
	if globalFlags.JSONLogs {
		log = logging.JSON(os.Stderr, level)
	}
	return app.New(cfg, log), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.Int64Var(&globalFlags.PlayerID, "player", 0,
		"OpenDota account id (overrides env EZDOTA_PLAYER_ID and config.json)")
	pf.StringVar(&globalFlags.APIKey, "api-key", "",
		"OpenDota API key (overrides env OPENDOTA_API_KEY and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.BoolVar(&globalFlags.NoCache, "no-cache", false,
		"bypass the response cache entirely")
	pf.BoolVar(&globalFlags.Refresh, "refresh", false,
		"force re-fetch and overwrite cached entries")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 1.0)")
	pf.IntVar(&globalFlags.Limit, "limit", 0,
		"number of recent matches to fetch (default: 100)")
	pf.StringVar(&globalFlags.Mode, "mode", "",
		"filter mode: workday|all (default: workday)")
	pf.StringVar(&globalFlags.Input, "input", "",
		"read raw matches from a JSON/JSONL file instead of the API (- for stdin)")
	pf.StringVar(&globalFlags.Source, "source", "",
		"match source: api|archive (default: api)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show cache/timing stats after output and info logs")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and responses (API key redacted)")
	pf.BoolVar(&globalFlags.JSONLogs, "json-logs", false,
		"write logs to stderr as JSON lines instead of console text")
}
