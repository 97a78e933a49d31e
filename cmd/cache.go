package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local response cache",
	Long: `Commands for inspecting and clearing the bbolt response cache.

Every OpenDota response is cached with its own lifetime: match lists for a
few minutes, match details and the hero catalog for much longer. Expired
entries are ignored on read and removed by 'ezdota cache prune'.`,
}

// ─── cache stats ──────────────────────────────────────────────────────────────

var cacheStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show entry counts and size of the cache",
	Example: `  ezdota cache stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		st, err := deps.Store.Stats(time.Now())
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}

		created := "(unknown)"
		if !st.CreatedAt.IsZero() {
			created = st.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Database: %s\n\n", deps.Store.Path())
		printKVTableTo(w, [][]string{
			{"entries", strconv.Itoa(st.Entries)},
			{"expired", strconv.Itoa(st.Expired)},
			{"size", humanBytes(st.Bytes)},
			{"schema_version", strconv.Itoa(st.SchemaVersion)},
			{"created_at", created},
		})
		return nil
	},
}

// ─── cache clear ──────────────────────────────────────────────────────────────

var (
	cacheClearAll    bool
	cacheClearPrefix string
)

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached responses",
	Long: `Delete every cached response, or only those whose key starts with
--prefix. Keys look like player_<id>, matches_<id>_<limit>, match_<id>
and heroStats.

Note: bbolt does not shrink the database file after clearing. Free pages
are reused on the next write.`,
	Example: `  ezdota cache clear --all
  ezdota cache clear --prefix match_`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cacheClearAll && cacheClearPrefix == "" {
			return fmt.Errorf("specify --all or --prefix <key prefix>")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		if cacheClearAll {
			if err := deps.Store.ClearAll(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared all cached responses")
			return nil
		}

		keys, err := deps.Store.Keys(cacheClearPrefix)
		if err != nil {
			return fmt.Errorf("listing keys: %w", err)
		}
		for _, k := range keys {
			if err := deps.Store.Delete(k); err != nil {
				return fmt.Errorf("deleting %q: %w", k, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %d entries with prefix %q\n", len(keys), cacheClearPrefix)
		return nil
	},
}

// ─── cache prune ──────────────────────────────────────────────────────────────

var cachePruneCmd = &cobra.Command{
	Use:     "prune",
	Short:   "Remove expired entries",
	Example: `  ezdota cache prune`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		n, err := deps.Store.ClearExpired(time.Now())
		if err != nil {
			return fmt.Errorf("pruning cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d expired entries\n", n)
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	cacheClearCmd.Flags().BoolVar(&cacheClearAll, "all", false, "clear every cached response")
	cacheClearCmd.Flags().StringVar(&cacheClearPrefix, "prefix", "", "clear only keys with this prefix")
}
