package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/model"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Overview of win rate, KDA, heroes, roles and weekly trend",
	Long: `Compute the overview statistics for the active match set.

In workday mode (the default) only matches started inside the configured
schedule are counted. Use --mode all to include every fetched match.`,
	Example: `  ezdota dashboard
  ezdota dashboard --mode all
  ezdota dashboard --format json | jq .data.win_rate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		s, err := loadSession(cmd.Context(), deps)
		if err != nil {
			return err
		}
		d := analyze.Summarize(s.active, time.Now())
		return emit(cmd, deps, s.result("dashboard", model.KindDashboard, d, len(s.active)))
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
