package cmd

import (
	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/model"
)

var reportDays int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Day-by-day workday report: totals, hours played and recent days",
	Long: `Summarize the active match set the way a timesheet would: total games,
win/loss record, hours played, first and last match, average games per day
and a breakdown of the most recent days.

Dates are calendar days in the configured timezone.`,
	Example: `  ezdota report
  ezdota report --days 10 --format md > report.md`,
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
		r := analyze.Workday(s.active, localZone(deps), reportDays)
		return emit(cmd, deps, s.result("report", model.KindWorkdayReport, r, r.Total))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportDays, "days", analyze.DefaultRecentDays, "number of recent days to list (0 = all)")
}
