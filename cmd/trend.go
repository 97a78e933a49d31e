package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/chart"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/transform"
)

var (
	trendDays    int
	trendChart   bool
	trendRolling int
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Daily games and win rate over the last N days",
	Long: `Group the active matches by calendar day and report games, wins,
losses and win rate for each of the last --days days, oldest first.

--chart draws the daily win rate as bars. --rolling N instead plots the
win rate over every trailing window of N consecutive matches.`,
	Example: `  ezdota trend
  ezdota trend --days 14 --chart
  ezdota trend --mode all --rolling 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if trendDays < 1 {
			return fmt.Errorf("--days must be >= 1")
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		s, err := loadSession(cmd.Context(), deps)
		if err != nil {
			return err
		}

		if trendRolling > 0 {
			rolling, err := transform.RollingWinRate(s.active, trendRolling)
			if err != nil {
				return err
			}
			points := make([]chart.Point, len(rolling))
			for i, p := range rolling {
				points[i] = chart.Point{
					Label: time.UnixMilli(p.Timestamp).In(localZone(deps)).Format("01-02"),
					Value: float64(p.WinRate),
				}
			}
			title := fmt.Sprintf("Win rate, rolling %d matches", trendRolling)
			return chart.Plot(cmd.OutOrStdout(), title, points, chart.PlotOptions{})
		}

		days := analyze.PerformanceOverTime(s.active, trendDays, time.Now().In(localZone(deps)))
		if trendChart {
			points := make([]chart.Point, len(days))
			for i, d := range days {
				points[i] = chart.Point{Label: d.Date, Value: float64(d.WinRate)}
			}
			return chart.Bar(cmd.OutOrStdout(), "Daily win rate", points, chart.BarOptions{Max: 100, Suffix: "%"})
		}
		return emit(cmd, deps, s.result("trend", model.KindTrend, days, len(days)))
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trendCmd.Flags().IntVar(&trendDays, "days", 7, "number of days to include")
	trendCmd.Flags().BoolVar(&trendChart, "chart", false, "draw daily win rate as a bar chart")
	trendCmd.Flags().IntVar(&trendRolling, "rolling", 0, "plot win rate over a rolling window of N matches")
}
