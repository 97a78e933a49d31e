package cmd

import (
	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/chart"
	"github.com/derickschaefer/ezdota/internal/model"
)

var playstyleChart bool

var playstyleCmd = &cobra.Command{
	Use:     "playstyle",
	Aliases: []string{"style"},
	Short:   "Heuristic fighting, farming, supporting and pushing scores",
	Example: `  ezdota playstyle
  ezdota playstyle --chart`,
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
		scores := analyze.PlayStyle(s.active)

		if playstyleChart {
			axes := scores.Axes()
			points := make([]chart.Point, len(axes))
			for i, a := range axes {
				points[i] = chart.Point{Label: a.Label, Value: float64(a.Value)}
			}
			return chart.Bar(cmd.OutOrStdout(), "Play style", points, chart.BarOptions{Max: 100})
		}
		return emit(cmd, deps, s.result("playstyle", model.KindPlayStyle, scores, len(s.active)))
	},
}

func init() {
	rootCmd.AddCommand(playstyleCmd)
	playstyleCmd.Flags().BoolVar(&playstyleChart, "chart", false, "draw the scores as a bar chart")
}
