package cmd

import (
	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/chart"
	"github.com/derickschaefer/ezdota/internal/model"
)

var (
	heroesTop   int
	heroesChart bool
)

var heroesCmd = &cobra.Command{
	Use:   "heroes",
	Short: "Per-hero games, wins and win rate, most played first",
	Example: `  ezdota heroes
  ezdota heroes --top 10 --mode all
  ezdota heroes --chart`,
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
		heroes := analyze.MostPlayedHeroes(s.active, heroesTop)

		if heroesChart {
			points := make([]chart.Point, len(heroes))
			for i, h := range heroes {
				points[i] = chart.Point{Label: h.Hero.Name, Value: float64(h.Games)}
			}
			return chart.Bar(cmd.OutOrStdout(), "Games per hero", points, chart.BarOptions{})
		}
		return emit(cmd, deps, s.result("heroes", model.KindHeroes, heroes, len(heroes)))
	},
}

func init() {
	rootCmd.AddCommand(heroesCmd)
	heroesCmd.Flags().IntVar(&heroesTop, "top", 0, "show only the N most played heroes (0 = all)")
	heroesCmd.Flags().BoolVar(&heroesChart, "chart", false, "draw games per hero as a bar chart")
}
