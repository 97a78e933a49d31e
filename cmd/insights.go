package cmd

import (
	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/insight"
	"github.com/derickschaefer/ezdota/internal/model"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Rule-based observations about recent play",
	Long: `Run the insight rules over the active match set and print up to five
observations (death rate, synergy, streaks, hero records, play patterns).

At least five matches are needed; with fewer a single "Not Enough Data"
entry is returned.`,
	Example: `  ezdota insights
  ezdota insights --mode all --format md`,
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
		ins := insight.Generate(s.active)
		return emit(cmd, deps, s.result("insights", model.KindInsights, ins, len(ins)))
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}
