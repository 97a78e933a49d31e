package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/normalize"
)

var playerTotals bool

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Profile and lifetime record of the tracked player",
	Long: `Fetch the tracked player's OpenDota profile and lifetime win/loss.

--totals lists lifetime sums and per-match averages (kills, deaths, GPM,
hero damage and so on) instead.`,
	Example: `  ezdota player
  ezdota player --player 123456789
  ezdota player --totals --format csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		ctx := cmd.Context()
		id := deps.Config.PlayerID

		if playerTotals {
			totals, err := deps.Client.GetTotals(ctx, id)
			if err != nil {
				return err
			}
			rows := make([]model.KV, 0, len(totals))
			for _, t := range totals {
				avg := 0.0
				if t.N > 0 {
					avg = t.Sum / float64(t.N)
				}
				rows = append(rows, model.KV{
					Key:   t.Field,
					Value: fmt.Sprintf("%s (avg %.1f over %d)", strconv.FormatFloat(t.Sum, 'f', -1, 64), avg, t.N),
				})
			}
			return emit(cmd, deps, newResult(deps, "player", model.KindTable, rows, len(rows), start, nil))
		}

		raw, err := deps.Client.GetPlayer(ctx, id)
		if err != nil {
			return err
		}
		wl, err := deps.Client.GetWinLoss(ctx, id)
		if err != nil {
			return err
		}
		p := normalize.Player(raw, wl)
		if p.AccountID == 0 {
			p.AccountID = id
		}
		return emit(cmd, deps, newResult(deps, "player", model.KindPlayer, p, 1, start, nil))
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)
	playerCmd.Flags().BoolVar(&playerTotals, "totals", false, "list lifetime totals instead of the profile")
}
