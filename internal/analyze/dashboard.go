package analyze

import (
	"time"

	"github.com/derickschaefer/ezdota/internal/model"
)

// DefaultTopHeroes is the hero count shown on the dashboard.
const DefaultTopHeroes = 5

// Dashboard bundles every aggregate shown on the overview screen.
type Dashboard struct {
	WinRate     WinRateStats    `json:"win_rate"`
	KDA         KDAAverage      `json:"kda"`
	Duration    model.Duration  `json:"avg_duration"`
	Types       TypeCounts      `json:"types"`
	TopHeroes   []HeroStat      `json:"top_heroes"`
	BestRole    RoleStat        `json:"best_role"`
	Weekly      Weekly          `json:"weekly"`
	PlayStyle   PlayStyleScores `json:"play_style"`
	LastMatchAt int64           `json:"last_match_at,omitempty"`
}

// Summarize computes the dashboard for matches relative to now.
func Summarize(matches []model.Match, now time.Time) Dashboard {
	d := Dashboard{
		WinRate:   WinRate(matches),
		KDA:       AverageKDA(matches),
		Duration:  AverageDuration(matches),
		Types:     CountByType(matches),
		TopHeroes: MostPlayedHeroes(matches, DefaultTopHeroes),
		BestRole:  BestRole(matches),
		Weekly:    WeeklyStats(matches, now),
		PlayStyle: PlayStyle(matches),
	}
	for _, m := range matches {
		if m.Timestamp > d.LastMatchAt {
			d.LastMatchAt = m.Timestamp
		}
	}
	return d
}
