package analyze

import (
	"sort"
	"time"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/util"
)

const day = 24 * time.Hour

// ─── Weekly ───────────────────────────────────────────────────────────────────

// PeriodStats is the match count and win rate of one period.
type PeriodStats struct {
	Matches int `json:"matches"`
	WinRate int `json:"win_rate"`
}

// Weekly compares the last seven days with the seven before them.
// Trend holds this week minus last week for both fields.
type Weekly struct {
	ThisWeek PeriodStats `json:"this_week"`
	LastWeek PeriodStats `json:"last_week"`
	Trend    PeriodStats `json:"trend"`
}

// WeeklyStats splits matches into [now-7d, ∞) and [now-14d, now-7d).
func WeeklyStats(matches []model.Match, now time.Time) Weekly {
	oneWeekAgo := now.Add(-7 * day).UnixMilli()
	twoWeeksAgo := now.Add(-14 * day).UnixMilli()

	var this, last []model.Match
	for _, m := range matches {
		switch {
		case m.Timestamp >= oneWeekAgo:
			this = append(this, m)
		case m.Timestamp >= twoWeeksAgo:
			last = append(last, m)
		}
	}

	thisRate := WinRate(this).Rate
	lastRate := WinRate(last).Rate
	return Weekly{
		ThisWeek: PeriodStats{Matches: len(this), WinRate: thisRate},
		LastWeek: PeriodStats{Matches: len(last), WinRate: lastRate},
		Trend:    PeriodStats{Matches: len(this) - len(last), WinRate: thisRate - lastRate},
	}
}

// ─── Play Style ───────────────────────────────────────────────────────────────

// PlayStyleScores holds five heuristic scores, each in [0,100].
type PlayStyleScores struct {
	Fighting    int `json:"fighting"`
	Versatility int `json:"versatility"`
	Farming     int `json:"farming"`
	Supporting  int `json:"supporting"`
	Pushing     int `json:"pushing"`
}

// Score is one labelled play-style axis.
type Score struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Axes returns the five scores in display order.
func (p PlayStyleScores) Axes() []Score {
	return []Score{
		{"Fighting", p.Fighting},
		{"Versatility", p.Versatility},
		{"Farming", p.Farming},
		{"Supporting", p.Supporting},
		{"Pushing", p.Pushing},
	}
}

// PlayStyle derives the scores from average kills and assists (as rounded
// by AverageKDA), hero variety, ranked share and the rounded average
// duration.
func PlayStyle(matches []model.Match) PlayStyleScores {
	if len(matches) == 0 {
		return PlayStyleScores{}
	}
	n := float64(len(matches))
	kda := AverageKDA(matches)

	heroes := make(map[int]struct{})
	for _, m := range matches {
		heroes[m.Hero.ID] = struct{}{}
	}
	heroRatio := float64(len(heroes)) / n
	avgDuration := float64(AverageDuration(matches).Seconds)

	return PlayStyleScores{
		Fighting:    score(kda.Kills * 10),
		Versatility: score(heroRatio * 100 * 2),
		Farming:     score(RankedRatio(matches)*100 + 20),
		Supporting:  score(kda.Assists / (kda.Kills + 1) * 50),
		Pushing:     score((2400 - avgDuration) / 12),
	}
}

// score rounds v and clamps it to [0,100].
func score(v float64) int {
	s := int(util.RoundHalfUp(v))
	if s > 100 {
		s = 100
	}
	if s < 0 {
		s = 0
	}
	return s
}

// ─── Performance Over Time ────────────────────────────────────────────────────

// DayPerformance is the record of one calendar day.
type DayPerformance struct {
	Date    string `json:"date"`
	Games   int    `json:"games"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	WinRate int    `json:"win_rate"`
}

// PerformanceOverTime keeps matches that started within days of now and
// groups them by calendar date in now's location, oldest first.
func PerformanceOverTime(matches []model.Match, days int, now time.Time) []DayPerformance {
	cutoff := now.Add(-time.Duration(days) * day).UnixMilli()
	loc := now.Location()

	byDate := make(map[string]*DayPerformance)
	for _, m := range matches {
		if m.Timestamp < cutoff {
			continue
		}
		key := util.FormatDate(m.Time().In(loc))
		d, ok := byDate[key]
		if !ok {
			d = &DayPerformance{Date: key}
			byDate[key] = d
		}
		d.Games++
		switch m.Outcome {
		case model.OutcomeWin:
			d.Wins++
		case model.OutcomeLoss:
			d.Losses++
		}
	}

	out := make([]DayPerformance, 0, len(byDate))
	for _, d := range byDate {
		d.WinRate = util.Percent(d.Wins, d.Games)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
