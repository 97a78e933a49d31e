// Package analyze computes aggregate statistics over slices of normalized
// matches. All functions are pure, total over the empty slice, and never
// produce NaN; time-relative functions take "now" explicitly.
package analyze

import (
	"sort"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/normalize"
	"github.com/derickschaefer/ezdota/internal/util"
)

// ─── Win Rate ─────────────────────────────────────────────────────────────────

// WinRateStats is the outcome breakdown of a match set. Unknown outcomes
// count toward Total only.
type WinRateStats struct {
	Rate   int `json:"rate"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Total  int `json:"total"`
}

// WinRate computes round(wins/total*100) along with the raw counts.
func WinRate(matches []model.Match) WinRateStats {
	s := WinRateStats{Total: len(matches)}
	for _, m := range matches {
		switch m.Outcome {
		case model.OutcomeWin:
			s.Wins++
		case model.OutcomeLoss:
			s.Losses++
		}
	}
	s.Rate = util.Percent(s.Wins, s.Total)
	return s
}

// ─── KDA ──────────────────────────────────────────────────────────────────────

// KDAAverage holds per-match averages rounded to one decimal, and the ratio
// of the summed counts.
type KDAAverage struct {
	Kills   float64 `json:"kills"`
	Deaths  float64 `json:"deaths"`
	Assists float64 `json:"assists"`
	Ratio   float64 `json:"ratio"`
}

// AverageKDA averages kills, deaths and assists. The ratio is computed on
// totals, not by averaging per-match ratios.
func AverageKDA(matches []model.Match) KDAAverage {
	if len(matches) == 0 {
		return KDAAverage{}
	}
	var k, d, a int
	for _, m := range matches {
		k += m.KDA.Kills
		d += m.KDA.Deaths
		a += m.KDA.Assists
	}
	n := float64(len(matches))
	return KDAAverage{
		Kills:   util.RoundTo(float64(k)/n, 1),
		Deaths:  util.RoundTo(float64(d)/n, 1),
		Assists: util.RoundTo(float64(a)/n, 1),
		Ratio:   normalize.KDARatio(k, d, a),
	}
}

// ─── Duration ─────────────────────────────────────────────────────────────────

// AverageDuration returns the mean match length rounded to whole seconds.
func AverageDuration(matches []model.Match) model.Duration {
	if len(matches) == 0 {
		return model.Duration{Seconds: 0, Formatted: util.FormatDuration(0)}
	}
	total := 0
	for _, m := range matches {
		total += m.Duration.Seconds
	}
	avg := int(util.RoundHalfUp(float64(total) / float64(len(matches))))
	return model.Duration{Seconds: avg, Formatted: util.FormatDuration(avg)}
}

// MeanDuration is the unrounded mean length in seconds, 0 for no matches.
func MeanDuration(matches []model.Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	total := 0
	for _, m := range matches {
		total += m.Duration.Seconds
	}
	return float64(total) / float64(len(matches))
}

// ─── Match Types ──────────────────────────────────────────────────────────────

// TypeCounts is the number of matches per classification.
type TypeCounts struct {
	Ranked int `json:"ranked"`
	Normal int `json:"normal"`
	Turbo  int `json:"turbo"`
}

// CountByType tallies ranked, normal and turbo matches.
func CountByType(matches []model.Match) TypeCounts {
	var c TypeCounts
	for _, m := range matches {
		switch m.Type {
		case model.TypeRanked:
			c.Ranked++
		case model.TypeNormal:
			c.Normal++
		case model.TypeTurbo:
			c.Turbo++
		}
	}
	return c
}

// RankedRatio is the share of ranked matches in [0,1], 0 for no matches.
func RankedRatio(matches []model.Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	return float64(CountByType(matches).Ranked) / float64(len(matches))
}

// ─── Heroes ───────────────────────────────────────────────────────────────────

// HeroStat is the record of one hero across a match set.
type HeroStat struct {
	Hero    model.HeroRef `json:"hero"`
	Games   int           `json:"games"`
	Wins    int           `json:"wins"`
	WinRate int           `json:"win_rate"`
}

// HeroStats groups matches by hero id in first-encountered order. The hero
// name and image come from the first match seen for each id.
func HeroStats(matches []model.Match) []HeroStat {
	index := make(map[int]int)
	var out []HeroStat
	for _, m := range matches {
		i, ok := index[m.Hero.ID]
		if !ok {
			i = len(out)
			index[m.Hero.ID] = i
			out = append(out, HeroStat{Hero: m.Hero})
		}
		out[i].Games++
		if m.Outcome == model.OutcomeWin {
			out[i].Wins++
		}
	}
	for i := range out {
		out[i].WinRate = util.Percent(out[i].Wins, out[i].Games)
	}
	return out
}

// MostPlayedHeroes returns heroes ordered by games played, descending, with
// ties kept in encounter order. limit <= 0 returns every hero.
func MostPlayedHeroes(matches []model.Match, limit int) []HeroStat {
	stats := HeroStats(matches)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Games > stats[j].Games
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// ─── Roles ────────────────────────────────────────────────────────────────────

// minRoleGames is the sample size below which a lane ranks after every
// lane that meets it.
const minRoleGames = 3

// RoleStat is the record of one lane.
type RoleStat struct {
	Lane    model.Lane `json:"lane"`
	Name    string     `json:"name"`
	Games   int        `json:"games"`
	Wins    int        `json:"wins"`
	WinRate int        `json:"win_rate"`
}

// unknownRole is returned when no match has a known lane.
var unknownRole = RoleStat{Name: "Unknown"}

// RoleStats returns the lanes that have at least one game, ranked: lanes
// with fewer than three games come after those with three or more, then
// higher win rate first. Equal entries keep lane-code order.
func RoleStats(matches []model.Match) []RoleStat {
	byLane := make(map[model.Lane]*RoleStat, len(model.Lanes))
	for _, l := range model.Lanes {
		byLane[l] = &RoleStat{Lane: l, Name: l.String()}
	}
	for _, m := range matches {
		r, ok := byLane[m.Lane]
		if !ok {
			continue
		}
		r.Games++
		if m.Outcome == model.OutcomeWin {
			r.Wins++
		}
	}

	var out []RoleStat
	for _, l := range model.Lanes {
		r := byLane[l]
		if r.Games == 0 {
			continue
		}
		r.WinRate = util.Percent(r.Wins, r.Games)
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		iOK, jOK := out[i].Games >= minRoleGames, out[j].Games >= minRoleGames
		if iOK != jOK {
			return iOK
		}
		return out[i].WinRate > out[j].WinRate
	})
	return out
}

// BestRole returns the top-ranked lane, or {Name: "Unknown"} with zero
// games when no match has a known lane.
func BestRole(matches []model.Match) RoleStat {
	roles := RoleStats(matches)
	if len(roles) == 0 {
		return unknownRole
	}
	return roles[0]
}
