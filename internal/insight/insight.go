// Package insight turns a match history into short, rule-generated
// observations about recent performance.
//
// Matches are expected newest first, the order the match list endpoint
// returns them in.
package insight

import (
	"fmt"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/util"
)

// Type is the severity of an insight.
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeSuccess Type = "success"
)

// Insight is one observation.
type Insight struct {
	Type    Type   `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

const (
	// MinMatches is the history length below which no rule runs.
	MinMatches = 5
	// MaxInsights caps the number of insights Generate returns.
	MaxInsights = 5

	recentWindow     = 5
	deathWarnAvg     = 8.0
	synergyMinGames  = 3
	synergyMinRate   = 70
	streakMin        = 3
	heroPoolSize     = 10
	weakHeroMinGames = 5
	weakHeroMaxRate  = 40
	strongMinGames   = 3
	strongMinRate    = 60
	longAvgSeconds   = 45 * 60
	lateGameSeconds  = 40 * 60
	lateGameMinCount = 5
	rankedMinRatio   = 0.3
	rankedMinMatches = 10
)

// Rule evaluates one heuristic. A rule returns zero or more insights.
type Rule func(matches []model.Match) []Insight

// Rules is the fixed evaluation order. Order matters because the combined
// output is truncated to MaxInsights.
var Rules = []Rule{DeathRate, Synergy, Streak, HeroPerformance, PlayPatterns}

// Insufficient is the lone insight returned for short histories.
var Insufficient = Insight{
	Type:    TypeInfo,
	Title:   "Not Enough Data",
	Message: "Play more matches to get personalized insights.",
}

// Generate runs every rule in order and returns at most MaxInsights
// results. Histories shorter than MinMatches yield only Insufficient.
func Generate(matches []model.Match) []Insight {
	if len(matches) < MinMatches {
		return []Insight{Insufficient}
	}
	out := []Insight{}
	for _, rule := range Rules {
		out = append(out, rule(matches)...)
	}
	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	return out
}

// DeathRate warns when the most recent matches average too many deaths.
func DeathRate(matches []model.Match) []Insight {
	recent := matches
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	if len(recent) == 0 {
		return nil
	}
	deaths := 0
	for _, m := range recent {
		deaths += m.KDA.Deaths
	}
	avg := float64(deaths) / float64(len(recent))
	if avg <= deathWarnAvg {
		return nil
	}
	return []Insight{{
		Type:  TypeWarning,
		Title: "Dying Too Often",
		Message: fmt.Sprintf("Over your last %d matches you averaged %.1f deaths. Try playing safer in the early game.",
			len(recent), avg),
	}}
}

// Synergy highlights the hero with the best win rate among those played at
// least three times, when that rate is 70% or higher.
func Synergy(matches []model.Match) []Insight {
	var best *analyze.HeroStat
	for _, h := range analyze.HeroStats(matches) {
		if h.Games < synergyMinGames || h.WinRate < synergyMinRate {
			continue
		}
		// Strict comparison keeps the first-encountered hero on ties.
		if best == nil || h.WinRate > best.WinRate {
			h := h
			best = &h
		}
	}
	if best == nil {
		return nil
	}
	return []Insight{{
		Type:    TypeSuccess,
		Title:   "High Synergy",
		Message: fmt.Sprintf("You win %d%% of games on %s (%d matches).", best.WinRate, best.Hero.Name, best.Games),
	}}
}

// StreakLength returns the outcome of the most recent match and how many
// consecutive matches share it. An unknown outcome ends the run.
func StreakLength(matches []model.Match) (model.Outcome, int) {
	if len(matches) == 0 {
		return model.OutcomeUnknown, 0
	}
	kind := matches[0].Outcome
	n := 0
	for _, m := range matches {
		if m.Outcome != kind || m.Outcome == model.OutcomeUnknown {
			break
		}
		n++
	}
	return kind, n
}

// Streak reports a current run of three or more wins or losses.
func Streak(matches []model.Match) []Insight {
	kind, n := StreakLength(matches)
	if n < streakMin {
		return nil
	}
	switch kind {
	case model.OutcomeWin:
		return []Insight{{
			Type:    TypeSuccess,
			Title:   "Win Streak!",
			Message: fmt.Sprintf("You are on a %d-game win streak. Keep it up!", n),
		}}
	case model.OutcomeLoss:
		return []Insight{{
			Type:    TypeWarning,
			Title:   "Losing Streak",
			Message: fmt.Sprintf("%d losses in a row. Consider taking a break or changing your approach.", n),
		}}
	}
	return nil
}

// HeroPerformance looks at the ten most played heroes for one that keeps
// losing and one that keeps winning. Both may fire.
func HeroPerformance(matches []model.Match) []Insight {
	heroes := analyze.MostPlayedHeroes(matches, heroPoolSize)
	var out []Insight
	for _, h := range heroes {
		if h.Games >= weakHeroMinGames && h.WinRate < weakHeroMaxRate {
			out = append(out, Insight{
				Type:  TypeWarning,
				Title: "Hero Performance",
				Message: fmt.Sprintf("Your win rate on %s is only %d%% over %d matches. Consider practicing in unranked or picking another hero.",
					h.Hero.Name, h.WinRate, h.Games),
			})
			break
		}
	}
	for _, h := range heroes {
		if h.Games >= strongMinGames && h.WinRate >= strongMinRate {
			out = append(out, Insight{
				Type:    TypeSuccess,
				Title:   "Strong Hero",
				Message: fmt.Sprintf("%s is your most effective hero with a %d%% win rate over %d matches.", h.Hero.Name, h.WinRate, h.Games),
			})
			break
		}
	}
	return out
}

// PlayPatterns reports late-game performance for players whose matches run
// long, and nudges players who rarely queue ranked.
func PlayPatterns(matches []model.Match) []Insight {
	if len(matches) == 0 {
		return nil
	}
	var out []Insight
	if analyze.MeanDuration(matches) > longAvgSeconds {
		late, lateWins := 0, 0
		for _, m := range matches {
			if m.Duration.Seconds > lateGameSeconds {
				late++
				if m.Outcome == model.OutcomeWin {
					lateWins++
				}
			}
		}
		if late >= lateGameMinCount {
			out = append(out, Insight{
				Type:  TypeInfo,
				Title: "Long Games",
				Message: fmt.Sprintf("Your matches often go past 40 minutes. Your late-game win rate is %d%%.",
					util.Percent(lateWins, late)),
			})
		}
	}
	ratio := analyze.RankedRatio(matches)
	if ratio < rankedMinRatio && len(matches) > rankedMinMatches {
		out = append(out, Insight{
			Type:  TypeInfo,
			Title: "Game Mode",
			Message: fmt.Sprintf("Only %d%% of your matches are ranked. Play more ranked to climb MMR!",
				int(util.RoundHalfUp(ratio*100))),
		})
	}
	return out
}
