// Package transform implements stateless selectors over slices of matches.
// Each operator is a pure function returning a new slice; the input is
// never modified and relative order is preserved.
package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/util"
)

// ─── Selectors ────────────────────────────────────────────────────────────────

func keep(matches []model.Match, pred func(model.Match) bool) []model.Match {
	out := make([]model.Match, 0, len(matches))
	for _, m := range matches {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

// ByHero keeps matches played on the given hero id.
func ByHero(matches []model.Match, heroID int) []model.Match {
	return keep(matches, func(m model.Match) bool { return m.Hero.ID == heroID })
}

// ByHeroName keeps matches whose hero name equals name, ignoring case.
func ByHeroName(matches []model.Match, name string) []model.Match {
	return keep(matches, func(m model.Match) bool { return strings.EqualFold(m.Hero.Name, name) })
}

// ByType keeps matches of the given classification.
func ByType(matches []model.Match, t model.MatchType) []model.Match {
	return keep(matches, func(m model.Match) bool { return m.Type == t })
}

// ByOutcome keeps matches with the given outcome.
func ByOutcome(matches []model.Match, o model.Outcome) []model.Match {
	return keep(matches, func(m model.Match) bool { return m.Outcome == o })
}

// ByLane keeps matches played in the given lane.
func ByLane(matches []model.Match, l model.Lane) []model.Match {
	return keep(matches, func(m model.Match) bool { return m.Lane == l })
}

// Since keeps matches that started at or after t.
func Since(matches []model.Match, t time.Time) []model.Match {
	ms := t.UnixMilli()
	return keep(matches, func(m model.Match) bool { return m.Timestamp >= ms })
}

// Until keeps matches that started strictly before t.
func Until(matches []model.Match, t time.Time) []model.Match {
	ms := t.UnixMilli()
	return keep(matches, func(m model.Match) bool { return m.Timestamp < ms })
}

// Last keeps the first n matches, which are the most recent for histories
// ordered newest first. n <= 0 keeps everything.
func Last(matches []model.Match, n int) []model.Match {
	if n <= 0 || n >= len(matches) {
		n = len(matches)
	}
	out := make([]model.Match, n)
	copy(out, matches[:n])
	return out
}

// ─── Options ──────────────────────────────────────────────────────────────────

// Options combines selectors. Zero-valued fields are ignored.
type Options struct {
	HeroID   int
	HeroName string
	Type     model.MatchType
	Outcome  model.Outcome
	Lane     model.Lane
	Since    time.Time
	Until    time.Time
	Last     int
}

// IsZero reports whether no selector is set.
func (o Options) IsZero() bool {
	return o.HeroID == 0 && o.HeroName == "" && o.Type == "" && o.Outcome == "" &&
		o.Lane == model.LaneUnknown && o.Since.IsZero() && o.Until.IsZero() && o.Last <= 0
}

// Apply runs every set selector. Last is applied after the other filters,
// so "--last 10 --hero 1" means the ten most recent games on hero 1.
func Apply(matches []model.Match, o Options) []model.Match {
	out := matches
	if o.HeroID != 0 {
		out = ByHero(out, o.HeroID)
	}
	if o.HeroName != "" {
		out = ByHeroName(out, o.HeroName)
	}
	if o.Type != "" {
		out = ByType(out, o.Type)
	}
	if o.Outcome != "" {
		out = ByOutcome(out, o.Outcome)
	}
	if o.Lane != model.LaneUnknown {
		out = ByLane(out, o.Lane)
	}
	if !o.Since.IsZero() {
		out = Since(out, o.Since)
	}
	if !o.Until.IsZero() {
		out = Until(out, o.Until)
	}
	return Last(out, o.Last)
}

// ─── Parsing ──────────────────────────────────────────────────────────────────

// ParseType accepts ranked, normal or turbo.
func ParseType(s string) (model.MatchType, error) {
	t := model.MatchType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range model.MatchTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid match type %q: expected ranked|normal|turbo", s)
}

// ParseOutcome accepts win, loss or unknown.
func ParseOutcome(s string) (model.Outcome, error) {
	switch o := model.Outcome(strings.ToLower(strings.TrimSpace(s))); o {
	case model.OutcomeWin, model.OutcomeLoss, model.OutcomeUnknown:
		return o, nil
	}
	return "", fmt.Errorf("invalid outcome %q: expected win|loss|unknown", s)
}

// ParseLane accepts a lane code (1-4) or a name such as "mid" or "safe".
func ParseLane(s string) (model.Lane, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, l := range model.Lanes {
		name := strings.ToLower(l.String())
		if key == fmt.Sprint(int(l)) || key == name || key+" lane" == name {
			return l, nil
		}
	}
	return model.LaneUnknown, fmt.Errorf("invalid lane %q: expected safe|mid|off|jungle or 1-4", s)
}

// ─── Rolling Window ───────────────────────────────────────────────────────────

// RollingPoint is the win rate over a window of consecutive matches ending
// at Match.
type RollingPoint struct {
	MatchID   int64 `json:"match_id"`
	Timestamp int64 `json:"timestamp"`
	WinRate   int   `json:"win_rate"`
	Games     int   `json:"games"`
}

// RollingWinRate walks matches from oldest to newest (the input is newest
// first) and reports the win rate over each trailing window of size n.
// Unknown outcomes count as games but not wins. Output is oldest first and
// starts once a full window is available.
func RollingWinRate(matches []model.Match, n int) ([]RollingPoint, error) {
	if n < 1 {
		return nil, fmt.Errorf("rolling: window must be >= 1, got %d", n)
	}
	if len(matches) < n {
		return []RollingPoint{}, nil
	}
	chrono := make([]model.Match, len(matches))
	for i, m := range matches {
		chrono[len(matches)-1-i] = m
	}
	out := make([]RollingPoint, 0, len(chrono)-n+1)
	wins := 0
	for i, m := range chrono {
		if m.Outcome == model.OutcomeWin {
			wins++
		}
		if i >= n && chrono[i-n].Outcome == model.OutcomeWin {
			wins--
		}
		if i < n-1 {
			continue
		}
		out = append(out, RollingPoint{
			MatchID:   m.ID,
			Timestamp: m.Timestamp,
			WinRate:   util.Percent(wins, n),
			Games:     n,
		})
	}
	return out, nil
}
