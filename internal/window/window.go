// Package window decides which matches fall inside the configured "paid
// hours" schedule. A Policy is a set of weekdays plus a half-open hour
// range evaluated on local wall-clock time.
package window

import (
	"fmt"
	"strings"
	"time"

	"github.com/derickschaefer/ezdota/internal/model"
)

// Default schedule: Monday to Friday, 09:00 to 18:00.
const (
	DefaultStartHour = 9
	DefaultEndHour   = 18
)

// DefaultWeekdays is Monday through Friday.
var DefaultWeekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// Policy is the workday schedule. Location selects the wall clock used
// to evaluate timestamps; nil means time.Local.
type Policy struct {
	Weekdays  []time.Weekday `json:"weekdays"`
	StartHour int            `json:"start_hour"`
	EndHour   int            `json:"end_hour"`
	Location  *time.Location `json:"-"`
}

// DefaultPolicy returns the Monday–Friday 9–18 schedule in time.Local.
func DefaultPolicy() Policy {
	days := make([]time.Weekday, len(DefaultWeekdays))
	copy(days, DefaultWeekdays)
	return Policy{
		Weekdays:  days,
		StartHour: DefaultStartHour,
		EndHour:   DefaultEndHour,
	}
}

// Validate returns an error if the policy can never be evaluated sensibly.
func (p Policy) Validate() error {
	if p.StartHour < 0 || p.StartHour > 23 {
		return fmt.Errorf("workday start hour %d out of range 0-23", p.StartHour)
	}
	if p.EndHour < 1 || p.EndHour > 24 {
		return fmt.Errorf("workday end hour %d out of range 1-24", p.EndHour)
	}
	if p.StartHour >= p.EndHour {
		return fmt.Errorf("workday start hour %d must be before end hour %d", p.StartHour, p.EndHour)
	}
	for _, d := range p.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("weekday %d out of range 0-6", d)
		}
	}
	return nil
}

// String renders the policy as e.g. "Mon,Tue,Wed,Thu,Fri 09:00-18:00".
func (p Policy) String() string {
	names := make([]string, len(p.Weekdays))
	for i, d := range p.Weekdays {
		names[i] = d.String()[:3]
	}
	return fmt.Sprintf("%s %02d:00-%02d:00", strings.Join(names, ","), p.StartHour, p.EndHour)
}

// ParseWeekdays parses a comma-separated weekday list. Entries may be
// English names or prefixes of at least three letters ("mon", "Tuesday")
// or numbers 0-6 with 0 = Sunday. Duplicates are dropped.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var out []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		d, ok := parseWeekday(part)
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no weekdays in %q", s)
	}
	return out, nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return time.Weekday(s[0] - '0'), true
	}
	if len(s) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.HasPrefix(strings.ToLower(d.String()), s) {
			return d, true
		}
	}
	return 0, false
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// ─── Predicate ────────────────────────────────────────────────────────────────

// InWindow reports whether the epoch-millisecond timestamp falls on one of
// the policy's weekdays with its hour in [StartHour, EndHour).
func InWindow(tsMs int64, p Policy) bool {
	t := time.UnixMilli(tsMs).In(p.location())
	if !containsDay(p.Weekdays, t.Weekday()) {
		return false
	}
	h := t.Hour()
	return h >= p.StartHour && h < p.EndHour
}

// Filter returns the matches whose start time is inside the window,
// preserving order. The input slice is not modified.
func Filter(matches []model.Match, p Policy) []model.Match {
	out := make([]model.Match, 0, len(matches))
	for _, m := range matches {
		if InWindow(m.Timestamp, p) {
			out = append(out, m)
		}
	}
	return out
}

// Active returns the subset of matches the given mode analyses.
func Active(matches []model.Match, mode Mode, p Policy) []model.Match {
	if mode == ModeAll {
		return matches
	}
	return Filter(matches, p)
}

func containsDay(days []time.Weekday, d time.Weekday) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// ─── Mode ─────────────────────────────────────────────────────────────────────

// Mode selects between the workday subset and the full history.
type Mode string

const (
	ModeWorkday Mode = "workday"
	ModeAll     Mode = "all"
)

// ParseMode accepts "workday" or "all" (case-insensitive). Empty means workday.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeWorkday):
		return ModeWorkday, nil
	case string(ModeAll):
		return ModeAll, nil
	}
	return "", fmt.Errorf("invalid filter mode %q: expected workday|all", s)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeAll {
		return ModeWorkday
	}
	return ModeAll
}
