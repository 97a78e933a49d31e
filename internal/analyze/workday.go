package analyze

import (
	"sort"
	"time"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/util"
)

// DefaultRecentDays is how many day groups a workday report lists.
const DefaultRecentDays = 5

// DayGroup is every match played on one calendar date, newest first.
type DayGroup struct {
	Date    string        `json:"date"`
	Wins    int           `json:"wins"`
	Losses  int           `json:"losses"`
	Matches []model.Match `json:"matches"`
}

// WorkdayReport summarizes matches already filtered to the workday window.
type WorkdayReport struct {
	Total       int          `json:"total"`
	Wins        int          `json:"wins"`
	Losses      int          `json:"losses"`
	WinRate     int          `json:"win_rate"`
	HoursPlayed float64      `json:"hours_played"`
	FirstMatch  *model.Match `json:"first_match,omitempty"`
	LastMatch   *model.Match `json:"last_match,omitempty"`
	TotalDays   int          `json:"total_days"`
	AvgPerDay   float64      `json:"avg_per_day"`
	RecentDays  []DayGroup   `json:"recent_days"`
}

// Workday builds the report. Dates are calendar days in loc (time.Local
// when nil). recentDays <= 0 keeps every day.
func Workday(matches []model.Match, loc *time.Location, recentDays int) WorkdayReport {
	if loc == nil {
		loc = time.Local
	}
	wr := WinRate(matches)
	r := WorkdayReport{
		Total:      wr.Total,
		Wins:       wr.Wins,
		Losses:     wr.Losses,
		WinRate:    wr.Rate,
		RecentDays: []DayGroup{},
	}
	if len(matches) == 0 {
		return r
	}

	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp > sorted[j].Timestamp })

	last, first := sorted[0], sorted[len(sorted)-1]
	r.LastMatch = &last
	r.FirstMatch = &first

	seconds := 0
	var groups []DayGroup
	index := make(map[string]int)
	for _, m := range sorted {
		seconds += m.Duration.Seconds
		key := util.FormatDate(m.Time().In(loc))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: key})
		}
		groups[i].Matches = append(groups[i].Matches, m)
		switch m.Outcome {
		case model.OutcomeWin:
			groups[i].Wins++
		case model.OutcomeLoss:
			groups[i].Losses++
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })

	r.HoursPlayed = util.RoundTo(float64(seconds)/3600, 2)
	r.TotalDays = len(groups)
	r.AvgPerDay = util.RoundTo(float64(len(sorted))/float64(len(groups)), 2)
	if recentDays > 0 && len(groups) > recentDays {
		groups = groups[:recentDays]
	}
	r.RecentDays = groups
	return r
}
