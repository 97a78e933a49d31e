// Package render converts Result values into human-readable or machine-parseable
// output. Every kind is first reduced to a table; the table, CSV, TSV and
// Markdown formats all print that table, while JSON and JSONL encode the data.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/ezdota/internal/analyze"
	"github.com/derickschaefer/ezdota/internal/insight"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/pipeline"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every accepted --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// ValidFormat reports whether f is one of Formats.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	}

	t, err := tabulate(result)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		return renderDelimited(w, t, ',')
	case FormatTSV:
		return renderDelimited(w, t, '\t')
	case FormatMD:
		return renderMarkdown(w, t)
	default:
		return renderTable(w, t)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes one record per line for list kinds and the bare data
// object otherwise. Raw match output can be read back by pipeline.ReadRawMatches.
func renderJSONL(w io.Writer, result *model.Result) error {
	switch data := result.Data.(type) {
	case []model.Match:
		return pipeline.WriteJSONL(w, data)
	case []model.RawMatch:
		return pipeline.WriteJSONL(w, data)
	case []analyze.HeroStat:
		return pipeline.WriteJSONL(w, data)
	case []insight.Insight:
		return pipeline.WriteJSONL(w, data)
	case []analyze.DayPerformance:
		return pipeline.WriteJSONL(w, data)
	case []model.KV:
		return pipeline.WriteJSONL(w, data)
	default:
		return json.NewEncoder(w).Encode(result.Data)
	}
}

// ─── Tabulation ───────────────────────────────────────────────────────────────

// table is the format-neutral shape every kind reduces to.
type table struct {
	title   string
	headers []string
	rows    [][]string
	right   map[int]bool // right-aligned columns
}

func (t *table) add(cols ...string) { t.rows = append(t.rows, cols) }

func unexpected(kind string, data interface{}) error {
	return fmt.Errorf("render: unexpected data type %T for %s", data, kind)
}

func tabulate(result *model.Result) (*table, error) {
	switch result.Kind {
	case model.KindMatches:
		ms, ok := result.Data.([]model.Match)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return matchesTable(ms), nil
	case model.KindRawMatches:
		raws, ok := result.Data.([]model.RawMatch)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return rawMatchesTable(raws), nil
	case model.KindMatchDetail:
		d, ok := result.Data.(*model.MatchDetail)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return detailTable(d), nil
	case model.KindDashboard:
		d, ok := result.Data.(analyze.Dashboard)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return dashboardTable(d), nil
	case model.KindHeroes:
		hs, ok := result.Data.([]analyze.HeroStat)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return heroesTable(hs), nil
	case model.KindInsights:
		is, ok := result.Data.([]insight.Insight)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		t := &table{headers: []string{"TYPE", "TITLE", "MESSAGE"}}
		for _, i := range is {
			t.add(string(i.Type), i.Title, i.Message)
		}
		return t, nil
	case model.KindTrend:
		days, ok := result.Data.([]analyze.DayPerformance)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		t := &table{headers: []string{"DATE", "GAMES", "WINS", "LOSSES", "WIN RATE"}, right: rightCols(1, 2, 3, 4)}
		for _, d := range days {
			t.add(d.Date, itoa(d.Games), itoa(d.Wins), itoa(d.Losses), pct(d.WinRate))
		}
		return t, nil
	case model.KindPlayStyle:
		ps, ok := result.Data.(analyze.PlayStyleScores)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		t := &table{headers: []string{"AXIS", "SCORE"}, right: rightCols(1)}
		for _, s := range ps.Axes() {
			t.add(s.Label, itoa(s.Value))
		}
		return t, nil
	case model.KindWorkdayReport:
		r, ok := result.Data.(analyze.WorkdayReport)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return workdayTable(r), nil
	case model.KindPlayer:
		p, ok := result.Data.(model.Player)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return kvTable([]model.KV{
			{Key: "Account", Value: strconv.FormatInt(p.AccountID, 10)},
			{Key: "Name", Value: p.Name},
			{Key: "Country", Value: p.Country},
			{Key: "Rank tier", Value: itoa(p.RankTier)},
			{Key: "Wins", Value: itoa(p.Wins)},
			{Key: "Losses", Value: itoa(p.Losses)},
			{Key: "Profile", Value: p.ProfileURL},
		}), nil
	case model.KindTable:
		kvs, ok := result.Data.([]model.KV)
		if !ok {
			return nil, unexpected(result.Kind, result.Data)
		}
		return kvTable(kvs), nil
	}
	return nil, fmt.Errorf("render: unknown result kind %q", result.Kind)
}

func matchesTable(ms []model.Match) *table {
	t := &table{
		headers: []string{"MATCH", "STARTED", "HERO", "RESULT", "K/D/A", "KDA", "DURATION", "TYPE", "LANE"},
		right:   rightCols(5, 6),
	}
	for _, m := range ms {
		lane := ""
		if m.Lane.Valid() {
			lane = m.Lane.String()
		}
		t.add(
			strconv.FormatInt(m.ID, 10),
			formatTime(m.Timestamp),
			m.Hero.Name,
			string(m.Outcome),
			fmt.Sprintf("%d/%d/%d", m.KDA.Kills, m.KDA.Deaths, m.KDA.Assists),
			ftoa(m.KDA.Ratio),
			m.Duration.Formatted,
			string(m.Type),
			lane,
		)
	}
	return t
}

func rawMatchesTable(raws []model.RawMatch) *table {
	t := &table{headers: []string{"MATCH_ID", "HERO_ID", "PLAYER_SLOT", "RADIANT_WIN", "K", "D", "A", "DURATION", "START_TIME"}}
	for _, r := range raws {
		win := ""
		if r.RadiantWin != nil {
			win = strconv.FormatBool(*r.RadiantWin)
		}
		t.add(i64p(r.MatchID), intp(r.HeroID), intp(r.PlayerSlot), win,
			intp(r.Kills), intp(r.Deaths), intp(r.Assists), intp(r.Duration), i64p(r.StartTime))
	}
	return t
}

func detailTable(d *model.MatchDetail) *table {
	winner := "unknown"
	if d.RadiantWin != nil {
		winner = "Dire"
		if *d.RadiantWin {
			winner = "Radiant"
		}
	}
	t := &table{
		title: fmt.Sprintf("Match %d  %s  %s  Radiant %d - %d Dire  (%s victory)",
			d.ID, formatTime(d.Timestamp), d.Duration.Formatted, d.RadiantScore, d.DireScore, winner),
		headers: []string{"TEAM", "PLAYER", "HERO", "K/D/A", "NET WORTH", "LH/DN", "GPM", "XPM", "HERO DMG"},
		right:   rightCols(4, 6, 7, 8),
	}
	for _, p := range d.Players {
		team := "Dire"
		if p.IsRadiant {
			team = "Radiant"
		}
		t.add(team, p.Name, p.Hero.Name,
			fmt.Sprintf("%d/%d/%d", p.Kills, p.Deaths, p.Assists),
			itoa(p.NetWorth),
			fmt.Sprintf("%d/%d", p.LastHits, p.Denies),
			itoa(p.GPM), itoa(p.XPM), itoa(p.HeroDamage))
	}
	return t
}

func dashboardTable(d analyze.Dashboard) *table {
	kvs := []model.KV{
		{Key: "Win rate", Value: fmt.Sprintf("%s (%dW %dL of %d)", pct(d.WinRate.Rate), d.WinRate.Wins, d.WinRate.Losses, d.WinRate.Total)},
		{Key: "Avg K/D/A", Value: fmt.Sprintf("%s/%s/%s (ratio %s)", ftoa(d.KDA.Kills), ftoa(d.KDA.Deaths), ftoa(d.KDA.Assists), ftoa(d.KDA.Ratio))},
		{Key: "Avg duration", Value: d.Duration.Formatted},
		{Key: "Match types", Value: fmt.Sprintf("ranked %d, normal %d, turbo %d", d.Types.Ranked, d.Types.Normal, d.Types.Turbo)},
		{Key: "Best role", Value: fmt.Sprintf("%s (%s over %d)", d.BestRole.Name, pct(d.BestRole.WinRate), d.BestRole.Games)},
		{Key: "This week", Value: fmt.Sprintf("%d matches, %s", d.Weekly.ThisWeek.Matches, pct(d.Weekly.ThisWeek.WinRate))},
		{Key: "Last week", Value: fmt.Sprintf("%d matches, %s", d.Weekly.LastWeek.Matches, pct(d.Weekly.LastWeek.WinRate))},
		{Key: "Trend", Value: fmt.Sprintf("%+d matches, %+d%%", d.Weekly.Trend.Matches, d.Weekly.Trend.WinRate)},
	}
	for i, h := range d.TopHeroes {
		kvs = append(kvs, model.KV{
			Key:   fmt.Sprintf("Hero #%d", i+1),
			Value: fmt.Sprintf("%s (%d games, %s)", h.Hero.Name, h.Games, pct(h.WinRate)),
		})
	}
	for _, s := range d.PlayStyle.Axes() {
		kvs = append(kvs, model.KV{Key: s.Label, Value: itoa(s.Value)})
	}
	if d.LastMatchAt > 0 {
		kvs = append(kvs, model.KV{Key: "Last match", Value: formatTime(d.LastMatchAt)})
	}
	return kvTable(kvs)
}

func heroesTable(hs []analyze.HeroStat) *table {
	t := &table{headers: []string{"#", "HERO", "GAMES", "WINS", "WIN RATE"}, right: rightCols(0, 2, 3, 4)}
	for i, h := range hs {
		t.add(itoa(i+1), h.Hero.Name, itoa(h.Games), itoa(h.Wins), pct(h.WinRate))
	}
	return t
}

func workdayTable(r analyze.WorkdayReport) *table {
	t := &table{
		title: fmt.Sprintf("%d matches on the clock: %dW %dL (%s), %s hours over %d days, %s per day",
			r.Total, r.Wins, r.Losses, pct(r.WinRate), ftoa(r.HoursPlayed), r.TotalDays, ftoa(r.AvgPerDay)),
		headers: []string{"DATE", "MATCH", "STARTED", "HERO", "RESULT", "K/D/A", "DURATION"},
	}
	for _, g := range r.RecentDays {
		for _, m := range g.Matches {
			t.add(g.Date, strconv.FormatInt(m.ID, 10), time.UnixMilli(m.Timestamp).Format("15:04"),
				m.Hero.Name, string(m.Outcome),
				fmt.Sprintf("%d/%d/%d", m.KDA.Kills, m.KDA.Deaths, m.KDA.Assists),
				m.Duration.Formatted)
		}
	}
	return t
}

func kvTable(kvs []model.KV) *table {
	t := &table{headers: []string{"FIELD", "VALUE"}}
	for _, kv := range kvs {
		t.add(kv.Key, kv.Value)
	}
	return t
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, t *table) error {
	if t.title != "" {
		fmt.Fprintf(w, "%s\n\n", t.title)
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	align := make([]int, len(t.headers))
	for i := range align {
		align[i] = tablewriter.ALIGN_LEFT
		if t.right[i] {
			align[i] = tablewriter.ALIGN_RIGHT
		}
	}
	tw.SetColumnAlignment(align)
	tw.AppendBulk(t.rows)
	tw.Render()
	return nil
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, t *table, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	headers := make([]string, len(t.headers))
	for i, h := range t.headers {
		headers[i] = strings.ToLower(strings.ReplaceAll(h, " ", "_"))
	}
	_ = cw.Write(headers)
	_ = cw.WriteAll(t.rows)
	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, t *table) error {
	if t.title != "" {
		fmt.Fprintf(w, "**%s**\n\n", mdEscape(t.title))
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(t.headers, " | "))
	seps := make([]string, len(t.headers))
	for i := range seps {
		seps[i] = "---"
		if t.right[i] {
			seps[i] = "--:"
		}
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = mdEscape(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		src := "live"
		if result.Stats.CacheHit {
			src = "cache"
		}
		fmt.Fprintf(w, "\n[%s • %d items • %dms • %s]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
			src,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func rightCols(cols ...int) map[int]bool {
	m := make(map[int]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

func itoa(n int) string { return strconv.Itoa(n) }

func pct(n int) string { return strconv.Itoa(n) + "%" }

// ftoa prints a float without trailing zeros (2.50 → 2.5, 3.00 → 3).
func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func intp(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func i64p(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

// formatTime renders a unix-millisecond timestamp on the local clock.
func formatTime(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
