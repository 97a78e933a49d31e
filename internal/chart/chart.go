// Package chart draws ASCII terminal charts for labelled numeric series.
// Two renderers are available:
//
//   - Bar: horizontal bar chart, one bar per point. Suits categorical data
//     such as play-style axes or per-day win rates.
//   - Plot: multi-line chart with labelled axes. Suits long series such as
//     a rolling win rate or a match's gold advantage by minute.
//
// Both renderers support negative values.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Point is one labelled value.
type Point struct {
	Label string
	Value float64
}

// Points builds a series from parallel ints, labelling each with label(i).
func Points(values []int, label func(i int) string) []Point {
	out := make([]Point, len(values))
	for i, v := range values {
		out[i] = Point{Label: label(i), Value: float64(v)}
	}
	return out
}

// ─── Bar ─────────────────────────────────────────────────────────────────────

// BarOptions controls horizontal bar chart rendering.
type BarOptions struct {
	// Width is the total character width available for the chart.
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// Max fixes the top of the scale (e.g. 100 for percentages) so bars
	// from different charts compare. If 0, the largest value is used.
	Max float64
	// Suffix is appended to each value label, e.g. "%".
	Suffix string
}

// Bar renders a horizontal bar chart of points to w.
//
// Output example:
//
//	Play style
//	Fighting     70%  ██████████████████████████
//	Versatility  40%  ███████████████
//	Farming      90%  █████████████████████████████████
func Bar(w io.Writer, title string, points []Point, opts BarOptions) error {
	if len(points) == 0 {
		return fmt.Errorf("chart bar: no points to render")
	}
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}

	minVal, maxVal := 0.0, opts.Max
	for _, p := range points {
		if p.Value < minVal {
			minVal = p.Value
		}
		if opts.Max <= 0 && p.Value > maxVal {
			maxVal = p.Value
		}
	}

	labelWidth, valWidth := 0, 0
	for _, p := range points {
		if l := utf8.RuneCountInString(p.Label); l > labelWidth {
			labelWidth = l
		}
		if l := len(formatFloat(p.Value) + opts.Suffix); l > valWidth {
			valWidth = l
		}
	}

	// label + value + two double-space separators
	barAreaWidth := totalWidth - labelWidth - valWidth - 4
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}

	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = 1
	}
	hasNeg := minVal < 0
	var zeroPos int
	if hasNeg {
		zeroPos = int(math.Round((-minVal / valRange) * float64(barAreaWidth-1)))
	}

	if title != "" {
		fmt.Fprintln(w, title)
	}
	for _, p := range points {
		var bar string
		if hasNeg {
			bar = buildBiBar(p.Value, valRange, barAreaWidth, zeroPos)
		} else {
			barLen := int(math.Round(p.Value / valRange * float64(barAreaWidth)))
			if barLen < 1 && p.Value > 0 {
				barLen = 1
			}
			if barLen > barAreaWidth {
				barLen = barAreaWidth
			}
			bar = strings.Repeat("█", barLen)
		}
		pad := labelWidth - utf8.RuneCountInString(p.Label)
		fmt.Fprintf(w, "%s%s  %*s  %s\n",
			p.Label, strings.Repeat(" ", pad),
			valWidth, formatFloat(p.Value)+opts.Suffix,
			strings.TrimRight(bar, " "),
		)
	}
	return nil
}

// buildBiBar renders a bar that extends left (negative) or right (positive)
// from a zero baseline at zeroPos within a field of width barAreaWidth.
func buildBiBar(val, valRange float64, barAreaWidth, zeroPos int) string {
	buf := []rune(strings.Repeat(" ", barAreaWidth))
	if zeroPos >= 0 && zeroPos < barAreaWidth {
		buf[zeroPos] = '│'
	}
	n := int(math.Round(math.Abs(val) / valRange * float64(barAreaWidth-1)))
	if val >= 0 {
		for i := zeroPos + 1; i <= zeroPos+n && i < barAreaWidth; i++ {
			buf[i] = '█'
		}
	} else {
		start := zeroPos - n
		if start < 0 {
			start = 0
		}
		for i := start; i < zeroPos; i++ {
			buf[i] = '█'
		}
	}
	return string(buf)
}

// ─── Plot ─────────────────────────────────────────────────────────────────────

// PlotOptions controls multi-line ASCII plot rendering.
type PlotOptions struct {
	// Width is the total character width of the chart (including Y-axis label).
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// Height is the number of data rows in the chart body. If 0, defaults to 12.
	Height int
}

// Plot renders a multi-line ASCII chart of points to w. The x axis is
// labelled with the first, middle and last point labels.
func Plot(w io.Writer, title string, points []Point, opts PlotOptions) error {
	if len(points) < 2 {
		return fmt.Errorf("chart plot: need at least 2 points (got %d)", len(points))
	}
	width := opts.Width
	if width <= 0 {
		width = termWidth()
	}
	height := opts.Height
	if height <= 0 {
		height = 12
	}

	minVal, maxVal := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		minVal = math.Min(minVal, p.Value)
		maxVal = math.Max(maxVal, p.Value)
	}

	ticks := yTicks(minVal, maxVal, height)
	yLabelWidth := 0
	for _, t := range ticks {
		if l := len(formatFloat(t)); l > yLabelWidth {
			yLabelWidth = l
		}
	}

	plotWidth := width - yLabelWidth - 1
	if plotWidth < 10 {
		plotWidth = 10
	}
	// Never stretch a short series wider than one column per point.
	if plotWidth > len(points) && len(points) >= 10 {
		plotWidth = len(points)
	}

	cols := sampleCols(points, plotWidth)
	grid := buildGrid(cols, minVal, maxVal, height)

	fmt.Fprintf(w, "%s  (%s to %s)\n", title, points[0].Label, points[len(points)-1].Label)
	for row := 0; row < height; row++ {
		label := ""
		for _, t := range ticks {
			if math.Abs(rowForValue(t, minVal, maxVal, height)-float64(row)) < 0.5 {
				label = formatFloat(t)
				break
			}
		}
		axisCh := "┤"
		if label == "" {
			axisCh = " "
		}
		fmt.Fprintf(w, "%*s%s%s\n", yLabelWidth, label, axisCh, strings.TrimRight(string(grid[row]), " "))
	}
	fmt.Fprintf(w, "%s└%s\n", strings.Repeat(" ", yLabelWidth), strings.Repeat("─", plotWidth))
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", yLabelWidth), strings.TrimRight(xAxisLabels(points, plotWidth), " "))
	return nil
}

// ─── Grid building ────────────────────────────────────────────────────────────

// sampleCols reduces points to exactly n columns. Each column holds the
// average of its bucket; when there are fewer points than columns, points
// repeat across neighbouring columns.
func sampleCols(points []Point, n int) []float64 {
	total := len(points)
	cols := make([]float64, n)
	for col := 0; col < n; col++ {
		lo := col * total / n
		hi := (col+1)*total/n - 1
		if hi < lo {
			hi = lo
		}
		if hi >= total {
			hi = total - 1
		}
		sum := 0.0
		for i := lo; i <= hi; i++ {
			sum += points[i].Value
		}
		cols[col] = sum / float64(hi-lo+1)
	}
	return cols
}

// rowForValue returns the float row index (0=top=max) for a given value.
func rowForValue(v, minVal, maxVal float64, height int) float64 {
	if maxVal == minVal {
		return float64(height) / 2
	}
	return (maxVal - v) / (maxVal - minVal) * float64(height-1)
}

// buildGrid renders columns into a height×width rune grid using
// box-drawing characters to connect adjacent values.
func buildGrid(cols []float64, minVal, maxVal float64, height int) [][]rune {
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", len(cols)))
	}

	rowOf := make([]int, len(cols))
	for col, v := range cols {
		r := int(math.Round(rowForValue(v, minVal, maxVal, height)))
		if r < 0 {
			r = 0
		}
		if r >= height {
			r = height - 1
		}
		rowOf[col] = r
	}

	for col, r := range rowOf {
		next := r
		if col < len(cols)-1 {
			next = rowOf[col+1]
		}
		if next == r {
			grid[r][col] = '─'
			continue
		}

		// Step to the next column's row within this column.
		lo, hi := r, next
		if lo > hi {
			lo, hi = hi, lo
		}
		for fill := lo + 1; fill < hi; fill++ {
			grid[fill][col] = '│'
		}
		if next < r {
			grid[r][col] = '╯'
			grid[next][col] = '╭'
		} else {
			grid[r][col] = '╮'
			grid[next][col] = '╰'
		}
	}
	return grid
}

// ─── Axis helpers ─────────────────────────────────────────────────────────────

// yTicks returns evenly-spaced tick values for the Y axis.
func yTicks(minVal, maxVal float64, height int) []float64 {
	if maxVal == minVal {
		return []float64{minVal}
	}
	nTicks := 4
	if height <= 6 {
		nTicks = 3
	}
	ticks := make([]float64, nTicks)
	for i := 0; i < nTicks; i++ {
		ticks[i] = minVal + float64(i)*(maxVal-minVal)/float64(nTicks-1)
	}
	return ticks
}

// xAxisLabels places the first, middle and last labels under the plot.
func xAxisLabels(points []Point, plotWidth int) string {
	first := points[0].Label
	mid := points[len(points)/2].Label
	last := points[len(points)-1].Label

	buf := []rune(strings.Repeat(" ", plotWidth))
	writeAt := func(pos int, s string) {
		for i, ch := range []rune(s) {
			if pos+i >= 0 && pos+i < len(buf) {
				buf[pos+i] = ch
			}
		}
	}
	writeAt(0, first)
	if plotWidth >= 3*utf8.RuneCountInString(mid)+4 {
		writeAt(plotWidth/2-utf8.RuneCountInString(mid)/2, mid)
	}
	writeAt(plotWidth-utf8.RuneCountInString(last), last)
	return string(buf)
}

// ─── Utilities ────────────────────────────────────────────────────────────────

// formatFloat formats a value compactly: integers without decimals,
// thousands with a K suffix, other values with up to two decimals.
func formatFloat(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e4:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "K"
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		s := strings.TrimRight(strconv.FormatFloat(v, 'f', 2, 64), "0")
		return strings.TrimSuffix(s, ".")
	}
}

// termWidth returns the terminal width from $COLUMNS, defaulting to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}
