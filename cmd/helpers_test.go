package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOutputWriterDefault(t *testing.T) {
	globalFlags.Out = ""
	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter default: %v", err)
	}
	if w != os.Stdout {
		t.Fatalf("expected stdout writer passthrough")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("default closer should be nil error, got: %v", err)
	}
}

func TestOutputWriterFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.txt")
	globalFlags.Out = p
	t.Cleanup(func() { globalFlags.Out = "" })

	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter file: %v", err)
	}
	if w == os.Stdout {
		t.Fatalf("expected file writer, got stdout")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("closing output writer: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}

func TestOutputWriterBadPath(t *testing.T) {
	globalFlags.Out = filepath.Join(t.TempDir(), "missing", "out.txt")
	t.Cleanup(func() { globalFlags.Out = "" })

	if _, _, err := outputWriter(os.Stdout); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestParseMatchID(t *testing.T) {
	got, err := parseMatchID(" 7651234567 ")
	if err != nil {
		t.Fatalf("parseMatchID: %v", err)
	}
	if got != 7651234567 {
		t.Errorf("got %d, want 7651234567", got)
	}
	for _, bad := range []string{"", "0", "-4", "abc", "12x"} {
		if _, err := parseMatchID(bad); err == nil {
			t.Errorf("parseMatchID(%q): expected error", bad)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		512:     "512 B",
		2048:    "2.0 KB",
		3 << 20: "3.0 MB",
	}
	for in, want := range cases {
		if got := humanBytes(in); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintKVTableAligns(t *testing.T) {
	var sb strings.Builder
	printKVTableTo(&sb, [][]string{{"a", "1"}, {"long_key", "2"}})
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Index(lines[0], "1") != strings.Index(lines[1], "2") {
		t.Errorf("values not aligned:\n%s", sb.String())
	}
}

func TestMatchSelectorsUntilIsInclusive(t *testing.T) {
	matchesFlags.Until = "2026-03-05"
	matchesFlags.Hero = "Pudge"
	t.Cleanup(func() { matchesFlags.Until, matchesFlags.Hero = "", "" })

	o, err := matchSelectors(time.UTC)
	if err != nil {
		t.Fatalf("matchSelectors: %v", err)
	}
	want := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !o.Until.Equal(want) {
		t.Errorf("Until = %v, want %v", o.Until, want)
	}
	if o.HeroName != "Pudge" || o.HeroID != 0 {
		t.Errorf("hero selector = (%d, %q), want name Pudge", o.HeroID, o.HeroName)
	}
}

func TestMatchSelectorsRejectsBadValues(t *testing.T) {
	t.Cleanup(func() { matchesFlags.Type, matchesFlags.Since = "", "" })

	matchesFlags.Type = "casual"
	if _, err := matchSelectors(time.UTC); err == nil {
		t.Error("expected error for unknown match type")
	}
	matchesFlags.Type = ""
	matchesFlags.Since = "03/05/2026"
	if _, err := matchSelectors(time.UTC); err == nil {
		t.Error("expected error for malformed date")
	}
}
