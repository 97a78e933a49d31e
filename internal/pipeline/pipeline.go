// Package pipeline reads and writes raw match records through files and
// stdin/stdout. JSONL is the canonical pipe format; a JSON array, or the
// JSON envelope printed by "ezdota matches --raw --format json", is also
// accepted on input.
package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/derickschaefer/ezdota/internal/model"
)

const maxLine = 1024 * 1024

// ReadRawMatches reads raw match records from r. The format is detected
// from the input: a JSON array, a result envelope with kind raw_matches,
// or one JSON object per line (blank and // comment lines are skipped).
func ReadRawMatches(r io.Reader) ([]model.RawMatch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no matches read from input (is stdin empty?)")
	}

	var out []model.RawMatch
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
	case '{':
		var env struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		}
		if json.Unmarshal(trimmed, &env) == nil && env.Kind != "" {
			if env.Kind != model.KindRawMatches {
				return nil, fmt.Errorf("input is a %q result, expected %q (use --raw)", env.Kind, model.KindRawMatches)
			}
			if err := json.Unmarshal(env.Data, &out); err != nil {
				return nil, fmt.Errorf("invalid envelope data: %w", err)
			}
			break
		}
		if out, err = readJSONL(bytes.NewReader(trimmed)); err != nil {
			return nil, err
		}
	default:
		if out, err = readJSONL(bytes.NewReader(trimmed)); err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no matches read from input")
	}
	return out, nil
}

func readJSONL(r io.Reader) ([]model.RawMatch, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLine), maxLine)

	var out []model.RawMatch
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var rec model.RawMatch
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return out, nil
}

// ReadFile reads raw matches from path, or from stdin when path is "-".
func ReadFile(path string) ([]model.RawMatch, error) {
	if path == "-" {
		return ReadRawMatches(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	recs, err := ReadRawMatches(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// WriteJSONL writes one compact JSON object per line to w.
func WriteJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if stdout is a terminal (not a pipe).
func IsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
