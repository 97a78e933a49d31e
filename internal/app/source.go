package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/derickschaefer/ezdota/internal/archive"
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/normalize"
	"github.com/derickschaefer/ezdota/internal/pipeline"
)

// Source names where match history comes from.
type Source string

const (
	SourceAPI     Source = "api"
	SourceArchive Source = "archive"
)

// ParseSource accepts "api" or "archive". Empty means api.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SourceAPI):
		return SourceAPI, nil
	case string(SourceArchive):
		return SourceArchive, nil
	}
	return "", fmt.Errorf("invalid source %q: expected api|archive", s)
}

// Loaded is a normalized match history plus whatever else the source
// provided. Raw is only set when matches came from raw records.
type Loaded struct {
	Matches  []model.Match
	Raw      []model.RawMatch
	Heroes   model.HeroDirectory
	Player   *model.Player
	Warnings []string
}

// LoadOptions selects the history to load.
type LoadOptions struct {
	Source Source
	// Input, when set, reads raw matches from a file ("-" for stdin)
	// instead of the API. The hero catalog is still fetched for names.
	Input string
}

// LoadMatches returns the configured player's history from the requested
// source, newest first. Input files may be in any order; matches sharing
// a timestamp keep their input order.
func (d *Deps) LoadMatches(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	var (
		out *Loaded
		err error
	)
	switch {
	case opts.Input != "":
		out, err = d.loadInput(ctx, opts.Input)
	case opts.Source == SourceArchive:
		out, err = d.loadArchive(ctx)
	default:
		out, err = d.loadAPI(ctx)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out.Matches, func(i, j int) bool {
		return out.Matches[i].Timestamp > out.Matches[j].Timestamp
	})
	return out, nil
}

func (d *Deps) loadAPI(ctx context.Context) (*Loaded, error) {
	ds, err := d.Client.LoadDataset(ctx, d.Config.PlayerID, d.Config.MatchLimit)
	if err != nil {
		return nil, err
	}
	heroes := normalize.Heroes(ds.Heroes)
	out := &Loaded{Raw: ds.Matches, Heroes: heroes}
	out.Matches, err = normalizeAll(ds.Matches, heroes, out)
	if err != nil {
		return nil, err
	}
	p := normalize.Player(ds.Player, ds.WinLoss)
	if p.AccountID == 0 {
		p.AccountID = d.Config.PlayerID
	}
	out.Player = &p
	return out, nil
}

func (d *Deps) loadInput(ctx context.Context, path string) (*Loaded, error) {
	raws, err := pipeline.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := &Loaded{Raw: raws, Heroes: model.HeroDirectory{}}
	rawHeroes, err := d.Client.GetHeroStats(ctx)
	if err != nil {
		d.Logger.Warn().Err(err).Msg("hero catalog unavailable")
		out.Warnings = append(out.Warnings, fmt.Sprintf("hero names unavailable: %v", err))
	} else {
		out.Heroes = normalize.Heroes(rawHeroes)
	}
	out.Matches, err = normalizeAll(raws, out.Heroes, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Deps) loadArchive(ctx context.Context) (*Loaded, error) {
	if err := d.RequireArchive(); err != nil {
		return nil, err
	}
	ms, err := d.Archive.List(ctx, archive.Filter{AccountID: d.Config.PlayerID})
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("archive has no matches for player %d (run 'ezdota archive save' first)", d.Config.PlayerID)
	}
	return &Loaded{Matches: ms, Heroes: model.HeroDirectory{}}, nil
}

// normalizeAll converts raws, turning per-record validation failures into
// warnings on out. It only fails when nothing survives.
func normalizeAll(raws []model.RawMatch, heroes model.HeroDirectory, out *Loaded) ([]model.Match, error) {
	ms, err := normalize.NormalizeAll(raws, heroes)
	if err != nil {
		if len(ms) == 0 && len(raws) > 0 {
			return nil, fmt.Errorf("no valid matches: %w", err)
		}
		out.Warnings = append(out.Warnings, err.Error())
	}
	return ms, nil
}
