// Package normalize converts raw OpenDota payloads into canonical model
// values. Defaults for missing fields are applied here and nowhere else;
// downstream packages can rely on every Match field being populated.
package normalize

import (
	"fmt"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/util"
)

// CDNBaseURL prefixes the relative image paths found in the hero catalog.
const CDNBaseURL = "https://cdn.dota2.com"

// radiantSlotLimit separates Radiant slots (0–127) from Dire slots (128–255).
const radiantSlotLimit = 128

// ─── Validation ───────────────────────────────────────────────────────────────

// ValidationError reports a raw record that cannot be turned into a Match.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid match record: %s %s", e.Field, e.Reason)
}

// Validate checks that raw carries the identifiers a Match needs.
func Validate(raw model.RawMatch) error {
	if raw.MatchID == nil {
		return &ValidationError{Field: "match_id", Reason: "is missing"}
	}
	if *raw.MatchID <= 0 {
		return &ValidationError{Field: "match_id", Reason: fmt.Sprintf("must be positive, got %d", *raw.MatchID)}
	}
	return nil
}

// ─── Matches ──────────────────────────────────────────────────────────────────

// Normalize converts one raw record into a Match. It never fails: missing
// numbers become 0, a missing outcome becomes unknown and an unknown hero
// becomes the placeholder. Call Validate first to reject records without
// an id.
func Normalize(raw model.RawMatch, heroes model.HeroDirectory) model.Match {
	slot := intOr(raw.PlayerSlot)
	kills := nonNeg(intOr(raw.Kills))
	deaths := nonNeg(intOr(raw.Deaths))
	assists := nonNeg(intOr(raw.Assists))
	seconds := nonNeg(intOr(raw.Duration))
	gameMode := model.GameMode(intOr(raw.GameMode))
	lobby := model.LobbyType(intOr(raw.LobbyType))
	hero := heroes.Lookup(intOr(raw.HeroID))

	var id int64
	if raw.MatchID != nil {
		id = *raw.MatchID
	}
	var start int64
	if raw.StartTime != nil {
		start = *raw.StartTime
	}

	return model.Match{
		ID: id,
		Hero: model.HeroRef{
			ID:    hero.ID,
			Name:  hero.Name,
			Image: hero.Image,
		},
		Outcome: Outcome(raw.RadiantWin, slot),
		KDA: model.KDA{
			Kills:   kills,
			Deaths:  deaths,
			Assists: assists,
			Ratio:   KDARatio(kills, deaths, assists),
		},
		Duration: model.Duration{
			Seconds:   seconds,
			Formatted: util.FormatDuration(seconds),
		},
		Type:        Classify(lobby, gameMode),
		Timestamp:   start * 1000,
		Lane:        lane(raw.Lane),
		IsRadiant:   slot < radiantSlotLimit,
		PlayerSlot:  slot,
		GameMode:    gameMode.String(),
		LobbyType:   lobby.String(),
		LaneRole:    intOr(raw.LaneRole),
		PartySize:   intOr(raw.PartySize),
		AverageRank: intOr(raw.AverageRank),
	}
}

// NormalizeAll validates and normalizes raws in order. Invalid records are
// skipped; their validation errors are returned together as a
// *util.MultiError alongside the matches that did normalize.
func NormalizeAll(raws []model.RawMatch, heroes model.HeroDirectory) ([]model.Match, error) {
	out := make([]model.Match, 0, len(raws))
	var errs util.MultiError
	for i, raw := range raws {
		if err := Validate(raw); err != nil {
			errs.Add(fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, Normalize(raw, heroes))
	}
	return out, errs.Err()
}

// Outcome derives win/loss from the player's slot and the Radiant result.
// A nil radiantWin yields OutcomeUnknown.
func Outcome(radiantWin *bool, playerSlot int) model.Outcome {
	if radiantWin == nil {
		return model.OutcomeUnknown
	}
	if (playerSlot < radiantSlotLimit) == *radiantWin {
		return model.OutcomeWin
	}
	return model.OutcomeLoss
}

// Classify maps lobby type and game mode to a MatchType. Turbo wins over
// a ranked lobby.
func Classify(lobby model.LobbyType, mode model.GameMode) model.MatchType {
	if mode == model.GameModeTurbo {
		return model.TypeTurbo
	}
	if lobby.IsRanked() {
		return model.TypeRanked
	}
	return model.TypeNormal
}

// KDARatio returns (kills+assists)/deaths rounded to two decimals, or
// kills+assists when deaths is zero.
func KDARatio(kills, deaths, assists int) float64 {
	if deaths == 0 {
		return float64(kills + assists)
	}
	return util.RoundTo(float64(kills+assists)/float64(deaths), 2)
}

// ─── Heroes ───────────────────────────────────────────────────────────────────

// Heroes builds a HeroDirectory from the /heroStats catalog.
func Heroes(raw []model.RawHero) model.HeroDirectory {
	dir := make(model.HeroDirectory, len(raw))
	for _, h := range raw {
		dir[h.ID] = model.Hero{
			ID:          h.ID,
			Name:        h.LocalizedName,
			Image:       ImageURL(h.Img),
			Icon:        ImageURL(h.Icon),
			PrimaryAttr: h.PrimaryAttr,
			AttackType:  h.AttackType,
			Roles:       h.Roles,
		}
	}
	return dir
}

// ImageURL resolves a catalog image path against the CDN. Empty in, empty out.
func ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return CDNBaseURL + path
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func intOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func nonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func lane(p *int) model.Lane {
	l := model.Lane(intOr(p))
	if !l.Valid() {
		return model.LaneUnknown
	}
	return l
}
