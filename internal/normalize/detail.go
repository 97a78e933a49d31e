package normalize

import (
	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/util"
)

// anonymousName replaces empty persona names in match details.
const anonymousName = "Anonymous"

// Detail converts a /matches/{id} payload. accountID selects the tracked
// player; CurrentPlayer is nil when that account is not in the match or
// its profile is private.
func Detail(raw model.RawMatchDetail, heroes model.HeroDirectory, accountID int64) model.MatchDetail {
	seconds := nonNeg(intOr(raw.Duration))
	var id, start int64
	if raw.MatchID != nil {
		id = *raw.MatchID
	}
	if raw.StartTime != nil {
		start = *raw.StartTime
	}

	d := model.MatchDetail{
		ID:           id,
		RadiantScore: intOr(raw.RadiantScore),
		DireScore:    intOr(raw.DireScore),
		RadiantWin:   raw.RadiantWin,
		Duration: model.Duration{
			Seconds:   seconds,
			Formatted: util.FormatDuration(seconds),
		},
		Timestamp:     start * 1000,
		GameMode:      model.GameMode(intOr(raw.GameMode)).String(),
		LobbyType:     model.LobbyType(intOr(raw.LobbyType)).String(),
		GoldAdvantage: nonNilInts(raw.RadiantGoldAdv),
		XPAdvantage:   nonNilInts(raw.RadiantXPAdv),
		Players:       make([]model.DetailPlayer, 0, len(raw.Players)),
	}

	for _, p := range raw.Players {
		hero := heroes.Lookup(p.HeroID)
		name := p.PersonaName
		if name == "" {
			name = anonymousName
		}
		var acct int64
		if p.AccountID != nil {
			acct = *p.AccountID
		}
		radiant := p.PlayerSlot < radiantSlotLimit
		if p.IsRadiant != nil && *p.IsRadiant {
			radiant = true
		}

		d.Players = append(d.Players, model.DetailPlayer{
			AccountID:   acct,
			Name:        name,
			Hero:        model.HeroRef{ID: hero.ID, Name: hero.Name, Image: hero.Image},
			Kills:       p.Kills,
			Deaths:      p.Deaths,
			Assists:     p.Assists,
			NetWorth:    p.NetWorth,
			LastHits:    p.LastHits,
			Denies:      p.Denies,
			GPM:         p.GoldPerMin,
			XPM:         p.XPPerMin,
			HeroDamage:  p.HeroDamage,
			TowerDamage: p.TowerDamage,
			HeroHealing: p.HeroHealing,
			IsRadiant:   radiant,
		})

		if d.CurrentPlayer == nil && accountID != 0 && acct == accountID {
			d.CurrentPlayer = &model.CurrentPlayer{
				Hero: model.HeroRef{ID: hero.ID, Name: hero.Name, Image: hero.Image},
				KDA: model.KDA{
					Kills:   p.Kills,
					Deaths:  p.Deaths,
					Assists: p.Assists,
					Ratio:   KDARatio(p.Kills, p.Deaths, p.Assists),
				},
				Outcome:   Outcome(raw.RadiantWin, p.PlayerSlot),
				IsRadiant: p.PlayerSlot < radiantSlotLimit,
			}
		}
	}
	return d
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
