package normalize

import "github.com/derickschaefer/ezdota/internal/model"

// Player merges a profile payload with the account's win/loss totals.
func Player(raw model.RawPlayer, wl model.WinLoss) model.Player {
	p := model.Player{
		AccountID:  raw.Profile.AccountID,
		Name:       raw.Profile.PersonaName,
		Avatar:     raw.Profile.AvatarFull,
		ProfileURL: raw.Profile.ProfileURL,
		Country:    raw.Profile.LocCountryCode,
		RankTier:   intOr(raw.RankTier),
		Wins:       nonNeg(wl.Win),
		Losses:     nonNeg(wl.Lose),
	}
	if p.Name == "" {
		p.Name = anonymousName
	}
	return p
}
