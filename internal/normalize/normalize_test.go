package normalize_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/normalize"
	"github.com/derickschaefer/ezdota/internal/util"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func ip(v int) *int       { return &v }
func i64p(v int64) *int64 { return &v }
func bp(v bool) *bool     { return &v }

func testHeroes() model.HeroDirectory {
	return normalize.Heroes([]model.RawHero{
		{ID: 1, LocalizedName: "Anti-Mage", Img: "/apps/dota2/images/heroes/antimage_full.png", Icon: "/apps/dota2/images/heroes/antimage_icon.png", PrimaryAttr: "agi", AttackType: "Melee", Roles: []string{"Carry", "Escape"}},
		{ID: 5, LocalizedName: "Crystal Maiden", Img: "/apps/dota2/images/heroes/crystal_maiden_full.png"},
		{ID: 74, LocalizedName: "Invoker"},
	})
}

// fullRecord returns a record with every optional field set.
func fullRecord() model.RawMatch {
	return model.RawMatch{
		MatchID:     i64p(7500000001),
		HeroID:      ip(1),
		PlayerSlot:  ip(3),
		RadiantWin:  bp(true),
		Kills:       ip(6),
		Deaths:      ip(3),
		Assists:     ip(9),
		Duration:    ip(2345),
		LobbyType:   ip(7),
		GameMode:    ip(22),
		Lane:        ip(2),
		LaneRole:    ip(2),
		StartTime:   i64p(1700000000),
		PartySize:   ip(1),
		AverageRank: ip(55),
	}
}

// ─── Normalize ────────────────────────────────────────────────────────────────

func TestNormalizeFullRecord(t *testing.T) {
	m := normalize.Normalize(fullRecord(), testHeroes())

	assert.Equal(t, int64(7500000001), m.ID)
	assert.Equal(t, "Anti-Mage", m.Hero.Name)
	assert.Equal(t, "https://cdn.dota2.com/apps/dota2/images/heroes/antimage_full.png", m.Hero.Image)
	assert.Equal(t, model.OutcomeWin, m.Outcome)
	assert.Equal(t, model.KDA{Kills: 6, Deaths: 3, Assists: 9, Ratio: 5}, m.KDA)
	assert.Equal(t, model.Duration{Seconds: 2345, Formatted: "39:05"}, m.Duration)
	assert.Equal(t, model.TypeRanked, m.Type)
	assert.Equal(t, int64(1700000000000), m.Timestamp)
	assert.Equal(t, model.LaneMid, m.Lane)
	assert.True(t, m.IsRadiant)
	assert.Equal(t, 3, m.PlayerSlot)
	assert.Equal(t, "All Draft", m.GameMode)
	assert.Equal(t, "Ranked", m.LobbyType)
	assert.Equal(t, 55, m.AverageRank)
}

func TestNormalizeEmptyRecordDefaults(t *testing.T) {
	m := normalize.Normalize(model.RawMatch{}, testHeroes())

	assert.Equal(t, model.OutcomeUnknown, m.Outcome)
	assert.Equal(t, model.KDA{}, m.KDA)
	assert.Equal(t, "0:00", m.Duration.Formatted)
	assert.Equal(t, model.TypeNormal, m.Type)
	assert.Equal(t, model.LaneUnknown, m.Lane)
	assert.Equal(t, model.UnknownHeroName, m.Hero.Name)
	assert.Empty(t, m.Hero.Image)
	assert.True(t, m.IsRadiant, "missing slot defaults to 0 which is Radiant")
	assert.Equal(t, "Unknown", m.GameMode)
	assert.Equal(t, "Normal", m.LobbyType)
}

func TestNormalizeClassificationBranches(t *testing.T) {
	cases := []struct {
		name  string
		lobby int
		mode  int
		want  model.MatchType
	}{
		{"ranked via lobby type", 7, 22, model.TypeRanked},
		{"ranked solo lobby", 5, 1, model.TypeRanked},
		{"turbo overrides ranked lobby", 7, 23, model.TypeTurbo},
		{"turbo in normal lobby", 0, 23, model.TypeTurbo},
		{"normal fallback", 0, 22, model.TypeNormal},
		{"battle cup is not ranked", 9, 2, model.TypeNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := fullRecord()
			raw.LobbyType = ip(tc.lobby)
			raw.GameMode = ip(tc.mode)
			assert.Equal(t, tc.want, normalize.Normalize(raw, nil).Type)
		})
	}
}

func TestNormalizeOutcome(t *testing.T) {
	cases := []struct {
		name       string
		slot       int
		radiantWin *bool
		want       model.Outcome
	}{
		{"radiant player, radiant won", 0, bp(true), model.OutcomeWin},
		{"radiant player, dire won", 4, bp(false), model.OutcomeLoss},
		{"dire player, dire won", 128, bp(false), model.OutcomeWin},
		{"dire player, radiant won", 132, bp(true), model.OutcomeLoss},
		{"outcome missing", 132, nil, model.OutcomeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := fullRecord()
			raw.PlayerSlot = ip(tc.slot)
			raw.RadiantWin = tc.radiantWin
			m := normalize.Normalize(raw, nil)
			assert.Equal(t, tc.want, m.Outcome)
			assert.Equal(t, tc.slot < 128, m.IsRadiant)
		})
	}
}

func TestNormalizeIgnoresUnknownLane(t *testing.T) {
	raw := fullRecord()
	raw.Lane = ip(7)
	assert.Equal(t, model.LaneUnknown, normalize.Normalize(raw, nil).Lane)
}

func TestNormalizeClampsNegativeCounts(t *testing.T) {
	raw := fullRecord()
	raw.Kills = ip(-1)
	raw.Duration = ip(-30)
	m := normalize.Normalize(raw, nil)
	assert.Equal(t, 0, m.KDA.Kills)
	assert.Equal(t, 0, m.Duration.Seconds)
}

func TestNormalizeSnapshotsHero(t *testing.T) {
	heroes := testHeroes()
	m := normalize.Normalize(fullRecord(), heroes)

	heroes[1] = model.Hero{ID: 1, Name: "Renamed"}
	assert.Equal(t, "Anti-Mage", m.Hero.Name, "existing matches keep the name they were built with")
}

// ─── KDA ──────────────────────────────────────────────────────────────────────

func TestKDARatio(t *testing.T) {
	assert.Equal(t, 8.0, normalize.KDARatio(5, 0, 3))
	assert.Equal(t, 5.0, normalize.KDARatio(6, 3, 9))
	assert.Equal(t, 0.0, normalize.KDARatio(0, 0, 0))
	assert.Equal(t, 1.67, normalize.KDARatio(2, 3, 3))
}

// ─── Validation ───────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	assert.NoError(t, normalize.Validate(fullRecord()))

	err := normalize.Validate(model.RawMatch{})
	var ve *normalize.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "match_id", ve.Field)

	err = normalize.Validate(model.RawMatch{MatchID: i64p(0)})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "must be positive")
}

func TestNormalizeAllSkipsInvalid(t *testing.T) {
	raws := []model.RawMatch{fullRecord(), {HeroID: ip(5)}, fullRecord()}
	raws[2].MatchID = i64p(7500000002)

	matches, err := normalize.NormalizeAll(raws, testHeroes())
	require.Error(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(7500000001), matches[0].ID)
	assert.Equal(t, int64(7500000002), matches[1].ID)

	var me *util.MultiError
	require.True(t, errors.As(err, &me))
	assert.Len(t, me.Errors, 1)
	assert.Contains(t, err.Error(), "record 1")

	var ve *normalize.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestNormalizeAllClean(t *testing.T) {
	matches, err := normalize.NormalizeAll([]model.RawMatch{fullRecord()}, testHeroes())
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

// ─── Heroes ───────────────────────────────────────────────────────────────────

func TestHeroes(t *testing.T) {
	dir := testHeroes()
	am := dir.Lookup(1)
	assert.Equal(t, "Anti-Mage", am.Name)
	assert.Equal(t, "https://cdn.dota2.com/apps/dota2/images/heroes/antimage_icon.png", am.Icon)
	assert.Equal(t, []string{"Carry", "Escape"}, am.Roles)

	assert.Empty(t, dir.Lookup(74).Image, "empty catalog path yields no URL")

	missing := dir.Lookup(999)
	assert.Equal(t, 999, missing.ID)
	assert.Equal(t, model.UnknownHeroName, missing.Name)
}

// ─── Detail ───────────────────────────────────────────────────────────────────

func TestDetail(t *testing.T) {
	raw := model.RawMatchDetail{
		MatchID:        i64p(42),
		RadiantScore:   ip(30),
		DireScore:      ip(12),
		RadiantWin:     bp(false),
		Duration:       ip(1800),
		StartTime:      i64p(1700000000),
		GameMode:       ip(23),
		LobbyType:      ip(0),
		RadiantGoldAdv: []int{0, 500, 1200},
		Players: []model.RawDetailPlayer{
			{AccountID: i64p(425817633), PersonaName: "me", HeroID: 5, PlayerSlot: 130, Kills: 2, Deaths: 0, Assists: 10},
			{HeroID: 1, PlayerSlot: 0, Kills: 10, Deaths: 4, Assists: 2},
		},
	}

	d := normalize.Detail(raw, testHeroes(), 425817633)
	assert.Equal(t, int64(42), d.ID)
	assert.Equal(t, "30:00", d.Duration.Formatted)
	assert.Equal(t, "Turbo", d.GameMode)
	assert.Equal(t, []int{0, 500, 1200}, d.GoldAdvantage)
	assert.Equal(t, []int{}, d.XPAdvantage)

	require.Len(t, d.Players, 2)
	assert.Equal(t, "Anonymous", d.Players[1].Name)
	assert.True(t, d.Players[1].IsRadiant)
	assert.False(t, d.Players[0].IsRadiant)

	require.NotNil(t, d.CurrentPlayer)
	assert.Equal(t, "Crystal Maiden", d.CurrentPlayer.Hero.Name)
	assert.Equal(t, model.OutcomeWin, d.CurrentPlayer.Outcome)
	assert.Equal(t, 12.0, d.CurrentPlayer.KDA.Ratio)
}

func TestDetailWithoutTrackedPlayer(t *testing.T) {
	d := normalize.Detail(model.RawMatchDetail{MatchID: i64p(1)}, nil, 425817633)
	assert.Nil(t, d.CurrentPlayer)
	assert.Empty(t, d.Players)
}

func TestPlayer(t *testing.T) {
	var raw model.RawPlayer
	raw.Profile.AccountID = 425817633
	raw.Profile.PersonaName = "mid or feed"
	raw.Profile.LocCountryCode = "BR"
	raw.RankTier = ip(54)

	p := normalize.Player(raw, model.WinLoss{Win: 120, Lose: 100})
	assert.Equal(t, int64(425817633), p.AccountID)
	assert.Equal(t, "mid or feed", p.Name)
	assert.Equal(t, "BR", p.Country)
	assert.Equal(t, 54, p.RankTier)
	assert.Equal(t, 120, p.Wins)
	assert.Equal(t, 100, p.Losses)

	anon := normalize.Player(model.RawPlayer{}, model.WinLoss{Win: -1})
	assert.Equal(t, "Anonymous", anon.Name)
	assert.Zero(t, anon.RankTier)
	assert.Zero(t, anon.Wins)
}
