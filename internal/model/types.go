// Package model defines the canonical data types used throughout ezdota.
// Raw* types mirror OpenDota API payloads and are treated as untrusted;
// everything else is derived from them by the normalize package and is
// never mutated afterwards.
package model

import (
	"time"
)

// ─── Raw API Types ────────────────────────────────────────────────────────────

// RawMatch is one entry of /players/{id}/matches. Every field is optional;
// defaults are applied once, by the normalizer.
type RawMatch struct {
	MatchID      *int64 `json:"match_id,omitempty"`
	HeroID       *int   `json:"hero_id,omitempty"`
	PlayerSlot   *int   `json:"player_slot,omitempty"`
	RadiantWin   *bool  `json:"radiant_win,omitempty"`
	Kills        *int   `json:"kills,omitempty"`
	Deaths       *int   `json:"deaths,omitempty"`
	Assists      *int   `json:"assists,omitempty"`
	Duration     *int   `json:"duration,omitempty"`
	LobbyType    *int   `json:"lobby_type,omitempty"`
	GameMode     *int   `json:"game_mode,omitempty"`
	Lane         *int   `json:"lane,omitempty"`
	LaneRole     *int   `json:"lane_role,omitempty"`
	StartTime    *int64 `json:"start_time,omitempty"`
	PartySize    *int   `json:"party_size,omitempty"`
	AverageRank  *int   `json:"average_rank,omitempty"`
	LeaverStatus *int   `json:"leaver_status,omitempty"`
	Version      *int   `json:"version,omitempty"`
	Skill        *int   `json:"skill,omitempty"`
}

// RawHero is one entry of the /heroStats catalog.
type RawHero struct {
	ID            int      `json:"id"`
	LocalizedName string   `json:"localized_name"`
	Img           string   `json:"img"`
	Icon          string   `json:"icon"`
	PrimaryAttr   string   `json:"primary_attr"`
	AttackType    string   `json:"attack_type"`
	Roles         []string `json:"roles"`
}

// RawMatchDetail is the payload of /matches/{id}.
type RawMatchDetail struct {
	MatchID        *int64            `json:"match_id,omitempty"`
	RadiantScore   *int              `json:"radiant_score,omitempty"`
	DireScore      *int              `json:"dire_score,omitempty"`
	RadiantWin     *bool             `json:"radiant_win,omitempty"`
	Duration       *int              `json:"duration,omitempty"`
	StartTime      *int64            `json:"start_time,omitempty"`
	GameMode       *int              `json:"game_mode,omitempty"`
	LobbyType      *int              `json:"lobby_type,omitempty"`
	RadiantGoldAdv []int             `json:"radiant_gold_adv,omitempty"`
	RadiantXPAdv   []int             `json:"radiant_xp_adv,omitempty"`
	Players        []RawDetailPlayer `json:"players,omitempty"`
}

// RawDetailPlayer is one participant inside a RawMatchDetail.
type RawDetailPlayer struct {
	AccountID   *int64 `json:"account_id,omitempty"`
	PersonaName string `json:"personaname,omitempty"`
	HeroID      int    `json:"hero_id"`
	PlayerSlot  int    `json:"player_slot"`
	IsRadiant   *bool  `json:"isRadiant,omitempty"`
	Kills       int    `json:"kills"`
	Deaths      int    `json:"deaths"`
	Assists     int    `json:"assists"`
	NetWorth    int    `json:"net_worth"`
	LastHits    int    `json:"last_hits"`
	Denies      int    `json:"denies"`
	GoldPerMin  int    `json:"gold_per_min"`
	XPPerMin    int    `json:"xp_per_min"`
	HeroDamage  int    `json:"hero_damage"`
	TowerDamage int    `json:"tower_damage"`
	HeroHealing int    `json:"hero_healing"`
}

// RawPlayer is the payload of /players/{id}.
type RawPlayer struct {
	Profile struct {
		AccountID      int64  `json:"account_id"`
		PersonaName    string `json:"personaname"`
		AvatarFull     string `json:"avatarfull"`
		ProfileURL     string `json:"profileurl"`
		LocCountryCode string `json:"loccountrycode"`
	} `json:"profile"`
	RankTier        *int `json:"rank_tier,omitempty"`
	LeaderboardRank *int `json:"leaderboard_rank,omitempty"`
}

// WinLoss is the payload of /players/{id}/wl.
type WinLoss struct {
	Win  int `json:"win"`
	Lose int `json:"lose"`
}

// Total is one entry of /players/{id}/totals.
type Total struct {
	Field string  `json:"field"`
	N     int     `json:"n"`
	Sum   float64 `json:"sum"`
}

// ─── Heroes ───────────────────────────────────────────────────────────────────

// UnknownHeroName is the display name used when a hero id is not in the
// directory.
const UnknownHeroName = "Unknown"

// Hero is a catalog entry with image paths already resolved to URLs.
type Hero struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Image       string   `json:"image,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	PrimaryAttr string   `json:"primary_attr,omitempty"`
	AttackType  string   `json:"attack_type,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// HeroDirectory maps hero id to Hero. Read-only once built.
type HeroDirectory map[int]Hero

// Lookup returns the hero for id, or an Unknown placeholder.
func (d HeroDirectory) Lookup(id int) Hero {
	if h, ok := d[id]; ok {
		return h
	}
	return Hero{ID: id, Name: UnknownHeroName}
}

// HeroRef is the denormalized hero snapshot copied into each Match.
type HeroRef struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// ─── Matches ──────────────────────────────────────────────────────────────────

// KDA holds kill/death/assist counts and the derived ratio.
type KDA struct {
	Kills   int     `json:"kills"`
	Deaths  int     `json:"deaths"`
	Assists int     `json:"assists"`
	Ratio   float64 `json:"ratio"`
}

// Duration is a match length in seconds plus its m:ss rendering.
type Duration struct {
	Seconds   int    `json:"seconds"`
	Formatted string `json:"formatted"`
}

// Match is the canonical, immutable view of one game from the tracked
// player's perspective.
type Match struct {
	ID          int64     `json:"id"`
	Hero        HeroRef   `json:"hero"`
	Outcome     Outcome   `json:"result"`
	KDA         KDA       `json:"kda"`
	Duration    Duration  `json:"duration"`
	Type        MatchType `json:"type"`
	Timestamp   int64     `json:"timestamp"`
	Lane        Lane      `json:"lane,omitempty"`
	IsRadiant   bool      `json:"is_radiant"`
	PlayerSlot  int       `json:"player_slot"`
	GameMode    string    `json:"game_mode"`
	LobbyType   string    `json:"lobby_type"`
	LaneRole    int       `json:"lane_role,omitempty"`
	PartySize   int       `json:"party_size,omitempty"`
	AverageRank int       `json:"average_rank,omitempty"`
}

// Time returns the match start as a time.Time in the local zone.
func (m Match) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// ─── Match Detail ─────────────────────────────────────────────────────────────

// DetailPlayer is one participant of a MatchDetail.
type DetailPlayer struct {
	AccountID   int64   `json:"account_id,omitempty"`
	Name        string  `json:"name"`
	Hero        HeroRef `json:"hero"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Assists     int     `json:"assists"`
	NetWorth    int     `json:"net_worth"`
	LastHits    int     `json:"last_hits"`
	Denies      int     `json:"denies"`
	GPM         int     `json:"gpm"`
	XPM         int     `json:"xpm"`
	HeroDamage  int     `json:"hero_damage"`
	TowerDamage int     `json:"tower_damage"`
	HeroHealing int     `json:"hero_healing"`
	IsRadiant   bool    `json:"is_radiant"`
}

// CurrentPlayer is the tracked account's slice of a MatchDetail.
type CurrentPlayer struct {
	Hero      HeroRef `json:"hero"`
	KDA       KDA     `json:"kda"`
	Outcome   Outcome `json:"result"`
	IsRadiant bool    `json:"is_radiant"`
}

// MatchDetail is the normalized form of /matches/{id}.
type MatchDetail struct {
	ID            int64          `json:"id"`
	RadiantScore  int            `json:"radiant_score"`
	DireScore     int            `json:"dire_score"`
	RadiantWin    *bool          `json:"radiant_win,omitempty"`
	Duration      Duration       `json:"duration"`
	Timestamp     int64          `json:"timestamp"`
	GameMode      string         `json:"game_mode"`
	LobbyType     string         `json:"lobby_type"`
	GoldAdvantage []int          `json:"gold_advantage"`
	XPAdvantage   []int          `json:"xp_advantage"`
	Players       []DetailPlayer `json:"players"`
	CurrentPlayer *CurrentPlayer `json:"current_player,omitempty"`
}

// ─── Player ───────────────────────────────────────────────────────────────────

// Player is the tracked account's profile merged with its lifetime record.
type Player struct {
	AccountID  int64  `json:"account_id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	Country    string `json:"country,omitempty"`
	RankTier   int    `json:"rank_tier,omitempty"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries performance and cache metadata for a command result.
type ResultStats struct {
	CacheHit   bool  `json:"cache_hit"`
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindMatches       = "matches"
	KindRawMatches    = "raw_matches"
	KindMatchDetail   = "match_detail"
	KindDashboard     = "dashboard"
	KindHeroes        = "heroes"
	KindInsights      = "insights"
	KindTrend         = "trend"
	KindPlayStyle     = "play_style"
	KindWorkdayReport = "workday_report"
	KindPlayer        = "player"
	KindTable         = "table"
)

// KV is a generic two-column row used by KindTable results.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
