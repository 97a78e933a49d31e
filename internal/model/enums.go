package model

// ─── Outcome ──────────────────────────────────────────────────────────────────

// Outcome is the tracked player's result in a match.
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomeUnknown Outcome = "unknown"
)

// ─── Match Type ───────────────────────────────────────────────────────────────

// MatchType is the coarse classification derived from lobby type and game mode.
type MatchType string

const (
	TypeRanked MatchType = "ranked"
	TypeNormal MatchType = "normal"
	TypeTurbo  MatchType = "turbo"
)

// MatchTypes lists every MatchType in display order.
var MatchTypes = []MatchType{TypeRanked, TypeNormal, TypeTurbo}

// ─── Lane ─────────────────────────────────────────────────────────────────────

// Lane is the OpenDota lane code. LaneUnknown means the API did not report one.
type Lane int

const (
	LaneUnknown Lane = iota
	LaneSafe
	LaneMid
	LaneOff
	LaneJungle
)

// Lanes lists the four known lanes in code order.
var Lanes = []Lane{LaneSafe, LaneMid, LaneOff, LaneJungle}

var laneNames = map[Lane]string{
	LaneSafe:   "Safe Lane",
	LaneMid:    "Mid Lane",
	LaneOff:    "Off Lane",
	LaneJungle: "Jungle",
}

// Valid reports whether l is one of the four known lanes.
func (l Lane) Valid() bool {
	_, ok := laneNames[l]
	return ok
}

func (l Lane) String() string {
	if name, ok := laneNames[l]; ok {
		return name
	}
	return "Unknown"
}

// ─── Game Mode ────────────────────────────────────────────────────────────────

// GameMode is the OpenDota game_mode code.
type GameMode int

// GameModeTurbo is the only mode that changes match classification.
const GameModeTurbo GameMode = 23

var gameModeLabels = [...]string{
	"Unknown",
	"All Pick",
	"Captains Mode",
	"Random Draft",
	"Single Draft",
	"All Random",
	"Intro",
	"Diretide",
	"Reverse Captains Mode",
	"Greeviling",
	"Tutorial",
	"Mid Only",
	"Least Played",
	"Limited Heroes",
	"Compendium",
	"Custom",
	"Captains Draft",
	"Balanced Draft",
	"Ability Draft",
	"Event",
	"All Random Deathmatch",
	"1v1 Mid",
	"All Draft",
	"Turbo",
	"Mutation",
}

func (g GameMode) String() string {
	if g < 0 || int(g) >= len(gameModeLabels) {
		return "Unknown"
	}
	return gameModeLabels[g]
}

// ─── Lobby Type ───────────────────────────────────────────────────────────────

// LobbyType is the OpenDota lobby_type code.
type LobbyType int

const (
	LobbyNormal        LobbyType = 0
	LobbyPractice      LobbyType = 1
	LobbyTournament    LobbyType = 2
	LobbyCoopBot       LobbyType = 4
	LobbyRankedSoloDuo LobbyType = 5
	LobbyRankedTeam    LobbyType = 6
	LobbyRanked        LobbyType = 7
	LobbySoloMid       LobbyType = 8
	LobbyBattleCup     LobbyType = 9
)

var lobbyTypeLabels = map[LobbyType]string{
	LobbyNormal:        "Normal",
	LobbyPractice:      "Practice",
	LobbyTournament:    "Tournament",
	LobbyCoopBot:       "Co-op Bot",
	LobbyRankedSoloDuo: "Ranked Solo/Duo",
	LobbyRankedTeam:    "Ranked Team",
	LobbyRanked:        "Ranked",
	LobbySoloMid:       "Solo Mid 1v1",
	LobbyBattleCup:     "Battle Cup",
}

func (l LobbyType) String() string {
	if label, ok := lobbyTypeLabels[l]; ok {
		return label
	}
	return "Unknown"
}

// IsRanked reports whether the lobby counts toward matchmaking rating.
func (l LobbyType) IsRanked() bool {
	switch l {
	case LobbyRankedSoloDuo, LobbyRankedTeam, LobbyRanked:
		return true
	}
	return false
}
