package match

// Team identifiers accepted by score updates.
const (
	Team1 = "team1"
	Team2 = "team2"
)

// Placeholder names used when a team has no name.
const (
	DefaultTeam1Name = "TEAM 1"
	DefaultTeam2Name = "TEAM 2"
	DefaultEventName = "Scrimish Match"
)

// State is a snapshot of the match. It only holds scalar fields, so every
// copy is independent of the store it came from.
type State struct {
	Team1Name              string `json:"team1Name"`
	Team2Name              string `json:"team2Name"`
	Team1Score             int    `json:"team1Score"`
	Team2Score             int    `json:"team2Score"`
	RoundNumber            int    `json:"roundNumber"`
	Team1IsAttacking       bool   `json:"team1IsAttacking"`
	EventName              string `json:"eventName"`
	ShowSpectraAttribution bool   `json:"showSpectraAttribution"`
}

// DefaultState returns the state a fresh process starts with.
func DefaultState() State {
	return State{
		Team1Name: DefaultTeam1Name,
		Team2Name: DefaultTeam2Name,
		EventName: DefaultEventName,
	}
}

// IsKnownTeam reports whether team names one of the two sides.
func IsKnownTeam(team string) bool {
	return team == Team1 || team == Team2
}
