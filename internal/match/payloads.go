package match

import (
	apperrors "github.com/Tyrowin/scoreline/internal/errors"
)

// Payloads use pointer fields so a missing field can be told apart from a
// zero value.

// ScoreUpdate is the body of update-score.
type ScoreUpdate struct {
	Team  *string `json:"team"`
	Delta *int    `json:"delta"`
}

// Validate checks that both fields are present. An unrecognized team is
// not an error: it is applied as a no-op.
func (u ScoreUpdate) Validate() error {
	if u.Team == nil {
		return missingField("team")
	}
	if u.Delta == nil {
		return missingField("delta")
	}
	return nil
}

// RoundUpdate is the body of update-round.
type RoundUpdate struct {
	RoundNumber *int `json:"roundNumber"`
}

// Validate checks that roundNumber is present.
func (u RoundUpdate) Validate() error {
	if u.RoundNumber == nil {
		return missingField("roundNumber")
	}
	return nil
}

// TeamsUpdate is the body of update-teams.
type TeamsUpdate struct {
	Team1Name *string `json:"team1Name"`
	Team2Name *string `json:"team2Name"`
}

// Validate checks that both names are present.
func (u TeamsUpdate) Validate() error {
	if u.Team1Name == nil {
		return missingField("team1Name")
	}
	if u.Team2Name == nil {
		return missingField("team2Name")
	}
	return nil
}

// EventUpdate is the body of update-event.
type EventUpdate struct {
	EventName              *string `json:"eventName"`
	ShowSpectraAttribution *bool   `json:"showSpectraAttribution"`
}

// Validate checks that both fields are present.
func (u EventUpdate) Validate() error {
	if u.EventName == nil {
		return missingField("eventName")
	}
	if u.ShowSpectraAttribution == nil {
		return missingField("showSpectraAttribution")
	}
	return nil
}

// SidesUpdate is the body of update-sides.
type SidesUpdate struct {
	Team1IsAttacking *bool `json:"team1IsAttacking"`
}

// Validate checks that team1IsAttacking is present.
func (u SidesUpdate) Validate() error {
	if u.Team1IsAttacking == nil {
		return missingField("team1IsAttacking")
	}
	return nil
}

func missingField(name string) error {
	return apperrors.ValidationError("missing required field").WithContext("field", name)
}
