package match

import (
	"math"
	"strings"
	"sync"
)

// Snapshot is a State together with the revision that produced it. The
// revision grows by one with every mutation, so two snapshots can be
// ordered without comparing their fields.
type Snapshot struct {
	Revision uint64
	State    State
}

// Store holds the authoritative match state. It is safe for concurrent use
// and knows nothing about how changes reach viewers.
type Store struct {
	mu       sync.RWMutex
	state    State
	revision uint64
}

// NewStore creates a store holding DefaultState.
func NewStore() *Store {
	return NewStoreWithState(DefaultState())
}

// NewStoreWithState creates a store seeded with the given state.
func NewStoreWithState(initial State) *Store {
	return &Store{state: initial}
}

// Current returns a copy of the state.
func (s *Store) Current() State {
	return s.Snapshot().State
}

// Snapshot returns a copy of the state and its revision.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Revision: s.revision, State: s.state}
}

// ApplyDelta adds delta to the named team's score, never going below zero.
// Unknown teams leave the fields unchanged but still count as a revision.
func (s *Store) ApplyDelta(team string, delta int) Snapshot {
	return s.update(func(state *State) {
		switch team {
		case Team1:
			state.Team1Score = clampScore(state.Team1Score, delta)
		case Team2:
			state.Team2Score = clampScore(state.Team2Score, delta)
		}
	})
}

// SetRound overwrites the round number.
func (s *Store) SetRound(roundNumber int) Snapshot {
	return s.update(func(state *State) {
		state.RoundNumber = roundNumber
	})
}

// SetTeams overwrites both team names. Blank names fall back to the
// placeholders.
func (s *Store) SetTeams(team1Name, team2Name string) Snapshot {
	return s.update(func(state *State) {
		state.Team1Name = nameOrDefault(team1Name, DefaultTeam1Name)
		state.Team2Name = nameOrDefault(team2Name, DefaultTeam2Name)
	})
}

// SetEvent overwrites the event name and the attribution flag.
func (s *Store) SetEvent(eventName string, showAttribution bool) Snapshot {
	return s.update(func(state *State) {
		state.EventName = eventName
		state.ShowSpectraAttribution = showAttribution
	})
}

// SetSides records whether team 1 is attacking.
func (s *Store) SetSides(team1IsAttacking bool) Snapshot {
	return s.update(func(state *State) {
		state.Team1IsAttacking = team1IsAttacking
	})
}

func (s *Store) update(mutate func(*State)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.state)
	s.revision++
	return Snapshot{Revision: s.revision, State: s.state}
}

func clampScore(score, delta int) int {
	if delta > 0 && score > math.MaxInt-delta {
		return math.MaxInt
	}
	return max(0, score+delta)
}

func nameOrDefault(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
