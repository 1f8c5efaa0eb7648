package match

import (
	"context"
	"log/slog"
	"sync"
)

// Operation names, used for logging and metrics labels.
const (
	OpUpdateScore = "update-score"
	OpUpdateRound = "update-round"
	OpUpdateTeams = "update-teams"
	OpUpdateEvent = "update-event"
	OpUpdateSides = "update-sides"
)

// Publisher fans a snapshot out to every connected viewer. Implementations
// must not block on network I/O.
type Publisher interface {
	PushToAll(snapshot Snapshot)
}

// Service applies mutations to a Store and publishes every result.
type Service struct {
	mu        sync.Mutex
	store     *Store
	publisher Publisher
}

// NewService creates a mutation service over store that announces changes
// through publisher.
func NewService(store *Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
	}
}

// Current returns a snapshot of the match state without mutating it.
func (s *Service) Current() State {
	return s.store.Current()
}

// UpdateScore adds the delta to the named team's score. Unknown teams are
// accepted and leave the score untouched.
func (s *Service) UpdateScore(ctx context.Context, u ScoreUpdate) (State, error) {
	if err := u.Validate(); err != nil {
		return State{}, err
	}
	if !IsKnownTeam(*u.Team) {
		slog.DebugContext(ctx, "Ignoring score update for unknown team", "team", *u.Team)
	}
	return s.apply(ctx, OpUpdateScore, func() Snapshot {
		return s.store.ApplyDelta(*u.Team, *u.Delta)
	}), nil
}

// UpdateRound sets the round number.
func (s *Service) UpdateRound(ctx context.Context, u RoundUpdate) (State, error) {
	if err := u.Validate(); err != nil {
		return State{}, err
	}
	return s.apply(ctx, OpUpdateRound, func() Snapshot {
		return s.store.SetRound(*u.RoundNumber)
	}), nil
}

// UpdateTeams sets both team names.
func (s *Service) UpdateTeams(ctx context.Context, u TeamsUpdate) (State, error) {
	if err := u.Validate(); err != nil {
		return State{}, err
	}
	return s.apply(ctx, OpUpdateTeams, func() Snapshot {
		return s.store.SetTeams(*u.Team1Name, *u.Team2Name)
	}), nil
}

// UpdateEvent sets the event name and attribution flag.
func (s *Service) UpdateEvent(ctx context.Context, u EventUpdate) (State, error) {
	if err := u.Validate(); err != nil {
		return State{}, err
	}
	return s.apply(ctx, OpUpdateEvent, func() Snapshot {
		return s.store.SetEvent(*u.EventName, *u.ShowSpectraAttribution)
	}), nil
}

// UpdateSides sets which side team 1 is playing.
func (s *Service) UpdateSides(ctx context.Context, u SidesUpdate) (State, error) {
	if err := u.Validate(); err != nil {
		return State{}, err
	}
	return s.apply(ctx, OpUpdateSides, func() Snapshot {
		return s.store.SetSides(*u.Team1IsAttacking)
	}), nil
}

// apply runs one mutation and its broadcast as a single step, so the order
// viewers see matches the order mutations were applied.
func (s *Service) apply(ctx context.Context, op string, mutate func() Snapshot) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := mutate()
	s.publisher.PushToAll(snapshot)

	slog.InfoContext(ctx, "Match state updated",
		"operation", op,
		"revision", snapshot.Revision,
		"team1_score", snapshot.State.Team1Score,
		"team2_score", snapshot.State.Team2Score,
		"round", snapshot.State.RoundNumber,
	)
	return snapshot.State
}
