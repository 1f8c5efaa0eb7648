package match

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Tyrowin/scoreline/internal/errors"
)

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func (p *recordingPublisher) PushToAll(snapshot Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
}

func (p *recordingPublisher) published() []Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Snapshot(nil), p.snapshots...)
}

func newTestService() (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewService(NewStore(), pub), pub
}

func ptr[T any](v T) *T {
	return &v
}

func TestServiceUpdateScorePublishesResult(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	_, err := svc.UpdateScore(ctx, ScoreUpdate{Team: ptr(Team1), Delta: ptr(3)})
	require.NoError(t, err)
	state, err := svc.UpdateScore(ctx, ScoreUpdate{Team: ptr(Team1), Delta: ptr(-5)})
	require.NoError(t, err)

	assert.Equal(t, 0, state.Team1Score)
	published := pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, 3, published[0].State.Team1Score)
	assert.Equal(t, state, published[1].State)
	assert.Equal(t, uint64(2), published[1].Revision)
}

func TestServiceUnknownTeamStillPublishes(t *testing.T) {
	svc, pub := newTestService()

	state, err := svc.UpdateScore(context.Background(), ScoreUpdate{Team: ptr("spectators"), Delta: ptr(4)})

	require.NoError(t, err)
	assert.Equal(t, DefaultState(), state)
	require.Len(t, pub.published(), 1)
	assert.Equal(t, DefaultState(), pub.published()[0].State)
}

func TestServiceRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		call  func(*Service) error
		field string
	}{
		{
			name: "score without team",
			call: func(s *Service) error {
				_, err := s.UpdateScore(context.Background(), ScoreUpdate{Delta: ptr(1)})
				return err
			},
			field: "team",
		},
		{
			name: "score without delta",
			call: func(s *Service) error {
				_, err := s.UpdateScore(context.Background(), ScoreUpdate{Team: ptr(Team1)})
				return err
			},
			field: "delta",
		},
		{
			name: "round",
			call: func(s *Service) error {
				_, err := s.UpdateRound(context.Background(), RoundUpdate{})
				return err
			},
			field: "roundNumber",
		},
		{
			name: "teams",
			call: func(s *Service) error {
				_, err := s.UpdateTeams(context.Background(), TeamsUpdate{Team1Name: ptr("A")})
				return err
			},
			field: "team2Name",
		},
		{
			name: "event",
			call: func(s *Service) error {
				_, err := s.UpdateEvent(context.Background(), EventUpdate{EventName: ptr("E")})
				return err
			},
			field: "showSpectraAttribution",
		},
		{
			name: "sides",
			call: func(s *Service) error {
				_, err := s.UpdateSides(context.Background(), SidesUpdate{})
				return err
			},
			field: "team1IsAttacking",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, pub := newTestService()

			err := tt.call(svc)

			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.TypeValidation))
			assert.Equal(t, tt.field, apperrors.AsStructuredError(err).Context["field"])
			assert.Empty(t, pub.published())
			assert.Equal(t, DefaultState(), svc.Current())
		})
	}
}

func TestServiceSetters(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()

	_, err := svc.UpdateRound(ctx, RoundUpdate{RoundNumber: ptr(4)})
	require.NoError(t, err)
	_, err = svc.UpdateTeams(ctx, TeamsUpdate{Team1Name: ptr("Alpha"), Team2Name: ptr("Bravo")})
	require.NoError(t, err)
	_, err = svc.UpdateEvent(ctx, EventUpdate{EventName: ptr("Finals"), ShowSpectraAttribution: ptr(true)})
	require.NoError(t, err)
	state, err := svc.UpdateSides(ctx, SidesUpdate{Team1IsAttacking: ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, State{
		Team1Name:              "Alpha",
		Team2Name:              "Bravo",
		RoundNumber:            4,
		Team1IsAttacking:       true,
		EventName:              "Finals",
		ShowSpectraAttribution: true,
	}, state)
	assert.Len(t, pub.published(), 4)
	assert.Equal(t, state, svc.Current())
}

func TestServicePublishOrderMatchesApplyOrder(t *testing.T) {
	svc, pub := newTestService()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(round int) {
			defer wg.Done()
			_, _ = svc.UpdateRound(context.Background(), RoundUpdate{RoundNumber: ptr(round)})
		}(i)
	}
	wg.Wait()

	published := pub.published()
	require.Len(t, published, 50)
	for i, snap := range published {
		assert.Equal(t, uint64(i+1), snap.Revision)
	}
	assert.Equal(t, published[len(published)-1].State, svc.Current())
}
