package pairing

import (
	"testing"

	"chess-club-server/models"
)

func intPtr(v int) *int { return &v }

func TestBuildPlayerStates(t *testing.T) {
	participants := []*models.Participant{
		{ID: 1, Points: 2, GamesPlayed: 2},
		{ID: 2, Points: 0.5, GamesPlayed: 2},
		{ID: 3, Points: 1.5, GamesPlayed: 2},
		{ID: 4, Points: 1, GamesPlayed: 1},
	}
	matches := []*models.Match{
		{Round: 1, WhiteParticipantID: 1, BlackParticipantID: intPtr(2)},
		{Round: 1, WhiteParticipantID: 3, BlackParticipantID: nil},
		{Round: 2, WhiteParticipantID: 1, BlackParticipantID: intPtr(3)},
		{Round: 2, WhiteParticipantID: 2, BlackParticipantID: intPtr(4)},
	}

	states := BuildPlayerStates(participants, matches)
	if len(states) != 4 {
		t.Fatalf("got %d states, want 4", len(states))
	}

	if got := states[1].Score; got != 2 {
		t.Errorf("player 1 score = %v, want 2 (taken from persisted points)", got)
	}
	if !states[1].HasPlayed(2) || !states[1].HasPlayed(3) {
		t.Errorf("player 1 avoid set = %v, want {2,3}", states[1].Avoid)
	}
	if states[1].ReceivedBye {
		t.Error("player 1 flagged with a bye it never had")
	}
	if !states[3].ReceivedBye {
		t.Error("player 3 bye not detected from single-sided match")
	}
	if states[3].HasPlayed(4) {
		t.Error("player 3 avoid set polluted by its bye")
	}
	if !states[4].HasPlayed(2) {
		t.Error("player 4 missing opponent 2")
	}
}

func TestBuildPlayerStatesIgnoresUnknownParticipants(t *testing.T) {
	participants := []*models.Participant{{ID: 1}, {ID: 2}}
	matches := []*models.Match{
		{Round: 1, WhiteParticipantID: 99, BlackParticipantID: intPtr(1)},
		{Round: 1, WhiteParticipantID: 1, BlackParticipantID: intPtr(2)},
	}

	states := BuildPlayerStates(participants, matches)
	if states[1].HasPlayed(99) {
		t.Error("avoid set references a participant no longer in the tournament")
	}
	if !states[1].HasPlayed(2) {
		t.Error("player 1 missing opponent 2")
	}
}

func TestMarkHelpers(t *testing.T) {
	states := BuildPlayerStates([]*models.Participant{{ID: 1}, {ID: 2}, {ID: 3, Points: 1, GamesPlayed: 1}}, nil)

	MarkPaired(states, 1, 2)
	if !states[1].HasPlayed(2) || !states[2].HasPlayed(1) {
		t.Error("MarkPaired did not record both directions")
	}

	MarkBye(states, 3)
	s := states[3]
	if !s.ReceivedBye || s.Score != 2 || s.Games != 2 {
		t.Errorf("MarkBye state = %+v, want bye with score 2 and games 2", s)
	}
}
