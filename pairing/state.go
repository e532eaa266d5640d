package pairing

import (
	"chess-club-server/models"
)

// PlayerState is the per-participant snapshot the generator pairs from.
// It is rebuilt from the persisted match log on every generation request
// and never stored.
type PlayerState struct {
	ParticipantID int
	Score         float64
	Games         int
	Avoid         map[int]struct{}
	ReceivedBye   bool
}

func (s *PlayerState) HasPlayed(opponentID int) bool {
	_, ok := s.Avoid[opponentID]
	return ok
}

// BuildPlayerStates derives the current player states from the participant
// list and the full match history of a tournament. Scores come from the
// persisted cumulative fields rather than being recomputed from matches, so
// pending results and bye awards are never double counted. The avoid set
// only considers matches with both sides present; a match without a black
// side marks the white side as having received its bye.
func BuildPlayerStates(participants []*models.Participant, matches []*models.Match) map[int]*PlayerState {
	states := make(map[int]*PlayerState, len(participants))
	for _, p := range participants {
		states[p.ID] = &PlayerState{
			ParticipantID: p.ID,
			Score:         p.Points,
			Games:         p.GamesPlayed,
			Avoid:         make(map[int]struct{}),
		}
	}

	for _, m := range matches {
		white, ok := states[m.WhiteParticipantID]
		if !ok {
			continue
		}
		if m.BlackParticipantID == nil {
			white.ReceivedBye = true
			continue
		}
		black, ok := states[*m.BlackParticipantID]
		if !ok {
			continue
		}
		white.Avoid[black.ParticipantID] = struct{}{}
		black.Avoid[white.ParticipantID] = struct{}{}
	}

	return states
}

// MarkPaired records a finished pairing decision back into the states so
// that the next round within the same generation call avoids it.
func MarkPaired(states map[int]*PlayerState, whiteID, blackID int) {
	if white, ok := states[whiteID]; ok {
		white.Avoid[blackID] = struct{}{}
	}
	if black, ok := states[blackID]; ok {
		black.Avoid[whiteID] = struct{}{}
	}
}

// MarkBye records a bye and its fixed award (one point, one win, one game)
// against the in-memory state.
func MarkBye(states map[int]*PlayerState, participantID int) {
	if s, ok := states[participantID]; ok {
		s.ReceivedBye = true
		s.Score++
		s.Games++
	}
}
