package models

import "time"

type MatchResult string

const (
	ResultWhiteWin MatchResult = "WHITE_WIN"
	ResultBlackWin MatchResult = "BLACK_WIN"
	ResultDraw     MatchResult = "DRAW"
)

func (r MatchResult) Valid() bool {
	switch r {
	case ResultWhiteWin, ResultBlackWin, ResultDraw:
		return true
	}
	return false
}

// Match is one pairing within a round. BlackParticipantID is nil for a bye;
// bye matches are stored with Result WHITE_WIN at creation time.
// Result nil means the game is still pending.
type Match struct {
	ID                 int          `json:"id" db:"id"`
	TournamentID       int          `json:"tournament_id" db:"tournament_id"`
	Round              int          `json:"round" db:"round"`
	WhiteParticipantID int          `json:"white_participant_id" db:"white_participant_id"`
	BlackParticipantID *int         `json:"black_participant_id,omitempty" db:"black_participant_id"`
	Result             *MatchResult `json:"result,omitempty" db:"result"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`

	White *Participant `json:"white,omitempty" db:"-"`
	Black *Participant `json:"black,omitempty" db:"-"`
}

func (m *Match) IsBye() bool {
	return m.BlackParticipantID == nil
}
