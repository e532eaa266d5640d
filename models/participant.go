package models

import "time"

// Participant carries the cumulative tournament stats. Points use chess
// scoring: win = 1, draw = 0.5, loss = 0. All stat mutations go through
// delta updates so that re-editing a result never double counts.
type Participant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Points       float64   `json:"points" db:"points"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	Wins         int       `json:"wins" db:"wins"`
	Losses       int       `json:"losses" db:"losses"`
	Draws        int       `json:"draws" db:"draws"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}

// StatsDelta is a signed change applied to a participant's cumulative stats.
type StatsDelta struct {
	Points float64
	Games  int
	Wins   int
	Losses int
	Draws  int
}

func (d StatsDelta) Sub(prev StatsDelta) StatsDelta {
	return StatsDelta{
		Points: d.Points - prev.Points,
		Games:  d.Games - prev.Games,
		Wins:   d.Wins - prev.Wins,
		Losses: d.Losses - prev.Losses,
		Draws:  d.Draws - prev.Draws,
	}
}

func (d StatsDelta) IsZero() bool {
	return d == StatsDelta{}
}
