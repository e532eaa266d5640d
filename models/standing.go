package models

// Standing is one row of the computed ranking. Position starts at 1.
type Standing struct {
	Position      int     `json:"position"`
	ParticipantID int     `json:"participant_id"`
	UserID        int     `json:"user_id"`
	Name          string  `json:"name"`
	Points        float64 `json:"points"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	GamesPlayed   int     `json:"games_played"`
}
