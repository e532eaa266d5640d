package models

import "time"

type PointsReason string

const (
	ReasonTournamentFirst  PointsReason = "tournament_1st"
	ReasonTournamentSecond PointsReason = "tournament_2nd"
	ReasonTournamentThird  PointsReason = "tournament_3rd"
	ReasonTournamentOther  PointsReason = "tournament_other"
)

// PointsEntry records one club-point award in the user's history.
type PointsEntry struct {
	ID          int          `json:"id" db:"id"`
	UserID      int          `json:"user_id" db:"user_id"`
	Points      int          `json:"points" db:"points"`
	Reason      PointsReason `json:"reason" db:"reason"`
	ReferenceID *int         `json:"reference_id,omitempty" db:"reference_id"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
