package models

import "time"

// Tournament is a Swiss tournament owned by its creator. Only the creator
// may generate rounds, record results or finalize.
type Tournament struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatorID   int       `json:"creator_id" db:"creator_id"`
	Date        time.Time `json:"date" db:"date"`
	Mode        string    `json:"mode" db:"mode"`
	InviteCode  string    `json:"invite_code" db:"invite_code"`
	Finalized   bool      `json:"finalized" db:"finalized"`
	LogoKey     *string   `json:"-" db:"logo_key"`
	LogoURL     *string   `json:"logo_url,omitempty" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
	Rounds       []Round       `json:"rounds,omitempty" db:"-"`
	Ranking      []Standing    `json:"ranking,omitempty" db:"-"`
}

// Round groups the matches sharing one round number, for API responses.
type Round struct {
	Number  int      `json:"round"`
	Matches []*Match `json:"matches"`
}
