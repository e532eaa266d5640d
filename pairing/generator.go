package pairing

import (
	"context"
	"math/rand"
)

// Pairing is one generated board for a round. BlackID is nil and IsBye is
// true when WhiteID sits out and is credited a win by default.
type Pairing struct {
	Round   int
	WhiteID int
	BlackID *int
	IsBye   bool
}

// Result is the outcome of generating a single round. HadForcedRepeat is set
// when the pool was so small that a rematch could not be avoided.
type Result struct {
	Pairings        []Pairing
	HadForcedRepeat bool
}

type GenerateParams struct {
	States []*PlayerState
	Round  int

	// Randomize shuffles the players before seeding. It is only meant for
	// round 1, where everyone is tied at zero and list order would
	// otherwise decide the pairings.
	Randomize bool
	Rand      *rand.Rand
}

type Generator interface {
	GeneratePairings(ctx context.Context, params GenerateParams) (*Result, error)

	GetName() string
}
