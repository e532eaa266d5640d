package pairing

import (
	"context"
	"errors"
	"sort"
)

var ErrInvalidRound = errors.New("round number must be at least 1")

// SwissGenerator pairs players by current score, avoiding rematches and
// second byes where the pool allows it.
type SwissGenerator struct{}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GeneratePairings produces the pairings for one round.
//
// Players are seeded by score descending (shuffled first when Randomize is
// set, with ties keeping their post-shuffle order). With an odd pool the bye
// recipient is picked before pairing: preferably someone without a prior
// bye, fewest games first, lowest score as tie-break; if everyone already
// sat out once, the lowest seed takes a second bye. Pairing is then greedy
// from the top: each leader meets the best remaining opponent outside their
// avoid set, falling back to a rematch when no fresh opponent is left.
//
// A pool of zero or one player yields an empty result rather than an error;
// the caller reads that as "no further pairing possible".
func (g *SwissGenerator) GeneratePairings(ctx context.Context, params GenerateParams) (*Result, error) {
	if params.Round < 1 {
		return nil, ErrInvalidRound
	}

	pool := make([]*PlayerState, len(params.States))
	copy(pool, params.States)

	if len(pool) < 2 {
		return &Result{Pairings: []Pairing{}}, nil
	}

	if params.Randomize && params.Rand != nil {
		params.Rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	result := &Result{Pairings: make([]Pairing, 0, len(pool)/2+1)}

	var bye *PlayerState
	if len(pool)%2 == 1 {
		idx := byeCandidate(pool)
		bye = pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	for len(pool) >= 2 {
		top := pool[0]
		oppIdx := -1
		for i := 1; i < len(pool); i++ {
			if !top.HasPlayed(pool[i].ParticipantID) {
				oppIdx = i
				break
			}
		}
		if oppIdx == -1 {
			// Every remaining player is a rematch. Take the best
			// available opponent anyway rather than leaving both
			// unpaired.
			oppIdx = 1
			result.HadForcedRepeat = true
		}
		opp := pool[oppIdx]

		blackID := opp.ParticipantID
		result.Pairings = append(result.Pairings, Pairing{
			Round:   params.Round,
			WhiteID: top.ParticipantID,
			BlackID: &blackID,
		})

		pool = append(pool[:oppIdx], pool[oppIdx+1:]...)
		pool = pool[1:]
	}

	if bye != nil {
		result.Pairings = append(result.Pairings, Pairing{
			Round:   params.Round,
			WhiteID: bye.ParticipantID,
			IsBye:   true,
		})
	}

	return result, nil
}

// byeCandidate returns the index of the player who should sit out, given a
// pool sorted by score descending. Players without a prior bye are
// preferred, fewest games first, then lowest score, then lowest seed. When
// no one is left without a bye, the bottom seed takes it again.
func byeCandidate(pool []*PlayerState) int {
	best := -1
	for i := len(pool) - 1; i >= 0; i-- {
		p := pool[i]
		if p.ReceivedBye {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		b := pool[best]
		if p.Games < b.Games || (p.Games == b.Games && p.Score < b.Score) {
			best = i
		}
	}
	if best == -1 {
		return len(pool) - 1
	}
	return best
}
