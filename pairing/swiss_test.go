package pairing

import (
	"context"
	"math/rand"
	"testing"
)

func statesOf(n int) []*PlayerState {
	states := make([]*PlayerState, 0, n)
	for i := 1; i <= n; i++ {
		states = append(states, &PlayerState{
			ParticipantID: i,
			Avoid:         make(map[int]struct{}),
		})
	}
	return states
}

func collectUsed(t *testing.T, pairings []Pairing) map[int]int {
	t.Helper()
	used := make(map[int]int)
	for _, p := range pairings {
		used[p.WhiteID]++
		if p.BlackID != nil {
			used[*p.BlackID]++
		}
	}
	return used
}

func TestGeneratePairingsPoolSizes(t *testing.T) {
	gen := NewSwissGenerator()

	for n := 2; n <= 9; n++ {
		res, err := gen.GeneratePairings(context.Background(), GenerateParams{
			States: statesOf(n),
			Round:  1,
		})
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}

		wantMatches := n / 2
		wantByes := n % 2
		matches, byes := 0, 0
		for _, p := range res.Pairings {
			if p.IsBye {
				byes++
			} else {
				matches++
			}
		}
		if matches != wantMatches || byes != wantByes {
			t.Errorf("n=%d: got %d matches %d byes, want %d and %d",
				n, matches, byes, wantMatches, wantByes)
		}

		used := collectUsed(t, res.Pairings)
		if len(used) != n {
			t.Errorf("n=%d: %d players used, want %d", n, len(used), n)
		}
		for id, count := range used {
			if count != 1 {
				t.Errorf("n=%d: player %d appears %d times", n, id, count)
			}
		}
	}
}

func TestGeneratePairingsTinyPools(t *testing.T) {
	gen := NewSwissGenerator()

	for n := 0; n <= 1; n++ {
		res, err := gen.GeneratePairings(context.Background(), GenerateParams{
			States: statesOf(n),
			Round:  3,
		})
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if len(res.Pairings) != 0 {
			t.Errorf("n=%d: got %d pairings, want 0", n, len(res.Pairings))
		}
	}
}

func TestGeneratePairingsInvalidRound(t *testing.T) {
	gen := NewSwissGenerator()

	for _, round := range []int{0, -1} {
		_, err := gen.GeneratePairings(context.Background(), GenerateParams{
			States: statesOf(4),
			Round:  round,
		})
		if err != ErrInvalidRound {
			t.Errorf("round=%d: got error %v, want ErrInvalidRound", round, err)
		}
	}
}

func TestGeneratePairingsScoreGrouping(t *testing.T) {
	// After round 1 leaders meet leaders: with scores 2,2,1,1 and no
	// history, the two players on 2 must be paired together.
	states := []*PlayerState{
		{ParticipantID: 1, Score: 1, Avoid: map[int]struct{}{}},
		{ParticipantID: 2, Score: 2, Avoid: map[int]struct{}{}},
		{ParticipantID: 3, Score: 1, Avoid: map[int]struct{}{}},
		{ParticipantID: 4, Score: 2, Avoid: map[int]struct{}{}},
	}

	gen := NewSwissGenerator()
	res, err := gen.GeneratePairings(context.Background(), GenerateParams{States: states, Round: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairings) != 2 {
		t.Fatalf("got %d pairings, want 2", len(res.Pairings))
	}

	first := res.Pairings[0]
	if first.WhiteID != 2 || first.BlackID == nil || *first.BlackID != 4 {
		t.Errorf("top board pairs %d vs %v, want 2 vs 4", first.WhiteID, first.BlackID)
	}
}

func TestGeneratePairingsAvoidSet(t *testing.T) {
	// 2 and 4 lead but already met, so each drops to the best fresh
	// opponent instead.
	states := []*PlayerState{
		{ParticipantID: 1, Score: 1, Avoid: map[int]struct{}{}},
		{ParticipantID: 2, Score: 2, Avoid: map[int]struct{}{4: {}}},
		{ParticipantID: 3, Score: 1, Avoid: map[int]struct{}{}},
		{ParticipantID: 4, Score: 2, Avoid: map[int]struct{}{2: {}}},
	}

	gen := NewSwissGenerator()
	res, err := gen.GeneratePairings(context.Background(), GenerateParams{States: states, Round: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.HadForcedRepeat {
		t.Error("forced repeat flagged although fresh opponents existed")
	}
	for _, p := range res.Pairings {
		if p.BlackID == nil {
			continue
		}
		if (p.WhiteID == 2 && *p.BlackID == 4) || (p.WhiteID == 4 && *p.BlackID == 2) {
			t.Errorf("rematch 2 vs 4 generated despite alternatives")
		}
	}
}

func TestGeneratePairingsForcedRepeat(t *testing.T) {
	// Two players who already met: the rematch is accepted and flagged,
	// never an error.
	states := []*PlayerState{
		{ParticipantID: 1, Score: 1, Avoid: map[int]struct{}{2: {}}},
		{ParticipantID: 2, Score: 0, Avoid: map[int]struct{}{1: {}}},
	}

	gen := NewSwissGenerator()
	res, err := gen.GeneratePairings(context.Background(), GenerateParams{States: states, Round: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairings) != 1 {
		t.Fatalf("got %d pairings, want 1", len(res.Pairings))
	}
	if !res.HadForcedRepeat {
		t.Error("forced repeat not flagged")
	}
}

func TestGeneratePairingsByeFairness(t *testing.T) {
	// Player 3 already had its bye; with three players someone must sit
	// out, and it cannot be 3 while 1 and 2 have none.
	states := []*PlayerState{
		{ParticipantID: 1, Score: 1, Games: 1, Avoid: map[int]struct{}{}},
		{ParticipantID: 2, Score: 0, Games: 1, Avoid: map[int]struct{}{}},
		{ParticipantID: 3, Score: 1, Games: 1, Avoid: map[int]struct{}{}, ReceivedBye: true},
	}

	gen := NewSwissGenerator()
	res, err := gen.GeneratePairings(context.Background(), GenerateParams{States: states, Round: 2})
	if err != nil {
		t.Fatal(err)
	}

	var byeID int
	for _, p := range res.Pairings {
		if p.IsBye {
			byeID = p.WhiteID
		}
	}
	if byeID == 0 {
		t.Fatal("no bye generated for odd pool")
	}
	if byeID == 3 {
		t.Error("player 3 received a second bye while others had none")
	}
}

func TestGeneratePairingsSecondByeWhenUnavoidable(t *testing.T) {
	states := []*PlayerState{
		{ParticipantID: 1, Score: 2, Avoid: map[int]struct{}{}, ReceivedBye: true},
		{ParticipantID: 2, Score: 1, Avoid: map[int]struct{}{}, ReceivedBye: true},
		{ParticipantID: 3, Score: 0, Avoid: map[int]struct{}{}, ReceivedBye: true},
	}

	gen := NewSwissGenerator()
	res, err := gen.GeneratePairings(context.Background(), GenerateParams{States: states, Round: 4})
	if err != nil {
		t.Fatal(err)
	}

	var byeID int
	for _, p := range res.Pairings {
		if p.IsBye {
			byeID = p.WhiteID
		}
	}
	if byeID != 3 {
		t.Errorf("second bye went to %d, want lowest ranked player 3", byeID)
	}
}

func TestGeneratePairingsRandomizedRoundOne(t *testing.T) {
	gen := NewSwissGenerator()
	rng := rand.New(rand.NewSource(42))

	res, err := gen.GeneratePairings(context.Background(), GenerateParams{
		States:    statesOf(4),
		Round:     1,
		Randomize: true,
		Rand:      rng,
	})
	if err != nil {
		t.Fatal(err)
	}

	matches, byes := 0, 0
	for _, p := range res.Pairings {
		if p.IsBye {
			byes++
		} else {
			matches++
		}
	}
	if matches != 2 || byes != 0 {
		t.Fatalf("got %d matches %d byes, want 2 and 0", matches, byes)
	}

	used := collectUsed(t, res.Pairings)
	for i := 1; i <= 4; i++ {
		if used[i] != 1 {
			t.Errorf("player %d used %d times after shuffle", i, used[i])
		}
	}
}
