package services

import (
	"context"
	"sort"

	"chess-club-server/models"
	"chess-club-server/pairing"
	"chess-club-server/repositories"
)

// In-memory doubles for the repository layer. The fake transactor simply
// runs the callback; atomicity is the real store's concern, the tests here
// only assert orchestration order and the values written.

type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	copied := *t
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) GetByInviteCode(ctx context.Context, code string) (*models.Tournament, error) {
	for _, t := range r.tournaments {
		if t.InviteCode == code {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	return nil, nil
}

func (r *fakeTournamentRepo) ListByUser(ctx context.Context, userID int) ([]*models.Tournament, error) {
	return nil, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *t
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) SetFinalized(ctx context.Context, exec repositories.SQLExecutor, id int, finalized bool) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Finalized = finalized
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeParticipantRepo struct {
	participants map[int]*models.Participant
	users        map[int]*models.User
	nextID       int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		participants: make(map[int]*models.Participant),
		users:        make(map[int]*models.User),
		nextID:       1,
	}
}

func (r *fakeParticipantRepo) add(tournamentID, userID int, name string) *models.Participant {
	p := &models.Participant{TournamentID: tournamentID, UserID: userID}
	_ = r.Create(context.Background(), nil, p)
	r.users[userID] = &models.User{ID: userID, Name: name}
	return r.participants[p.ID]
}

func (r *fakeParticipantRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Participant) error {
	for _, existing := range r.participants {
		if existing.TournamentID == p.TournamentID && existing.UserID == p.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	copied := *p
	r.participants[p.ID] = &copied
	return nil
}

func (r *fakeParticipantRepo) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, tournamentID int, withUsers bool) ([]*models.Participant, error) {
	out := make([]*models.Participant, 0)
	for _, p := range r.participants {
		if p.TournamentID != tournamentID {
			continue
		}
		copied := *p
		if withUsers {
			if u, ok := r.users[p.UserID]; ok {
				copiedUser := *u
				copied.User = &copiedUser
			}
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipantRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	count := 0
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeParticipantRepo) ApplyStatsDelta(ctx context.Context, exec repositories.SQLExecutor, id int, delta models.StatsDelta) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Points += delta.Points
	p.GamesPlayed += delta.Games
	p.Wins += delta.Wins
	p.Losses += delta.Losses
	p.Draws += delta.Draws
	return nil
}

func (r *fakeParticipantRepo) ResetStatsByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			p.Points = 0
			p.GamesPlayed = 0
			p.Wins = 0
			p.Losses = 0
			p.Draws = 0
		}
	}
	return nil
}

func (r *fakeParticipantRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

type fakeMatchRepo struct {
	matches []*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1}
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.nextID
	r.nextID++
	copied := *m
	r.matches = append(r.matches, &copied)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) MaxRound(ctx context.Context, tournamentID int) (int, error) {
	maxRound := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Round > maxRound {
			maxRound = m.Round
		}
	}
	return maxRound, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result *models.MatchResult) error {
	for _, m := range r.matches {
		if m.ID == id {
			m.Result = result
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	kept := r.matches[:0]
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			kept = append(kept, m)
		}
	}
	r.matches = kept
	return nil
}

// emptyGenerator always reports that no pairings are possible.
type emptyGenerator struct{}

func (g *emptyGenerator) GetName() string { return "empty" }

func (g *emptyGenerator) GeneratePairings(ctx context.Context, params pairing.GenerateParams) (*pairing.Result, error) {
	return &pairing.Result{Pairings: []pairing.Pairing{}}, nil
}
