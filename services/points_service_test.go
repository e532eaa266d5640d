package services

import (
	"context"
	"sort"
	"testing"

	"chess-club-server/models"
	"chess-club-server/repositories"
)

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	u.ID = r.nextID
	r.nextID++
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) AddPoints(ctx context.Context, exec repositories.SQLExecutor, userID, points int) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Points += points
	return nil
}

type fakePointsRepo struct {
	entries []*models.PointsEntry
	nextID  int
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{nextID: 1}
}

func (r *fakePointsRepo) InsertEntry(ctx context.Context, exec repositories.SQLExecutor, e *models.PointsEntry) error {
	e.ID = r.nextID
	r.nextID++
	copied := *e
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *fakePointsRepo) ListByUser(ctx context.Context, userID int) ([]*models.PointsEntry, error) {
	out := make([]*models.PointsEntry, 0)
	for _, e := range r.entries {
		if e.UserID == userID {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func TestAwardTournamentPoints(t *testing.T) {
	ctx := context.Background()
	tournamentRepo := newFakeTournamentRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	pointsRepo := newFakePointsRepo()

	tournament := &models.Tournament{Name: "Winter Cup", CreatorID: 1}
	if err := tournamentRepo.Create(ctx, nil, tournament); err != nil {
		t.Fatalf("seed tournament: %v", err)
	}

	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin"}
	deltas := []models.StatsDelta{
		{Points: 4, Games: 4, Wins: 4},
		{Points: 3, Games: 4, Wins: 3, Losses: 1},
		{Points: 2, Games: 4, Wins: 2, Losses: 2},
		{Points: 1, Games: 4, Wins: 1, Losses: 3},
		{Points: 0, Games: 4, Losses: 4},
	}
	for i, name := range names {
		user := &models.User{Name: name, Email: name + "@club.test"}
		if err := userRepo.Create(ctx, user); err != nil {
			t.Fatalf("seed user: %v", err)
		}
		p := participantRepo.add(tournament.ID, user.ID, name)
		if err := participantRepo.ApplyStatsDelta(ctx, nil, p.ID, deltas[i]); err != nil {
			t.Fatalf("seed stats: %v", err)
		}
	}

	ranking := NewRankingService(tournamentRepo, participantRepo)
	svc := NewPointsService(&fakeTransactor{}, userRepo, pointsRepo, ranking, nil)

	if err := svc.AwardTournamentPoints(ctx, tournament.ID); err != nil {
		t.Fatalf("AwardTournamentPoints: %v", err)
	}

	wantPoints := map[string]int{
		"Alice": PointsTournamentFirst,
		"Bob":   PointsTournamentSecond,
		"Carol": PointsTournamentThird,
		"Dave":  PointsTournamentOther,
		"Erin":  PointsTournamentOther,
	}
	wantReason := map[string]models.PointsReason{
		"Alice": models.ReasonTournamentFirst,
		"Bob":   models.ReasonTournamentSecond,
		"Carol": models.ReasonTournamentThird,
		"Dave":  models.ReasonTournamentOther,
		"Erin":  models.ReasonTournamentOther,
	}

	for _, u := range userRepo.users {
		if u.Points != wantPoints[u.Name] {
			t.Errorf("%s has %d club points, want %d", u.Name, u.Points, wantPoints[u.Name])
		}
		entries, err := svc.HistoryByUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("HistoryByUser: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("%s has %d history entries, want 1", u.Name, len(entries))
		}
		entry := entries[0]
		if entry.Points != wantPoints[u.Name] || entry.Reason != wantReason[u.Name] {
			t.Errorf("%s entry = %d %s, want %d %s", u.Name, entry.Points, entry.Reason, wantPoints[u.Name], wantReason[u.Name])
		}
		if entry.ReferenceID == nil || *entry.ReferenceID != tournament.ID {
			t.Errorf("%s entry reference = %v, want tournament %d", u.Name, entry.ReferenceID, tournament.ID)
		}
	}
}

func TestAwardTournamentPointsEmptyTournament(t *testing.T) {
	ctx := context.Background()
	tournamentRepo := newFakeTournamentRepo()
	participantRepo := newFakeParticipantRepo()
	pointsRepo := newFakePointsRepo()

	tournament := &models.Tournament{Name: "Ghost Town", CreatorID: 1}
	if err := tournamentRepo.Create(ctx, nil, tournament); err != nil {
		t.Fatalf("seed tournament: %v", err)
	}

	svc := NewPointsService(&fakeTransactor{}, newFakeUserRepo(), pointsRepo, NewRankingService(tournamentRepo, participantRepo), nil)
	if err := svc.AwardTournamentPoints(ctx, tournament.ID); err != nil {
		t.Fatalf("AwardTournamentPoints: %v", err)
	}
	if len(pointsRepo.entries) != 0 {
		t.Fatalf("%d entries written for an empty tournament, want 0", len(pointsRepo.entries))
	}
}
