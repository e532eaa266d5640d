package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"chess-club-server/models"
	"chess-club-server/repositories"
)

type RankingService interface {
	ComputeRanking(ctx context.Context, tournamentID int) ([]models.Standing, error)
}

type rankingService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
}

func NewRankingService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
) RankingService {
	return &rankingService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
	}
}

func (s *rankingService) ComputeRanking(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}

	return BuildStandings(participants), nil
}

// BuildStandings turns participant snapshots into a fully ordered ranking:
// points descending, then wins descending, then losses ascending, then
// display name ascending. The name comparison is byte-wise and
// case-sensitive, and a missing user sorts as the empty name, so the order
// is total and identical on every run.
func BuildStandings(participants []*models.Participant) []models.Standing {
	standings := make([]models.Standing, 0, len(participants))
	for _, p := range participants {
		name := ""
		userID := p.UserID
		if p.User != nil {
			name = p.User.Name
		}
		standings = append(standings, models.Standing{
			ParticipantID: p.ID,
			UserID:        userID,
			Name:          name,
			Points:        p.Points,
			Wins:          p.Wins,
			Losses:        p.Losses,
			Draws:         p.Draws,
			GamesPlayed:   p.GamesPlayed,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.Name < b.Name
	})

	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}
