package services

import (
	"context"
	"fmt"
	"log/slog"

	"chess-club-server/models"
	"chess-club-server/repositories"
)

// Club points handed out when a tournament is finalized, by final position.
const (
	PointsTournamentFirst  = 100
	PointsTournamentSecond = 60
	PointsTournamentThird  = 30
	PointsTournamentOther  = 10
)

type PointsService interface {
	AwardTournamentPoints(ctx context.Context, tournamentID int) error
	HistoryByUser(ctx context.Context, userID int) ([]*models.PointsEntry, error)
}

type pointsService struct {
	tx         repositories.Transactor
	userRepo   repositories.UserRepository
	pointsRepo repositories.PointsRepository
	ranking    RankingService
	logger     *slog.Logger
}

func NewPointsService(
	tx repositories.Transactor,
	userRepo repositories.UserRepository,
	pointsRepo repositories.PointsRepository,
	ranking RankingService,
	logger *slog.Logger,
) PointsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &pointsService{
		tx:         tx,
		userRepo:   userRepo,
		pointsRepo: pointsRepo,
		ranking:    ranking,
		logger:     logger,
	}
}

func awardForPosition(position int) (int, models.PointsReason) {
	switch position {
	case 1:
		return PointsTournamentFirst, models.ReasonTournamentFirst
	case 2:
		return PointsTournamentSecond, models.ReasonTournamentSecond
	case 3:
		return PointsTournamentThird, models.ReasonTournamentThird
	default:
		return PointsTournamentOther, models.ReasonTournamentOther
	}
}

// AwardTournamentPoints distributes the fixed club-point prizes to every
// participant by final standing, in a single transaction so a half-awarded
// tournament can never be observed.
func (s *pointsService) AwardTournamentPoints(ctx context.Context, tournamentID int) error {
	standings, err := s.ranking.ComputeRanking(ctx, tournamentID)
	if err != nil {
		return err
	}
	if len(standings) == 0 {
		return nil
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, standing := range standings {
			points, reason := awardForPosition(standing.Position)
			if err := s.userRepo.AddPoints(ctx, exec, standing.UserID, points); err != nil {
				return fmt.Errorf("failed to award %d points to user %d: %w", points, standing.UserID, err)
			}
			refID := tournamentID
			entry := &models.PointsEntry{
				UserID:      standing.UserID,
				Points:      points,
				Reason:      reason,
				ReferenceID: &refID,
			}
			if err := s.pointsRepo.InsertEntry(ctx, exec, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament points distributed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("participants", len(standings)))
	return nil
}

func (s *pointsService) HistoryByUser(ctx context.Context, userID int) ([]*models.PointsEntry, error) {
	entries, err := s.pointsRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load points history for user %d: %w", userID, err)
	}
	return entries, nil
}
