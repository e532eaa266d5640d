package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chess-club-server/live"
	"chess-club-server/models"
	"chess-club-server/repositories"
	"chess-club-server/storage"
)

type CreateTournamentInput struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Mode        string     `json:"mode"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Mode        *string    `json:"mode"`
	Finalized   *bool      `json:"finalized"`
}

type TournamentService interface {
	Create(ctx context.Context, callerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetDetail(ctx context.Context, tournamentID int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Tournament, error)
	Update(ctx context.Context, tournamentID, callerID int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, tournamentID, callerID int) error
	JoinByInvite(ctx context.Context, inviteCode string, callerID int) (*models.Participant, error)
	RemoveParticipant(ctx context.Context, tournamentID, participantID, callerID int) error
	UploadLogo(ctx context.Context, tournamentID, callerID int, contentType string, file io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	points          PointsService
	uploader        storage.FileUploader
	notifier        Notifier
	logger          *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	points PointsService,
	uploader storage.FileUploader,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		points:          points,
		uploader:        uploader,
		notifier:        notifier,
		logger:          logger,
	}
}

// Create registers the tournament and enrolls the creator as its first
// participant in the same transaction.
func (s *tournamentService) Create(ctx context.Context, callerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}
	mode := input.Mode
	if mode == "" {
		mode = "swiss"
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Description: input.Description,
		CreatorID:   callerID,
		Date:        date,
		Mode:        mode,
		InviteCode:  uuid.NewString(),
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return err
		}
		creator := &models.Participant{
			TournamentID: tournament.ID,
			UserID:       callerID,
		}
		return s.participantRepo.Create(ctx, exec, creator)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("creator_id", callerID))
	return tournament, nil
}

// GetDetail returns the tournament with its participants, rounds and
// current ranking. Participants and matches are fetched in parallel.
func (s *tournamentService) GetDetail(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	var (
		participants []*models.Participant
		matches      []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByTournament(gCtx, tournamentID, true)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d data: %w", tournamentID, err)
	}

	tournament.Participants = make([]models.Participant, len(participants))
	for i, p := range participants {
		tournament.Participants[i] = *p
	}
	tournament.Rounds = groupMatchesByRound(matches)
	tournament.Ranking = BuildStandings(participants)

	return tournament, nil
}

// groupMatchesByRound relies on the repository returning matches ordered by
// round, then id.
func groupMatchesByRound(matches []*models.Match) []models.Round {
	rounds := make([]models.Round, 0)
	for _, m := range matches {
		if len(rounds) == 0 || rounds[len(rounds)-1].Number != m.Round {
			rounds = append(rounds, models.Round{Number: m.Round})
		}
		last := &rounds[len(rounds)-1]
		last.Matches = append(last.Matches, m)
	}
	return rounds
}

func (s *tournamentService) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.tournamentRepo.List(ctx, limit, offset)
}

func (s *tournamentService) ListByUser(ctx context.Context, userID int) ([]*models.Tournament, error) {
	return s.tournamentRepo.ListByUser(ctx, userID)
}

// Update edits the tournament metadata. Flipping Finalized from false to
// true also distributes the club-point prizes by final standing.
func (s *tournamentService) Update(ctx context.Context, tournamentID, callerID int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.CreatorID != callerID {
		return nil, ErrForbiddenOperation
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = *input.Name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.Date != nil {
		tournament.Date = *input.Date
	}
	if input.Mode != nil {
		tournament.Mode = *input.Mode
	}

	finalizing := input.Finalized != nil && *input.Finalized && !tournament.Finalized
	if input.Finalized != nil {
		tournament.Finalized = *input.Finalized
	}

	if err := s.tournamentRepo.Update(ctx, nil, tournament); err != nil {
		return nil, err
	}

	if finalizing {
		if err := s.points.AwardTournamentPoints(ctx, tournamentID); err != nil {
			return nil, fmt.Errorf("tournament finalized but point distribution failed: %w", err)
		}
		if s.notifier != nil {
			s.notifier.NotifyTournament(tournamentID, live.EventTournamentFinalized, nil)
		}
	}

	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, tournamentID, callerID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if tournament.CreatorID != callerID {
		return ErrForbiddenOperation
	}
	return s.tournamentRepo.Delete(ctx, tournamentID)
}

// JoinByInvite enrolls the caller into the tournament behind the invite
// code, with zeroed stats.
func (s *tournamentService) JoinByInvite(ctx context.Context, inviteCode string, callerID int) (*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Finalized {
		return nil, ErrTournamentFinalized
	}

	participant := &models.Participant{
		TournamentID: tournament.ID,
		UserID:       callerID,
	}
	if err := s.participantRepo.Create(ctx, nil, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrAlreadyJoined
		}
		return nil, err
	}
	return participant, nil
}

// RemoveParticipant lets the creator, or the participant themselves, drop a
// registration — but not while generated pairings still reference it in an
// unfinished tournament.
func (s *tournamentService) RemoveParticipant(ctx context.Context, tournamentID, participantID, callerID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	if participant.TournamentID != tournamentID {
		return ErrParticipantNotFound
	}

	if callerID != tournament.CreatorID && callerID != participant.UserID {
		return ErrForbiddenOperation
	}

	matchCount, err := s.matchRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if matchCount > 0 && !tournament.Finalized {
		return ErrParticipantHasMatches
	}

	return s.participantRepo.Delete(ctx, participantID)
}

func (s *tournamentService) UploadLogo(ctx context.Context, tournamentID, callerID int, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.CreatorID != callerID {
		return nil, ErrForbiddenOperation
	}

	key := fmt.Sprintf("tournaments/%d/logo", tournamentID)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &result.Key); err != nil {
		return nil, err
	}
	tournament.LogoKey = &result.Key
	url := s.uploader.GetPublicURL(result.Key)
	tournament.LogoURL = &url

	return tournament, nil
}
