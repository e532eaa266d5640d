package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"chess-club-server/live"
	"chess-club-server/models"
	"chess-club-server/pairing"
	"chess-club-server/repositories"
)

// MaxRoundsPerRequest caps one generation call. Larger requests are clamped,
// never rejected.
const MaxRoundsPerRequest = 10

// byeAward is the fixed credit a bye recipient gets: a full point, a win
// and a played game. Intentionally a full point even though draws elsewhere
// score half.
var byeAward = models.StatsDelta{Points: 1, Games: 1, Wins: 1}

// Notifier pushes tournament events to live subscribers. *live.Hub
// satisfies it; a nil Notifier disables notifications.
type Notifier interface {
	NotifyTournament(tournamentID int, eventType string, payload interface{})
}

// GenerateRoundsResult reports which rounds one generation call committed.
// HadForcedRepeat is set when any round had to pair two players a second
// time because the pool left no alternative.
type GenerateRoundsResult struct {
	CreatedRounds   []int `json:"created_rounds"`
	HadForcedRepeat bool  `json:"had_forced_repeat"`
}

type RoundService interface {
	GenerateRounds(ctx context.Context, tournamentID, callerID, requestedRounds int) (*GenerateRoundsResult, error)
	SetMatchResult(ctx context.Context, tournamentID, matchID, callerID int, result models.MatchResult) error
	DeletePairings(ctx context.Context, tournamentID, callerID int) error
}

type roundService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	generator       pairing.Generator
	rng             *rand.Rand
	notifier        Notifier
	logger          *slog.Logger
}

// NewRoundService builds the round orchestrator. rng seeds the round 1
// shuffle and may be nil outside tests.
func NewRoundService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	generator pairing.Generator,
	rng *rand.Rand,
	notifier Notifier,
	logger *slog.Logger,
) RoundService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &roundService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		generator:       generator,
		rng:             rng,
		notifier:        notifier,
		logger:          logger,
	}
}

func (s *roundService) loadOwnedTournament(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.CreatorID != callerID {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

// GenerateRounds appends up to requestedRounds new rounds to the
// tournament. Each round is committed in its own transaction (matches plus
// bye stat updates together), and the in-memory player state is advanced
// only after the commit, so round K+1 always pairs against round K's
// outcome. Rounds committed before a failure are kept and reported.
func (s *roundService) GenerateRounds(ctx context.Context, tournamentID, callerID, requestedRounds int) (*GenerateRoundsResult, error) {
	if requestedRounds < 1 {
		return nil, ErrInvalidRoundCount
	}

	tournament, err := s.loadOwnedTournament(ctx, tournamentID, callerID)
	if err != nil {
		return nil, err
	}
	if tournament.Finalized {
		return nil, ErrTournamentFinalized
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	if len(participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}

	states := pairing.BuildPlayerStates(participants, matches)

	currentRound := 0
	for _, m := range matches {
		if m.Round > currentRound {
			currentRound = m.Round
		}
	}

	roundsToCreate := requestedRounds
	if roundsToCreate > MaxRoundsPerRequest {
		roundsToCreate = MaxRoundsPerRequest
	}

	result := &GenerateRoundsResult{CreatedRounds: make([]int, 0, roundsToCreate)}

	for offset := 1; offset <= roundsToCreate; offset++ {
		roundNumber := currentRound + offset

		// Deterministic input order: participant creation order, so
		// score ties resolve the same way on every call.
		ordered := make([]*pairing.PlayerState, 0, len(participants))
		for _, p := range participants {
			ordered = append(ordered, states[p.ID])
		}

		generated, err := s.generator.GeneratePairings(ctx, pairing.GenerateParams{
			States:    ordered,
			Round:     roundNumber,
			Randomize: roundNumber == 1,
			Rand:      s.rng,
		})
		if err != nil {
			return result, fmt.Errorf("pairing failed for round %d: %w", roundNumber, err)
		}
		if len(generated.Pairings) == 0 {
			break
		}

		txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			for _, pr := range generated.Pairings {
				match := &models.Match{
					TournamentID:       tournamentID,
					Round:              roundNumber,
					WhiteParticipantID: pr.WhiteID,
					BlackParticipantID: pr.BlackID,
				}
				if pr.IsBye {
					win := models.ResultWhiteWin
					match.Result = &win
				}
				if err := s.matchRepo.Create(ctx, exec, match); err != nil {
					return fmt.Errorf("failed to persist match for round %d: %w", roundNumber, err)
				}
				if pr.IsBye {
					if err := s.participantRepo.ApplyStatsDelta(ctx, exec, pr.WhiteID, byeAward); err != nil {
						return fmt.Errorf("failed to credit bye for participant %d: %w", pr.WhiteID, err)
					}
				}
			}
			return nil
		})
		if txErr != nil {
			// Earlier rounds are already committed; report them
			// alongside the failure.
			return result, txErr
		}

		for _, pr := range generated.Pairings {
			if pr.IsBye {
				pairing.MarkBye(states, pr.WhiteID)
			} else if pr.BlackID != nil {
				pairing.MarkPaired(states, pr.WhiteID, *pr.BlackID)
			}
		}

		result.CreatedRounds = append(result.CreatedRounds, roundNumber)
		if generated.HadForcedRepeat {
			result.HadForcedRepeat = true
		}
	}

	if len(result.CreatedRounds) == 0 {
		return nil, ErrNoPairingsPossible
	}

	s.logger.Info("rounds generated",
		slog.Int("tournament_id", tournamentID),
		slog.Any("rounds", result.CreatedRounds),
		slog.Bool("forced_repeat", result.HadForcedRepeat))

	if s.notifier != nil {
		s.notifier.NotifyTournament(tournamentID, live.EventRoundsGenerated, result)
	}
	return result, nil
}

// resultDelta is the stat contribution a stored result gives one side of a
// match. A nil result contributes nothing, which makes the new-minus-old
// delta math work for pending games too.
func resultDelta(result *models.MatchResult, white bool) models.StatsDelta {
	if result == nil {
		return models.StatsDelta{}
	}
	if *result == models.ResultDraw {
		return models.StatsDelta{Points: 0.5, Games: 1, Draws: 1}
	}

	won := (white && *result == models.ResultWhiteWin) || (!white && *result == models.ResultBlackWin)
	if won {
		return models.StatsDelta{Points: 1, Games: 1, Wins: 1}
	}
	return models.StatsDelta{Games: 1, Losses: 1}
}

// SetMatchResult replaces a match's result, adjusting both participants'
// cumulative stats by the difference between the new and the previous
// contribution. Setting the same result twice is a no-op; flipping a result
// back restores the stats exactly.
func (s *roundService) SetMatchResult(ctx context.Context, tournamentID, matchID, callerID int, result models.MatchResult) error {
	if !result.Valid() {
		return ErrInvalidResult
	}

	tournament, err := s.loadOwnedTournament(ctx, tournamentID, callerID)
	if err != nil {
		return err
	}
	if tournament.Finalized {
		return ErrTournamentFinalized
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.TournamentID != tournamentID {
		return ErrMatchNotFound
	}

	whiteDelta := resultDelta(&result, true).Sub(resultDelta(match.Result, true))
	blackDelta := resultDelta(&result, false).Sub(resultDelta(match.Result, false))

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if !whiteDelta.IsZero() {
			if err := s.participantRepo.ApplyStatsDelta(ctx, exec, match.WhiteParticipantID, whiteDelta); err != nil {
				return err
			}
		}
		if match.BlackParticipantID != nil && !blackDelta.IsZero() {
			if err := s.participantRepo.ApplyStatsDelta(ctx, exec, *match.BlackParticipantID, blackDelta); err != nil {
				return err
			}
		}
		return s.matchRepo.UpdateResult(ctx, exec, matchID, &result)
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyTournament(tournamentID, live.EventResultUpdated, map[string]interface{}{
			"match_id": matchID,
			"result":   result,
		})
	}
	return nil
}

// DeletePairings wipes every match of the tournament, zeroes all
// participant stats and clears the finalized flag, atomically. This is the
// "undo pairings" escape hatch.
func (s *roundService) DeletePairings(ctx context.Context, tournamentID, callerID int) error {
	if _, err := s.loadOwnedTournament(ctx, tournamentID, callerID); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.participantRepo.ResetStatsByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		return s.tournamentRepo.SetFinalized(ctx, exec, tournamentID, false)
	})
	if err != nil {
		return err
	}

	s.logger.Info("pairings deleted", slog.Int("tournament_id", tournamentID))

	if s.notifier != nil {
		s.notifier.NotifyTournament(tournamentID, live.EventPairingsDeleted, nil)
	}
	return nil
}
