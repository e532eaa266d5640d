package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"chess-club-server/models"
)

var (
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrParticipantConflict     = errors.New("user is already registered in this tournament")
	ErrParticipantUserInvalid  = errors.New("participant user conflict or invalid")
	ErrParticipantTournInvalid = errors.New("participant tournament conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, participant *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int, withUsers bool) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	ApplyStatsDelta(ctx context.Context, exec SQLExecutor, id int, delta models.StatsDelta) error
	ResetStatsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	Delete(ctx context.Context, id int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, participant *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (tournament_id, user_id, points, games_played, wins, losses, draws)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		participant.TournamentID, participant.UserID, participant.Points,
		participant.GamesPlayed, participant.Wins, participant.Losses, participant.Draws,
	).Scan(&participant.ID, &participant.CreatedAt)

	return r.handleParticipantError(err)
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `
		SELECT id, tournament_id, user_id, points, games_played, wins, losses, draws, created_at
		FROM participants
		WHERE id = $1`

	var p models.Participant
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TournamentID, &p.UserID, &p.Points,
		&p.GamesPlayed, &p.Wins, &p.Losses, &p.Draws, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant %d: %w", id, err)
	}
	return &p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int, withUsers bool) ([]*models.Participant, error) {
	query := `
		SELECT p.id, p.tournament_id, p.user_id, p.points, p.games_played, p.wins, p.losses, p.draws, p.created_at,
		       u.id, u.name, u.email, u.points, u.created_at
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.tournament_id = $1
		ORDER BY p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var u models.User
		if scanErr := rows.Scan(
			&p.ID, &p.TournamentID, &p.UserID, &p.Points,
			&p.GamesPlayed, &p.Wins, &p.Losses, &p.Draws, &p.CreatedAt,
			&u.ID, &u.Name, &u.Email, &u.Points, &u.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		if withUsers {
			p.User = &u
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) ApplyStatsDelta(ctx context.Context, exec SQLExecutor, id int, delta models.StatsDelta) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE participants
		SET points = points + $1,
		    games_played = games_played + $2,
		    wins = wins + $3,
		    losses = losses + $4,
		    draws = draws + $5
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		delta.Points, delta.Games, delta.Wins, delta.Losses, delta.Draws, id,
	)
	if err != nil {
		return fmt.Errorf("failed to apply stats delta to participant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) ResetStatsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE participants
		SET points = 0, games_played = 0, wins = 0, losses = 0, draws = 0
		WHERE tournament_id = $1`

	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to reset participant stats for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "participants_tournament_id_user_id_key":
			return ErrParticipantConflict
		case "participants_user_id_fkey":
			return ErrParticipantUserInvalid
		case "participants_tournament_id_fkey":
			return ErrParticipantTournInvalid
		}
	}
	return err
}
