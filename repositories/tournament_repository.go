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
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentCreatorInvalid = errors.New("tournament creator conflict or invalid")
	ErrTournamentCodeConflict   = errors.New("tournament invite code already in use")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	SetFinalized(ctx context.Context, exec SQLExecutor, id int, finalized bool) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, description, creator_id, date, mode, invite_code, finalized, logo_key, created_at`

func (r *postgresTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := rowScanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.CreatorID, &t.Date, &t.Mode,
		&t.InviteCode, &t.Finalized, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (name, description, creator_id, date, mode, invite_code, finalized)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		tournament.Name, tournament.Description, tournament.CreatorID,
		tournament.Date, tournament.Mode, tournament.InviteCode, tournament.Finalized,
	).Scan(&tournament.ID, &tournament.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByInviteCode(ctx context.Context, code string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE invite_code = $1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, code))
}

func (r *postgresTournamentRepository) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresTournamentRepository) ListByUser(ctx context.Context, userID int) ([]*models.Tournament, error) {
	query := `
		SELECT DISTINCT ` + prefixedTournamentColumns("t") + `
		FROM tournaments t
		LEFT JOIN participants p ON p.tournament_id = t.id
		WHERE t.creator_id = $1 OR p.user_id = $1
		ORDER BY t.date DESC, t.id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for user %d: %w", userID, err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func prefixedTournamentColumns(alias string) string {
	return alias + ".id, " + alias + ".name, " + alias + ".description, " + alias + ".creator_id, " +
		alias + ".date, " + alias + ".mode, " + alias + ".invite_code, " + alias + ".finalized, " +
		alias + ".logo_key, " + alias + ".created_at"
}

func (r *postgresTournamentRepository) collect(rows *sql.Rows) ([]*models.Tournament, error) {
	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := r.scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET name = $1, description = $2, date = $3, mode = $4, finalized = $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		tournament.Name, tournament.Description, tournament.Date,
		tournament.Mode, tournament.Finalized, tournament.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetFinalized(ctx context.Context, exec SQLExecutor, id int, finalized bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET finalized = $1 WHERE id = $2`, finalized, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournaments_creator_id_fkey":
			return ErrTournamentCreatorInvalid
		case "tournaments_invite_code_key":
			return ErrTournamentCodeConflict
		}
	}
	return err
}
