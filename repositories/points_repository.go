package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"chess-club-server/models"
)

type PointsRepository interface {
	InsertEntry(ctx context.Context, exec SQLExecutor, entry *models.PointsEntry) error
	ListByUser(ctx context.Context, userID int) ([]*models.PointsEntry, error)
}

type postgresPointsRepository struct {
	db *sql.DB
}

func NewPostgresPointsRepository(db *sql.DB) PointsRepository {
	return &postgresPointsRepository{db: db}
}

func (r *postgresPointsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPointsRepository) InsertEntry(ctx context.Context, exec SQLExecutor, entry *models.PointsEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO points_history (user_id, points, reason, reference_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		entry.UserID, entry.Points, entry.Reason, entry.ReferenceID,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert points entry for user %d: %w", entry.UserID, err)
	}
	return nil
}

func (r *postgresPointsRepository) ListByUser(ctx context.Context, userID int) ([]*models.PointsEntry, error) {
	query := `
		SELECT id, user_id, points, reason, reference_id, created_at
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query points history for user %d: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]*models.PointsEntry, 0)
	for rows.Next() {
		var e models.PointsEntry
		if scanErr := rows.Scan(&e.ID, &e.UserID, &e.Points, &e.Reason, &e.ReferenceID, &e.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan points entry: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
