package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yassirelk/darijalearn/internal/domain/entities"
)

var ErrStatsNotFound = errors.New("user stats not found")

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetByUserID retrieves the user_stats row for a user.
// Returns ErrStatsNotFound if the row doesn't exist.
func (r *StatsRepository) GetByUserID(ctx context.Context, userID string) (*entities.UserStats, error) {
	query := `
		SELECT user_id, xp_total, level, created_at, updated_at
		FROM user_stats
		WHERE user_id = $1
	`

	var stats entities.UserStats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.XPTotal,
		&stats.Level,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatsNotFound
		}

		return nil, fmt.Errorf("get stats: %w", err)
	}

	return &stats, nil
}

// Init creates a zero stats row for a new user. Does nothing if one exists.
func (r *StatsRepository) Init(ctx context.Context, userID string) error {
	query := `
		INSERT INTO user_stats (user_id, xp_total, level, created_at, updated_at)
		VALUES ($1, 0, 1, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("init stats: %w", err)
	}

	return nil
}

// AwardXP calls the server-side award_xp function, which adds the delta
// atomically. Concurrent awards commute; awardID lets the server drop a
// retried push that already landed.
func (r *StatsRepository) AwardXP(ctx context.Context, userID string, amount int, awardID string) error {
	query := `SELECT award_xp($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, userID, amount, awardID)
	if err != nil {
		return fmt.Errorf("award xp: %w", err)
	}

	return nil
}

// AwardXPForExercise calls the server-side award_xp_for_exercise function,
// which looks up the exercise's reward and adds it atomically.
func (r *StatsRepository) AwardXPForExercise(ctx context.Context, userID, exerciseID string) error {
	query := `SELECT award_xp_for_exercise($1, $2)`

	_, err := r.db.Exec(ctx, query, userID, exerciseID)
	if err != nil {
		return fmt.Errorf("award xp for exercise: %w", err)
	}

	return nil
}
