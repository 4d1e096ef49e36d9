package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yassirelk/darijalearn/internal/domain/entities"
)

var (
	ErrNoRecentAttempt    = errors.New("no recent exercise attempt")
	ErrNoLessonInProgress = errors.New("no lesson in progress")
)

// ActivityRepository reads the remote activity history consulted on launch.
type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// LatestAttemptSince returns the user's most recent exercise attempt with a
// timestamp at or after since. Returns ErrNoRecentAttempt when there is none.
func (r *ActivityRepository) LatestAttemptSince(ctx context.Context, userID string, since time.Time) (*entities.ExerciseAttempt, error) {
	query := `
		SELECT user_id, exercise_id, attempted_at
		FROM user_exercise_attempts
		WHERE user_id = $1 AND attempted_at >= $2
		ORDER BY attempted_at DESC
		LIMIT 1
	`

	var attempt entities.ExerciseAttempt
	err := r.db.QueryRow(ctx, query, userID, since).Scan(
		&attempt.UserID,
		&attempt.ExerciseID,
		&attempt.AttemptedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecentAttempt
		}

		return nil, fmt.Errorf("latest attempt: %w", err)
	}

	return &attempt, nil
}

// LatestLessonInProgress returns the most recently started lesson with
// status in_progress. Returns ErrNoLessonInProgress when there is none.
func (r *ActivityRepository) LatestLessonInProgress(ctx context.Context, userID string) (*entities.LessonProgress, error) {
	query := `
		SELECT user_id, lesson_id, status, started_at
		FROM user_lesson_progress
		WHERE user_id = $1 AND status = $2
		ORDER BY started_at DESC
		LIMIT 1
	`

	var progress entities.LessonProgress
	err := r.db.QueryRow(ctx, query, userID, entities.LessonStatusInProgress).Scan(
		&progress.UserID,
		&progress.LessonID,
		&progress.Status,
		&progress.StartedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoLessonInProgress
		}

		return nil, fmt.Errorf("latest lesson in progress: %w", err)
	}

	return &progress, nil
}

// RecordAttempt inserts an exercise attempt row.
func (r *ActivityRepository) RecordAttempt(ctx context.Context, attempt *entities.ExerciseAttempt) error {
	query := `
		INSERT INTO user_exercise_attempts (user_id, exercise_id, attempted_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, attempt.UserID, attempt.ExerciseID, attempt.AttemptedAt)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	return nil
}

// UpsertLessonProgress creates or updates a per-lesson progress row.
func (r *ActivityRepository) UpsertLessonProgress(ctx context.Context, progress *entities.LessonProgress) error {
	query := `
		INSERT INTO user_lesson_progress (user_id, lesson_id, status, started_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET status = excluded.status
	`

	_, err := r.db.Exec(ctx, query, progress.UserID, progress.LessonID, progress.Status, progress.StartedAt)
	if err != nil {
		return fmt.Errorf("upsert lesson progress: %w", err)
	}

	return nil
}
