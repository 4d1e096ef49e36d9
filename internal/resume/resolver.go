// Package resume decides where a returning user lands on app launch. The
// decision is a strict priority chain over remote activity history, and it
// degrades to a fixed fallback screen on any failure rather than surfacing an
// error: a broken resume path costs precision, never a crash.
package resume

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yassirelk/darijalearn/internal/domain/entities"
	"github.com/yassirelk/darijalearn/internal/repository"
)

// recentAttemptWindow bounds how old an exercise attempt may be and still
// count as "in the middle of something".
const recentAttemptWindow = 24 * time.Hour

// ActivityRepository is the slice of the remote history the resolver reads.
type ActivityRepository interface {
	LatestAttemptSince(ctx context.Context, userID string, since time.Time) (*entities.ExerciseAttempt, error)
	LatestLessonInProgress(ctx context.Context, userID string) (*entities.LessonProgress, error)
}

type Resolver struct {
	activity ActivityRepository
	logger   *zap.Logger

	now func() time.Time
}

func NewResolver(activity ActivityRepository, logger *zap.Logger) *Resolver {
	return &Resolver{
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// Destination picks the launch destination for a user. First match wins:
// a recent exercise attempt beats an in-progress lesson, which beats the
// generic exercises list. Query failures collapse to the same fallback.
func (r *Resolver) Destination(ctx context.Context, userID string) entities.Destination {
	since := r.now().Add(-recentAttemptWindow)

	attempt, err := r.activity.LatestAttemptSince(ctx, userID, since)
	if err == nil {
		return entities.Destination{
			Route:            entities.RouteRandomExercise,
			ResumeExerciseID: attempt.ExerciseID,
		}
	}
	if !errors.Is(err, repository.ErrNoRecentAttempt) {
		r.logger.Warn("recent attempt lookup failed", zap.Error(err))
		return entities.FallbackDestination()
	}

	lesson, err := r.activity.LatestLessonInProgress(ctx, userID)
	if err == nil {
		return entities.Destination{
			Route:    entities.RouteLessonDetail,
			LessonID: lesson.LessonID,
		}
	}
	if !errors.Is(err, repository.ErrNoLessonInProgress) {
		r.logger.Warn("lesson progress lookup failed", zap.Error(err))
	}

	return entities.FallbackDestination()
}
