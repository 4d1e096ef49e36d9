package progress

import (
	"context"

	"github.com/yassirelk/darijalearn/internal/domain/entities"
)

// StatsRepository reads and initializes the remote user_stats mirror.
type StatsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entities.UserStats, error)
	Init(ctx context.Context, userID string) error
}

// SettingsRepository reads and writes the remote user_settings row.
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entities.UserSettings, error)
	Upsert(ctx context.Context, settings *entities.UserSettings) error
}

// SnapshotCache is the local durable key-value cache backing snapshots.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

// XPPusher delivers XP awards to the remote store, best-effort.
type XPPusher interface {
	Push(ctx context.Context, userID string, amount int)
	PushForExercise(ctx context.Context, userID, exerciseID string)
}

// ActivityRecorder writes the remote activity history the resume logic
// reads back on the next launch.
type ActivityRecorder interface {
	RecordAttempt(ctx context.Context, attempt *entities.ExerciseAttempt) error
	UpsertLessonProgress(ctx context.Context, progress *entities.LessonProgress) error
}
