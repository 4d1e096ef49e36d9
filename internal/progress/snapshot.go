package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yassirelk/darijalearn/internal/cache"
	"github.com/yassirelk/darijalearn/internal/domain/entities"
)

// Fixed cache keys. The whole progression state lives under one blob, the
// settings mirror under another.
const (
	snapshotKey = "userProfile"
	settingsKey = "userSettings"
)

// snapshot is the full-state blob written to the local cache after every
// mutation and read back on cold start.
type snapshot struct {
	Profile            entities.Profile       `json:"profile"`
	Achievements       []entities.Achievement `json:"achievements"`
	FavoriteWords      []string               `json:"favoriteWords"`
	CompletedLessons   []string               `json:"completedLessons"`
	CompletedExercises []string               `json:"completedExercises"`
	CorrectExercises   int                    `json:"correctExercises"`
	ConsecutiveCorrect int                    `json:"consecutiveCorrect"`
}

// persistLocked writes the full-state snapshot. Failures are logged only: the
// in-memory mutation already happened and stands.
func (s *Store) persistLocked(ctx context.Context) {
	snap := snapshot{
		Profile:            *s.profile,
		Achievements:       s.achievements,
		FavoriteWords:      sortedKeys(s.favoriteWords),
		CompletedLessons:   sortedKeys(s.completedLessons),
		CompletedExercises: sortedKeys(s.completedExercises),
		CorrectExercises:   s.correctExercises,
		ConsecutiveCorrect: s.consecutiveCorrect,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("marshal snapshot", zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, snapshotKey, data); err != nil {
		s.logger.Warn("snapshot write failed", zap.Error(err))
	}
}

// Restore rehydrates the store from the cached snapshot, if one exists. Used
// as the offline/cold-start fallback; remote data loaded afterwards wins.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.cache.Get(ctx, snapshotKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("snapshot read failed", zap.Error(err))
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("snapshot unmarshal failed, keeping defaults", zap.Error(err))
		return
	}

	s.profile = &snap.Profile
	s.achievements = snap.Achievements
	s.favoriteWords = toSet(snap.FavoriteWords)
	s.completedLessons = toSet(snap.CompletedLessons)
	s.completedExercises = toSet(snap.CompletedExercises)
	s.correctExercises = snap.CorrectExercises
	s.consecutiveCorrect = snap.ConsecutiveCorrect
}

func (s *Store) writeSettingsCacheLocked(ctx context.Context, settings *entities.UserSettings) {
	data, err := json.Marshal(settings)
	if err != nil {
		s.logger.Error("marshal settings", zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, settingsKey, data); err != nil {
		s.logger.Warn("settings cache write failed", zap.Error(err))
	}
}

func (s *Store) readSettingsCacheLocked(ctx context.Context) (*entities.UserSettings, error) {
	data, err := s.cache.Get(ctx, settingsKey)
	if err != nil {
		return nil, err
	}

	var settings entities.UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("unmarshal cached settings: %w", err)
	}

	return &settings, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
