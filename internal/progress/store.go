// Package progress owns the user's progression state: XP, level, streak,
// accuracy, completion sets and favorites. Every mutation applies in memory
// first, then snapshots to the local cache; XP additionally goes to the remote
// store through the pusher. Remote failures never roll back local state.
package progress

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yassirelk/darijalearn/internal/cache"
	"github.com/yassirelk/darijalearn/internal/domain/entities"
	"github.com/yassirelk/darijalearn/internal/level"
	"github.com/yassirelk/darijalearn/internal/repository"
)

const (
	// Fixed per-action study time amounts. Not measured durations.
	lessonStudyMinutes   = 15
	exerciseStudyMinutes = 2

	achFirstLesson = "a1"
	achStreakSeven = "a2"
	achQCMExpert   = "a3"
)

// Store is the single in-process owner of progression state. All mutation
// goes through its methods; concurrent UI surfaces share one instance.
type Store struct {
	stats        StatsRepository
	settingsRepo SettingsRepository
	cache        SnapshotCache
	pusher       XPPusher
	activity     ActivityRecorder
	logger       *zap.Logger

	now func() time.Time

	mu                 sync.Mutex
	userID             string
	profile            *entities.Profile
	achievements       []entities.Achievement
	favoriteWords      map[string]struct{}
	completedLessons   map[string]struct{}
	completedExercises map[string]struct{}
	correctExercises   int
	consecutiveCorrect int
	settings           *entities.UserSettings
}

func NewStore(
	stats StatsRepository,
	settingsRepo SettingsRepository,
	snapshots SnapshotCache,
	pusher XPPusher,
	activity ActivityRecorder,
	logger *zap.Logger,
) *Store {
	return &Store{
		stats:              stats,
		settingsRepo:       settingsRepo,
		cache:              snapshots,
		pusher:             pusher,
		activity:           activity,
		logger:             logger,
		now:                time.Now,
		profile:            entities.NewGuestProfile(),
		achievements:       entities.SeedAchievements(),
		favoriteWords:      make(map[string]struct{}),
		completedLessons:   map[string]struct{}{"l1": {}},
		completedExercises: make(map[string]struct{}),
	}
}

// AddXP adds a non-negative amount to the profile, recomputes the level and
// pushes the delta to the remote store. The push is best-effort: a failure is
// the pusher's problem, never the caller's.
func (s *Store) AddXP(ctx context.Context, amount int) {
	if amount <= 0 {
		return
	}

	s.mu.Lock()
	s.profile.XP += amount
	s.profile.Level = level.ForXP(s.profile.XP)
	s.persistLocked(ctx)
	userID := s.userID
	s.mu.Unlock()

	s.pusher.Push(ctx, userID, amount)
}

// AwardXPForExercise grants an exercise's server-defined reward. Random
// sessions use this instead of AddXP because the reward amount lives in the
// remote exercise row, not locally.
func (s *Store) AwardXPForExercise(ctx context.Context, exerciseID string) {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()

	s.pusher.PushForExercise(ctx, userID, exerciseID)
}

// CompleteLesson marks a lesson done. Idempotent: a second call with the same
// id changes nothing. XP is not awarded here; callers grant the lesson's
// reward through AddXP.
func (s *Store) CompleteLesson(ctx context.Context, lessonID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.completedLessons[lessonID]; done {
		return
	}

	s.completedLessons[lessonID] = struct{}{}
	s.profile.CompletedLessons = len(s.completedLessons)
	s.profile.StudyTimeMinutes += lessonStudyMinutes
	s.unlockLocked(achFirstLesson)

	s.persistLocked(ctx)

	if err := s.activity.UpsertLessonProgress(ctx, &entities.LessonProgress{
		UserID:    s.userID,
		LessonID:  lessonID,
		Status:    entities.LessonStatusCompleted,
		StartedAt: s.now(),
	}); err != nil {
		s.logger.Warn("record lesson completion failed", zap.Error(err))
	}
}

// StartLesson marks a lesson as in progress remotely so the next launch can
// resume into it. Local state is untouched; a failure is only logged.
func (s *Store) StartLesson(ctx context.Context, lessonID string) {
	s.mu.Lock()
	userID := s.userID
	now := s.now()
	s.mu.Unlock()

	if s.IsLessonCompleted(lessonID) {
		return
	}

	if err := s.activity.UpsertLessonProgress(ctx, &entities.LessonProgress{
		UserID:    userID,
		LessonID:  lessonID,
		Status:    entities.LessonStatusInProgress,
		StartedAt: now,
	}); err != nil {
		s.logger.Warn("record lesson start failed", zap.Error(err))
	}
}

// CompleteExercise marks an exercise done and folds its correctness into the
// accuracy ratio. Idempotent: a repeat submission is a no-op regardless of
// the correctness flag it carries.
func (s *Store) CompleteExercise(ctx context.Context, exerciseID string, correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.completedExercises[exerciseID]; done {
		return
	}

	s.completedExercises[exerciseID] = struct{}{}
	if correct {
		s.correctExercises++
		s.consecutiveCorrect++
	} else {
		s.consecutiveCorrect = 0
	}

	total := len(s.completedExercises)
	s.profile.CompletedExercises = total
	s.profile.Accuracy = int(math.Round(float64(s.correctExercises) / float64(total) * 100))
	s.profile.StudyTimeMinutes += exerciseStudyMinutes

	s.trackQCMExpertLocked()

	s.persistLocked(ctx)

	if err := s.activity.RecordAttempt(ctx, &entities.ExerciseAttempt{
		UserID:      s.userID,
		ExerciseID:  exerciseID,
		AttemptedAt: s.now(),
	}); err != nil {
		s.logger.Warn("record exercise attempt failed", zap.Error(err))
	}
}

// ToggleFavoriteWord flips membership of a dictionary entry in the favorites
// set. Always persists.
func (s *Store) ToggleFavoriteWord(ctx context.Context, wordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favoriteWords[wordID]; ok {
		delete(s.favoriteWords, wordID)
	} else {
		s.favoriteWords[wordID] = struct{}{}
	}

	s.persistLocked(ctx)
}

// UpdateStreak records activity for today. Repeat calls on the same day are
// no-ops; activity the day after the last active day extends the streak; a
// longer gap resets it to 1, today counting as day one.
func (s *Store) UpdateStreak(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := dateOf(now)

	if s.profile.LastActivityAt != nil {
		last := dateOf(*s.profile.LastActivityAt)
		switch {
		case last.Equal(today):
			return
		case last.Equal(today.AddDate(0, 0, -1)):
			s.profile.Streak++
		default:
			s.profile.Streak = 1
		}
	} else {
		s.profile.Streak++
	}

	s.profile.LastActivityAt = &now
	if s.profile.Streak >= 7 {
		s.unlockLocked(achStreakSeven)
	}

	s.persistLocked(ctx)
}

// LoadUserData hydrates displayed XP/level from the remote stats row and
// refreshes settings, remote-first with cache fallback. Any remote failure
// leaves local state untouched and is only logged.
func (s *Store) LoadUserData(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID

	stats, err := s.stats.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		s.profile.XP = stats.XPTotal
		s.profile.Level = level.ForXP(stats.XPTotal)
	case errors.Is(err, repository.ErrStatsNotFound):
		if initErr := s.stats.Init(ctx, userID); initErr != nil {
			s.logger.Warn("init user stats failed", zap.Error(initErr))
		}
	default:
		s.logger.Warn("load user stats failed, keeping local values", zap.Error(err))
	}

	s.loadSettingsLocked(ctx, userID)

	s.persistLocked(ctx)
}

// loadSettingsLocked mirrors the remote settings row, caching it locally on
// success and falling back to the cached copy when the remote is unavailable.
func (s *Store) loadSettingsLocked(ctx context.Context, userID string) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err == nil {
		s.settings = settings
		s.writeSettingsCacheLocked(ctx, settings)
		return
	}

	if !errors.Is(err, repository.ErrSettingsNotFound) {
		s.logger.Warn("load settings failed, trying cache", zap.Error(err))
	}

	cached, cacheErr := s.readSettingsCacheLocked(ctx)
	if cacheErr != nil {
		if !errors.Is(cacheErr, cache.ErrNotFound) {
			s.logger.Warn("settings cache read failed", zap.Error(cacheErr))
		}
		return
	}
	s.settings = cached
}

// UpdateSettings writes settings remote-first. When the remote write fails
// the change still lands in the local cache, matching the local-first rule
// everything else here follows.
func (s *Store) UpdateSettings(ctx context.Context, settings *entities.UserSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = s.now()
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		s.logger.Warn("settings upsert failed, cached locally only", zap.Error(err))
	}

	s.settings = settings
	s.writeSettingsCacheLocked(ctx, settings)
}

// SetPseudo renames the profile. No uniqueness constraint.
func (s *Store) SetPseudo(ctx context.Context, pseudo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Pseudo = pseudo
	s.persistLocked(ctx)
}

// Profile returns a copy of the current profile.
func (s *Store) Profile() entities.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.profile
}

// Achievements returns a copy of the achievement list.
func (s *Store) Achievements() []entities.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Achievement, len(s.achievements))
	copy(out, s.achievements)
	return out
}

// Settings returns the last loaded settings, or nil when none are known.
func (s *Store) Settings() *entities.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		return nil
	}
	copied := *s.settings
	return &copied
}

// FavoriteWords returns the favorited dictionary entry ids, sorted.
func (s *Store) FavoriteWords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.favoriteWords)
}

// IsLessonCompleted reports membership in the completed-lesson set.
func (s *Store) IsLessonCompleted(lessonID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completedLessons[lessonID]
	return ok
}

// IsExerciseCompleted reports membership in the completed-exercise set.
func (s *Store) IsExerciseCompleted(exerciseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completedExercises[exerciseID]
	return ok
}

// ProgressToNextLevel returns the display fraction toward the next level.
func (s *Store) ProgressToNextLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return level.ProgressToNext(s.profile.XP, s.profile.Level)
}

func (s *Store) unlockLocked(id string) {
	for i := range s.achievements {
		if s.achievements[i].ID == id {
			s.achievements[i].Unlock()
			return
		}
	}
}

// trackQCMExpertLocked advances the consecutive-correct achievement. Recorded
// progress never goes backwards even when the run is broken.
func (s *Store) trackQCMExpertLocked() {
	for i := range s.achievements {
		a := &s.achievements[i]
		if a.ID != achQCMExpert || a.Unlocked {
			continue
		}
		if s.consecutiveCorrect > a.Progress {
			a.Progress = s.consecutiveCorrect
		}
		if a.MaxProgress > 0 && s.consecutiveCorrect >= a.MaxProgress {
			a.Unlock()
		}
		return
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
