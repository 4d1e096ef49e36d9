package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yassirelk/darijalearn/internal/cache"
	"github.com/yassirelk/darijalearn/internal/domain/entities"
	"github.com/yassirelk/darijalearn/internal/repository"
)

type fakeStats struct {
	stats    *entities.UserStats
	getErr   error
	initErr  error
	initDone bool
}

func (f *fakeStats) GetByUserID(_ context.Context, _ string) (*entities.UserStats, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stats, nil
}

func (f *fakeStats) Init(_ context.Context, _ string) error {
	f.initDone = true
	return f.initErr
}

type fakeSettingsRepo struct {
	settings  *entities.UserSettings
	getErr    error
	upsertErr error
	upserted  *entities.UserSettings
}

func (f *fakeSettingsRepo) GetByUserID(_ context.Context, _ string) (*entities.UserSettings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.settings, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, s *entities.UserSettings) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = s
	return nil
}

type fakeCache struct {
	blobs  map[string][]byte
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{blobs: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.blobs[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return data, nil
}

func (f *fakeCache) Set(_ context.Context, key string, data []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.blobs[key] = data
	return nil
}

type fakePusher struct {
	pushes    []int
	exercises []string
}

func (f *fakePusher) Push(_ context.Context, _ string, amount int) {
	f.pushes = append(f.pushes, amount)
}

func (f *fakePusher) PushForExercise(_ context.Context, _, exerciseID string) {
	f.exercises = append(f.exercises, exerciseID)
}

type fakeActivity struct {
	attempts []entities.ExerciseAttempt
	lessons  []entities.LessonProgress
	err      error
}

func (f *fakeActivity) RecordAttempt(_ context.Context, a *entities.ExerciseAttempt) error {
	if f.err != nil {
		return f.err
	}
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeActivity) UpsertLessonProgress(_ context.Context, p *entities.LessonProgress) error {
	if f.err != nil {
		return f.err
	}
	f.lessons = append(f.lessons, *p)
	return nil
}

func newTestStore() (*Store, *fakeStats, *fakeSettingsRepo, *fakeCache, *fakePusher) {
	stats := &fakeStats{getErr: repository.ErrStatsNotFound}
	settings := &fakeSettingsRepo{getErr: repository.ErrSettingsNotFound}
	c := newFakeCache()
	p := &fakePusher{}
	s := NewStore(stats, settings, c, p, &fakeActivity{}, zap.NewNop())
	return s, stats, settings, c, p
}

func TestAddXPRecomputesLevelAndPushes(t *testing.T) {
	s, _, _, c, p := newTestStore()
	ctx := context.Background()

	// Guest seed starts at 180 XP.
	require.Equal(t, 180, s.Profile().XP)

	s.AddXP(ctx, 50)

	profile := s.Profile()
	assert.Equal(t, 230, profile.XP)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, []int{50}, p.pushes)
	assert.Contains(t, c.blobs, "userProfile")
}

func TestAddXPIgnoresNonPositiveAmounts(t *testing.T) {
	s, _, _, _, p := newTestStore()
	ctx := context.Background()

	s.AddXP(ctx, 0)
	s.AddXP(ctx, -20)

	assert.Equal(t, 180, s.Profile().XP)
	assert.Empty(t, p.pushes)
}

func TestAddXPNotRolledBackOnCacheFailure(t *testing.T) {
	s, _, _, c, _ := newTestStore()
	c.setErr = errors.New("disk full")

	s.AddXP(context.Background(), 50)

	assert.Equal(t, 230, s.Profile().XP)
}

func TestAwardXPForExerciseDelegatesToPusher(t *testing.T) {
	s, _, _, _, p := newTestStore()

	s.AwardXPForExercise(context.Background(), "e7")

	assert.Equal(t, []string{"e7"}, p.exercises)
	// No local delta: the reward amount lives server-side.
	assert.Equal(t, 180, s.Profile().XP)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	s, _, _, _, _ := newTestStore()
	ctx := context.Background()

	s.CompleteLesson(ctx, "l2")
	first := s.Profile()

	s.CompleteLesson(ctx, "l2")
	second := s.Profile()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, second.CompletedLessons)
	assert.Equal(t, 145+15, second.StudyTimeMinutes)
	assert.True(t, s.IsLessonCompleted("l2"))
}

func TestCompleteLessonSeededLessonIsNoOp(t *testing.T) {
	s, _, _, _, _ := newTestStore()

	// l1 is completed in the seed state.
	before := s.Profile()
	s.CompleteLesson(context.Background(), "l1")

	assert.Equal(t, before, s.Profile())
}

func TestCompleteExerciseIdempotentKeepsFirstCorrectness(t *testing.T) {
	s, _, _, _, _ := newTestStore()
	ctx := context.Background()

	s.CompleteExercise(ctx, "e1", true)
	first := s.Profile()

	// Repeat submission with a different correctness flag changes nothing.
	s.CompleteExercise(ctx, "e1", false)
	second := s.Profile()

	assert.Equal(t, first, second)
	assert.Equal(t, 100, second.Accuracy)
	assert.Equal(t, 1, second.CompletedExercises)
	assert.Equal(t, 145+2, second.StudyTimeMinutes)
}

func TestCompleteExerciseAccuracyExact(t *testing.T) {
	s, _, _, _, _ := newTestStore()
	ctx := context.Background()

	s.CompleteExercise(ctx, "e1", true)
	s.CompleteExercise(ctx, "e2", false)
	s.CompleteExercise(ctx, "e3", true)

	// round(100 * 2/3) = 67
	assert.Equal(t, 67, s.Profile().Accuracy)
	assert.Equal(t, 3, s.Profile().CompletedExercises)
}

func TestToggleFavoriteWordIsItsOwnInverse(t *testing.T) {
	s, _, _, _, _ := newTestStore()
	ctx := context.Background()

	s.ToggleFavoriteWord(ctx, "w1")
	assert.Equal(t, []string{"w1"}, s.FavoriteWords())

	s.ToggleFavoriteWord(ctx, "w1")
	assert.Empty(t, s.FavoriteWords())
}

func TestUpdateStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 6, 1+d, 10, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		lastActive *time.Time
		now        time.Time
		start      int
		want       int
	}{
		{"no recorded activity increments", nil, day(0), 7, 8},
		{"next day extends", ptr(day(0)), day(1), 7, 8},
		{"same day is a no-op", ptr(day(1)), day(1), 7, 7},
		{"gap resets to one", ptr(day(0)), day(3), 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, _, _ := newTestStore()
			s.now = func() time.Time { return tt.now }
			s.profile.Streak = tt.start
			s.profile.LastActivityAt = tt.lastActive

			s.UpdateStreak(context.Background())

			assert.Equal(t, tt.want, s.Profile().Streak)
		})
	}
}

func TestUpdateStreakSameDayTwice(t *testing.T) {
	s, _, _, _, _ := newTestStore()
	fixed := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.UpdateStreak(context.Background())
	after := s.Profile().Streak
	s.UpdateStreak(context.Background())

	assert.Equal(t, after, s.Profile().Streak)
}

func TestLoadUserDataOverwritesFromRemote(t *testing.T) {
	s, stats, _, _, _ := newTestStore()
	stats.getErr = nil
	stats.stats = &entities.UserStats{UserID: "u1", XPTotal: 450, Level: 3}

	s.LoadUserData(context.Background(), "u1")

	profile := s.Profile()
	assert.Equal(t, 450, profile.XP)
	assert.Equal(t, 3, profile.Level)
}

func TestLoadUserDataKeepsLocalOnFailure(t *testing.T) {
	s, stats, _, _, _ := newTestStore()
	stats.getErr = errors.New("network down")

	s.LoadUserData(context.Background(), "u1")

	profile := s.Profile()
	assert.Equal(t, 180, profile.XP)
	assert.Equal(t, 3, profile.Level)
}

func TestLoadUserDataInitializesMissingStats(t *testing.T) {
	s, stats, _, _, _ := newTestStore()

	s.LoadUserData(context.Background(), "u1")

	assert.True(t, stats.initDone)
	assert.Equal(t, 180, s.Profile().XP)
}

func TestLoadUserDataSettingsCacheFallback(t *testing.T) {
	s, _, settingsRepo, _, _ := newTestStore()
	ctx := context.Background()

	// First load succeeds remotely and caches the row.
	settingsRepo.settings = entities.NewUserSettings("u1")
	settingsRepo.getErr = nil
	s.LoadUserData(ctx, "u1")
	require.NotNil(t, s.Settings())

	// Second load fails remotely; the cached copy survives into a new store
	// sharing the same cache.
	settingsRepo.getErr = errors.New("network down")
	s2 := NewStore(&fakeStats{getErr: repository.ErrStatsNotFound}, settingsRepo, s.cache, &fakePusher{}, &fakeActivity{}, zap.NewNop())
	s2.LoadUserData(ctx, "u1")

	got := s2.Settings()
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, entities.ThemeDark, got.ThemePreference)
}

func TestUpdateSettingsFallsBackToCacheOnly(t *testing.T) {
	s, _, settingsRepo, c, _ := newTestStore()
	settingsRepo.upsertErr = errors.New("network down")

	settings := entities.NewUserSettings("u1")
	settings.NotificationsEnabled = true
	s.UpdateSettings(context.Background(), settings)

	assert.Contains(t, c.blobs, "userSettings")
	got := s.Settings()
	require.NotNil(t, got)
	assert.True(t, got.NotificationsEnabled)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, _, _, c, _ := newTestStore()
	ctx := context.Background()

	s.AddXP(ctx, 120)
	s.CompleteLesson(ctx, "l2")
	s.CompleteExercise(ctx, "e1", true)
	s.ToggleFavoriteWord(ctx, "w9")

	restored := NewStore(&fakeStats{}, &fakeSettingsRepo{}, c, &fakePusher{}, &fakeActivity{}, zap.NewNop())
	restored.Restore(ctx)

	assert.Equal(t, s.Profile(), restored.Profile())
	assert.Equal(t, s.FavoriteWords(), restored.FavoriteWords())
	assert.True(t, restored.IsLessonCompleted("l2"))
	assert.True(t, restored.IsExerciseCompleted("e1"))
	assert.Equal(t, s.Achievements(), restored.Achievements())
}

func TestRestoreWithEmptyCacheKeepsDefaults(t *testing.T) {
	s, _, _, _, _ := newTestStore()

	s.Restore(context.Background())

	assert.Equal(t, 180, s.Profile().XP)
	assert.Equal(t, "Invité", s.Profile().Pseudo)
}

func TestQCMExpertAchievement(t *testing.T) {
	s, _, _, _, _ := newTestStore()
	ctx := context.Background()

	// Break the run once, then complete ten correct in a row.
	s.CompleteExercise(ctx, "warmup", false)
	for i := 0; i < 10; i++ {
		s.CompleteExercise(ctx, "q"+string(rune('a'+i)), true)
	}

	var qcm entities.Achievement
	for _, a := range s.Achievements() {
		if a.ID == "a3" {
			qcm = a
		}
	}
	assert.True(t, qcm.Unlocked)
	assert.Equal(t, 10, qcm.Progress)
}

func TestCompleteExerciseRecordsAttempt(t *testing.T) {
	stats := &fakeStats{getErr: repository.ErrStatsNotFound}
	settings := &fakeSettingsRepo{getErr: repository.ErrSettingsNotFound}
	activity := &fakeActivity{}
	s := NewStore(stats, settings, newFakeCache(), &fakePusher{}, activity, zap.NewNop())
	ctx := context.Background()

	s.LoadUserData(ctx, "u1")
	s.CompleteExercise(ctx, "e1", true)
	s.CompleteExercise(ctx, "e1", true) // repeat: no second attempt row

	require.Len(t, activity.attempts, 1)
	assert.Equal(t, "u1", activity.attempts[0].UserID)
	assert.Equal(t, "e1", activity.attempts[0].ExerciseID)
}

func TestStartAndCompleteLessonRecordProgress(t *testing.T) {
	activity := &fakeActivity{}
	s := NewStore(&fakeStats{getErr: repository.ErrStatsNotFound}, &fakeSettingsRepo{getErr: repository.ErrSettingsNotFound}, newFakeCache(), &fakePusher{}, activity, zap.NewNop())
	ctx := context.Background()

	s.StartLesson(ctx, "l2")
	s.CompleteLesson(ctx, "l2")
	s.StartLesson(ctx, "l2") // already completed: no new in_progress row

	require.Len(t, activity.lessons, 2)
	assert.Equal(t, entities.LessonStatusInProgress, activity.lessons[0].Status)
	assert.Equal(t, entities.LessonStatusCompleted, activity.lessons[1].Status)
}

func TestActivityFailureDoesNotBlockMutation(t *testing.T) {
	activity := &fakeActivity{err: errors.New("store unreachable")}
	s := NewStore(&fakeStats{getErr: repository.ErrStatsNotFound}, &fakeSettingsRepo{getErr: repository.ErrSettingsNotFound}, newFakeCache(), &fakePusher{}, activity, zap.NewNop())
	ctx := context.Background()

	s.CompleteExercise(ctx, "e1", true)
	s.CompleteLesson(ctx, "l2")

	assert.True(t, s.IsExerciseCompleted("e1"))
	assert.True(t, s.IsLessonCompleted("l2"))
}

func ptr(t time.Time) *time.Time { return &t }
