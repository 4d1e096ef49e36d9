package entities

import "time"

// Profile holds the user's progression state shown across the app.
type Profile struct {
	Pseudo             string     `json:"pseudo"`
	XP                 int        `json:"xp"`
	Level              int        `json:"level"` // derived from XP, never set directly
	Streak             int        `json:"streak"` // consecutive active days
	Accuracy           int        `json:"accuracy"` // percentage 0-100
	CompletedLessons   int        `json:"completedLessons"`
	TotalLessons       int        `json:"totalLessons"`
	CompletedExercises int        `json:"completedExercises"`
	TotalExercises     int        `json:"totalExercises"`
	StudyTimeMinutes   int        `json:"studyTimeMinutes"`
	LastActivityAt     *time.Time `json:"lastActivityAt,omitempty"` // drives streak decay
}

// NewGuestProfile returns the seed profile used before any remote data is loaded.
func NewGuestProfile() *Profile {
	return &Profile{
		Pseudo:             "Invité",
		XP:                 180,
		Level:              3,
		Streak:             7,
		Accuracy:           85,
		CompletedLessons:   1,
		TotalLessons:       3,
		CompletedExercises: 6,
		TotalExercises:     10,
		StudyTimeMinutes:   145,
	}
}

// Achievement represents a single unlockable badge.
// Unlocking is one-directional: an unlocked achievement is never re-locked.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress,omitempty"` // meaningful only when MaxProgress > 0
	MaxProgress int    `json:"maxProgress,omitempty"`
}

// Unlock marks the achievement as unlocked. No-op if already unlocked.
func (a *Achievement) Unlock() {
	a.Unlocked = true
}

// SeedAchievements returns the default achievement list for a fresh profile.
func SeedAchievements() []Achievement {
	return []Achievement{
		{
			ID:          "a1",
			Title:       "Premier Pas",
			Description: "Complète ta première leçon",
			Icon:        "award",
			Unlocked:    true,
		},
		{
			ID:          "a2",
			Title:       "Série de 7",
			Description: "Maintiens une série de 7 jours",
			Icon:        "flame",
			Unlocked:    true,
		},
		{
			ID:          "a3",
			Title:       "Expert QCM",
			Description: "Réussis 10 exercices consécutifs",
			Icon:        "target",
			Unlocked:    false,
			Progress:    6,
			MaxProgress: 10,
		},
	}
}
