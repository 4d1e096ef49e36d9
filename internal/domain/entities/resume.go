package entities

import "time"

// Route names the screens the resume logic can land on.
type Route string

const (
	RouteRandomExercise Route = "/exercise/random"
	RouteLessonDetail   Route = "/lesson"
	RouteExercisesList  Route = "/exercises"
)

// Destination is where the app navigates on launch to continue prior activity.
type Destination struct {
	Route    Route
	LessonID string // set for RouteLessonDetail
	// ResumeExerciseID hints which exercise a random session should start from.
	ResumeExerciseID string
}

// FallbackDestination is returned when no recent activity exists or the
// activity queries fail.
func FallbackDestination() Destination {
	return Destination{Route: RouteExercisesList}
}

// ExerciseAttempt is a row from the remote attempt history.
type ExerciseAttempt struct {
	UserID      string
	ExerciseID  string
	AttemptedAt time.Time
}

// LessonProgress statuses stored remotely.
const (
	LessonStatusInProgress = "in_progress"
	LessonStatusCompleted  = "completed"
)

// LessonProgress is a row from the remote per-lesson progress table.
type LessonProgress struct {
	UserID    string
	LessonID  string
	Status    string
	StartedAt time.Time
}
