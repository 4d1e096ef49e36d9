package entities

import "time"

// UserStats mirrors the remote user_stats row. The remote side is authoritative
// for XP totals once loaded; local optimistic values stand until then.
type UserStats struct {
	UserID    string
	XPTotal   int
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ThemePreference values accepted by the settings row.
const (
	ThemeDark   = "dark"
	ThemeLight  = "light"
	ThemeSystem = "system"
)

// UserSettings stores per-user preferences mirrored from the remote store
// with a local cache fallback.
type UserSettings struct {
	UserID               string    `json:"user_id"`
	ThemePreference      string    `json:"theme_preference"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	PushToken            *string   `json:"push_token,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewUserSettings creates a settings row with default values.
func NewUserSettings(userID string) *UserSettings {
	now := time.Now()
	return &UserSettings{
		UserID:               userID,
		ThemePreference:      ThemeDark,
		NotificationsEnabled: false,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}
