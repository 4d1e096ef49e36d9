package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yassirelk/darijalearn/internal/domain/entities"
)

var ErrSettingsNotFound = errors.New("settings not found")

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetByUserID retrieves settings by user ID.
// Returns ErrSettingsNotFound if the row doesn't exist.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID string) (*entities.UserSettings, error) {
	query := `
		SELECT user_id, theme_preference, notifications_enabled, push_token, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var settings entities.UserSettings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.ThemePreference,
		&settings.NotificationsEnabled,
		&settings.PushToken,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}

		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &settings, nil
}

// Upsert creates or updates the settings row.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *entities.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, theme_preference, notifications_enabled, push_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			theme_preference = excluded.theme_preference,
			notifications_enabled = excluded.notifications_enabled,
			push_token = excluded.push_token,
			updated_at = NOW()
	`

	_, err := r.db.Exec(
		ctx, query,
		settings.UserID,
		settings.ThemePreference,
		settings.NotificationsEnabled,
		settings.PushToken,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}

	return nil
}
