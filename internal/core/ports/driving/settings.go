package driving

import "github.com/clearpath-labs/clearpath/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Set validates and persists one setting by key.
	Set(key, value string) error

	// Keys returns the recognised setting keys, sorted.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
