package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	prefsKeyPrefix = "session:prefs:"
	prefsTTL       = 30 * 24 * time.Hour
)

// Preferences holds a visitor's locale choices, keyed by session ID.
type Preferences struct {
	Language string `json:"language"`
	Currency string `json:"currency"`
}

// PreferenceRepository stores per-session locale and currency preferences.
type PreferenceRepository struct {
	client          *goredis.Client
	defaultLanguage string
	defaultCurrency string
}

// NewPreferenceRepository creates a PreferenceRepository with fallback defaults.
func NewPreferenceRepository(client *goredis.Client, defaultLanguage, defaultCurrency string) *PreferenceRepository {
	return &PreferenceRepository{
		client:          client,
		defaultLanguage: defaultLanguage,
		defaultCurrency: defaultCurrency,
	}
}

// Defaults returns the configured fallback preferences.
func (r *PreferenceRepository) Defaults() Preferences {
	return Preferences{Language: r.defaultLanguage, Currency: r.defaultCurrency}
}

// Get returns the session's preferences, falling back to defaults when the
// session is unknown or expired.
func (r *PreferenceRepository) Get(ctx context.Context, sessionID string) (Preferences, error) {
	prefs := Preferences{Language: r.defaultLanguage, Currency: r.defaultCurrency}

	data, err := r.client.Get(ctx, prefsKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return prefs, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return prefs, nil
}

func (r *PreferenceRepository) set(ctx context.Context, sessionID string, prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := r.client.Set(ctx, prefsKeyPrefix+sessionID, data, prefsTTL).Err(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// SetLanguage updates the session's language preference.
func (r *PreferenceRepository) SetLanguage(ctx context.Context, sessionID, language string) error {
	prefs, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	prefs.Language = language
	return r.set(ctx, sessionID, prefs)
}

// SetCurrency updates the session's currency preference.
func (r *PreferenceRepository) SetCurrency(ctx context.Context, sessionID, currency string) error {
	prefs, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	prefs.Currency = currency
	return r.set(ctx, sessionID, prefs)
}
