// Package prefs holds the two widget toggles and their persistence.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/swelljoe/wthr-widget/internal/logger"
)

// Storage keys, one per toggle. Values are JSON booleans.
const (
	DarkModeKey = "weatherapp-darkmode"
	SoundKey    = "weatherapp-sound"
)

// Preferences is an immutable pair of toggles. Toggle methods return a new value.
type Preferences struct {
	DarkMode bool `json:"dark_mode"`
	SoundOn  bool `json:"sound_on"`
}

// Defaults apply to every key that has never been stored.
func Defaults() Preferences {
	return Preferences{DarkMode: false, SoundOn: true}
}

func (p Preferences) ToggleDarkMode() Preferences {
	p.DarkMode = !p.DarkMode
	return p
}

func (p Preferences) ToggleSound() Preferences {
	p.SoundOn = !p.SoundOn
	return p
}

// Store is a string key/value store partitioned by scope (one scope per visitor).
type Store interface {
	// GetPreference returns ok=false when the key was never set.
	GetPreference(ctx context.Context, scope, key string) (value string, ok bool, err error)
	SetPreference(ctx context.Context, scope, key, value string) error
}

// Load reads both toggles for scope. Missing or malformed entries fall back
// to their default independently.
func Load(ctx context.Context, store Store, scope string) (Preferences, error) {
	p := Defaults()

	dark, err := loadBool(ctx, store, scope, DarkModeKey, p.DarkMode)
	if err != nil {
		return Defaults(), err
	}
	sound, err := loadBool(ctx, store, scope, SoundKey, p.SoundOn)
	if err != nil {
		return Defaults(), err
	}

	p.DarkMode = dark
	p.SoundOn = sound
	return p, nil
}

func loadBool(ctx context.Context, store Store, scope, key string, def bool) (bool, error) {
	raw, ok, err := store.GetPreference(ctx, scope, key)
	if err != nil {
		return def, fmt.Errorf("read preference %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}

	var v bool
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logger.GetLogger().Warnw("Ignoring malformed preference",
			"scope", scope,
			"key", key,
			"value", raw,
			"error", err,
		)
		return def, nil
	}
	return v, nil
}

// Save writes both toggles for scope.
func Save(ctx context.Context, store Store, scope string, p Preferences) error {
	if err := saveBool(ctx, store, scope, DarkModeKey, p.DarkMode); err != nil {
		return err
	}
	return saveBool(ctx, store, scope, SoundKey, p.SoundOn)
}

func saveBool(ctx context.Context, store Store, scope, key string, v bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := store.SetPreference(ctx, scope, key, string(data)); err != nil {
		return fmt.Errorf("write preference %s: %w", key, err)
	}
	return nil
}
