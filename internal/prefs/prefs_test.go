package prefs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swelljoe/wthr-widget/internal/logger"
)

func init() {
	logger.IsTest = true
}

type memoryStore struct {
	values  map[string]string
	readErr error
	setErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) GetPreference(_ context.Context, scope, key string) (string, bool, error) {
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.values[scope+"/"+key]
	return v, ok, nil
}

func (m *memoryStore) SetPreference(_ context.Context, scope, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[scope+"/"+key] = value
	return nil
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, Preferences{DarkMode: false, SoundOn: true}, Defaults())
}

func TestLoadWithoutStoredValues(t *testing.T) {
	p, err := Load(context.Background(), newMemoryStore(), "visitor")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, dark := range []bool{false, true} {
		for _, sound := range []bool{false, true} {
			want := Preferences{DarkMode: dark, SoundOn: sound}
			t.Run(fmt.Sprintf("dark=%v,sound=%v", dark, sound), func(t *testing.T) {
				store := newMemoryStore()
				ctx := context.Background()

				require.NoError(t, Save(ctx, store, "visitor", want))
				got, err := Load(ctx, store, "visitor")
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestSaveWritesJSONBooleans(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, Save(context.Background(), store, "v", Preferences{DarkMode: true, SoundOn: false}))

	assert.Equal(t, "true", store.values["v/"+DarkModeKey])
	assert.Equal(t, "false", store.values["v/"+SoundKey])
}

func TestLoadScopesAreIndependent(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()
	require.NoError(t, Save(ctx, store, "a", Preferences{DarkMode: true, SoundOn: false}))

	got, err := Load(ctx, store, "b")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestLoadKeysAreIndependent(t *testing.T) {
	store := newMemoryStore()
	store.values["v/"+DarkModeKey] = "true"

	got, err := Load(context.Background(), store, "v")
	require.NoError(t, err)
	assert.Equal(t, Preferences{DarkMode: true, SoundOn: true}, got)
}

func TestLoadMalformedValueFallsBack(t *testing.T) {
	store := newMemoryStore()
	store.values["v/"+DarkModeKey] = "yes please"
	store.values["v/"+SoundKey] = "false"

	got, err := Load(context.Background(), store, "v")
	require.NoError(t, err)
	assert.Equal(t, Preferences{DarkMode: false, SoundOn: false}, got)
}

func TestLoadStoreError(t *testing.T) {
	store := newMemoryStore()
	store.readErr = errors.New("disk on fire")

	got, err := Load(context.Background(), store, "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), DarkModeKey)
	assert.Equal(t, Defaults(), got)
}

func TestSaveStoreError(t *testing.T) {
	store := newMemoryStore()
	store.setErr = errors.New("read-only")

	err := Save(context.Background(), store, "v", Defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestToggles(t *testing.T) {
	p := Defaults()

	dark := p.ToggleDarkMode()
	assert.True(t, dark.DarkMode)
	assert.False(t, p.DarkMode, "toggle must not mutate the receiver")

	muted := p.ToggleSound()
	assert.False(t, muted.SoundOn)
	assert.True(t, p.SoundOn)

	assert.Equal(t, p, p.ToggleDarkMode().ToggleDarkMode())
}
