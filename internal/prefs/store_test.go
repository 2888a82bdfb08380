package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKeyReturnsEmpty(t *testing.T) {
	s := openStore(t)

	value, err := s.Get(context.Background(), KeyAudio)
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSetAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAudio, AudioMuted))

	value, err := s.Get(ctx, KeyAudio)
	require.NoError(t, err)
	assert.Equal(t, AudioMuted, value)
}

func TestSetOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAudio, AudioMuted))
	require.NoError(t, s.Set(ctx, KeyAudio, AudioUnmuted))

	value, err := s.Get(ctx, KeyAudio)
	require.NoError(t, err)
	assert.Equal(t, AudioUnmuted, value)
}

func TestKeysAreIndependent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAudio, AudioMuted))
	require.NoError(t, s.Set(ctx, "theme", "dark"))

	audio, err := s.Get(ctx, KeyAudio)
	require.NoError(t, err)
	theme, err := s.Get(ctx, "theme")
	require.NoError(t, err)

	assert.Equal(t, AudioMuted, audio)
	assert.Equal(t, "dark", theme)
}
