package cooldownstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")
	store := New(path)

	end := time.Date(2025, 11, 7, 12, 24, 19, 0, time.UTC)
	require.NoError(t, store.Save(end))

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(end))
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "cooldown.json"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "missing file means no cooldown known")
}

func TestStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	store := New(path)

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store := New(path)

	got, err := store.Load()
	require.NoError(t, err, "corrupt file must not crash the bot")
	assert.True(t, got.IsZero())
}

func TestStore_LoadUnparsableTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cooldown_end":"yesterday-ish"}`), 0o600))
	store := New(path)

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestStore_SaveZeroClearsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")
	store := New(path)

	require.NoError(t, store.Save(time.Now().Add(time.Hour)))
	require.NoError(t, store.Save(time.Time{}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	// The file still exists and holds an empty record, not a null blob.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(content))
}

func TestStore_SaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")
	store := New(path)

	first := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	second := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(second))
}
