package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shiftsync.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiftsync.yaml")
	cfg := DefaultConfig()
	cfg.Timezone = "America/Chicago"
	cfg.KnownKeys = []string{"Income", "Tips", "Mileage"}
	cfg.Refresh = "0 * * * *"

	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiftsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shifts_csv: out/ledger.csv\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "out/ledger.csv", cfg.ShiftsCSV)
	assert.Equal(t, DefaultHourlyCSV, cfg.HourlyCSV)
	assert.Equal(t, DefaultURLFile, cfg.URLFile)
	assert.Equal(t, []string{"Income", "Tips"}, cfg.KnownKeys)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Refresh)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiftsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("known_keys: [unterminated\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Timezone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestStageFileInvisibleUntilCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	f, err := StageFile(path, []byte("new"), 0o644)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	require.NoError(t, f.Commit())
	f.Discard()

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestStageFileDiscard(t *testing.T) {
	dir := t.TempDir()
	f, err := StageFile(filepath.Join(dir, "out.csv"), []byte("new"), 0o644)
	require.NoError(t, err)

	f.Discard()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
