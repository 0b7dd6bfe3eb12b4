package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, format validation and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing base URL.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Malformed base URL.
	cfg = &Config{
		APIBaseURL: "not a url",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay, defaults filled.
	cfg = &Config{
		APIBaseURL: "https://prolocklogger.pro/api",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultJournalFilename, cfg.JournalPath)
	require.Equal(t, DefaultStateFilename, cfg.StatePath)
	require.Equal(t, DefaultStationName, cfg.StationName)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		APIBaseURL:  "https://prolocklogger.pro/api",
		StationName: "lab-204-door",
		JournalPath: filepath.Join(dir, "journal.db"),
		Timeout:     3 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.APIBaseURL, loaded.APIBaseURL)
	require.Equal(t, cfg.StationName, loaded.StationName)
	require.Equal(t, cfg.JournalPath, loaded.JournalPath)
	require.Equal(t, cfg.Timeout, loaded.Timeout)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}
