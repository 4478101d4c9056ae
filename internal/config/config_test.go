package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("EMBEDDINGS_ENABLED", "")
	t.Setenv("WORKERS", "")
	t.Setenv("FILE_DRIVER", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, DriverLocal, cfg.FileDriver)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenTTL)
	assert.False(t, cfg.EmbeddingsEnabled)
	assert.Contains(t, cfg.Database.DSN(), "dbname=talentdesk")
}

func TestLoadServerErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown storage", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"s3 without bucket", map[string]string{"FILE_DRIVER": "s3", "AWS_BUCKET": ""}},
		{"bad workers", map[string]string{"WORKERS": "many"}},
		{"zero workers", map[string]string{"WORKERS": "0"}},
		{"bad ttl", map[string]string{"ACCESS_TOKEN_TTL": "forever"}},
		{"embeddings without key", map[string]string{"EMBEDDINGS_ENABLED": "true", "OPENAI_API_KEY": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadServer()
			assert.Error(t, err)
		})
	}
}

func TestLoadCLIMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ATS_API_BASE_URL", "")
	t.Setenv("ATSCTL_DATA_SOURCE", "")
	dir := t.TempDir()

	cfg, err := LoadCLI(filepath.Join(dir, "atsctl.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, SourceRemote, cfg.DataSource)
	assert.Equal(t, 3*time.Second, cfg.Reconnect.Interval)
	assert.Equal(t, 5, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, filepath.Join(dir, "prefs.json"), cfg.PrefsPath)
}

func TestLoadCLIFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atsctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://ats.example.com/
data_source: fixture
timeout: 10s
reconnect:
  interval: 1s
  max_attempts: 2
`), 0o600))

	t.Setenv("ATS_API_BASE_URL", "")
	t.Setenv("ATSCTL_DATA_SOURCE", "")
	cfg, err := LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, "https://ats.example.com", cfg.BaseURL)
	assert.Equal(t, SourceFixture, cfg.DataSource)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, time.Second, cfg.Reconnect.Interval)
	assert.Equal(t, 2, cfg.Reconnect.MaxAttempts)

	t.Setenv("ATS_API_BASE_URL", "http://10.0.0.5:9000")
	t.Setenv("ATSCTL_DATA_SOURCE", "REMOTE")
	cfg, err = LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.BaseURL)
	assert.Equal(t, SourceRemote, cfg.DataSource)
}

func TestLoadCLIValidation(t *testing.T) {
	tests := map[string]string{
		"unknown source": "data_source: carrier-pigeon\n",
		"bad url":        "base_url: localhost:8000\n",
		"broken yaml":    "base_url: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ATS_API_BASE_URL", "")
			t.Setenv("ATSCTL_DATA_SOURCE", "")
			path := filepath.Join(t.TempDir(), "atsctl.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadCLI(path)
			assert.Error(t, err)
		})
	}
}
