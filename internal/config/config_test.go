package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

func load(t *testing.T, yamlBody string) (*Loader, string) {
	t.Helper()
	cfgDir := filepath.Join(t.TempDir(), "cfg")
	if yamlBody != "" {
		require.NoError(t, os.MkdirAll(cfgDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(yamlBody), 0o644))
	}
	dataDir := filepath.Join(t.TempDir(), "data")
	l, err := Load(cfgDir, dataDir)
	require.NoError(t, err)
	return l, dataDir
}

func TestLoadWritesDefaultFile(t *testing.T) {
	l, dataDir := load(t, "")

	body, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(body), "use_remote: true")
	assert.Contains(t, string(body), "timeout: 5s")
	assert.NotContains(t, string(body), dataDir)

	s, err := l.Settings()
	require.NoError(t, err)
	assert.True(t, s.Migration.UseRemote)
	assert.Equal(t, "http://localhost:5050/", s.Remote.BaseURL)
	assert.Equal(t, 5*time.Second, s.Remote.Timeout)
	assert.Equal(t, filepath.Join(dataDir, LocalDBName), s.Data.SQLitePath)
	assert.Equal(t, filepath.Join(dataDir, ServerDBName), s.Server.SQLitePath)
	assert.Equal(t, ":5050", s.Server.Addr)
	assert.Equal(t, StoreSQLite, s.Server.Store)
	assert.Equal(t, []string{"*"}, s.Server.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, s.LogLevel())
}

func TestLoadKeepsExistingFile(t *testing.T) {
	l, _ := load(t, "migration:\n  use_remote: false\ndata:\n  sqlite_path: /srv/cases.db\nremote:\n  timeout: 750ms\n")

	body, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(body), "use_remote: false")

	s, err := l.Settings()
	require.NoError(t, err)
	assert.Equal(t, types.Config{
		Backend:       types.BackendLocal,
		SQLitePath:    "/srv/cases.db",
		RemoteURL:     "http://localhost:5050/",
		RemoteTimeout: 750 * time.Millisecond,
	}, s.Gateway())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CASESEAM_MIGRATION_USE_REMOTE", "false")
	t.Setenv("CASESEAM_REMOTE_BASE_URL", "https://cases.example/api/")
	t.Setenv("CASESEAM_SERVER_STORE", "memory")
	t.Setenv("CASESEAM_LOG_LEVEL", "debug")

	l, _ := load(t, "server:\n  store: sqlite\n")
	s, err := l.Settings()
	require.NoError(t, err)
	assert.False(t, s.Migration.UseRemote)
	assert.Equal(t, "https://cases.example/api/", s.Remote.BaseURL)
	assert.Equal(t, StoreMemory, s.Server.Store)
	assert.Equal(t, slog.LevelDebug, s.LogLevel())
}

func TestFlagOverrides(t *testing.T) {
	t.Setenv("CASESEAM_SERVER_ADDR", ":7000")
	l, _ := load(t, "")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":5050", "")
	fs.String("store", "sqlite", "")
	require.NoError(t, l.BindFlag(KeyServerAddr, fs.Lookup("addr")))
	require.NoError(t, l.BindFlag(KeyServerStore, fs.Lookup("store")))
	assert.Error(t, l.BindFlag(KeyLogLevel, fs.Lookup("missing")))

	// Unset flags do not shadow the environment.
	s, err := l.Settings()
	require.NoError(t, err)
	assert.Equal(t, ":7000", s.Server.Addr)

	require.NoError(t, fs.Parse([]string{"--addr", ":9000", "--store", "memory"}))
	s, err = l.Settings()
	require.NoError(t, err)
	assert.Equal(t, ":9000", s.Server.Addr)
	assert.Equal(t, StoreMemory, s.Server.Store)
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"defaults", func(*Settings) {}, nil},
		{"memory store", func(s *Settings) { s.Server.Store = StoreMemory }, nil},
		{"postgres with dsn", func(s *Settings) {
			s.Server.Store = StorePostgres
			s.Server.PostgresDSN = "postgres://localhost/cases"
		}, nil},
		{"postgres without dsn", func(s *Settings) { s.Server.Store = StorePostgres }, ErrPostgresDSN},
		{"unknown store", func(s *Settings) { s.Server.Store = "mongo" }, ErrUnknownStore},
		{"bad log level", func(s *Settings) { s.Log.Level = "chatty" }, ErrUnknownLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestInvalidFileFailsLoad(t *testing.T) {
	cfgDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("server: [unclosed"), 0o644))
	_, err := Load(cfgDir, t.TempDir())
	assert.Error(t, err)
}
