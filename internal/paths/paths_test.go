package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform swaps the platform hooks for the duration of a test.
func fakePlatform(t *testing.T, goos, home, userConfig string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		xdgConfig  string
		xdgData    string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux with XDG",
			goos:       "linux",
			xdgConfig:  "/xdg/config",
			xdgData:    "/xdg/data",
			wantConfig: "/xdg/config/caseseam",
			wantData:   "/xdg/data/caseseam",
		},
		{
			name:       "linux without XDG",
			goos:       "linux",
			wantConfig: "/home/u/.config/caseseam",
			wantData:   "/home/u/.local/share/caseseam",
		},
		{
			name:       "darwin",
			goos:       "darwin",
			xdgConfig:  "/ignored",
			wantConfig: "/home/u/Library/Application Support/caseseam",
			wantData:   "/home/u/Library/Application Support/caseseam",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, tt.goos, "/home/u", "/home/u/Library/Application Support")
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			t.Setenv("XDG_DATA_HOME", tt.xdgData)

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantConfig), got)

			got, err = DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantData), got)
		})
	}
}

func TestDefaultDirHomeError(t *testing.T) {
	fakePlatform(t, "linux", "", "")
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	t.Setenv("XDG_CONFIG_HOME", "")

	_, err := DefaultConfigDir()
	assert.EqualError(t, err, "no home")
}

func TestResolve(t *testing.T) {
	fakePlatform(t, "linux", "/home/u", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		name    string
		resolve func(string) (string, error)
		env     string
		flag    string
		envVal  string
		want    string
	}{
		{"config flag wins", ResolveConfigDir, EnvConfigDir, "/flag/cfg", "/env/cfg", "/flag/cfg"},
		{"config env", ResolveConfigDir, EnvConfigDir, "", "/env/cfg", "/env/cfg"},
		{"config default", ResolveConfigDir, EnvConfigDir, "", "", "/home/u/.config/caseseam"},
		{"data flag wins", ResolveDataDir, EnvDataDir, "/flag/data", "/env/data", "/flag/data"},
		{"data env", ResolveDataDir, EnvDataDir, "", "/env/data", "/env/data"},
		{"data default", ResolveDataDir, EnvDataDir, "", "", "/home/u/.local/share/caseseam"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.envVal)
			got, err := tt.resolve(tt.flag)
			require.NoError(t, err)
			want, err := filepath.Abs(filepath.FromSlash(tt.want))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("relative flag is made absolute", func(t *testing.T) {
		got, err := ResolveDataDir("rel/dir")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
		assert.Equal(t, "dir", filepath.Base(got))
	})
}
