// Package config loads caseseam settings with Viper: config.yaml in the
// config directory (written with defaults on first run), CASESEAM_*
// environment variables, and bound command-line flags, in rising order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "CASESEAM"
)

// Config keys.
const (
	KeyUseRemote        = "migration.use_remote"
	KeyRemoteURL        = "remote.base_url"
	KeyRemoteTimeout    = "remote.timeout"
	KeySQLitePath       = "data.sqlite_path"
	KeyServerAddr       = "server.addr"
	KeyServerStore      = "server.store"
	KeyServerSQLitePath = "server.sqlite_path"
	KeyServerDSN        = "server.postgres_dsn"
	KeyServerCORS       = "server.cors_origins"
	KeyLogLevel         = "log.level"
)

// Stores the API server can run on.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Default database file names inside the data directory.
const (
	LocalDBName  = "caseseam.db"
	ServerDBName = "caseseam-api.db"
)

// Settings validation errors.
var (
	ErrUnknownStore    = errors.New("server.store must be sqlite, postgres, or memory")
	ErrPostgresDSN     = errors.New("server.store postgres requires server.postgres_dsn")
	ErrUnknownLogLevel = errors.New("log.level must be debug, info, warn, or error")
)

// Settings is the decoded configuration.
type Settings struct {
	Migration struct {
		UseRemote bool `mapstructure:"use_remote" yaml:"use_remote"`
	} `mapstructure:"migration" yaml:"migration"`
	Remote struct {
		BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	} `mapstructure:"remote" yaml:"remote"`
	Data struct {
		SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path,omitempty"`
	} `mapstructure:"data" yaml:"data"`
	Server struct {
		Addr        string   `mapstructure:"addr" yaml:"addr"`
		Store       string   `mapstructure:"store" yaml:"store"`
		SQLitePath  string   `mapstructure:"sqlite_path" yaml:"sqlite_path,omitempty"`
		PostgresDSN string   `mapstructure:"postgres_dsn" yaml:"postgres_dsn,omitempty"`
		CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	} `mapstructure:"server" yaml:"server"`
	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
}

// Defaults returns the settings used when nothing overrides them. Paths
// are left empty; Settings derives them from the data directory.
func Defaults() Settings {
	var s Settings
	s.Migration.UseRemote = true
	s.Remote.BaseURL = "http://localhost:5050/"
	s.Remote.Timeout = types.DefaultRemoteTimeout
	s.Server.Addr = ":5050"
	s.Server.Store = StoreSQLite
	s.Server.CORSOrigins = []string{"*"}
	s.Log.Level = "info"
	return s
}

// Gateway returns the seam configuration the client opens.
func (s Settings) Gateway() types.Config {
	cfg := types.Config{
		Backend:       types.BackendLocal,
		SQLitePath:    s.Data.SQLitePath,
		RemoteURL:     s.Remote.BaseURL,
		RemoteTimeout: s.Remote.Timeout,
	}
	if s.Migration.UseRemote {
		cfg.Backend = types.BackendRemote
	}
	return cfg
}

// LogLevel returns the slog level named by log.level.
func (s Settings) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Validate checks the server and logging settings. Client backend
// settings are checked by types.Config.Validate when the gateway opens.
func (s Settings) Validate() error {
	switch s.Server.Store {
	case StoreSQLite, StoreMemory:
	case StorePostgres:
		if s.Server.PostgresDSN == "" {
			return ErrPostgresDSN
		}
	default:
		return fmt.Errorf("%w (got %q)", ErrUnknownStore, s.Server.Store)
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return fmt.Errorf("%w (got %q)", ErrUnknownLogLevel, s.Log.Level)
	}
	return nil
}

// Loader holds a Viper instance read from one config directory.
type Loader struct {
	v       *viper.Viper
	dataDir string
	path    string
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. dataDir anchors the default database paths.
func Load(configDir, dataDir string) (*Loader, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	path := filepath.Join(configDir, configFileExt)
	if err := ensureDefaultConfigFile(path); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return &Loader{v: v, dataDir: dataDir, path: path}, nil
}

// Path returns the config file location.
func (l *Loader) Path() string { return l.path }

// BindFlag makes a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, f *pflag.Flag) error {
	if f == nil {
		return fmt.Errorf("bind %s: no such flag", key)
	}
	return l.v.BindPFlag(key, f)
}

// Settings decodes and validates the effective configuration.
func (l *Loader) Settings() (Settings, error) {
	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if s.Data.SQLitePath == "" {
		s.Data.SQLitePath = filepath.Join(l.dataDir, LocalDBName)
	}
	if s.Server.SQLitePath == "" {
		s.Server.SQLitePath = filepath.Join(l.dataDir, ServerDBName)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyUseRemote, d.Migration.UseRemote)
	v.SetDefault(KeyRemoteURL, d.Remote.BaseURL)
	v.SetDefault(KeyRemoteTimeout, d.Remote.Timeout)
	v.SetDefault(KeySQLitePath, "")
	v.SetDefault(KeyServerAddr, d.Server.Addr)
	v.SetDefault(KeyServerStore, d.Server.Store)
	v.SetDefault(KeyServerSQLitePath, "")
	v.SetDefault(KeyServerDSN, "")
	v.SetDefault(KeyServerCORS, d.Server.CORSOrigins)
	v.SetDefault(KeyLogLevel, d.Log.Level)
}

// ensureDefaultConfigFile writes the defaults to path unless it exists.
func ensureDefaultConfigFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	body, err := yaml.Marshal(Defaults())
	if err != nil {
		return err
	}
	header := "# caseseam configuration. Environment variables CASESEAM_<SECTION>_<KEY>\n" +
		"# override these values; database paths default to the data directory.\n"
	return os.WriteFile(path, append([]byte(header), body...), 0o644)
}

// Marshal renders s as YAML.
func Marshal(s Settings) ([]byte, error) {
	return yaml.Marshal(s)
}
