package types

import (
	"errors"
	"time"
)

// Config selects the backend behind the CaseGateway seam and carries its
// parameters. Only the fields of the selected backend are read.
type Config struct {
	Backend       string        `json:"backend" yaml:"backend"`
	SQLitePath    string        `json:"sqlite_path" yaml:"sqlite_path"`
	RemoteURL     string        `json:"remote_url" yaml:"remote_url"`
	RemoteTimeout time.Duration `json:"remote_timeout" yaml:"remote_timeout"`
}

// Supported backend names.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// DefaultRemoteTimeout bounds each request made by the remote backend.
const DefaultRemoteTimeout = 5 * time.Second

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrSQLitePathEmpty = errors.New("local backend requires a sqlite path")
	ErrRemoteURLEmpty  = errors.New("remote backend requires a base URL")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendLocal:  true,
	BackendRemote: true,
}

// Validate checks that the Config names a known backend and carries the
// parameter that backend needs.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Backend {
	case BackendLocal:
		if c.SQLitePath == "" {
			return ErrSQLitePathEmpty
		}
	case BackendRemote:
		if c.RemoteURL == "" {
			return ErrRemoteURLEmpty
		}
	}
	return nil
}
