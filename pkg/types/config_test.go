package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", SQLitePath: "/tmp/cases.db"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", SQLitePath: "/tmp/cases.db"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid local config",
			config: Config{Backend: BackendLocal, SQLitePath: "/tmp/cases.db"},
		},
		{
			name:    "local without path returns ErrSQLitePathEmpty",
			config:  Config{Backend: BackendLocal},
			wantErr: ErrSQLitePathEmpty,
		},
		{
			name:   "valid remote config",
			config: Config{Backend: BackendRemote, RemoteURL: "http://localhost:5050/"},
		},
		{
			name:    "remote without URL returns ErrRemoteURLEmpty",
			config:  Config{Backend: BackendRemote, SQLitePath: "/tmp/cases.db"},
			wantErr: ErrRemoteURLEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
