package backend

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{SQLiteBackend, true},
		{PostgresBackend, true},
		{BackendType("sheets"), false},
		{BackendType(""), false},
	}
	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.want {
			t.Errorf("BackendType(%q).IsValid() = %v, want %v", tt.bt, got, tt.want)
		}
	}
}

func TestBackendType_Dialect(t *testing.T) {
	if SQLiteBackend.Dialect() != storage.SQLite {
		t.Errorf("sqlite backend dialect = %v", SQLiteBackend.Dialect())
	}
	if PostgresBackend.Dialect() != storage.Postgres {
		t.Errorf("postgres backend dialect = %v", PostgresBackend.Dialect())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "sqlite ok", config: Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}},
		{name: "postgres ok", config: Config{Type: PostgresBackend, DatabaseURL: "postgres://localhost/db"}},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: "SQLite database path is required"},
		{name: "postgres without url", config: Config{Type: PostgresBackend}, wantErr: "database URL is required"},
		{name: "unknown type", config: Config{Type: "memory"}, wantErr: "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	app := &config.Config{DataBackend: "postgres", DatabaseURL: "postgres://db/fintrack", SQLiteDBPath: "ignored.db"}
	got, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != PostgresBackend || got.DatabaseURL != app.DatabaseURL {
		t.Errorf("FromAppConfig() = %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestDefaultFactory_CreateSQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "fintrack.db")
	factory := NewFactory(quietLogger())

	result, err := factory.CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer result.Cleanup()

	if result.Store.Dialect() != storage.SQLite {
		t.Errorf("store dialect = %v, want sqlite", result.Store.Dialect())
	}
	if err := result.Store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestDefaultFactory_RejectsInvalidConfig(t *testing.T) {
	factory := NewFactory(quietLogger())
	if _, err := factory.CreateBackend(context.Background(), Config{Type: PostgresBackend}); err == nil {
		t.Fatal("expected error for postgres backend without url")
	}
}
