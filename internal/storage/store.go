package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"fintrack/internal/log"
)

// Store owns the connection pool and hands out sessions.
type Store struct {
	db      *sql.DB
	dialect Dialect
	queries *Queries
	now     func() time.Time
}

// Open connects to the database, verifies the connection and applies
// pending migrations.
func Open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("unsupported dialect: %s", d)
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentStorage).InfoContext(ctx, "Database ready", log.FieldDialect, d.String())

	return &Store{
		db:      db,
		dialect: d,
		queries: New(db, d),
		now:     time.Now,
	}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return Open(ctx, SQLite, SQLiteDSN(dbPath))
}

// Session starts a new unit of work. The caller must Close it.
func (s *Store) Session() *SQLSession {
	return &SQLSession{store: s}
}

// OpenSession is Session for callers that only know ScopedSession.
func (s *Store) OpenSession() ScopedSession {
	return s.Session()
}

func (s *Store) Queries() *Queries {
	return s.queries
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
