package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for a driver name it does not know.
var ErrUnknownDriver = errors.New("store: unknown driver")

// Store is the SQL data access layer for the file usage graph: the
// file_edges table and the files registry mapping fingerprints to paths.
type Store struct {
	db      *sql.DB
	dialect *dialect
}

// Open opens a store for driver. For sqlite dsn is a file path; for postgres
// it is a connection string.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, "sqlite3", "":
		return NewStore(dsn)
	case DriverPostgres, "pgx":
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, driver)
	}
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, dialect: sqliteDialect}, nil
}

// NewPostgres opens a PostgreSQL database through the pgx stdlib driver.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, dialect: postgresDialect}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns DriverSQLite or DriverPostgres.
func (s *Store) Driver() string {
	return s.dialect.name
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	return s.MigrateContext(context.Background())
}

// MigrateContext is Migrate with a context.
func (s *Store) MigrateContext(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// dialect holds what differs between the SQL backends. Fingerprints and edge
// IDs are unsigned 64-bit values; both dialects store them as decimal text on
// the wire so they never pass through a signed integer.
type dialect struct {
	name string
	ddl  string

	// num wraps a placeholder so the database receives it as a u64 column
	// value; col renders a u64 column back as decimal text.
	num func(placeholder string) string
	col func(column string) string

	positional bool // $1, $2, ... instead of ?
}

var sqliteDialect = &dialect{
	name: DriverSQLite,
	ddl:  sqliteDDL,
	num:  func(p string) string { return p },
	col:  func(c string) string { return c },
}

var postgresDialect = &dialect{
	name:       DriverPostgres,
	ddl:        postgresDDL,
	num:        func(p string) string { return p + "::text::numeric(20,0)" },
	col:        func(c string) string { return c + "::text" },
	positional: true,
}

// SQLite integers are signed 64-bit, so u64 values live in TEXT columns.
const sqliteDDL = `
CREATE TABLE IF NOT EXISTS file_edges (
  id          TEXT PRIMARY KEY,
  from_file   TEXT NOT NULL,
  to_file     TEXT NOT NULL,
  kind        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_file_edges_from ON file_edges(from_file);
CREATE INDEX IF NOT EXISTS idx_file_edges_to ON file_edges(to_file);

CREATE TABLE IF NOT EXISTS files (
  fingerprint TEXT PRIMARY KEY,
  path        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
`

const postgresDDL = `
CREATE TABLE IF NOT EXISTS file_edges (
  id          numeric(20,0) PRIMARY KEY,
  from_file   numeric(20,0) NOT NULL,
  to_file     numeric(20,0) NOT NULL,
  kind        smallint NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_file_edges_from ON file_edges(from_file);
CREATE INDEX IF NOT EXISTS idx_file_edges_to ON file_edges(to_file);

CREATE TABLE IF NOT EXISTS files (
  fingerprint numeric(20,0) PRIMARY KEY,
  path        text NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
`
