// Package database provides the relational topic/author store for go-topics
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" driver
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite3  = "sqlite3"
	DriverPostgres = "postgres"
)

// Database wraps the sql connection pool of the topic store
type Database struct {
	mainDB *sql.DB

	// Database configuration
	dbconfig *DBConfig

	mux      sync.RWMutex
	shutdown bool
}

// DBConfig represents database configuration
type DBConfig struct {
	Driver string // sqlite3 or postgres
	DSN    string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// SQLite performance settings
	SyncMode  string // OFF, NORMAL, FULL
	CacheSize int    // negative: KiB
	TempStore string // MEMORY, FILE
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Driver:          DriverSQLite3,
		DSN:             "file:data/topics.sq3?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 0, // sqlite connections don't need to be recycled
		SyncMode:        "NORMAL",
		CacheSize:       -16384, // 16MB
		TempStore:       "MEMORY",
	}
}

// sqlDriverName maps the configured driver to the registered database/sql driver
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverSQLite3:
		return "sqlite3", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenDatabase opens the connection pool and applies all pending migrations
func OpenDatabase(ctx context.Context, dbconfig *DBConfig) (*Database, error) {
	if dbconfig == nil {
		dbconfig = DefaultDBConfig()
	}
	driverName, err := sqlDriverName(dbconfig.Driver)
	if err != nil {
		return nil, err
	}
	if dbconfig.Driver == DriverSQLite3 {
		if err := createSQLiteDir(dbconfig.DSN); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	mainDB, err := sql.Open(driverName, dbconfig.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	mainDB.SetMaxOpenConns(dbconfig.MaxOpenConns)
	mainDB.SetMaxIdleConns(dbconfig.MaxIdleConns)
	mainDB.SetConnMaxLifetime(dbconfig.ConnMaxLifetime)

	if err := mainDB.PingContext(ctx); err != nil {
		if cerr := mainDB.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to ping database: %w; also failed to close: %v", err, cerr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &Database{
		mainDB:   mainDB,
		dbconfig: dbconfig,
	}

	if dbconfig.Driver == DriverSQLite3 {
		if err := db.applySQLitePragmas(ctx); err != nil {
			mainDB.Close()
			return nil, fmt.Errorf("failed to apply SQLite pragmas: %w", err)
		}
	}

	if err := db.Migrate(ctx); err != nil {
		mainDB.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Printf("[DB]: Database initialized driver=%s maxOpenConns=%d", dbconfig.Driver, dbconfig.MaxOpenConns)
	return db, nil
}

// GetMainDB returns the database connection for direct access
func (db *Database) GetMainDB() *sql.DB {
	return db.mainDB
}

// Driver returns the configured driver (sqlite3 or postgres)
func (db *Database) Driver() string {
	return db.dbconfig.Driver
}

// Shutdown closes the connection pool, further calls are no-ops
func (db *Database) Shutdown() error {
	db.mux.Lock()
	defer db.mux.Unlock()
	if db.shutdown {
		return nil
	}
	db.shutdown = true
	log.Printf("[DB]: Closing database")
	return db.mainDB.Close()
}

// IsDBshutdown reports whether Shutdown was called
func (db *Database) IsDBshutdown() bool {
	if db == nil {
		return true
	}
	db.mux.RLock()
	defer db.mux.RUnlock()
	return db.shutdown
}

// applySQLitePragmas applies performance pragmas. Pragmas that must hold on
// every pooled connection (foreign_keys, busy_timeout) are set via the DSN.
func (db *Database) applySQLitePragmas(ctx context.Context) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA cache_size = %d", db.dbconfig.CacheSize),
		fmt.Sprintf("PRAGMA synchronous = %s", db.dbconfig.SyncMode),
		fmt.Sprintf("PRAGMA temp_store = %s", db.dbconfig.TempStore),
	}
	for _, pragma := range pragmas {
		if _, err := db.mainDB.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute pragma '%s': %w", pragma, err)
		}
	}
	return nil
}

// createSQLiteDir creates the parent directory of a file: DSN
func createSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// SQLiteVersion returns the version of the linked sqlite library
func SQLiteVersion() string {
	version, _, _ := sqlite3.Version()
	return version
}
