package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = ".court/court.db"

var (
	db     *sql.DB
	dbPath = DefaultPath
	mu     sync.Mutex
)

// Configure sets the database file GetDB opens. It has no effect once the
// connection is open.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if path != "" {
		dbPath = path
	}
}

// DSN builds the go-sqlite3 connection string for a database file.
// Every transaction begins IMMEDIATE so that count-then-insert sequences
// hold the write lock from their first read.
func DSN(path string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")
	q.Set("_journal_mode", "WAL")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Open opens the database at path, creating its directory, and brings the
// schema up to date.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return conn, nil
}

// GetDB returns the database connection, initializing if needed
func GetDB() (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	db = conn
	return db, nil
}

// Close closes the database connection
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// GetDBPath returns the path to the database file
func GetDBPath() string {
	mu.Lock()
	defer mu.Unlock()
	return dbPath
}
