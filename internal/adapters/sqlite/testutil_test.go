// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/court/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection so every statement and transaction
// sees the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedCase inserts an open case on channelID and returns its id.
func seedCase(t *testing.T, db *sql.DB, channelID int64, title string) int64 {
	t.Helper()
	if title == "" {
		title = "Test Case"
	}
	res, err := db.Exec(
		"INSERT INTO cases (channel_id, category_id, creator_id, title, status) VALUES (?, 500, 42, ?, 'open')",
		channelID, title)
	if err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedCategory inserts a category of the given kind.
func seedCategory(t *testing.T, db *sql.DB, categoryID int64, name, kind string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO categories (category_id, name, kind) VALUES (?, ?, ?)", categoryID, name, kind)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
}
