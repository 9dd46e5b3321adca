package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order. Version 1 is the schema
// of databases created by the original court bot; such databases are adopted
// at version 1 and upgraded from there.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "bot_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "normalize_case_status_and_archived_flag",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_category_kind",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "replace_ticket_buttons_with_panels",
		Up:      migrationV4,
	},
	{
		Version: 5,
		Name:    "rename_scheduled_time_and_add_sent_at",
		Up:      migrationV5,
	},
	{
		Version: 6,
		Name:    "add_audit_log_and_permission_timestamps",
		Up:      migrationV6,
	},
}

// LatestVersion is the schema version SchemaSQL corresponds to.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

const createSchemaVersion = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// InitSchema brings a database to the current schema. Fresh databases get
// SchemaSQL directly; databases left by the bot are adopted at version 1.
func InitSchema(conn *sql.DB) error {
	var hasVersion, hasCases int
	if err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&hasVersion); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if hasVersion > 0 {
		return RunMigrations(conn)
	}

	if err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cases'").Scan(&hasCases); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if hasCases > 0 {
		zap.S().Infow("adopting existing bot database", "version", 1)
		if _, err := conn.Exec(createSchemaVersion); err != nil {
			return fmt.Errorf("failed to create schema_version table: %w", err)
		}
		if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
			return fmt.Errorf("failed to record adopted version: %w", err)
		}
		return RunMigrations(conn)
	}

	// Completely fresh install - create modern schema directly and mark all
	// migrations as applied.
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(createSchemaVersion); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record version %d: %w", m.Version, err)
		}
	}
	return tx.Commit()
}

// RunMigrations executes all pending migrations. Migrations run on one
// connection with foreign keys disabled so that tables can be rebuilt, and
// foreign keys are verified before each commit.
func RunMigrations(conn *sql.DB) error {
	ctx := context.Background()

	if _, err := conn.ExecContext(ctx, createSchemaVersion); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	if err := conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if currentVersion >= LatestVersion() {
		return nil
	}

	c, err := conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve connection for migrations: %w", err)
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	defer c.ExecContext(ctx, "PRAGMA foreign_keys = ON")

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		zap.S().Infow("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := c.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := checkForeignKeys(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d broke foreign keys: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		zap.S().Infow("migration completed", "version", migration.Version)
	}

	return nil
}

// checkForeignKeys fails when any row references a missing parent.
func checkForeignKeys(tx *sql.Tx) error {
	rows, err := tx.Query("PRAGMA foreign_key_check")
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		var table string
		var rowid sql.NullInt64
		var parent string
		var fkid int
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return err
		}
		return fmt.Errorf("row %d of %s references missing %s", rowid.Int64, table, parent)
	}
	return rows.Err()
}

func execAll(tx *sql.Tx, stmts ...string) error {
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// migrationV1 creates the bot's original tables.
func migrationV1(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_id INTEGER UNIQUE,
			category_id INTEGER,
			creator_id INTEGER,
			assigned_judge_id INTEGER NULL,
			title TEXT,
			description TEXT,
			status TEXT DEFAULT 'Åpen',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			closed_at TIMESTAMP NULL,
			closing_reason TEXT NULL,
			archive_url TEXT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS judges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER UNIQUE,
			category_id INTEGER UNIQUE,
			category_name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER UNIQUE,
			name TEXT,
			role_id INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS evidence (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id INTEGER,
			submitter_id INTEGER,
			description TEXT,
			link TEXT,
			submitted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (case_id) REFERENCES cases (id)
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			target_user_id INTEGER,
			message TEXT,
			scheduled_time TIMESTAMP,
			created_by INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			sent BOOLEAN DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS role_permissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id INTEGER,
			function TEXT,
			role_id INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(guild_id, function)
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_buttons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER,
			title TEXT,
			description TEXT,
			emoji TEXT,
			button_text TEXT,
			role_id INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (category_id) REFERENCES categories (category_id)
		)`,
	)
}

// migrationV2 rebuilds cases with English status values and an explicit
// archived flag. 'Lukket' becomes closed+archived, 'Arkivert' keeps its
// activity and becomes archived.
func migrationV2(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE cases_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_id INTEGER NOT NULL UNIQUE,
			category_id INTEGER NOT NULL,
			creator_id INTEGER NOT NULL,
			assigned_judge_id INTEGER,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'assigned', 'closed')),
			archived INTEGER NOT NULL DEFAULT 0 CHECK(archived IN (0, 1)),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			closed_at DATETIME,
			closing_reason TEXT,
			archive_ref TEXT
		)`,
		`INSERT INTO cases_new (id, channel_id, category_id, creator_id, assigned_judge_id, title, description, status, archived, created_at, updated_at, closed_at, closing_reason, archive_ref)
		SELECT id, channel_id, COALESCE(category_id, 0), COALESCE(creator_id, 0), assigned_judge_id,
			COALESCE(title, ''), COALESCE(description, ''),
			CASE
				WHEN status = 'Lukket' THEN 'closed'
				WHEN status IN ('Under behandling', 'Tildelt') THEN 'assigned'
				WHEN status = 'Arkivert' AND assigned_judge_id IS NOT NULL THEN 'assigned'
				ELSE 'open'
			END,
			CASE WHEN status IN ('Lukket', 'Arkivert') THEN 1 ELSE 0 END,
			created_at, COALESCE(closed_at, created_at), closed_at, closing_reason, archive_url
		FROM cases WHERE channel_id IS NOT NULL`,
		`DROP TABLE cases`,
		`ALTER TABLE cases_new RENAME TO cases`,
		// Evidence of cases that never had a channel cannot be reached.
		`DELETE FROM evidence WHERE case_id IS NULL OR case_id NOT IN (SELECT id FROM cases)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_judge ON cases(assigned_judge_id)`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_case ON evidence(case_id, id)`,
	)
}

// migrationV3 classifies categories and limits the archive to one.
func migrationV3(tx *sql.Tx) error {
	return execAll(tx,
		`ALTER TABLE categories ADD COLUMN kind TEXT NOT NULL DEFAULT 'custom' CHECK(kind IN ('intake', 'judge', 'archive', 'custom'))`,
		`ALTER TABLE categories ADD COLUMN created_at DATETIME`,
		`UPDATE categories SET created_at = CURRENT_TIMESTAMP`,
		`UPDATE categories SET kind = 'judge' WHERE category_id IN (SELECT category_id FROM judges)`,
		`UPDATE categories SET kind = 'intake' WHERE kind = 'custom' AND category_id IN (SELECT category_id FROM ticket_buttons)`,
		`UPDATE categories SET kind = 'archive' WHERE id = (
			SELECT MIN(id) FROM categories WHERE kind = 'custom' AND lower(name) IN ('arkiv', 'archive')
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_single_archive ON categories(kind) WHERE kind = 'archive'`,
		`ALTER TABLE judges ADD COLUMN created_at DATETIME`,
		`UPDATE judges SET created_at = CURRENT_TIMESTAMP`,
	)
}

// migrationV4 moves button registrations into ticket_panels, which also
// remember where the panel message was posted.
func migrationV4(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS ticket_panels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER NOT NULL,
			channel_id INTEGER NOT NULL DEFAULT 0,
			message_id INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			emoji TEXT NOT NULL DEFAULT '',
			button_text TEXT NOT NULL,
			role_id INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (category_id) REFERENCES categories(category_id)
		)`,
		`INSERT INTO ticket_panels (id, category_id, title, description, emoji, button_text, role_id, created_at)
		SELECT id, category_id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(emoji, ''), COALESCE(button_text, 'Open case'), NULLIF(role_id, 0), created_at
		FROM ticket_buttons WHERE category_id IN (SELECT category_id FROM categories)`,
		`DROP TABLE ticket_buttons`,
	)
}

// migrationV5 renames scheduled_time and records when a notification went out.
func migrationV5(tx *sql.Tx) error {
	return execAll(tx,
		`ALTER TABLE scheduled_notifications RENAME COLUMN scheduled_time TO scheduled_at`,
		`ALTER TABLE scheduled_notifications ADD COLUMN sent_at DATETIME`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_due ON scheduled_notifications(sent, scheduled_at)`,
	)
}

// migrationV6 adds the audit log and permission update timestamps.
func migrationV6(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			actor_id INTEGER,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
			field_name TEXT,
			old_value TEXT,
			new_value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id)`,
		`ALTER TABLE role_permissions ADD COLUMN updated_at DATETIME`,
		`UPDATE role_permissions SET updated_at = created_at`,
	)
}
