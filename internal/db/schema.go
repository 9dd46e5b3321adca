package db

// SchemaSQL is the complete modern schema for fresh court installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All repository
// tests load it through GetSchemaSQL(), so a repository that references a
// column missing here fails with "no such column" at test time.
//
// When adding new columns or tables:
//  1. Add a migration to migrations.go
//  2. Update SchemaSQL here
//  3. Bump the version list in InitSchema if needed
const SchemaSQL = `
-- Cases (one per channel, never deleted)
CREATE TABLE IF NOT EXISTS cases (
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
);

CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);
CREATE INDEX IF NOT EXISTS idx_cases_judge ON cases(assigned_judge_id);

-- Evidence (position is derived from id order within a case)
CREATE TABLE IF NOT EXISTS evidence (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id INTEGER NOT NULL,
	submitter_id INTEGER NOT NULL,
	description TEXT NOT NULL,
	link TEXT NOT NULL,
	submitted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (case_id) REFERENCES cases(id)
);

CREATE INDEX IF NOT EXISTS idx_evidence_case ON evidence(case_id, id);

-- Judges (one dedicated category each)
CREATE TABLE IF NOT EXISTS judges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL UNIQUE,
	category_id INTEGER NOT NULL UNIQUE,
	category_name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Categories registered with the court
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL,
	role_id INTEGER,
	kind TEXT NOT NULL DEFAULT 'custom' CHECK(kind IN ('intake', 'judge', 'archive', 'custom')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_single_archive ON categories(kind) WHERE kind = 'archive';

-- Scheduled notifications (sent flips false -> true at most once)
CREATE TABLE IF NOT EXISTS scheduled_notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	target_user_id INTEGER NOT NULL,
	message TEXT NOT NULL,
	scheduled_at DATETIME NOT NULL,
	created_by INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	sent INTEGER NOT NULL DEFAULT 0 CHECK(sent IN (0, 1)),
	sent_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_notifications_due ON scheduled_notifications(sent, scheduled_at);

-- Role permissions (one role per guild and function)
CREATE TABLE IF NOT EXISTS role_permissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id INTEGER NOT NULL,
	function TEXT NOT NULL CHECK(function IN ('judge', 'admin', 'case_management', 'evidence_management', 'notification_management', 'archive_access')),
	role_id INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(guild_id, function)
);

-- Intake panels (button ticket_button_{category_id} is dispatched by lookup)
CREATE TABLE IF NOT EXISTS ticket_panels (
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
);

-- Audit log (immutable; pruned by age)
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	actor_id INTEGER,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
