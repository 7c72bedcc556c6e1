package storage

import "database/sql"

const currentSchemaVersion = 1

// Relationship lists are stored as link tables. The endpoint_functions table
// carries an owner_side discriminator because the two directions of the
// endpoint<->function association are maintained independently: deleting an
// endpoint intentionally leaves the function-side rows in place (see
// relations.go).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS api_endpoints (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		request_schema TEXT,
		response_schema TEXT,
		implementation_path TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS functions (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		parameters TEXT NOT NULL DEFAULT '[]',
		return_type TEXT NOT NULL DEFAULT '',
		return_description TEXT NOT NULL DEFAULT '',
		implementation TEXT NOT NULL DEFAULT '',
		implementation_path TEXT NOT NULL DEFAULT '',
		start_line INTEGER NOT NULL DEFAULT 0,
		end_line INTEGER NOT NULL DEFAULT 0,
		purpose TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		usage_examples TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_endpoints (
		project_id TEXT NOT NULL,
		endpoint_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (project_id, endpoint_id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_functions (
		project_id TEXT NOT NULL,
		function_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (project_id, function_id)
	)`,
	`CREATE TABLE IF NOT EXISTS endpoint_functions (
		owner_side TEXT NOT NULL CHECK (owner_side IN ('endpoint', 'function')),
		endpoint_id TEXT NOT NULL,
		function_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (owner_side, endpoint_id, function_id)
	)`,
	`CREATE TABLE IF NOT EXISTS function_functions (
		function_id TEXT NOT NULL,
		related_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (function_id, related_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_endpoints_project ON api_endpoints(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_functions_project ON functions(project_id)`,
}

// initializeSchema creates all tables for a new database.
func (s *Store) initializeSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.exec(stmt); err != nil {
			return err
		}
	}
	if _, err := s.exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}
	s.log.WithField("version", currentSchemaVersion).Debug("schema initialized")
	return nil
}

// runMigrations brings an existing database up to the current version.
func (s *Store) runMigrations() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}
	if version == currentSchemaVersion {
		return nil
	}

	// The schema is at version 1; migration steps get added here as it evolves.
	for _, stmt := range schemaStatements {
		if _, err := s.exec(stmt); err != nil {
			return err
		}
	}
	if _, err := s.exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err = s.exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	return err
}

func (s *Store) getSchemaVersion() (int, error) {
	var tableName string
	err := s.queryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = s.queryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}
