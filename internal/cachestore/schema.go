package cachestore

// schema is executed once per opened database, grounded on
// core.Engine.initSchema's inline-SQL-string style
// (_examples/hazyhaar-GoClode/internal/core/db.go): one string, one Exec,
// `IF NOT EXISTS` everywhere so repeated opens are idempotent. Unlike the
// teacher there is no seed data — a cache store starts genuinely empty.
const schema = `
-- ============================================================
-- PATH: one row per registered path name
-- ============================================================
CREATE TABLE IF NOT EXISTS path (
	name TEXT PRIMARY KEY,
	description TEXT,
	current_version INTEGER
);

-- ============================================================
-- PATH_VERSION: a schema-identified generation of a path
-- ============================================================
CREATE TABLE IF NOT EXISTS path_version (
	name TEXT NOT NULL REFERENCES path(name),
	version INTEGER NOT NULL,
	changelog TEXT,
	env_schema TEXT NOT NULL,
	file_schema TEXT,
	PRIMARY KEY (name, version)
);

-- ============================================================
-- RESULT: a persisted execution record pinned to a path_version
-- ============================================================
CREATE TABLE IF NOT EXISTS result (
	id TEXT PRIMARY KEY,
	path_name TEXT NOT NULL,
	path_version INTEGER NOT NULL,
	environment TEXT NOT NULL,
	sql TEXT,
	file_path TEXT,
	created_at INTEGER,
	FOREIGN KEY (path_name, path_version) REFERENCES path_version(name, version)
);

CREATE INDEX IF NOT EXISTS idx_result_lookup
	ON result(path_name, path_version, environment);

-- ============================================================
-- RUN_LOG: bounded cache hit/miss/save/version-bump event trail
-- ============================================================
CREATE TABLE IF NOT EXISTS run_log (
	id TEXT PRIMARY KEY,
	path_name TEXT NOT NULL,
	event TEXT NOT NULL,
	detail TEXT,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_log_path ON run_log(path_name, created_at);
`
