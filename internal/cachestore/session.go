// Package cachestore is the persistent half of the cache: Path,
// PathVersion, and Result relations behind a transactional Session
// surface, plus an in-memory denormalized layer for repeat lookups
// (spec.md §4.6).
package cachestore

import (
	"context"
	"database/sql"
)

// ResultRow is the engine-facing shape of a result table row.
type ResultRow struct {
	ID          string
	PathName    string
	PathVersion int
	Environment string // canonical JSON of the used, visible parameters
	SQL         *string
	FilePath    *string
	CreatedAt   *int64 // nil means "idempotent row" (save_datetime=false)
}

// Session is the transactional surface the journey engine consumes for a
// single load or save (spec.md §4.6's "session factory yielding a
// transactional session").
type Session interface {
	SelectCurrentVersion(ctx context.Context, name string) (version int, ok bool, err error)
	SelectPathVersion(ctx context.Context, name string, version int) (envSchema, fileSchema *string, ok bool, err error)
	SelectResult(ctx context.Context, name string, version int, environment string) (*ResultRow, bool, error)
	// ListResults returns every Result row recorded for name, most
	// recent first, for introspection (e.g. a REPL's "show cache"
	// command) rather than the load/save cycle itself.
	ListResults(ctx context.Context, name string) ([]ResultRow, error)
	UpsertPath(ctx context.Context, name string) error
	InsertPathVersion(ctx context.Context, name string, version int, changelog, envSchema string, fileSchema *string) error
	// FindPathVersion looks up an existing version of name whose
	// (env_schema, file_schema) match exactly — a PathVersion is uniquely
	// determined by that pair (spec.md §3).
	FindPathVersion(ctx context.Context, name string, envSchema string, fileSchema *string) (version int, ok bool, err error)
	// MaxVersion returns the highest version number registered for name,
	// or ok=false if name has no versions yet.
	MaxVersion(ctx context.Context, name string) (version int, ok bool, err error)
	SetCurrentVersion(ctx context.Context, name string, version int) error
	UpsertResult(ctx context.Context, row ResultRow) error
	InsertResult(ctx context.Context, row ResultRow) error
	LogEvent(ctx context.Context, pathName, event, detail string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// sqliteSession implements Session over a single *sql.Tx — "transactional
// per save" (spec.md §5): one Begin per load/save call, Commit or
// Rollback ending it. Grounded on core.Engine's Exec/Query/QueryRow
// wrapper methods, narrowed here to a transaction instead of the raw *DB.
type sqliteSession struct {
	tx *sql.Tx
}

func newSQLiteSession(ctx context.Context, db *sql.DB) (*sqliteSession, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteSession{tx: tx}, nil
}

func (s *sqliteSession) SelectCurrentVersion(ctx context.Context, name string) (int, bool, error) {
	var v sql.NullInt64
	err := s.tx.QueryRowContext(ctx, `SELECT current_version FROM path WHERE name = ?`, name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if !v.Valid {
		return 0, false, nil
	}
	return int(v.Int64), true, nil
}

func (s *sqliteSession) SelectPathVersion(ctx context.Context, name string, version int) (*string, *string, bool, error) {
	var envSchema string
	var fileSchema sql.NullString
	err := s.tx.QueryRowContext(ctx,
		`SELECT env_schema, file_schema FROM path_version WHERE name = ? AND version = ?`,
		name, version,
	).Scan(&envSchema, &fileSchema)
	if err == sql.ErrNoRows {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	var fsPtr *string
	if fileSchema.Valid {
		fsPtr = &fileSchema.String
	}
	return &envSchema, fsPtr, true, nil
}

func (s *sqliteSession) SelectResult(ctx context.Context, name string, version int, environment string) (*ResultRow, bool, error) {
	var row ResultRow
	var sqlCol, filePath sql.NullString
	var createdAt sql.NullInt64

	err := s.tx.QueryRowContext(ctx,
		`SELECT id, path_name, path_version, environment, sql, file_path, created_at
		 FROM result
		 WHERE path_name = ? AND path_version = ? AND environment = ? AND created_at IS NULL`,
		name, version, environment,
	).Scan(&row.ID, &row.PathName, &row.PathVersion, &row.Environment, &sqlCol, &filePath, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if sqlCol.Valid {
		row.SQL = &sqlCol.String
	}
	if filePath.Valid {
		row.FilePath = &filePath.String
	}
	if createdAt.Valid {
		row.CreatedAt = &createdAt.Int64
	}
	return &row, true, nil
}

func (s *sqliteSession) ListResults(ctx context.Context, name string) ([]ResultRow, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT id, path_name, path_version, environment, sql, file_path, created_at
		 FROM result WHERE path_name = ?
		 ORDER BY COALESCE(created_at, 0) DESC, rowid DESC`,
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var row ResultRow
		var sqlCol, filePath sql.NullString
		var createdAt sql.NullInt64
		if err := rows.Scan(&row.ID, &row.PathName, &row.PathVersion, &row.Environment, &sqlCol, &filePath, &createdAt); err != nil {
			return nil, err
		}
		if sqlCol.Valid {
			row.SQL = &sqlCol.String
		}
		if filePath.Valid {
			row.FilePath = &filePath.String
		}
		if createdAt.Valid {
			row.CreatedAt = &createdAt.Int64
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *sqliteSession) UpsertPath(ctx context.Context, name string) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO path (name, current_version) VALUES (?, NULL)
		 ON CONFLICT(name) DO NOTHING`,
		name,
	)
	return err
}

func (s *sqliteSession) InsertPathVersion(ctx context.Context, name string, version int, changelog, envSchema string, fileSchema *string) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO path_version (name, version, changelog, env_schema, file_schema)
		 VALUES (?, ?, ?, ?, ?)`,
		name, version, changelog, envSchema, fileSchema,
	)
	return err
}

func (s *sqliteSession) FindPathVersion(ctx context.Context, name string, envSchema string, fileSchema *string) (int, bool, error) {
	var rows *sql.Rows
	var err error
	if fileSchema == nil {
		rows, err = s.tx.QueryContext(ctx,
			`SELECT version FROM path_version WHERE name = ? AND env_schema = ? AND file_schema IS NULL`,
			name, envSchema,
		)
	} else {
		rows, err = s.tx.QueryContext(ctx,
			`SELECT version FROM path_version WHERE name = ? AND env_schema = ? AND file_schema = ?`,
			name, envSchema, *fileSchema,
		)
	}
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()
	if rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return 0, false, err
		}
		return v, true, nil
	}
	return 0, false, rows.Err()
}

func (s *sqliteSession) MaxVersion(ctx context.Context, name string) (int, bool, error) {
	var v sql.NullInt64
	err := s.tx.QueryRowContext(ctx, `SELECT MAX(version) FROM path_version WHERE name = ?`, name).Scan(&v)
	if err != nil {
		return 0, false, err
	}
	if !v.Valid {
		return 0, false, nil
	}
	return int(v.Int64), true, nil
}

func (s *sqliteSession) SetCurrentVersion(ctx context.Context, name string, version int) error {
	_, err := s.tx.ExecContext(ctx,
		`UPDATE path SET current_version = ? WHERE name = ?`,
		version, name,
	)
	return err
}

func (s *sqliteSession) UpsertResult(ctx context.Context, row ResultRow) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO result (id, path_name, path_version, environment, sql, file_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)
		 ON CONFLICT(id) DO UPDATE SET sql = excluded.sql, file_path = excluded.file_path`,
		row.ID, row.PathName, row.PathVersion, row.Environment, row.SQL, row.FilePath,
	)
	return err
}

func (s *sqliteSession) InsertResult(ctx context.Context, row ResultRow) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO result (id, path_name, path_version, environment, sql, file_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.PathName, row.PathVersion, row.Environment, row.SQL, row.FilePath, row.CreatedAt,
	)
	return err
}

func (s *sqliteSession) LogEvent(ctx context.Context, pathName, event, detail string) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO run_log (id, path_name, event, detail, created_at) VALUES (?, ?, ?, ?, strftime('%s','now'))`,
		newEventID(), pathName, event, detail,
	)
	return err
}

func (s *sqliteSession) Commit(ctx context.Context) error   { return s.tx.Commit() }
func (s *sqliteSession) Rollback(ctx context.Context) error { return s.tx.Rollback() }
