/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package store persists the console's user inventory and audit trail in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/carverauto/ftpconsole/pkg/logger"
)

const schemaVersion = 1

var ErrUnsupportedSchema = errors.New("unsupported sqlite schema version")

// Store is a single-connection SQLite database.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// Open creates the database file and its directory if needed and migrates
// the schema to the current version.
func Open(ctx context.Context, path string, log logger.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
		}

		// pre-create so a restricted sqlite open cannot fail with SQLITE_CANTOPEN
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("precreate sqlite db %s: %w", path, err)
		}
		_ = f.Close()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init(ctx context.Context) error {
	pragmas := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA foreign_keys=ON;`,
	}

	for _, st := range pragmas {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			if strings.Contains(err.Error(), "readonly") {
				continue
			}

			return fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version == 0 {
		if err := s.migrateToV1(ctx); err != nil {
			return err
		}

		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version=%d;`, schemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}

		s.log.Info().Int("version", schemaVersion).Msg("Initialized console database")

		version = schemaVersion
	}

	if version != schemaVersion {
		return fmt.Errorf("%w %d", ErrUnsupportedSchema, version)
	}

	return nil
}

func (s *Store) migrateToV1(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS ftp_users(
			username TEXT PRIMARY KEY,
			home_directory TEXT NOT NULL,
			is_blocked INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			created_by TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS config_changes(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			config_key TEXT NOT NULL,
			old_value TEXT,
			new_value TEXT NOT NULL,
			changed_by TEXT NOT NULL,
			changed_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS audit_events(
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			subject TEXT NOT NULL,
			actor TEXT NOT NULL,
			success INTEGER NOT NULL,
			message TEXT NOT NULL,
			ts INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ftp_logs(
			ts INTEGER NOT NULL,
			username TEXT NOT NULL,
			action TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			file_path TEXT,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			UNIQUE(ts, username, action)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_config_changes_at ON config_changes(changed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_ts ON audit_events(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_ftp_logs_ts ON ftp_logs(ts);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, st := range ddl {
		if _, err := tx.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("sqlite ddl: %w", err)
		}
	}

	return tx.Commit()
}
