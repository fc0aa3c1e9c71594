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

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/ftpconsole/pkg/models"
)

const defaultHistoryLimit = 50

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}

	return t.UnixNano()
}

// UpsertUser records a console-created account. Existing rows keep their
// creation time and blocked flag.
func (s *Store) UpsertUser(ctx context.Context, u models.FTPUser) error {
	created := time.Now()
	if u.CreatedAt != nil {
		created = *u.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ftp_users(username, home_directory, is_blocked, created_at, created_by)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET home_directory=excluded.home_directory`,
		u.Username, u.HomeDirectory, u.IsBlocked, unixNano(created), u.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.Username, err)
	}

	return nil
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ftp_users WHERE username=?`, username); err != nil {
		return fmt.Errorf("delete user %s: %w", username, err)
	}

	return nil
}

// SetBlocked flips the blocked flag of a known user. Unknown users are ignored.
func (s *Store) SetBlocked(ctx context.Context, username string, blocked bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE ftp_users SET is_blocked=? WHERE username=?`, blocked, username); err != nil {
		return fmt.Errorf("set blocked for %s: %w", username, err)
	}

	return nil
}

// ListUsers returns the inventory ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.FTPUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, home_directory, is_blocked, created_at, created_by
		 FROM ftp_users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.FTPUser, 0, 16)

	for rows.Next() {
		var (
			u       models.FTPUser
			created int64
		)

		if err := rows.Scan(&u.Username, &u.HomeDirectory, &u.IsBlocked, &created, &u.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		ts := time.Unix(0, created)
		u.CreatedAt = &ts

		out = append(out, u)
	}

	return out, rows.Err()
}

// RecordConfigChange stores change and fills in its ID and, when unset, its time.
func (s *Store) RecordConfigChange(ctx context.Context, change *models.ConfigChange) error {
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now()
	}

	var old sql.NullString
	if change.OldValue != nil {
		old = sql.NullString{String: *change.OldValue, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO config_changes(config_key, old_value, new_value, changed_by, changed_at)
		 VALUES(?, ?, ?, ?, ?)`,
		change.Key, old, change.NewValue, change.ChangedBy, change.ChangedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record config change %s: %w", change.Key, err)
	}

	if id, err := res.LastInsertId(); err == nil {
		change.ID = id
	}

	return nil
}

// ListConfigChanges returns the most recent changes, newest first.
func (s *Store) ListConfigChanges(ctx context.Context, limit int) ([]models.ConfigChange, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, config_key, old_value, new_value, changed_by, changed_at
		 FROM config_changes ORDER BY changed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list config changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.ConfigChange, 0, limit)

	for rows.Next() {
		var (
			c       models.ConfigChange
			old     sql.NullString
			changed int64
		)

		if err := rows.Scan(&c.ID, &c.Key, &old, &c.NewValue, &c.ChangedBy, &changed); err != nil {
			return nil, fmt.Errorf("scan config change: %w", err)
		}

		if old.Valid {
			v := old.String
			c.OldValue = &v
		}

		c.ChangedAt = time.Unix(0, changed)

		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) RecordAudit(ctx context.Context, ev models.AuditEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events(id, kind, subject, actor, success, message, ts)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), ev.Subject, ev.Actor, ev.Success, ev.Message, unixNano(ev.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("record audit %s: %w", ev.Kind, err)
	}

	return nil
}

// ListAudit returns the most recent audit events, newest first.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, subject, actor, success, message, ts
		 FROM audit_events ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.AuditEvent, 0, limit)

	for rows.Next() {
		var (
			ev   models.AuditEvent
			kind string
			ts   int64
		)

		if err := rows.Scan(&ev.ID, &kind, &ev.Subject, &ev.Actor, &ev.Success, &ev.Message, &ts); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		ev.Kind = models.AuditKind(kind)
		ev.Timestamp = time.Unix(0, ts)

		out = append(out, ev)
	}

	return out, rows.Err()
}

// SyncLogs inserts the events not yet stored, keyed by (timestamp, username,
// action), and returns how many were new.
func (s *Store) SyncLogs(ctx context.Context, events []models.LogEvent) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO ftp_logs(ts, username, action, ip_address, file_path, status, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare log sync: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UnixNano()
	inserted := 0

	for i := range events {
		ev := &events[i]

		res, err := stmt.ExecContext(ctx, ev.Timestamp.UnixNano(), ev.Username, ev.Action, ev.IPAddress, transferPath(ev), ev.Status, now)
		if err != nil {
			return 0, fmt.Errorf("insert log row: %w", err)
		}

		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit log sync: %w", err)
	}

	return inserted, nil
}

// transferPath recovers the file path from a transfer event's details.
func transferPath(ev *models.LogEvent) sql.NullString {
	if ev.Source != models.LogSourceTransfer {
		return sql.NullString{}
	}

	rest, ok := strings.CutPrefix(ev.Details, "File: ")
	if !ok {
		return sql.NullString{}
	}

	if i := strings.LastIndex(rest, ", Size: "); i >= 0 {
		rest = rest[:i]
	}

	return sql.NullString{String: rest, Valid: rest != ""}
}

