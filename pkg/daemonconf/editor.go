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

// Package daemonconf reads and edits the daemon's key=value configuration file.
package daemonconf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
	"github.com/carverauto/ftpconsole/pkg/textfile"
)

var (
	ErrInvalidKey   = errors.New("invalid configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")

	keyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	intPattern = regexp.MustCompile(`^[0-9]+$`)
)

// Restarter restarts the daemon so it picks up the new configuration.
type Restarter interface {
	Restart(ctx context.Context) error
}

// ChangeRecorder keeps the audit trail of configuration edits.
type ChangeRecorder interface {
	RecordConfigChange(ctx context.Context, change *models.ConfigChange) error
}

// Editor owns one configuration file.
type Editor struct {
	path      string
	restarter Restarter
	recorder  ChangeRecorder
	log       logger.Logger
	now       func() time.Time
}

// NewEditor returns an Editor for path. restarter and recorder may be nil.
func NewEditor(path string, restarter Restarter, recorder ChangeRecorder, log logger.Logger) *Editor {
	return &Editor{
		path:      path,
		restarter: restarter,
		recorder:  recorder,
		log:       log,
		now:       time.Now,
	}
}

// Read returns the file's settings in file order. Blank lines, comments and
// lines without '=' are skipped.
func (e *Editor) Read() ([]models.ConfigEntry, error) {
	lines, err := textfile.ReadLines(e.path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(lines), nil
}

// Describe annotates every setting with what is known about the option.
func (e *Editor) Describe() (map[string]models.ConfigOption, error) {
	entries, err := e.Read()
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.ConfigOption, len(entries))

	for _, entry := range entries {
		known := Lookup(entry.Key)
		out[entry.Key] = models.ConfigOption{
			Value:       entry.Value,
			Type:        known.Type,
			Description: known.Description,
		}
	}

	return out, nil
}

// Update sets key to value, records the change and restarts the daemon.
// The first failing step determines the returned message; nothing is retried.
func (e *Editor) Update(ctx context.Context, key, value, actor string) models.ActionResult {
	key = strings.TrimSpace(key)

	value, err := Validate(key, value)
	if err != nil {
		return models.Failed(err.Error())
	}

	if _, err := os.Stat(e.path); err != nil {
		return models.Failed(fmt.Sprintf("Error updating config: %v", err))
	}

	if backup, err := textfile.Backup(e.path); err != nil {
		e.log.Warn().Err(err).Str("path", e.path).Msg("Config backup failed; continuing")
	} else {
		e.log.Debug().Str("backup", backup).Msg("Backed up config")
	}

	var oldValue *string

	err = textfile.Update(e.path, func(lines []string) ([]string, error) {
		if prev, ok := Get(Parse(lines), key); ok {
			oldValue = &prev
		}

		return Apply(lines, key, value), nil
	})
	if err != nil {
		e.log.Error().Err(err).Str("key", key).Msg("Failed to write config")
		return models.Failed(fmt.Sprintf("Error updating config: %v", err))
	}

	e.log.Info().Str("key", key).Str("value", value).Str("actor", actor).Msg("Config updated")

	if e.recorder != nil {
		change := &models.ConfigChange{
			Key:       key,
			OldValue:  oldValue,
			NewValue:  value,
			ChangedBy: actor,
			ChangedAt: e.now().UTC(),
		}

		if err := e.recorder.RecordConfigChange(ctx, change); err != nil {
			e.log.Warn().Err(err).Str("key", key).Msg("Failed to record config change")
		}
	}

	if e.restarter != nil {
		if err := e.restarter.Restart(ctx); err != nil {
			return models.Failed(fmt.Sprintf("Configuration updated but restart failed: %v", err))
		}
	}

	return models.Succeeded("Configuration updated successfully")
}

// Parse extracts key=value settings from raw lines.
func Parse(lines []string) []models.ConfigEntry {
	entries := make([]models.ConfigEntry, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		entries = append(entries, models.ConfigEntry{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}

	return entries
}

// Get returns the last value set for key, matching the daemon's own
// last-assignment-wins reading.
func Get(entries []models.ConfigEntry, key string) (string, bool) {
	var (
		value string
		found bool
	)

	for _, e := range entries {
		if e.Key == key {
			value, found = e.Value, true
		}
	}

	return value, found
}

// Apply rewrites every line starting with "key=" in place, or appends one
// line when none does. Other lines keep their content and order.
func Apply(lines []string, key, value string) []string {
	prefix := key + "="
	setting := prefix + value

	out := make([]string, 0, len(lines)+1)
	replaced := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			out = append(out, setting)
			replaced = true

			continue
		}

		out = append(out, line)
	}

	if !replaced {
		out = append(out, setting)
	}

	return out
}

// Validate checks key and value and returns the value normalized for its
// option type.
func Validate(key, value string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	if strings.ContainsAny(value, "\r\n") {
		return "", fmt.Errorf("%w: value for %s spans lines", ErrInvalidValue, key)
	}

	value = strings.TrimSpace(value)

	switch Lookup(key).Type {
	case models.OptionBool:
		upper := strings.ToUpper(value)
		if upper != "YES" && upper != "NO" {
			return "", fmt.Errorf("%w: %s expects YES or NO", ErrInvalidValue, key)
		}

		return upper, nil
	case models.OptionInt:
		if !intPattern.MatchString(value) {
			return "", fmt.Errorf("%w: %s expects a non-negative integer", ErrInvalidValue, key)
		}
	case models.OptionString:
	}

	return value, nil
}
