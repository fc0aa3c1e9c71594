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

package ftplog

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	defaultTailLines = 100
	// statsWindow is how far back log statistics look.
	statsWindow = 1000
)

// Config locates the daemon logs.
type Config struct {
	SessionLog  string
	TransferLog string
	TailLines   int
	Location    *time.Location
}

// Service reads the daemon logs. Every read is fresh; nothing is cached.
// A missing or unreadable log contributes nothing rather than failing the read.
type Service struct {
	cfg    Config
	parser *Parser
	log    logger.Logger
}

func NewService(cfg Config, log logger.Logger) *Service {
	if cfg.TailLines <= 0 {
		cfg.TailLines = defaultTailLines
	}

	return &Service{
		cfg:    cfg,
		parser: NewParser(cfg.Location),
		log:    log,
	}
}

// SessionLines returns the raw last maxLines lines of the session log.
func (s *Service) SessionLines(maxLines int) []string {
	return s.tail(s.cfg.SessionLog, maxLines)
}

// SessionEvents parses the last maxLines lines of the session log.
// Blank lines are skipped; every other line yields exactly one event.
func (s *Service) SessionEvents(maxLines int) []models.LogEvent {
	lines := s.tail(s.cfg.SessionLog, maxLines)
	events := make([]models.LogEvent, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		events = append(events, s.parser.ParseLine(line))
	}

	return events
}

// Transfers parses the last maxLines lines of the transfer log, dropping
// records that are too short to map.
func (s *Service) Transfers(maxLines int) []models.TransferEntry {
	lines := s.tail(s.cfg.TransferLog, maxLines)
	entries := make([]models.TransferEntry, 0, len(lines))

	for _, line := range lines {
		if entry, ok := s.parser.ParseTransferLine(line); ok {
			entries = append(entries, entry)
		}
	}

	return entries
}

// RecentLogs merges session and transfer events, newest first.
func (s *Service) RecentLogs(limit int) []models.LogEvent {
	if limit <= 0 {
		limit = s.cfg.TailLines
	}

	events := s.SessionEvents(limit)
	for _, entry := range s.Transfers(limit) {
		events = append(events, TransferEvent(entry))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if len(events) > limit {
		events = events[:limit]
	}

	return events
}

// Stats summarizes the most recent log window.
func (s *Service) Stats() models.LogStats {
	return Stats(s.RecentLogs(statsWindow))
}

// ActiveSessions returns logins from the session log whose process is still running.
func (s *Service) ActiveSessions(ctx context.Context, running RunningFunc) []models.LogEvent {
	return ActiveSessions(ctx, s.SessionEvents(s.cfg.TailLines), running)
}

func (s *Service) tail(path string, maxLines int) []string {
	if path == "" {
		return []string{}
	}

	if maxLines <= 0 {
		maxLines = s.cfg.TailLines
	}

	lines, err := TailLines(path, maxLines)
	if err != nil {
		ev := s.log.Warn()
		if errors.Is(err, fs.ErrNotExist) {
			ev = s.log.Debug()
		}

		ev.Err(err).Str("path", path).Msg("log unavailable; contributing no events")

		return []string{}
	}

	return lines
}
