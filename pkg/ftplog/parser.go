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

// Package ftplog tails and parses the FTP daemon's session and transfer logs.
package ftplog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/ftpconsole/pkg/models"
)

// TimestampLayout is the daemon's ctime-style timestamp after whitespace is collapsed.
const TimestampLayout = "Mon Jan 2 15:04:05 2006"

const (
	minTransferFields = 14
	anonymousToken    = "*"
	anonymousUser     = "anonymous"
)

const timestampExpr = `(\w+\s+\w+\s+\d+\s+\d+:\d+:\d+\s+\d+)`

var (
	// ts [pid N] [user] STATUS ACTION: details
	sessionLinePattern = regexp.MustCompile(
		`^` + timestampExpr + `\s+\[pid\s+(\d+)\]\s+\[([^\]]+)\]\s+(\w+)\s+(\w+:)\s+(.+)$`)
	// ts [pid N] ACTION: details
	connectionLinePattern = regexp.MustCompile(
		`^` + timestampExpr + `\s+\[pid\s+(\d+)\]\s+(\w+:)\s+(.+)$`)
	// ts details
	genericLinePattern = regexp.MustCompile(`^` + timestampExpr + `\s+(.+)$`)

	clientAddrPattern = regexp.MustCompile(`Client\s+"(?:::ffff:)?([0-9A-Fa-f.:]+)"`)
	dottedQuadPattern = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)
)

// Parser turns raw log lines into events. Timestamps carry no zone in the
// daemon's logs and are interpreted in Location.
type Parser struct {
	Location *time.Location
	now      func() time.Time
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{Location: loc, now: time.Now}
}

// ParseLine matches line against the session patterns in priority order.
// It never fails: a line with no recognizable structure becomes a LOG event
// stamped with the current time.
func (p *Parser) ParseLine(line string) models.LogEvent {
	line = strings.TrimSpace(line)

	ev := models.LogEvent{
		PID:       models.Unknown,
		Username:  models.Unknown,
		Status:    models.LogStatusInfo,
		Action:    models.ActionLog,
		IPAddress: models.Unknown,
		Source:    models.LogSourceSession,
	}

	if m := sessionLinePattern.FindStringSubmatch(line); m != nil {
		ev.Timestamp = p.parseTimestamp(m[1])
		ev.PID = m[2]
		ev.Username = m[3]
		ev.Status = m[4]
		ev.Action = m[5]
		ev.Details = m[6]
		ev.IPAddress = clientAddress(m[6])

		return ev
	}

	if m := connectionLinePattern.FindStringSubmatch(line); m != nil {
		ev.Timestamp = p.parseTimestamp(m[1])
		ev.PID = m[2]
		ev.Action = m[3]
		ev.Details = m[4]
		ev.IPAddress = anyAddress(m[4])

		return ev
	}

	if m := genericLinePattern.FindStringSubmatch(line); m != nil {
		ev.Timestamp = p.parseTimestamp(m[1])
		ev.Details = m[2]
		ev.IPAddress = anyAddress(m[2])

		return ev
	}

	ev.Timestamp = p.now().In(p.Location)
	ev.Details = line
	ev.IPAddress = anyAddress(line)

	return ev
}

// ParseTransferLine maps a whitespace-delimited xferlog record positionally.
// Records with fewer than 14 fields have no safe interpretation and are dropped.
func (p *Parser) ParseTransferLine(line string) (models.TransferEntry, bool) {
	fields := strings.Fields(line)
	if len(fields) < minTransferFields {
		return models.TransferEntry{}, false
	}

	entry := models.TransferEntry{
		Timestamp:  p.parseTimestamp(strings.Join(fields[:5], " ")),
		RemoteHost: fields[6],
		FilePath:   fields[8],
		Direction:  transferDirection(fields[11]),
		Username:   fields[13],
	}

	if secs, err := strconv.Atoi(fields[5]); err == nil {
		entry.TransferSeconds = secs
	}

	if size, err := strconv.ParseInt(fields[7], 10, 64); err == nil {
		entry.FileSize = size
	}

	if entry.Username == anonymousToken {
		entry.Username = anonymousUser
	}

	return entry, true
}

// TransferEvent renders a transfer record in the session event shape so both
// logs can be listed together.
func TransferEvent(entry models.TransferEntry) models.LogEvent {
	return models.LogEvent{
		Timestamp: entry.Timestamp,
		PID:       models.PIDTransfer,
		Username:  entry.Username,
		Status:    models.LogStatusOK,
		Action:    models.ActionTransfer,
		Details:   "File: " + entry.FilePath + ", Size: " + strconv.FormatInt(entry.FileSize, 10) + " bytes",
		IPAddress: entry.RemoteHost,
		Source:    models.LogSourceTransfer,
	}
}

// parseTimestamp falls back to now when the text looked like a timestamp but
// is not a valid date.
func (p *Parser) parseTimestamp(raw string) time.Time {
	ts, err := time.ParseInLocation(TimestampLayout, strings.Join(strings.Fields(raw), " "), p.Location)
	if err != nil {
		return p.now().In(p.Location)
	}

	return ts
}

func clientAddress(details string) string {
	if m := clientAddrPattern.FindStringSubmatch(details); m != nil {
		return m[1]
	}

	return models.Unknown
}

func anyAddress(text string) string {
	if ip := clientAddress(text); ip != models.Unknown {
		return ip
	}

	if ip := dottedQuadPattern.FindString(text); ip != "" {
		return ip
	}

	return models.Unknown
}

func transferDirection(flag string) models.TransferDirection {
	switch flag {
	case "i":
		return models.DirectionIncoming
	case "o":
		return models.DirectionOutgoing
	case "d":
		return models.DirectionDeleted
	default:
		return models.DirectionUnknown
	}
}
