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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/ftpconsole/pkg/models"
)

var testNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	p := NewParser(time.UTC)
	p.now = func() time.Time { return testNow }

	return p
}

func TestParseLineFullSessionLine(t *testing.T) {
	t.Parallel()

	ev := newTestParser().ParseLine(`Thu Jun 03 10:30:45 2025 [pid 2] [user1] OK LOGIN: Client "192.168.1.100"`)

	assert.Equal(t, time.Date(2025, 6, 3, 10, 30, 45, 0, time.UTC), ev.Timestamp)
	assert.Equal(t, "2", ev.PID)
	assert.Equal(t, "user1", ev.Username)
	assert.Equal(t, "OK", ev.Status)
	assert.Equal(t, "LOGIN:", ev.Action)
	assert.Equal(t, `Client "192.168.1.100"`, ev.Details)
	assert.Equal(t, "192.168.1.100", ev.IPAddress)
	assert.Equal(t, models.LogSourceSession, ev.Source)
}

func TestParseLinePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want models.LogEvent
	}{
		{
			name: "padded day and mapped client address",
			line: `Tue Jun  3 10:30:45 2025 [pid 1234] [alice] FAIL LOGIN: Client "::ffff:10.1.2.3"`,
			want: models.LogEvent{
				Timestamp: time.Date(2025, 6, 3, 10, 30, 45, 0, time.UTC),
				PID:       "1234", Username: "alice", Status: "FAIL", Action: "LOGIN:",
				Details: `Client "::ffff:10.1.2.3"`, IPAddress: "10.1.2.3",
			},
		},
		{
			name: "full line without client address",
			line: `Tue Jun  3 10:31:00 2025 [pid 1234] [alice] OK MKDIR: /pub/new 10.9.9.9`,
			want: models.LogEvent{
				Timestamp: time.Date(2025, 6, 3, 10, 31, 0, 0, time.UTC),
				PID:       "1234", Username: "alice", Status: "OK", Action: "MKDIR:",
				Details: "/pub/new 10.9.9.9", IPAddress: models.Unknown,
			},
		},
		{
			name: "connection line",
			line: `Tue Jun  3 10:30:40 2025 [pid 1233] CONNECT: Client "192.168.1.5"`,
			want: models.LogEvent{
				Timestamp: time.Date(2025, 6, 3, 10, 30, 40, 0, time.UTC),
				PID:       "1233", Username: models.Unknown, Status: models.LogStatusInfo, Action: "CONNECT:",
				Details: `Client "192.168.1.5"`, IPAddress: "192.168.1.5",
			},
		},
		{
			name: "generic timestamped line",
			line: `Tue Jun  3 11:00:00 2025 refused connect from 172.16.4.4`,
			want: models.LogEvent{
				Timestamp: time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC),
				PID:       models.Unknown, Username: models.Unknown, Status: models.LogStatusInfo,
				Action: models.ActionLog, Details: "refused connect from 172.16.4.4", IPAddress: "172.16.4.4",
			},
		},
		{
			name: "no timestamp at all",
			line: `500 OOPS: vsf_sysutil_bind`,
			want: models.LogEvent{
				Timestamp: testNow,
				PID:       models.Unknown, Username: models.Unknown, Status: models.LogStatusInfo,
				Action: models.ActionLog, Details: "500 OOPS: vsf_sysutil_bind", IPAddress: models.Unknown,
			},
		},
		{
			name: "timestamp shape with impossible date",
			line: `Foo Bar 45 99:99:99 2025 something`,
			want: models.LogEvent{
				Timestamp: testNow,
				PID:       models.Unknown, Username: models.Unknown, Status: models.LogStatusInfo,
				Action: models.ActionLog, Details: "something", IPAddress: models.Unknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.want.Source = models.LogSourceSession
			assert.Equal(t, tt.want, newTestParser().ParseLine(tt.line))
		})
	}
}

func TestParseTransferLine(t *testing.T) {
	t.Parallel()

	p := newTestParser()

	entry, ok := p.ParseTransferLine(
		"Tue Jun  3 10:31:02 2025 4 192.168.1.100 2048 /home/user1/report.pdf b _ o r * ftp 0 * c")
	require.True(t, ok)

	assert.Equal(t, time.Date(2025, 6, 3, 10, 31, 2, 0, time.UTC), entry.Timestamp)
	assert.Equal(t, 4, entry.TransferSeconds)
	assert.Equal(t, "192.168.1.100", entry.RemoteHost)
	assert.Equal(t, int64(2048), entry.FileSize)
	assert.Equal(t, "/home/user1/report.pdf", entry.FilePath)
	assert.Equal(t, models.DirectionOutgoing, entry.Direction)
	assert.Equal(t, "anonymous", entry.Username)

	entry, ok = p.ParseTransferLine(
		"Tue Jun  3 10:32:00 2025 1 10.0.0.2 12 /srv/in.txt a _ i r bob ftp 0 * c")
	require.True(t, ok)
	assert.Equal(t, "bob", entry.Username)
	assert.Equal(t, models.DirectionIncoming, entry.Direction)

	ev := TransferEvent(entry)
	assert.Equal(t, models.PIDTransfer, ev.PID)
	assert.Equal(t, models.ActionTransfer, ev.Action)
	assert.Equal(t, "File: /srv/in.txt, Size: 12 bytes", ev.Details)
	assert.Equal(t, "10.0.0.2", ev.IPAddress)
	assert.Equal(t, models.LogSourceTransfer, ev.Source)
}

func TestParseTransferLineDropsShortRecords(t *testing.T) {
	t.Parallel()

	_, ok := newTestParser().ParseTransferLine("Tue Jun  3 10:31:02 2025 4 192.168.1.100 2048 /f b _ o r")
	assert.False(t, ok)

	_, ok = newTestParser().ParseTransferLine("")
	assert.False(t, ok)
}
