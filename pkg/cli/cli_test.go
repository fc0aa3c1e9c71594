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

package cli

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carverauto/ftpconsole/pkg/config"
	"github.com/carverauto/ftpconsole/pkg/connections"
	"github.com/carverauto/ftpconsole/pkg/console"
	"github.com/carverauto/ftpconsole/pkg/models"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
		check   func(t *testing.T, cfg *CmdConfig)
	}{
		{
			name: "no arguments shows help",
			args: nil,
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
			},
		},
		{
			name: "help command",
			args: []string{"--help"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
			},
		},
		{
			name: "connections defaults",
			args: []string{"connections"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, cmdConnections, cfg.SubCmd)
				assert.Equal(t, config.DefaultPath, cfg.ConfigPath)
				assert.False(t, cfg.JSON)
			},
		},
		{
			name: "connections json with config path",
			args: []string{"connections", "-json", "-config", "/tmp/ftp.json"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.JSON)
				assert.Equal(t, "/tmp/ftp.json", cfg.ConfigPath)
			},
		},
		{
			name: "kill with pid",
			args: []string{"kill", "-pid", "4242"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, 4242, cfg.PID)
			},
		},
		{name: "kill without pid", args: []string{"kill"}, wantErr: errRequiresPID},
		{
			name: "logs default count",
			args: []string{"logs"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, defaultLogLines, cfg.Lines)
			},
		},
		{
			name: "config set",
			args: []string{"config", "-set", "max_clients=50"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "max_clients=50", cfg.Set)
			},
		},
		{name: "config set without equals", args: []string{"config", "-set", "max_clients"}, wantErr: errInvalidSet},
		{
			name: "block user",
			args: []string{"block", "-user", " alice "},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "alice", cfg.User)
			},
		},
		{name: "unblock without user", args: []string{"unblock"}, wantErr: errRequiresUser},
		{
			name: "top interval",
			args: []string{"top", "-interval", "5s"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, 5*time.Second, cfg.Interval)
			},
		},
		{name: "top interval too short", args: []string{"top", "-interval", "10ms"}, wantErr: errInvalidPeriod},
		{
			name: "hash-password positional password",
			args: []string{"hash-password", "-cost", "10", "s3cret"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, 10, cfg.Cost)
				assert.Equal(t, []string{"s3cret"}, cfg.Args)
			},
		},
		{name: "hash-password bad cost", args: []string{"hash-password", "-cost", "50"}, wantErr: errInvalidCost},
		{
			name: "audit defaults",
			args: []string{"audit"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, defaultAuditLines, cfg.Lines)
			},
		},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: errUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := ParseFlags(tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	t.Parallel()

	_, err := ParseFlags([]string{"stats", "-bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing stats flags")
}

func TestSplitSet(t *testing.T) {
	t.Parallel()

	key, value := splitSet(" banner_file =/etc/banner=v2")
	assert.Equal(t, "banner_file", key)
	assert.Equal(t, "/etc/banner=v2", value)

	key, value = splitSet("ftpd_banner=")
	assert.Equal(t, "ftpd_banner", key)
	assert.Empty(t, value)
}

func TestGenerateBcrypt(t *testing.T) {
	t.Parallel()

	hash, err := generateBcrypt("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = generateBcrypt("   ", bcrypt.MinCost)
	require.ErrorIs(t, err, errEmptyPassword)

	_, err = generateBcrypt("s3cret", maxCost+1)
	require.ErrorIs(t, err, errInvalidCost)
}

func TestRunHashPasswordFromArgs(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cfg := &CmdConfig{SubCmd: cmdHashPassword, Cost: bcrypt.MinCost, Args: []string{"correct", "horse"}}
	require.NoError(t, RunHashPassword(cfg, strings.NewReader(""), &out))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))
}

func TestPasswordInputFromStdin(t *testing.T) {
	t.Parallel()

	password, err := passwordInput(nil, strings.NewReader("hunter2\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
}

func typeInto(m tea.Model, text string) {
	for _, r := range text {
		_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestHashModel(t *testing.T) {
	t.Parallel()

	m := newHashModel(bcrypt.MinCost, false)
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	_, _ = m.Update(enter)
	require.ErrorIs(t, m.err, errEmptyPassword)

	typeInto(m, "s3cret")
	_, _ = m.Update(enter)
	require.NoError(t, m.err)
	assert.Equal(t, stageConfirm, m.stage)

	typeInto(m, "nope")
	_, _ = m.Update(enter)
	require.ErrorIs(t, m.err, errPasswordMismatch)
	assert.Empty(t, m.confirm.Value())

	typeInto(m, "s3cret")
	_, _ = m.Update(enter)
	require.NoError(t, m.err)
	assert.Equal(t, stageDone, m.stage)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.hash), []byte("s3cret")))
	assert.Contains(t, m.View(), m.hash)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), &CmdConfig{Help: true}, nil, &out, &out))
	assert.Contains(t, out.String(), "hash-password")
	assert.Contains(t, out.String(), "Usage:")
}

type call struct {
	method string
	arg    string
	actor  string
}

type fakeConsole struct {
	snap     connections.Snapshot
	logs     []models.LogEvent
	opts     map[string]models.ConfigOption
	users    []models.FTPUser
	stats    models.DashboardStats
	result   models.ActionResult
	audit    []models.AuditEvent
	usersErr error
	calls    []call
}

func (f *fakeConsole) record(method, arg, actor string) models.ActionResult {
	f.calls = append(f.calls, call{method: method, arg: arg, actor: actor})
	return f.result
}

func (f *fakeConsole) Connections(context.Context) connections.Snapshot { return f.snap }

func (f *fakeConsole) Terminate(_ context.Context, pid int32, actor string) models.ActionResult {
	return f.record("Terminate", strconv.FormatInt(int64(pid), 10), actor)
}

func (f *fakeConsole) Logs(limit int) []models.LogEvent {
	if limit < len(f.logs) {
		return f.logs[:limit]
	}

	return f.logs
}

func (*fakeConsole) LogStats() models.LogStats { return models.LogStats{} }

func (f *fakeConsole) ActiveLogSessions(context.Context) []models.LogEvent { return f.logs }

func (f *fakeConsole) Config() (map[string]models.ConfigOption, error) { return f.opts, nil }

func (f *fakeConsole) UpdateConfig(_ context.Context, key, value, actor string) models.ActionResult {
	return f.record("UpdateConfig", key+"="+value, actor)
}

func (*fakeConsole) ConfigHistory(context.Context, int) ([]models.ConfigChange, error) {
	return nil, nil
}

func (f *fakeConsole) Users(context.Context) ([]models.FTPUser, error) { return f.users, f.usersErr }

func (f *fakeConsole) CreateUser(_ context.Context, req console.CreateUserRequest, actor string) models.ActionResult {
	return f.record("CreateUser", req.Username, actor)
}

func (f *fakeConsole) DeleteUser(_ context.Context, username, actor string) models.ActionResult {
	return f.record("DeleteUser", username, actor)
}

func (f *fakeConsole) BlockUser(_ context.Context, username, actor string) models.ActionResult {
	return f.record("BlockUser", username, actor)
}

func (f *fakeConsole) UnblockUser(_ context.Context, username, actor string) models.ActionResult {
	return f.record("UnblockUser", username, actor)
}

func (f *fakeConsole) FixPermissions(_ context.Context, username, actor string) models.ActionResult {
	return f.record("FixPermissions", username, actor)
}

func (f *fakeConsole) Stats(context.Context) models.DashboardStats { return f.stats }

func (f *fakeConsole) AuditLog(_ context.Context, limit int) ([]models.AuditEvent, error) {
	if limit < len(f.audit) {
		return f.audit[:limit], nil
	}

	return f.audit, nil
}

func newFakeConsole() *fakeConsole {
	connected := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	return &fakeConsole{
		snap: connections.Snapshot{
			Records: []models.ConnectionRecord{
				{PID: 4242, Username: "alice", RemoteIP: "192.0.2.10", Status: models.StatusActive, ConnectedAt: connected},
			},
			Summary:  models.ConnectionSummary{ActiveConnections: 1, UniqueIPs: 1, UniqueUsers: 1},
			Degraded: []string{"netstat"},
		},
		logs: []models.LogEvent{
			{Timestamp: connected, PID: "4242", Username: "alice", Status: "OK", Action: "LOGIN", IPAddress: "192.0.2.10"},
		},
		opts: map[string]models.ConfigOption{
			"max_clients":      {Value: "10", Type: models.OptionInt, Description: "Maximum clients"},
			"anonymous_enable": {Value: "NO", Type: models.OptionBool, Description: "Allow anonymous"},
		},
		users: []models.FTPUser{
			{Username: "alice", HomeDirectory: "/home/alice", ExistsInSystem: true},
			{Username: "bob", HomeDirectory: "/srv/bob", IsBlocked: true, ExistsInSystem: true},
		},
		stats: models.DashboardStats{
			TotalUsers:        2,
			BlockedUsers:      1,
			ActiveConnections: 1,
			Service:           models.ServiceStatus{Active: true, Enabled: true, Uptime: "3h"},
			Host:              models.HostUsage{Disk: models.UsageStat{Total: 100 << 20, Used: 25 << 20, Percent: 25}},
		},
		audit: []models.AuditEvent{
			{ID: "evt-1", Kind: models.AuditUserBlock, Subject: "bob", Actor: "admin", Success: true, Timestamp: connected},
			{ID: "evt-2", Kind: models.AuditConnectionKill, Subject: "4242", Actor: "cli", Message: "No such process", Timestamp: connected},
		},
		result: models.Succeeded("done"),
	}
}

func TestRunCommandReads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  CmdConfig
		want []string
	}{
		{name: "connections", cfg: CmdConfig{SubCmd: cmdConnections}, want: []string{"4242", "alice", "192.0.2.10", "degraded sources: netstat"}},
		{name: "connections json", cfg: CmdConfig{SubCmd: cmdConnections, JSON: true}, want: []string{`"connections"`, `"pid": 4242`}},
		{name: "logs", cfg: CmdConfig{SubCmd: cmdLogs, Lines: 10}, want: []string{"LOGIN", "2025-03-14 09:30:00"}},
		{name: "sessions", cfg: CmdConfig{SubCmd: cmdSessions}, want: []string{"alice"}},
		{name: "config", cfg: CmdConfig{SubCmd: cmdConfig}, want: []string{"anonymous_enable", "max_clients", "Maximum clients"}},
		{name: "config json", cfg: CmdConfig{SubCmd: cmdConfig, JSON: true}, want: []string{`"max_clients"`}},
		{name: "users", cfg: CmdConfig{SubCmd: cmdUsers}, want: []string{"/srv/bob", "yes"}},
		{name: "stats", cfg: CmdConfig{SubCmd: cmdStats}, want: []string{"active", "3h", "25 / 100 MiB"}},
		{name: "audit", cfg: CmdConfig{SubCmd: cmdAudit, Lines: 5}, want: []string{"user.block", "connection.terminate", "failed", "No such process"}},
		{name: "audit json", cfg: CmdConfig{SubCmd: cmdAudit, Lines: 1, JSON: true}, want: []string{`"id": "evt-1"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			cfg := tt.cfg
			require.NoError(t, runCommand(context.Background(), newFakeConsole(), &cfg, &out))

			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestRunCommandMutations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    CmdConfig
		method string
		arg    string
	}{
		{name: "kill", cfg: CmdConfig{SubCmd: cmdKill, PID: 4242}, method: "Terminate", arg: "4242"},
		{name: "config set", cfg: CmdConfig{SubCmd: cmdConfig, Set: "max_clients=50"}, method: "UpdateConfig", arg: "max_clients=50"},
		{name: "block", cfg: CmdConfig{SubCmd: cmdBlock, User: "alice"}, method: "BlockUser", arg: "alice"},
		{name: "unblock", cfg: CmdConfig{SubCmd: cmdUnblock, User: "alice"}, method: "UnblockUser", arg: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			fc := newFakeConsole()
			cfg := tt.cfg
			require.NoError(t, runCommand(context.Background(), fc, &cfg, &out))

			require.Len(t, fc.calls, 1)
			assert.Equal(t, tt.method, fc.calls[0].method)
			assert.Equal(t, tt.arg, fc.calls[0].arg)
			assert.True(t, strings.HasPrefix(fc.calls[0].actor, defaultActor))
			assert.Contains(t, out.String(), "done")
		})
	}
}

func TestRunCommandFailedActionIsAnError(t *testing.T) {
	t.Parallel()

	fc := newFakeConsole()
	fc.result = models.Failed("Error blocking user: no such user")

	var out bytes.Buffer

	err := runCommand(context.Background(), fc, &CmdConfig{SubCmd: cmdBlock, User: "zed"}, &out)
	require.ErrorIs(t, err, errActionFailed)
	assert.Contains(t, err.Error(), "no such user")
	assert.Empty(t, out.String())
}

func TestRunCommandUsersError(t *testing.T) {
	t.Parallel()

	fc := newFakeConsole()
	fc.usersErr = errors.New("passwd unreadable")

	err := runCommand(context.Background(), fc, &CmdConfig{SubCmd: cmdUsers}, &bytes.Buffer{})
	require.EqualError(t, err, "passwd unreadable")
}

func TestRenderHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, noValue, formatTime(time.Time{}))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd"+ellipsis, truncate("abcdefgh", 5))
	assert.Equal(t, noValue, usage(models.UsageStat{}))
	assert.Equal(t, yesNoYes, yesNo(true))
}

func TestTopModel(t *testing.T) {
	t.Parallel()

	fc := newFakeConsole()
	m := newTopModel(context.Background(), fc, time.Second)

	require.NotNil(t, m.Init())

	_, cmd := m.Update(snapshotMsg(fc.snap))
	require.NotNil(t, cmd, "a snapshot schedules the next refresh")

	view := m.View()
	assert.Contains(t, view, "4242")
	assert.Contains(t, view, "degraded sources: netstat")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, terminateMsg{}, msg)
	require.Len(t, fc.calls, 1)
	assert.Equal(t, "Terminate", fc.calls[0].method)
	assert.Equal(t, "4242", fc.calls[0].arg)

	_, _ = m.Update(msg)
	assert.Contains(t, m.View(), "done")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
