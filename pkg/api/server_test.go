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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carverauto/ftpconsole/pkg/connections"
	"github.com/carverauto/ftpconsole/pkg/console"
	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	testUser     = "admin"
	testPassword = "correct horse"
)

var errTestConfig = errors.New("open /etc/vsftpd/vsftpd.conf: permission denied")

type call struct {
	op    string
	arg   string
	actor string
}

type fakeConsole struct {
	calls     []call
	snap      connections.Snapshot
	logLimit  int
	configErr error
	created   console.CreateUserRequest
}

func (f *fakeConsole) record(op, arg, actor string) models.ActionResult {
	f.calls = append(f.calls, call{op: op, arg: arg, actor: actor})
	return models.Succeeded(op + " " + arg)
}

func (f *fakeConsole) Connections(context.Context) connections.Snapshot { return f.snap }

func (f *fakeConsole) Terminate(_ context.Context, pid int32, actor string) models.ActionResult {
	return f.record("terminate", strconv.FormatInt(int64(pid), 10), actor)
}

func (f *fakeConsole) Logs(limit int) []models.LogEvent {
	f.logLimit = limit
	return []models.LogEvent{{PID: "1", Username: "alice", Action: "CONNECT:"}}
}

func (f *fakeConsole) LogStats() models.LogStats { return models.LogStats{TotalEntries: 4} }

func (f *fakeConsole) ActiveLogSessions(context.Context) []models.LogEvent {
	return []models.LogEvent{}
}

func (f *fakeConsole) Config() (map[string]models.ConfigOption, error) {
	if f.configErr != nil {
		return nil, f.configErr
	}

	return map[string]models.ConfigOption{
		"max_clients": {Value: "10", Type: models.OptionInt, Description: "Maximum number of clients"},
	}, nil
}

func (f *fakeConsole) UpdateConfig(_ context.Context, key, value, actor string) models.ActionResult {
	return f.record("config", key+"="+value, actor)
}

func (f *fakeConsole) ConfigHistory(context.Context, int) ([]models.ConfigChange, error) {
	return []models.ConfigChange{{ID: 1, Key: "max_clients", NewValue: "50"}}, nil
}

func (f *fakeConsole) Users(context.Context) ([]models.FTPUser, error) {
	return []models.FTPUser{{Username: "alice", ExistsInSystem: true}}, nil
}

func (f *fakeConsole) CreateUser(_ context.Context, req console.CreateUserRequest, actor string) models.ActionResult {
	f.created = req
	return f.record("create", req.Username, actor)
}

func (f *fakeConsole) DeleteUser(_ context.Context, username, actor string) models.ActionResult {
	return f.record("delete", username, actor)
}

func (f *fakeConsole) BlockUser(_ context.Context, username, actor string) models.ActionResult {
	return f.record("block", username, actor)
}

func (f *fakeConsole) UnblockUser(_ context.Context, username, actor string) models.ActionResult {
	return f.record("unblock", username, actor)
}

func (f *fakeConsole) FixPermissions(_ context.Context, username, actor string) models.ActionResult {
	return f.record("fix", username, actor)
}

func (f *fakeConsole) Stats(context.Context) models.DashboardStats {
	return models.DashboardStats{TotalUsers: 3, ActiveConnections: 1}
}

func (f *fakeConsole) AuditLog(context.Context, int) ([]models.AuditEvent, error) {
	return []models.AuditEvent{{ID: "evt-1", Kind: models.AuditUserBlock, Subject: "bob", Actor: "admin", Success: true}}, nil
}

func newTestServer(t *testing.T) (*fakeConsole, http.Handler) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	fc := &fakeConsole{}
	fc.snap.Records = []models.ConnectionRecord{
		{PID: 42, RemoteIP: "10.0.0.5", Username: "alice", Status: models.StatusEstablished},
	}
	fc.snap.Summary = models.ConnectionSummary{ActiveConnections: 1, UniqueIPs: 1, UniqueUsers: 1}
	fc.snap.Degraded = []string{"netstat"}

	s := NewAPIServer(fc, logger.NewTestLogger(),
		WithBasicAuth(testUser, string(hash)),
		WithCORS(models.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}),
	)
	s.now = func() time.Time { return time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC) }

	return fc, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	if auth {
		req.SetBasicAuth(testUser, testPassword)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	return rr
}

func TestHealthIsPublic(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/health", "", false)
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got.Status)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestAPIRequiresAuth(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)

	for _, path := range []string{"/api/connections", "/api/stats", "/api/users", "/api/config"} {
		rr := do(t, h, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestReadEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		contains string
	}{
		{path: "/api/connections", contains: `"remote_ip":"10.0.0.5"`},
		{path: "/api/connections/summary", contains: `"degraded_sources":["netstat"]`},
		{path: "/api/logs/stats", contains: `"total_entries":4`},
		{path: "/api/logs/sessions", contains: `[]`},
		{path: "/api/config", contains: `"max_clients":{"value":"10","type":"int"`},
		{path: "/api/config/history", contains: `"config_key":"max_clients"`},
		{path: "/api/users", contains: `"exists_in_system":true`},
		{path: "/api/stats", contains: `"total_users":3`},
		{path: "/api/audit?limit=5", contains: `"subject":"bob"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			_, h := newTestServer(t)

			rr := do(t, h, http.MethodGet, tt.path, "", true)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.contains)
		})
	}
}

func TestLogsLimit(t *testing.T) {
	t.Parallel()

	fc, h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/api/logs?limit=25", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 25, fc.logLimit)

	rr = do(t, h, http.MethodGet, "/api/logs?limit=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/logs", "", true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, fc.logLimit)
}

func TestMutationsCarryActor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		path   string
		body   string
		want   call
	}{
		{method: http.MethodPost, path: "/api/connections/42/kill", want: call{op: "terminate", arg: "42"}},
		{method: http.MethodPost, path: "/api/config", body: `{"key":"max_clients","value":"50"}`, want: call{op: "config", arg: "max_clients=50"}},
		{method: http.MethodPost, path: "/api/users", body: `{"username":"carol","password":"secret1"}`, want: call{op: "create", arg: "carol"}},
		{method: http.MethodDelete, path: "/api/users/bob", want: call{op: "delete", arg: "bob"}},
		{method: http.MethodPost, path: "/api/users/bob/block", want: call{op: "block", arg: "bob"}},
		{method: http.MethodPost, path: "/api/users/bob/unblock", want: call{op: "unblock", arg: "bob"}},
		{method: http.MethodPost, path: "/api/users/bob/fix-permissions", want: call{op: "fix", arg: "bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			fc, h := newTestServer(t)

			rr := do(t, h, tt.method, tt.path, tt.body, true)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var res models.ActionResult
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
			assert.True(t, res.Success)

			tt.want.actor = testUser
			require.Len(t, fc.calls, 1)
			assert.Equal(t, tt.want, fc.calls[0])
		})
	}
}

func TestBadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{method: http.MethodPost, path: "/api/connections/abc/kill", want: http.StatusBadRequest},
		{method: http.MethodPost, path: "/api/connections/0/kill", want: http.StatusBadRequest},
		{method: http.MethodPost, path: "/api/config", body: `{"key":`, want: http.StatusBadRequest},
		{method: http.MethodPost, path: "/api/users", body: `not json`, want: http.StatusBadRequest},
		{method: http.MethodPut, path: "/api/users", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			fc, h := newTestServer(t)

			rr := do(t, h, tt.method, tt.path, tt.body, true)
			assert.Equal(t, tt.want, rr.Code)
			assert.Empty(t, fc.calls)
		})
	}
}

func TestConfigReadError(t *testing.T) {
	t.Parallel()

	fc, h := newTestServer(t)
	fc.configErr = errTestConfig

	rr := do(t, h, http.MethodGet, "/api/config", "", true)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var got models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, errTestConfig.Error(), got.Message)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}

func TestCreateUserPassesHomeDirectory(t *testing.T) {
	t.Parallel()

	fc, h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/api/users",
		`{"username":"carol","password":"secret1","home_directory":"/srv/ftp/carol"}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/srv/ftp/carol", fc.created.HomeDirectory)
}

func TestPreflight(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/users", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}
