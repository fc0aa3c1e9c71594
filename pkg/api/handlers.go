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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/ftpconsole/pkg/console"
	ftpHttp "github.com/carverauto/ftpconsole/pkg/http"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const maxBodyBytes = 1 << 16

// ConnectionSummaryResponse is the body of GET /api/connections/summary.
type ConnectionSummaryResponse struct {
	Summary    models.ConnectionSummary `json:"summary"`
	Degraded   []string                 `json:"degraded_sources,omitempty"`
	ObservedAt time.Time                `json:"observed_at"`
}

// ConfigUpdateRequest is the body of POST /api/config.
type ConfigUpdateRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *APIServer) healthCheck(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSONResponse(w, models.HealthResponse{Status: "healthy", Timestamp: s.now()})
}

func (s *APIServer) getConnections(w http.ResponseWriter, r *http.Request) {
	snap := s.console.Connections(r.Context())

	records := snap.Records
	if records == nil {
		records = []models.ConnectionRecord{}
	}

	s.encodeJSONResponse(w, records)
}

func (s *APIServer) getConnectionSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.console.Connections(r.Context())

	s.encodeJSONResponse(w, ConnectionSummaryResponse{
		Summary:    snap.Summary,
		Degraded:   snap.Degraded,
		ObservedAt: snap.ObservedAt,
	})
}

func (s *APIServer) killConnection(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.ParseInt(mux.Vars(r)["pid"], 10, 32)
	if err != nil || pid <= 0 {
		writeError(w, "Invalid pid", http.StatusBadRequest)
		return
	}

	s.encodeJSONResponse(w, s.console.Terminate(r.Context(), int32(pid), actor(r)))
}

func (s *APIServer) getLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.encodeJSONResponse(w, s.console.Logs(limit))
}

func (s *APIServer) getLogStats(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSONResponse(w, s.console.LogStats())
}

func (s *APIServer) getLogSessions(w http.ResponseWriter, r *http.Request) {
	s.encodeJSONResponse(w, s.console.ActiveLogSessions(r.Context()))
}

func (s *APIServer) getConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.console.Config()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read daemon config")
		writeError(w, err.Error(), http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, cfg)
}

func (s *APIServer) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.encodeJSONResponse(w, s.console.UpdateConfig(r.Context(), req.Key, req.Value, actor(r)))
}

func (s *APIServer) getConfigHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	history, err := s.console.ConfigHistory(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list config history")
		writeError(w, err.Error(), http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, history)
}

func (s *APIServer) getAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.console.AuditLog(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list audit events")
		writeError(w, err.Error(), http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, events)
}

func (s *APIServer) getUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.console.Users(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list users")
		writeError(w, err.Error(), http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, users)
}

func (s *APIServer) createUser(w http.ResponseWriter, r *http.Request) {
	var req console.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.encodeJSONResponse(w, s.console.CreateUser(r.Context(), req, actor(r)))
}

func (s *APIServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.encodeJSONResponse(w, s.console.DeleteUser(r.Context(), mux.Vars(r)["username"], actor(r)))
}

func (s *APIServer) blockUser(w http.ResponseWriter, r *http.Request) {
	s.encodeJSONResponse(w, s.console.BlockUser(r.Context(), mux.Vars(r)["username"], actor(r)))
}

func (s *APIServer) unblockUser(w http.ResponseWriter, r *http.Request) {
	s.encodeJSONResponse(w, s.console.UnblockUser(r.Context(), mux.Vars(r)["username"], actor(r)))
}

func (s *APIServer) fixPermissions(w http.ResponseWriter, r *http.Request) {
	s.encodeJSONResponse(w, s.console.FixPermissions(r.Context(), mux.Vars(r)["username"], actor(r)))
}

func (s *APIServer) getStats(w http.ResponseWriter, r *http.Request) {
	s.encodeJSONResponse(w, s.console.Stats(r.Context()))
}

func actor(r *http.Request) string {
	return ftpHttp.UserFromContext(r.Context())
}

// queryLimit parses ?limit=; absent means 0, which callers treat as their default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}

	return limit, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}

	return true
}
