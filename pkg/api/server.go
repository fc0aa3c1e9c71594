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

// Package api provides the HTTP API server for the FTP console
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	ftpHttp "github.com/carverauto/ftpconsole/pkg/http"
	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	// restarts triggered by mutations can take a while
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	healthPath = "/health"
)

// APIServer serves the console over HTTP.
type APIServer struct {
	console Console
	router  *mux.Router
	log     logger.Logger
	cors    models.CORSConfig
	auth    ftpHttp.BasicAuthOptions
	now     func() time.Time
}

// NewAPIServer creates a new API server instance over c.
func NewAPIServer(c Console, log logger.Logger, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		console: c,
		router:  mux.NewRouter(),
		log:     log,
		now:     time.Now,
	}

	for _, o := range options {
		o(s)
	}

	s.auth.ExcludePaths = []string{healthPath}
	s.auth.Logger = log

	s.setupRoutes()

	return s
}

// WithCORS sets the origins allowed to call the API from a browser
func WithCORS(cfg models.CORSConfig) func(*APIServer) {
	return func(server *APIServer) {
		server.cors = cfg
	}
}

// WithBasicAuth sets the administrator credentials. passwordHash is a bcrypt hash.
func WithBasicAuth(username, passwordHash string) func(*APIServer) {
	return func(server *APIServer) {
		server.auth.Username = username
		server.auth.PasswordHash = passwordHash
	}
}

func (s *APIServer) setupRoutes() {
	s.router.HandleFunc(healthPath, s.healthCheck).Methods(http.MethodGet)

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(ftpHttp.BasicAuthMiddlewareWithOptions(s.auth))

	protected.HandleFunc("/connections", s.getConnections).Methods(http.MethodGet)
	protected.HandleFunc("/connections/summary", s.getConnectionSummary).Methods(http.MethodGet)
	protected.HandleFunc("/connections/{pid}/kill", s.killConnection).Methods(http.MethodPost)

	protected.HandleFunc("/logs", s.getLogs).Methods(http.MethodGet)
	protected.HandleFunc("/logs/stats", s.getLogStats).Methods(http.MethodGet)
	protected.HandleFunc("/logs/sessions", s.getLogSessions).Methods(http.MethodGet)

	protected.HandleFunc("/config", s.getConfig).Methods(http.MethodGet)
	protected.HandleFunc("/config", s.updateConfig).Methods(http.MethodPost)
	protected.HandleFunc("/config/history", s.getConfigHistory).Methods(http.MethodGet)

	protected.HandleFunc("/users", s.getUsers).Methods(http.MethodGet)
	protected.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	protected.HandleFunc("/users/{username}", s.deleteUser).Methods(http.MethodDelete)
	protected.HandleFunc("/users/{username}/block", s.blockUser).Methods(http.MethodPost)
	protected.HandleFunc("/users/{username}/unblock", s.unblockUser).Methods(http.MethodPost)
	protected.HandleFunc("/users/{username}/fix-permissions", s.fixPermissions).Methods(http.MethodPost)

	protected.HandleFunc("/stats", s.getStats).Methods(http.MethodGet)
	protected.HandleFunc("/audit", s.getAudit).Methods(http.MethodGet)
}

// Handler is the router wrapped in the request ID and CORS/logging middleware.
// The wrapping happens outside the router so preflight requests, which match
// no route, still get CORS headers.
func (s *APIServer) Handler() http.Handler {
	return ftpHttp.RequestIDMiddleware(ftpHttp.CommonMiddleware(s.router, s.cors, s.log))
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       defaultReadTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", addr).Msg("Starting API server")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		s.log.Info().Msg("Shutting down API server")

		return srv.Shutdown(shutdownCtx)
	}
}

// encodeJSONResponse encodes a response as JSON
func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		// Fallback in case encoding fails
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
