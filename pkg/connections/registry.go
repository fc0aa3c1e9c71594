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

// Package connections exposes the live view of FTP client connections and
// the terminate-by-pid mutator.
package connections

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sys/unix"

	"github.com/carverauto/ftpconsole/pkg/correlate"
	"github.com/carverauto/ftpconsole/pkg/ftplog"
	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
	"github.com/carverauto/ftpconsole/pkg/procscan"
	"github.com/carverauto/ftpconsole/pkg/sockscan"
)

const (
	// resolverLines is the session log depth the username resolver may scan.
	resolverLines = 100

	sourceProcess = "process"
	sourceSocket  = "netstat"
)

var errInvalidPID = errors.New("pid must be positive")

// ProcessSource lists the daemon's processes.
type ProcessSource interface {
	List(ctx context.Context) procscan.Snapshot
	Running(ctx context.Context, pid int32) bool
}

// SocketSource lists established sessions on a port.
type SocketSource interface {
	List(ctx context.Context, port uint32) sockscan.Snapshot
}

// LogSource recognizes open sessions in the daemon's session log.
type LogSource interface {
	ActiveSessions(ctx context.Context, running ftplog.RunningFunc) []models.LogEvent
	SessionLines(maxLines int) []string
}

// Config parameterizes the registry.
type Config struct {
	ControlPort    uint32
	ServiceAccount string
}

// Snapshot is the registry's answer to one ListActive call.
type Snapshot struct {
	Records    []models.ConnectionRecord `json:"connections"`
	Summary    models.ConnectionSummary  `json:"summary"`
	Degraded   []string                  `json:"degraded_sources,omitempty"`
	ObservedAt time.Time                 `json:"observed_at"`
}

// Registry is a read-through facade over the three readers and the correlator.
// It holds no cached state; every call observes the system afresh.
type Registry struct {
	cfg    Config
	procs  ProcessSource
	socks  SocketSource
	logs   LogSource
	log    logger.Logger
	signal func(pid int, sig unix.Signal) error
	now    func() time.Time
}

func NewRegistry(cfg Config, procs ProcessSource, socks SocketSource, logs LogSource, log logger.Logger) *Registry {
	if cfg.ControlPort == 0 {
		cfg.ControlPort = sockscan.DefaultControlPort
	}

	return &Registry{
		cfg:    cfg,
		procs:  procs,
		socks:  socks,
		logs:   logs,
		log:    log,
		signal: unix.Kill,
		now:    time.Now,
	}
}

// ListActive observes processes, sockets and the session log in sequence and
// merges them. A source that cannot be read contributes nothing and is named
// in Degraded.
func (r *Registry) ListActive(ctx context.Context) Snapshot {
	observedAt := r.now()

	procSnap := r.procs.List(ctx)
	sockSnap := r.socks.List(ctx, r.cfg.ControlPort)
	sessions := r.logs.ActiveSessions(ctx, r.procs.Running)

	var degraded []string
	if procSnap.Degraded {
		degraded = append(degraded, sourceProcess)
	}

	if sockSnap.Degraded {
		degraded = append(degraded, sourceSocket)
	}

	records := correlate.Merge(correlate.Evidence{
		LogSessions:    sessions,
		Sockets:        sockSnap.Sessions,
		Processes:      withoutListeners(procSnap.Processes, sockSnap.ListenerPIDs),
		RecentLines:    r.logs.SessionLines(resolverLines),
		ServiceAccount: r.cfg.ServiceAccount,
		ObservedAt:     observedAt,
	})

	r.log.Debug().
		Int("records", len(records)).
		Int("log_sessions", len(sessions)).
		Int("sockets", len(sockSnap.Sessions)).
		Int("processes", len(procSnap.Processes)).
		Strs("degraded", degraded).
		Msg("Listed active connections")

	return Snapshot{
		Records:    records,
		Summary:    Summarize(records),
		Degraded:   degraded,
		ObservedAt: observedAt,
	}
}

// Terminate asks pid to exit with SIGTERM and escalates to SIGKILL if that
// fails. It does not check the pid against the registry and does not wait for
// the process to exit.
func (r *Registry) Terminate(pid int32) (bool, string) {
	if pid <= 0 {
		return false, fmt.Sprintf("invalid pid %d: %v", pid, errInvalidPID)
	}

	termErr := r.signal(int(pid), unix.SIGTERM)
	if termErr == nil {
		r.log.Info().Int32("pid", pid).Msg("Sent SIGTERM to connection")
		return true, "Connection terminated"
	}

	killErr := r.signal(int(pid), unix.SIGKILL)
	if killErr == nil {
		r.log.Warn().Err(termErr).Int32("pid", pid).Msg("SIGTERM failed; sent SIGKILL")
		return true, fmt.Sprintf("Connection killed (SIGTERM failed: %v)", termErr)
	}

	r.log.Error().Err(killErr).Int32("pid", pid).Msg("Failed to terminate connection")

	if errors.Is(killErr, termErr) {
		return false, fmt.Sprintf("Error terminating connection: %v", killErr)
	}

	return false, fmt.Sprintf("Error terminating connection: %v (SIGTERM: %v)", killErr, termErr)
}

// Summarize derives the dashboard counters from a record set.
func Summarize(records []models.ConnectionRecord) models.ConnectionSummary {
	ips := make(map[string]struct{})
	users := make(map[string]struct{})

	for i := range records {
		if ip := records[i].RemoteIP; ip != "" && ip != models.Unknown {
			ips[ip] = struct{}{}
		}

		if name := records[i].Username; !models.IsPlaceholderUser(name) {
			users[name] = struct{}{}
		}
	}

	return models.ConnectionSummary{
		ActiveConnections: len(records),
		UniqueIPs:         len(ips),
		UniqueUsers:       len(users),
	}
}

func withoutListeners(procs []models.ProcessInfo, listeners []int32) []models.ProcessInfo {
	if len(listeners) == 0 {
		return procs
	}

	out := make([]models.ProcessInfo, 0, len(procs))

	for _, p := range procs {
		if !slices.Contains(listeners, p.PID) {
			out = append(out, p)
		}
	}

	return out
}
