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
	"strconv"
	"strings"

	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	actionLogin     = "LOGIN"
	actionLogout    = "LOGOUT"
	sessionClosedKw = "session closed"
)

// RunningFunc reports whether an OS process is alive.
type RunningFunc func(ctx context.Context, pid int32) bool

// ActiveSessions replays events in order: a successful LOGIN opens a session
// for its pid, a LOGOUT or "session closed" line for that pid closes it.
// Sessions still open at the end are returned only if their pid is running.
// The returned events are the opening LOGIN lines in the order they opened.
func ActiveSessions(ctx context.Context, events []models.LogEvent, running RunningFunc) []models.LogEvent {
	open := make(map[int32]models.LogEvent)
	order := make([]int32, 0)

	for i := range events {
		ev := &events[i]

		pid, ok := eventPID(ev)
		if !ok {
			continue
		}

		switch {
		case isLogin(ev):
			if _, exists := open[pid]; !exists {
				order = append(order, pid)
			}

			open[pid] = *ev
		case isLogout(ev):
			delete(open, pid)
		}
	}

	active := make([]models.LogEvent, 0, len(open))

	for _, pid := range order {
		ev, ok := open[pid]
		if !ok {
			continue
		}

		// a pid closed and reopened is listed once
		delete(open, pid)

		if running(ctx, pid) {
			active = append(active, ev)
		}
	}

	return active
}

// Stats counts logins, failures, transfers and distinct client addresses.
func Stats(events []models.LogEvent) models.LogStats {
	stats := models.LogStats{TotalEntries: len(events)}
	ips := make(map[string]struct{})

	for i := range events {
		ev := &events[i]

		if strings.Contains(ev.Action, actionLogin) {
			if ev.Status == models.LogStatusOK {
				stats.SuccessfulLogins++
			} else {
				stats.FailedLogins++
			}
		}

		if strings.Contains(ev.Action, models.ActionTransfer) {
			stats.Transfers++
		}

		if ev.IPAddress != "" && ev.IPAddress != models.Unknown {
			ips[ev.IPAddress] = struct{}{}
		}
	}

	stats.UniqueIPs = len(ips)

	return stats
}

func eventPID(ev *models.LogEvent) (int32, bool) {
	pid, err := strconv.ParseInt(ev.PID, 10, 32)
	if err != nil || pid <= 0 {
		return 0, false
	}

	return int32(pid), true
}

func actionName(ev *models.LogEvent) string {
	return strings.ToUpper(strings.TrimSuffix(ev.Action, ":"))
}

func isLogin(ev *models.LogEvent) bool {
	return actionName(ev) == actionLogin && ev.Status == models.LogStatusOK
}

func isLogout(ev *models.LogEvent) bool {
	return actionName(ev) == actionLogout ||
		strings.Contains(strings.ToLower(ev.Details), sessionClosedKw)
}
