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

// Package correlate merges process, socket and log evidence into one
// connection record per (pid, remote ip).
package correlate

import (
	"slices"
	"strconv"
	"time"

	"github.com/carverauto/ftpconsole/pkg/models"
)

// Evidence is everything observed in one snapshot window.
type Evidence struct {
	// LogSessions are the still-open logins recognized from the session log.
	LogSessions []models.LogEvent
	Sockets     []models.SocketSession
	Processes   []models.ProcessInfo
	// RecentLines is the raw session log tail, oldest first, used for username lookups.
	RecentLines    []string
	ServiceAccount string
	ObservedAt     time.Time
}

// Merge folds the evidence into records. Each distinct (pid, remote ip) key
// across the three sources yields exactly one record, emitted in first-seen
// order; callers must not depend on that order.
func Merge(ev Evidence) []models.ConnectionRecord {
	observations := Observations(ev)

	order := make([]models.ConnectionKey, 0, len(observations))
	groups := make(map[models.ConnectionKey][]models.ConnectionRecord, len(observations))

	for i := range observations {
		key := observations[i].Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}

		groups[key] = append(groups[key], observations[i])
	}

	out := make([]models.ConnectionRecord, 0, len(order))
	for _, key := range order {
		out = append(out, finalize(Fold(groups[key]), ev.ObservedAt))
	}

	return out
}

// Observations converts each source into provisional records, in
// log, socket, process order. Socket and process records that carry no
// username are enriched through the Resolver first. A process only becomes
// an "unknown" address record when neither the log nor the socket table
// ties its pid to an address.
func Observations(ev Evidence) []models.ConnectionRecord {
	resolver := NewResolver(ev.RecentLines, ev.ServiceAccount)

	owners := make(map[int32]string, len(ev.Processes))
	for _, p := range ev.Processes {
		owners[p.PID] = p.Owner
	}

	pidIPs := make(map[int32][]string)
	addIP := func(pid int32, ip string) {
		if known(ip) && !slices.Contains(pidIPs[pid], ip) {
			pidIPs[pid] = append(pidIPs[pid], ip)
		}
	}

	out := make([]models.ConnectionRecord, 0, len(ev.LogSessions)+len(ev.Sockets)+len(ev.Processes))

	for i := range ev.LogSessions {
		if rec, ok := fromLog(&ev.LogSessions[i]); ok {
			addIP(rec.PID, rec.RemoteIP)
			out = append(out, rec)
		}
	}

	for _, s := range ev.Sockets {
		ip := orUnknown(s.RemoteIP)
		addIP(s.PID, ip)

		out = append(out, models.ConnectionRecord{
			PID:           s.PID,
			RemoteIP:      ip,
			Username:      resolver.Resolve(s.PID, ip, owners[s.PID]),
			LocalAddress:  orUnknown(s.LocalAddr),
			RemoteAddress: orUnknown(s.RemoteAddr),
			Status:        models.StatusEstablished,
			Source:        models.SourceNetstat,
		})
	}

	for _, p := range ev.Processes {
		ips := pidIPs[p.PID]
		if len(ips) == 0 {
			ips = []string{models.Unknown}
		}

		for _, ip := range ips {
			out = append(out, models.ConnectionRecord{
				PID:           p.PID,
				RemoteIP:      ip,
				Username:      resolver.Resolve(p.PID, ip, p.Owner),
				ConnectedAt:   p.StartTime,
				LocalAddress:  models.Unknown,
				RemoteAddress: models.Unknown,
				Status:        models.StatusUnknown,
				Source:        models.SourceProcess,
			})
		}
	}

	return out
}

// Fold collapses records sharing a key, left to right. Username: a log
// candidate replaces a placeholder; any non-placeholder candidate replaces a
// placeholder; otherwise the current value stays. Addresses and status: the
// last value that is not "unknown" wins. ConnectedAt: the last non-zero wins.
func Fold(records []models.ConnectionRecord) models.ConnectionRecord {
	if len(records) == 0 {
		return models.ConnectionRecord{}
	}

	cur := records[0]

	for _, cand := range records[1:] {
		if models.IsPlaceholderUser(cur.Username) &&
			(cand.Source == models.SourceLog || !models.IsPlaceholderUser(cand.Username)) {
			cur.Username = cand.Username
		}

		if known(cand.LocalAddress) {
			cur.LocalAddress = cand.LocalAddress
		}

		if known(cand.RemoteAddress) {
			cur.RemoteAddress = cand.RemoteAddress
		}

		if known(string(cand.Status)) {
			cur.Status = cand.Status
		}

		if !cand.ConnectedAt.IsZero() {
			cur.ConnectedAt = cand.ConnectedAt
		}

		cur.Source = cand.Source
	}

	return cur
}

func finalize(rec models.ConnectionRecord, observedAt time.Time) models.ConnectionRecord {
	if rec.Username == "" {
		rec.Username = models.Unknown
	}

	if !known(string(rec.Status)) {
		rec.Status = models.StatusInfo
	}

	if rec.ConnectedAt.IsZero() {
		rec.ConnectedAt = observedAt
	}

	if !known(rec.LocalAddress) {
		rec.LocalAddress = ""
	}

	if !known(rec.RemoteAddress) {
		rec.RemoteAddress = ""
	}

	rec.Source = ""

	return rec
}

func fromLog(ev *models.LogEvent) (models.ConnectionRecord, bool) {
	pid, err := strconv.ParseInt(ev.PID, 10, 32)
	if err != nil || pid <= 0 {
		return models.ConnectionRecord{}, false
	}

	return models.ConnectionRecord{
		PID:           int32(pid),
		RemoteIP:      orUnknown(ev.IPAddress),
		Username:      orUnknown(ev.Username),
		ConnectedAt:   ev.Timestamp,
		LocalAddress:  models.Unknown,
		RemoteAddress: models.Unknown,
		Status:        models.StatusActive,
		Source:        models.SourceLog,
	}, true
}

func known(v string) bool {
	return v != "" && v != models.Unknown
}

func orUnknown(v string) string {
	if v == "" {
		return models.Unknown
	}

	return v
}
