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

package models

import "time"

const (
	// Unknown is the placeholder for any value no evidence source could supply.
	Unknown = "unknown"
	// Nobody is the unprivileged account the daemon runs idle sessions under.
	Nobody = "nobody"
)

// ConnectionStatus is a provenance-dependent confidence label, not a TCP state machine.
type ConnectionStatus string

const (
	StatusEstablished ConnectionStatus = "ESTABLISHED"
	StatusActive      ConnectionStatus = "ACTIVE"
	StatusInfo        ConnectionStatus = "INFO"
	StatusUnknown     ConnectionStatus = Unknown
)

// EvidenceSource names the reader that produced an unmerged observation.
type EvidenceSource string

const (
	SourceLog     EvidenceSource = "log"
	SourceNetstat EvidenceSource = "netstat"
	SourceProcess EvidenceSource = "process"
)

// ConnectionRecord is one client connection as seen in a single registry snapshot.
type ConnectionRecord struct {
	PID           int32            `json:"pid"`
	RemoteIP      string           `json:"remote_ip"`
	Username      string           `json:"username"`
	ConnectedAt   time.Time        `json:"connected_at"`
	LocalAddress  string           `json:"local_address,omitempty"`
	RemoteAddress string           `json:"remote_address,omitempty"`
	Status        ConnectionStatus `json:"status"`
	Source        EvidenceSource   `json:"source,omitempty"`
}

// ConnectionKey groups observations of the same connection.
type ConnectionKey struct {
	PID      int32
	RemoteIP string
}

func (r *ConnectionRecord) Key() ConnectionKey {
	return ConnectionKey{PID: r.PID, RemoteIP: r.RemoteIP}
}

// ProcessInfo is a daemon process from the OS process table.
type ProcessInfo struct {
	PID       int32     `json:"pid"`
	Owner     string    `json:"owner"`
	StartTime time.Time `json:"start_time"`
}

// SocketSession is an established control-port TCP session from the OS socket table.
type SocketSession struct {
	PID        int32  `json:"pid"`
	LocalAddr  string `json:"local_addr"`
	RemoteAddr string `json:"remote_addr"`
	RemoteIP   string `json:"remote_ip"`
}

// ConnectionSummary is the scalar dashboard view of a registry snapshot.
type ConnectionSummary struct {
	ActiveConnections int `json:"active_connections"`
	UniqueIPs         int `json:"unique_ips"`
	UniqueUsers       int `json:"unique_users"`
}

// IsPlaceholderUser reports whether a username carries no identity.
func IsPlaceholderUser(name string) bool {
	return name == "" || name == Unknown || name == Nobody
}
