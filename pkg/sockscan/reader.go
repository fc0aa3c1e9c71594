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

// Package sockscan reads established control-port sessions from the OS socket table.
package sockscan

import (
	"context"
	"net"
	"net/netip"
	"strconv"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	stateEstablished = "ESTABLISHED"
	stateListen      = "LISTEN"

	// DefaultControlPort is the FTP control port.
	DefaultControlPort = 21
)

// Snapshot is one pass over the TCP socket table.
type Snapshot struct {
	Sessions []models.SocketSession
	// ListenerPIDs own a listening socket on the port; they are the daemon's
	// acceptor, not a client session.
	ListenerPIDs []int32
	Degraded     bool
}

// Reader lists sockets through gopsutil.
type Reader struct {
	log         logger.Logger
	connections func(ctx context.Context, kind string) ([]psnet.ConnectionStat, error)
}

func NewReader(log logger.Logger) *Reader {
	return &Reader{
		log:         log,
		connections: psnet.ConnectionsWithContext,
	}
}

// List returns the ESTABLISHED TCP sessions whose local port equals port.
// Entries with a malformed remote endpoint are kept with RemoteIP "unknown".
// Pid is 0 when the OS hides the owning process.
func (r *Reader) List(ctx context.Context, port uint32) Snapshot {
	if port == 0 {
		port = DefaultControlPort
	}

	conns, err := r.connections(ctx, "tcp")
	if err != nil {
		r.log.Warn().Err(err).Uint32("port", port).Msg("socket table unavailable; reporting no sessions")
		return Snapshot{Sessions: []models.SocketSession{}, Degraded: true}
	}

	snap := Snapshot{Sessions: make([]models.SocketSession, 0, len(conns))}
	listeners := make(map[int32]struct{})

	for i := range conns {
		c := &conns[i]
		if c.Laddr.Port != port {
			continue
		}

		switch c.Status {
		case stateListen:
			if c.Pid > 0 {
				if _, seen := listeners[c.Pid]; !seen {
					listeners[c.Pid] = struct{}{}
					snap.ListenerPIDs = append(snap.ListenerPIDs, c.Pid)
				}
			}
		case stateEstablished:
			snap.Sessions = append(snap.Sessions, sessionFrom(c))
		}
	}

	r.log.Debug().
		Int("sessions", len(snap.Sessions)).
		Int("listeners", len(snap.ListenerPIDs)).
		Uint32("port", port).
		Msg("Read socket table")

	return snap
}

func sessionFrom(c *psnet.ConnectionStat) models.SocketSession {
	local, _ := formatEndpoint(c.Laddr)
	remote, remoteIP := formatEndpoint(c.Raddr)

	return models.SocketSession{
		PID:        c.Pid,
		LocalAddr:  local,
		RemoteAddr: remote,
		RemoteIP:   remoteIP,
	}
}

// formatEndpoint renders addr as ip:port and returns the bare ip.
// An unparseable address yields ("", "unknown").
func formatEndpoint(addr psnet.Addr) (string, string) {
	ip, ok := ParseIP(addr.IP)
	if !ok {
		return "", models.Unknown
	}

	return net.JoinHostPort(ip, strconv.FormatUint(uint64(addr.Port), 10)), ip
}

// ParseIP normalizes raw to its textual form, reporting IPv4-mapped IPv6
// addresses as dotted quads.
func ParseIP(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return "", false
	}

	return addr.Unmap().WithZone("").String(), true
}
