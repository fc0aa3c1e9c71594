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

package correlate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	pidScanDepth   = 50
	loginScanDepth = 100
	rootAccount    = "root"
)

var (
	pidUserPattern   = regexp.MustCompile(`\[pid\s+(\d+)\]\s+\[([^\]]+)\]`)
	loginUserPattern = regexp.MustCompile(`\[([^\]]+)\]\s+OK LOGIN`)
)

// Resolver attributes a username to a pid or client address by scraping the
// recent session log, falling back to the OS process owner.
type Resolver struct {
	lines          []string
	serviceAccount string
}

// NewResolver takes the session log tail, oldest line first.
func NewResolver(lines []string, serviceAccount string) *Resolver {
	return &Resolver{lines: lines, serviceAccount: serviceAccount}
}

// Resolve returns the best username for a connection, or "unknown".
//  1. the newest of the last 50 lines tagged with the pid and a bracketed user
//  2. the newest of the last 100 lines mentioning ip and LOGIN, user before "OK LOGIN"
//  3. owner, unless it is a generic service account
func (r *Resolver) Resolve(pid int32, ip, owner string) string {
	if name := r.byPID(pid); name != "" {
		return name
	}

	if name := r.byLogin(ip); name != "" {
		return name
	}

	if r.ownerUsable(owner) {
		return owner
	}

	return models.Unknown
}

func (r *Resolver) byPID(pid int32) string {
	if pid <= 0 {
		return ""
	}

	want := strconv.FormatInt(int64(pid), 10)

	for _, line := range newestFirst(r.lines, pidScanDepth) {
		m := pidUserPattern.FindStringSubmatch(line)
		if m != nil && m[1] == want {
			return m[2]
		}
	}

	return ""
}

func (r *Resolver) byLogin(ip string) string {
	if ip == "" || ip == models.Unknown {
		return ""
	}

	addr := addressPattern(ip)

	for _, line := range newestFirst(r.lines, loginScanDepth) {
		if !strings.Contains(line, "LOGIN") || !addr.MatchString(line) {
			continue
		}

		if m := loginUserPattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}

	return ""
}

// addressPattern matches ip as a whole address, optionally IPv4-mapped, so
// 10.0.0.1 does not match 10.0.0.12.
func addressPattern(ip string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^0-9A-Za-z.:])(?:::ffff:)?` + regexp.QuoteMeta(ip) + `(?:$|[^0-9A-Za-z.:])`)
}

func (r *Resolver) ownerUsable(owner string) bool {
	if models.IsPlaceholderUser(owner) || owner == rootAccount {
		return false
	}

	return r.serviceAccount == "" || owner != r.serviceAccount
}

// newestFirst returns up to depth trailing lines in reverse order.
func newestFirst(lines []string, depth int) []string {
	start := max(len(lines)-depth, 0)
	out := make([]string, 0, len(lines)-start)

	for i := len(lines) - 1; i >= start; i-- {
		out = append(out, lines[i])
	}

	return out
}
