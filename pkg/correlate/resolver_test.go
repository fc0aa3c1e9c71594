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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/ftpconsole/pkg/models"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	lines := []string{
		`Tue Jun  3 10:00:00 2025 [pid 300] [olduser] OK LOGIN: Client "10.0.0.3"`,
		`Tue Jun  3 10:30:40 2025 [pid 301] CONNECT: Client "10.0.0.1"`,
		`Tue Jun  3 10:30:45 2025 [pid 302] [alice] OK LOGIN: Client "10.0.0.1"`,
		`Tue Jun  3 10:31:00 2025 [pid 300] [newuser] OK LOGIN: Client "10.0.0.3"`,
		`Tue Jun  3 10:32:00 2025 [pid 400] [bob] FAIL LOGIN: Client "10.0.0.4"`,
	}

	r := NewResolver(lines, "ftp")

	tests := []struct {
		name  string
		pid   int32
		ip    string
		owner string
		want  string
	}{
		{name: "pid tag newest wins", pid: 300, ip: models.Unknown, want: "newuser"},
		{name: "pid tag beats owner", pid: 302, ip: "10.0.0.1", owner: "carol", want: "alice"},
		{name: "login line by address", pid: 999, ip: "10.0.0.1", want: "alice"},
		{name: "failed login is not an identity", pid: 0, ip: "10.0.0.4", owner: "dave", want: "dave"},
		{name: "owner fallback", pid: 555, ip: "10.9.9.9", owner: "erin", want: "erin"},
		{name: "root owner rejected", pid: 555, ip: "10.9.9.9", owner: "root", want: models.Unknown},
		{name: "nobody owner rejected", pid: 555, ip: "10.9.9.9", owner: models.Nobody, want: models.Unknown},
		{name: "service account rejected", pid: 555, ip: "10.9.9.9", owner: "ftp", want: models.Unknown},
		{name: "nothing known", pid: 0, ip: models.Unknown, want: models.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, r.Resolve(tt.pid, tt.ip, tt.owner))
		})
	}
}

func TestResolveMatchesWholeAddress(t *testing.T) {
	t.Parallel()

	lines := []string{
		`Tue Jun  3 10:30:45 2025 [pid 302] [alice] OK LOGIN: Client "10.0.0.1"`,
		`Tue Jun  3 10:31:00 2025 [pid 7] [mallory] OK LOGIN: Client "10.0.0.12"`,
		`Tue Jun  3 10:32:00 2025 [pid 8] [frank] OK LOGIN: Client "::ffff:10.0.0.8"`,
	}

	r := NewResolver(lines, "")

	tests := []struct {
		ip   string
		want string
	}{
		{ip: "10.0.0.1", want: "alice"},
		{ip: "10.0.0.12", want: "mallory"},
		{ip: "10.0.0.8", want: "frank"},
		{ip: "10.0.0.", want: models.Unknown},
		{ip: "0.0.0.1", want: models.Unknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Resolve(0, tt.ip, ""), tt.ip)
	}
}

func TestResolveScanDepths(t *testing.T) {
	t.Parallel()

	lines := []string{`Tue Jun  3 09:00:00 2025 [pid 7] [deep] OK LOGIN: Client "10.1.1.1"`}
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf(`Tue Jun  3 10:00:00 2025 [pid %d] CONNECT: Client "10.2.2.2"`, 1000+i))
	}

	r := NewResolver(lines, "")

	// beyond the 50-line pid window but inside the 100-line login window
	assert.Equal(t, "deep", r.Resolve(7, "10.1.1.1", ""))
	assert.Equal(t, models.Unknown, r.Resolve(7, models.Unknown, ""))

	for i := 0; i < 50; i++ {
		lines = append(lines, `Tue Jun  3 11:00:00 2025 filler`)
	}

	assert.Equal(t, models.Unknown, NewResolver(lines, "").Resolve(7, "10.1.1.1", ""))
}
