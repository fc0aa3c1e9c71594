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

package accounts

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/carverauto/ftpconsole/pkg/textfile"
)

const (
	// nobodyUID and above are reserved.
	nobodyUID      = 65534
	passwdFields   = 7
	defaultMinUID  = 1000
	defaultHomeDir = "/home"
)

// Account is one passwd entry.
type Account struct {
	Username string
	UID      int
	Home     string
	Shell    string
}

// Directory reads accounts from a passwd-format file. Regular users are those
// with a uid in [minUID, 65534).
type Directory struct {
	path   string
	minUID int
}

func NewDirectory(passwdPath string, minUID int) *Directory {
	if minUID <= 0 {
		minUID = defaultMinUID
	}

	return &Directory{path: passwdPath, minUID: minUID}
}

// List returns the regular user accounts in file order.
func (d *Directory) List() ([]Account, error) {
	lines, err := textfile.ReadLines(d.path)
	if err != nil {
		return nil, fmt.Errorf("read passwd: %w", err)
	}

	out := make([]Account, 0, len(lines))

	for _, line := range lines {
		acct, ok := parsePasswdLine(line)
		if !ok || acct.UID < d.minUID || acct.UID >= nobodyUID {
			continue
		}

		out = append(out, acct)
	}

	return out, nil
}

// Lookup finds a regular user by name.
func (d *Directory) Lookup(username string) (Account, bool, error) {
	accts, err := d.List()
	if err != nil {
		return Account{}, false, err
	}

	for _, a := range accts {
		if a.Username == username {
			return a, true, nil
		}
	}

	return Account{}, false, nil
}

// HomeDir returns the user's home, or the conventional default when the
// user is unknown or the file cannot be read.
func (d *Directory) HomeDir(username string) string {
	if acct, ok, err := d.Lookup(username); err == nil && ok && acct.Home != "" {
		return acct.Home
	}

	return path.Join(defaultHomeDir, username)
}

func parsePasswdLine(line string) (Account, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Account{}, false
	}

	fields := strings.Split(line, ":")
	if len(fields) != passwdFields {
		return Account{}, false
	}

	uid, err := strconv.Atoi(fields[2])
	if err != nil {
		return Account{}, false
	}

	return Account{
		Username: fields[0],
		UID:      uid,
		Home:     fields[5],
		Shell:    fields[6],
	}, true
}
