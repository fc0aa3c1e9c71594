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
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/carverauto/ftpconsole/pkg/textfile"
)

// BlockList is the daemon's user list file used as a deny list: one
// username per line.
type BlockList struct {
	path string
}

func NewBlockList(path string) *BlockList {
	return &BlockList{path: path}
}

// List returns the blocked usernames. A missing file blocks nobody.
func (b *BlockList) List() ([]string, error) {
	lines, err := textfile.ReadLines(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read block list: %w", err)
	}

	return names(lines), nil
}

func (b *BlockList) IsBlocked(username string) (bool, error) {
	blocked, err := b.List()
	if err != nil {
		return false, err
	}

	return slices.Contains(blocked, username), nil
}

// Block appends username unless it is already listed. It reports whether
// the file changed.
func (b *BlockList) Block(username string) (bool, error) {
	changed := false

	err := textfile.Update(b.path, func(lines []string) ([]string, error) {
		if slices.Contains(names(lines), username) {
			return lines, nil
		}

		changed = true

		return append(lines, username), nil
	})
	if err != nil {
		return false, fmt.Errorf("block %s: %w", username, err)
	}

	return changed, nil
}

// Unblock removes every line naming username. It reports whether the file changed.
func (b *BlockList) Unblock(username string) (bool, error) {
	changed := false

	err := textfile.Update(b.path, func(lines []string) ([]string, error) {
		out := make([]string, 0, len(lines))

		for _, line := range lines {
			if strings.TrimSpace(line) == username {
				changed = true
				continue
			}

			out = append(out, line)
		}

		return out, nil
	})
	if err != nil {
		return false, fmt.Errorf("unblock %s: %w", username, err)
	}

	return changed, nil
}

func names(lines []string) []string {
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}

		out = append(out, name)
	}

	return out
}
