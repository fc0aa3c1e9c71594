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
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
)

const tailChunkSize = 64 * 1024

// TailLines returns at most the last maxLines lines of the file at path,
// reading backwards from EOF so the cost is bounded by the tail size rather
// than the file size.
func TailLines(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return []string{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return tailFrom(f, info.Size(), maxLines)
}

// tailFrom reads backwards from size. A source that turns out shorter than
// size (truncated or rotated after Stat) contributes only the bytes read.
func tailFrom(r io.ReaderAt, size int64, maxLines int) ([]string, error) {
	var (
		buf      []byte
		offset   = size
		newlines int
	)

	// one newline more than maxLines guarantees maxLines complete lines
	for offset > 0 && newlines <= maxLines {
		n := min(int64(tailChunkSize), offset)
		offset -= n

		chunk := make([]byte, n)

		read, err := r.ReadAt(chunk, offset)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		chunk = chunk[:read]

		newlines += bytes.Count(chunk, []byte{'\n'})
		buf = append(chunk, buf...)
	}

	text := strings.TrimRight(string(buf), "\r\n")
	if text == "" {
		return []string{}, nil
	}

	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines, nil
}
