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

// Package textfile reads line-oriented files and replaces them atomically
// under an advisory lock.
package textfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	defaultMode  = 0o644
	lockSuffix   = ".lock"
	backupSuffix = ".backup"
	maxLineBytes = 1024 * 1024
)

var errEmptyPath = errors.New("path is empty")

// ReadLines returns the file's lines without line terminators.
func ReadLines(path string) ([]string, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	lines := make([]string, 0, 64)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return lines, nil
}

// AtomicReplace writes content to a temporary file beside path, syncs it and
// renames it into place, so readers see either the old or the new file.
// An existing file's permission bits are preserved.
func AtomicReplace(path string, content []byte) error {
	if path == "" {
		return errEmptyPath
	}

	mode := fs.FileMode(defaultMode)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	return writeAtomic(path, content, mode)
}

func writeAtomic(path string, content []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file for %s: %w", path, err)
	}

	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()

		return fmt.Errorf("write temporary file for %s: %w", path, err)
	}

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()

		return fmt.Errorf("chmod temporary file for %s: %w", path, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()

		return fmt.Errorf("sync temporary file for %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temporary file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

// Lock is an exclusive advisory lock on "<path>.lock".
type Lock struct {
	f *os.File
}

// Acquire blocks until the lock for path is held.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	f, err := os.OpenFile(path+lockSuffix, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock for %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	return &Lock{f: f}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}

	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	closeErr := l.f.Close()
	l.f = nil

	return errors.Join(err, closeErr)
}

// Update runs read, compute and replace under the file's lock. A missing
// file reads as empty. fn returning an error leaves the file untouched.
func Update(path string, fn func(lines []string) ([]string, error)) error {
	lock, err := Acquire(path)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	lines, err := ReadLines(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	updated, err := fn(lines)
	if err != nil {
		return err
	}

	return AtomicReplace(path, Join(updated))
}

// Join renders lines with a trailing newline.
func Join(lines []string) []byte {
	if len(lines) == 0 {
		return []byte{}
	}

	return []byte(strings.Join(lines, "\n") + "\n")
}

// Backup copies path to "<path>.backup" and returns the backup path.
func Backup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}

	dst := path + backupSuffix
	if err := writeAtomic(dst, data, info.Mode().Perm()); err != nil {
		return "", err
	}

	return dst, nil
}
