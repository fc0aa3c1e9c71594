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
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const minPasswordLength = 6

var (
	ErrInvalidUsername  = errors.New("invalid username")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidPassword  = errors.New("password must not contain ':' or newlines")
	ErrInvalidHome      = errors.New("invalid home directory")

	usernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
)

// ValidateUsername accepts portable POSIX login names.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}

	return nil
}

func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}

	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	if strings.ContainsAny(password, ":\n") {
		return ErrInvalidPassword
	}

	return nil
}

// ResolveHome returns home cleaned, or /home/<username> when home is empty.
func ResolveHome(username, home string) (string, error) {
	home = strings.TrimSpace(home)
	if home == "" {
		return path.Join("/home", username), nil
	}

	if !filepath.IsAbs(home) || strings.Contains(home, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidHome, home)
	}

	cleaned := filepath.Clean(home)
	if cleaned == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHome, home)
	}

	return cleaned, nil
}
