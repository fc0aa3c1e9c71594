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
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/ftpconsole/pkg/execx"
	"github.com/carverauto/ftpconsole/pkg/logger"
)

const (
	nologinShell = "/sbin/nologin"
	homeMode     = "755"
)

// SystemProvisioner manages accounts with the shadow-utils command line tools.
type SystemProvisioner struct {
	runner execx.Runner
	shell  string
	log    logger.Logger
}

func NewSystemProvisioner(runner execx.Runner, log logger.Logger) *SystemProvisioner {
	return &SystemProvisioner{
		runner: runner,
		shell:  nologinShell,
		log:    log,
	}
}

// Create adds the account with a home directory and a login-less shell, sets
// its password and hands the home directory to the user.
func (p *SystemProvisioner) Create(ctx context.Context, username, password, home string) error {
	steps := []execx.Command{
		{Name: "useradd", Args: []string{"-m", "-d", home, "-s", p.shell, username}},
		{Name: "chpasswd", Stdin: username + ":" + password + "\n"},
		{Name: "chmod", Args: []string{homeMode, home}},
		{Name: "chown", Args: []string{username + ":" + username, home}},
	}

	for _, cmd := range steps {
		if _, err := p.runner.Run(ctx, cmd); err != nil {
			return fmt.Errorf("create user %s: %w", username, err)
		}
	}

	p.log.Info().Str("username", username).Str("home", home).Msg("Created system user")

	return nil
}

// Delete removes the account and its home directory.
func (p *SystemProvisioner) Delete(ctx context.Context, username string) error {
	if _, err := p.runner.Run(ctx, execx.Command{Name: "userdel", Args: []string{"-r", username}}); err != nil {
		return fmt.Errorf("delete user %s: %w", username, err)
	}

	p.log.Info().Str("username", username).Msg("Deleted system user")

	return nil
}

// Exists asks the OS account database whether username resolves.
func (p *SystemProvisioner) Exists(ctx context.Context, username string) (bool, error) {
	_, err := p.runner.Run(ctx, execx.Command{Name: "id", Args: []string{"-u", username}})
	if err == nil {
		return true, nil
	}

	if errors.Is(err, execx.ErrCommandFailed) {
		return false, nil
	}

	return false, fmt.Errorf("look up user %s: %w", username, err)
}

// FixPermissions restores ownership and mode of the user's home directory.
func (p *SystemProvisioner) FixPermissions(ctx context.Context, username, home string) error {
	steps := []execx.Command{
		{Name: "chown", Args: []string{"-R", username + ":" + username, home}},
		{Name: "chmod", Args: []string{homeMode, home}},
	}

	for _, cmd := range steps {
		if _, err := p.runner.Run(ctx, cmd); err != nil {
			return fmt.Errorf("fix permissions for %s: %w", username, err)
		}
	}

	return nil
}
