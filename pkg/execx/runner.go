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

// Package execx spawns external commands and captures their exit status and output.
package execx

//go:generate mockgen -destination=mock_runner.go -package=execx github.com/carverauto/ftpconsole/pkg/execx Runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/carverauto/ftpconsole/pkg/logger"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrCommandFailed wraps every non-zero exit.
	ErrCommandFailed = errors.New("command failed")
	errEmptyCommand  = errors.New("command name is empty")
)

// Command is one argv invocation. Stdin, when set, is written to the process.
type Command struct {
	Name  string
	Args  []string
	Stdin string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the captured outcome of a command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Message is the most useful human-readable output: stderr if any, else stdout.
func (r Result) Message() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}

	return strings.TrimSpace(r.Stdout)
}

// Runner runs external commands. A non-zero exit is returned as a Result
// together with an error wrapping ErrCommandFailed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// OSRunner runs commands with os/exec, optionally through sudo.
type OSRunner struct {
	sudo    bool
	timeout time.Duration
	log     logger.Logger
}

type Option func(*OSRunner)

// WithSudo prefixes every command with "sudo -n".
func WithSudo(enabled bool) Option {
	return func(r *OSRunner) {
		r.sudo = enabled
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *OSRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewOSRunner(log logger.Logger, opts ...Option) *OSRunner {
	r := &OSRunner{
		timeout: defaultTimeout,
		log:     log,
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

func (r *OSRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Name == "" {
		return Result{}, errEmptyCommand
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name, args := cmd.Name, cmd.Args
	if r.sudo {
		name, args = "sudo", append([]string{"-n", cmd.Name}, cmd.Args...)
	}

	var stdout, stderr bytes.Buffer

	c := exec.CommandContext(ctx, name, args...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	err := c.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.log.Error().Err(err).Str("command", cmd.Name).Msg("Failed to start command")
			return res, fmt.Errorf("run %s: %w", cmd.Name, err)
		}

		res.ExitCode = exitErr.ExitCode()

		r.log.Warn().
			Str("command", cmd.String()).
			Int("exit_code", res.ExitCode).
			Str("stderr", strings.TrimSpace(res.Stderr)).
			Msg("Command exited non-zero")

		return res, fmt.Errorf("%w: %s (exit %d): %s", ErrCommandFailed, cmd.Name, res.ExitCode, res.Message())
	}

	r.log.Debug().Str("command", cmd.Name).Msg("Command succeeded")

	return res, nil
}
