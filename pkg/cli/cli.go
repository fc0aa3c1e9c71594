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

// Package cli implements the ftpconsole command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/ftpconsole/pkg/config"
)

const (
	cmdServe        = "serve"
	cmdConnections  = "connections"
	cmdKill         = "kill"
	cmdLogs         = "logs"
	cmdSessions     = "sessions"
	cmdConfig       = "config"
	cmdUsers        = "users"
	cmdBlock        = "block"
	cmdUnblock      = "unblock"
	cmdStats        = "stats"
	cmdAudit        = "audit"
	cmdTop          = "top"
	cmdHashPassword = "hash-password"

	defaultLogLines    = 50
	defaultAuditLines  = 20
	defaultTopInterval = 2 * time.Second
)

// SubcommandHandler defines the interface for parsing subcommand flags.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// flagHandler parses one subcommand's flag set and validates the result.
type flagHandler struct {
	name       string
	withConfig bool
	define     func(fs *flag.FlagSet, cfg *CmdConfig)
	check      func(cfg *CmdConfig) error
}

// Parse processes the command-line arguments for the subcommand.
func (h flagHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet(h.name, flag.ContinueOnError)

	if h.withConfig {
		fs.StringVar(&cfg.ConfigPath, "config", config.DefaultPath, "path to ftpconsole.json")
	}

	if h.define != nil {
		h.define(fs, cfg)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cfg.Help = true
			return nil
		}

		return fmt.Errorf("parsing %s flags: %w", h.name, err)
	}

	cfg.Args = fs.Args()

	if h.check != nil {
		return h.check(cfg)
	}

	return nil
}

func subcommands() map[string]SubcommandHandler {
	requireUser := func(name string) func(*CmdConfig) error {
		return func(cfg *CmdConfig) error {
			cfg.User = strings.TrimSpace(cfg.User)
			if cfg.User == "" {
				return fmt.Errorf("%s %w", name, errRequiresUser)
			}

			return nil
		}
	}

	userFlag := func(fs *flag.FlagSet, cfg *CmdConfig) {
		fs.StringVar(&cfg.User, "user", "", "account name")
	}

	return map[string]SubcommandHandler{
		cmdServe: flagHandler{name: cmdServe, withConfig: true},
		cmdConnections: flagHandler{
			name:       cmdConnections,
			withConfig: true,
			define: func(fs *flag.FlagSet, cfg *CmdConfig) {
				fs.BoolVar(&cfg.JSON, "json", false, "print JSON instead of a table")
			},
		},
		cmdKill: flagHandler{
			name:       cmdKill,
			withConfig: true,
			define: func(fs *flag.FlagSet, cfg *CmdConfig) {
				fs.IntVar(&cfg.PID, "pid", 0, "pid of the session process")
			},
			check: func(cfg *CmdConfig) error {
				if cfg.PID <= 0 {
					return errRequiresPID
				}

				return nil
			},
		},
		cmdLogs: flagHandler{
			name:       cmdLogs,
			withConfig: true,
			define: func(fs *flag.FlagSet, cfg *CmdConfig) {
				fs.IntVar(&cfg.Lines, "n", defaultLogLines, "number of events")
			},
		},
		cmdSessions: flagHandler{name: cmdSessions, withConfig: true},
		cmdConfig: flagHandler{
			name:       cmdConfig,
			withConfig: true,
			define: func(fs *flag.FlagSet, cfg *CmdConfig) {
				fs.StringVar(&cfg.Set, "set", "", "key=value to change")
				fs.BoolVar(&cfg.JSON, "json", false, "print JSON instead of a table")
			},
			check: func(cfg *CmdConfig) error {
				if cfg.Set != "" && !strings.Contains(cfg.Set, "=") {
					return errInvalidSet
				}

				return nil
			},
		},
		cmdUsers:   flagHandler{name: cmdUsers, withConfig: true},
		cmdBlock:   flagHandler{name: cmdBlock, withConfig: true, define: userFlag, check: requireUser(cmdBlock)},
		cmdUnblock: flagHandler{name: cmdUnblock, withConfig: true, define: userFlag, check: requireUser(cmdUnblock)},
		cmdStats:   flagHandler{name: cmdStats, withConfig: true},
		cmdAudit: flagHandler{
			name:       cmdAudit,
			withConfig: true,
			define: func(fs *flag.FlagSet, cfg *CmdConfig) {
				fs.IntVar(&cfg.Lines, "n", defaultAuditLines, "number of events")
				fs.BoolVar(&cfg.JSON, "json", false, "print JSON instead of a table")
			},
		},
		cmdTop: flagHandler{
			name:       cmdTop,
			withConfig: true,
			define: func(fs *flag.FlagSet, cfg *CmdConfig) {
				fs.DurationVar(&cfg.Interval, "interval", defaultTopInterval, "refresh interval")
			},
			check: func(cfg *CmdConfig) error {
				if cfg.Interval < time.Second {
					return errInvalidPeriod
				}

				return nil
			},
		},
		cmdHashPassword: flagHandler{
			name: cmdHashPassword,
			define: func(fs *flag.FlagSet, cfg *CmdConfig) {
				fs.IntVar(&cfg.Cost, "cost", defaultCost, fmt.Sprintf("bcrypt cost factor (%d-%d)", minCost, maxCost))
			},
			check: func(cfg *CmdConfig) error {
				if cfg.Cost < minCost || cfg.Cost > maxCost {
					return errInvalidCost
				}

				return nil
			},
		},
	}
}

// ParseFlags parses os.Args[1:]-style arguments into a CmdConfig.
func ParseFlags(args []string) (*CmdConfig, error) {
	cfg := &CmdConfig{ConfigPath: config.DefaultPath}

	if len(args) == 0 {
		cfg.Help = true
		return cfg, nil
	}

	cfg.SubCmd = args[0]

	switch cfg.SubCmd {
	case "help", "-h", "-help", "--help":
		cfg.Help = true
		return cfg, nil
	}

	handler, ok := subcommands()[cfg.SubCmd]
	if !ok {
		return cfg, fmt.Errorf("%w: %s", errUnknownCommand, cfg.SubCmd)
	}

	if err := handler.Parse(args[1:], cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// splitSet splits a -set argument on its first '='.
func splitSet(raw string) (key, value string) {
	key, value, _ = strings.Cut(raw, "=")
	return strings.TrimSpace(key), value
}
