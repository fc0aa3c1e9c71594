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

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/carverauto/ftpconsole/pkg/api"
	"github.com/carverauto/ftpconsole/pkg/config"
	"github.com/carverauto/ftpconsole/pkg/lifecycle"
	"github.com/carverauto/ftpconsole/pkg/logger"
)

const (
	logSyncInterval = time.Minute
	defaultActor    = "cli"
)

// Run executes the parsed command.
func Run(ctx context.Context, cfg *CmdConfig, stdin io.Reader, stdout, stderr io.Writer) error {
	if cfg.Help {
		ShowHelp(stdout)
		return nil
	}

	if cfg.SubCmd == cmdHashPassword {
		return RunHashPassword(cfg, stdin, stdout)
	}

	log, err := logger.New(&logger.Config{Level: "warn", Output: logger.OutputStderr, Console: true})
	if err != nil {
		return err
	}

	appCfg, err := config.Load(ctx, cfg.ConfigPath, log)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if cfg.SubCmd == cmdServe {
		return RunServe(ctx, appCfg)
	}

	app := NewApp(ctx, appCfg, log)
	defer func() {
		if cerr := app.Close(); cerr != nil {
			fmt.Fprintf(stderr, "closing: %v\n", cerr)
		}
	}()

	if cfg.SubCmd == cmdTop {
		return RunTop(ctx, app.Console, cfg.Interval)
	}

	return runCommand(ctx, app.Console, cfg, stdout)
}

func runCommand(ctx context.Context, c api.Console, cfg *CmdConfig, w io.Writer) error {
	switch cfg.SubCmd {
	case cmdConnections:
		return printConnections(w, c.Connections(ctx), cfg.JSON)
	case cmdKill:
		return printResult(w, c.Terminate(ctx, int32(cfg.PID), cliActor()))
	case cmdLogs:
		return printLogs(w, c.Logs(cfg.Lines))
	case cmdSessions:
		return printLogs(w, c.ActiveLogSessions(ctx))
	case cmdConfig:
		return runConfig(ctx, c, cfg, w)
	case cmdUsers:
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}

		return printUsers(w, users)
	case cmdBlock:
		return printResult(w, c.BlockUser(ctx, cfg.User, cliActor()))
	case cmdUnblock:
		return printResult(w, c.UnblockUser(ctx, cfg.User, cliActor()))
	case cmdStats:
		return printStats(w, c.Stats(ctx))
	case cmdAudit:
		events, err := c.AuditLog(ctx, cfg.Lines)
		if err != nil {
			return err
		}

		if cfg.JSON {
			return writeJSON(w, events)
		}

		return printAudit(w, events)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cfg.SubCmd)
	}
}

func runConfig(ctx context.Context, c api.Console, cfg *CmdConfig, w io.Writer) error {
	if cfg.Set != "" {
		key, value := splitSet(cfg.Set)
		return printResult(w, c.UpdateConfig(ctx, key, value, cliActor()))
	}

	opts, err := c.Config()
	if err != nil {
		return err
	}

	if cfg.JSON {
		return writeJSON(w, opts)
	}

	return printConfig(w, opts)
}

// RunServe runs the HTTP API until SIGINT or SIGTERM.
func RunServe(ctx context.Context, appCfg *config.Config) error {
	log, err := lifecycle.CreateLogger(appCfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := lifecycle.SignalContext(ctx)
	defer stop()

	app := NewApp(ctx, appCfg, log)
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error releasing resources")
		}
	}()

	if appCfg.AdminPasswordHash == "" {
		log.Warn().Msg("admin_password_hash is empty; every /api request will be refused")
	}

	go lifecycle.RunPeriodic(ctx, logSyncInterval, func(ctx context.Context) {
		if _, err := app.Console.SyncLogs(ctx); err != nil {
			log.Warn().Err(err).Msg("Log synchronization failed")
		}
	})

	server := api.NewAPIServer(app.Console, log.WithComponent("api"),
		api.WithBasicAuth(appCfg.AdminUser, appCfg.AdminPasswordHash),
		api.WithCORS(appCfg.CORS),
	)

	return server.Start(ctx, appCfg.ListenAddr)
}

func cliActor() string {
	if u := os.Getenv("USER"); u != "" {
		return defaultActor + ":" + u
	}

	return defaultActor
}
