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
	"errors"
	"time"

	"github.com/carverauto/ftpconsole/pkg/accounts"
	"github.com/carverauto/ftpconsole/pkg/config"
	"github.com/carverauto/ftpconsole/pkg/connections"
	"github.com/carverauto/ftpconsole/pkg/console"
	"github.com/carverauto/ftpconsole/pkg/daemonconf"
	"github.com/carverauto/ftpconsole/pkg/execx"
	"github.com/carverauto/ftpconsole/pkg/ftplog"
	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/natsutil"
	"github.com/carverauto/ftpconsole/pkg/procscan"
	"github.com/carverauto/ftpconsole/pkg/service"
	"github.com/carverauto/ftpconsole/pkg/sockscan"
	"github.com/carverauto/ftpconsole/pkg/store"
)

// App is a fully wired console plus the resources it holds open.
type App struct {
	Console *console.Console

	closers []func() error
}

// NewApp wires every component from cfg. The store and the NATS publisher
// are optional: when they cannot be opened the console runs without them.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) *App {
	app := &App{}

	runner := execx.NewOSRunner(log.WithComponent("execx"),
		execx.WithSudo(cfg.UseSudo),
		execx.WithTimeout(time.Duration(cfg.CommandTimeout)),
	)

	procs := procscan.NewReader(cfg.DaemonBinary, log.WithComponent("procscan"))
	logs := ftplog.NewService(ftplog.Config{
		SessionLog:  cfg.SessionLog,
		TransferLog: cfg.TransferLog,
		TailLines:   cfg.TailLines,
		Location:    cfg.Location(),
	}, log.WithComponent("ftplog"))

	registry := connections.NewRegistry(connections.Config{
		ControlPort:    cfg.ControlPort,
		ServiceAccount: cfg.ServiceAccount,
	}, procs, sockscan.NewReader(log.WithComponent("sockscan")), logs, log.WithComponent("connections"))

	controller := service.NewController(cfg.ServiceName, runner, procs, log.WithComponent("service"))

	deps := console.Deps{
		Registry:  registry,
		Logs:      logs,
		Running:   procs.Running,
		Accounts:  accounts.NewSystemProvisioner(runner, log.WithComponent("accounts")),
		Directory: accounts.NewDirectory(cfg.PasswdFile, cfg.MinUID),
		BlockList: accounts.NewBlockList(cfg.UserList),
		Service:   controller,
		Host:      service.NewHost(cfg.DiskPath, log.WithComponent("service")),
		Publisher: natsutil.NopPublisher{},
	}

	var recorder daemonconf.ChangeRecorder

	st, err := store.Open(ctx, cfg.DBPath, log)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DBPath).Msg("Running without the inventory database")
	} else {
		deps.Store = st
		recorder = st
		app.closers = append(app.closers, st.Close)
	}

	deps.Config = daemonconf.NewEditor(cfg.ConfigFile, controller, recorder, log.WithComponent("daemonconf"))

	if cfg.NATS != nil {
		pub, nc, err := natsutil.Connect(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.NATS.URL).Msg("Audit events will not be published")
		} else {
			deps.Publisher = pub
			app.closers = append(app.closers, nc.Drain)
		}
	}

	app.Console = console.New(deps, log.WithComponent("console"))

	return app
}

// Close releases what NewApp opened, newest first.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
