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

// Package console is the management surface shared by the HTTP API and the
// command line: every read the operator can make and every mutation, with
// mutations audited.
package console

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/ftpconsole/pkg/accounts"
	"github.com/carverauto/ftpconsole/pkg/connections"
	"github.com/carverauto/ftpconsole/pkg/daemonconf"
	"github.com/carverauto/ftpconsole/pkg/ftplog"
	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
	"github.com/carverauto/ftpconsole/pkg/natsutil"
)

const (
	defaultLogLimit = 100
	syncWindow      = 1000
	recentActivityN = 10
	defaultHistoryN = 50
	systemActor     = "system"
)

// Registry lists and terminates connections.
type Registry interface {
	ListActive(ctx context.Context) connections.Snapshot
	Terminate(pid int32) (bool, string)
}

// Inventory is the console's own persistent state.
type Inventory interface {
	UpsertUser(ctx context.Context, u models.FTPUser) error
	DeleteUser(ctx context.Context, username string) error
	SetBlocked(ctx context.Context, username string, blocked bool) error
	ListUsers(ctx context.Context) ([]models.FTPUser, error)
	ListConfigChanges(ctx context.Context, limit int) ([]models.ConfigChange, error)
	RecordAudit(ctx context.Context, ev models.AuditEvent) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditEvent, error)
	SyncLogs(ctx context.Context, events []models.LogEvent) (int, error)
}

// ServiceControl restarts the daemon and reports its status.
type ServiceControl interface {
	Restart(ctx context.Context) error
	Status(ctx context.Context) models.ServiceStatus
}

type HostSampler interface {
	Usage(ctx context.Context) models.HostUsage
}

// Deps are the components a Console drives. Store and Publisher may be nil.
type Deps struct {
	Registry  Registry
	Logs      *ftplog.Service
	Running   ftplog.RunningFunc
	Config    *daemonconf.Editor
	Accounts  accounts.Provisioner
	Directory *accounts.Directory
	BlockList *accounts.BlockList
	Service   ServiceControl
	Host      HostSampler
	Store     Inventory
	Publisher natsutil.Publisher
}

type Console struct {
	registry  Registry
	logs      *ftplog.Service
	running   ftplog.RunningFunc
	config    *daemonconf.Editor
	accounts  accounts.Provisioner
	directory *accounts.Directory
	blocklist *accounts.BlockList
	service   ServiceControl
	host      HostSampler
	store     Inventory
	publisher natsutil.Publisher
	log       logger.Logger

	now   func() time.Time
	newID func() string
}

func New(d Deps, log logger.Logger) *Console {
	pub := d.Publisher
	if pub == nil {
		pub = natsutil.NopPublisher{}
	}

	return &Console{
		registry:  d.Registry,
		logs:      d.Logs,
		running:   d.Running,
		config:    d.Config,
		accounts:  d.Accounts,
		directory: d.Directory,
		blocklist: d.BlockList,
		service:   d.Service,
		host:      d.Host,
		store:     d.Store,
		publisher: pub,
		log:       log,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Connections takes a fresh registry snapshot.
func (c *Console) Connections(ctx context.Context) connections.Snapshot {
	return c.registry.ListActive(ctx)
}

// Terminate signals pid and audits the outcome.
func (c *Console) Terminate(ctx context.Context, pid int32, actor string) models.ActionResult {
	ok, msg := c.registry.Terminate(pid)
	res := models.ActionResult{Success: ok, Message: msg}

	c.audit(ctx, models.AuditConnectionKill, strconv.FormatInt(int64(pid), 10), actor, res)

	return res
}

// Logs returns the newest merged session and transfer events.
func (c *Console) Logs(limit int) []models.LogEvent {
	if limit <= 0 {
		limit = defaultLogLimit
	}

	return c.logs.RecentLogs(limit)
}

func (c *Console) LogStats() models.LogStats {
	return c.logs.Stats()
}

// ActiveLogSessions are the sessions the session log says are still open.
func (c *Console) ActiveLogSessions(ctx context.Context) []models.LogEvent {
	return c.logs.ActiveSessions(ctx, c.running)
}

// SyncLogs copies recent log events into the store and returns how many were new.
func (c *Console) SyncLogs(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}

	n, err := c.store.SyncLogs(ctx, c.logs.RecentLogs(syncWindow))
	if err != nil {
		return 0, err
	}

	c.log.Debug().Int("inserted", n).Msg("Synchronized daemon logs")

	return n, nil
}

// Config is the daemon configuration annotated with option metadata.
func (c *Console) Config() (map[string]models.ConfigOption, error) {
	return c.config.Describe()
}

func (c *Console) UpdateConfig(ctx context.Context, key, value, actor string) models.ActionResult {
	res := c.config.Update(ctx, key, value, actor)
	c.audit(ctx, models.AuditConfigUpdate, key, actor, res)

	return res
}

// ConfigHistory lists audited configuration changes, newest first.
func (c *Console) ConfigHistory(ctx context.Context, limit int) ([]models.ConfigChange, error) {
	if c.store == nil {
		return []models.ConfigChange{}, nil
	}

	if limit <= 0 {
		limit = defaultHistoryN
	}

	return c.store.ListConfigChanges(ctx, limit)
}

// AuditLog lists recorded mutations, newest first.
func (c *Console) AuditLog(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	if c.store == nil {
		return []models.AuditEvent{}, nil
	}

	if limit <= 0 {
		limit = defaultHistoryN
	}

	return c.store.ListAudit(ctx, limit)
}

// Stats is the dashboard summary. Sources that fail contribute zero.
func (c *Console) Stats(ctx context.Context) models.DashboardStats {
	var stats models.DashboardStats

	if accts, err := c.directory.List(); err != nil {
		c.log.Warn().Err(err).Msg("Failed to read system users")
	} else {
		stats.TotalUsers = len(accts)
	}

	if blocked, err := c.blocklist.List(); err != nil {
		c.log.Warn().Err(err).Msg("Failed to read block list")
	} else {
		stats.BlockedUsers = len(blocked)
	}

	snap := c.registry.ListActive(ctx)
	stats.ActiveConnections = len(snap.Records)
	stats.Connections = snap.Summary
	stats.RecentActivity = len(c.logs.RecentLogs(recentActivityN))

	if c.service != nil {
		stats.Service = c.service.Status(ctx)
	}

	if c.host != nil {
		stats.Host = c.host.Usage(ctx)
	}

	return stats
}

// audit records and publishes the outcome of a mutation. Failures here are
// logged and never change the result handed back to the caller.
func (c *Console) audit(ctx context.Context, kind models.AuditKind, subject, actor string, res models.ActionResult) {
	if actor == "" {
		actor = systemActor
	}

	ev := models.AuditEvent{
		ID:        c.newID(),
		Kind:      kind,
		Subject:   subject,
		Actor:     actor,
		Success:   res.Success,
		Message:   res.Message,
		Timestamp: c.now(),
	}

	c.log.Info().
		Str("kind", string(kind)).
		Str("subject", subject).
		Str("actor", actor).
		Bool("success", res.Success).
		Msg(res.Message)

	if c.store != nil {
		if err := c.store.RecordAudit(ctx, ev); err != nil {
			c.log.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to record audit event")
		}
	}

	if err := c.publisher.PublishAudit(ctx, ev); err != nil {
		c.log.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to publish audit event")
	}
}
