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

// Package service controls the FTP daemon's systemd unit and reports host usage.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/ftpconsole/pkg/execx"
	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
	"github.com/carverauto/ftpconsole/pkg/procscan"
)

const bytesPerMB = 1024 * 1024

var ErrRestartFailed = errors.New("service restart failed")

// FootprintSource reports the daemon's aggregate process usage.
type FootprintSource interface {
	Footprint(ctx context.Context) procscan.Footprint
}

// Controller drives one systemd unit through systemctl.
type Controller struct {
	unit   string
	runner execx.Runner
	procs  FootprintSource
	log    logger.Logger
	now    func() time.Time
}

func NewController(unit string, runner execx.Runner, procs FootprintSource, log logger.Logger) *Controller {
	return &Controller{
		unit:   unit,
		runner: runner,
		procs:  procs,
		log:    log,
		now:    time.Now,
	}
}

// IsActive reports whether `systemctl is-active` prints "active".
func (c *Controller) IsActive(ctx context.Context) bool {
	return c.query(ctx, "is-active", "active")
}

// IsEnabled reports whether `systemctl is-enabled` prints "enabled".
func (c *Controller) IsEnabled(ctx context.Context) bool {
	return c.query(ctx, "is-enabled", "enabled")
}

func (c *Controller) query(ctx context.Context, verb, want string) bool {
	res, err := c.runner.Run(ctx, execx.Command{Name: "systemctl", Args: []string{verb, c.unit}})
	if err != nil && !errors.Is(err, execx.ErrCommandFailed) {
		c.log.Warn().Err(err).Str("unit", c.unit).Str("verb", verb).Msg("systemctl query failed")
		return false
	}

	return strings.TrimSpace(res.Stdout) == want
}

// Restart restarts the unit. The returned error carries systemctl's stderr.
func (c *Controller) Restart(ctx context.Context) error {
	res, err := c.runner.Run(ctx, execx.Command{Name: "systemctl", Args: []string{"restart", c.unit}})
	if err != nil {
		if msg := res.Message(); msg != "" {
			return fmt.Errorf("%w: %s: %s", ErrRestartFailed, c.unit, msg)
		}

		return fmt.Errorf("%w: %s: %w", ErrRestartFailed, c.unit, err)
	}

	c.log.Info().Str("unit", c.unit).Msg("Restarted service")

	return nil
}

// Status combines the unit state with the daemon's process footprint.
func (c *Controller) Status(ctx context.Context) models.ServiceStatus {
	status := models.ServiceStatus{
		Active:  c.IsActive(ctx),
		Enabled: c.IsEnabled(ctx),
	}

	if !status.Active || c.procs == nil {
		return status
	}

	fp := c.procs.Footprint(ctx)
	if fp.Count == 0 {
		return status
	}

	status.MemoryMB = roundTo(float64(fp.RSSBytes)/bytesPerMB, 2)
	status.CPUPercent = roundTo(fp.CPUPercent, 2)

	if !fp.OldestStart.IsZero() {
		status.Uptime = formatUptime(c.now().Sub(fp.OldestStart))
	}

	return status
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	d = d.Truncate(time.Second)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour

	if days > 0 {
		return fmt.Sprintf("%dd %s", days, d)
	}

	return d.String()
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for range places {
		scale *= 10
	}

	return float64(int64(v*scale+0.5)) / scale
}
