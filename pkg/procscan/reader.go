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

// Package procscan lists the FTP daemon's processes from the OS process table.
package procscan

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

// processHandle is the subset of *process.Process the reader needs.
type processHandle interface {
	PID() int32
	NameWithContext(ctx context.Context) (string, error)
	UsernameWithContext(ctx context.Context) (string, error)
	CreateTimeWithContext(ctx context.Context) (int64, error)
	MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error)
	CPUPercentWithContext(ctx context.Context) (float64, error)
}

type gopsProcess struct {
	*process.Process
}

func (p gopsProcess) PID() int32 { return p.Pid }

func listSystemProcesses(ctx context.Context) ([]processHandle, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	handles := make([]processHandle, 0, len(procs))
	for _, p := range procs {
		handles = append(handles, gopsProcess{Process: p})
	}

	return handles, nil
}

// Snapshot is one pass over the process table.
// Degraded is set when the table could not be enumerated at all, so an empty
// Processes slice means "couldn't look" rather than "nothing running".
type Snapshot struct {
	Processes []models.ProcessInfo
	Degraded  bool
}

// Footprint aggregates resource usage across all daemon processes.
type Footprint struct {
	Count       int
	RSSBytes    uint64
	CPUPercent  float64
	OldestStart time.Time
}

// Reader filters the process table down to the daemon binary.
type Reader struct {
	binary string
	log    logger.Logger
	list   func(context.Context) ([]processHandle, error)
	exists func(context.Context, int32) (bool, error)
}

func NewReader(binary string, log logger.Logger) *Reader {
	return &Reader{
		binary: binary,
		log:    log,
		list:   listSystemProcesses,
		exists: process.PidExistsWithContext,
	}
}

// List returns every process whose executable name matches the daemon binary.
// Processes that exit or deny access mid-iteration are skipped; it never fails.
func (r *Reader) List(ctx context.Context) Snapshot {
	handles, ok := r.daemonProcesses(ctx)
	if !ok {
		return Snapshot{Processes: []models.ProcessInfo{}, Degraded: true}
	}

	out := make([]models.ProcessInfo, 0, len(handles))

	for _, h := range handles {
		info := models.ProcessInfo{PID: h.PID(), Owner: models.Unknown}

		if owner, err := h.UsernameWithContext(ctx); err == nil && owner != "" {
			info.Owner = owner
		}

		if created, err := h.CreateTimeWithContext(ctx); err == nil && created > 0 {
			info.StartTime = time.UnixMilli(created)
		}

		out = append(out, info)
	}

	r.log.Debug().Int("count", len(out)).Str("binary", r.binary).Msg("Listed daemon processes")

	return Snapshot{Processes: out}
}

// Running reports whether pid is currently alive.
func (r *Reader) Running(ctx context.Context, pid int32) bool {
	if pid <= 0 {
		return false
	}

	alive, err := r.exists(ctx, pid)
	if err != nil {
		r.log.Debug().Err(err).Int32("pid", pid).Msg("pid liveness check failed")
		return false
	}

	return alive
}

// Footprint sums memory and CPU across the daemon's processes.
func (r *Reader) Footprint(ctx context.Context) Footprint {
	handles, _ := r.daemonProcesses(ctx)

	var fp Footprint

	for _, h := range handles {
		fp.Count++

		if mem, err := h.MemoryInfoWithContext(ctx); err == nil && mem != nil {
			fp.RSSBytes += mem.RSS
		}

		if pct, err := h.CPUPercentWithContext(ctx); err == nil {
			fp.CPUPercent += pct
		}

		if created, err := h.CreateTimeWithContext(ctx); err == nil && created > 0 {
			start := time.UnixMilli(created)
			if fp.OldestStart.IsZero() || start.Before(fp.OldestStart) {
				fp.OldestStart = start
			}
		}
	}

	return fp
}

func (r *Reader) daemonProcesses(ctx context.Context) ([]processHandle, bool) {
	handles, err := r.list(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("process table unavailable; reporting no daemon processes")
		return nil, false
	}

	matched := make([]processHandle, 0, 8)

	for _, h := range handles {
		name, err := h.NameWithContext(ctx)
		if err != nil {
			// exited or access denied between enumeration and inspection
			continue
		}

		if strings.EqualFold(name, r.binary) {
			matched = append(matched, h)
		}
	}

	return matched, true
}
