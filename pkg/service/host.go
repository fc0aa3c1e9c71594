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

package service

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const defaultDiskPath = "/"

// Host samples disk and memory usage. Collection failures report zeroes.
type Host struct {
	diskPath string
	log      logger.Logger

	diskUsage    func(context.Context, string) (*disk.UsageStat, error)
	virtualUsage func(context.Context) (*mem.VirtualMemoryStat, error)
}

func NewHost(diskPath string, log logger.Logger) *Host {
	if diskPath == "" {
		diskPath = defaultDiskPath
	}

	return &Host{
		diskPath:     diskPath,
		log:          log,
		diskUsage:    disk.UsageWithContext,
		virtualUsage: mem.VirtualMemoryWithContext,
	}
}

func (h *Host) Usage(ctx context.Context) models.HostUsage {
	var usage models.HostUsage

	if st, err := h.diskUsage(ctx, h.diskPath); err != nil {
		h.log.Warn().Err(err).Str("path", h.diskPath).Msg("disk usage collection failed; reporting zeroes")
	} else if st != nil {
		usage.Disk = models.UsageStat{
			Total:   st.Total,
			Used:    st.Used,
			Free:    st.Free,
			Percent: roundTo(st.UsedPercent, 1),
		}
	}

	if vm, err := h.virtualUsage(ctx); err != nil {
		h.log.Warn().Err(err).Msg("memory collection failed; reporting zeroes")
	} else if vm != nil {
		usage.Memory = models.UsageStat{
			Total:   vm.Total,
			Used:    vm.Used,
			Free:    vm.Available,
			Percent: roundTo(vm.UsedPercent, 1),
		}
	}

	return usage
}
