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

package models

import "time"

// FTPUser is an OS account usable for FTP, joined with the console's inventory.
type FTPUser struct {
	Username       string     `json:"username"`
	HomeDirectory  string     `json:"home_directory"`
	IsBlocked      bool       `json:"is_blocked"`
	ExistsInSystem bool       `json:"exists_in_system"`
	CreatedAt      *time.Time `json:"created_at"`
	CreatedBy      string     `json:"created_by,omitempty"`
}

// ServiceStatus describes the daemon's systemd unit and process footprint.
type ServiceStatus struct {
	Active     bool    `json:"active"`
	Enabled    bool    `json:"enabled"`
	Uptime     string  `json:"uptime,omitempty"`
	MemoryMB   float64 `json:"memory_usage"`
	CPUPercent float64 `json:"cpu_usage"`
}

// UsageStat is a total/used/free triple for disk or memory.
type UsageStat struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

// HostUsage is the host resource view shown next to the daemon status.
type HostUsage struct {
	Disk   UsageStat `json:"disk"`
	Memory UsageStat `json:"memory"`
}

// DashboardStats is the console's summary view.
type DashboardStats struct {
	TotalUsers        int               `json:"total_users"`
	ActiveConnections int               `json:"active_connections"`
	BlockedUsers      int               `json:"blocked_users"`
	RecentActivity    int               `json:"recent_activity"`
	Connections       ConnectionSummary `json:"connections"`
	Service           ServiceStatus     `json:"vsftpd_status"`
	Host              HostUsage         `json:"host"`
}

// ErrorResponse is the body of a failed API request.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// HealthResponse is the body of the unauthenticated health check.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
