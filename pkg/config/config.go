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

// Package config loads the console's configuration from a JSON file and the
// environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	DefaultPath = "/etc/ftpconsole/ftpconsole.json"
	EnvPrefix   = "FTPCONSOLE_"

	defaultDaemonBinary   = "vsftpd"
	defaultServiceName    = "vsftpd"
	defaultServiceAccount = "ftp"
	defaultControlPort    = 21
	defaultSessionLog     = "/var/log/vsftpd.log"
	defaultTransferLog    = "/var/log/xferlog"
	defaultConfigFile     = "/etc/vsftpd/vsftpd.conf"
	defaultUserList       = "/etc/vsftpd/user_list"
	defaultPasswdFile     = "/etc/passwd"
	defaultMinUID         = 1000
	defaultTailLines      = 100
	defaultListenAddr     = "0.0.0.0:5000"
	defaultDBPath         = "/var/lib/ftpconsole/ftpconsole.db"
	defaultDiskPath       = "/"
	defaultCommandTimeout = 30 * time.Second
	defaultNATSStream     = "FTPCONSOLE_AUDIT"
	defaultAdminUser      = "admin"
	maxPort               = 65535
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the console's configuration.
type Config struct {
	DaemonBinary      string             `json:"daemon_binary"`
	ServiceName       string             `json:"service_name"`
	ServiceAccount    string             `json:"service_account"`
	ControlPort       uint32             `json:"control_port"`
	SessionLog        string             `json:"session_log"`
	TransferLog       string             `json:"transfer_log"`
	ConfigFile        string             `json:"config_file"`
	UserList          string             `json:"user_list"`
	PasswdFile        string             `json:"passwd_file"`
	MinUID            int                `json:"min_uid"`
	TailLines         int                `json:"tail_lines"`
	Timezone          string             `json:"timezone"`
	ListenAddr        string             `json:"listen_addr"`
	DBPath            string             `json:"db_path"`
	DiskPath          string             `json:"disk_path"`
	UseSudo           bool               `json:"use_sudo"`
	CommandTimeout    models.Duration    `json:"command_timeout"`
	AdminUser         string             `json:"admin_user"`
	AdminPasswordHash string             `json:"admin_password_hash"`
	CORS              models.CORSConfig  `json:"cors"`
	NATS              *models.NATSConfig `json:"nats,omitempty"`
	Logging           *logger.Config     `json:"logging,omitempty"`
}

// Load reads path (a missing default file is tolerated), overlays
// FTPCONSOLE_* environment variables, fills defaults and validates.
func Load(ctx context.Context, path string, log logger.Logger) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		err := (&FileConfigLoader{}).Load(ctx, path, cfg)

		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
			log.Info().Str("path", path).Msg("No configuration file; using defaults")
		default:
			return nil, err
		}
	}

	if err := NewEnvConfigLoader(log, EnvPrefix).Load(ctx, "", cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	setDefault(&c.DaemonBinary, defaultDaemonBinary)
	setDefault(&c.ServiceName, defaultServiceName)
	setDefault(&c.ServiceAccount, defaultServiceAccount)
	setDefault(&c.SessionLog, defaultSessionLog)
	setDefault(&c.TransferLog, defaultTransferLog)
	setDefault(&c.ConfigFile, defaultConfigFile)
	setDefault(&c.UserList, defaultUserList)
	setDefault(&c.PasswdFile, defaultPasswdFile)
	setDefault(&c.ListenAddr, defaultListenAddr)
	setDefault(&c.DBPath, defaultDBPath)
	setDefault(&c.DiskPath, defaultDiskPath)
	setDefault(&c.AdminUser, defaultAdminUser)

	if c.ControlPort == 0 {
		c.ControlPort = defaultControlPort
	}

	if c.MinUID <= 0 {
		c.MinUID = defaultMinUID
	}

	if c.TailLines <= 0 {
		c.TailLines = defaultTailLines
	}

	if c.CommandTimeout <= 0 {
		c.CommandTimeout = models.Duration(defaultCommandTimeout)
	}

	if c.NATS != nil {
		if c.NATS.URL == "" {
			c.NATS = nil
		} else {
			setDefault(&c.NATS.Stream, defaultNATSStream)
		}
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}
}

func (c *Config) Validate() error {
	if c.ControlPort > maxPort {
		return fmt.Errorf("%w: control_port %d out of range", ErrInvalidConfig, c.ControlPort)
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
		}
	}

	for name, p := range map[string]string{
		"session_log":  c.SessionLog,
		"transfer_log": c.TransferLog,
		"config_file":  c.ConfigFile,
		"user_list":    c.UserList,
		"passwd_file":  c.PasswdFile,
	} {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("%w: %s must be an absolute path", ErrInvalidConfig, name)
		}
	}

	return nil
}

// Location is the zone the daemon writes log timestamps in.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}

// NormalizeTLSPaths resolves relative certificate paths against certDir.
func NormalizeTLSPaths(tls *models.TLSConfig, certDir string) {
	if tls == nil || certDir == "" {
		return
	}

	for _, p := range []*string{&tls.CertFile, &tls.KeyFile, &tls.CAFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(certDir, *p)
		}
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
