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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

func envLoader(vars map[string]string) *EnvConfigLoader {
	l := NewEnvConfigLoader(logger.NewTestLogger(), EnvPrefix)
	l.lookup = func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
	l.environ = func() []string {
		out := make([]string, 0, len(vars))
		for k, v := range vars {
			out = append(out, k+"="+v)
		}

		return out
	}

	return l
}

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{NATS: &models.NATSConfig{}}
	cfg.Normalize()

	assert.Equal(t, "vsftpd", cfg.DaemonBinary)
	assert.Equal(t, "ftp", cfg.ServiceAccount)
	assert.Equal(t, uint32(21), cfg.ControlPort)
	assert.Equal(t, "/var/log/xferlog", cfg.TransferLog)
	assert.Equal(t, "/etc/vsftpd/user_list", cfg.UserList)
	assert.Equal(t, 1000, cfg.MinUID)
	assert.Equal(t, 100, cfg.TailLines)
	assert.Equal(t, "0.0.0.0:5000", cfg.ListenAddr)
	assert.Equal(t, models.Duration(30*time.Second), cfg.CommandTimeout)
	assert.Nil(t, cfg.NATS, "nats without a url is disabled")
	assert.NotNil(t, cfg.Logging)
	require.NoError(t, cfg.Validate())
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{ControlPort: 2121, TailLines: 5, NATS: &models.NATSConfig{URL: "nats://localhost:4222"}}
	cfg.Normalize()

	assert.Equal(t, uint32(2121), cfg.ControlPort)
	assert.Equal(t, 5, cfg.TailLines)
	require.NotNil(t, cfg.NATS)
	assert.Equal(t, "FTPCONSOLE_AUDIT", cfg.NATS.Stream)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port", mutate: func(c *Config) { c.ControlPort = 70000 }},
		{name: "timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{name: "relative path", mutate: func(c *Config) { c.SessionLog = "vsftpd.log" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{}
			cfg.Normalize()
			tt.mutate(cfg)

			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestEnvLoaderOverlay(t *testing.T) {
	t.Parallel()

	cfg := &Config{DaemonBinary: "vsftpd", ControlPort: 21}

	err := envLoader(map[string]string{
		"FTPCONSOLE_CONTROL_PORT":    "2121",
		"FTPCONSOLE_USE_SUDO":        "true",
		"FTPCONSOLE_COMMAND_TIMEOUT": "5s",
		"FTPCONSOLE_NATS_URL":        "nats://nats:4222",
		"FTPCONSOLE_LOGGING_LEVEL":   "debug",
	}).Load(context.Background(), "", cfg)
	require.NoError(t, err)

	assert.Equal(t, "vsftpd", cfg.DaemonBinary)
	assert.Equal(t, uint32(2121), cfg.ControlPort)
	assert.True(t, cfg.UseSudo)
	assert.Equal(t, models.Duration(5*time.Second), cfg.CommandTimeout)
	require.NotNil(t, cfg.NATS)
	assert.Equal(t, "nats://nats:4222", cfg.NATS.URL)
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvLoaderLeavesUnsetPointersNil(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	require.NoError(t, envLoader(map[string]string{"FTPCONSOLE_TAIL_LINES": "10"}).Load(context.Background(), "", cfg))

	assert.Equal(t, 10, cfg.TailLines)
	assert.Nil(t, cfg.NATS)
	assert.Nil(t, cfg.Logging)
}

func TestEnvLoaderErrors(t *testing.T) {
	t.Parallel()

	err := envLoader(map[string]string{"FTPCONSOLE_CONTROL_PORT": "abc"}).Load(context.Background(), "", &Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FTPCONSOLE_CONTROL_PORT")

	var notStruct int
	require.ErrorIs(t, envLoader(nil).Load(context.Background(), "", &notStruct), ErrDstMustBePointerToStruct)
	require.ErrorIs(t, envLoader(nil).Load(context.Background(), "", Config{}), ErrDstMustBeNonNilPointer)
}

func TestEnvLoaderConfigJSON(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	err := envLoader(map[string]string{
		"FTPCONSOLE_CONFIG_JSON":  `{"daemon_binary":"proftpd","control_port":990}`,
		"FTPCONSOLE_CONTROL_PORT": "2121",
	}).Load(context.Background(), "", cfg)
	require.NoError(t, err)

	assert.Equal(t, "proftpd", cfg.DaemonBinary)
	assert.Equal(t, uint32(990), cfg.ControlPort)
}

func TestFileLoaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ftpconsole.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"control_prot": 21}`), 0o600))

	err := (&FileConfigLoader{}).Load(context.Background(), path, &Config{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "control_prot"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ftpconsole.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"session_log": "/srv/log/vsftpd.log",
		"control_port": 2121,
		"command_timeout": "10s"
	}`), 0o600))

	t.Setenv("FTPCONSOLE_SERVICE_ACCOUNT", "ftpsecure")

	cfg, err := Load(context.Background(), path, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "/srv/log/vsftpd.log", cfg.SessionLog)
	assert.Equal(t, uint32(2121), cfg.ControlPort)
	assert.Equal(t, "ftpsecure", cfg.ServiceAccount)
	assert.Equal(t, models.Duration(10*time.Second), cfg.CommandTimeout)
	assert.Equal(t, "/etc/vsftpd/vsftpd.conf", cfg.ConfigFile)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), logger.NewTestLogger())
	require.Error(t, err)
}

func TestNormalizeTLSPaths(t *testing.T) {
	t.Parallel()

	tls := &models.TLSConfig{CertFile: "client.pem", KeyFile: "/abs/key.pem", CAFile: "ca.pem"}
	NormalizeTLSPaths(tls, "/etc/ftpconsole/certs")

	assert.Equal(t, "/etc/ftpconsole/certs/client.pem", tls.CertFile)
	assert.Equal(t, "/abs/key.pem", tls.KeyFile)
	assert.Equal(t, "/etc/ftpconsole/certs/ca.pem", tls.CAFile)
}

func TestLocation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Local, (&Config{}).Location())
	assert.Equal(t, "UTC", (&Config{Timezone: "UTC"}).Location().String())
}
