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

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var errInvalidDuration = errors.New("invalid duration")

// Duration accepts either a Go duration string or nanoseconds in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// OptionType is the value type of a known daemon configuration option.
type OptionType string

const (
	OptionBool   OptionType = "bool"
	OptionInt    OptionType = "int"
	OptionString OptionType = "string"
)

// ConfigEntry is a single key=value line from the daemon configuration file.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ConfigOption is a ConfigEntry annotated with what the console knows about it.
type ConfigOption struct {
	Value       string     `json:"value"`
	Type        OptionType `json:"type"`
	Description string     `json:"description"`
}

// ConfigChange is an audited edit of the daemon configuration file.
type ConfigChange struct {
	ID        int64     `json:"id"`
	Key       string    `json:"config_key"`
	OldValue  *string   `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// TLSConfig locates the client certificate material for an mTLS connection.
// Relative paths are resolved against CertDir.
type TLSConfig struct {
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	CAFile     string `json:"ca_file"`
	CertDir    string `json:"cert_dir,omitempty"`
	ServerName string `json:"server_name,omitempty"`
}

// NATSConfig enables publishing audit events to a JetStream stream.
type NATSConfig struct {
	URL       string     `json:"url"`
	Stream    string     `json:"stream"`
	Domain    string     `json:"domain,omitempty"`
	CredsFile string     `json:"creds_file,omitempty"`
	TLS       *TLSConfig `json:"tls,omitempty"`
}

// CORSConfig controls which browser origins may call the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}
