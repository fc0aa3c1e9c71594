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

package daemonconf

import "github.com/carverauto/ftpconsole/pkg/models"

// OptionSpec describes a daemon option the console knows about.
type OptionSpec struct {
	Type        models.OptionType `json:"type"`
	Description string            `json:"description"`
}

const customOptionDescription = "Custom configuration option"

var knownOptions = map[string]OptionSpec{
	"anonymous_enable":        {models.OptionBool, "Allow anonymous FTP"},
	"local_enable":            {models.OptionBool, "Allow local users to log in"},
	"write_enable":            {models.OptionBool, "Enable write commands"},
	"local_umask":             {models.OptionString, "Default umask for local users"},
	"anon_upload_enable":      {models.OptionBool, "Allow anonymous uploads"},
	"anon_mkdir_write_enable": {models.OptionBool, "Allow anonymous mkdir"},
	"dirmessage_enable":       {models.OptionBool, "Enable directory messages"},
	"xferlog_enable":          {models.OptionBool, "Enable transfer logging"},
	"connect_from_port_20":    {models.OptionBool, "Use port 20 for data"},
	"idle_session_timeout":    {models.OptionInt, "Idle session timeout (seconds)"},
	"data_connection_timeout": {models.OptionInt, "Data connection timeout"},
	"ftpd_banner":             {models.OptionString, "FTP server banner"},
	"chroot_local_user":       {models.OptionBool, "Chroot local users"},
	"max_clients":             {models.OptionInt, "Maximum number of clients"},
	"max_per_ip":              {models.OptionInt, "Max connections per IP"},
	"userlist_enable":         {models.OptionBool, "Consult the user list file"},
	"userlist_deny":           {models.OptionBool, "Treat the user list as a deny list"},
	"listen_port":             {models.OptionInt, "Control connection port"},
}

// Lookup returns the catalog entry for key, or a string option for custom keys.
func Lookup(key string) OptionSpec {
	if opt, ok := knownOptions[key]; ok {
		return opt
	}

	return OptionSpec{Type: models.OptionString, Description: customOptionDescription}
}

