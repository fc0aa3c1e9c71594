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

// Package accounts manages the OS accounts the FTP daemon authenticates.
package accounts

//go:generate mockgen -destination=mock_accounts.go -package=accounts github.com/carverauto/ftpconsole/pkg/accounts Provisioner

import "context"

// Provisioner creates and removes OS-level user accounts. Every method is a
// privileged OS operation.
type Provisioner interface {
	Create(ctx context.Context, username, password, home string) error
	Delete(ctx context.Context, username string) error
	Exists(ctx context.Context, username string) (bool, error)
	FixPermissions(ctx context.Context, username, home string) error
}
