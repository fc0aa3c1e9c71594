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

package console

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/carverauto/ftpconsole/pkg/accounts"
	"github.com/carverauto/ftpconsole/pkg/models"
)

// CreateUserRequest is the input of CreateUser.
type CreateUserRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	HomeDirectory string `json:"home_directory"`
}

// Users joins the console inventory with the system's regular accounts and
// the block list. Accounts the console did not create are listed too.
func (c *Console) Users(ctx context.Context) ([]models.FTPUser, error) {
	system, err := c.directory.List()
	if err != nil {
		return nil, err
	}

	blocked, err := c.blocklist.List()
	if err != nil {
		return nil, err
	}

	var known []models.FTPUser
	if c.store != nil {
		if known, err = c.store.ListUsers(ctx); err != nil {
			return nil, err
		}
	}

	systemNames := make(map[string]accounts.Account, len(system))
	for _, a := range system {
		systemNames[a.Username] = a
	}

	out := make([]models.FTPUser, 0, len(known)+len(system))
	seen := make(map[string]struct{}, len(known))

	for _, u := range known {
		_, u.ExistsInSystem = systemNames[u.Username]
		u.IsBlocked = slices.Contains(blocked, u.Username)
		seen[u.Username] = struct{}{}
		out = append(out, u)
	}

	for _, a := range system {
		if _, ok := seen[a.Username]; ok {
			continue
		}

		out = append(out, models.FTPUser{
			Username:       a.Username,
			HomeDirectory:  a.Home,
			IsBlocked:      slices.Contains(blocked, a.Username),
			ExistsInSystem: true,
		})
	}

	return out, nil
}

// CreateUser provisions an OS account and records it in the inventory.
func (c *Console) CreateUser(ctx context.Context, req CreateUserRequest, actor string) models.ActionResult {
	username := strings.TrimSpace(req.Username)

	res := c.createUser(ctx, username, req.Password, req.HomeDirectory, actor)
	c.audit(ctx, models.AuditUserCreate, username, actor, res)

	return res
}

func (c *Console) createUser(ctx context.Context, username, password, home, actor string) models.ActionResult {
	if username == "" {
		return models.Failed("Username is required")
	}

	if err := accounts.ValidateUsername(username); err != nil {
		return models.Failed(err.Error())
	}

	if err := accounts.ValidatePassword(password); err != nil {
		return models.Failed(capitalize(err.Error()))
	}

	home, err := accounts.ResolveHome(username, home)
	if err != nil {
		return models.Failed(err.Error())
	}

	exists, err := c.accounts.Exists(ctx, username)
	if err != nil {
		return models.Failed(fmt.Sprintf("Error creating user: %v", err))
	}

	if exists {
		return models.Failed("User already exists")
	}

	if err := c.accounts.Create(ctx, username, password, home); err != nil {
		return models.Failed(fmt.Sprintf("Error creating user: %v", err))
	}

	msg := "User created successfully"

	if c.store != nil {
		now := c.now()
		if err := c.store.UpsertUser(ctx, models.FTPUser{
			Username:      username,
			HomeDirectory: home,
			CreatedAt:     &now,
			CreatedBy:     actor,
		}); err != nil {
			msg = fmt.Sprintf("%s (DB warning: %v)", msg, err)
		}
	}

	return models.Succeeded(msg)
}

// DeleteUser removes the OS account, its home directory and its inventory row.
func (c *Console) DeleteUser(ctx context.Context, username, actor string) models.ActionResult {
	res := c.deleteUser(ctx, username)
	c.audit(ctx, models.AuditUserDelete, username, actor, res)

	return res
}

func (c *Console) deleteUser(ctx context.Context, username string) models.ActionResult {
	if err := accounts.ValidateUsername(username); err != nil {
		return models.Failed(err.Error())
	}

	if err := c.accounts.Delete(ctx, username); err != nil {
		return models.Failed(fmt.Sprintf("Error deleting user: %v", err))
	}

	if c.store != nil {
		if err := c.store.DeleteUser(ctx, username); err != nil {
			c.log.Warn().Err(err).Str("username", username).Msg("Failed to remove user from inventory")
		}
	}

	return models.Succeeded("User deleted successfully")
}

// BlockUser adds username to the daemon's deny list and restarts the daemon.
func (c *Console) BlockUser(ctx context.Context, username, actor string) models.ActionResult {
	res := c.setBlocked(ctx, username, true)
	c.audit(ctx, models.AuditUserBlock, username, actor, res)

	return res
}

func (c *Console) UnblockUser(ctx context.Context, username, actor string) models.ActionResult {
	res := c.setBlocked(ctx, username, false)
	c.audit(ctx, models.AuditUserUnblock, username, actor, res)

	return res
}

func (c *Console) setBlocked(ctx context.Context, username string, blocked bool) models.ActionResult {
	verb := "unblocking"
	if blocked {
		verb = "blocking"
	}

	if err := accounts.ValidateUsername(username); err != nil {
		return models.Failed(fmt.Sprintf("Error %s user: %v", verb, err))
	}

	var err error
	if blocked {
		_, err = c.blocklist.Block(username)
	} else {
		_, err = c.blocklist.Unblock(username)
	}

	if err != nil {
		return models.Failed(fmt.Sprintf("Error %s user: %v", verb, err))
	}

	if c.store != nil {
		if err := c.store.SetBlocked(ctx, username, blocked); err != nil {
			c.log.Warn().Err(err).Str("username", username).Msg("Failed to update blocked flag")
		}
	}

	if c.service != nil {
		if err := c.service.Restart(ctx); err != nil {
			return models.Failed(fmt.Sprintf("Error %s user: %v", verb, err))
		}
	}

	if blocked {
		return models.Succeeded("User blocked successfully")
	}

	return models.Succeeded("User unblocked successfully")
}

// FixPermissions restores ownership and mode of the user's home directory.
func (c *Console) FixPermissions(ctx context.Context, username, actor string) models.ActionResult {
	res := c.fixPermissions(ctx, username)
	c.audit(ctx, models.AuditUserFixPermissions, username, actor, res)

	return res
}

func (c *Console) fixPermissions(ctx context.Context, username string) models.ActionResult {
	if err := accounts.ValidateUsername(username); err != nil {
		return models.Failed(err.Error())
	}

	home := c.directory.HomeDir(username)

	if err := c.accounts.FixPermissions(ctx, username, home); err != nil {
		return models.Failed(fmt.Sprintf("Error fixing permissions: %v", err))
	}

	return models.Succeeded(fmt.Sprintf("Permissions fixed for %s", home))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
