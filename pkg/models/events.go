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

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// AuditKind names an administrative action taken through the console.
type AuditKind string

const (
	AuditConfigUpdate       AuditKind = "config.update"
	AuditUserCreate         AuditKind = "user.create"
	AuditUserDelete         AuditKind = "user.delete"
	AuditUserBlock          AuditKind = "user.block"
	AuditUserUnblock        AuditKind = "user.unblock"
	AuditUserFixPermissions AuditKind = "user.fix_permissions"
	AuditConnectionKill     AuditKind = "connection.terminate"
)

// AuditEvent records the outcome of one administrative action.
type AuditEvent struct {
	ID        string    `json:"id"`
	Kind      AuditKind `json:"kind"`
	Subject   string    `json:"subject"`
	Actor     string    `json:"actor"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActionResult is what every mutating operation hands back to the boundary layer.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Succeeded(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}

func Failed(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}
