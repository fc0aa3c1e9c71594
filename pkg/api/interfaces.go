package api

import (
	"context"

	"github.com/carverauto/ftpconsole/pkg/connections"
	"github.com/carverauto/ftpconsole/pkg/console"
	"github.com/carverauto/ftpconsole/pkg/models"
)

// Console is the management surface the API exposes. *console.Console implements it.
type Console interface {
	Connections(ctx context.Context) connections.Snapshot
	Terminate(ctx context.Context, pid int32, actor string) models.ActionResult

	Logs(limit int) []models.LogEvent
	LogStats() models.LogStats
	ActiveLogSessions(ctx context.Context) []models.LogEvent

	Config() (map[string]models.ConfigOption, error)
	UpdateConfig(ctx context.Context, key, value, actor string) models.ActionResult
	ConfigHistory(ctx context.Context, limit int) ([]models.ConfigChange, error)

	Users(ctx context.Context) ([]models.FTPUser, error)
	CreateUser(ctx context.Context, req console.CreateUserRequest, actor string) models.ActionResult
	DeleteUser(ctx context.Context, username, actor string) models.ActionResult
	BlockUser(ctx context.Context, username, actor string) models.ActionResult
	UnblockUser(ctx context.Context, username, actor string) models.ActionResult
	FixPermissions(ctx context.Context, username, actor string) models.ActionResult

	Stats(ctx context.Context) models.DashboardStats
	AuditLog(ctx context.Context, limit int) ([]models.AuditEvent, error)
}

var _ Console = (*console.Console)(nil)
