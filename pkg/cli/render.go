package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/carverauto/ftpconsole/pkg/connections"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	timeLayout  = "2006-01-02 15:04:05"
	noValue     = "-"
	maxDetails  = 60
	ellipsis    = "…"
	yesNoYes    = "yes"
	yesNoNo     = "no"
	bytesPerMiB = 1 << 20
)

func newTableStyles() tableStyles {
	return tableStyles{
		header: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPink)).Bold(true).Padding(0, 1),
		cell:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground)).Padding(0, 1),
		border: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPurple)),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
	}
}

func renderTable(headers []string, rows [][]string) string {
	styles := newTableStyles()

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}

			return styles.cell
		})

	if len(headers) > 0 {
		t = t.Headers(headers...)
	}

	return t.Rows(rows...).String()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return noValue
	}

	return t.Format(timeLayout)
}

func yesNo(b bool) string {
	if b {
		return yesNoYes
	}

	return yesNoNo
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + ellipsis
}

func connectionRows(records []models.ConnectionRecord) [][]string {
	rows := make([][]string, 0, len(records))

	for i := range records {
		rec := &records[i]
		rows = append(rows, []string{
			strconv.FormatInt(int64(rec.PID), 10),
			rec.Username,
			rec.RemoteIP,
			string(rec.Status),
			formatTime(rec.ConnectedAt),
		})
	}

	return rows
}

var connectionHeaders = []string{"PID", "USER", "REMOTE IP", "STATUS", "CONNECTED"}

func printConnections(w io.Writer, snap connections.Snapshot, asJSON bool) error {
	if asJSON {
		return writeJSON(w, snap)
	}

	styles := newTableStyles()

	var b strings.Builder

	b.WriteString(renderTable(connectionHeaders, connectionRows(snap.Records)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d connections, %d unique IPs, %d unique users\n",
		snap.Summary.ActiveConnections, snap.Summary.UniqueIPs, snap.Summary.UniqueUsers)

	if len(snap.Records) == 0 {
		b.WriteString(styles.muted.Render("no active connections") + "\n")
	}

	if len(snap.Degraded) > 0 {
		b.WriteString(styles.bad.Render("degraded sources: "+strings.Join(snap.Degraded, ", ")) + "\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func printLogs(w io.Writer, events []models.LogEvent) error {
	rows := make([][]string, 0, len(events))

	for i := range events {
		ev := &events[i]
		rows = append(rows, []string{
			formatTime(ev.Timestamp),
			ev.PID,
			ev.Username,
			ev.Status,
			ev.Action,
			ev.IPAddress,
			truncate(ev.Details, maxDetails),
		})
	}

	_, err := fmt.Fprintln(w, renderTable(
		[]string{"TIME", "PID", "USER", "STATUS", "ACTION", "IP", "DETAILS"}, rows))

	return err
}

func printConfig(w io.Writer, opts map[string]models.ConfigOption) error {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))

	for _, k := range keys {
		opt := opts[k]
		rows = append(rows, []string{k, opt.Value, string(opt.Type), opt.Description})
	}

	_, err := fmt.Fprintln(w, renderTable([]string{"KEY", "VALUE", "TYPE", "DESCRIPTION"}, rows))

	return err
}

func printUsers(w io.Writer, users []models.FTPUser) error {
	rows := make([][]string, 0, len(users))

	for i := range users {
		u := &users[i]

		created := noValue
		if u.CreatedAt != nil {
			created = formatTime(*u.CreatedAt)
		}

		rows = append(rows, []string{
			u.Username,
			u.HomeDirectory,
			yesNo(u.IsBlocked),
			yesNo(u.ExistsInSystem),
			created,
		})
	}

	_, err := fmt.Fprintln(w, renderTable([]string{"USER", "HOME", "BLOCKED", "SYSTEM", "CREATED"}, rows))

	return err
}

func printStats(w io.Writer, stats models.DashboardStats) error {
	styles := newTableStyles()

	state := styles.bad.Render("inactive")
	if stats.Service.Active {
		state = styles.ok.Render("active")
	}

	uptime := stats.Service.Uptime
	if uptime == "" {
		uptime = noValue
	}

	rows := [][]string{
		{"Daemon", state},
		{"Enabled at boot", yesNo(stats.Service.Enabled)},
		{"Uptime", uptime},
		{"Daemon memory", fmt.Sprintf("%.2f MB", stats.Service.MemoryMB)},
		{"Daemon CPU", fmt.Sprintf("%.2f%%", stats.Service.CPUPercent)},
		{"Users", strconv.Itoa(stats.TotalUsers)},
		{"Blocked users", strconv.Itoa(stats.BlockedUsers)},
		{"Active connections", strconv.Itoa(stats.ActiveConnections)},
		{"Unique client IPs", strconv.Itoa(stats.Connections.UniqueIPs)},
		{"Recent log events", strconv.Itoa(stats.RecentActivity)},
		{"Disk", usage(stats.Host.Disk)},
		{"Memory", usage(stats.Host.Memory)},
	}

	_, err := fmt.Fprintln(w, renderTable(nil, rows))

	return err
}

func printAudit(w io.Writer, events []models.AuditEvent) error {
	styles := newTableStyles()
	rows := make([][]string, 0, len(events))

	for i := range events {
		ev := &events[i]

		outcome := styles.ok.Render("ok")
		if !ev.Success {
			outcome = styles.bad.Render("failed")
		}

		rows = append(rows, []string{
			formatTime(ev.Timestamp),
			string(ev.Kind),
			ev.Subject,
			ev.Actor,
			outcome,
			truncate(ev.Message, maxDetails),
		})
	}

	_, err := fmt.Fprintln(w, renderTable([]string{"TIME", "ACTION", "SUBJECT", "ACTOR", "RESULT", "MESSAGE"}, rows))

	return err
}

func usage(u models.UsageStat) string {
	if u.Total == 0 {
		return noValue
	}

	return fmt.Sprintf("%d / %d MiB (%.1f%%)", u.Used/bytesPerMiB, u.Total/bytesPerMiB, u.Percent)
}

// printResult reports an ActionResult and turns a failure into an error so
// the process exits non-zero.
func printResult(w io.Writer, res models.ActionResult) error {
	styles := newTableStyles()

	if !res.Success {
		return fmt.Errorf("%w: %s", errActionFailed, res.Message)
	}

	_, err := fmt.Fprintln(w, styles.ok.Render(res.Message))

	return err
}
