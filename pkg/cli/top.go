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

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/ftpconsole/pkg/connections"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const topTableHeight = 15

// topConsole is the part of the console the live view needs.
type topConsole interface {
	Connections(ctx context.Context) connections.Snapshot
	Terminate(ctx context.Context, pid int32, actor string) models.ActionResult
}

type (
	snapshotMsg  connections.Snapshot
	tickMsg      time.Time
	terminateMsg models.ActionResult
)

type topModel struct {
	ctx      context.Context
	console  topConsole
	interval time.Duration
	table    table.Model
	snap     connections.Snapshot
	result   *models.ActionResult
	styles   tableStyles
}

var topColumnWidths = []int{8, 16, 40, 14, 20}

func newTopModel(ctx context.Context, c topConsole, interval time.Duration) *topModel {
	columns := make([]table.Column, len(connectionHeaders))
	for i, h := range connectionHeaders {
		columns[i] = table.Column{Title: h, Width: topColumnWidths[i]}
	}

	styles := newTableStyles()

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(draculaPurple)).
		BorderBottom(true).
		Foreground(lipgloss.Color(draculaPink)).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(draculaForeground)).
		Background(lipgloss.Color(draculaPurple))

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(topTableHeight),
		table.WithStyles(ts),
	)

	return &topModel{
		ctx:      ctx,
		console:  c,
		interval: interval,
		table:    t,
		styles:   styles,
	}
}

func (m *topModel) Init() tea.Cmd {
	return m.fetch()
}

func (m *topModel) fetch() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(m.console.Connections(m.ctx))
	}
}

func (m *topModel) terminate(pid int32) tea.Cmd {
	return func() tea.Msg {
		return terminateMsg(m.console.Terminate(m.ctx, pid, cliActor()))
	}
}

func (m *topModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = connections.Snapshot(msg)
		m.table.SetRows(tableRows(connectionRows(m.snap.Records)))

		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
	case tickMsg:
		return m, m.fetch()
	case terminateMsg:
		res := models.ActionResult(msg)
		m.result = &res

		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "x":
			if pid, ok := m.selectedPID(); ok {
				return m, m.terminate(pid)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *topModel) selectedPID() (int32, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}

	pid, err := strconv.ParseInt(row[0], 10, 32)
	if err != nil {
		return 0, false
	}

	return int32(pid), true
}

func (m *topModel) View() string {
	var b strings.Builder

	b.WriteString(m.table.View())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d connections, %d unique IPs, %d unique users, updated %s\n",
		m.snap.Summary.ActiveConnections, m.snap.Summary.UniqueIPs, m.snap.Summary.UniqueUsers,
		formatTime(m.snap.ObservedAt))

	if len(m.snap.Degraded) > 0 {
		b.WriteString(m.styles.bad.Render("degraded sources: "+strings.Join(m.snap.Degraded, ", ")) + "\n")
	}

	if m.result != nil {
		style := m.styles.ok
		if !m.result.Success {
			style = m.styles.bad
		}

		b.WriteString(style.Render(m.result.Message) + "\n")
	}

	b.WriteString(m.styles.muted.Render("↑/↓ select | x → terminate | q → quit"))

	return b.String()
}

func tableRows(rows [][]string) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row(r)
	}

	return out
}

// RunTop shows a live connection table refreshed every interval.
func RunTop(ctx context.Context, c topConsole, interval time.Duration) error {
	_, err := tea.NewProgram(newTopModel(ctx, c, interval), tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	return err
}
