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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/crypto/bcrypt"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

const (
	defaultCost = 12
	minCost     = 4
	maxCost     = 31
	inputWidth  = 40
)

// hashStage is where the hash-password TUI currently is.
type hashStage int

const (
	stagePassword hashStage = iota
	stageConfirm
	stageDone
)

var errPasswordMismatch = errors.New("passwords do not match")

type hashStyles struct {
	title, label, help, hint, ok, bad, box, frame lipgloss.Style
}

func newHashStyles() hashStyles {
	return hashStyles{
		title: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPink)).Bold(true),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaYellow)),
		help:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
		hint:  lipgloss.NewStyle().Foreground(lipgloss.Color(draculaOrange)),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
		bad:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)).Bold(true),
		box: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaPurple)).
			Padding(0, 1),
		frame: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(draculaCyan)).
			Foreground(lipgloss.Color(draculaForeground)),
	}
}

// hashModel asks for the admin password twice and shows its bcrypt hash.
type hashModel struct {
	password textinput.Model
	confirm  textinput.Model
	stage    hashStage
	cost     int
	hash     string
	err      error
	notice   string
	canCopy  bool
	styles   hashStyles
}

func newPasswordInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Width = inputWidth
	in.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan))
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))

	return in
}

func newHashModel(cost int, canCopy bool) *hashModel {
	m := &hashModel{
		password: newPasswordInput("admin password"),
		confirm:  newPasswordInput("repeat password"),
		cost:     cost,
		canCopy:  canCopy,
		styles:   newHashStyles(),
	}
	m.password.Focus()

	return m
}

func (*hashModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *hashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.advance()
		case "c":
			if m.stage == stageDone {
				m.copyHash()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd

	switch m.stage {
	case stagePassword:
		m.password, cmd = m.password.Update(msg)
	case stageConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	case stageDone:
	}

	return m, cmd
}

func (m *hashModel) advance() (tea.Model, tea.Cmd) {
	switch m.stage {
	case stagePassword:
		if strings.TrimSpace(m.password.Value()) == "" {
			m.err = errEmptyPassword
			return m, nil
		}

		m.err = nil
		m.stage = stageConfirm
		m.password.Blur()

		return m, m.confirm.Focus()
	case stageConfirm:
		if m.confirm.Value() != m.password.Value() {
			m.err = errPasswordMismatch
			m.confirm.Reset()

			return m, nil
		}

		hash, err := generateBcrypt(m.password.Value(), m.cost)
		if err != nil {
			m.err = err
			return m, nil
		}

		m.hash = hash
		m.err = nil
		m.stage = stageDone
		m.confirm.Blur()

		return m, nil
	case stageDone:
	}

	return m, nil
}

func (m *hashModel) copyHash() {
	if !m.canCopy {
		return
	}

	if err := clipboard.WriteAll(m.hash); err != nil {
		m.notice = "Clipboard unavailable: " + err.Error()
		return
	}

	m.notice = "Hash copied to clipboard"
}

func (m *hashModel) View() string {
	s := m.styles

	lines := []string{s.title.Render(fmt.Sprintf("ftpconsole admin password (bcrypt cost %d)", m.cost)), ""}

	switch m.stage {
	case stagePassword, stageConfirm:
		lines = append(lines,
			s.label.Render("Password:"), m.password.View(),
			s.label.Render("Confirm:"), m.confirm.View(),
			"",
			s.help.Render("enter next | esc quit"),
		)
	case stageDone:
		hint := "Paste this into admin_password_hash"
		if m.canCopy {
			hint = "Press c to copy it for admin_password_hash"
		}

		lines = append(lines, s.box.Render(m.hash), "", s.hint.Render(hint), s.help.Render("esc quit"))

		if m.notice != "" {
			lines = append(lines, s.ok.Render(m.notice))
		}
	}

	if m.err != nil {
		lines = append(lines, "", s.bad.Render("Error: "+m.err.Error()))
	}

	return s.frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func generateBcrypt(password string, cost int) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errEmptyPassword
	}

	if cost < minCost || cost > maxCost {
		return "", errInvalidCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errHashFailed, err)
	}

	return string(hash), nil
}

// RunHashPassword hashes the password given as arguments or on stdin, or
// launches the TUI when neither is present.
func RunHashPassword(cfg *CmdConfig, stdin io.Reader, stdout io.Writer) error {
	if len(cfg.Args) == 0 && IsInputFromTerminal() {
		m := newHashModel(cfg.Cost, !clipboard.Unsupported)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return err
		}

		if m.hash != "" {
			_, err := fmt.Fprintln(stdout, m.hash)
			return err
		}

		return nil
	}

	password, err := passwordInput(cfg.Args, stdin)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	hash, err := generateBcrypt(password, cfg.Cost)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, hash)

	return err
}

func passwordInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

// IsInputFromTerminal reports whether stdin is a terminal rather than a pipe or file.
func IsInputFromTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	return fi.Mode()&os.ModeCharDevice != 0
}
