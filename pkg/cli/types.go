package cli

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// CmdConfig holds parsed command-line configuration.
type CmdConfig struct {
	Help       bool
	SubCmd     string
	ConfigPath string
	JSON       bool
	PID        int
	Lines      int
	Set        string
	User       string
	Interval   time.Duration
	Cost       int
	Args       []string
}

// tableStyles are the lipgloss styles used for printed tables.
type tableStyles struct {
	header, cell, border, ok, bad, muted lipgloss.Style
}
