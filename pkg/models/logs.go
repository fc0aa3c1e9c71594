package models

import "time"

// LogSource identifies which daemon log a LogEvent was read from.
type LogSource string

const (
	LogSourceSession  LogSource = "session"
	LogSourceTransfer LogSource = "transfer"
)

const (
	// ActionLog is the action assigned to lines without a structured action token.
	ActionLog = "LOG"
	// ActionTransfer is the action assigned to transfer log entries.
	ActionTransfer = "TRANSFER"
	// PIDTransfer stands in for the pid of transfer log entries, which carry none.
	PIDTransfer = "xfer"
	// LogStatusInfo is the status of lines without a status token.
	LogStatusInfo = "INFO"
	// LogStatusOK is the daemon's success token.
	LogStatusOK = "OK"
)

// LogEvent is one parsed daemon log line.
type LogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	PID       string    `json:"pid"`
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address"`
	Source    LogSource `json:"source"`
}

// TransferDirection is the xferlog direction flag.
type TransferDirection string

const (
	DirectionIncoming TransferDirection = "incoming"
	DirectionOutgoing TransferDirection = "outgoing"
	DirectionDeleted  TransferDirection = "deleted"
	DirectionUnknown  TransferDirection = Unknown
)

// TransferEntry is one positional xferlog record.
type TransferEntry struct {
	Timestamp       time.Time         `json:"timestamp"`
	TransferSeconds int               `json:"transfer_seconds"`
	RemoteHost      string            `json:"remote_host"`
	FileSize        int64             `json:"file_size"`
	FilePath        string            `json:"file_path"`
	Direction       TransferDirection `json:"direction"`
	Username        string            `json:"username"`
}

// LogStats summarizes a window of log events.
type LogStats struct {
	TotalEntries     int `json:"total_entries"`
	SuccessfulLogins int `json:"successful_logins"`
	FailedLogins     int `json:"failed_logins"`
	Transfers        int `json:"transfers"`
	UniqueIPs        int `json:"unique_ips"`
}
