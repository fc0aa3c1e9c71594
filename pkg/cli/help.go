package cli

import (
	"fmt"
	"io"
)

// ShowHelp writes the usage message.
func ShowHelp(w io.Writer) {
	fmt.Fprint(w, `ftpconsole: management console for an FTP daemon
Usage:
  ftpconsole <command> [options]

Commands:
  serve            Run the HTTP API
  connections      List active client connections
  kill             Terminate a connection by pid
  logs             Show recent session and transfer log events
  sessions         Show sessions the session log reports as open
  config           Show or change the daemon configuration
  users            List FTP users
  block            Add a user to the daemon's deny list
  unblock          Remove a user from the daemon's deny list
  stats            Show the dashboard summary
  audit            Show recent administrative actions
  top              Live connection view
  hash-password    Generate a bcrypt hash for admin_password_hash

Options for all commands except hash-password:
  -config string      path to ftpconsole.json (default "/etc/ftpconsole/ftpconsole.json")

Options:
  connections -json             print JSON instead of a table
  kill -pid int                 pid of the session process
  logs -n int                   number of events (default 50)
  audit -n int [-json]          number of events (default 20)
  config -json                  print JSON instead of a table
  config -set key=value         change one setting and restart the daemon
  block|unblock -user string    account name
  top -interval duration        refresh interval (default 2s)
  hash-password -cost int       bcrypt cost (default 12)

Examples:
  ftpconsole connections
  ftpconsole kill -pid 4242
  ftpconsole config -set max_clients=50
  ftpconsole block -user alice
  echo mypassword | ftpconsole hash-password
  ftpconsole hash-password   # launches TUI
`)
}
