package cli

import (
	"errors"
	"fmt"
)

var (
	errEmptyPassword  = fmt.Errorf("password cannot be empty")
	errInvalidCost    = fmt.Errorf("cost must be a number between %d and %d", minCost, maxCost)
	errHashFailed     = fmt.Errorf("failed to generate hash")
	errUnknownCommand = errors.New("unknown command")
	errRequiresPID    = errors.New("kill requires -pid")
	errRequiresUser   = errors.New("requires -user")
	errInvalidSet     = errors.New("-set must be key=value")
	errInvalidPeriod  = errors.New("-interval must be at least one second")
	errActionFailed   = errors.New("action failed")
)
