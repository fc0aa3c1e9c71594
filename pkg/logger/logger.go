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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

type Config struct {
	Level      string `json:"level" yaml:"level"`
	Debug      bool   `json:"debug" yaml:"debug"`
	Output     string `json:"output" yaml:"output"`
	TimeFormat string `json:"time_format" yaml:"time_format"`
	// Console switches from JSON lines to zerolog's human-readable writer.
	Console bool `json:"console" yaml:"console"`
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init points zerolog's package logger at the configured output so that
// third-party code logging through zerolog/log lands in the same stream.
func Init(config *Config) error {
	zlog, err := build(config)
	if err != nil {
		return err
	}

	log.Logger = zlog

	return nil
}

func build(config *Config) (zerolog.Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var output io.Writer

	switch config.Output {
	case "", OutputStdout:
		output = os.Stdout
	case OutputStderr:
		output = os.Stderr
	default:
		return zerolog.Logger{}, fmt.Errorf("%w: %q", errUnknownOutput, config.Output)
	}

	if config.Console {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.DateTime}
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return zerolog.Logger{}, err
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
