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

// Package natsutil publishes the console's audit trail as CloudEvents on NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/ftpconsole/pkg/config"
	"github.com/carverauto/ftpconsole/pkg/logger"
	"github.com/carverauto/ftpconsole/pkg/models"
)

const (
	// SubjectPrefix roots every audit subject: ftpconsole.audit.<kind>.
	SubjectPrefix = "ftpconsole.audit"

	eventSource     = "ftpconsole/console"
	eventTypePrefix = "com.carverauto.ftpconsole.audit."
	clientName      = "ftpconsole"
)

var errNATSURLRequired = errors.New("nats url is required")

// Publisher delivers audit events to an external sink.
type Publisher interface {
	PublishAudit(ctx context.Context, ev models.AuditEvent) error
}

// NopPublisher drops every event. It is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishAudit(context.Context, models.AuditEvent) error { return nil }

// streamPublisher is the slice of jetstream.JetStream the publisher uses.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher publishes audit events to a JetStream stream.
type EventPublisher struct {
	js     streamPublisher
	stream string
	log    logger.Logger
}

func NewEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *EventPublisher {
	return &EventPublisher{js: js, stream: streamName, log: log}
}

// Subject is the NATS subject an audit kind is published on.
func Subject(kind models.AuditKind) string {
	return SubjectPrefix + "." + string(kind)
}

// PublishAudit wraps ev in a CloudEvent and publishes it.
func (p *EventPublisher) PublishAudit(ctx context.Context, ev models.AuditEvent) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	id := ev.ID
	if id == "" {
		id = uuid.New().String()
	}

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              id,
		Source:          eventSource,
		Type:            eventTypePrefix + string(ev.Kind),
		DataContentType: "application/json",
		Subject:         Subject(ev.Kind),
		Time:            &ts,
		Data:            ev,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}

	p.log.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published audit event")

	return nil
}

// Connect dials NATS, makes sure the audit stream captures the audit subjects
// and returns a publisher bound to it. The caller owns the connection.
func Connect(ctx context.Context, cfg *models.NATSConfig, log logger.Logger) (*EventPublisher, *nats.Conn, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, nil, errNATSURLRequired
	}

	opts, err := connectOptions(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var js jetstream.JetStream
	if cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, cfg.Stream, SubjectPrefix+".>", log); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return NewEventPublisher(js, cfg.Stream, log), nc, nil
}

func connectOptions(cfg *models.NATSConfig, log logger.Logger) ([]nats.Option, error) {
	opts := []nats.Option{
		nats.Name(clientName),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Warn().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	if cfg.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFile))
	}

	if cfg.TLS != nil {
		config.NormalizeTLSPaths(cfg.TLS, cfg.TLS.CertDir)

		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	return opts, nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, name, subject string, log logger.Logger) error {
	stream, err := js.Stream(ctx, name)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", name, err)
		}

		if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}

		log.Info().Str("stream", name).Msg("Created NATS JetStream stream")

		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stream %s: %w", name, err)
	}

	subjects := ensureSubjectList(slices.Clone(info.Config.Subjects), subject)
	if len(subjects) == len(info.Config.Subjects) {
		return nil
	}

	updated := info.Config
	updated.Subjects = subjects

	if _, err := js.UpdateStream(ctx, updated); err != nil {
		return fmt.Errorf("failed to add %s to stream %s: %w", subject, name, err)
	}

	return nil
}

// ensureSubjectList appends subject unless an existing pattern already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether a NATS subject pattern ("*" one token,
// ">" the rest) covers subject. A literal ">" in subject only matches ">".
func matchesSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, tok := range pt {
		if tok == ">" {
			return len(st) > i
		}

		if i >= len(st) {
			return false
		}

		if tok != "*" && tok != st[i] {
			return false
		}
	}

	return len(pt) == len(st)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
