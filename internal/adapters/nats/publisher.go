package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/campusnav/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := openJetStream(conn, ensureStreams)
	if err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

// openJetStream enables JetStream on conn and runs setup against it.
// On failure conn is closed so it stops reconnecting in the background.
func openJetStream(conn *nats.Conn, setup func(nats.JetStreamContext) error) (nats.JetStreamContext, error) {
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := setup(js); err != nil {
		conn.Close()
		return nil, err
	}
	return js, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			// Location fixes and simulator ticks, consumed once by the API.
			Name:      commandStream,
			Subjects:  []string{CommandSubjectAll},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      eventStream,
			Subjects:  []string{EventSubjectAll},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishSessionEvent publishes a session event on campus.nav.event.<id>.
func (p *Publisher) PublishSessionEvent(ctx context.Context, event *domain.SessionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(EventSubject(event.SessionID), data, nats.Context(ctx))
	return err
}

// PublishCommand queues a command on campus.nav.command.<id>.
func (p *Publisher) PublishCommand(ctx context.Context, cmd *domain.SessionCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(CommandSubject(cmd.SessionID), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection, e.g. for the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
