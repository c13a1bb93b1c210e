package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/pkg/metrics"
)

// Subscriber implements ports.CommandSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := openJetStream(conn, ensureStreams)
	if err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeCommands consumes queued session commands with a durable consumer.
// Commands for sessions that no longer exist are terminated instead of redelivered.
func (s *Subscriber) SubscribeCommands(ctx context.Context, handler func(ctx context.Context, cmd *domain.SessionCommand) error) error {
	sub, err := s.js.Subscribe(CommandSubjectAll, func(msg *nats.Msg) {
		var cmd domain.SessionCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			slog.Warn("malformed session command", "subject", msg.Subject, "error", err)
			metrics.CommandsConsumed.WithLabelValues("unknown", "malformed").Inc()
			_ = msg.Term()
			return
		}
		err := handler(ctx, &cmd)
		switch {
		case err == nil, errors.Is(err, domain.ErrNoPath):
			metrics.CommandsConsumed.WithLabelValues(string(cmd.Kind), "ok").Inc()
			_ = msg.Ack()
		case permanent(err):
			slog.Info("dropping session command", "session_id", cmd.SessionID, "kind", cmd.Kind, "error", err)
			metrics.CommandsConsumed.WithLabelValues(string(cmd.Kind), "dropped").Inc()
			_ = msg.Term()
		default:
			slog.Warn("session command failed", "session_id", cmd.SessionID, "kind", cmd.Kind, "error", err)
			metrics.CommandsConsumed.WithLabelValues(string(cmd.Kind), "retry").Inc()
			_ = msg.Nak()
		}
	},
		nats.Durable("session-commands"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func permanent(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrNoActiveRoute) ||
		errors.Is(err, domain.ErrInvalidRoute) ||
		errors.Is(err, domain.ErrUnknownLocation)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
