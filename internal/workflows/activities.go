package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/core/ports"
)

// SessionStatus is what the walk workflow needs to know about a stored session.
type SessionStatus struct {
	Found       bool
	Arrived     bool
	Index       int
	Destination string
}

// WalkActivities holds the activity implementations for the simulated walk workflow.
// Commands go through the broker so the API process stays the only writer of session state.
type WalkActivities struct {
	Commands ports.EventPublisher
	Sessions ports.SessionStore
}

// SessionStatus reads the session's persisted record. A missing record is not an error.
func (a *WalkActivities) SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	rec, err := a.Sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return SessionStatus{}, nil
	}
	if err != nil {
		return SessionStatus{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return SessionStatus{
		Found:       true,
		Arrived:     rec.Arrived,
		Index:       rec.Index,
		Destination: rec.Snapshot.Destination,
	}, nil
}

// SendCommand queues a navigation command for the session.
func (a *WalkActivities) SendCommand(ctx context.Context, cmd domain.SessionCommand) error {
	if err := a.Commands.PublishCommand(ctx, &cmd); err != nil {
		return fmt.Errorf("publish %s for %s: %w", cmd.Kind, cmd.SessionID, err)
	}
	slog.DebugContext(ctx, "walk command queued", "session_id", cmd.SessionID, "kind", cmd.Kind)
	return nil
}
