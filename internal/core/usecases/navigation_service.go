package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/core/navigation"
	"github.com/samirrijal/campusnav/internal/core/ports"
	"github.com/samirrijal/campusnav/internal/core/routing"
	"github.com/samirrijal/campusnav/internal/pkg/metrics"
	"github.com/samirrijal/campusnav/internal/pkg/telemetry"
)

// SessionView is what callers see of a session after each operation.
type SessionView struct {
	ID        string               `json:"id"`
	State     navigation.State     `json:"state"`
	Directive navigation.Directive `json:"directive"`
	Text      string               `json:"instruction"`
	// Matched is only meaningful for anchor operations.
	Matched *bool `json:"matched,omitempty"`
}

// NavigationOptions tunes a NavigationService.
type NavigationOptions struct {
	SessionTTL      time.Duration
	WrongWaySamples int
}

type sessionEntry struct {
	// mu serialises whole operations (mutation, persistence, events) on one session.
	mu       sync.Mutex
	session  *navigation.Session
	snapshot domain.RouteSnapshot
	monitor  *navigation.WrongWayMonitor
	touched  time.Time
}

// NavigationService owns the live navigation sessions of this process.
//
// Sessions are kept in memory and written through to the SessionStore after every
// mutation, so a session unknown to this process is resumed from the store on first use.
type NavigationService struct {
	graph     *domain.Graph
	store     ports.SessionStore
	publisher ports.EventPublisher
	opts      NavigationOptions

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	now   func() time.Time
	newID func() string
}

// NewNavigationService creates a new NavigationService. store and publisher may be nil.
func NewNavigationService(
	graph *domain.Graph,
	store ports.SessionStore,
	publisher ports.EventPublisher,
	opts NavigationOptions,
) *NavigationService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	return &NavigationService{
		graph:     graph,
		store:     store,
		publisher: publisher,
		opts:      opts,
		sessions:  make(map[string]*sessionEntry),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Start begins a new session on the snapshot's path. Every location on the path must exist
// and consecutive locations must be linked.
func (s *NavigationService) Start(ctx context.Context, snap domain.RouteSnapshot) (*SessionView, error) {
	if len(snap.Path) == 0 {
		return nil, domain.ErrEmptyRoute
	}
	if err := s.graph.CheckRoute(snap.Path); err != nil {
		return nil, err
	}
	if snap.Source == "" {
		snap.Source = snap.Path[0]
	}
	if snap.Destination == "" {
		snap.Destination = snap.Path.Destination()
	}
	if snap.Distance == 0 {
		snap.Distance, _ = routing.Cost(s.graph, snap.Path)
	}

	session, err := navigation.NewSession(snap.Path)
	if err != nil {
		return nil, err
	}
	e := &sessionEntry{
		session:  session,
		snapshot: snap,
		monitor:  navigation.NewWrongWayMonitor(s.opts.WrongWaySamples),
		touched:  s.now(),
	}
	id := s.newID()

	e.mu.Lock()
	defer e.mu.Unlock()

	s.mu.Lock()
	s.sessions[id] = e
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	st, _ := session.State()
	s.persist(ctx, id, e, st)
	s.publish(ctx, id, domain.EventStarted, st, true)
	slog.InfoContext(ctx, "navigation session started",
		"session_id", id, "source", snap.Source, "destination", snap.Destination, "steps", len(snap.Path))
	return s.view(id, e, st, nil)
}

// Get returns the current view of a session.
func (s *NavigationService) Get(ctx context.Context, id string) (*SessionView, error) {
	e, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.session.State()
	if err != nil {
		return nil, err
	}
	return s.view(id, e, st, nil)
}

// Instruction returns the next-step directive. When a compass heading (degrees) is given it is
// fed to the session's wrong-way monitor and the directive reports the debounced result.
func (s *NavigationService) Instruction(ctx context.Context, id string, heading *float64) (*SessionView, error) {
	e, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.session.State()
	if err != nil {
		return nil, err
	}
	return s.view(id, e, st, heading)
}

// Advance moves the session one step forward.
func (s *NavigationService) Advance(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, id, domain.CommandAdvance, func(e *sessionEntry) (domain.SessionEventType, bool, error) {
		moved, err := e.session.Advance()
		return domain.EventAdvanced, moved, err
	})
}

// Anchor re-synchronises the session with an external location fix. A fix that is not on the
// active route leaves the session unchanged and is reported with Matched=false.
func (s *NavigationService) Anchor(ctx context.Context, id string, anchor domain.Anchor) (*SessionView, error) {
	var matched bool
	v, err := s.mutate(ctx, id, domain.CommandAnchor, func(e *sessionEntry) (domain.SessionEventType, bool, error) {
		var err error
		matched, err = e.session.ReAnchor(anchor.ID)
		if err == nil && !matched {
			metrics.AnchorsIgnored.Inc()
			slog.DebugContext(ctx, "anchor not on route", "session_id", id, "anchor", anchor.ID)
		}
		return domain.EventAnchored, matched, err
	}, anchor.Heading)
	if err != nil {
		return nil, err
	}
	v.Matched = &matched
	return v, nil
}

// Reroute plans a new route from the walker's current location. An empty goal keeps the destination.
// When no path exists the session is left as it was and domain.ErrNoPath is returned.
func (s *NavigationService) Reroute(ctx context.Context, id, goal string) (*SessionView, error) {
	return s.mutate(ctx, id, domain.CommandReroute, func(e *sessionEntry) (domain.SessionEventType, bool, error) {
		route, err := e.session.Reroute(goal, s.graph)
		if err != nil {
			return "", false, err
		}
		dist, _ := routing.Cost(s.graph, route)
		e.snapshot = domain.RouteSnapshot{
			Source:      route[0],
			Destination: route.Destination(),
			Path:        route,
			Distance:    dist,
		}
		e.monitor.Reset()
		return domain.EventRerouted, true, nil
	})
}

// Reset returns the walker to the first location of the route.
func (s *NavigationService) Reset(ctx context.Context, id string) (*SessionView, error) {
	return s.mutate(ctx, id, domain.CommandReset, func(e *sessionEntry) (domain.SessionEventType, bool, error) {
		e.monitor.Reset()
		return domain.EventReset, true, e.session.Reset()
	})
}

// End discards a session everywhere.
func (s *NavigationService) End(ctx context.Context, id string) error {
	e, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	last, _ := e.session.State()
	if err := e.session.End(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "session store delete failed", "session_id", id, "error", err)
		}
	}
	s.publish(ctx, id, domain.EventEnded, last, false)
	return nil
}

// HandleCommand applies an asynchronous command delivered by the message broker.
func (s *NavigationService) HandleCommand(ctx context.Context, cmd *domain.SessionCommand) error {
	var err error
	switch cmd.Kind {
	case domain.CommandAdvance:
		_, err = s.Advance(ctx, cmd.SessionID)
	case domain.CommandAnchor:
		if cmd.Anchor == nil {
			return fmt.Errorf("anchor command for %s has no anchor", cmd.SessionID)
		}
		_, err = s.Anchor(ctx, cmd.SessionID, *cmd.Anchor)
	case domain.CommandReroute:
		_, err = s.Reroute(ctx, cmd.SessionID, cmd.Goal)
	case domain.CommandReset:
		_, err = s.Reset(ctx, cmd.SessionID)
	default:
		return fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
	return err
}

// Active returns the number of sessions held in memory.
func (s *NavigationService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops in-memory sessions idle for longer than the session TTL.
// Their records stay in the store until it expires them.
func (s *NavigationService) Sweep() int {
	cutoff := s.now().Add(-s.opts.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		// TryLock skips sessions that are busy right now; they were just touched anyway.
		if !e.mu.TryLock() {
			continue
		}
		if e.touched.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
		e.mu.Unlock()
	}
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return n
}

type mutation func(e *sessionEntry) (typ domain.SessionEventType, changed bool, err error)

func (s *NavigationService) mutate(ctx context.Context, id string, kind domain.CommandKind, fn mutation, heading ...*float64) (*SessionView, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSessionCommand)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrSessionID, id),
		attribute.String(telemetry.AttrCommand, string(kind)),
	)

	e, err := s.lookup(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	before, err := e.session.State()
	if err != nil {
		return nil, err
	}

	typ, changed, err := fn(e)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	e.touched = s.now()

	st, err := e.session.State()
	if err != nil {
		return nil, err
	}
	if changed {
		if st.Index != before.Index {
			e.monitor.Reset()
		}
		if st.Arrived && !before.Arrived {
			typ = domain.EventArrived
		}
		s.persist(ctx, id, e, st)
		s.publish(ctx, id, typ, st, typ == domain.EventRerouted)
	}

	var h *float64
	if len(heading) > 0 {
		h = heading[0]
	}
	return s.view(id, e, st, h)
}

func (s *NavigationService) lookup(ctx context.Context, id string) (*sessionEntry, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return e, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	// The campus may have been re-ingested since the snapshot was stored.
	if err := s.graph.CheckRoute(rec.Snapshot.Path); err != nil {
		return nil, fmt.Errorf("resume session %s: %w", id, err)
	}
	var session navigation.Session
	if err := session.Resume(rec.Snapshot, rec.Index); err != nil {
		return nil, fmt.Errorf("resume session %s: %w", id, err)
	}
	e = &sessionEntry{
		session:  &session,
		snapshot: rec.Snapshot,
		monitor:  navigation.NewWrongWayMonitor(s.opts.WrongWaySamples),
		touched:  s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have resumed it first.
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = e
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	slog.InfoContext(ctx, "navigation session resumed from store", "session_id", id, "index", rec.Index)
	return e, nil
}

func (s *NavigationService) persist(ctx context.Context, id string, e *sessionEntry, st navigation.State) {
	if s.store == nil {
		return
	}
	rec := &domain.SessionRecord{
		ID:        id,
		Snapshot:  e.snapshot,
		Index:     st.Index,
		Arrived:   st.Arrived,
		UpdatedAt: s.now(),
	}
	if err := s.store.Save(ctx, rec, s.opts.SessionTTL); err != nil {
		slog.WarnContext(ctx, "session store save failed", "session_id", id, "error", err)
	}
}

func (s *NavigationService) publish(ctx context.Context, id string, typ domain.SessionEventType, st navigation.State, withPath bool) {
	metrics.SessionEvents.WithLabelValues(string(typ)).Inc()
	if s.publisher == nil {
		return
	}
	ev := &domain.SessionEvent{
		SessionID: id,
		Type:      typ,
		Current:   st.Current,
		Index:     st.Index,
		Arrived:   st.Arrived,
		Time:      s.now(),
	}
	if withPath {
		ev.Path = st.Route
	}
	if err := s.publisher.PublishSessionEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish session event failed", "session_id", id, "type", typ, "error", err)
	}
}

func (s *NavigationService) view(id string, e *sessionEntry, st navigation.State, heading *float64) (*SessionView, error) {
	d, err := navigation.ClassifyState(s.graph, st)
	if err != nil {
		return nil, err
	}
	if heading != nil && d.Action != navigation.ActionArrived {
		d.WrongWay = e.monitor.Observe(d.Bearing, navigation.HeadingFromCompass(*heading))
	}
	return &SessionView{ID: id, State: st, Directive: d, Text: d.Text()}, nil
}
