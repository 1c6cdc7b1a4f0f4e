package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/compare"
	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
)

var ErrSessionNotFound = errors.New("compare session not found")

// Session is one mounted comparison view: a controller plus the event
// plumbing the server surfaces over websockets.
type Session struct {
	ID        string
	CreatedAt time.Time

	ctrl *compare.Controller

	mu          sync.Mutex
	redirectTo  string
	subscribers map[int]chan compare.Event
	nextSubID   int
}

// Push implements compare.Router by recording the redirect target; the
// HTTP layer relays it to the browser instead of navigating itself.
func (s *Session) Push(url string) {
	s.mu.Lock()
	s.redirectTo = url
	s.mu.Unlock()
}

// Publish implements compare.EventSink, fanning the event out to all
// subscribers. Slow subscribers lose events rather than blocking the
// controller.
func (s *Session) Publish(ev compare.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers an event channel. The returned func unsubscribes
// and closes the channel.
func (s *Session) Subscribe() (<-chan compare.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan compare.Event, 16)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Controller returns the session's compare controller.
func (s *Session) Controller() *compare.Controller {
	return s.ctrl
}

// RedirectTo returns the URL the session asked the router to push, or ""
// if no redirect happened.
func (s *Session) RedirectTo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirectTo
}

func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// Manager owns the live compare sessions.
type Manager struct {
	client api.Client
	logger logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager ties together the API client and logger.
func NewManager(client api.Client, logger logging.Logger) *Manager {
	return &Manager{
		client:   client,
		logger:   logger.With(logging.Field{Key: "component", Value: "sessions"}),
		sessions: map[string]*Session{},
	}
}

// Create mounts a new comparison session and applies its initial route
// parameters. The session exists afterwards even if the initial fetch
// failed; the failure lives in its store state.
func (m *Manager) Create(ctx context.Context, p compare.Params) (*Session, error) {
	s := &Session{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		subscribers: map[int]chan compare.Event{},
	}
	s.ctrl = compare.New(m.client, s, m.logger, s)

	s.ctrl.OnRouteChange(ctx, p)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("created compare session",
		logging.Field{Key: "session", Value: s.ID},
		logging.Field{Key: "addon", Value: p.AddonID},
		logging.Field{Key: "base", Value: p.BaseVersionID},
		logging.Field{Key: "head", Value: p.HeadVersionID})
	return s, nil
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns all live sessions.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Remove unmounts a session and closes its subscribers.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.closeSubscribers()
	m.logger.Info("removed compare session", logging.Field{Key: "session", Value: id})
	return nil
}

// Close unmounts every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for _, s := range sessions {
		s.closeSubscribers()
	}
}
