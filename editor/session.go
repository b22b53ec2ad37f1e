// Package editor delivers live content-update notifications to a single
// page-view session. Each session owns its subscriptions; nothing is shared
// process-wide, so an abandoned preview tab cannot leak listeners into other
// requests.
package editor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-headless/internal/identity"
	"github.com/goliatone/go-headless/internal/logging"
	"github.com/goliatone/go-headless/pkg/interfaces"
)

// Update describes one changed record.
type Update struct {
	Collection string
	ItemID     string
	Payload    map[string]any
}

// subscriberBuffer bounds per-subscriber queues; slow consumers drop updates
// instead of blocking the publisher.
const subscriberBuffer = 8

type subscriber struct {
	id uuid.UUID
	ch chan Update
}

// Session is a per-page-view update hub. Safe for concurrent use. Close it
// when the page view ends.
type Session struct {
	id     uuid.UUID
	logger interfaces.Logger

	mu       sync.Mutex
	channels map[uuid.UUID][]subscriber
	closed   bool
}

// NewSession creates an empty session.
func NewSession(logger interfaces.Logger) *Session {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Session{
		id:       uuid.New(),
		logger:   logger,
		channels: map[uuid.UUID][]subscriber{},
	}
}

// ID identifies the session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Subscribe registers interest in one record and returns the update channel
// plus a cancel function. The channel closes on cancel or session close.
func (s *Session) Subscribe(collection, itemID string) (<-chan Update, func()) {
	sub := subscriber{
		id: uuid.New(),
		ch: make(chan Update, subscriberBuffer),
	}
	key := identity.EditorChannelUUID(s.id, collection, itemID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	s.channels[key] = append(s.channels[key], sub)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.channels[key]
		for i, candidate := range subs {
			if candidate.id != sub.id {
				continue
			}
			s.channels[key] = append(subs[:i], subs[i+1:]...)
			close(candidate.ch)
			break
		}
		if len(s.channels[key]) == 0 {
			delete(s.channels, key)
		}
	}
	return sub.ch, cancel
}

// Publish delivers an update to the record's subscribers and reports how
// many received it. Full subscriber queues are skipped.
func (s *Session) Publish(update Update) int {
	key := identity.EditorChannelUUID(s.id, update.Collection, update.ItemID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	delivered := 0
	for _, sub := range s.channels[key] {
		select {
		case sub.ch <- update:
			delivered++
		default:
			s.logger.Warn("editor.update.dropped",
				"collection", update.Collection,
				"item", update.ItemID,
			)
		}
	}
	return delivered
}

// Close tears down every subscription. Further publishes are no-ops and
// further subscribes return closed channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for key, subs := range s.channels {
		for _, sub := range subs {
			close(sub.ch)
		}
		delete(s.channels, key)
	}
}
