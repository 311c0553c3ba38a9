package websocket

import (
	"sync"

	"lostfound/internal/domain/entity"
	"lostfound/pkg/errors"
	"lostfound/pkg/logger"
)

// SubscriptionState tracks a subscription through its lifecycle. There is no
// transition out of StateClosed.
type SubscriptionState int32

const (
	StatePending SubscriptionState = iota
	StateActive
	StateClosed
)

func (s SubscriptionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// subscriptionBuffer is the per-subscription event buffer. A subscriber that
// falls this far behind is treated as a failed transport and closed; the
// client recovers by re-subscribing and re-fetching the thread.
const subscriptionBuffer = 32

// Subscription is a long-lived handle on exactly one conversation. Events
// arrive in append order for that conversation; nothing from any other
// conversation is ever delivered on it.
type Subscription struct {
	key     string
	userID  string
	manager *Manager

	mu     sync.Mutex
	state  SubscriptionState
	events chan *entity.Message
}

// Events returns the stream of new messages for the subscribed conversation.
// The channel is closed when the subscription closes.
func (s *Subscription) Events() <-chan *entity.Message {
	return s.events
}

// State returns the current lifecycle state.
func (s *Subscription) State() SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the subscriber's user id.
func (s *Subscription) UserID() string {
	return s.userID
}

// Close releases the subscription. Safe to call multiple times; after the
// first call no further events are delivered on this handle.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	close(s.events)
	s.mu.Unlock()

	s.manager.remove(s)
}

// deliver enqueues an event, reporting false when the subscription is closed
// or its buffer is full.
func (s *Subscription) deliver(message *entity.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false
	}

	select {
	case s.events <- message:
		return true
	default:
		return false
	}
}

// Manager fans newly appended messages out to conversation-keyed
// subscriptions. Filtering happens here, on the server, so events from other
// conversations involving the same users can never leak to a subscriber.
type Manager struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewManager() *Manager {
	return &Manager{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscription for the conversation between userID and
// otherID about itemID. The handle is Active before it becomes visible to
// Publish; a Pending subscription never sits in the hub map, so a concurrent
// Publish cannot mistake it for a dead transport.
func (m *Manager) Subscribe(itemID, userID, otherID string) (*Subscription, error) {
	if itemID == "" || userID == "" || otherID == "" {
		return nil, errors.Validation("Subscription requires item and both participants", nil)
	}
	if userID == otherID {
		return nil, errors.Validation("Cannot subscribe to a conversation with yourself", nil)
	}

	sub := &Subscription{
		key:     entity.ThreadKey(itemID, userID, otherID),
		userID:  userID,
		manager: m,
		state:   StatePending,
		events:  make(chan *entity.Message, subscriptionBuffer),
	}

	sub.mu.Lock()
	sub.state = StateActive
	sub.mu.Unlock()

	m.mu.Lock()
	if m.subs[sub.key] == nil {
		m.subs[sub.key] = make(map[*Subscription]struct{})
	}
	m.subs[sub.key][sub] = struct{}{}
	m.mu.Unlock()

	logger.Debug("Subscription registered for thread %s by user %s", sub.key, userID)
	return sub, nil
}

// Publish delivers a newly appended message to every active subscription on
// its conversation and to no one else. Subscribers that cannot keep up are
// closed, which a connected client observes as a dropped transport.
func (m *Manager) Publish(message *entity.Message) {
	key := message.Key()

	m.mu.RLock()
	targets := make([]*Subscription, 0, len(m.subs[key]))
	for sub := range m.subs[key] {
		targets = append(targets, sub)
	}
	m.mu.RUnlock()

	for _, sub := range targets {
		if !sub.deliver(message) {
			if sub.State() != StateClosed {
				logger.Warn("Subscriber %s too slow on thread %s, closing subscription", sub.userID, key)
				sub.Close()
			}
		}
	}
}

// SubscriberCount reports active subscriptions for a conversation.
func (m *Manager) SubscriberCount(itemID, userA, userB string) int {
	key := entity.ThreadKey(itemID, userA, userB)

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[key])
}

func (m *Manager) remove(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.subs[sub.key]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(m.subs, sub.key)
		}
	}
}
