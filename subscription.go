package linkly

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// SessionInvalidEvent is delivered when the session can no longer be
// renewed and the user has to sign in again.
type SessionInvalidEvent struct {
	// SignInURL is the configured sign-in location.
	SignInURL string
	// Err is the renewal failure shared by every affected request.
	Err error
}

// subscription represents an active session-invalid listener.
type subscription struct {
	id       string
	callback func(SessionInvalidEvent)
	active   atomic.Bool
}

// subscriptionManager handles listeners with safe lifecycle management.
// It ensures callbacks are never invoked after unsubscription completes.
type subscriptionManager struct {
	mu     sync.RWMutex
	subs   map[string]*subscription
	nextID atomic.Uint64
}

// newSubscriptionManager creates a new subscription manager.
func newSubscriptionManager() *subscriptionManager {
	return &subscriptionManager{
		subs: make(map[string]*subscription),
	}
}

// subscribe registers a callback and returns its unsubscribe function.
func (m *subscriptionManager) subscribe(callback func(SessionInvalidEvent)) func() {
	id := strconv.FormatUint(m.nextID.Add(1), 10)

	sub := &subscription{
		id:       id,
		callback: callback,
	}
	sub.active.Store(true)

	m.mu.Lock()
	m.subs[id] = sub
	m.mu.Unlock()

	return func() {
		m.unsubscribe(id)
	}
}

// unsubscribe removes a subscription. Safe to call multiple times.
func (m *subscriptionManager) unsubscribe(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subs[id]; ok {
		sub.active.Store(false)
		delete(m.subs, id)
	}
}

// notify calls every registered callback synchronously, outside the lock.
func (m *subscriptionManager) notify(ev SessionInvalidEvent) {
	m.mu.RLock()
	if len(m.subs) == 0 {
		m.mu.RUnlock()
		return
	}

	subs := make([]*subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	for _, sub := range subs {
		if sub.active.Load() {
			sub.callback(ev)
		}
	}
}

// count returns the number of active subscriptions.
func (m *subscriptionManager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// clear removes all subscriptions. Called during Client.Close().
func (m *subscriptionManager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs {
		sub.active.Store(false)
	}
	m.subs = make(map[string]*subscription)
}
