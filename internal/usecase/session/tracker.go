// Package session tracks the provider's session and gates protected content on it.
package session

import (
	"context"
	"sync"

	domain "backoffice/catalog/internal/domain/auth"
	productdomain "backoffice/catalog/internal/domain/product"
)

// Tracker mirrors the provider's session. It holds a single subscription
// that Close releases.
type Tracker struct {
	mu        sync.RWMutex
	identity  *domain.Identity
	resolved  bool
	ready     chan struct{}
	observers []func(*domain.Identity)

	unsubscribe func()
	closeOnce   sync.Once
}

// NewTracker registers with the provider. The tracker stays unresolved until
// the provider's first notification.
func NewTracker(provider domain.Provider) *Tracker {
	t := &Tracker{ready: make(chan struct{})}
	t.unsubscribe = provider.OnSessionChange(t.handle)
	return t
}

func (t *Tracker) handle(identity *domain.Identity) {
	t.mu.Lock()
	t.identity = identity
	first := !t.resolved
	t.resolved = true
	observers := append([]func(*domain.Identity){}, t.observers...)
	t.mu.Unlock()

	if first {
		close(t.ready)
	}
	for _, fn := range observers {
		fn(identity)
	}
}

// Current returns the identity, nil when signed out, and whether the initial
// session has been resolved.
func (t *Tracker) Current() (*domain.Identity, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.identity, t.resolved
}

// Owner returns the signed-in email, or the unknown-owner marker.
func (t *Tracker) Owner() string {
	identity, _ := t.Current()
	if identity == nil || identity.Email == "" {
		return productdomain.UnknownOwner
	}
	return identity.Email
}

// OnChange adds fn to the observers run after every notification.
func (t *Tracker) OnChange(fn func(*domain.Identity)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Wait blocks until the session is resolved or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close deregisters the provider listener. It is safe to call more than once.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		if t.unsubscribe != nil {
			t.unsubscribe()
		}
	})
}
