package session

import (
	"sync"

	domain "backoffice/catalog/internal/domain/auth"
)

// LoginPath is where a denied gate sends the user.
const LoginPath = "/login"

// State is the access decision for protected content.
type State int

// Gate states. Pending holds until the first session notification.
const (
	StatePending State = iota
	StateAllowed
	StateDenied
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAllowed:
		return "allowed"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decide maps a session snapshot to a gate state.
func Decide(identity *domain.Identity, resolved bool) State {
	switch {
	case !resolved:
		return StatePending
	case identity == nil:
		return StateDenied
	default:
		return StateAllowed
	}
}

// Gate is one mount of the access check. Its first non-pending decision is
// kept for the gate's lifetime.
type Gate struct {
	tracker *Tracker

	mu      sync.Mutex
	state   State
	settled bool
}

// NewGate mounts a gate over the tracker.
func NewGate(tracker *Tracker) *Gate {
	return &Gate{tracker: tracker}
}

// Evaluate returns the gate state, latching it once the session is resolved.
func (g *Gate) Evaluate() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.settled {
		return g.state
	}
	g.state = Decide(g.tracker.Current())
	g.settled = g.state != StatePending
	return g.state
}
