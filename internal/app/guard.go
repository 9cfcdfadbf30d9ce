package app

import (
	"sync"
	"time"
)

type guardHold struct {
	ticket     uint64
	acquiredAt time.Time
}

// Guard admits at most one in-flight state-mutating command per session.
// A concurrent second command is rejected with ErrActionInProgress rather
// than queued; callers retry. A hold older than the timeout is considered
// abandoned and its slot is stolen by the next acquirer, so a crashed caller
// cannot wedge a session forever.
type Guard struct {
	mu      sync.Mutex
	timeout time.Duration
	now     func() time.Time
	next    uint64
	held    map[string]guardHold
}

// NewGuard builds a guard with the given abandonment timeout.
func NewGuard(timeout time.Duration) *Guard {
	return &Guard{
		timeout: timeout,
		now:     time.Now,
		held:    make(map[string]guardHold),
	}
}

// Acquire claims the session's command slot and returns a release ticket.
func (g *Guard) Acquire(sessionID string) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if hold, ok := g.held[sessionID]; ok {
		if g.now().Sub(hold.acquiredAt) <= g.timeout {
			return 0, ErrActionInProgress
		}
	}
	g.next++
	g.held[sessionID] = guardHold{ticket: g.next, acquiredAt: g.now()}
	return g.next, nil
}

// Release frees the slot if the caller still owns it. A holder whose slot was
// stolen after the timeout releases nothing, so it cannot evict the stealer.
func (g *Guard) Release(sessionID string, ticket uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if hold, ok := g.held[sessionID]; ok && hold.ticket == ticket {
		delete(g.held, sessionID)
	}
}
