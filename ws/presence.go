package ws

import "sync"

// Presence tracks which users are currently reachable over a live gateway
// connection. It keeps a forward map (connection id -> user id) and a reverse
// map (user id -> connection id) maintained together, trading memory for a
// constant-time reverse lookup at the small scale this system runs at.
//
// State is process-local and never persisted; after a restart every user is
// offline until they reconnect and announce themselves again.
type Presence struct {
	mu     sync.RWMutex
	byConn map[string]int
	byUser map[int]string
}

func NewPresence() *Presence {
	return &Presence{
		byConn: make(map[string]int),
		byUser: make(map[int]string),
	}
}

// Register records that connID belongs to userID, overwriting any prior
// mapping for either side so the two maps never disagree. It reports whether
// the registry changed: invalid user ids and re-announcements of an existing
// mapping are both no-ops, so callers can gate the online broadcast on the
// return value.
func (p *Presence) Register(connID string, userID int) bool {
	if connID == "" || userID <= 0 {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.byConn[connID] == userID && p.byUser[userID] == connID {
		return false
	}
	if prev, ok := p.byConn[connID]; ok && p.byUser[prev] == connID {
		delete(p.byUser, prev)
	}
	if oldConn, ok := p.byUser[userID]; ok {
		delete(p.byConn, oldConn)
	}
	p.byConn[connID] = userID
	p.byUser[userID] = connID
	return true
}

// Resolve returns the live connection id for userID, if any.
func (p *Presence) Resolve(userID int) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	connID, ok := p.byUser[userID]
	return connID, ok
}

// Unregister removes the mapping for connID and reports the user id it
// belonged to. Idempotent: a second call for the same handle returns false,
// so the caller emits the offline notification at most once.
func (p *Presence) Unregister(connID string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.byConn[connID]
	if !ok {
		return 0, false
	}
	delete(p.byConn, connID)
	if p.byUser[userID] == connID {
		delete(p.byUser, userID)
	}
	return userID, true
}

func (p *Presence) Online(userID int) bool {
	_, ok := p.Resolve(userID)
	return ok
}

func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byConn)
}
