package presence

import (
	"sync"
	"time"
)

// Status is the answer to "is this user online" for one user.
type Status struct {
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

// entry records the single active connection for an online user.
// Last announcement wins; there is no multi-device fan-out.
type entry struct {
	connID   string
	lastSeen time.Time
}

// Registry is the in-memory source of truth for which users are online
// and which connection a direct notification should go to. It is owned by
// the event relay; everything else reads it through the accessor methods.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]entry
	byConn map[string]string // connID -> userID, for disconnect handling
}

// now is a small indirection to allow test stubbing if needed.
var now = time.Now

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]entry),
		byConn: make(map[string]string),
	}
}

// MarkOnline inserts or overwrites the entry for userID and returns the
// recorded lastSeen timestamp. If the user was already online under a
// different connection, that older mapping is replaced.
func (r *Registry) MarkOnline(userID, connID string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[userID]; ok && prev.connID != connID {
		delete(r.byConn, prev.connID)
	}
	ts := now()
	r.byUser[userID] = entry{connID: connID, lastSeen: ts}
	r.byConn[connID] = userID
	return ts
}

// MarkOffline removes whichever user entry currently maps to connID.
// It is keyed by connection, not user: a disconnect only reliably
// identifies the dying connection, and the user may have re-announced
// from a newer one in the interim. A stale disconnect must not evict
// the newer entry, so the stored connID is compared before deleting.
// Returns the evicted userID, the eviction timestamp, and whether an
// entry was actually removed.
func (r *Registry) MarkOffline(connID string) (string, time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return "", time.Time{}, false
	}
	delete(r.byConn, connID)

	e, ok := r.byUser[userID]
	if !ok || e.connID != connID {
		return "", time.Time{}, false
	}
	delete(r.byUser, userID)
	return userID, now(), true
}

// IsOnline reports whether userID has an announced, live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID]
	return ok
}

// Locate returns the connection to unicast to for userID, if any.
func (r *Registry) Locate(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byUser[userID]
	if !ok {
		return "", false
	}
	return e.connID, true
}

// UserOf returns the userID announced on connID, if any.
func (r *Registry) UserOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}

// BulkStatus answers "which of these users are online" in one call.
// Offline users get a nil lastSeen; the registry keeps no history.
func (r *Registry) BulkStatus(userIDs []string) map[string]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make(map[string]Status, len(userIDs))
	for _, id := range userIDs {
		if e, ok := r.byUser[id]; ok {
			ls := e.lastSeen
			statuses[id] = Status{IsOnline: true, LastSeen: &ls}
		} else {
			statuses[id] = Status{IsOnline: false, LastSeen: nil}
		}
	}
	return statuses
}

// OnlineCount returns how many users are currently online.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
