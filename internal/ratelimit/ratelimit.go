// Package ratelimit throttles AI-chat requests. The table is the one
// piece of process-wide mutable state outside the room actors, so it is
// guarded by its own mutex and keyed by (room, team).
package ratelimit

import (
	"sync"
	"time"
)

type key struct {
	room string
	team string
}

type Table struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[key]time.Time

	now func() time.Time // test seam
}

func NewTable(cooldown time.Duration) *Table {
	return &Table{
		cooldown: cooldown,
		last:     make(map[key]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether a request for the given room/team is outside
// the cooldown window, recording the attempt when it is.
func (t *Table) Allow(room, team string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key{room: room, team: team}
	now := t.now()
	if last, ok := t.last[k]; ok && now.Sub(last) < t.cooldown {
		return false
	}
	t.last[k] = now
	return true
}

// Forget drops all entries for a room; called when the room is
// reclaimed so the table cannot grow without bound.
func (t *Table) Forget(room string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.last {
		if k.room == room {
			delete(t.last, k)
		}
	}
}
