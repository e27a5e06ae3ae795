package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_CooldownWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	tab := NewTable(20 * time.Second)
	tab.now = func() time.Time { return now }

	assert.True(t, tab.Allow("ROOM01", "team-1"))
	assert.False(t, tab.Allow("ROOM01", "team-1"))

	now = now.Add(10 * time.Second)
	assert.False(t, tab.Allow("ROOM01", "team-1"))

	now = now.Add(10 * time.Second)
	assert.True(t, tab.Allow("ROOM01", "team-1"))
}

func TestAllow_KeyedPerRoomAndTeam(t *testing.T) {
	now := time.Unix(1000, 0)
	tab := NewTable(20 * time.Second)
	tab.now = func() time.Time { return now }

	assert.True(t, tab.Allow("ROOM01", "team-1"))
	assert.True(t, tab.Allow("ROOM01", "team-2"))
	assert.True(t, tab.Allow("ROOM02", "team-1"))
	assert.False(t, tab.Allow("ROOM01", "team-1"))
}

func TestForget_DropsRoomEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	tab := NewTable(20 * time.Second)
	tab.now = func() time.Time { return now }

	assert.True(t, tab.Allow("ROOM01", "team-1"))
	assert.True(t, tab.Allow("ROOM02", "team-1"))

	tab.Forget("ROOM01")

	assert.True(t, tab.Allow("ROOM01", "team-1"))
	assert.False(t, tab.Allow("ROOM02", "team-1"))
}
