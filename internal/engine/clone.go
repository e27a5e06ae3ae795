package engine

import (
	"slices"

	"github.com/blockparty/build-battle-backend/internal/grid"
)

// Clone deep-copies the state for broadcast. Outbound snapshots are
// marshaled on connection writer goroutines after the room loop has
// moved on, so they must not share mutable structure with live state.
// Score results are immutable once computed and may be shared.
func (s *RoomState) Clone() *RoomState {
	c := *s
	c.Players = make(map[string]*Player, len(s.Players))
	for id, p := range s.Players {
		c.Players[id] = p.Clone()
	}
	c.Teams = make(map[string]*Team, len(s.Teams))
	for id, t := range s.Teams {
		c.Teams[id] = t.clone()
	}
	c.TeamOrder = slices.Clone(s.TeamOrder)
	c.CurrentTarget = cloneGrid(s.CurrentTarget)
	if s.TimerEnd != nil {
		end := *s.TimerEnd
		c.TimerEnd = &end
	}
	return &c
}

func (p *Player) Clone() *Player {
	c := *p
	c.DesignGrid = cloneGrid(p.DesignGrid)
	return &c
}

func (t *Team) clone() *Team {
	c := *t
	c.Members = slices.Clone(t.Members)
	c.AILog = slices.Clone(t.AILog)
	c.Round1Grid = cloneGrid(t.Round1Grid)
	c.DesignGrid = cloneGrid(t.DesignGrid)
	c.Target = cloneGrid(t.Target)
	return &c
}

func cloneGrid(g *grid.Grid) *grid.Grid {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}
