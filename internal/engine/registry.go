package engine

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/blockparty/build-battle-backend/internal/grid"
)

// MaxTeamSize caps team membership; joins fill existing teams before a
// new one is created.
const MaxTeamSize = 4

var teamNamePool = []string{
	"Brick Bandits",
	"Concrete Cobras",
	"Scaffold Squad",
	"Plywood Pandas",
	"Girder Geese",
	"Mortar Moose",
	"Rebar Rabbits",
	"Crane Crows",
}

// AddPlayer assigns the player to the first team (in creation order)
// with spare capacity, creating a new one from the name pool when all
// are full. The first member of a fresh team is the architect.
func (s *RoomState) AddPlayer(id, name string) *Player {
	var team *Team
	for _, tid := range s.TeamOrder {
		if t := s.Teams[tid]; len(t.Members) < MaxTeamSize {
			team = t
			break
		}
	}
	if team == nil {
		team = s.newTeam()
	}
	p := &Player{
		ID:             id,
		Name:           name,
		TeamID:         team.ID,
		Role:           RoleBuilder,
		Connected:      true,
		ReconnectToken: uuid.NewString(),
	}
	s.Players[id] = p
	team.Members = append(team.Members, id)
	s.ensureArchitect(team)
	return p
}

func (s *RoomState) newTeam() *Team {
	name := teamNamePool[s.teamCounter%len(teamNamePool)]
	s.teamCounter++
	t := &Team{
		ID:   fmt.Sprintf("team-%d", s.teamCounter),
		Name: name,
		Grid: grid.NewGrid(),
	}
	s.Teams[t.ID] = t
	s.TeamOrder = append(s.TeamOrder, t.ID)
	return t
}

// DisconnectPlayer marks the player disconnected and drops them from
// the member list, promoting a replacement architect if needed. The
// player record itself survives so a reconnect token can revive it.
// Team grids and scores are never touched by membership changes.
func (s *RoomState) DisconnectPlayer(id string) {
	p := s.Players[id]
	if p == nil {
		return
	}
	p.Connected = false
	if t := s.Teams[p.TeamID]; t != nil {
		t.Members = slices.DeleteFunc(t.Members, func(m string) bool { return m == id })
		s.ensureArchitect(t)
	}
}

// DeletePlayer removes the player entirely (kick, explicit leave).
func (s *RoomState) DeletePlayer(id string) {
	p := s.Players[id]
	if p == nil {
		return
	}
	if t := s.Teams[p.TeamID]; t != nil {
		t.Members = slices.DeleteFunc(t.Members, func(m string) bool { return m == id })
		s.ensureArchitect(t)
	}
	delete(s.Players, id)
}

// ReconnectPlayer revives a disconnected player by token. Returns nil
// when no disconnected player carries the token.
func (s *RoomState) ReconnectPlayer(token string) *Player {
	for _, p := range s.Players {
		if p.Connected || p.ReconnectToken != token {
			continue
		}
		p.Connected = true
		if t := s.Teams[p.TeamID]; t != nil {
			if !slices.Contains(t.Members, p.ID) {
				t.Members = append(t.Members, p.ID)
			}
			s.ensureArchitect(t)
		}
		return p
	}
	return nil
}

// SwapRoles flips every connected player's role, then re-establishes
// the one-architect-per-team invariant (flipping a three-member team
// yields two architects; a lone member flips away from architect with
// no counterpart).
func (s *RoomState) SwapRoles() {
	for _, p := range s.Players {
		if !p.Connected {
			continue
		}
		if p.Role == RoleArchitect {
			p.Role = RoleBuilder
		} else {
			p.Role = RoleArchitect
		}
	}
	for _, tid := range s.TeamOrder {
		s.ensureArchitect(s.Teams[tid])
	}
}

// ensureArchitect enforces exactly one architect among a team's
// connected members: extras demote in member order, and the first
// connected member is promoted when none remains.
func (s *RoomState) ensureArchitect(t *Team) {
	if t == nil {
		return
	}
	seen := false
	for _, id := range t.Members {
		p := s.Players[id]
		if p == nil || !p.Connected {
			continue
		}
		if p.Role == RoleArchitect {
			if seen {
				p.Role = RoleBuilder
			}
			seen = true
		}
	}
	if seen {
		return
	}
	for _, id := range t.Members {
		if p := s.Players[id]; p != nil && p.Connected {
			p.Role = RoleArchitect
			return
		}
	}
}
