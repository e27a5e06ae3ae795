package engine

import (
	"time"

	"github.com/blockparty/build-battle-backend/internal/grid"
	"github.com/blockparty/build-battle-backend/internal/score"
)

// Phase transitions all follow the same shape: check the source phase,
// mutate, report whether anything changed. Requests from an invalid
// source are silent no-ops: late or duplicate host commands must never
// corrupt state.

// StartRound begins round 1 from lobby/reveal1 and round 2 from
// interstitial. Team grids reset, the target is assigned, and the timer
// deadline is set; entering round 2 additionally freezes each team's
// round-1 grid and swaps roles.
func (s *RoomState) StartRound(target grid.Grid, duration time.Duration, now time.Time) bool {
	switch s.Phase {
	case PhaseLobby, PhaseReveal1:
		return s.enterRound(1, PhaseRound1, target, duration, now)
	case PhaseInterstitial:
		return s.enterRound(2, PhaseRound2, target, duration, now)
	default:
		return false
	}
}

func (s *RoomState) enterRound(round int, phase Phase, target grid.Grid, duration time.Duration, now time.Time) bool {
	for _, tid := range s.TeamOrder {
		t := s.Teams[tid]
		if round == 2 {
			snap := t.Grid
			t.Round1Grid = &snap
		}
		t.Grid = grid.NewGrid()
		tgt := target
		t.Target = &tgt
	}
	s.CurrentTarget = &target
	s.Round = round
	s.Phase = phase
	end := now.Add(duration)
	s.TimerEnd = &end
	if round == 2 {
		s.SwapRoles()
	}
	return true
}

// FinishRound closes the active round, whether by timer expiry or a
// host skip: scores are computed against the target and stored on each
// team, and the deadline is cleared. The caller owns the timer handle.
func (s *RoomState) FinishRound() bool {
	var next Phase
	switch s.Phase {
	case PhaseRound1:
		next = PhaseReveal1
	case PhaseRound2:
		next = PhaseFinalReveal
	default:
		return false
	}
	if s.CurrentTarget != nil {
		for _, tid := range s.TeamOrder {
			t := s.Teams[tid]
			res := score.Score(t.Grid, *s.CurrentTarget)
			if s.Round == 2 {
				t.Round2Score = &res
			} else {
				t.Round1Score = &res
			}
		}
	}
	s.TimerEnd = nil
	s.RevealIndex = 0
	s.Phase = next
	return true
}

// NextReveal steps the reveal cursor across teams; stepping past the
// last team leaves reveal1 for the interstitial, or finalReveal for the
// summary.
func (s *RoomState) NextReveal() bool {
	switch s.Phase {
	case PhaseReveal1, PhaseFinalReveal:
	default:
		return false
	}
	if s.RevealIndex < len(s.TeamOrder)-1 {
		s.RevealIndex++
		return true
	}
	if s.Phase == PhaseReveal1 {
		s.Phase = PhaseInterstitial
	} else {
		s.Phase = PhaseSummary
	}
	s.RevealIndex = 0
	s.CurrentTarget = nil
	return true
}

func (s *RoomState) PrevReveal() bool {
	switch s.Phase {
	case PhaseReveal1, PhaseFinalReveal:
	default:
		return false
	}
	if s.RevealIndex == 0 {
		return false
	}
	s.RevealIndex--
	return true
}

// EndGame jumps straight to the summary from any phase.
func (s *RoomState) EndGame() bool {
	if s.Phase == PhaseSummary {
		return false
	}
	s.Phase = PhaseSummary
	s.TimerEnd = nil
	s.CurrentTarget = nil
	return true
}

func (s *RoomState) StartDesign() bool {
	if s.Phase != PhaseLobby {
		return false
	}
	s.Phase = PhaseDesign
	return true
}

// EndDesign returns to the lobby, saving each team architect's personal
// design grid onto the team.
func (s *RoomState) EndDesign() bool {
	if s.Phase != PhaseDesign {
		return false
	}
	for _, tid := range s.TeamOrder {
		t := s.Teams[tid]
		for _, id := range t.Members {
			p := s.Players[id]
			if p != nil && p.Role == RoleArchitect && p.DesignGrid != nil {
				g := *p.DesignGrid
				t.DesignGrid = &g
			}
		}
	}
	s.Phase = PhaseLobby
	return true
}

func (s *RoomState) StartDemo() bool {
	if s.Phase != PhaseLobby {
		return false
	}
	s.Phase = PhaseDemo
	return true
}

func (s *RoomState) EndDemo() bool {
	if s.Phase != PhaseDemo {
		return false
	}
	s.Phase = PhaseLobby
	return true
}

// InRound reports whether a round is actively being built.
func (s *RoomState) InRound() bool {
	return s.Phase == PhaseRound1 || s.Phase == PhaseRound2
}
