// Package engine holds the per-room game state and the pure operations
// over it: player/team registry, role rules, and the phase machine.
// Nothing here spawns goroutines or touches the clock beyond timestamps
// passed in by the caller; the room actor is the only writer.
package engine

import (
	"time"

	"github.com/blockparty/build-battle-backend/internal/grid"
	"github.com/blockparty/build-battle-backend/internal/score"
)

type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhaseDesign       Phase = "design"
	PhaseDemo         Phase = "demo"
	PhaseRound1       Phase = "round1"
	PhaseReveal1      Phase = "reveal1"
	PhaseInterstitial Phase = "interstitial"
	PhaseRound2       Phase = "round2"
	PhaseFinalReveal  Phase = "finalReveal"
	PhaseSummary      Phase = "summary"
)

type Role string

const (
	RoleArchitect Role = "architect"
	RoleBuilder   Role = "builder"
)

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamID    string `json:"teamId"`
	Role      Role   `json:"role"`
	Connected bool   `json:"connected"`
	// ReconnectToken is shared only with its own connection, never
	// broadcast.
	ReconnectToken string     `json:"-"`
	DesignGrid     *grid.Grid `json:"designGrid,omitempty"`
}

// AIAction is one bridge-originated placement, kept for replay/audit.
type AIAction struct {
	grid.Action
	At time.Time `json:"at"`
}

type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Grid    grid.Grid `json:"grid"`
	// Round1Grid is frozen the moment round 2 starts.
	Round1Grid  *grid.Grid    `json:"round1Grid,omitempty"`
	Round1Score *score.Result `json:"round1Score,omitempty"`
	Round2Score *score.Result `json:"round2Score,omitempty"`
	DesignGrid  *grid.Grid    `json:"designGrid,omitempty"`
	Target      *grid.Grid    `json:"target,omitempty"`
	AILog       []AIAction    `json:"aiLog,omitempty"`
}

type RoomState struct {
	Code    string             `json:"code"`
	Phase   Phase              `json:"phase"`
	Players map[string]*Player `json:"players"`
	Teams   map[string]*Team   `json:"teams"`
	// TeamOrder preserves creation order; join balancing and reveal
	// stepping both walk it.
	TeamOrder     []string   `json:"teamOrder"`
	CurrentTarget *grid.Grid `json:"currentTarget,omitempty"`
	Round         int        `json:"round"`
	TimerEnd      *time.Time `json:"timerEnd,omitempty"`
	HostConnected bool       `json:"hostConnected"`
	RevealIndex   int        `json:"revealIndex"`

	// teamCounter only ever increases, so pool names stay stable even
	// after teams are removed.
	teamCounter int
}

func NewRoomState(code string) *RoomState {
	return &RoomState{
		Code:    code,
		Phase:   PhaseLobby,
		Players: map[string]*Player{},
		Teams:   map[string]*Team{},
		Round:   1,
	}
}
