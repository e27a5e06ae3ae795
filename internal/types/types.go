package types

import (
	"github.com/blockparty/build-battle-backend/internal/engine"
	"github.com/blockparty/build-battle-backend/internal/grid"
	"github.com/blockparty/build-battle-backend/internal/score"
)

type ClientMessage struct {
	Type string `json:"type"`
	// join
	Name           string `json:"name,omitempty"`
	IsHost         bool   `json:"isHost,omitempty"`
	ReconnectToken string `json:"reconnectToken,omitempty"`
	// placeBlock
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Height int        `json:"height"`
	Block  grid.Block `json:"block,omitempty"`
	// chat / aiChat / setTeamName
	Text string `json:"text,omitempty"`
	// hostAction
	Action         string `json:"action,omitempty"`
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
}

// ServerMessage is the single envelope for everything the server
// pushes; Type selects which fields are populated. Coordinates are
// pointers so a legitimate zero survives omitempty.
type ServerMessage struct {
	Type  string            `json:"type"`
	State *engine.RoomState `json:"state,omitempty"`

	TeamID     string `json:"teamId,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	SenderName string `json:"senderName,omitempty"`
	Text       string `json:"text,omitempty"`
	IsAI       bool   `json:"isAI,omitempty"`

	PlayerID string     `json:"playerId,omitempty"`
	Row      *int       `json:"row,omitempty"`
	Col      *int       `json:"col,omitempty"`
	Height   *int       `json:"height,omitempty"`
	Block    grid.Block `json:"block,omitempty"`

	Actions []grid.Action `json:"actions,omitempty"`

	TimerEnd    *int64       `json:"timerEnd,omitempty"` // unix millis
	Phase       engine.Phase `json:"phase,omitempty"`
	RevealIndex *int         `json:"revealIndex,omitempty"`

	Message        string                   `json:"message,omitempty"`
	Player         *engine.Player           `json:"player,omitempty"`
	ReconnectToken string                   `json:"reconnectToken,omitempty"`
	Round          int                      `json:"round,omitempty"`
	Scores         map[string]*score.Result `json:"scores,omitempty"`
}

// AIBridgeRequest is the body the external collaborator POSTs back to
// /room/{code} once it has parsed model output into structured actions.
type AIBridgeRequest struct {
	Type    string           `json:"type"` // must be "aiResponse"
	TeamID  string           `json:"teamId"`
	Text    string           `json:"text"`
	Actions []AIBridgeAction `json:"actions"`
}

type AIBridgeAction struct {
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Height int        `json:"height"`
	Block  grid.Block `json:"block"`
}

// CollaboratorRequest is what the room sends out to the collaborator
// when a player asks the AI for help.
type CollaboratorRequest struct {
	RoomCode   string    `json:"roomCode"`
	TeamID     string    `json:"teamId"`
	PlayerName string    `json:"playerName"`
	Text       string    `json:"text"`
	Grid       grid.Grid `json:"grid"`
}
