// Package room implements the per-room coordinator: one goroutine per
// room draining a typed inbox. Every mutation (player messages, the
// AI-bridge callback, timer fires) goes through that single loop, so
// no other locking exists for room state.
package room

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/blockparty/build-battle-backend/internal/engine"
	"github.com/blockparty/build-battle-backend/internal/grid"
	"github.com/blockparty/build-battle-backend/internal/ratelimit"
	"github.com/blockparty/build-battle-backend/internal/score"
	"github.com/blockparty/build-battle-backend/internal/targets"
	"github.com/blockparty/build-battle-backend/internal/types"
)

// maxAIActions caps placements applied from a single bridge response,
// so one runaway reply cannot repaint the whole grid.
const maxAIActions = 24

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

type Leave struct{ ClientID string }

type FromClient struct {
	ClientID string
	Msg      types.ClientMessage
}

// AIResponse carries a validated bridge callback into the loop; it is
// applied with the same priority as any player message.
type AIResponse struct {
	Payload types.AIBridgeRequest
}

// aiFallback is posted by the dispatch goroutine when the collaborator
// cannot be reached, so the team is never left waiting in silence.
type aiFallback struct{ TeamID string }

type timerFired struct{ Gen int }

type GetView struct{ Reply chan View }

type Shutdown struct{}

func (Join) isRoomMsg()       {}
func (Leave) isRoomMsg()      {}
func (FromClient) isRoomMsg() {}
func (AIResponse) isRoomMsg() {}
func (aiFallback) isRoomMsg() {}
func (timerFired) isRoomMsg() {}
func (GetView) isRoomMsg()    {}
func (Shutdown) isRoomMsg()   {}

// View reflects internal state without data races; test-only.
type View struct {
	NumClients int
	HostID     string
	State      engine.RoomState
}

type Config struct {
	RoundDuration   time.Duration
	CollaboratorURL string
}

type Deps struct {
	Cfg     Config
	Targets *targets.Library
	Limiter *ratelimit.Table
	Log     *zap.Logger
	// OnEmpty is called from the loop when the last client leaves, so
	// the hub can reclaim the room.
	OnEmpty func(code string)
}

type client struct {
	outbox   chan types.ServerMessage
	playerID string
}

type Room struct {
	code    string
	inbox   chan Msg
	state   *engine.RoomState
	clients map[string]*client
	hostID  string

	timer    *time.Timer
	timerGen int
	paused   time.Duration

	deps Deps
	http *http.Client
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRoom(parent context.Context, code string, deps Deps) *Room {
	ctx, cancel := context.WithCancel(parent)
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   engine.NewRoomState(code),
		clients: make(map[string]*client),
		deps:    deps,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     deps.Log.With(zap.String("room", code)),
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = &client{outbox: msg.Outbox}
				msg.Outbox <- types.ServerMessage{Type: "state", State: r.state.Clone()}

			case Leave:
				r.handleLeave(msg.ClientID)

			case FromClient:
				r.handleClient(msg.ClientID, msg.Msg)

			case AIResponse:
				r.handleAIResponse(msg.Payload)

			case aiFallback:
				r.broadcastTeam(msg.TeamID, types.ServerMessage{
					Type:       "chat",
					TeamID:     msg.TeamID,
					SenderName: "Rivet",
					Text:       "I can't reach the workshop right now. Keep building, I'll catch up.",
					IsAI:       true,
				})

			case timerFired:
				if msg.Gen != r.timerGen {
					break // stale fire from an already-cancelled round
				}
				r.timer = nil
				r.finishRound()

			case GetView:
				msg.Reply <- View{
					NumClients: len(r.clients),
					HostID:     r.hostID,
					State:      *r.state.Clone(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	r.stopTimer()
	for id, c := range r.clients {
		close(c.outbox)
		delete(r.clients, id)
	}
	r.cancel()
}

// --- inbound protocol ---

func (r *Room) handleClient(clientID string, m types.ClientMessage) {
	switch m.Type {
	case "join":
		r.handleJoin(clientID, m)
	case "placeBlock":
		r.handlePlace(clientID, m)
	case "chat":
		r.handleChat(clientID, m.Text)
	case "aiChat":
		r.handleAIChat(clientID, m.Text)
	case "setTeamName":
		r.handleSetTeamName(clientID, m.Name)
	case "hostAction":
		r.handleHostAction(clientID, m)
	case "leaveGame":
		r.handleLeaveGame(clientID)
	default:
		// unknown message types are dropped, never fatal
	}
}

func (r *Room) handleJoin(clientID string, m types.ClientMessage) {
	c := r.clients[clientID]
	if c == nil || c.playerID != "" {
		return
	}

	if m.ReconnectToken != "" {
		if p := r.state.ReconnectPlayer(m.ReconnectToken); p != nil {
			c.playerID = p.ID
			if m.IsHost && r.hostID == "" {
				r.hostID = clientID
				r.state.HostConnected = true
			}
			r.sendTo(clientID, types.ServerMessage{
				Type:           "reconnected",
				Player:         p.Clone(),
				ReconnectToken: p.ReconnectToken,
			})
			r.broadcastState()
			return
		}
	}

	p := r.state.AddPlayer(clientID, m.Name)
	c.playerID = p.ID
	if m.IsHost && r.hostID == "" {
		r.hostID = clientID
		r.state.HostConnected = true
	}
	r.log.Info("player joined", zap.String("player", p.ID), zap.String("team", p.TeamID))

	// the joiner gets the token; everyone else just the player
	joined := p.Clone()
	r.sendTo(clientID, types.ServerMessage{
		Type:           "playerJoined",
		Player:         joined,
		ReconnectToken: p.ReconnectToken,
	})
	for id := range r.clients {
		if id != clientID {
			r.sendTo(id, types.ServerMessage{Type: "playerJoined", Player: joined})
		}
	}
	r.broadcastState()
}

func (r *Room) handlePlace(clientID string, m types.ClientMessage) {
	c := r.clients[clientID]
	if c == nil || c.playerID == "" {
		return
	}
	p := r.state.Players[c.playerID]
	if p == nil {
		return
	}
	a := grid.Action{Row: m.Row, Col: m.Col, Height: m.Height, Block: m.Block}
	if a.Validate() != nil {
		return // out-of-bounds and unknown blocks are silently dropped
	}

	switch {
	case r.state.Phase == engine.PhaseDesign:
		if p.DesignGrid == nil {
			g := grid.NewGrid()
			p.DesignGrid = &g
		}
		p.DesignGrid.Place(a)
		r.broadcast(types.ServerMessage{
			Type: "designGridUpdate", TeamID: p.TeamID, PlayerID: p.ID,
			Row: &a.Row, Col: &a.Col, Height: &a.Height, Block: a.Block,
		})

	case r.state.InRound():
		if p.Role != engine.RoleBuilder {
			return // architects direct, builders place; violation is benign desync
		}
		t := r.state.Teams[p.TeamID]
		if t == nil {
			return
		}
		t.Grid.Place(a)
		r.broadcast(types.ServerMessage{
			Type: "gridUpdate", TeamID: t.ID,
			Row: &a.Row, Col: &a.Col, Height: &a.Height, Block: a.Block,
		})
	}
}

func (r *Room) handleChat(clientID, text string) {
	p := r.playerFor(clientID)
	if p == nil || text == "" {
		return
	}
	r.broadcastTeam(p.TeamID, types.ServerMessage{
		Type: "chat", TeamID: p.TeamID,
		SenderID: p.ID, SenderName: p.Name, Text: text,
	})
}

func (r *Room) handleSetTeamName(clientID, name string) {
	p := r.playerFor(clientID)
	if p == nil || name == "" {
		return
	}
	t := r.state.Teams[p.TeamID]
	if t == nil {
		return
	}
	t.Name = name
	r.broadcastState()
}

func (r *Room) handleLeaveGame(clientID string) {
	c := r.clients[clientID]
	if c == nil || c.playerID == "" {
		return
	}
	r.state.DeletePlayer(c.playerID)
	c.playerID = ""
	r.broadcastState()
}

func (r *Room) handleLeave(clientID string) {
	c := r.clients[clientID]
	if c == nil {
		return
	}
	delete(r.clients, clientID)
	close(c.outbox) // releases the websocket writer ranging over it
	if c.playerID != "" {
		r.state.DisconnectPlayer(c.playerID)
	}
	if clientID == r.hostID {
		r.hostID = ""
		r.state.HostConnected = false
	}
	if len(r.clients) == 0 {
		if r.deps.OnEmpty != nil {
			r.deps.OnEmpty(r.code)
		}
		return
	}
	r.broadcastState()
}

// --- host actions ---

func (r *Room) handleHostAction(clientID string, m types.ClientMessage) {
	if clientID != r.hostID {
		r.sendTo(clientID, types.ServerMessage{Type: "error", Message: "host actions require the host connection"})
		return
	}

	switch m.Action {
	case "startRound":
		r.startRound()
	case "pause":
		r.pauseTimer()
	case "resume":
		r.resumeTimer()
	case "skipToReveal":
		r.finishRound()
	case "nextReveal":
		before := r.state.Phase
		if r.state.NextReveal() {
			if r.state.Phase != before {
				r.broadcast(types.ServerMessage{Type: "phaseChange", Phase: r.state.Phase})
			} else {
				r.broadcastReveal()
			}
			r.broadcastState()
		}
	case "prevReveal":
		if r.state.PrevReveal() {
			r.broadcastReveal()
			r.broadcastState()
		}
	case "endGame":
		if r.state.EndGame() {
			r.stopTimer()
			r.broadcast(types.ServerMessage{Type: "phaseChange", Phase: r.state.Phase})
			r.broadcastState()
		}
	case "startDesign":
		r.simpleTransition(r.state.StartDesign)
	case "endDesign":
		r.simpleTransition(r.state.EndDesign)
	case "startDemo":
		r.simpleTransition(r.state.StartDemo)
	case "endDemo":
		r.simpleTransition(r.state.EndDemo)
	case "kickPlayer":
		r.kickPlayer(m.TargetPlayerID)
	}
}

func (r *Room) simpleTransition(fn func() bool) {
	if fn() {
		r.broadcast(types.ServerMessage{Type: "phaseChange", Phase: r.state.Phase})
		r.broadcastState()
	}
}

func (r *Room) startRound() {
	round := 1
	if r.state.Phase == engine.PhaseInterstitial {
		round = 2
	}
	pattern := r.deps.Targets.ForRound(r.code, round)
	now := time.Now()
	if !r.state.StartRound(pattern.Grid, r.deps.Cfg.RoundDuration, now) {
		return
	}
	r.paused = 0
	r.armTimer(r.deps.Cfg.RoundDuration)
	r.log.Info("round started",
		zap.Int("round", r.state.Round),
		zap.String("target", pattern.Name))
	r.broadcast(types.ServerMessage{Type: "phaseChange", Phase: r.state.Phase})
	r.broadcastTimer()
	r.broadcastState()
}

func (r *Room) finishRound() {
	round := r.state.Round
	if !r.state.FinishRound() {
		return
	}
	r.stopTimer()
	r.paused = 0
	scores := make(map[string]*score.Result, len(r.state.Teams))
	for id, t := range r.state.Teams {
		if round == 2 {
			scores[id] = t.Round2Score
		} else {
			scores[id] = t.Round1Score
		}
	}
	r.log.Info("round finished", zap.Int("round", round))
	r.broadcast(types.ServerMessage{Type: "scores", Round: round, Scores: scores})
	r.broadcast(types.ServerMessage{Type: "phaseChange", Phase: r.state.Phase})
	r.broadcastTimer()
	r.broadcastState()
}

func (r *Room) kickPlayer(playerID string) {
	if playerID == "" || r.state.Players[playerID] == nil {
		return
	}
	r.state.DeletePlayer(playerID)
	for id, c := range r.clients {
		if c.playerID == playerID {
			r.sendTo(id, types.ServerMessage{Type: "kicked", Message: "removed by the host"})
			c.playerID = ""
		}
	}
	r.broadcastState()
}

// --- timer ---

// armTimer invalidates any previous generation and schedules a fire.
// The callback only posts a message; expiry is handled inside the loop
// like any other event.
func (r *Room) armTimer(d time.Duration) {
	r.stopTimer()
	gen := r.timerGen
	r.timer = time.AfterFunc(d, func() {
		select {
		case r.inbox <- timerFired{Gen: gen}:
		case <-r.ctx.Done():
		}
	})
}

// stopTimer stops the handle and bumps the generation so an in-flight
// fire is dropped on receipt, not merely ignored.
func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

// pauseTimer records the remaining budget so resume can restore it;
// the deadline does not keep elapsing in the background.
func (r *Room) pauseTimer() {
	if !r.state.InRound() || r.state.TimerEnd == nil {
		return
	}
	remaining := time.Until(*r.state.TimerEnd)
	if remaining < 0 {
		remaining = 0
	}
	r.paused = remaining
	r.stopTimer()
	r.state.TimerEnd = nil
	r.broadcastTimer()
	r.broadcastState()
}

func (r *Room) resumeTimer() {
	if !r.state.InRound() || r.paused <= 0 || r.state.TimerEnd != nil {
		return
	}
	end := time.Now().Add(r.paused)
	r.state.TimerEnd = &end
	r.armTimer(r.paused)
	r.paused = 0
	r.broadcastTimer()
	r.broadcastState()
}

// --- AI bridge ---

func (r *Room) handleAIChat(clientID, text string) {
	p := r.playerFor(clientID)
	if p == nil || text == "" {
		return
	}
	if !r.state.InRound() {
		return
	}
	if r.deps.Limiter != nil && !r.deps.Limiter.Allow(r.code, p.TeamID) {
		r.sendTo(clientID, types.ServerMessage{Type: "error", Message: "the AI is still thinking, try again in a moment"})
		return
	}
	t := r.state.Teams[p.TeamID]
	if t == nil {
		return
	}
	// echo the prompt to the team, then hand off without blocking
	r.broadcastTeam(p.TeamID, types.ServerMessage{
		Type: "chat", TeamID: p.TeamID,
		SenderID: p.ID, SenderName: p.Name, Text: text,
	})
	r.dispatchAI(p.TeamID, p.Name, text, t.Grid)
}

// dispatchAI forwards the prompt to the collaborator from its own
// goroutine; the multi-second round trip must never hold up the loop.
// The collaborator answers later through the /room/{code} callback.
func (r *Room) dispatchAI(teamID, playerName, text string, snapshot grid.Grid) {
	url := r.deps.Cfg.CollaboratorURL
	if url == "" {
		r.post(aiFallback{TeamID: teamID})
		return
	}
	body, err := json.Marshal(types.CollaboratorRequest{
		RoomCode:   r.code,
		TeamID:     teamID,
		PlayerName: playerName,
		Text:       text,
		Grid:       snapshot,
	})
	if err != nil {
		r.post(aiFallback{TeamID: teamID})
		return
	}
	go func() {
		resp, err := r.http.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			r.log.Warn("collaborator unreachable", zap.Error(err))
			r.post(aiFallback{TeamID: teamID})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			r.log.Warn("collaborator rejected prompt", zap.Int("status", resp.StatusCode))
			r.post(aiFallback{TeamID: teamID})
		}
	}()
}

func (r *Room) post(m Msg) {
	select {
	case r.inbox <- m:
	case <-r.ctx.Done():
	}
}

func (r *Room) handleAIResponse(req types.AIBridgeRequest) {
	t := r.state.Teams[req.TeamID]
	if t == nil {
		return
	}

	if req.Text != "" {
		r.broadcastTeam(t.ID, types.ServerMessage{
			Type: "chat", TeamID: t.ID,
			SenderName: "Rivet", Text: req.Text, IsAI: true,
		})
	}

	if !r.state.InRound() {
		// a late response after the round closed still chats, but
		// cannot touch the grid
		return
	}

	applied := make([]grid.Action, 0, len(req.Actions))
	now := time.Now()
	for _, ra := range req.Actions {
		if len(applied) == maxAIActions {
			break
		}
		a := grid.Action{Row: ra.Row, Col: ra.Col, Height: ra.Height, Block: ra.Block}
		if a.Validate() != nil {
			continue // bad cells are skipped, the rest still land
		}
		t.Grid.Place(a)
		t.AILog = append(t.AILog, engine.AIAction{Action: a, At: now})
		applied = append(applied, a)
	}
	if len(applied) > 0 {
		r.broadcast(types.ServerMessage{Type: "aiBuilding", TeamID: t.ID, Actions: applied})
	}
	r.broadcastState()
}

// --- fanout ---

func (r *Room) playerFor(clientID string) *engine.Player {
	c := r.clients[clientID]
	if c == nil || c.playerID == "" {
		return nil
	}
	return r.state.Players[c.playerID]
}

func (r *Room) sendTo(clientID string, msg types.ServerMessage) {
	c := r.clients[clientID]
	if c == nil {
		return
	}
	select {
	case c.outbox <- msg:
	default:
		// slow/full client: drop them rather than stall the room
		close(c.outbox)
		delete(r.clients, clientID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id := range r.clients {
		r.sendTo(id, msg)
	}
}

func (r *Room) broadcastTeam(teamID string, msg types.ServerMessage) {
	for id, c := range r.clients {
		if c.playerID == "" {
			continue
		}
		if p := r.state.Players[c.playerID]; p != nil && p.TeamID == teamID {
			r.sendTo(id, msg)
		}
	}
}

func (r *Room) broadcastState() {
	r.broadcast(types.ServerMessage{Type: "state", State: r.state.Clone()})
}

func (r *Room) broadcastReveal() {
	idx := r.state.RevealIndex
	r.broadcast(types.ServerMessage{Type: "reveal", RevealIndex: &idx})
}

func (r *Room) broadcastTimer() {
	msg := types.ServerMessage{Type: "timer"}
	if r.state.TimerEnd != nil {
		ms := r.state.TimerEnd.UnixMilli()
		msg.TimerEnd = &ms
	}
	r.broadcast(msg)
}
