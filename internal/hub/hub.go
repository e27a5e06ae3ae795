// Package hub owns the code → room map. Rooms are created lazily on
// first address and reclaimed when their last connection leaves; the
// hub itself is an actor so the map never needs a lock.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/blockparty/build-battle-backend/internal/ratelimit"
	"github.com/blockparty/build-battle-backend/internal/room"
	"github.com/blockparty/build-battle-backend/internal/targets"
)

type HubMsg interface{ isHubMsg() }

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type EnsureRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Deps struct {
	RoomCfg room.Config
	Targets *targets.Library
	Limiter *ratelimit.Table
	Log     *zap.Logger
}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	deps   Deps
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, deps Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		deps:   deps,
		log:    deps.Log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case EnsureRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				rm := h.newRoom(msg.Code)
				h.rooms[msg.Code] = rm
				msg.Reply <- rm

			case RemoveRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					rm.Inbox() <- room.Shutdown{}
					delete(h.rooms, msg.Code)
					if h.deps.Limiter != nil {
						h.deps.Limiter.Forget(msg.Code)
					}
					h.log.Info("room reclaimed", zap.String("room", msg.Code))
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) newRoom(code string) *room.Room {
	h.log.Info("room created", zap.String("room", code))
	return room.NewRoom(h.ctx, code, room.Deps{
		Cfg:     h.deps.RoomCfg,
		Targets: h.deps.Targets,
		Limiter: h.deps.Limiter,
		Log:     h.deps.Log,
		OnEmpty: func(c string) {
			// called from the room loop; reclamation goes back through
			// the hub inbox so the map stays single-writer
			select {
			case h.inbox <- RemoveRoom{Code: c}:
			case <-h.ctx.Done():
			}
		},
	})
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}
