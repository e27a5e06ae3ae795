package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/blockparty/build-battle-backend/internal/hub"
	"github.com/blockparty/build-battle-backend/internal/room"
	"github.com/blockparty/build-battle-backend/internal/types"
)

// Handler upgrades the connection and splits it into the usual pair:
// a writer goroutine draining the client's outbox and a reader loop
// feeding the room inbox. Rooms are created lazily on first address.
func Handler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 32)
		clientID := randID(8)

		rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop. Rounds run for minutes, so the read deadline is
		// generous; the coordinator notices departures via the close.
		for {
			ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// room.Leave in defer handles cleanup either way
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				// unparseable input is dropped; the connection lives on
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","message":"bad json"}`))
				continue
			}
			if cm.Type == "" {
				continue
			}

			rm.Inbox() <- room.FromClient{ClientID: clientID, Msg: cm}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
