package httpapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blockparty/build-battle-backend/internal/hub"
	"github.com/blockparty/build-battle-backend/internal/room"
	"github.com/blockparty/build-battle-backend/internal/types"
)

// bridgeSecretHeader carries the shared secret on collaborator
// callbacks.
const bridgeSecretHeader = "X-Bridge-Secret"

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateRoom(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *room.Room, 1)
			h.Inbox() <- hub.GetRoom{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			log.Warn("room code collision, regenerating", zap.String("code", c))
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Code: code, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func BridgePreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

// AIBridge accepts the collaborator's parsed build actions and funnels
// them into the room's inbox. Everything that can go wrong (bad
// secret, unknown room, malformed body) fails before any state is
// touched.
func AIBridge(h *hub.Hub, secret string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)

		if secret == "" {
			http.Error(w, "bridge disabled", http.StatusServiceUnavailable)
			return
		}
		got := r.Header.Get(bridgeSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req types.AIBridgeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if req.Type != "aiResponse" || req.TeamID == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		code := chi.URLParam(r, "code")
		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		rm.Inbox() <- room.AIResponse{Payload: req}
		log.Debug("bridge response accepted",
			zap.String("room", code),
			zap.String("team", req.TeamID),
			zap.Int("actions", len(req.Actions)))
		w.WriteHeader(http.StatusAccepted)
	}
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, "+bridgeSecretHeader)
}
