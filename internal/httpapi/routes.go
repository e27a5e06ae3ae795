package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blockparty/build-battle-backend/internal/hub"
	"github.com/blockparty/build-battle-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, bridgeSecret string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h))

	// server-to-server callback from the AI collaborator
	r.Options("/room/{code}", BridgePreflight)
	r.Post("/room/{code}", AIBridge(h, bridgeSecret, log))

	return r
}
