package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/prediction-pool/live"
	"github.com/Dosada05/prediction-pool/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts connections from the given origins only.
// An empty list allows any origin.
func NewWebSocketHandler(hub *live.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		logger: logger,
	}
}

// ServeLeaderboard подписывает клиента на обновления таблицы лидеров.
func (h *WebSocketHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP ошибку клиенту
		h.logger.WarnContext(r.Context(), "Failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, services.LeaderboardRoom)
	if !h.hub.Join(client) {
		h.logger.WarnContext(r.Context(), "Live hub stopped, closing websocket connection")
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
