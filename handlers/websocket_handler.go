package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/competition-manager/brackets"
	"github.com/Dosada05/competition-manager/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub                *brackets.Hub
	competitionService services.CompetitionService
	upgrader           websocket.Upgrader
	logger             *slog.Logger
}

// NewWebSocketHandler accepts connections from the given origins; "*" allows any.
func NewWebSocketHandler(hub *brackets.Hub, cs services.CompetitionService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:                hub,
		competitionService: cs,
		logger:             logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs обрабатывает WebSocket подключения к /ws/competitions/{competitionID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// комнату создаём только для существующего соревнования
	if _, err := h.competitionService.Get(r.Context(), competitionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("websocket upgrade failed",
			slog.String("competition_id", competitionID),
			slog.Any("error", err),
		)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.CompetitionRoom(competitionID),
	}
	if !h.hub.Join(client) {
		h.logger.Warn("websocket hub stopped, closing connection",
			slog.String("competition_id", competitionID),
		)
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client connected",
		slog.String("competition_id", competitionID),
		slog.String("room", client.Room),
	)
}
