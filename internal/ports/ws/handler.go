package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"chessarena/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Handler serves the token endpoint, the websocket endpoint and a health probe.
type Handler struct {
	room     *Room
	issuer   *TokenIssuer
	codec    protocol.Codec
	logger   runtime.Logger
	upgrader websocket.Upgrader
}

func NewHandler(room *Room, issuer *TokenIssuer, codec protocol.Codec, logger runtime.Logger) *Handler {
	return &Handler{
		room:   room,
		issuer: issuer,
		codec:  codec,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients are served from other origins during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the mux for the standalone server.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", h.handleToken)
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	token, id, err := h.issuer.Issue(r.URL.Query().Get("name"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNameTooLong) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TokenResponse{Token: token, UserID: id.UserID})
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id, err := h.issuer.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed for %s: %v", id.UserID, err)
		return
	}

	messageType := websocket.TextMessage
	if h.codec.Name() == "msgpack" {
		messageType = websocket.BinaryMessage
	}
	session := newSession(conn, messageType)

	if err := h.room.Join(r.Context(), id.UserID, session); err != nil {
		h.logger.Info("join rejected for %s: %v", id.UserID, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), deadline())
		_ = session.Close()
		return
	}
	defer func() {
		h.room.Leave(id.UserID, session)
		_ = session.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		op, body, err := h.codec.DecodeEnvelope(payload)
		if err != nil {
			h.logger.Debug("discarding malformed message from %s: %v", id.UserID, err)
			continue
		}
		h.room.Submit(id.UserID, op, body)
	}
}
