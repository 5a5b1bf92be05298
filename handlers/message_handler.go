package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"buildlink-backend/services"
	"buildlink-backend/ws"
)

type MessageHandler struct {
	svc     *services.MessageService
	authSvc *services.AuthService
	gateway *ws.Gateway
}

func NewMessageHandler(s *services.MessageService, a *services.AuthService, g *ws.Gateway) *MessageHandler {
	return &MessageHandler{svc: s, authSvc: a, gateway: g}
}

// Messages is the method-dispatched /api/messages endpoint:
// POST sends, GET fetches history with a peer, DELETE removes own messages.
func (h *MessageHandler) Messages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.send(w, r)
	case http.MethodGet:
		h.history(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		respondWithError(w, "Method not allowed", "Use GET, POST or DELETE", http.StatusMethodNotAllowed)
	}
}

func (h *MessageHandler) send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverID int    `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}

	// sender identity always comes from the token, never the body
	msg, err := h.svc.Send(callerID(r), req.ReceiverID, req.Content)
	if err != nil {
		respondWithServiceError(w, "Send failed", err)
		return
	}
	respondWithSuccess(w, msg)
}

func (h *MessageHandler) history(w http.ResponseWriter, r *http.Request) {
	peerID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil || peerID <= 0 {
		respondWithError(w, "Invalid parameter", "userId query parameter is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	msgs, err := h.svc.History(callerID(r), peerID, limit)
	if err != nil {
		respondWithServiceError(w, "Failed to fetch messages", err)
		return
	}
	respondWithSuccess(w, msgs)
}

func (h *MessageHandler) delete(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || messageID <= 0 {
		respondWithError(w, "Invalid parameter", "id query parameter is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(messageID, callerID(r)); err != nil {
		respondWithServiceError(w, "Delete failed", err)
		return
	}
	respondWithSuccess(w, map[string]string{"message": "Message deleted successfully"})
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, "Method not allowed", "Use GET method", http.StatusMethodNotAllowed)
		return
	}

	conversations, err := h.svc.Conversations(callerID(r))
	if err != nil {
		respondWithError(w, "Internal error", "Failed to list conversations", http.StatusInternalServerError)
		return
	}
	respondWithSuccess(w, conversations)
}

// WS upgrades a websocket connection. Browsers cannot set headers on
// upgrade requests, so the token travels as a query parameter.
func (h *MessageHandler) WS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondWithError(w, "Missing parameter", "token query parameter is required", http.StatusBadRequest)
		return
	}

	uid, _, _, err := h.authSvc.ParseToken(token)
	if err != nil {
		log.Printf("websocket connection rejected: invalid token")
		respondWithError(w, "Unauthorized", "Invalid token", http.StatusUnauthorized)
		return
	}

	h.gateway.ServeWS(w, r, uid)
}
