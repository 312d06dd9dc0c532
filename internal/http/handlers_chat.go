package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"finai/internal/chat"
	"finai/internal/log"
)

const (
	wsMaxMessageSize = 64 << 10
	wsIdleTimeout    = 10 * time.Minute
	wsWriteTimeout   = 10 * time.Second
)

func (s *Server) reply(r *http.Request, sessionID, message string) chat.Reply {
	reply := s.assistant.Reply(r.Context(), sessionID, sanitizeInput(message))
	if counter, ok := s.appMetrics.chatReplies[reply.Source]; ok {
		atomic.AddInt64(counter, 1)
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Chat reply",
		log.FieldSessionID, reply.SessionID,
		log.FieldSource, reply.Source,
		"category", reply.Category)
	return reply
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodePOST(w, r, &req) {
		return
	}
	NewJSONResponse().Body(s.reply(r, req.SessionID, req.Message)).Write(w)
}

// handleChatWebSocket serves the chat over a websocket. Each text frame is
// a chatRequest and is answered with one chat.Reply. The session is fixed
// by the session_id query parameter or the first reply and may be switched
// by a message that names another one.
func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentChat)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response.
		logger.WarnContext(r.Context(), "WebSocket upgrade failed", log.FieldError, err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessageSize)
	sessionID := r.URL.Query().Get("session_id")
	if sessionID != "" {
		sessionID = chat.SessionID(sessionID)
	}

	logger.InfoContext(r.Context(), "WebSocket chat connected", log.FieldSessionID, sessionID)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnContext(r.Context(), "WebSocket read failed", log.FieldError, err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msgBytes, &req); err != nil {
			if !s.sendWS(r, conn, errorBody{Error: "invalid message format"}) {
				return
			}
			continue
		}
		if req.SessionID != "" {
			sessionID = req.SessionID
		}

		reply := s.reply(r, sessionID, req.Message)
		sessionID = reply.SessionID
		if !s.sendWS(r, conn, reply) {
			return
		}
	}
}

func (s *Server) sendWS(r *http.Request, conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "WebSocket write failed", log.FieldError, err)
		return false
	}
	return true
}
