// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sil-vella/recall/internal/middleware"
)

// inboundMessage is the envelope every client frame uses: an event name
// plus an event-specific payload object.
type inboundMessage struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// GameWSHandler upgrades the HTTP connection for one session and runs
// its read loop. The session id arrives in the path, /game/ws/{session_id};
// session issuance itself belongs to the platform's auth service and is
// not re-verified here.
func GameWSHandler(logger *logrus.Logger, srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimPrefix(r.URL.Path, "/game/ws/")
		if sessionID == "" || strings.Contains(sessionID, "/") {
			http.Error(w, "missing session_id in path (/game/ws/{session_id})", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"recall"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for session %s: %v", sessionID, err)
			return
		}
		defer c.CloseNow()

		if c.Subprotocol() != "recall" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'recall' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		pc := srv.register(sessionID, c)
		defer srv.unregister(sessionID, pc)

		err = readGameMessages(r.Context(), c, srv, sessionID, logger)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// readGameMessages consumes client frames until the connection drops,
// routing each one into the registry. Malformed frames are answered
// directly and do not kill the connection.
func readGameMessages(ctx context.Context, c *websocket.Conn, srv *GameServer, sessionID string, logger *logrus.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("malformed frame from session %s: %v", sessionID, err)
			srv.Send(sessionID, map[string]any{
				"event":   "message_error",
				"code":    "validation",
				"message": "frame must be a JSON object with an event field",
			})
			continue
		}
		if msg.Event == "" {
			srv.Send(sessionID, map[string]any{
				"event":   "message_error",
				"code":    "validation",
				"message": "missing event name",
			})
			continue
		}

		srv.Registry.Handle(ctx, sessionID, msg.Event, msg.Payload)
	}
}
