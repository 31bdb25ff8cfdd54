// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sil-vella/recall/internal/engine"
)

const (
	writeTimeout = 3 * time.Second
	outboxSize   = 32
)

// GameServer holds the live WebSocket connections keyed by session id
// and bridges the engine's SendFunc onto them. Each connection gets a
// dedicated writer goroutine fed from a buffered outbox, so messages to
// one session are delivered in the order the engine emitted them and a
// slow client never blocks a room loop.
type GameServer struct {
	Registry *engine.Registry
	Logger   *logrus.Logger

	mu    sync.RWMutex
	conns map[string]*playerConn
}

// gameConn is the slice of *websocket.Conn the server touches, split
// out so tests can substitute a recording stub.
type gameConn interface {
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Close(code websocket.StatusCode, reason string) error
}

type playerConn struct {
	c      gameConn
	outbox chan []byte
	done   chan struct{}
}

func NewGameServer(logger *logrus.Logger) *GameServer {
	return &GameServer{
		Logger: logger,
		conns:  make(map[string]*playerConn),
	}
}

// Send implements engine.SendFunc. Messages for sessions that are not
// connected, or whose outbox is full, are dropped; the client resyncs
// with get_game_state on reconnect.
func (s *GameServer) Send(playerID string, msg any) {
	s.mu.RLock()
	pc := s.conns[playerID]
	s.mu.RUnlock()
	if pc == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.Logger.Errorf("failed to marshal outbound message for %s: %v", playerID, err)
		return
	}
	select {
	case pc.outbox <- data:
	case <-pc.done:
	default:
		s.Logger.Warnf("outbox full for session %s, dropping message", playerID)
	}
}

// register installs a connection for a session, replacing any previous
// one. The old connection's writer drains and exits.
func (s *GameServer) register(sessionID string, c gameConn) *playerConn {
	pc := &playerConn{
		c:      c,
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
	s.mu.Lock()
	old := s.conns[sessionID]
	s.conns[sessionID] = pc
	s.mu.Unlock()
	if old != nil {
		close(old.done)
		old.c.Close(websocket.StatusPolicyViolation, "session reconnected elsewhere")
	}
	go pc.writeLoop(s.Logger, sessionID)
	return pc
}

// unregister removes the session's connection if it is still the one
// that was registered; a replacement connection stays untouched.
func (s *GameServer) unregister(sessionID string, pc *playerConn) {
	s.mu.Lock()
	if s.conns[sessionID] == pc {
		delete(s.conns, sessionID)
	}
	s.mu.Unlock()
	select {
	case <-pc.done:
	default:
		close(pc.done)
	}
}

func (pc *playerConn) writeLoop(logger *logrus.Logger, sessionID string) {
	for {
		select {
		case data := <-pc.outbox:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := pc.c.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to session %s: %v", sessionID, err)
				return
			}
		case <-pc.done:
			return
		}
	}
}
