// internal/engine/registry.go
package engine

import (
	"context"
	"sync"
)

// Registry owns the live GameRound instances, one per room. It is an
// explicit object handed to the transport layer; callers construct it
// with their collaborators and there is exactly one per process by
// convention, not by package state.
type Registry struct {
	mu     sync.Mutex
	deps   Deps
	rounds map[string]*GameRound
}

func NewRegistry(d Deps) *Registry {
	return &Registry{
		deps:   d,
		rounds: make(map[string]*GameRound),
	}
}

// GetOrCreate returns the room's round, spawning its processing loop on
// first use.
func (r *Registry) GetOrCreate(roomID string) *GameRound {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.rounds[roomID]; ok {
		return g
	}
	g := newGameRound(roomID, r.deps)
	r.rounds[roomID] = g
	return g
}

// Get returns the room's round without creating one.
func (r *Registry) Get(roomID string) (*GameRound, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.rounds[roomID]
	return g, ok
}

// Remove retires a room's round and drops it from the registry.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	g, ok := r.rounds[roomID]
	delete(r.rounds, roomID)
	r.mu.Unlock()
	if ok {
		g.Close()
	}
}

// CloseAll retires every round, for process shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	rounds := r.rounds
	r.rounds = make(map[string]*GameRound)
	r.mu.Unlock()
	for _, g := range rounds {
		g.Close()
	}
}

// Handle is the single entry point for inbound session events. It
// parses the event, resolves the session's room through the directory,
// and queues the action on that room's loop. Parse and lookup failures
// are answered directly; everything else is answered from the loop.
func (r *Registry) Handle(ctx context.Context, sessionID, eventName string, payload map[string]any) {
	act, perr := ParseAction(eventName, payload)
	if perr != nil {
		r.deps.Send(sessionID, errorReply(eventName, "", perr))
		return
	}

	roomID, err := r.deps.Rooms.GetRoomForSession(ctx, sessionID)
	if err != nil {
		r.deps.Log.WithField("session", sessionID).
			Warnf("room lookup failed: %v", err)
		r.deps.Send(sessionID, errorReply(eventName, "", &Error{
			Code:    CodeUpstream,
			Message: "room directory unavailable",
		}))
		return
	}
	if roomID == "" {
		r.deps.Send(sessionID, errorReply(eventName, "", errNotFound(
			"session %s is not in any room", sessionID)))
		return
	}

	r.GetOrCreate(roomID).Dispatch(ctx, sessionID, act)
}
