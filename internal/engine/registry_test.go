// internal/engine/registry_test.go
package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sil-vella/recall/internal/models"
)

// mapRooms maps sessions to rooms explicitly and can be forced to fail.
type mapRooms struct {
	sessions map[string]string
	fail     bool
}

func (m *mapRooms) GetRoomForSession(_ context.Context, sessionID string) (string, error) {
	if m.fail {
		return "", errors.New("directory down")
	}
	return m.sessions[sessionID], nil
}

func (m *mapRooms) GetRoomOwner(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (m *mapRooms) GetRoomInfo(_ context.Context, _ string) (models.RoomInfo, error) {
	return models.RoomInfo{}, nil
}

func newTestRegistry(rooms RoomDirectory, sender *captureSender) *Registry {
	return NewRegistry(Deps{
		Log:   logrus.New(),
		Rooms: rooms,
		Send:  sender.send,
	})
}

func waitForReply(t *testing.T, sender *captureSender, playerID, event string) Reply {
	t.Helper()
	var got Reply
	require.Eventually(t, func() bool {
		for _, m := range sender.sequence() {
			if r, ok := m.msg.(Reply); ok && m.playerID == playerID && r.Event == event {
				got = r
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond, "no %s reply for %s", event, playerID)
	return got
}

func TestRegistryRejectsUnknownEvent(t *testing.T) {
	sender := newCaptureSender()
	r := newTestRegistry(&mapRooms{sessions: map[string]string{}}, sender)
	t.Cleanup(r.CloseAll)

	r.Handle(context.Background(), "alice", "do_a_barrel_roll", nil)

	reply := waitForReply(t, sender, "alice", "do_a_barrel_roll_error")
	assert.Equal(t, CodeValidation, reply.Code)
}

func TestRegistryRejectsUnmappedSession(t *testing.T) {
	sender := newCaptureSender()
	r := newTestRegistry(&mapRooms{sessions: map[string]string{}}, sender)
	t.Cleanup(r.CloseAll)

	r.Handle(context.Background(), "alice", "join_game", nil)

	reply := waitForReply(t, sender, "alice", "join_game_error")
	assert.Equal(t, CodeNotFound, reply.Code)
}

func TestRegistryReportsDirectoryOutage(t *testing.T) {
	sender := newCaptureSender()
	r := newTestRegistry(&mapRooms{fail: true}, sender)
	t.Cleanup(r.CloseAll)

	r.Handle(context.Background(), "alice", "join_game", nil)

	reply := waitForReply(t, sender, "alice", "join_game_error")
	assert.Equal(t, CodeUpstream, reply.Code)
}

func TestRegistryRoutesToRoomLoop(t *testing.T) {
	sender := newCaptureSender()
	rooms := &mapRooms{sessions: map[string]string{
		"alice": "room-7",
		"bob":   "room-7",
	}}
	r := newTestRegistry(rooms, sender)
	t.Cleanup(r.CloseAll)

	r.Handle(context.Background(), "alice", "join_game", nil)
	waitForReply(t, sender, "alice", "join_game_acknowledged")

	r.Handle(context.Background(), "bob", "join_game", nil)
	waitForReply(t, sender, "bob", "join_game_acknowledged")

	// Both sessions landed in the same round.
	g, ok := r.Get("room-7")
	require.True(t, ok)
	runOn(t, g, func() {
		assert.Len(t, g.state.Players, 2)
	})
}

func TestRegistryGetOrCreateIsStable(t *testing.T) {
	sender := newCaptureSender()
	r := newTestRegistry(&mapRooms{}, sender)
	t.Cleanup(r.CloseAll)

	a := r.GetOrCreate("room-1")
	b := r.GetOrCreate("room-1")
	assert.Same(t, a, b)

	c := r.GetOrCreate("room-2")
	assert.NotSame(t, a, c)
}

func TestRegistryRemoveRetiresRound(t *testing.T) {
	sender := newCaptureSender()
	r := newTestRegistry(&mapRooms{}, sender)
	t.Cleanup(r.CloseAll)

	g := r.GetOrCreate("room-1")
	r.Remove("room-1")

	_, ok := r.Get("room-1")
	assert.False(t, ok)

	// Commands posted after Close are dropped rather than executed.
	executed := make(chan struct{})
	g.post(func() { close(executed) })
	select {
	case <-executed:
		t.Fatal("closed round executed a command")
	case <-time.After(50 * time.Millisecond):
	}
}
