// internal/cache/memory_test.go
package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sil-vella/recall/internal/models"
)

func TestMemoryDirectoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	// Unknown keys answer empty, not errors.
	room, err := dir.GetRoomForSession(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, room)

	require.NoError(t, dir.RegisterSession(ctx, "alice", "room-1"))
	require.NoError(t, dir.SetRoomOwner(ctx, "room-1", "alice"))
	require.NoError(t, dir.SetRoomInfo(ctx, "room-1", models.RoomInfo{
		MinPlayers:    2,
		MaxPlayers:    4,
		TurnTimeLimit: 30,
	}))

	room, err = dir.GetRoomForSession(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "room-1", room)

	owner, err := dir.GetRoomOwner(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)

	info, err := dir.GetRoomInfo(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 4, info.MaxPlayers)
	assert.Equal(t, 30, info.TurnTimeLimit)
}

func TestMemoryDirectoryReassignsSession(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	require.NoError(t, dir.RegisterSession(ctx, "alice", "room-1"))
	require.NoError(t, dir.RegisterSession(ctx, "alice", "room-2"))

	room, err := dir.GetRoomForSession(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "room-2", room)
}
