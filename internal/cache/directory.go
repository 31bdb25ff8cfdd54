// internal/cache/directory.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sil-vella/recall/internal/engine"
	"github.com/sil-vella/recall/internal/models"
)

// Directory is the writable room membership service. The engine only
// sees the read half (engine.RoomDirectory); the HTTP room endpoints
// use the write half to seed memberships.
type Directory interface {
	engine.RoomDirectory
	RegisterSession(ctx context.Context, sessionID, roomID string) error
	SetRoomOwner(ctx context.Context, roomID, ownerID string) error
	SetRoomInfo(ctx context.Context, roomID string, info models.RoomInfo) error
}

// directoryTTL bounds how long room records outlive their last write.
// Finished rooms age out of Redis on their own.
const directoryTTL = 24 * time.Hour

const (
	sessionRoomKey = "recall:session_room:%s"
	roomOwnerKey   = "recall:room_owner:%s"
	roomInfoKey    = "recall:room_info:%s"
)

// RedisDirectory stores room membership and metadata in Redis, shared
// with whatever service admits sessions into rooms.
type RedisDirectory struct {
	rdb *redis.Client
}

func NewRedisDirectory(rdb *redis.Client) *RedisDirectory {
	return &RedisDirectory{rdb: rdb}
}

func (d *RedisDirectory) GetRoomForSession(ctx context.Context, sessionID string) (string, error) {
	roomID, err := d.rdb.Get(ctx, fmt.Sprintf(sessionRoomKey, sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return roomID, err
}

func (d *RedisDirectory) GetRoomOwner(ctx context.Context, roomID string) (string, error) {
	owner, err := d.rdb.Get(ctx, fmt.Sprintf(roomOwnerKey, roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return owner, err
}

func (d *RedisDirectory) GetRoomInfo(ctx context.Context, roomID string) (models.RoomInfo, error) {
	var info models.RoomInfo
	raw, err := d.rdb.Get(ctx, fmt.Sprintf(roomInfoKey, roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return info, fmt.Errorf("corrupt room info for %s: %w", roomID, err)
	}
	return info, nil
}

func (d *RedisDirectory) RegisterSession(ctx context.Context, sessionID, roomID string) error {
	return d.rdb.Set(ctx, fmt.Sprintf(sessionRoomKey, sessionID), roomID, directoryTTL).Err()
}

func (d *RedisDirectory) SetRoomOwner(ctx context.Context, roomID, ownerID string) error {
	return d.rdb.Set(ctx, fmt.Sprintf(roomOwnerKey, roomID), ownerID, directoryTTL).Err()
}

func (d *RedisDirectory) SetRoomInfo(ctx context.Context, roomID string, info models.RoomInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return d.rdb.Set(ctx, fmt.Sprintf(roomInfoKey, roomID), data, directoryTTL).Err()
}
