// internal/cache/memory.go
package cache

import (
	"context"
	"sync"

	"github.com/sil-vella/recall/internal/models"
)

// MemoryDirectory is the single-process fallback used when Redis is not
// configured. Same contract as RedisDirectory, no persistence.
type MemoryDirectory struct {
	mu       sync.RWMutex
	sessions map[string]string
	owners   map[string]string
	infos    map[string]models.RoomInfo
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		sessions: make(map[string]string),
		owners:   make(map[string]string),
		infos:    make(map[string]models.RoomInfo),
	}
}

func (d *MemoryDirectory) GetRoomForSession(_ context.Context, sessionID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sessions[sessionID], nil
}

func (d *MemoryDirectory) GetRoomOwner(_ context.Context, roomID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.owners[roomID], nil
}

func (d *MemoryDirectory) GetRoomInfo(_ context.Context, roomID string) (models.RoomInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.infos[roomID], nil
}

func (d *MemoryDirectory) RegisterSession(_ context.Context, sessionID, roomID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[sessionID] = roomID
	return nil
}

func (d *MemoryDirectory) SetRoomOwner(_ context.Context, roomID, ownerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.owners[roomID] = ownerID
	return nil
}

func (d *MemoryDirectory) SetRoomInfo(_ context.Context, roomID string, info models.RoomInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.infos[roomID] = info
	return nil
}
