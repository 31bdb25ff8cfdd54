// internal/engine/events.go
package engine

import (
	"context"
	"time"

	"github.com/sil-vella/recall/internal/models"
)

// Reply is the direct acknowledgement or error sent to the originator
// of an action. Exactly one Reply goes out per inbound action.
type Reply struct {
	Event     string `json:"event"`
	RoomID    string `json:"room_id"`
	Code      Code   `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// StateUpdate is the room broadcast envelope. GameState is projected
// per recipient before sending; no two recipients see the same bytes.
type StateUpdate struct {
	Event     string          `json:"event"`
	GameID    string          `json:"game_id"`
	GameState *ProjectedState `json:"game_state"`
	OwnerID   string          `json:"owner_id"`
	Timestamp int64           `json:"timestamp"`
}

// CardDisclosure carries one card reveal. The id-only form goes to the
// room at large, the full form only to the privileged viewer, in that
// order.
type CardDisclosure struct {
	Event     string        `json:"event"`
	GameID    string        `json:"game_id"`
	HolderID  string        `json:"holder_id"`
	Card      ProjectedCard `json:"card"`
	Timestamp int64         `json:"timestamp"`
}

const (
	eventStateUpdated  = "game_state_updated"
	eventCardDisclosed = "card_disclosed"
)

func ackReply(name, roomID string) Reply {
	return Reply{
		Event:     name + "_acknowledged",
		RoomID:    roomID,
		Timestamp: time.Now().UnixMilli(),
	}
}

func errorReply(name, roomID string, err *Error) Reply {
	return Reply{
		Event:     name + "_error",
		RoomID:    roomID,
		Code:      err.Code,
		Message:   err.Message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// SendFunc delivers one outbound message to one session. The transport
// behind it is an external collaborator; the engine only assumes
// per-connection ordering.
type SendFunc func(playerID string, msg any)

// RoomDirectory is the read-only external room membership/metadata
// service.
type RoomDirectory interface {
	GetRoomForSession(ctx context.Context, sessionID string) (string, error)
	GetRoomOwner(ctx context.Context, roomID string) (string, error)
	GetRoomInfo(ctx context.Context, roomID string) (models.RoomInfo, error)
}

// CompPlayerSupply returns up to n synthetic player records. Failure or
// short supply is recovered locally and never surfaces to clients.
type CompPlayerSupply interface {
	FetchCompPlayers(ctx context.Context, n int) ([]models.CompPlayer, error)
}

// JournalRecord is one match action pushed to the external historian.
type JournalRecord struct {
	GameID      string         `json:"game_id"`
	ActionIndex int            `json:"action_index"`
	ActorID     string         `json:"actor_id"`
	ActionType  string         `json:"action_type"`
	Payload     map[string]any `json:"payload"`
	Timestamp   int64          `json:"timestamp"`
}

// JournalFunc publishes a record to the historian queue. Implementations
// must tolerate being called from the room loop and fail quietly.
type JournalFunc func(ctx context.Context, rec JournalRecord) error
