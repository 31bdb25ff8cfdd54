// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sil-vella/recall/internal/cache"
	"github.com/sil-vella/recall/internal/models"
)

type createRoomRequest struct {
	OwnerSessionID string `json:"owner_session_id"`
	MinPlayers     int    `json:"min_players"`
	MaxPlayers     int    `json:"max_players"`
	AutoStart      bool   `json:"auto_start"`
	TurnTimeLimit  int    `json:"turn_time_limit"`
}

type joinRoomRequest struct {
	SessionID string `json:"session_id"`
	RoomID    string `json:"room_id"`
}

// CreateRoomHandler seeds a new room in the directory and admits the
// owner's session into it.
func CreateRoomHandler(logger *logrus.Logger, dir cache.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.OwnerSessionID == "" {
			http.Error(w, "owner_session_id is required", http.StatusBadRequest)
			return
		}

		roomID := uuid.NewString()
		info := models.RoomInfo{
			MinPlayers:    req.MinPlayers,
			MaxPlayers:    req.MaxPlayers,
			AutoStart:     req.AutoStart,
			TurnTimeLimit: req.TurnTimeLimit,
		}
		ctx := r.Context()
		if err := dir.SetRoomInfo(ctx, roomID, info); err != nil {
			logger.Errorf("failed to store room info: %v", err)
			http.Error(w, "room directory unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := dir.SetRoomOwner(ctx, roomID, req.OwnerSessionID); err != nil {
			logger.Errorf("failed to store room owner: %v", err)
			http.Error(w, "room directory unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := dir.RegisterSession(ctx, req.OwnerSessionID, roomID); err != nil {
			logger.Errorf("failed to register owner session: %v", err)
			http.Error(w, "room directory unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"room_id": roomID})
	}
}

// JoinRoomHandler admits a session into an existing room.
func JoinRoomHandler(logger *logrus.Logger, dir cache.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req joinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.SessionID == "" || req.RoomID == "" {
			http.Error(w, "session_id and room_id are required", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		owner, err := dir.GetRoomOwner(ctx, req.RoomID)
		if err != nil {
			logger.Errorf("failed to look up room %s: %v", req.RoomID, err)
			http.Error(w, "room directory unavailable", http.StatusServiceUnavailable)
			return
		}
		if owner == "" {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		if err := dir.RegisterSession(ctx, req.SessionID, req.RoomID); err != nil {
			logger.Errorf("failed to register session: %v", err)
			http.Error(w, "room directory unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"room_id": req.RoomID})
	}
}
