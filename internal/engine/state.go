// internal/engine/state.go
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/models"
)

// Phase is the room-level match phase.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseInitialPeek Phase = "initial_peek"
	PhasePlayerTurn  Phase = "player_turn"
	PhaseRecall      Phase = "recall"
	PhaseFinished    Phase = "finished"
)

// PendingPower tracks an armed special power awaiting its targets.
type PendingPower struct {
	PlayerID string
	Power    models.Power
	CardID   uuid.UUID
}

// GameState is the canonical state of one match. It is owned exclusively
// by its GameRound's processing loop; nothing outside that loop ever
// mutates it, and everything leaving the loop is a projection.
type GameState struct {
	RoomID  string
	Players []*models.Player // turn order = list order

	// OriginalDeck is the immutable id -> full card table built once at
	// match start; hands, piles and events carry ids only.
	OriginalDeck map[uuid.UUID]models.Card
	DrawPile     []uuid.UUID
	DiscardPile  []uuid.UUID

	Phase       Phase
	TurnNumber  int
	RoundNumber int
	CurrentIdx  int

	StakePerPlayer int
	PotValue       int
	TurnTimeLimit  time.Duration

	RecallCallerID string
	Pending        *PendingPower

	// raceClaimedFor is the discard-top card id already won by an
	// out-of-turn play; later contenders for the same top lose the race.
	raceClaimedFor uuid.UUID

	// Final results, populated when Phase reaches finished.
	Scores  map[string]int
	Winners []string
}

func newGameState(roomID string) *GameState {
	return &GameState{
		RoomID: roomID,
		Phase:  PhaseWaiting,
	}
}

// CardByID resolves an id to full card data through the original deck.
func (s *GameState) CardByID(id uuid.UUID) (models.Card, bool) {
	c, ok := s.OriginalDeck[id]
	return c, ok
}

// Player finds a seat by player id.
func (s *GameState) Player(id string) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the turn holder, or nil outside player turns.
func (s *GameState) CurrentPlayer() *models.Player {
	if len(s.Players) == 0 || s.CurrentIdx < 0 || s.CurrentIdx >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentIdx]
}

// TopDiscard returns the face-up discard top, if any.
func (s *GameState) TopDiscard() (models.Card, bool) {
	if len(s.DiscardPile) == 0 {
		return models.Card{}, false
	}
	return s.CardByID(s.DiscardPile[len(s.DiscardPile)-1])
}

// pushDiscard puts a card id on top of the discard pile and reopens the
// out-of-turn race for the new top.
func (s *GameState) pushDiscard(id uuid.UUID) {
	s.DiscardPile = append(s.DiscardPile, id)
	s.raceClaimedFor = uuid.Nil
}

// drawFromPile pops the top of the draw pile.
func (s *GameState) drawFromPile() (uuid.UUID, bool) {
	if len(s.DrawPile) == 0 {
		return uuid.Nil, false
	}
	id := s.DrawPile[0]
	s.DrawPile = s.DrawPile[1:]
	return id, true
}

// popDiscard removes and returns the discard top.
func (s *GameState) popDiscard() (uuid.UUID, bool) {
	if len(s.DiscardPile) == 0 {
		return uuid.Nil, false
	}
	id := s.DiscardPile[len(s.DiscardPile)-1]
	s.DiscardPile = s.DiscardPile[:len(s.DiscardPile)-1]
	return id, true
}

// activeCount reports how many seats are active.
func (s *GameState) activeCount() int {
	n := 0
	for _, p := range s.Players {
		if p.IsActive {
			n++
		}
	}
	return n
}

// allPlayersCompletedInitialPeek reports whether every player has a
// committed collection rank.
func (s *GameState) allPlayersCompletedInitialPeek() bool {
	for _, p := range s.Players {
		if !p.CompletedInitialPeek() {
			return false
		}
	}
	return len(s.Players) > 0
}

// cardLocations returns every card id currently reachable from the
// draw pile, discard pile, or any hand. Tests use it to check that the
// multiset always equals the original deck's id set.
func (s *GameState) cardLocations() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.OriginalDeck))
	ids = append(ids, s.DrawPile...)
	ids = append(ids, s.DiscardPile...)
	for _, p := range s.Players {
		ids = append(ids, p.Hand...)
	}
	return ids
}
