// internal/models/player.go
package models

import "github.com/google/uuid"

// PlayerStatus tracks what a player is currently doing at the room level.
type PlayerStatus string

const (
	StatusWaiting PlayerStatus = "waiting"
	StatusPeeking PlayerStatus = "peeking"
	StatusPlaying PlayerStatus = "playing"
)

// TurnPhase is the per-player turn state machine position. During the
// player_turn game phase at most one player holds mustDraw, hasDrawnCard
// or canPlay; any number may hold outOfTurn at once.
type TurnPhase string

const (
	TurnWaiting   TurnPhase = "waiting"
	TurnMustDraw  TurnPhase = "mustDraw"
	TurnHasDrawn  TurnPhase = "hasDrawnCard"
	TurnCanPlay   TurnPhase = "canPlay"
	TurnOutOfTurn TurnPhase = "outOfTurn"
	TurnRecallOpp TurnPhase = "recallOpportunity"
)

// Player is one seat in a round. ID is the session id for humans and a
// synthetic uuid string for comp players; downstream logic never cares
// which. Hands store card ids only; full card data is resolved through
// the round's original-deck table.
type Player struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Hand     []uuid.UUID `json:"hand"`

	// KnownCards records, per viewer, which of this player's hand cards
	// that viewer has seen in full. Keys are viewer player ids.
	KnownCards map[string]map[uuid.UUID]Card `json:"-"`

	// CollectionRank is the rank committed during initial peek; nil
	// until the peek completes.
	CollectionRank      *Rank  `json:"collection_rank,omitempty"`
	CollectionRankCards []Card `json:"collection_rank_cards,omitempty"`

	Status    PlayerStatus `json:"status"`
	IsHuman   bool         `json:"is_human"`
	IsActive  bool         `json:"is_active"`
	TurnPhase TurnPhase    `json:"turn_phase"`

	// DrawnCard holds the id of a drawn card awaiting play or replace.
	DrawnCard *uuid.UUID `json:"-"`
}

// HasCard reports whether the card id is in this player's hand, and at
// which index.
func (p *Player) HasCard(id uuid.UUID) (int, bool) {
	for i, cid := range p.Hand {
		if cid == id {
			return i, true
		}
	}
	return -1, false
}

// RemoveCard takes the card id out of the hand, preserving order.
func (p *Player) RemoveCard(id uuid.UUID) bool {
	idx, ok := p.HasCard(id)
	if !ok {
		return false
	}
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return true
}

// GrantKnowledge records that viewer has seen card in full while it sits
// in this player's hand.
func (p *Player) GrantKnowledge(viewerID string, card Card) {
	if p.KnownCards == nil {
		p.KnownCards = make(map[string]map[uuid.UUID]Card)
	}
	if p.KnownCards[viewerID] == nil {
		p.KnownCards[viewerID] = make(map[uuid.UUID]Card)
	}
	p.KnownCards[viewerID][card.ID] = card
}

// Knows reports whether viewer has full knowledge of the given card in
// this player's hand.
func (p *Player) Knows(viewerID string, cardID uuid.UUID) (Card, bool) {
	c, ok := p.KnownCards[viewerID][cardID]
	return c, ok
}

// ForgetCard drops every viewer's knowledge entry for a card that has
// left this player's hand.
func (p *Player) ForgetCard(cardID uuid.UUID) {
	for viewer := range p.KnownCards {
		delete(p.KnownCards[viewer], cardID)
	}
}

// CommittedCollection reports whether cardID is one of this player's
// collection-rank commitments.
func (p *Player) CommittedCollection(cardID uuid.UUID) bool {
	for _, c := range p.CollectionRankCards {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// CompletedInitialPeek reports whether this player has committed a
// collection rank.
func (p *Player) CompletedInitialPeek() bool {
	return p.CollectionRank != nil && len(p.CollectionRankCards) > 0
}
