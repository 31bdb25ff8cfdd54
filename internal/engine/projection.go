// internal/engine/projection.go
package engine

import (
	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/models"
)

// ProjectedCard is a card as some viewer is allowed to see it. Known is
// false for the id-only placeholder form.
type ProjectedCard struct {
	ID    uuid.UUID    `json:"id"`
	Known bool         `json:"known"`
	Rank  models.Rank  `json:"rank,omitempty"`
	Suit  models.Suit  `json:"suit,omitempty"`
	Value int          `json:"value,omitempty"`
	Power models.Power `json:"power,omitempty"`
}

func idOnlyCard(id uuid.UUID) ProjectedCard {
	return ProjectedCard{ID: id}
}

func fullCard(c models.Card) ProjectedCard {
	return ProjectedCard{
		ID:    c.ID,
		Known: true,
		Rank:  c.Rank,
		Suit:  c.Suit,
		Value: c.Value,
		Power: c.Power,
	}
}

// ProjectedPlayer is one seat from a particular viewer's perspective.
type ProjectedPlayer struct {
	PlayerID  string              `json:"player_id"`
	Username  string              `json:"username"`
	Hand      []ProjectedCard     `json:"hand"`
	Status    models.PlayerStatus `json:"status"`
	TurnPhase models.TurnPhase    `json:"turn_phase"`
	IsHuman   bool                `json:"is_human"`
	IsActive  bool                `json:"is_active"`

	// Collection rank data is visible to its owner only.
	CollectionRank      *models.Rank    `json:"collection_rank,omitempty"`
	CollectionRankCards []ProjectedCard `json:"collection_rank_cards,omitempty"`

	// DrawnCard is full for the drawer, id-only for everyone else.
	DrawnCard *ProjectedCard `json:"drawn_card,omitempty"`
}

// ProjectedState is a complete per-viewer snapshot. The discard pile is
// face-up and therefore fully visible; the draw pile is a count only.
type ProjectedState struct {
	GameID          string            `json:"game_id"`
	Phase           Phase             `json:"phase"`
	TurnNumber      int               `json:"turn_number"`
	RoundNumber     int               `json:"round_number"`
	CurrentPlayerID string            `json:"current_player_id,omitempty"`
	DrawPileSize    int               `json:"draw_pile_size"`
	DiscardPile     []ProjectedCard   `json:"discard_pile"`
	Players         []ProjectedPlayer `json:"players"`
	PotValue        int               `json:"pot_value"`
	TurnTimeLimit   int               `json:"turn_time_limit"`
	RecallCallerID  string            `json:"recall_caller_id,omitempty"`
	Scores          map[string]int    `json:"scores,omitempty"`
	Winners         []string          `json:"winners,omitempty"`
}

// ProjectFor converts canonical state into what viewerID may see. Hidden
// hand cards become id-only placeholders unless the card's holder has a
// knowledge grant for this viewer. Nothing in the result aliases
// canonical state.
func ProjectFor(s *GameState, viewerID string) *ProjectedState {
	out := &ProjectedState{
		GameID:         s.RoomID,
		Phase:          s.Phase,
		TurnNumber:     s.TurnNumber,
		RoundNumber:    s.RoundNumber,
		DrawPileSize:   len(s.DrawPile),
		PotValue:       s.PotValue,
		TurnTimeLimit:  int(s.TurnTimeLimit.Seconds()),
		RecallCallerID: s.RecallCallerID,
	}
	if s.Phase == PhaseFinished {
		out.Scores = make(map[string]int, len(s.Scores))
		for id, score := range s.Scores {
			out.Scores[id] = score
		}
		out.Winners = append([]string(nil), s.Winners...)
	}
	if cur := s.CurrentPlayer(); cur != nil && (s.Phase == PhasePlayerTurn || s.Phase == PhaseRecall) {
		out.CurrentPlayerID = cur.ID
	}

	out.DiscardPile = make([]ProjectedCard, 0, len(s.DiscardPile))
	for _, id := range s.DiscardPile {
		if c, ok := s.CardByID(id); ok {
			out.DiscardPile = append(out.DiscardPile, fullCard(c))
		}
	}

	out.Players = make([]ProjectedPlayer, 0, len(s.Players))
	for _, p := range s.Players {
		pp := ProjectedPlayer{
			PlayerID:  p.ID,
			Username:  p.Username,
			Status:    p.Status,
			TurnPhase: p.TurnPhase,
			IsHuman:   p.IsHuman,
			IsActive:  p.IsActive,
			Hand:      make([]ProjectedCard, 0, len(p.Hand)),
		}
		for _, cid := range p.Hand {
			if c, ok := p.Knows(viewerID, cid); ok {
				pp.Hand = append(pp.Hand, fullCard(c))
			} else {
				pp.Hand = append(pp.Hand, idOnlyCard(cid))
			}
		}
		if p.ID == viewerID {
			pp.CollectionRank = p.CollectionRank
			for _, c := range p.CollectionRankCards {
				pp.CollectionRankCards = append(pp.CollectionRankCards, fullCard(c))
			}
		}
		if p.DrawnCard != nil {
			if p.ID == viewerID {
				if c, ok := s.CardByID(*p.DrawnCard); ok {
					card := fullCard(c)
					pp.DrawnCard = &card
				}
			} else {
				card := idOnlyCard(*p.DrawnCard)
				pp.DrawnCard = &card
			}
		}
		out.Players = append(out.Players, pp)
	}
	return out
}
