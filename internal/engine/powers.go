// internal/engine/powers.go
package engine

import (
	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/models"
)

// armPower records a freshly discarded Queen or Jack as a pending power
// and keeps the floor with its player until it is used or skipped.
func (g *GameRound) armPower(p *models.Player, card models.Card) {
	g.state.Pending = &PendingPower{
		PlayerID: p.ID,
		Power:    card.Power,
		CardID:   card.ID,
	}
	p.TurnPhase = models.TurnCanPlay
	g.log.Infof("player %s armed %s power", p.ID, card.Power)
}

// handleUsePower resolves the armed power against the targets carried
// in the action. Both power kinds validate every target before touching
// any state, so a rejection leaves hands and knowledge exactly as they
// were.
func (g *GameRound) handleUsePower(actorID string, act Action) *Error {
	p, err := g.turnHolder(actorID, models.TurnCanPlay)
	if err != nil {
		return err
	}
	pending := g.state.Pending
	if pending == nil || pending.PlayerID != actorID {
		return errIllegalPhase("player %s has no armed special power", actorID)
	}

	switch pending.Power {
	case models.PowerPeek:
		if err := g.resolvePeek(actorID, act.PeekTarget); err != nil {
			return err
		}
	case models.PowerSwap:
		if err := g.resolveSwap(act.SwapA, act.SwapB); err != nil {
			return err
		}
	default:
		return errInternal("pending power %q has no resolver", pending.Power)
	}

	g.state.Pending = nil
	g.enterRecallWindow(p)
	g.broadcastState(actorID)
	return nil
}

// handleSkipPower forfeits the armed power without resolving it.
func (g *GameRound) handleSkipPower(actorID string) *Error {
	p, err := g.turnHolder(actorID, models.TurnCanPlay)
	if err != nil {
		return err
	}
	if g.state.Pending == nil || g.state.Pending.PlayerID != actorID {
		return errIllegalPhase("player %s has no armed special power", actorID)
	}
	g.state.Pending = nil
	g.logAction(actorID, "power_skipped", nil)
	g.enterRecallWindow(p)
	g.broadcastState("")
	return nil
}

// resolvePeek grants the requester full knowledge of one card in any
// hand, including their own. Peeking never moves a card.
func (g *GameRound) resolvePeek(actorID string, target SwapTarget) *Error {
	if target.PlayerID == "" {
		return errValidation("peek power requires target_player_id and card_id")
	}
	holder := g.state.Player(target.PlayerID)
	if holder == nil {
		return errNotFound("player %s is not seated in room %s", target.PlayerID, g.roomID)
	}
	if _, ok := holder.HasCard(target.CardID); !ok {
		return errNotFound("card %s is not in player %s's hand", target.CardID, target.PlayerID)
	}
	card, ok := g.state.CardByID(target.CardID)
	if !ok {
		return errInternal("card %s missing from original deck", target.CardID)
	}

	// A committed collection card never enters a knowledge map, not even
	// its holder's own. The peek still reveals it once over the wire.
	if !holder.CommittedCollection(card.ID) {
		holder.GrantKnowledge(actorID, card)
	}
	g.discloseCard(actorID, holder.ID, card)
	g.logAction(actorID, "peek_power_used", map[string]any{
		"target_player_id": target.PlayerID,
	})
	return nil
}

// resolveSwap exchanges two cards between hands. The whole move is
// validated up front and then applied atomically; there is no state in
// which only one side of the swap has happened. Each new holder gains
// self-knowledge of the card that arrived, unless it is their own
// collection commitment, and everyone's stale knowledge of the moved
// cards is dropped.
func (g *GameRound) resolveSwap(a, b SwapTarget) *Error {
	if a.PlayerID == "" || b.PlayerID == "" {
		return errValidation("swap power requires two (player_id, card_id) targets")
	}
	if a.CardID == b.CardID {
		return errValidation("swap targets must name two different cards")
	}
	pa := g.state.Player(a.PlayerID)
	if pa == nil {
		return errNotFound("player %s is not seated in room %s", a.PlayerID, g.roomID)
	}
	pb := g.state.Player(b.PlayerID)
	if pb == nil {
		return errNotFound("player %s is not seated in room %s", b.PlayerID, g.roomID)
	}
	idxA, ok := pa.HasCard(a.CardID)
	if !ok {
		return errNotFound("card %s is not in player %s's hand", a.CardID, a.PlayerID)
	}
	idxB, ok := pb.HasCard(b.CardID)
	if !ok {
		return errNotFound("card %s is not in player %s's hand", b.CardID, b.PlayerID)
	}
	cardA, ok := g.state.CardByID(a.CardID)
	if !ok {
		return errInternal("card %s missing from original deck", a.CardID)
	}
	cardB, ok := g.state.CardByID(b.CardID)
	if !ok {
		return errInternal("card %s missing from original deck", b.CardID)
	}

	pa.Hand[idxA] = b.CardID
	pb.Hand[idxB] = a.CardID
	pa.ForgetCard(a.CardID)
	pb.ForgetCard(b.CardID)
	// If a collection card comes back to the player who committed it, the
	// arrival grant is withheld so the commitment stays out of their own
	// knowledge map.
	if !pa.CommittedCollection(cardB.ID) {
		pa.GrantKnowledge(pa.ID, cardB)
	}
	if !pb.CommittedCollection(cardA.ID) {
		pb.GrantKnowledge(pb.ID, cardA)
	}

	g.discloseCard(pa.ID, pa.ID, cardB)
	g.discloseCard(pb.ID, pb.ID, cardA)
	g.logAction("", "swap_power_used", map[string]any{
		"first_player_id":  a.PlayerID,
		"second_player_id": b.PlayerID,
	})
	return nil
}

// handleSameRankPlay is the out-of-turn race: any player in the
// out-of-turn window may shed a hand card whose rank matches the
// discard top. The first valid claim per top wins; later contenders
// for the same top get a race rejection even when their card would
// match the new top.
func (g *GameRound) handleSameRankPlay(actorID string, cardID uuid.UUID) *Error {
	if g.state.Phase != PhasePlayerTurn && g.state.Phase != PhaseRecall {
		return errIllegalPhase("out-of-turn plays are closed during %s", g.state.Phase)
	}
	p := g.state.Player(actorID)
	if p == nil {
		return errNotFound("player %s is not seated in room %s", actorID, g.roomID)
	}
	if p.TurnPhase != models.TurnOutOfTurn {
		return errIllegalPhase("player %s is not in the out-of-turn window", actorID)
	}
	if _, ok := p.HasCard(cardID); !ok {
		return errNotFound("card %s is not in player %s's hand", cardID, actorID)
	}
	card, ok := g.state.CardByID(cardID)
	if !ok {
		return errInternal("card %s missing from original deck", cardID)
	}
	if len(g.state.DiscardPile) == 0 {
		return errIllegalPhase("discard pile is empty")
	}
	topID := g.state.DiscardPile[len(g.state.DiscardPile)-1]
	top, _ := g.state.CardByID(topID)
	if card.Rank != top.Rank {
		return errValidation("card rank %s does not match discard top %s", card.Rank, top.Rank)
	}
	if g.state.raceClaimedFor == topID {
		return errRaceRejected("discard top was already claimed by another out-of-turn play")
	}

	p.RemoveCard(cardID)
	p.ForgetCard(cardID)
	g.state.pushDiscard(cardID)
	// Close the race for the top this play just created; it reopens the
	// next time the turn holder discards.
	g.state.raceClaimedFor = cardID
	g.logAction(actorID, "same_rank_played", map[string]any{"rank": card.Rank})
	g.broadcastState("")
	return nil
}
