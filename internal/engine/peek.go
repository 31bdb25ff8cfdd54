// internal/engine/peek.go
package engine

import (
	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/models"
)

// completeInitialPeek handles a human player's peek commitment: exactly
// two owned cards, resolved through the original deck, run through the
// collection-rank selector and disclosed back with the two-phase
// sequence.
func (g *GameRound) completeInitialPeek(actorID string, cardIDs []uuid.UUID) *Error {
	if g.state.Phase != PhaseInitialPeek {
		return errIllegalPhase("initial peek is not open in room %s", g.roomID)
	}
	p := g.state.Player(actorID)
	if p == nil {
		return errNotFound("player %s is not seated in room %s", actorID, g.roomID)
	}
	if p.CompletedInitialPeek() {
		return errIllegalPhase("player %s already completed the initial peek", actorID)
	}
	if len(cardIDs) != 2 {
		return errValidation("initial peek requires exactly 2 card ids, got %d", len(cardIDs))
	}
	if cardIDs[0] == cardIDs[1] {
		return errValidation("initial peek card ids must be distinct")
	}
	for _, id := range cardIDs {
		if _, ok := p.HasCard(id); !ok {
			return errValidation("card %s is not in player %s's hand", id, actorID)
		}
	}

	cardA, okA := g.state.CardByID(cardIDs[0])
	cardB, okB := g.state.CardByID(cardIDs[1])
	if !okA || !okB {
		return errInternal("peeked card missing from original deck")
	}

	commitCollectionRank(p, cardA, cardB, g.rng)
	p.Status = models.StatusWaiting

	// Redacted broadcast first, then full data to the peeker only.
	g.discloseCard(actorID, actorID, cardA)
	g.discloseCard(actorID, actorID, cardB)
	g.logAction(actorID, "initial_peek_completed", map[string]any{
		"collection_rank": *p.CollectionRank,
	})

	if g.state.allPlayersCompletedInitialPeek() {
		// Manual completion races the phase timer; cancelling first
		// guarantees the transition below happens exactly once.
		g.timer.Cancel()
		g.finishInitialPeek()
	} else {
		g.broadcastState(actorID)
	}
	return nil
}

// onInitialPeekTimerExpire forces the computer-player selection for
// every human who has not peeked, so the phase always completes. It
// arrives through the room queue like any other action.
func (g *GameRound) onInitialPeekTimerExpire() {
	if g.state.Phase != PhaseInitialPeek {
		// Already completed manually; the timer lost the race.
		return
	}
	forced := 0
	for _, p := range g.state.Players {
		if p.CompletedInitialPeek() {
			continue
		}
		aiInitialPeek(g.state, p, g.rng)
		p.Status = models.StatusWaiting
		forced++
	}
	g.log.Infof("initial peek timer expired, forced selection for %d player(s)", forced)
	g.logAction("", "initial_peek_timeout", map[string]any{"forced": forced})
	g.finishInitialPeek()
}

// finishInitialPeek closes the peek phase and starts the turn engine.
// Exactly one call ever reaches the phase transition: the manual path
// cancels the timer first, and the timer path re-checks the phase.
func (g *GameRound) finishInitialPeek() {
	if g.state.Phase != PhaseInitialPeek {
		return
	}
	for _, p := range g.state.Players {
		p.Status = models.StatusWaiting
	}
	g.state.Phase = PhasePlayerTurn
	g.state.CurrentIdx = 0
	g.logAction("", "initial_peek_finished", nil)
	g.broadcastState("")
	g.beginTurn()
}
