// internal/engine/turn.go
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/models"
)

// recallWindow is how long the turn holder keeps the floor to call the
// final round after their play resolves.
const recallWindow = 5 * time.Second

// beginTurn opens the next turn for the player at CurrentIdx: the
// holder enters mustDraw, everyone else active gets the out-of-turn
// window, and the turn timer is armed. Computer seats play themselves
// immediately through the same code paths.
func (g *GameRound) beginTurn() {
	cur := g.state.CurrentPlayer()
	if cur == nil {
		g.finishMatch()
		return
	}
	g.state.TurnNumber++
	for _, p := range g.state.Players {
		if !p.IsActive {
			continue
		}
		if p.ID == cur.ID {
			p.TurnPhase = models.TurnMustDraw
			p.Status = models.StatusPlaying
		} else {
			p.TurnPhase = models.TurnOutOfTurn
			p.Status = models.StatusWaiting
		}
	}
	g.armTurnTimer()
	g.broadcastState("")

	if !cur.IsHuman {
		g.autoPlayComp(cur)
	}
}

// armTurnTimer stamps the timer with the turn it covers. A cancelled
// timer can still slip its expiry into the command queue when the
// timer goroutine races the loop, so the expiry handler re-checks the
// stamp before acting.
func (g *GameRound) armTurnTimer() {
	turn := g.state.TurnNumber
	g.armPhaseTimer(g.state.TurnTimeLimit, func() { g.onTurnTimerExpire(turn) })
}

// handleDraw moves the top of the chosen pile into the holder's pending
// slot and discloses it to the drawer only.
func (g *GameRound) handleDraw(actorID string, source DrawSource) *Error {
	p, err := g.turnHolder(actorID, models.TurnMustDraw)
	if err != nil {
		return err
	}

	var id uuid.UUID
	switch source {
	case DrawDeck:
		drawn, ok := g.drawWithReshuffle()
		if !ok {
			return errIllegalPhase("no cards left to draw in room %s", g.roomID)
		}
		id = drawn
	case DrawDiscard:
		drawn, ok := g.state.popDiscard()
		if !ok {
			return errValidation("discard pile is empty")
		}
		id = drawn
	default:
		return errValidation("unknown draw source %q", source)
	}

	p.DrawnCard = &id
	p.TurnPhase = models.TurnHasDrawn
	card, _ := g.state.CardByID(id)
	g.discloseCard(actorID, actorID, card)
	g.logAction(actorID, "card_drawn", map[string]any{"source": string(source)})
	g.armTurnTimer()
	g.broadcastState(actorID)
	return nil
}

// drawWithReshuffle pops the draw pile, folding the discard pile (all
// but its top card) back in when the pile runs dry.
func (g *GameRound) drawWithReshuffle() (uuid.UUID, bool) {
	if id, ok := g.state.drawFromPile(); ok {
		return id, true
	}
	if len(g.state.DiscardPile) <= 1 {
		return uuid.Nil, false
	}
	top := g.state.DiscardPile[len(g.state.DiscardPile)-1]
	refill := make([]uuid.UUID, len(g.state.DiscardPile)-1)
	copy(refill, g.state.DiscardPile[:len(g.state.DiscardPile)-1])
	g.rng.Shuffle(len(refill), func(i, j int) {
		refill[i], refill[j] = refill[j], refill[i]
	})
	g.state.DrawPile = refill
	g.state.DiscardPile = []uuid.UUID{top}
	g.log.Infof("reshuffled %d discard card(s) into the draw pile", len(refill))
	return g.state.drawFromPile()
}

// handlePlayDrawn discards the pending drawn card. A Queen or Jack
// arms its power and keeps the floor; anything else moves the holder to
// the recall window.
func (g *GameRound) handlePlayDrawn(actorID string) *Error {
	p, err := g.turnHolder(actorID, models.TurnHasDrawn)
	if err != nil {
		return err
	}
	if p.DrawnCard == nil {
		return errInternal("turn holder in hasDrawnCard with no pending card")
	}
	id := *p.DrawnCard
	card, ok := g.state.CardByID(id)
	if !ok {
		return errInternal("drawn card %s missing from original deck", id)
	}

	p.DrawnCard = nil
	g.state.pushDiscard(id)
	g.logAction(actorID, "drawn_card_played", map[string]any{"rank": card.Rank})

	if card.Power != models.PowerNone {
		g.armPower(p, card)
	} else {
		g.enterRecallWindow(p)
	}
	g.broadcastState("")
	return nil
}

// handleReplace swaps the pending drawn card into the hand slot that
// handCardID occupies and discards the displaced card. The arriving
// card is disclosed to its new owner.
func (g *GameRound) handleReplace(actorID string, handCardID uuid.UUID) *Error {
	p, err := g.turnHolder(actorID, models.TurnHasDrawn)
	if err != nil {
		return err
	}
	if p.DrawnCard == nil {
		return errInternal("turn holder in hasDrawnCard with no pending card")
	}
	idx, ok := p.HasCard(handCardID)
	if !ok {
		return errNotFound("card %s is not in player %s's hand", handCardID, actorID)
	}
	drawnID := *p.DrawnCard
	drawnCard, ok := g.state.CardByID(drawnID)
	if !ok {
		return errInternal("drawn card %s missing from original deck", drawnID)
	}

	p.DrawnCard = nil
	p.Hand[idx] = drawnID
	p.ForgetCard(handCardID)
	p.GrantKnowledge(p.ID, drawnCard)
	g.state.pushDiscard(handCardID)

	g.discloseCard(actorID, actorID, drawnCard)
	g.logAction(actorID, "drawn_card_replaced", map[string]any{"slot": idx})
	g.enterRecallWindow(p)
	g.broadcastState(actorID)
	return nil
}

// handlePlayCard lets the floor holder chain additional hand cards that
// match the discard top rank. A chained Queen/Jack re-arms its power.
func (g *GameRound) handlePlayCard(actorID string, cardID uuid.UUID) *Error {
	p, err := g.turnHolder(actorID, models.TurnCanPlay)
	if err != nil {
		return err
	}
	if _, ok := p.HasCard(cardID); !ok {
		return errNotFound("card %s is not in player %s's hand", cardID, actorID)
	}
	card, ok := g.state.CardByID(cardID)
	if !ok {
		return errInternal("card %s missing from original deck", cardID)
	}
	top, ok := g.state.TopDiscard()
	if !ok {
		return errIllegalPhase("discard pile is empty")
	}
	if card.Rank != top.Rank {
		return errValidation("card rank %s does not match discard top %s", card.Rank, top.Rank)
	}

	p.RemoveCard(cardID)
	p.ForgetCard(cardID)
	g.state.pushDiscard(cardID)
	g.logAction(actorID, "card_played", map[string]any{"rank": card.Rank})

	if card.Power != models.PowerNone {
		g.armPower(p, card)
	}
	g.broadcastState("")
	return nil
}

// handleCallRecall opens the final round: every other player gets one
// last turn, then the match is scored.
func (g *GameRound) handleCallRecall(actorID string) *Error {
	if g.state.Phase == PhaseRecall {
		return errIllegalPhase("recall was already called by %s", g.state.RecallCallerID)
	}
	if g.state.Phase != PhasePlayerTurn {
		return errIllegalPhase("recall cannot be called during %s", g.state.Phase)
	}
	p := g.state.Player(actorID)
	if p == nil {
		return errNotFound("player %s is not seated in room %s", actorID, g.roomID)
	}
	cur := g.state.CurrentPlayer()
	if cur == nil || cur.ID != actorID {
		return errIllegalPhase("only the turn holder may call recall")
	}
	if p.TurnPhase != models.TurnCanPlay && p.TurnPhase != models.TurnRecallOpp {
		return errIllegalPhase("recall is not available in phase %s", p.TurnPhase)
	}

	g.state.Phase = PhaseRecall
	g.state.RecallCallerID = actorID
	g.state.Pending = nil
	g.log.Infof("player %s called recall, final round begins", actorID)
	g.logAction(actorID, "recall_called", nil)
	g.advanceTurn()
	return nil
}

// enterRecallWindow gives the holder a short window in which calling
// recall is their only legal move; expiry advances the turn. Computer
// players never call recall, so they skip the window entirely.
func (g *GameRound) enterRecallWindow(p *models.Player) {
	if !p.IsHuman {
		g.advanceTurn()
		return
	}
	p.TurnPhase = models.TurnRecallOpp
	g.armPhaseTimer(recallWindow, func() {
		if g.state.CurrentPlayer() == p && p.TurnPhase == models.TurnRecallOpp {
			g.advanceTurn()
		}
	})
}

// advanceTurn closes the current turn and opens the next active seat's.
// During the recall phase, rotation reaching the caller ends the match.
func (g *GameRound) advanceTurn() {
	if g.state.Phase != PhasePlayerTurn && g.state.Phase != PhaseRecall {
		return
	}
	g.timer.Cancel()
	if cur := g.state.CurrentPlayer(); cur != nil {
		cur.TurnPhase = models.TurnWaiting
		cur.Status = models.StatusWaiting
		cur.DrawnCard = nil
	}
	g.state.Pending = nil

	n := len(g.state.Players)
	for i := 1; i <= n; i++ {
		idx := (g.state.CurrentIdx + i) % n
		next := g.state.Players[idx]
		if !next.IsActive {
			continue
		}
		if g.state.Phase == PhaseRecall && next.ID == g.state.RecallCallerID {
			g.finishMatch()
			return
		}
		g.state.CurrentIdx = idx
		g.beginTurn()
		return
	}
	g.finishMatch()
}

// onTurnTimerExpire forces the stalled turn forward: a pending drawn
// card is discarded, an undrawn turn becomes draw-and-discard, an armed
// power is forfeited. The room keeps moving no matter what. A stale
// expiry, queued for a turn that has since ended, is discarded.
func (g *GameRound) onTurnTimerExpire(turn int) {
	if g.state.Phase != PhasePlayerTurn && g.state.Phase != PhaseRecall {
		return
	}
	if g.state.TurnNumber != turn {
		return
	}
	cur := g.state.CurrentPlayer()
	if cur == nil {
		return
	}
	g.log.Infof("turn timer expired for player %s in phase %s", cur.ID, cur.TurnPhase)
	g.logAction(cur.ID, "turn_timeout", map[string]any{"turn_phase": cur.TurnPhase})

	switch cur.TurnPhase {
	case models.TurnMustDraw:
		if id, ok := g.drawWithReshuffle(); ok {
			g.state.pushDiscard(id)
		}
	case models.TurnHasDrawn:
		if cur.DrawnCard != nil {
			g.state.pushDiscard(*cur.DrawnCard)
			cur.DrawnCard = nil
		}
	case models.TurnCanPlay:
		g.state.Pending = nil
	}
	g.advanceTurn()
	g.broadcastState("")
}

// autoPlayComp plays a computer seat's whole turn: draw from the deck,
// play the drawn card, forfeit any power, never call recall.
func (g *GameRound) autoPlayComp(p *models.Player) {
	id, ok := g.drawWithReshuffle()
	if !ok {
		g.advanceTurn()
		return
	}
	g.state.pushDiscard(id)
	g.logAction(p.ID, "comp_turn_played", nil)
	g.advanceTurn()
}

// finishMatch scores every active hand and retires the round's play.
// Cards matching the player's committed collection rank score zero;
// everything else counts face value; lowest total wins.
func (g *GameRound) finishMatch() {
	if g.state.Phase == PhaseFinished {
		return
	}
	g.timer.Cancel()
	g.state.Phase = PhaseFinished
	g.state.Pending = nil

	scores := make(map[string]int, len(g.state.Players))
	best := -1
	for _, p := range g.state.Players {
		p.TurnPhase = models.TurnWaiting
		p.Status = models.StatusWaiting
		if !p.IsActive {
			continue
		}
		total := 0
		for _, id := range p.Hand {
			card, ok := g.state.CardByID(id)
			if !ok {
				continue
			}
			if p.CollectionRank != nil && card.Rank == *p.CollectionRank {
				continue
			}
			total += card.Value
		}
		scores[p.ID] = total
		if best < 0 || total < best {
			best = total
		}
	}
	var winners []string
	for _, p := range g.state.Players {
		if p.IsActive && scores[p.ID] == best {
			winners = append(winners, p.ID)
		}
	}
	g.state.Scores = scores
	g.state.Winners = winners

	payload := map[string]any{"winners": winners}
	for id, sc := range scores {
		payload["score_"+id] = sc
	}
	g.log.Infof("match finished, winners: %v", winners)
	g.logAction("", "match_finished", payload)
	g.broadcastState("")
}

// turnHolder validates that actorID is seated, holds the turn and is in
// the expected per-player phase. Any mismatch is a classified rejection
// with state untouched.
func (g *GameRound) turnHolder(actorID string, want models.TurnPhase) (*models.Player, *Error) {
	if g.state.Phase != PhasePlayerTurn && g.state.Phase != PhaseRecall {
		return nil, errIllegalPhase("no turn in progress during %s", g.state.Phase)
	}
	p := g.state.Player(actorID)
	if p == nil {
		return nil, errNotFound("player %s is not seated in room %s", actorID, g.roomID)
	}
	cur := g.state.CurrentPlayer()
	if cur == nil || cur.ID != actorID {
		return nil, errIllegalPhase("it is not player %s's turn", actorID)
	}
	if p.TurnPhase != want {
		return nil, errIllegalPhase("action requires phase %s, player is in %s", want, p.TurnPhase)
	}
	return p, nil
}
