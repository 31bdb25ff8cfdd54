// internal/engine/start.go
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/deck"
	"github.com/sil-vella/recall/internal/models"
)

const (
	cardsPerSeat     = 4
	defaultSeats     = 2
	defaultTurnTime  = 15 * time.Second
	compFetchTimeout = 3 * time.Second
)

// startMatch builds the deck, fills seats, deals, computes the stake
// and opens the initial-peek phase. It runs on the room loop; the only
// suspension point is the comp-player fetch, after which preconditions
// are re-checked before any mutation.
func (g *GameRound) startMatch(ctx context.Context, actorID string, opts MatchOptions) *Error {
	if g.state.Phase != PhaseWaiting {
		return errIllegalPhase("match already started in room %s", g.roomID)
	}
	if g.state.Player(actorID) == nil {
		if err := g.handleJoin(actorID); err != nil {
			return err
		}
	}

	info := g.roomInfo(ctx)
	if g.rooms != nil {
		if owner, err := g.rooms.GetRoomOwner(ctx, g.roomID); err == nil {
			g.ownerID = owner
		}
	}

	target := opts.TargetSeats
	if target <= 0 {
		target = info.MinPlayers
	}
	if target <= 0 {
		target = defaultSeats
	}
	if info.MaxPlayers > 0 && target > info.MaxPlayers {
		target = info.MaxPlayers
	}

	compSeats := g.fillSeats(ctx, target)

	// The supply fetch may have suspended the loop command; the phase
	// cannot have moved underneath us (single writer), but the guard
	// stays as the documented precondition re-check.
	if g.state.Phase != PhaseWaiting {
		return errIllegalPhase("room %s phase changed during seat fill", g.roomID)
	}

	cards := deck.NewFactory(opts.TestingDeck, g.rng).Build()
	if len(opts.PredefinedHands) > 0 {
		arranged, err := deck.ApplyPredefined(cards, opts.PredefinedHands)
		if err != nil {
			return errValidation("predefined hands: %v", err)
		}
		cards = arranged
	}
	g.state.OriginalDeck = deck.Lookup(cards)

	pile := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		pile[i] = c.ID
	}
	g.state.DrawPile = pile

	// Deal seat by seat: seat 0 receives the first four ids, and so on.
	// Cards enter hands as id-only entries; nobody has seen anything yet.
	for _, p := range g.state.Players {
		p.Hand = make([]uuid.UUID, 0, cardsPerSeat)
		for i := 0; i < cardsPerSeat; i++ {
			id, ok := g.state.drawFromPile()
			if !ok {
				return errInternal("deck exhausted during deal")
			}
			p.Hand = append(p.Hand, id)
		}
		p.Status = models.StatusPeeking
		p.TurnPhase = models.TurnWaiting
	}

	seed, ok := g.state.drawFromPile()
	if !ok {
		return errInternal("deck exhausted before discard seed")
	}
	g.state.pushDiscard(seed)

	g.state.StakePerPlayer = opts.StakePerPlayer
	g.state.PotValue = opts.StakePerPlayer * g.state.activeCount()
	g.state.TurnTimeLimit = defaultTurnTime
	if info.TurnTimeLimit > 0 {
		g.state.TurnTimeLimit = time.Duration(info.TurnTimeLimit) * time.Second
	}

	g.state.Phase = PhaseInitialPeek
	g.state.RoundNumber++
	g.logAction(actorID, "match_started", map[string]any{
		"seats":      len(g.state.Players),
		"comp_seats": compSeats,
		"pot":        g.state.PotValue,
		"testing":    opts.TestingDeck,
	})

	// Computer players peek synchronously; humans get the timer.
	for _, p := range g.state.Players {
		if !p.IsHuman {
			aiInitialPeek(g.state, p, g.rng)
			p.Status = models.StatusWaiting
		}
	}

	if !opts.DeferPeekTimer {
		g.armPhaseTimer(g.state.TurnTimeLimit, g.onInitialPeekTimerExpire)
	}

	if g.state.allPlayersCompletedInitialPeek() {
		// All-comp table: nothing to wait for.
		g.finishInitialPeek()
	} else {
		g.broadcastState("")
	}
	return nil
}

func (g *GameRound) roomInfo(ctx context.Context) models.RoomInfo {
	if g.rooms == nil {
		return models.RoomInfo{}
	}
	info, err := g.rooms.GetRoomInfo(ctx, g.roomID)
	if err != nil {
		g.log.Warnf("room info unavailable, using defaults: %v", err)
		return models.RoomInfo{}
	}
	return info
}

// fillSeats tops the table up to target seats with comp players from
// the supply collaborator, falling back to locally generated
// placeholders on failure or short supply. Both paths produce the same
// Player shape; downstream logic never knows the difference. Returns
// the number of seats filled.
func (g *GameRound) fillSeats(ctx context.Context, target int) int {
	missing := target - len(g.state.Players)
	if missing <= 0 {
		return 0
	}

	var records []models.CompPlayer
	if g.supply != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, compFetchTimeout)
		var err error
		records, err = g.supply.FetchCompPlayers(fetchCtx, missing)
		cancel()
		if err != nil {
			// Upstream unavailability is recovered here and never
			// surfaced to the room.
			g.log.Warnf("comp-player supply failed, generating placeholders: %v", err)
			records = nil
		}
	}

	for i := 0; i < missing; i++ {
		var rec models.CompPlayer
		if i < len(records) {
			rec = records[i]
		} else {
			rec = localPlaceholder(i)
		}
		g.state.Players = append(g.state.Players, &models.Player{
			ID:        rec.UserID,
			Username:  rec.Username,
			IsHuman:   false,
			IsActive:  true,
			Status:    models.StatusWaiting,
			TurnPhase: models.TurnWaiting,
		})
	}
	return missing
}

func localPlaceholder(i int) models.CompPlayer {
	id := uuid.NewString()
	return models.CompPlayer{
		UserID:   id,
		Username: "comp_" + id[:8],
		Email:    "comp_" + id[:8] + "@recall.local",
	}
}
