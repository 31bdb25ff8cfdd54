// internal/engine/round.go
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sil-vella/recall/internal/models"
)

// Deps bundles the external collaborators a round needs. Everything is
// injected; there are no package-level singletons.
type Deps struct {
	Log     logrus.FieldLogger
	Rooms   RoomDirectory
	Supply  CompPlayerSupply
	Journal JournalFunc
	Send    SendFunc

	// Rand lets tests fix the random source. Nil means time-seeded.
	Rand *rand.Rand
}

// GameRound owns one room's canonical GameState. All mutations run on a
// single goroutine consuming the command channel, in arrival order;
// timers and client actions go through the same queue, so there is
// exactly one writer and no lock to reason about.
type GameRound struct {
	roomID  string
	ownerID string
	log     logrus.FieldLogger

	state *GameState
	timer *TimerService
	rng   *rand.Rand

	rooms   RoomDirectory
	supply  CompPlayerSupply
	journal JournalFunc
	send    SendFunc

	cmds chan func()
	done chan struct{}

	actionIndex int
}

func newGameRound(roomID string, d Deps) *GameRound {
	rng := d.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	log := d.Log
	if log == nil {
		log = logrus.New()
	}
	g := &GameRound{
		roomID:  roomID,
		log:     log.WithField("room", roomID),
		state:   newGameState(roomID),
		timer:   &TimerService{},
		rng:     rng,
		rooms:   d.Rooms,
		supply:  d.Supply,
		journal: d.Journal,
		send:    d.Send,
		cmds:    make(chan func(), 64),
		done:    make(chan struct{}),
	}
	go g.loop()
	return g
}

func (g *GameRound) loop() {
	for {
		select {
		case fn := <-g.cmds:
			fn()
		case <-g.done:
			return
		}
	}
}

// post hands a command to the room loop. Commands posted after Close
// are dropped.
func (g *GameRound) post(fn func()) {
	select {
	case <-g.done:
		return
	default:
	}
	select {
	case g.cmds <- fn:
	case <-g.done:
	}
}

// Close retires the round. The phase timer is cancelled first so no
// expiry can sneak in behind the shutdown.
func (g *GameRound) Close() {
	g.timer.Cancel()
	select {
	case <-g.done:
	default:
		close(g.done)
	}
}

// Dispatch queues one parsed action for the room loop and guarantees
// exactly one direct reply to the actor: an acknowledgement on success
// or a classified error otherwise.
func (g *GameRound) Dispatch(ctx context.Context, actorID string, act Action) {
	g.post(func() {
		if err := g.apply(ctx, actorID, act); err != nil {
			if err.Code == CodeInternal {
				g.log.WithFields(logrus.Fields{
					"actor": actorID,
					"event": act.Name,
				}).Errorf("internal error applying action: %s", err.Message)
				err = &Error{Code: CodeInternal, Message: "internal error"}
			}
			g.send(actorID, errorReply(act.Name, g.roomID, err))
			return
		}
		g.send(actorID, ackReply(act.Name, g.roomID))
	})
}

// apply validates and executes one action. It runs on the room loop.
// Every path validates before mutating: a returned error always means
// untouched canonical state.
func (g *GameRound) apply(ctx context.Context, actorID string, act Action) *Error {
	switch act.Kind {
	case ActionJoin:
		return g.handleJoin(actorID)
	case ActionStartMatch:
		return g.startMatch(ctx, actorID, act.Start)
	case ActionCompleteInitialPeek:
		return g.completeInitialPeek(actorID, act.CardIDs)
	case ActionDrawCard:
		return g.handleDraw(actorID, act.Source)
	case ActionPlayDrawnCard:
		return g.handlePlayDrawn(actorID)
	case ActionReplaceDrawnCard:
		return g.handleReplace(actorID, act.HandCardID)
	case ActionPlayCard:
		return g.handlePlayCard(actorID, act.CardID)
	case ActionSameRankPlay:
		return g.handleSameRankPlay(actorID, act.CardID)
	case ActionUseSpecialPower:
		return g.handleUsePower(actorID, act)
	case ActionSkipSpecialPower:
		return g.handleSkipPower(actorID)
	case ActionCallRecall:
		return g.handleCallRecall(actorID)
	case ActionGetState:
		g.sendStateTo(actorID)
		return nil
	default:
		return errValidation("unhandled action kind %d", act.Kind)
	}
}

// handleJoin seats a session in a waiting room. Joining is only a query
// against membership once the match has started; seats are fixed then.
func (g *GameRound) handleJoin(actorID string) *Error {
	if g.state.Phase != PhaseWaiting {
		if g.state.Player(actorID) != nil {
			// Rejoin of a known seat: just resync.
			g.sendStateTo(actorID)
			return nil
		}
		return errIllegalPhase("match already started in room %s", g.roomID)
	}
	if g.state.Player(actorID) != nil {
		return nil
	}
	g.state.Players = append(g.state.Players, &models.Player{
		ID:        actorID,
		Username:  actorID,
		IsHuman:   true,
		IsActive:  true,
		Status:    models.StatusWaiting,
		TurnPhase: models.TurnWaiting,
	})
	g.logAction(actorID, "player_joined", nil)
	return nil
}

// sendStateTo sends the actor their own projection of current state.
func (g *GameRound) sendStateTo(playerID string) {
	g.send(playerID, StateUpdate{
		Event:     eventStateUpdated,
		GameID:    g.roomID,
		GameState: ProjectFor(g.state, playerID),
		OwnerID:   g.ownerID,
		Timestamp: time.Now().UnixMilli(),
	})
}

// broadcastState emits per-recipient projections to every human seat.
// The privileged viewer, if any, is always sent last: everyone else
// must have received their redacted view before any full data leaves
// the server.
func (g *GameRound) broadcastState(privileged string) {
	for _, p := range g.state.Players {
		if !p.IsHuman || p.ID == privileged {
			continue
		}
		g.sendStateTo(p.ID)
	}
	if privileged != "" {
		if p := g.state.Player(privileged); p != nil && p.IsHuman {
			g.sendStateTo(privileged)
		}
	}
}

// discloseCard runs the two-phase disclosure sequence for one card:
// first the id-only placeholder to every other room member, then the
// full card addressed only to the privileged viewer. The ordering is a
// correctness invariant, not a style choice.
func (g *GameRound) discloseCard(viewerID, holderID string, card models.Card) {
	now := time.Now().UnixMilli()
	redacted := CardDisclosure{
		Event:     eventCardDisclosed,
		GameID:    g.roomID,
		HolderID:  holderID,
		Card:      idOnlyCard(card.ID),
		Timestamp: now,
	}
	for _, p := range g.state.Players {
		if !p.IsHuman || p.ID == viewerID {
			continue
		}
		g.send(p.ID, redacted)
	}
	if p := g.state.Player(viewerID); p != nil && p.IsHuman {
		g.send(viewerID, CardDisclosure{
			Event:     eventCardDisclosed,
			GameID:    g.roomID,
			HolderID:  holderID,
			Card:      fullCard(card),
			Timestamp: now,
		})
	}
}

// logAction publishes one action record to the historian queue,
// fire-and-forget. A missing or failing journal never touches play.
func (g *GameRound) logAction(actorID, actionType string, payload map[string]any) {
	g.actionIndex++
	if g.journal == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	rec := JournalRecord{
		GameID:      g.roomID,
		ActionIndex: g.actionIndex,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	journal := g.journal
	log := g.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := journal(ctx, rec); err != nil {
			log.Warnf("journal publish failed for action %d: %v", rec.ActionIndex, err)
		}
	}()
}

// armPhaseTimer schedules fn on the room loop after d. Expiry travels
// through the same serialized queue as client actions.
func (g *GameRound) armPhaseTimer(d time.Duration, fn func()) {
	if d <= 0 {
		return
	}
	g.timer.Arm(d, func() {
		g.post(fn)
	})
}
