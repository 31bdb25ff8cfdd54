// internal/engine/invariants_test.go
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sil-vella/recall/internal/models"
)

// TestRandomActionsPreserveInvariants drives a round through long
// random action sequences, most of them illegal, and checks after every
// step that the core safety properties still hold: no card is ever
// duplicated or lost, a committed collection-rank card never enters
// anyone's knowledge while hidden, and exactly one seat holds the turn.
// The captured outbound stream is then audited for disclosure leaks.
func TestRandomActionsPreserveInvariants(t *testing.T) {
	for _, seed := range []int64{1, 11, 42, 99} {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			humans := []string{"alice", "bob"}
			g, sender := setupRound(t, humans, nil)
			peekBoth(t, g, humans)
			rng := rand.New(rand.NewSource(seed))

			for step := 0; step < 250; step++ {
				runOn(t, g, func() {
					if g.state.Phase == PhaseFinished {
						return
					}
					actor := humans[rng.Intn(len(humans))]
					g.apply(context.Background(), actor, randomAction(g, rng, actor))
					checkRoundInvariants(t, g)
				})
			}

			auditOutboundStream(t, sender)
		})
	}
}

// randomAction builds a plausible but unvalidated action. Targets are
// sampled from real seats and cards so that legal moves come up often
// enough to make progress through the phases. Runs on the room loop.
func randomAction(g *GameRound, rng *rand.Rand, actorID string) Action {
	p := g.state.Player(actorID)
	randHandCard := func(of *models.Player) uuid.UUID {
		if of == nil || len(of.Hand) == 0 {
			return uuid.New()
		}
		return of.Hand[rng.Intn(len(of.Hand))]
	}
	randSeat := func() *models.Player {
		return g.state.Players[rng.Intn(len(g.state.Players))]
	}
	// Half the power targets aim straight at a held collection card so
	// the knowledge-exclusivity checks get exercised on the hard case.
	powerTarget := func(of *models.Player) uuid.UUID {
		if rng.Intn(2) == 0 {
			for _, c := range of.CollectionRankCards {
				if _, held := of.HasCard(c.ID); held {
					return c.ID
				}
			}
		}
		return randHandCard(of)
	}

	switch rng.Intn(10) {
	case 0:
		src := DrawDeck
		if rng.Intn(2) == 0 {
			src = DrawDiscard
		}
		return Action{Kind: ActionDrawCard, Name: "draw_card", Source: src}
	case 1:
		return Action{Kind: ActionPlayDrawnCard, Name: "play_drawn_card"}
	case 2:
		return Action{Kind: ActionReplaceDrawnCard, Name: "replace_drawn_card", HandCardID: randHandCard(p)}
	case 3:
		return Action{Kind: ActionPlayCard, Name: "play_card", CardID: randHandCard(p)}
	case 4:
		target := randSeat()
		return Action{
			Kind:       ActionUseSpecialPower,
			Name:       "use_special_power",
			PeekTarget: SwapTarget{PlayerID: target.ID, CardID: powerTarget(target)},
		}
	case 5:
		a, b := randSeat(), randSeat()
		return Action{
			Kind:  ActionUseSpecialPower,
			Name:  "use_special_power",
			SwapA: SwapTarget{PlayerID: a.ID, CardID: powerTarget(a)},
			SwapB: SwapTarget{PlayerID: b.ID, CardID: powerTarget(b)},
		}
	case 6:
		return Action{Kind: ActionSkipSpecialPower, Name: "skip_special_power"}
	case 7:
		return Action{Kind: ActionSameRankPlay, Name: "same_rank_play", CardID: randHandCard(p)}
	case 8:
		return Action{Kind: ActionCallRecall, Name: "call_recall"}
	default:
		return Action{Kind: ActionGetState, Name: "get_game_state"}
	}
}

// checkRoundInvariants asserts state-level safety. Runs on the room
// loop.
func checkRoundInvariants(t *testing.T, g *GameRound) {
	t.Helper()

	// Every original card is reachable exactly once across hands, piles
	// and pending draw slots.
	seen := make(map[uuid.UUID]int, len(g.state.OriginalDeck))
	for _, id := range g.state.cardLocations() {
		seen[id]++
	}
	for _, p := range g.state.Players {
		if p.DrawnCard != nil {
			seen[*p.DrawnCard]++
		}
	}
	require.Len(t, seen, len(g.state.OriginalDeck), "card set size drifted")
	for id, n := range seen {
		require.Equal(t, 1, n, "card %s reachable %d times", id, n)
	}

	// A hidden collection-rank card stays out of every knowledge map,
	// its owner's included.
	for _, p := range g.state.Players {
		for _, cr := range p.CollectionRankCards {
			if _, held := p.HasCard(cr.ID); !held {
				continue
			}
			for _, viewer := range g.state.Players {
				_, known := p.Knows(viewer.ID, cr.ID)
				require.False(t, known, "collection card %s of %s known by %s", cr.ID, p.ID, viewer.ID)
			}
		}
	}

	// While a turn is in progress exactly one seat holds it.
	if g.state.Phase == PhasePlayerTurn || g.state.Phase == PhaseRecall {
		holders := 0
		for _, p := range g.state.Players {
			switch p.TurnPhase {
			case models.TurnMustDraw, models.TurnHasDrawn, models.TurnCanPlay, models.TurnRecallOpp:
				holders++
			}
		}
		require.Equal(t, 1, holders, "expected exactly one turn holder")
	}
}

// auditOutboundStream re-reads everything the round emitted and checks
// that redacted cards carry no face data and that owner-only fields
// never leak to other recipients.
func auditOutboundStream(t *testing.T, sender *captureSender) {
	t.Helper()

	redacted := func(c ProjectedCard) {
		assert.Empty(t, c.Rank, "redacted card %s leaked its rank", c.ID)
		assert.Empty(t, c.Suit, "redacted card %s leaked its suit", c.ID)
		assert.Zero(t, c.Value, "redacted card %s leaked its value", c.ID)
		assert.Empty(t, c.Power, "redacted card %s leaked its power", c.ID)
	}

	for _, m := range sender.sequence() {
		su, ok := m.msg.(StateUpdate)
		if !ok || su.GameState == nil {
			continue
		}
		st := su.GameState
		if st.Phase != PhaseFinished {
			assert.Empty(t, st.Scores, "scores sent before the match finished")
			assert.Empty(t, st.Winners, "winners sent before the match finished")
		}
		for _, pp := range st.Players {
			for _, c := range pp.Hand {
				if !c.Known {
					redacted(c)
				}
			}
			if pp.PlayerID == m.playerID {
				continue
			}
			assert.Nil(t, pp.CollectionRank,
				"collection rank of %s leaked to %s", pp.PlayerID, m.playerID)
			assert.Empty(t, pp.CollectionRankCards,
				"collection cards of %s leaked to %s", pp.PlayerID, m.playerID)
			if pp.DrawnCard != nil {
				assert.False(t, pp.DrawnCard.Known,
					"pending draw of %s leaked to %s", pp.PlayerID, m.playerID)
				redacted(*pp.DrawnCard)
			}
		}
	}
}
