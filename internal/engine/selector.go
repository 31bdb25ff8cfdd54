// internal/engine/selector.go
package engine

import (
	"math/rand"

	"github.com/sil-vella/recall/internal/models"
)

// SelectCollectionRank decides which of two peeked cards becomes the
// player's collection-rank commitment. Deterministic given a fixed rng:
//   - exactly one joker: the non-joker wins
//   - two jokers: coin flip
//   - otherwise the lower point value wins
//   - equal points: rank priority (A, 2..10, K, Q, J) breaks the tie,
//     and a coin flip breaks identical ranks.
func SelectCollectionRank(a, b models.Card, rng *rand.Rand) models.Card {
	switch {
	case a.IsJoker() && !b.IsJoker():
		return b
	case b.IsJoker() && !a.IsJoker():
		return a
	case a.IsJoker() && b.IsJoker():
		if rng.Intn(2) == 0 {
			return a
		}
		return b
	}

	if a.Value != b.Value {
		if a.Value < b.Value {
			return a
		}
		return b
	}
	pa, pb := models.RankPriority(a.Rank), models.RankPriority(b.Rank)
	if pa != pb {
		if pa < pb {
			return a
		}
		return b
	}
	if rng.Intn(2) == 0 {
		return a
	}
	return b
}

// aiInitialPeek runs the computer-player peek: pick two distinct random
// hand positions, resolve them through the original deck, commit the
// selector's choice as the collection rank and remember the other card.
// The chosen card is deliberately kept out of KnownCards.
func aiInitialPeek(s *GameState, p *models.Player, rng *rand.Rand) {
	if len(p.Hand) < 2 {
		return
	}
	i := rng.Intn(len(p.Hand))
	j := rng.Intn(len(p.Hand) - 1)
	if j >= i {
		j++
	}
	cardA, okA := s.CardByID(p.Hand[i])
	cardB, okB := s.CardByID(p.Hand[j])
	if !okA || !okB {
		return
	}
	commitCollectionRank(p, cardA, cardB, rng)
}

// commitCollectionRank applies the selector to two peeked cards and
// records the outcome on the player.
func commitCollectionRank(p *models.Player, cardA, cardB models.Card, rng *rand.Rand) {
	chosen := SelectCollectionRank(cardA, cardB, rng)
	other := cardA
	if chosen.ID == cardA.ID {
		other = cardB
	}
	p.GrantKnowledge(p.ID, other)
	p.CollectionRankCards = append(p.CollectionRankCards, chosen)
	rank := chosen.Rank
	p.CollectionRank = &rank
}
