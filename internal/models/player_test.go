// internal/models/player_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCard(rank Rank) Card {
	return Card{ID: uuid.New(), Rank: rank, Suit: SuitHearts, Value: PointValue(rank)}
}

func TestHandMembershipAndRemoval(t *testing.T) {
	a, b, c := testCard(RankAce), testCard(RankFive), testCard(RankKing)
	p := &Player{ID: "alice", Hand: []uuid.UUID{a.ID, b.ID, c.ID}}

	idx, ok := p.HasCard(b.ID)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = p.HasCard(uuid.New())
	assert.False(t, ok)

	require.True(t, p.RemoveCard(b.ID))
	assert.Equal(t, []uuid.UUID{a.ID, c.ID}, p.Hand)
	assert.False(t, p.RemoveCard(b.ID))
}

func TestKnowledgeGrantsArePerViewer(t *testing.T) {
	c := testCard(RankNine)
	p := &Player{ID: "alice", Hand: []uuid.UUID{c.ID}}

	p.GrantKnowledge("bob", c)

	_, ok := p.Knows("bob", c.ID)
	assert.True(t, ok)
	_, ok = p.Knows("alice", c.ID)
	assert.False(t, ok, "a grant to one viewer must not leak to another")
}

func TestForgetCardDropsEveryViewer(t *testing.T) {
	c := testCard(RankNine)
	p := &Player{ID: "alice", Hand: []uuid.UUID{c.ID}}
	p.GrantKnowledge("alice", c)
	p.GrantKnowledge("bob", c)

	p.ForgetCard(c.ID)

	_, ok := p.Knows("alice", c.ID)
	assert.False(t, ok)
	_, ok = p.Knows("bob", c.ID)
	assert.False(t, ok)
}

func TestCompletedInitialPeek(t *testing.T) {
	p := &Player{ID: "alice"}
	assert.False(t, p.CompletedInitialPeek())

	c := testCard(RankFour)
	rank := c.Rank
	p.CollectionRankCards = append(p.CollectionRankCards, c)
	p.CollectionRank = &rank
	assert.True(t, p.CompletedInitialPeek())
}

func TestRankPriorityOrdersJokersLast(t *testing.T) {
	assert.Less(t, RankPriority(RankAce), RankPriority(RankTwo))
	assert.Less(t, RankPriority(RankKing), RankPriority(RankQueen))
	assert.Less(t, RankPriority(RankQueen), RankPriority(RankJack))
	assert.Greater(t, RankPriority(RankJoker), RankPriority(RankJack))
}
