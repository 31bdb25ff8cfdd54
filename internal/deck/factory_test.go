// internal/deck/factory_test.go
package deck

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sil-vella/recall/internal/models"
)

func TestBuildFullDeck(t *testing.T) {
	cards := NewFactory(true, nil).Build()
	require.Len(t, cards, 54)

	ids := make(map[uuid.UUID]bool, len(cards))
	jokers := 0
	powers := map[models.Power]int{}
	for _, c := range cards {
		assert.False(t, ids[c.ID], "duplicate card id")
		ids[c.ID] = true
		if c.IsJoker() {
			jokers++
			assert.Zero(t, c.Value)
		}
		powers[c.Power]++
	}
	assert.Equal(t, 2, jokers)
	assert.Equal(t, 4, powers[models.PowerPeek], "four queens")
	assert.Equal(t, 4, powers[models.PowerSwap], "four jacks")
}

func TestBuildTestingOrderIsDeterministic(t *testing.T) {
	cards := NewFactory(true, nil).Build()

	// Construction order: hearts A..K first, jokers last.
	assert.Equal(t, models.RankAce, cards[0].Rank)
	assert.Equal(t, models.SuitHearts, cards[0].Suit)
	assert.Equal(t, models.RankKing, cards[12].Rank)
	assert.Equal(t, models.SuitHearts, cards[12].Suit)
	assert.Equal(t, models.SuitDiamonds, cards[13].Suit)
	assert.True(t, cards[52].IsJoker())
	assert.True(t, cards[53].IsJoker())
}

func TestBuildShufflesOutsideTestingMode(t *testing.T) {
	ordered := NewFactory(true, nil).Build()
	shuffled := NewFactory(false, rand.New(rand.NewSource(3))).Build()

	sameSpot := 0
	for i := range ordered {
		if ordered[i].Rank == shuffled[i].Rank && ordered[i].Suit == shuffled[i].Suit {
			sameSpot++
		}
	}
	assert.Less(t, sameSpot, len(ordered), "shuffle left the deck in construction order")
}

func TestLookupResolvesEveryCard(t *testing.T) {
	cards := NewFactory(true, nil).Build()
	table := Lookup(cards)
	require.Len(t, table, len(cards))
	for _, c := range cards {
		got, ok := table[c.ID]
		require.True(t, ok)
		assert.Equal(t, c, got)
	}
}

func TestApplyPredefinedArrangesFront(t *testing.T) {
	cards := NewFactory(true, nil).Build()
	arranged, err := ApplyPredefined(cards, [][]CardSpec{
		{{Rank: models.RankQueen, Suit: models.SuitSpades}, {Rank: models.RankTwo}},
		{{Rank: models.RankJoker}},
	})
	require.NoError(t, err)
	require.Len(t, arranged, 54)

	assert.Equal(t, models.RankQueen, arranged[0].Rank)
	assert.Equal(t, models.SuitSpades, arranged[0].Suit)
	assert.Equal(t, models.RankTwo, arranged[1].Rank)
	assert.True(t, arranged[2].IsJoker())

	// No card was lost or duplicated by the rearrangement.
	ids := make(map[uuid.UUID]bool, len(arranged))
	for _, c := range arranged {
		assert.False(t, ids[c.ID])
		ids[c.ID] = true
	}
}

func TestApplyPredefinedConsumesDuplicateRanks(t *testing.T) {
	cards := NewFactory(true, nil).Build()
	arranged, err := ApplyPredefined(cards, [][]CardSpec{
		{{Rank: models.RankEight}},
		{{Rank: models.RankEight}},
	})
	require.NoError(t, err)

	// Two distinct eights, one per seat.
	assert.Equal(t, models.RankEight, arranged[0].Rank)
	assert.Equal(t, models.RankEight, arranged[1].Rank)
	assert.NotEqual(t, arranged[0].ID, arranged[1].ID)
}

func TestApplyPredefinedRejectsImpossibleSpec(t *testing.T) {
	cards := NewFactory(true, nil).Build()

	// Only two jokers exist.
	_, err := ApplyPredefined(cards, [][]CardSpec{
		{{Rank: models.RankJoker}, {Rank: models.RankJoker}, {Rank: models.RankJoker}},
	})
	require.Error(t, err)

	_, err = ApplyPredefined(cards, [][]CardSpec{
		{{Rank: models.RankAce, Suit: models.SuitRedJoker}},
	})
	require.Error(t, err)
}
