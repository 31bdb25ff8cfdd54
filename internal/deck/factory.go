// internal/deck/factory.go
package deck

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/sil-vella/recall/internal/models"
)

// Factory builds the full Recall deck: 52 standard cards plus two
// jokers. In testing mode the deck keeps its construction order (suits
// H, D, C, S; ranks A..K; jokers last) so tests can predict every deal.
type Factory struct {
	Testing bool
	rng     *rand.Rand
}

// NewFactory returns a factory. rng may be nil, in which case a
// time-seeded source is used.
func NewFactory(testing bool, rng *rand.Rand) *Factory {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Factory{Testing: testing, rng: rng}
}

// Build creates a fresh deck with new card ids. The returned slice is
// shuffled unless the factory is in testing mode.
func (f *Factory) Build() []models.Card {
	suits := []models.Suit{models.SuitHearts, models.SuitDiamonds, models.SuitClubs, models.SuitSpades}
	ranks := []models.Rank{
		models.RankAce, models.RankTwo, models.RankThree, models.RankFour,
		models.RankFive, models.RankSix, models.RankSeven, models.RankEight,
		models.RankNine, models.RankTen, models.RankJack, models.RankQueen,
		models.RankKing,
	}

	cards := make([]models.Card, 0, len(suits)*len(ranks)+2)
	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, models.Card{
				ID:    uuid.New(),
				Suit:  suit,
				Rank:  rank,
				Value: models.PointValue(rank),
				Power: models.PowerForRank(rank),
			})
		}
	}
	for _, suit := range []models.Suit{models.SuitRedJoker, models.SuitBlkJoker} {
		cards = append(cards, models.Card{
			ID:   uuid.New(),
			Suit: suit,
			Rank: models.RankJoker,
		})
	}

	if !f.Testing {
		f.rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
	}
	return cards
}

// Lookup builds the immutable id -> card table used to resolve id-only
// hand entries for the lifetime of a match.
func Lookup(cards []models.Card) map[uuid.UUID]models.Card {
	table := make(map[uuid.UUID]models.Card, len(cards))
	for _, c := range cards {
		table[c.ID] = c
	}
	return table
}
