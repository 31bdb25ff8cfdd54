// internal/models/card.go
package models

import "github.com/google/uuid"

// Suit is a single-letter suit code. Jokers carry their own pseudo-suits
// so that two jokers remain distinct cards.
type Suit string

const (
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
	SuitSpades   Suit = "S"
	SuitRedJoker Suit = "R"
	SuitBlkJoker Suit = "B"
)

// Rank is the face rank of a card. Ten is spelled out to avoid any
// ambiguity with single-letter codes on the wire.
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankJoker Rank = "JOKER"
)

// Power tags the special ability a card triggers when played.
type Power string

const (
	PowerNone Power = ""
	PowerPeek Power = "peek" // Queen: reveal any single card to the player
	PowerSwap Power = "swap" // Jack: swap any two cards between hands
)

// Card is an immutable value. Identity is the ID, never (suit, rank):
// jokers and house decks may carry duplicate rank/suit combinations.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Suit  Suit      `json:"suit"`
	Rank  Rank      `json:"rank"`
	Value int       `json:"value"`
	Power Power     `json:"power,omitempty"`
}

// IsJoker reports whether the card is one of the two jokers.
func (c Card) IsJoker() bool {
	return c.Rank == RankJoker
}

// pointValues maps ranks to their scoring values. Jokers are zero.
var pointValues = map[Rank]int{
	RankAce: 1, RankTwo: 2, RankThree: 3, RankFour: 4, RankFive: 5,
	RankSix: 6, RankSeven: 7, RankEight: 8, RankNine: 9, RankTen: 10,
	RankJack: 11, RankQueen: 12, RankKing: 13, RankJoker: 0,
}

// PointValue returns the scoring value for a rank.
func PointValue(r Rank) int {
	return pointValues[r]
}

// rankPriority is the tie-break order used when two cards have equal
// point value: ace first, then 2..10, then king, queen, jack. Lower
// index wins the comparison.
var rankPriority = map[Rank]int{
	RankAce: 0, RankTwo: 1, RankThree: 2, RankFour: 3, RankFive: 4,
	RankSix: 5, RankSeven: 6, RankEight: 7, RankNine: 8, RankTen: 9,
	RankKing: 10, RankQueen: 11, RankJack: 12,
}

// RankPriority returns the tie-break index for a rank. Unlisted ranks
// (jokers) sort last.
func RankPriority(r Rank) int {
	if p, ok := rankPriority[r]; ok {
		return p
	}
	return len(rankPriority)
}

// PowerForRank maps a rank to the special power it triggers, if any.
func PowerForRank(r Rank) Power {
	switch r {
	case RankQueen:
		return PowerPeek
	case RankJack:
		return PowerSwap
	default:
		return PowerNone
	}
}
