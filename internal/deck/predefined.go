// internal/deck/predefined.go
package deck

import (
	"fmt"

	"github.com/sil-vella/recall/internal/models"
)

// CardSpec names a card by rank and optional suit. An empty suit
// matches the first unused card of that rank.
type CardSpec struct {
	Rank models.Rank `json:"rank"`
	Suit models.Suit `json:"suit,omitempty"`
}

// ApplyPredefined reorders a built deck so that seat 0's requested cards
// come first, then seat 1's, and so on. Normal dealing then produces
// exactly the configured hands; the rest of the deck keeps its relative
// order. Used by tests and tutorials, overridden by random dealing when
// no hands are configured.
func ApplyPredefined(cards []models.Card, hands [][]CardSpec) ([]models.Card, error) {
	used := make(map[int]bool, len(cards))
	front := make([]models.Card, 0, len(cards))

	for seat, specs := range hands {
		for _, spec := range specs {
			idx := -1
			for i, c := range cards {
				if used[i] || c.Rank != spec.Rank {
					continue
				}
				if spec.Suit != "" && c.Suit != spec.Suit {
					continue
				}
				idx = i
				break
			}
			if idx < 0 {
				return nil, fmt.Errorf("predefined hand for seat %d: no unused card matches %s%s", seat, spec.Rank, spec.Suit)
			}
			used[idx] = true
			front = append(front, cards[idx])
		}
	}

	for i, c := range cards {
		if !used[i] {
			front = append(front, c)
		}
	}
	return front, nil
}
