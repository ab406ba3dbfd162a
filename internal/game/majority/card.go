// internal/game/majority/card.go
package majority

import (
	"math/rand/v2"

	"github.com/jason-s-yu/partygames/internal/ident"
)

// Color is the suit of a color-majority card.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
	Purple Color = "purple"
)

// Colors lists every card color in deck order.
var Colors = []Color{Red, Blue, Green, Yellow, Purple}

// Card is immutable once dealt.
type Card struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
}

// NewDeck builds an unshuffled deck of CardsPerColor cards for each color.
func NewDeck() []Card {
	deck := make([]Card, 0, len(Colors)*CardsPerColor)
	for _, color := range Colors {
		for i := 0; i < CardsPerColor; i++ {
			deck = append(deck, Card{ID: ident.NewCardID(), Color: color})
		}
	}
	return deck
}

// ShuffledDeck returns a freshly built deck in random order.
func ShuffledDeck() []Card {
	deck := NewDeck()
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
