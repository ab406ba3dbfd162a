// internal/game/move.go
package game

import "fmt"

// Move is a player's turn action. It is either Reveal or Skip.
type Move interface {
	moveKind() string
}

// Reveal moves a same-colored set of cards from the hand to the table.
type Reveal struct {
	CardIDs []string
}

// Skip passes the turn without revealing.
type Skip struct{}

func (Reveal) moveKind() string { return "reveal" }
func (Skip) moveKind() string   { return "skip" }

// MoveName returns the wire name of m ("reveal" or "skip").
func MoveName(m Move) string {
	if m == nil {
		return ""
	}
	return m.moveKind()
}

// ParseMove converts a wire tag into a Move.
func ParseMove(kind string, cardIDs []string) (Move, error) {
	switch kind {
	case "reveal":
		ids := make([]string, len(cardIDs))
		copy(ids, cardIDs)
		return Reveal{CardIDs: ids}, nil
	case "skip":
		return Skip{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown move %q", ErrInvalidState, kind)
	}
}
