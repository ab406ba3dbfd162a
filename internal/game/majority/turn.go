// internal/game/majority/turn.go
package majority

import (
	"fmt"

	"github.com/jason-s-yu/partygames/internal/game"
)

// PlayTurn applies the current player's move. When every player has passed
// in a row the round is scored and the returned state is finished.
func PlayTurn(s GameState, playerID string, move game.Move) (GameState, error) {
	if s.Status != game.StatusPlaying {
		return GameState{}, fmt.Errorf("%w: game not playing", game.ErrInvalidState)
	}
	idx := s.CurrentPlayerIndex
	if idx < 0 || idx >= len(s.Players) {
		return GameState{}, fmt.Errorf("%w: turn pointer %d out of range", game.ErrInvalidState, idx)
	}
	if s.Players[idx].ID != playerID {
		return GameState{}, game.ErrNotYourTurn
	}

	next := s.Clone()
	current := &next.Players[idx]

	switch m := move.(type) {
	case game.Skip:
		next.ConsecutivePasses++
		current.HasPassed = true
	case game.Reveal:
		revealed, remaining, err := takeFromHand(current.Hand, m.CardIDs)
		if err != nil {
			return GameState{}, err
		}
		current.Hand = remaining
		current.RevealedCards = append(current.RevealedCards, revealed...)
		next.ConsecutivePasses = 0
		for i := range next.Players {
			next.Players[i].HasPassed = false
		}
	default:
		return GameState{}, fmt.Errorf("%w: unsupported move %T", game.ErrInvalidState, move)
	}

	if next.ConsecutivePasses >= len(next.Players) {
		return CalculateScore(next), nil
	}
	next.CurrentPlayerIndex = (idx + 1) % len(next.Players)
	return next, nil
}

// takeFromHand resolves ids against hand. Revealed cards come back in the
// order ids lists them; the remaining hand keeps its original order.
func takeFromHand(hand []Card, ids []string) (revealed, remaining []Card, err error) {
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("%w: must select cards to reveal", game.ErrInvalidCards)
	}

	pos := make(map[string]int, len(hand))
	for i, c := range hand {
		pos[c.ID] = i
	}

	picked := make(map[int]bool, len(ids))
	revealed = make([]Card, 0, len(ids))
	for _, id := range ids {
		i, ok := pos[id]
		if !ok || picked[i] {
			return nil, nil, fmt.Errorf("%w: card %s is not in hand", game.ErrInvalidCards, id)
		}
		picked[i] = true
		revealed = append(revealed, hand[i])
	}

	color := revealed[0].Color
	for _, c := range revealed[1:] {
		if c.Color != color {
			return nil, nil, fmt.Errorf("%w: all revealed cards must be %s", game.ErrColorMismatch, color)
		}
	}

	remaining = make([]Card, 0, len(hand)-len(revealed))
	for i, c := range hand {
		if !picked[i] {
			remaining = append(remaining, c)
		}
	}
	return revealed, remaining, nil
}
