// internal/game/majority/scoring.go
package majority

import "github.com/jason-s-yu/partygames/internal/game"

// CalculateScore finishes a round. The colors tied for the highest revealed
// count win; every other revealed card costs PenaltyAmount, and a player who
// revealed nothing pays PenaltyAmount*NoRevealPenaltyMultiplier. The pot is
// split by winning-card count with floor division; the remainder is not
// paid out.
func CalculateScore(s GameState) GameState {
	next := s.Clone()
	next.Status = game.StatusFinished
	next.Winners = []Winner{}
	next.Losers = []Loser{}

	winning := winningColorSet(next)
	if len(winning) == 0 {
		return next
	}

	pot := 0
	for i := range next.Players {
		p := &next.Players[i]
		penalty := 0
		for _, c := range p.RevealedCards {
			if !winning[c.Color] {
				penalty += PenaltyAmount
			}
		}
		if len(p.RevealedCards) == 0 {
			penalty += PenaltyAmount * NoRevealPenaltyMultiplier
		}
		if penalty > 0 {
			p.Money -= penalty
			pot += penalty
			next.Losers = append(next.Losers, Loser{PlayerID: p.ID, AmountLost: penalty})
		}
	}

	winCounts := make([]int, len(next.Players))
	totalWin := 0
	for i, p := range next.Players {
		for _, c := range p.RevealedCards {
			if winning[c.Color] {
				winCounts[i]++
			}
		}
		totalWin += winCounts[i]
	}
	if totalWin == 0 {
		return next
	}

	for i := range next.Players {
		if winCounts[i] == 0 {
			continue
		}
		share := pot * winCounts[i] / totalWin
		next.Players[i].Money += share
		next.Winners = append(next.Winners, Winner{PlayerID: next.Players[i].ID, AmountWon: share})
	}
	return next
}

// WinningColors returns the colors tied for the highest revealed count, in
// deck order. It is empty when nothing was revealed.
func WinningColors(s GameState) []Color {
	winning := winningColorSet(s)
	var out []Color
	for _, color := range Colors {
		if winning[color] {
			out = append(out, color)
		}
	}
	return out
}

func winningColorSet(s GameState) map[Color]bool {
	tally := make(map[Color]int)
	for _, p := range s.Players {
		for _, c := range p.RevealedCards {
			tally[c.Color]++
		}
	}
	best := 0
	for _, n := range tally {
		if n > best {
			best = n
		}
	}
	winning := make(map[Color]bool)
	if best == 0 {
		return winning
	}
	for color, n := range tally {
		if n == best {
			winning[color] = true
		}
	}
	return winning
}
