package game

import "strings"

const (
	// BlackjackScore is the best possible total.
	BlackjackScore = 21

	// DealerStandsOn is the lowest total the dealer stands on, soft or hard.
	DealerStandsOn = 17
)

// total returns the best total and the number of aces still counted as 11.
func total(cards []Card) (int, int) {
	score := 0
	aces := 0

	for _, c := range cards {
		score += c.Rank.Value()
		if c.Rank == Ace {
			aces++
		}
	}

	for score > BlackjackScore && aces > 0 {
		score -= 10
		aces--
	}

	return score, aces
}

// Score computes the blackjack total of cards, demoting aces from 11 to 1
// while the hand would otherwise bust.
func Score(cards []Card) int {
	score, _ := total(cards)
	return score
}

// IsSoft reports whether an ace is still counted as 11.
func IsSoft(cards []Card) bool {
	_, soft := total(cards)
	return soft > 0
}

// IsBlackjack reports a two-card 21.
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && Score(cards) == BlackjackScore
}

func IsBust(cards []Card) bool {
	return Score(cards) > BlackjackScore
}

// Hand is the ordered set of cards held by one seat.
type Hand []Card

func (h Hand) Score() int        { return Score(h) }
func (h Hand) IsSoft() bool      { return IsSoft(h) }
func (h Hand) IsBlackjack() bool { return IsBlackjack(h) }
func (h Hand) IsBust() bool      { return IsBust(h) }

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
