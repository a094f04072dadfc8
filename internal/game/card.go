package game

import (
	"fmt"
	"strings"
)

type Rank uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankNames = [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

func (r Rank) String() string {
	if int(r) < len(rankNames) {
		return rankNames[r]
	}
	return "?"
}

// Value is the blackjack value of the rank with aces counted high.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r) + 2
	}
}

type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

var suitSymbols = [...]string{"♥", "♦", "♣", "♠"}

var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) String() string {
	if int(s) < len(suitSymbols) {
		return suitSymbols[s]
	}
	return "?"
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

func (c Card) Red() bool {
	return c.Suit == Hearts || c.Suit == Diamonds
}

// ParseCard parses the String form of a card, e.g. "10♥" or "A♠".
func ParseCard(s string) (Card, error) {
	for si, sym := range suitSymbols {
		rank, ok := strings.CutSuffix(s, sym)
		if !ok {
			continue
		}
		for ri, name := range rankNames {
			if rank == name {
				return Card{Rank: Rank(ri), Suit: Suit(si)}, nil
			}
		}
		break
	}
	return Card{}, fmt.Errorf("invalid card %q", s)
}

func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
