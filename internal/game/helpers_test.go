package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type memLedger struct {
	balances map[int64]int
}

func newMemLedger(userID int64, balance int) *memLedger {
	return &memLedger{balances: map[int64]int{userID: balance}}
}

func (l *memLedger) Balance(userID int64) (int, error) {
	b, ok := l.balances[userID]
	if !ok {
		return 0, ErrUnknownUser
	}
	return b, nil
}

func (l *memLedger) AdjustBalance(userID int64, delta int) (int, error) {
	b, ok := l.balances[userID]
	if !ok {
		return 0, ErrUnknownUser
	}
	if b+delta < 0 {
		return b, ErrInsufficientFunds
	}
	l.balances[userID] = b + delta
	return b + delta, nil
}

func parseCards(t *testing.T, names ...string) []Card {
	t.Helper()
	cards := make([]Card, len(names))
	for i, n := range names {
		c, err := ParseCard(n)
		require.NoError(t, err)
		cards[i] = c
	}
	return cards
}

// stackedShoe deals names in the order given. Initial deal order is
// player, dealer (hole), player, dealer.
func stackedShoe(t *testing.T, names ...string) *Shoe {
	t.Helper()
	cards := parseCards(t, names...)
	for i, j := 0, len(cards)-1; i < j; i, j = i+1, j-1 {
		cards[i], cards[j] = cards[j], cards[i]
	}
	return NewShoeWithCards(rand.New(rand.NewSource(42)), cards)
}

type recorder struct {
	events []Event
}

func (r *recorder) HandleEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
