package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand returns its values in order; Intn(6) of v yields die face v+1.
type scriptedRand struct {
	vals []int
}

func (s *scriptedRand) Intn(n int) int {
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v % n
}

func rollWith(die1, die2 int) *scriptedRand {
	return &scriptedRand{vals: []int{die1 - 1, die2 - 1}}
}

func TestBetTypeWins(t *testing.T) {
	tests := []struct {
		bet  BetType
		wins []int
	}{
		{bet: BetHigh, wins: []int{11, 12}},
		{bet: BetLow, wins: []int{3, 4, 5, 6, 7, 8, 9, 10}},
		{bet: BetEven, wins: []int{4, 6, 8, 10}},
		{bet: BetOdd, wins: []int{3, 5, 7, 9, 11}},
	}

	for _, tt := range tests {
		t.Run(string(tt.bet), func(t *testing.T) {
			var got []int
			for total := 2; total <= 12; total++ {
				if tt.bet.Wins(total) {
					got = append(got, total)
				}
			}
			assert.Equal(t, tt.wins, got)
		})
	}
}

func TestParseBetType(t *testing.T) {
	bt, err := ParseBetType(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, BetHigh, bt)

	_, err = ParseBetType("seven")
	assert.ErrorIs(t, err, ErrInvalidBet)
}

func TestDiceRoll(t *testing.T) {
	t.Run("win pays floored multiplier", func(t *testing.T) {
		ledger := newMemLedger(testUser, 1000)
		d := &Dice{Ledger: ledger, Rand: rollWith(5, 6), MinBet: 10}

		res, err := d.Roll(testUser, BetHigh, 15)
		require.NoError(t, err)
		assert.Equal(t, 11, res.Total)
		assert.True(t, res.Won)
		assert.Equal(t, 22, res.Payout, "floor(15 * 1.5)")
		assert.Equal(t, 1007, res.Balance)
		assert.Equal(t, 1007, ledger.balances[testUser])
	})

	t.Run("even or odd pays 1.8", func(t *testing.T) {
		ledger := newMemLedger(testUser, 1000)
		d := &Dice{Ledger: ledger, Rand: rollWith(2, 1), MinBet: 10}

		res, err := d.Roll(testUser, BetOdd, 100)
		require.NoError(t, err)
		assert.True(t, res.Won)
		assert.Equal(t, 180, res.Payout)
		assert.Equal(t, 1080, ledger.balances[testUser])
	})

	t.Run("loss keeps the stake", func(t *testing.T) {
		ledger := newMemLedger(testUser, 1000)
		d := &Dice{Ledger: ledger, Rand: rollWith(6, 6), MinBet: 10}

		res, err := d.Roll(testUser, BetEven, 100)
		require.NoError(t, err)
		assert.Equal(t, 12, res.Total)
		assert.False(t, res.Won)
		assert.Zero(t, res.Payout)
		assert.Equal(t, 900, ledger.balances[testUser])
	})

	t.Run("rejects before debiting", func(t *testing.T) {
		ledger := newMemLedger(testUser, 50)
		d := &Dice{Ledger: ledger, Rand: rand.New(rand.NewSource(1)), MinBet: 10, MaxBet: 40}

		_, err := d.Roll(testUser, BetLow, 5)
		assert.ErrorIs(t, err, ErrInvalidBet)
		_, err = d.Roll(testUser, BetLow, 45)
		assert.ErrorIs(t, err, ErrInvalidBet)
		_, err = d.Roll(testUser, BetType("seven"), 20)
		assert.ErrorIs(t, err, ErrInvalidBet)

		d.MaxBet = 0
		_, err = d.Roll(testUser, BetLow, 60)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		_, err = d.Roll(42, BetLow, 20)
		assert.ErrorIs(t, err, ErrUnknownUser)

		assert.Equal(t, 50, ledger.balances[testUser])
	})

	t.Run("dice stay in range", func(t *testing.T) {
		ledger := newMemLedger(testUser, 1_000_000)
		d := &Dice{Ledger: ledger, Rand: rand.New(rand.NewSource(3)), MinBet: 10}
		for range 500 {
			res, err := d.Roll(testUser, BetOdd, 10)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Die1, 1)
			assert.LessOrEqual(t, res.Die1, 6)
			assert.GreaterOrEqual(t, res.Die2, 1)
			assert.LessOrEqual(t, res.Die2, 6)
		}
	})
}

func TestFace(t *testing.T) {
	assert.Equal(t, "⚀", Face(1))
	assert.Equal(t, "⚅", Face(6))
	assert.Equal(t, "?", Face(7))
}
