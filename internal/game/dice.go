package game

import (
	"fmt"
	"strings"
)

type BetType string

const (
	BetHigh BetType = "high"
	BetLow  BetType = "low"
	BetEven BetType = "even"
	BetOdd  BetType = "odd"
)

var BetTypes = []BetType{BetHigh, BetLow, BetEven, BetOdd}

// ParseBetType accepts a bet type name in any case.
func ParseBetType(s string) (BetType, error) {
	bt := BetType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BetTypes {
		if bt == known {
			return bt, nil
		}
	}
	return "", fmt.Errorf("%w: unknown dice bet %q", ErrInvalidBet, s)
}

// Multiplier is the payout factor applied to a winning stake.
func (bt BetType) Multiplier() float64 {
	switch bt {
	case BetHigh, BetLow:
		return 1.5
	case BetEven, BetOdd:
		return 1.8
	default:
		return 0
	}
}

// Wins reports whether total satisfies the bet. High is 11 to 18, which two
// dice can only reach with 11 or 12. Even excludes 2 and 12.
func (bt BetType) Wins(total int) bool {
	switch bt {
	case BetHigh:
		return total >= 11 && total <= 18
	case BetLow:
		return total >= 3 && total <= 10
	case BetEven:
		return total%2 == 0 && total != 2 && total != 12
	case BetOdd:
		return total%2 == 1
	default:
		return false
	}
}

type DiceResult struct {
	Die1    int     `json:"die1"`
	Die2    int     `json:"die2"`
	Total   int     `json:"total"`
	BetType BetType `json:"bet_type"`
	Bet     int     `json:"bet"`
	Won     bool    `json:"won"`
	Payout  int     `json:"payout"`
	Balance int     `json:"balance"`
}

var diceFaces = [...]string{"⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

func Face(n int) string {
	if n < 1 || n > 6 {
		return "?"
	}
	return diceFaces[n-1]
}

// Dice is the stateless two-dice game. It shares the ledger and limits of
// the blackjack table.
type Dice struct {
	Ledger Ledger
	Rand   Rand
	MinBet int
	MaxBet int
}

// Roll debits amount, rolls two dice and credits floor(amount * multiplier)
// on a win.
func (d *Dice) Roll(userID int64, betType BetType, amount int) (DiceResult, error) {
	minBet := d.MinBet
	if minBet <= 0 {
		minBet = DefaultMinBet
	}
	if amount <= 0 || amount < minBet {
		return DiceResult{}, fmt.Errorf("%w: minimum bet is %d", ErrInvalidBet, minBet)
	}
	if d.MaxBet > 0 && amount > d.MaxBet {
		return DiceResult{}, fmt.Errorf("%w: maximum bet is %d", ErrInvalidBet, d.MaxBet)
	}
	if betType.Multiplier() == 0 {
		return DiceResult{}, fmt.Errorf("%w: unknown dice bet %q", ErrInvalidBet, betType)
	}

	balance, err := d.Ledger.Balance(userID)
	if err != nil {
		return DiceResult{}, fmt.Errorf("read balance: %w", err)
	}
	if amount > balance {
		return DiceResult{}, fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientFunds, amount, balance)
	}
	if balance, err = d.Ledger.AdjustBalance(userID, -amount); err != nil {
		return DiceResult{}, fmt.Errorf("debit bet: %w", err)
	}

	res := DiceResult{
		Die1:    d.Rand.Intn(6) + 1,
		Die2:    d.Rand.Intn(6) + 1,
		BetType: betType,
		Bet:     amount,
		Balance: balance,
	}
	res.Total = res.Die1 + res.Die2
	res.Won = betType.Wins(res.Total)

	if res.Won {
		// Truncation floors because the product is positive.
		res.Payout = int(float64(amount) * betType.Multiplier())
		if res.Balance, err = d.Ledger.AdjustBalance(userID, res.Payout); err != nil {
			return res, fmt.Errorf("credit payout %d: %w", res.Payout, err)
		}
	}
	return res, nil
}
