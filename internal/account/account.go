// Package account stores users, their balances and round statistics.
//
// Repositories implement game.Ledger, so a round debits stakes and credits
// payouts straight into the user's persisted balance.
package account

import (
	"errors"

	"casino/internal/game"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidUsername    = errors.New("username must be 3 to 32 characters")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Balance      int    `json:"balance"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Pushes       int    `json:"pushes"`
	Games        int    `json:"games"`
	LastBet      int    `json:"last_bet"`
}

func (u *User) WinRate() float64 {
	if u.Games == 0 {
		return 0
	}
	return float64(u.Wins) / float64(u.Games) * 100
}

// Stats is a leaderboard row.
type Stats struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Balance  int     `json:"balance"`
	Wins     int     `json:"wins"`
	Games    int     `json:"games"`
	WinRate  float64 `json:"win_rate"`
}

type Repository interface {
	game.Ledger

	Create(username, passwordHash string, balance int) (*User, error)
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	RecordRound(id int64, outcome game.Outcome, stake int) error
	Top(limit int) ([]Stats, error)
}

// tally maps an outcome to win/loss/push counter increments.
func tally(outcome game.Outcome) (wins, losses, pushes int) {
	switch {
	case outcome.PlayerWins():
		return 1, 0, 0
	case outcome.PlayerLoses():
		return 0, 1, 0
	case outcome == game.OutcomePush:
		return 0, 0, 1
	default:
		return 0, 0, 0
	}
}
