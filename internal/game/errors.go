package game

import (
	"errors"
	"fmt"
)

// ErrInvalidBet indicates a wager that is not a positive integer within the table limits.
var ErrInvalidBet = errors.New("invalid bet")

// ErrInsufficientFunds indicates a bet, double or debit larger than the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrIllegalAction indicates an action invoked outside the state that allows it.
var ErrIllegalAction = errors.New("illegal action")

// ErrUnknownUser indicates the ledger has no account for the user.
var ErrUnknownUser = errors.New("unknown user")

// ActionError reports which action was rejected and in which state.
type ActionError struct {
	Action string
	State  State
	Reason string
}

func (e *ActionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s not allowed in %s: %s", e.Action, e.State, e.Reason)
	}
	return fmt.Sprintf("%s not allowed in %s", e.Action, e.State)
}

func (e *ActionError) Unwrap() error {
	return ErrIllegalAction
}

func illegal(action string, state State) error {
	return &ActionError{Action: action, State: state}
}
