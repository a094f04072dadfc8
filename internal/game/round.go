package game

import (
	"fmt"
)

type State int

const (
	StateIdle State = iota
	StateBetPlaced
	StatePlayerTurn
	StateDealerTurn
	StateSettled
)

var stateNames = [...]string{"idle", "bet_placed", "player_turn", "dealer_turn", "settled"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Outcome is the settlement tag of a finished round.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeBust
	OutcomeLose
	OutcomePush
	OutcomeWin
	OutcomeDealerBust
)

var outcomeNames = [...]string{"", "bust", "lose", "push", "win", "dealer_bust"}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for i, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// PlayerWins reports outcomes that pay the player twice the bet.
func (o Outcome) PlayerWins() bool {
	return o == OutcomeWin || o == OutcomeDealerBust
}

// PlayerLoses reports outcomes where the stake is forfeited.
func (o Outcome) PlayerLoses() bool {
	return o == OutcomeBust || o == OutcomeLose
}

// Payout is what settlement credits back for a bet.
func (o Outcome) Payout(bet int) int {
	switch {
	case o.PlayerWins():
		return bet * 2
	case o == OutcomePush:
		return bet
	default:
		return 0
	}
}

// Ledger holds user balances. The round debits stakes and credits payouts
// through it; an adjustment that would leave a negative balance must fail
// with ErrInsufficientFunds, an unknown user with ErrUnknownUser.
type Ledger interface {
	Balance(userID int64) (int, error)
	AdjustBalance(userID int64, delta int) (int, error)
}

const DefaultMinBet = 10

type RoundOption func(*Round)

func WithMinBet(n int) RoundOption {
	return func(r *Round) { r.minBet = n }
}

// WithMaxBet sets the largest accepted wager. Zero means no limit.
func WithMaxBet(n int) RoundOption {
	return func(r *Round) { r.maxBet = n }
}

func WithListener(l Listener) RoundOption {
	return func(r *Round) { r.listener = l }
}

// Round is the blackjack state machine for one user:
//
//	idle -> bet_placed -> player_turn -> dealer_turn -> settled -> (reset) idle
//
// Every action either completes its whole transition or returns an error and
// leaves the round untouched. A Round is not safe for concurrent use.
type Round struct {
	userID   int64
	ledger   Ledger
	shoe     *Shoe
	listener Listener
	minBet   int
	maxBet   int

	state    State
	bet      int
	doubled  bool
	revealed bool
	player   Hand
	dealer   Hand
	outcome  Outcome
	payout   int
}

// NewRound creates an idle round for userID drawing from shoe. The shoe
// outlives individual rounds.
func NewRound(userID int64, ledger Ledger, shoe *Shoe, opts ...RoundOption) *Round {
	if ledger == nil {
		panic("ledger is required for round creation")
	}
	if shoe == nil {
		panic("shoe is required for round creation")
	}

	r := &Round{
		userID:   userID,
		ledger:   ledger,
		shoe:     shoe,
		listener: nopListener{},
		minBet:   DefaultMinBet,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.listener == nil {
		r.listener = nopListener{}
	}

	r.emit(Event{Type: EventBettingOpened})
	return r
}

func (r *Round) emit(e Event) {
	r.listener.HandleEvent(e)
}

// ValidateBet checks amount against the table limits only.
func (r *Round) ValidateBet(amount int) error {
	if amount <= 0 || amount < r.minBet {
		return fmt.Errorf("%w: minimum bet is %d", ErrInvalidBet, r.minBet)
	}
	if r.maxBet > 0 && amount > r.maxBet {
		return fmt.Errorf("%w: maximum bet is %d", ErrInvalidBet, r.maxBet)
	}
	return nil
}

// PlaceBet debits amount, deals two cards each (player first, dealer's
// first card face down) and hands the turn to the player. A two-card 21
// stands immediately.
func (r *Round) PlaceBet(amount int) error {
	if r.state != StateIdle {
		return illegal("bet", r.state)
	}
	if err := r.ValidateBet(amount); err != nil {
		return err
	}

	balance, err := r.ledger.Balance(r.userID)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	if amount > balance {
		return fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientFunds, amount, balance)
	}
	if _, err := r.ledger.AdjustBalance(r.userID, -amount); err != nil {
		return fmt.Errorf("debit bet: %w", err)
	}

	r.bet = amount
	r.state = StateBetPlaced
	r.emit(Event{Type: EventBettingClosed, Bet: amount})

	r.deal(SeatPlayer, true)
	r.deal(SeatDealer, false)
	r.deal(SeatPlayer, true)
	r.deal(SeatDealer, true)
	r.emit(Event{Type: EventScoreUpdated, Seat: SeatPlayer, Score: r.player.Score()})

	r.state = StatePlayerTurn
	if r.player.Score() == BlackjackScore {
		return r.stand()
	}
	return nil
}

// Hit deals one card to the player. Going over 21 settles the round as a bust.
func (r *Round) Hit() error {
	if r.state != StatePlayerTurn {
		return illegal("hit", r.state)
	}

	r.deal(SeatPlayer, true)
	score := r.player.Score()
	r.emit(Event{Type: EventScoreUpdated, Seat: SeatPlayer, Score: score})

	if score > BlackjackScore {
		return r.settle(OutcomeBust)
	}
	return nil
}

// Stand ends the player's turn and plays the dealer out.
func (r *Round) Stand() error {
	if r.state != StatePlayerTurn {
		return illegal("stand", r.state)
	}
	return r.stand()
}

// DoubleDown doubles the stake on the first two cards, takes exactly one more
// card and stands unless that card busts the hand.
func (r *Round) DoubleDown() error {
	if r.state != StatePlayerTurn {
		return illegal("double", r.state)
	}
	if len(r.player) != 2 {
		return &ActionError{Action: "double", State: r.state, Reason: "only allowed on the first two cards"}
	}

	balance, err := r.ledger.Balance(r.userID)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	if r.bet > balance {
		return fmt.Errorf("%w: double needs %d, balance is %d", ErrInsufficientFunds, r.bet, balance)
	}
	if _, err := r.ledger.AdjustBalance(r.userID, -r.bet); err != nil {
		return fmt.Errorf("debit double: %w", err)
	}

	r.bet *= 2
	r.doubled = true
	r.emit(Event{Type: EventDoubled, Bet: r.bet})

	r.deal(SeatPlayer, true)
	score := r.player.Score()
	r.emit(Event{Type: EventScoreUpdated, Seat: SeatPlayer, Score: score})

	if score > BlackjackScore {
		return r.settle(OutcomeBust)
	}
	return r.stand()
}

// Reset clears a settled round and reopens betting. The shoe keeps its
// remaining cards unless it is empty.
func (r *Round) Reset() error {
	if r.state != StateSettled {
		return illegal("reset", r.state)
	}
	r.ForceReset()
	return nil
}

// ForceReset returns to idle from any state. A stake already debited for an
// unfinished round is forfeited.
func (r *Round) ForceReset() {
	r.state = StateIdle
	r.bet = 0
	r.doubled = false
	r.revealed = false
	r.player = nil
	r.dealer = nil
	r.outcome = OutcomeNone
	r.payout = 0
	r.shoe.Restock()
	r.emit(Event{Type: EventBettingOpened})
}

func (r *Round) deal(seat Seat, faceUp bool) {
	card := r.shoe.Draw()
	if seat == SeatDealer {
		r.dealer = append(r.dealer, card)
	} else {
		r.player = append(r.player, card)
	}
	r.emit(Event{Type: EventCardDealt, Seat: seat, Card: &card, FaceUp: faceUp})
}

func (r *Round) reveal() {
	if r.revealed || len(r.dealer) == 0 {
		return
	}
	r.revealed = true
	hole := r.dealer[0]
	r.emit(Event{Type: EventHoleRevealed, Seat: SeatDealer, Card: &hole, FaceUp: true})
	r.emit(Event{Type: EventScoreUpdated, Seat: SeatDealer, Score: r.dealer.Score()})
}

func (r *Round) stand() error {
	r.state = StateDealerTurn
	r.reveal()

	for r.dealer.Score() < DealerStandsOn {
		r.deal(SeatDealer, true)
		r.emit(Event{Type: EventScoreUpdated, Seat: SeatDealer, Score: r.dealer.Score()})
	}

	dealerScore := r.dealer.Score()
	playerScore := r.player.Score()

	switch {
	case dealerScore > BlackjackScore:
		return r.settle(OutcomeDealerBust)
	case dealerScore > playerScore:
		return r.settle(OutcomeLose)
	case dealerScore < playerScore:
		return r.settle(OutcomeWin)
	default:
		return r.settle(OutcomePush)
	}
}

func (r *Round) settle(outcome Outcome) error {
	r.reveal()
	r.state = StateSettled
	r.outcome = outcome
	r.payout = outcome.Payout(r.bet)

	var err error
	if r.payout > 0 {
		if _, creditErr := r.ledger.AdjustBalance(r.userID, r.payout); creditErr != nil {
			err = fmt.Errorf("credit payout %d: %w", r.payout, creditErr)
		}
	}

	r.emit(Event{Type: EventRoundSettled, Outcome: outcome, Bet: r.bet, Payout: r.payout})
	return err
}

func (r *Round) UserID() int64    { return r.userID }
func (r *Round) State() State     { return r.state }
func (r *Round) Bet() int         { return r.bet }
func (r *Round) Doubled() bool    { return r.doubled }
func (r *Round) Outcome() Outcome { return r.outcome }
func (r *Round) Payout() int      { return r.payout }
func (r *Round) MinBet() int      { return r.minBet }
func (r *Round) MaxBet() int      { return r.maxBet }
func (r *Round) Shoe() *Shoe      { return r.shoe }

func (r *Round) PlayerHand() Hand { return append(Hand(nil), r.player...) }

// DealerHand returns a copy of the dealer's cards including the hole card.
func (r *Round) DealerHand() Hand { return append(Hand(nil), r.dealer...) }

// CanDouble reports whether DoubleDown would pass the state guard.
func (r *Round) CanDouble() bool {
	return r.state == StatePlayerTurn && len(r.player) == 2
}

// HoleHidden reports whether renderers must keep the dealer's first card face down.
func (r *Round) HoleHidden() bool {
	return len(r.dealer) > 0 && !r.revealed
}

// View is a render-safe snapshot of a round. While the hole card is hidden
// Dealer holds only the face-up cards and DealerScore is zero.
type View struct {
	State       State   `json:"state"`
	Bet         int     `json:"bet"`
	Doubled     bool    `json:"doubled"`
	Player      Hand    `json:"player"`
	PlayerScore int     `json:"player_score"`
	Dealer      Hand    `json:"dealer"`
	HoleHidden  bool    `json:"hole_hidden"`
	DealerScore int     `json:"dealer_score,omitempty"`
	Outcome     Outcome `json:"outcome,omitempty"`
	Payout      int     `json:"payout"`
	CanDouble   bool    `json:"can_double"`
}

func (r *Round) View() View {
	v := View{
		State:       r.state,
		Bet:         r.bet,
		Doubled:     r.doubled,
		Player:      r.PlayerHand(),
		PlayerScore: r.player.Score(),
		HoleHidden:  r.HoleHidden(),
		Outcome:     r.outcome,
		Payout:      r.payout,
		CanDouble:   r.CanDouble(),
	}
	if v.HoleHidden {
		v.Dealer = append(Hand(nil), r.dealer[1:]...)
	} else {
		v.Dealer = r.DealerHand()
		if len(v.Dealer) > 0 {
			v.DealerScore = v.Dealer.Score()
		}
	}
	return v
}
