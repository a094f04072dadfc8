// Package session binds an authenticated user to their blackjack round,
// shoe and dice table, and serializes every action on them.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"casino/internal/account"
	"casino/internal/game"
)

// subscriberBuffer is the number of events a subscriber may lag behind
// before further events are dropped for it.
const subscriberBuffer = 64

// Session is one logged-in user's table.
type Session struct {
	ID        string
	UserID    int64
	Username  string
	CreatedAt time.Time

	lastUsed atomic.Int64

	mu     sync.Mutex
	round  *game.Round
	dice   *game.Dice
	repo   account.Repository
	logger *log.Logger

	// stake is the wager placed for the current round before any double.
	stake int

	subMu   sync.Mutex
	subs    map[int]chan game.Event
	nextSub int
}

func newSession(id string, user *account.User, repo account.Repository, rng game.Rand, minBet, maxBet int, logger *log.Logger) *Session {
	s := &Session{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: time.Now(),
		repo:      repo,
		logger:    logger.With("user", user.Username),
		subs:      make(map[int]chan game.Event),
	}
	s.touch(s.CreatedAt)

	s.round = game.NewRound(user.ID, repo, game.NewShoe(rng),
		game.WithMinBet(minBet),
		game.WithMaxBet(maxBet),
		game.WithListener(s),
	)
	s.dice = &game.Dice{Ledger: repo, Rand: rng, MinBet: minBet, MaxBet: maxBet}
	return s
}

// Blackjack runs fn against the session's round while holding the session
// lock. The round must not be retained after fn returns.
func (s *Session) Blackjack(fn func(*game.Round) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.round)
}

func (s *Session) View() game.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.View()
}

// RollDice plays one dice round for the session's user.
func (s *Session) RollDice(betType game.BetType, amount int) (game.DiceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.dice.Roll(s.UserID, betType, amount)
	if err != nil {
		return res, err
	}
	s.logger.Debug("dice rolled", "bet_type", betType, "total", res.Total, "won", res.Won, "payout", res.Payout)
	return res, nil
}

func (s *Session) Balance() (int, error) {
	return s.repo.Balance(s.UserID)
}

// HandleEvent records settled rounds and forwards every event to
// subscribers. It runs inside the action holding s.mu.
func (s *Session) HandleEvent(e game.Event) {
	switch e.Type {
	case game.EventBettingOpened:
		s.stake = 0
	case game.EventBettingClosed:
		s.stake = e.Bet
	case game.EventRoundSettled:
		if err := s.repo.RecordRound(s.UserID, e.Outcome, s.stake); err != nil {
			s.logger.Error("failed to record round", "err", err)
		}
		s.logger.Info("round settled", "outcome", e.Outcome, "bet", e.Bet, "payout", e.Payout)
	}

	s.publish(e)
}

// Subscribe returns a channel receiving the session's events and a function
// that cancels the subscription. A subscriber that falls behind misses
// events rather than stalling play.
func (s *Session) Subscribe() (<-chan game.Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan game.Event, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Session) publish(e game.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.logger.Warn("subscriber buffer full, dropping event", "subscriber", id, "event", e.Type)
		}
	}
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// LastUsed is when the session was opened or last looked up.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// closeSubscribers ends every subscription, used when the session closes.
func (s *Session) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
