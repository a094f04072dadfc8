package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"casino/internal/account"
	"casino/internal/game"
	"casino/internal/logging"
	"casino/internal/random"
)

var ErrSessionNotFound = errors.New("session not found")

type Option func(*Manager)

func WithLimits(minBet, maxBet int) Option {
	return func(m *Manager) {
		m.minBet = minBet
		m.maxBet = maxBet
	}
}

// WithSeed derives every session's randomness from seed, making shuffles
// and rolls reproducible. Zero keeps crypto seeding.
func WithSeed(seed int64) Option {
	return func(m *Manager) {
		if seed != 0 {
			m.seeder = rand.New(rand.NewSource(seed))
		}
	}
}

// WithRandSource overrides how each session's randomness is created.
func WithRandSource(fn func() (game.Rand, error)) Option {
	return func(m *Manager) { m.newRand = fn }
}

func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithIdleTimeout closes sessions unused for d when Sweep runs. Zero keeps
// sessions until Close.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager tracks open sessions by ID. A user has at most one session.
type Manager struct {
	repo   account.Repository
	logger *log.Logger
	minBet int
	maxBet int

	newRand func() (game.Rand, error)
	seeder  *rand.Rand

	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[int64]string
}

func NewManager(repo account.Repository, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		logger:   logging.Discard(),
		minBet:   game.DefaultMinBet,
		now:      time.Now,
		sessions: make(map[string]*Session),
		byUser:   make(map[int64]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithPrefix("session")
	if m.newRand == nil {
		m.newRand = m.seededRand
	}
	return m
}

// seededRand is called with m.mu held.
func (m *Manager) seededRand() (game.Rand, error) {
	var seed int64
	if m.seeder != nil {
		seed = m.seeder.Int63()
	}
	return random.New(seed)
}

// Open returns the user's live session, starting one with a fresh UUID when the
// user has none. Logging in again resumes the same round.
func (m *Manager) Open(user *account.User) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byUser[user.ID]; ok {
		if s, ok := m.sessions[id]; ok {
			s.touch(m.now())
			return s, nil
		}
	}
	return m.open(uuid.NewString(), user)
}

// OpenWithID returns the session stored under id, creating it for user when
// absent. Telegram chats use a stable id so the round survives between
// messages.
func (m *Manager) OpenWithID(id string, user *account.User) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		return s, nil
	}
	return m.open(id, user)
}

func (m *Manager) open(id string, user *account.User) (*Session, error) {
	if prev, ok := m.byUser[user.ID]; ok {
		m.closeLocked(prev)
	}

	rng, err := m.newRand()
	if err != nil {
		return nil, err
	}

	s := newSession(id, user, m.repo, rng, m.minBet, m.maxBet, m.logger)
	s.touch(m.now())
	m.sessions[id] = s
	m.byUser[user.ID] = id
	m.logger.Debug("session opened", "id", id, "user", user.Username)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Close ends the session. A round in progress is abandoned with its stake.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closeLocked(id) {
		return ErrSessionNotFound
	}
	return nil
}

func (m *Manager) closeLocked(id string) bool {
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	delete(m.sessions, id)
	if m.byUser[s.UserID] == id {
		delete(m.byUser, s.UserID)
	}
	s.closeSubscribers()
	m.logger.Debug("session closed", "id", id, "user", s.Username)
	return true
}

// Sweep closes sessions idle longer than the idle timeout and reports how
// many it closed. Sessions with an open event stream are kept.
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTimeout)
	closed := 0
	for id, s := range m.sessions {
		if s.LastUsed().After(cutoff) || s.subscribers() > 0 {
			continue
		}
		m.closeLocked(id)
		closed++
	}
	if closed > 0 {
		m.logger.Info("expired idle sessions", "count", closed)
	}
	return closed
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
