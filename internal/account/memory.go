package account

import (
	"fmt"
	"sort"
	"sync"

	"casino/internal/game"
)

// MemoryRepository keeps users in process memory. Everything is lost on exit.
type MemoryRepository struct {
	mu     sync.Mutex
	users  map[int64]*User
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]*User)}
}

func (r *MemoryRepository) Create(username, passwordHash string, balance int) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}

	r.nextID++
	u := &User{ID: r.nextID, Username: username, PasswordHash: passwordHash, Balance: balance}
	r.users[u.ID] = u

	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetByID(id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetByUsername(username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, game.ErrUnknownUser)
}

func (r *MemoryRepository) Balance(id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return 0, fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	return u.Balance, nil
}

func (r *MemoryRepository) AdjustBalance(id int64, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return 0, fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	if u.Balance+delta < 0 {
		return u.Balance, fmt.Errorf("%w: balance %d, adjustment %d", game.ErrInsufficientFunds, u.Balance, delta)
	}
	u.Balance += delta
	return u.Balance, nil
}

func (r *MemoryRepository) RecordRound(id int64, outcome game.Outcome, stake int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, game.ErrUnknownUser)
	}
	wins, losses, pushes := tally(outcome)
	u.Wins += wins
	u.Losses += losses
	u.Pushes += pushes
	u.Games++
	u.LastBet = stake
	return nil
}

func (r *MemoryRepository) Top(limit int) ([]Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats []Stats
	for _, u := range r.users {
		if u.Games == 0 {
			continue
		}
		stats = append(stats, Stats{
			UserID:   u.ID,
			Username: u.Username,
			Balance:  u.Balance,
			Wins:     u.Wins,
			Games:    u.Games,
			WinRate:  u.WinRate(),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Balance != stats[j].Balance {
			return stats[i].Balance > stats[j].Balance
		}
		return stats[i].UserID < stats[j].UserID
	})
	if limit >= 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}
