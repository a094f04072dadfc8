package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino/internal/account"
	"casino/internal/game"
	"casino/internal/session"
)

// topRand makes Shuffle the identity and rolls sixes, so the shoe deals
// A♠ K♠ Q♠ J♠ 10♠ 9♠ 8♠ 7♠ 6♠ ... in that order.
type topRand struct{}

func (topRand) Intn(n int) int { return n - 1 }

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	repo := account.NewMemoryRepository()
	user, err := repo.Create("alice", "", 1000)
	require.NoError(t, err)

	m := session.NewManager(repo,
		session.WithLimits(10, 500),
		session.WithRandSource(func() (game.Rand, error) { return topRand{}, nil }),
	)
	sess, err := m.Open(user)
	require.NoError(t, err)

	var out bytes.Buffer
	return New(sess, &out), &out
}

// exec runs line and returns only the output it produced.
func exec(c *Console, out *bytes.Buffer, line string) (string, bool) {
	out.Reset()
	quit := c.Exec(line)
	return out.String(), quit
}

func TestNaturalWins(t *testing.T) {
	c, out := newTestConsole(t)

	text, quit := exec(c, out, "bet 100")
	assert.False(t, quit)
	assert.Contains(t, text, "A♠")
	assert.Contains(t, text, "K♠")
	assert.Contains(t, text, "You win 200.")
	assert.Contains(t, text, "Balance: 1100")
}

func TestRoundWithHiddenHole(t *testing.T) {
	c, out := newTestConsole(t)
	exec(c, out, "bet 100")
	exec(c, out, "reset")

	text, _ := exec(c, out, "bet 100")
	assert.Contains(t, text, "🂠")
	assert.NotContains(t, text, "9♠")
	assert.Contains(t, text, "hit, stand or double?")

	text, _ = exec(c, out, "stand")
	assert.Contains(t, text, "9♠")
	assert.Contains(t, text, "6♠")
	assert.Contains(t, text, "Dealer busts, you win 200.")
	assert.Contains(t, text, "Balance: 1200")
}

func TestErrorsAreReported(t *testing.T) {
	c, out := newTestConsole(t)

	tests := []struct {
		line string
		want string
	}{
		{"hit", "error: hit not allowed in idle"},
		{"bet 5", "error: invalid bet"},
		{"bet", "usage: bet N"},
		{"bet ten", "usage: bet N"},
		{"dice seven 10", "error: invalid bet"},
		{"dice high", "usage: dice"},
		{"fold", `unknown command "fold"`},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			text, quit := exec(c, out, tt.line)
			assert.False(t, quit)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestDice(t *testing.T) {
	c, out := newTestConsole(t)

	text, _ := exec(c, out, "dice high 100")
	assert.Contains(t, text, "⚅ ⚅ = 12")
	assert.Contains(t, text, "high wins, you get 150")
	assert.Contains(t, text, "Balance: 1050")

	text, _ = exec(c, out, "DICE Even 100")
	assert.Contains(t, text, "even loses")
	assert.Contains(t, text, "Balance: 950")
}

func TestHelpBalanceQuit(t *testing.T) {
	c, out := newTestConsole(t)

	text, _ := exec(c, out, "help")
	assert.Contains(t, text, "dice TYPE N")

	text, _ = exec(c, out, "balance")
	assert.Equal(t, "Balance: 1000\n", text)

	text, quit := exec(c, out, "")
	assert.False(t, quit)
	assert.Empty(t, text)

	_, quit = exec(c, out, "quit")
	assert.True(t, quit)
}

func TestRun(t *testing.T) {
	c, out := newTestConsole(t)

	in := strings.NewReader("bet 100\nbalance\nquit\nbet 100\n")
	require.NoError(t, c.Run(context.Background(), in))

	text := out.String()
	assert.Contains(t, text, "Welcome, alice.")
	assert.Contains(t, text, "You win 200.")
	assert.Contains(t, text, "Bye.")
	assert.Equal(t, 1, strings.Count(text, "You win"))
}

func TestRunStopsAtEOF(t *testing.T) {
	c, _ := newTestConsole(t)
	assert.NoError(t, c.Run(context.Background(), strings.NewReader("balance\n")))
}
