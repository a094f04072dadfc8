// Package console plays blackjack and dice over a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"casino/internal/game"
	"casino/internal/session"
)

const helpText = `Commands:
  bet N          start a blackjack round with stake N
  hit            take a card
  stand          end your turn
  double         double the stake, take one card and stand
  reset          clear a finished round
  dice TYPE N    roll two dice, TYPE is high, low, even or odd
  balance        show your balance
  help           show this help
  quit           leave the table`

type styles struct {
	red    lipgloss.Style
	black  lipgloss.Style
	win    lipgloss.Style
	lose   lipgloss.Style
	info   lipgloss.Style
	prompt lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		red:    r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		black:  r.NewStyle().Bold(true),
		win:    r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		lose:   r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		info:   r.NewStyle().Foreground(lipgloss.Color("#626262")),
		prompt: r.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
	}
}

type Console struct {
	sess   *session.Session
	out    io.Writer
	styles styles
}

// New renders to out, with colour only when out is a terminal.
func New(sess *session.Session, out io.Writer) *Console {
	return &Console{
		sess:   sess,
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Run reads commands from in until quit, EOF or ctx is cancelled.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(c.out, "Welcome, %s. Type help for commands.\n", c.sess.Username)
	c.showBalance()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		fmt.Fprint(c.out, c.styles.prompt.Render("> "))

		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case err := <-errCh:
			return err
		case line := <-lines:
			if c.Exec(line) {
				return nil
			}
		}
	}
}

// Exec runs one command line and reports whether the player asked to quit.
func (c *Console) Exec(line string) bool {
	parts := strings.Fields(strings.ToLower(line))
	if len(parts) == 0 {
		return false
	}

	cmd, args := parts[0], parts[1:]
	switch cmd {
	case "bet":
		if len(args) != 1 {
			c.println("usage: bet N")
			return false
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			c.println("usage: bet N")
			return false
		}
		c.play(func(r *game.Round) error { return r.PlaceBet(amount) })
	case "hit":
		c.play((*game.Round).Hit)
	case "stand":
		c.play((*game.Round).Stand)
	case "double":
		c.play((*game.Round).DoubleDown)
	case "reset":
		c.play((*game.Round).Reset)
	case "dice":
		c.dice(args)
	case "balance":
		c.showBalance()
	case "help", "?":
		c.println(helpText)
	case "quit", "exit":
		c.println("Bye.")
		return true
	default:
		c.printf("unknown command %q, type help\n", cmd)
	}
	return false
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) showError(err error) {
	c.println(c.styles.lose.Render("error: " + err.Error()))
}

func (c *Console) showBalance() {
	bal, err := c.sess.Balance()
	if err != nil {
		c.showError(err)
		return
	}
	c.printf("Balance: %d\n", bal)
}

func (c *Console) play(action func(*game.Round) error) {
	var v game.View
	err := c.sess.Blackjack(func(r *game.Round) error {
		if err := action(r); err != nil {
			return err
		}
		v = r.View()
		return nil
	})
	if err != nil {
		c.showError(err)
		return
	}
	c.render(v)
}

func (c *Console) dice(args []string) {
	if len(args) != 2 {
		c.println("usage: dice high|low|even|odd N")
		return
	}
	betType, err := game.ParseBetType(args[0])
	if err != nil {
		c.showError(err)
		return
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		c.println("usage: dice high|low|even|odd N")
		return
	}

	res, err := c.sess.RollDice(betType, amount)
	if err != nil {
		c.showError(err)
		return
	}

	c.printf("%s %s = %d\n", game.Face(res.Die1), game.Face(res.Die2), res.Total)
	if res.Won {
		c.println(c.styles.win.Render(fmt.Sprintf("%s wins, you get %d", res.BetType, res.Payout)))
	} else {
		c.println(c.styles.lose.Render(fmt.Sprintf("%s loses", res.BetType)))
	}
	c.printf("Balance: %d\n", res.Balance)
}

func (c *Console) card(card game.Card) string {
	if card.Red() {
		return c.styles.red.Render(card.String())
	}
	return c.styles.black.Render(card.String())
}

func (c *Console) hand(h game.Hand, hidden bool) string {
	parts := make([]string, 0, len(h)+1)
	if hidden {
		parts = append(parts, c.styles.info.Render("🂠"))
	}
	for _, card := range h {
		parts = append(parts, c.card(card))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (c *Console) render(v game.View) {
	if v.State == game.StateIdle {
		c.println("Round cleared. bet N to play again.")
		return
	}

	if v.HoleHidden {
		c.printf("Dealer: %s\n", c.hand(v.Dealer, true))
	} else {
		c.printf("Dealer: %s (%d)\n", c.hand(v.Dealer, false), v.DealerScore)
	}
	c.printf("You:    %s (%d)\n", c.hand(v.Player, false), v.PlayerScore)

	if v.State != game.StateSettled {
		c.printf("Bet: %d\n", v.Bet)
		if v.CanDouble {
			c.println(c.styles.info.Render("hit, stand or double?"))
		} else {
			c.println(c.styles.info.Render("hit or stand?"))
		}
		return
	}

	c.println(c.outcome(v))
	c.showBalance()
}

func (c *Console) outcome(v game.View) string {
	switch v.Outcome {
	case game.OutcomeWin:
		return c.styles.win.Render(fmt.Sprintf("You win %d.", v.Payout))
	case game.OutcomeDealerBust:
		return c.styles.win.Render(fmt.Sprintf("Dealer busts, you win %d.", v.Payout))
	case game.OutcomePush:
		return c.styles.info.Render(fmt.Sprintf("Push, %d returned.", v.Payout))
	case game.OutcomeBust:
		return c.styles.lose.Render(fmt.Sprintf("Bust, you lose %d.", v.Bet))
	default:
		return c.styles.lose.Render(fmt.Sprintf("Dealer wins, you lose %d.", v.Bet))
	}
}
