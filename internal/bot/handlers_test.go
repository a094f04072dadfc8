package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"casino/internal/account"
	"casino/internal/config"
	"casino/internal/game"
	"casino/internal/logging"
	"casino/internal/session"
)

const chatID int64 = 42

// topRand makes Shuffle the identity and rolls sixes, so the shoe deals
// A♠ K♠ Q♠ J♠ 10♠ 9♠ 8♠ 7♠ 6♠ ... in that order.
type topRand struct{}

func (topRand) Intn(n int) int { return n - 1 }

type fakeSender struct {
	messages  []tgbotapi.MessageConfig
	callbacks []tgbotapi.CallbackConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks = append(f.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.messages)
	return f.messages[len(f.messages)-1]
}

func (f *fakeSender) lastCallback(t *testing.T) tgbotapi.CallbackConfig {
	t.Helper()
	require.NotEmpty(t, f.callbacks)
	return f.callbacks[len(f.callbacks)-1]
}

func newTestHandler(t *testing.T) (*Handler, *fakeSender) {
	t.Helper()
	cfg := &config.Config{StartBalance: 1000, DefaultBet: 100, MinBet: 10, MaxBet: 500}

	repo := account.NewMemoryRepository()
	accounts := account.NewService(repo, cfg.StartBalance)
	accounts.HashCost = bcrypt.MinCost
	sessions := session.NewManager(repo,
		session.WithLimits(cfg.MinBet, cfg.MaxBet),
		session.WithRandSource(func() (game.Rand, error) { return topRand{}, nil }),
	)

	sender := &fakeSender{}
	return NewHandler(sender, cfg, accounts, sessions, logging.Discard()), sender
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{ID: "cb", Data: data, Message: message("")}
}

func buttons(t *testing.T, msg tgbotapi.MessageConfig) []string {
	t.Helper()
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "message has no inline keyboard")

	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			require.NotNil(t, b.CallbackData)
			data = append(data, *b.CallbackData)
		}
	}
	return data
}

func TestStartRegistersChat(t *testing.T) {
	h, sender := newTestHandler(t)

	h.HandleMessage(message("/start"))

	assert.Contains(t, sender.last(t).Text, "Баланс: 1000")
	assert.Equal(t, chatID, sender.last(t).ChatID)
}

func TestPlayNaturalSettlesImmediately(t *testing.T) {
	h, sender := newTestHandler(t)

	h.HandleMessage(message("/play 100"))

	msg := sender.last(t)
	assert.Contains(t, msg.Text, "BLACKJACK")
	assert.Contains(t, msg.Text, "+200")
	assert.Contains(t, msg.Text, "Баланс: 1100")
	assert.Equal(t, []string{CallbackPlayAgain, CallbackBalance}, buttons(t, msg))
}

func TestPlayAgainAndStand(t *testing.T) {
	h, sender := newTestHandler(t)
	h.HandleMessage(message("/play 100"))

	// 10♠ 8♠ against a hidden 9♠ and 7♠.
	h.HandleCallback(callback(CallbackPlayAgain))
	msg := sender.last(t)
	assert.Contains(t, msg.Text, hiddenCard)
	assert.NotContains(t, msg.Text, "9♠")
	assert.Contains(t, msg.Text, "Ставка: 100 | Баланс: 1000")
	assert.Equal(t, []string{CallbackHit, CallbackStand, CallbackDouble}, buttons(t, msg))

	// The dealer's 16 draws 6♠ and busts.
	h.HandleCallback(callback(CallbackStand))
	msg = sender.last(t)
	assert.Contains(t, msg.Text, "Дилер перебрал")
	assert.Contains(t, msg.Text, "9♠")
	assert.Contains(t, msg.Text, "Баланс: 1200")
}

func TestCallbackWithoutRound(t *testing.T) {
	h, sender := newTestHandler(t)

	h.HandleCallback(callback(CallbackHit))

	assert.Equal(t, "Игра не активна", sender.lastCallback(t).Text)
	assert.Empty(t, sender.messages)
}

func TestPlayRejectsBadBets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"not a number", "/play abc", "Неверная ставка"},
		{"below minimum", "/play 5", "Ставка от 10 до 500"},
		{"above maximum", "/play 501", "Ставка от 10 до 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sender := newTestHandler(t)
			h.HandleMessage(message(tt.text))
			assert.Contains(t, sender.last(t).Text, tt.want)
		})
	}
}

func TestDoubleWithoutFunds(t *testing.T) {
	h, sender := newTestHandler(t)
	h.HandleMessage(message("/play 500"))
	h.HandleMessage(message("/play 500"))

	h.HandleMessage(message("/play 500"))
	assert.Contains(t, sender.last(t).Text, "завершите текущую игру")

	// 1500 after the natural, 1000 with the open bet, 0 after two lost rolls.
	h.HandleMessage(message("/dice low 500"))
	h.HandleMessage(message("/dice low 500"))
	h.HandleCallback(callback(CallbackDouble))

	assert.Contains(t, sender.last(t).Text, "Недостаточно средств")
}

func TestDice(t *testing.T) {
	h, sender := newTestHandler(t)

	h.HandleMessage(message("/dice HIGH 100"))

	msg := sender.last(t)
	assert.Contains(t, msg.Text, "⚅ ⚅ = 12")
	assert.Contains(t, msg.Text, "+150")
	assert.Contains(t, msg.Text, "Баланс: 1050")
	assert.Contains(t, buttons(t, msg), "dice:even:100")

	h.HandleCallback(callback("dice:even:100"))
	assert.Contains(t, sender.last(t).Text, "Проигрыш")
	assert.Contains(t, sender.last(t).Text, "Баланс: 950")
}

func TestDiceUsage(t *testing.T) {
	h, sender := newTestHandler(t)

	h.HandleMessage(message("/dice"))
	assert.Contains(t, sender.last(t).Text, "/dice <high|low|even|odd>")

	h.HandleMessage(message("/dice seven 100"))
	assert.Contains(t, sender.last(t).Text, "/dice <high|low|even|odd>")
}

func TestBalanceAndTop(t *testing.T) {
	h, sender := newTestHandler(t)

	h.HandleMessage(message("/top"))
	assert.Contains(t, sender.last(t).Text, "никто не играл")

	h.HandleMessage(message("/play 100"))
	h.HandleMessage(message("/balance"))
	text := sender.last(t).Text
	assert.Contains(t, text, "Баланс: 1100")
	assert.Contains(t, text, "Игр: 1")
	assert.Contains(t, text, "Побед: 1 (100.0%)")

	h.HandleMessage(message("/top"))
	assert.Contains(t, sender.last(t).Text, "🥇 1100")

	h.HandleCallback(callback(CallbackBalance))
	assert.Equal(t, "💵 1100", sender.lastCallback(t).Text)
}

func TestCommandWithBotMention(t *testing.T) {
	h, sender := newTestHandler(t)

	h.HandleMessage(message("/help@casino_bot"))

	assert.Contains(t, sender.last(t).Text, "Правила")
}
