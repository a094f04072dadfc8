package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"casino/internal/account"
	"casino/internal/config"
	"casino/internal/game"
	"casino/internal/session"
)

// Sender is the part of *tgbotapi.BotAPI the handler uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	bot      Sender
	cfg      *config.Config
	accounts *account.Service
	sessions *session.Manager
	logger   *log.Logger
}

func NewHandler(bot Sender, cfg *config.Config, accounts *account.Service, sessions *session.Manager, logger *log.Logger) *Handler {
	return &Handler{
		bot:      bot,
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// ============== ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ ==============

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.Error("failed to send message", "chat", chatID, "err", err)
	}
}

func (h *Handler) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("failed to send message", "chat", chatID, "err", err)
	}
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Warn("failed to answer callback", "err", err)
	}
}

// session returns the chat's table, registering the chat on first contact.
func (h *Handler) session(chatID int64) (*session.Session, error) {
	u, err := h.accounts.GetOrCreateTelegram(chatID)
	if err != nil {
		return nil, err
	}
	return h.sessions.OpenWithID("tg:"+strconv.FormatInt(chatID, 10), u)
}

func (h *Handler) balance(s *session.Session) int {
	bal, err := s.Balance()
	if err != nil {
		h.logger.Error("failed to read balance", "user", s.Username, "err", err)
	}
	return bal
}

// lastBet is the stake of the user's previous round, or the default bet.
func (h *Handler) lastBet(s *session.Session) int {
	u, err := h.accounts.Repository().GetByID(s.UserID)
	if err != nil || u.LastBet <= 0 {
		return h.cfg.DefaultBet
	}
	return u.LastBet
}

func (h *Handler) betLimits() string {
	if h.cfg.MaxBet > 0 {
		return fmt.Sprintf("❌ Ставка от %d до %d", h.cfg.MinBet, h.cfg.MaxBet)
	}
	return fmt.Sprintf("❌ Минимальная ставка: %d", h.cfg.MinBet)
}

func (h *Handler) sendError(chatID int64, s *session.Session, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidBet):
		h.send(chatID, h.betLimits())
	case errors.Is(err, game.ErrInsufficientFunds):
		h.send(chatID, fmt.Sprintf("❌ Недостаточно средств! Баланс: %d", h.balance(s)))
	case errors.Is(err, game.ErrIllegalAction):
		h.send(chatID, "❌ Сначала завершите текущую игру")
	default:
		h.logger.Error("action failed", "chat", chatID, "err", err)
		h.send(chatID, "❌ Ошибка. Попробуйте позже.")
	}
}

// ============== ФОРМАТИРОВАНИЕ ==============

const hiddenCard = "🂠"

func formatDealer(v game.View) string {
	if v.HoleHidden {
		parts := []string{hiddenCard}
		for _, c := range v.Dealer {
			parts = append(parts, c.String())
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return fmt.Sprintf("%s (%d)", v.Dealer, v.DealerScore)
}

func formatGameStatus(v game.View) string {
	return fmt.Sprintf("🎴 Вы: %s (%d)\n🃏 Дилер: %s",
		v.Player, v.PlayerScore, formatDealer(v))
}

func resultText(v game.View) string {
	switch v.Outcome {
	case game.OutcomeWin:
		if v.Player.IsBlackjack() {
			return "🎰 BLACKJACK! 🎰"
		}
		return "🎉 Вы выиграли!"
	case game.OutcomeDealerBust:
		return "🎉 Дилер перебрал!"
	case game.OutcomeLose:
		return "😔 Дилер выиграл!"
	case game.OutcomeBust:
		return "💥 Перебор!"
	case game.OutcomePush:
		return "🤝 Ничья!"
	default:
		return ""
	}
}

func formatGameEnd(v game.View, balance int) string {
	var sb strings.Builder
	if v.Doubled {
		fmt.Fprintf(&sb, "💰 Удвоено: %d\n\n", v.Bet)
	}
	fmt.Fprintf(&sb, "%s\n\n%s", formatGameStatus(v), resultText(v))

	if v.Outcome.PlayerWins() {
		fmt.Fprintf(&sb, "\n💰 Выигрыш: +%d", v.Payout)
	}
	fmt.Fprintf(&sb, "\n💵 Баланс: %d", balance)

	return sb.String()
}

func formatDice(res game.DiceResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎲 %s %s = %d\n", game.Face(res.Die1), game.Face(res.Die2), res.Total)
	fmt.Fprintf(&sb, "Ставка: %d на %s\n\n", res.Bet, res.BetType)
	if res.Won {
		fmt.Fprintf(&sb, "🎉 Выигрыш: +%d", res.Payout)
	} else {
		sb.WriteString("😔 Проигрыш")
	}
	fmt.Fprintf(&sb, "\n💵 Баланс: %d", res.Balance)
	return sb.String()
}

func (h *Handler) sendRound(chatID int64, s *session.Session, v game.View) {
	if v.State == game.StateSettled {
		h.sendWithKeyboard(chatID, formatGameEnd(v, h.balance(s)), EndGameKeyboard(h.lastBet(s)))
		return
	}

	h.sendWithKeyboard(chatID,
		fmt.Sprintf("💰 Ставка: %d | Баланс: %d\n\n%s", v.Bet, h.balance(s), formatGameStatus(v)),
		GameKeyboard(v.CanDouble))
}

// ============== ОБРАБОТЧИКИ КОМАНД ==============

func (h *Handler) HandleStart(chatID int64) {
	s, err := h.session(chatID)
	if err != nil {
		h.logger.Error("failed to open session", "chat", chatID, "err", err)
		h.send(chatID, "❌ Ошибка. Попробуйте позже.")
		return
	}

	h.send(chatID, fmt.Sprintf(
		"🎰 Добро пожаловать в казино!\n\n"+
			"💵 Баланс: %d\n\n"+
			"/play <ставка> — блэкджек\n"+
			"/dice <high|low|even|odd> <ставка> — кости\n"+
			"/balance — статистика\n"+
			"/top — топ игроков\n"+
			"/help — правила",
		h.balance(s)))
}

func (h *Handler) HandleHelp(chatID int64) {
	h.send(chatID,
		"📖 Правила Blackjack:\n\n"+
			"🎯 Цель: набрать 21 очко или больше дилера, не перебрав\n\n"+
			"📊 Очки:\n"+
			"• 2-10 — номинал\n"+
			"• J, Q, K — 10\n"+
			"• A — 11 или 1\n\n"+
			"🎮 Действия:\n"+
			"• Hit — взять карту\n"+
			"• Stand — остановиться\n"+
			"• Double — удвоить (только первый ход)\n\n"+
			"🃏 Дилер берёт до 17. Выигрыш платит x2, ничья возвращает ставку.\n\n"+
			"🎲 Кости: две кости, сумма 2-12\n"+
			"• high — 11-18, x1.5\n"+
			"• low — 3-10, x1.5\n"+
			"• even — чётная сумма кроме 2 и 12, x1.8\n"+
			"• odd — нечётная сумма, x1.8")
}

func (h *Handler) HandleBalance(chatID int64) {
	s, err := h.session(chatID)
	if err != nil {
		h.send(chatID, "❌ Ошибка")
		return
	}

	u, err := h.accounts.Repository().GetByID(s.UserID)
	if err != nil {
		h.logger.Error("failed to get user", "chat", chatID, "err", err)
		h.send(chatID, "❌ Ошибка")
		return
	}

	h.send(chatID, fmt.Sprintf(
		"💰 Баланс: %d\n\n"+
			"📊 Статистика:\n"+
			"🎮 Игр: %d\n"+
			"✅ Побед: %d (%.1f%%)\n"+
			"❌ Поражений: %d\n"+
			"🤝 Ничьих: %d",
		u.Balance, u.Games, u.Wins, u.WinRate(), u.Losses, u.Pushes))
}

func (h *Handler) HandleTop(chatID int64) {
	stats, err := h.accounts.Repository().Top(10)
	if err != nil {
		h.logger.Error("failed to load leaderboard", "err", err)
		h.send(chatID, "❌ Ошибка")
		return
	}

	if len(stats) == 0 {
		h.send(chatID, "🏆 Пока никто не играл!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Топ игроков:\n\n")

	medals := []string{"🥇", "🥈", "🥉"}
	for i, s := range stats {
		medal := fmt.Sprintf("%d.", i+1)
		if i < 3 {
			medal = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s %d 💰 | %d игр (%.0f%%)\n",
			medal, s.Balance, s.Games, s.WinRate))
	}

	h.send(chatID, sb.String())
}

func (h *Handler) HandlePlay(chatID int64, args []string) {
	bet := h.cfg.DefaultBet
	if len(args) > 0 {
		if b, err := strconv.Atoi(args[0]); err == nil && b > 0 {
			bet = b
		} else {
			h.send(chatID, fmt.Sprintf("❌ Неверная ставка. Пример: /play %d", h.cfg.DefaultBet))
			return
		}
	}

	s, err := h.session(chatID)
	if err != nil {
		h.logger.Error("failed to open session", "chat", chatID, "err", err)
		h.send(chatID, "❌ Ошибка")
		return
	}

	var v game.View
	err = s.Blackjack(func(r *game.Round) error {
		if r.State() == game.StateSettled {
			if err := r.Reset(); err != nil {
				return err
			}
		}
		if err := r.PlaceBet(bet); err != nil {
			return err
		}
		v = r.View()
		return nil
	})
	if err != nil {
		h.sendError(chatID, s, err)
		return
	}

	h.sendRound(chatID, s, v)
}

func (h *Handler) HandleDice(chatID int64, args []string) {
	usage := fmt.Sprintf("🎲 Кости: /dice <high|low|even|odd> [ставка]\nПример: /dice high %d", h.cfg.DefaultBet)
	if len(args) == 0 {
		h.send(chatID, usage)
		return
	}

	betType, err := game.ParseBetType(args[0])
	if err != nil {
		h.send(chatID, usage)
		return
	}

	bet := h.cfg.DefaultBet
	if len(args) > 1 {
		if b, err := strconv.Atoi(args[1]); err == nil && b > 0 {
			bet = b
		} else {
			h.send(chatID, usage)
			return
		}
	}

	s, err := h.session(chatID)
	if err != nil {
		h.logger.Error("failed to open session", "chat", chatID, "err", err)
		h.send(chatID, "❌ Ошибка")
		return
	}

	res, err := s.RollDice(betType, bet)
	if err != nil {
		h.sendError(chatID, s, err)
		return
	}

	h.sendWithKeyboard(chatID, formatDice(res), DiceKeyboard(bet))
}

// ============== ОБРАБОТЧИКИ CALLBACK ==============

func (h *Handler) HandleCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		h.answerCallback(callback.ID, "")
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	s, err := h.session(chatID)
	if err != nil {
		h.answerCallback(callback.ID, "Ошибка")
		return
	}

	switch {
	case data == CallbackPlayAgain:
		h.answerCallback(callback.ID, "")
		h.HandlePlay(chatID, []string{strconv.Itoa(h.lastBet(s))})
		return

	case data == CallbackBalance:
		h.answerCallback(callback.ID, fmt.Sprintf("💵 %d", h.balance(s)))
		return

	case strings.HasPrefix(data, callbackDicePrefix):
		h.answerCallback(callback.ID, "")
		h.HandleDice(chatID, strings.Split(strings.TrimPrefix(data, callbackDicePrefix), ":"))
		return
	}

	var action func(*game.Round) error
	switch data {
	case CallbackHit:
		action = (*game.Round).Hit
	case CallbackStand:
		action = (*game.Round).Stand
	case CallbackDouble:
		action = (*game.Round).DoubleDown
	default:
		h.answerCallback(callback.ID, "")
		return
	}

	var v game.View
	err = s.Blackjack(func(r *game.Round) error {
		if err := action(r); err != nil {
			return err
		}
		v = r.View()
		return nil
	})
	if errors.Is(err, game.ErrIllegalAction) {
		h.answerCallback(callback.ID, "Игра не активна")
		return
	}
	h.answerCallback(callback.ID, "")
	if err != nil {
		h.sendError(chatID, s, err)
		return
	}

	h.sendRound(chatID, s, v)
}

// ============== ОБРАБОТЧИК СООБЩЕНИЙ ==============

func (h *Handler) HandleMessage(msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	parts := strings.Fields(msg.Text)

	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	// "/play@casino_bot" in group chats
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	args := parts[1:]

	switch cmd {
	case "/start":
		h.HandleStart(chatID)
	case "/help":
		h.HandleHelp(chatID)
	case "/play":
		h.HandlePlay(chatID, args)
	case "/dice":
		h.HandleDice(chatID, args)
	case "/balance":
		h.HandleBalance(chatID)
	case "/top":
		h.HandleTop(chatID)
	}
}
