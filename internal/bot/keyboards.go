package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"casino/internal/game"
)

const (
	CallbackHit       = "hit"
	CallbackStand     = "stand"
	CallbackDouble    = "double"
	CallbackPlayAgain = "play_again"
	CallbackBalance   = "balance"

	// callbackDicePrefix is followed by bet type and amount, e.g. "dice:high:100".
	callbackDicePrefix = "dice:"
)

func GameKeyboard(canDouble bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("👊 Hit", CallbackHit),
		tgbotapi.NewInlineKeyboardButtonData("✋ Stand", CallbackStand),
	}

	if canDouble {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("💰 Double", CallbackDouble))
	}

	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func EndGameKeyboard(lastBet int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🔄 Ещё (%d)", lastBet),
				CallbackPlayAgain,
			),
			tgbotapi.NewInlineKeyboardButtonData("💵 Баланс", CallbackBalance),
		),
	)
}

// DiceKeyboard offers another roll of each bet type for the same amount.
func DiceKeyboard(bet int) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(game.BetTypes))
	for _, bt := range game.BetTypes {
		label := fmt.Sprintf("🎲 %s x%.1f", bt, bt.Multiplier())
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%s:%d", callbackDicePrefix, bt, bet)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
