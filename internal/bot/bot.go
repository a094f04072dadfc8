package bot

import (
	"context"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"casino/internal/account"
	"casino/internal/config"
	"casino/internal/session"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *log.Logger
}

func New(cfg *config.Config, accounts *account.Service, sessions *session.Manager, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	logger = logger.WithPrefix("bot")
	return &Bot{
		api:     api,
		handler: NewHandler(api, cfg, accounts, sessions, logger),
		logger:  logger,
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if update.CallbackQuery != nil {
				go b.handler.HandleCallback(update.CallbackQuery)
				continue
			}

			if update.Message != nil {
				go b.handler.HandleMessage(update.Message)
			}
		}
	}
}
