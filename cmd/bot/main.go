// cmd/bot/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"finance-tracker/internal/bot"
	"finance-tracker/internal/config"
	"finance-tracker/internal/storage/postgres"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if cfg.TelegramToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DBConn)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("telegram init failed", "error", err)
		os.Exit(1)
	}
	slog.Info("bot started", "username", api.Self.UserName)

	b := bot.New(postgres.NewStorage(pool))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		api.StopReceivingUpdates()
		return nil
	})
	g.Go(func() error {
		for update := range updates {
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			handle(gctx, api, b, update.Message)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bot stopped")
}

func handle(ctx context.Context, api *tgbotapi.BotAPI, b *bot.Bot, m *tgbotapi.Message) {
	telegramID := m.From.ID
	slog.Debug("message received", "telegram_id", telegramID, "chat_id", m.Chat.ID)

	reply := b.Handle(ctx, telegramID, m.Text)

	if bot.Sensitive(m.Text) {
		if _, err := api.Request(tgbotapi.NewDeleteMessage(m.Chat.ID, m.MessageID)); err != nil {
			slog.Warn("could not delete credentials message", "error", err, "chat_id", m.Chat.ID)
		}
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, reply)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := api.Send(msg); err != nil {
		slog.Error("send failed", "error", err, "chat_id", m.Chat.ID)
	}
}
