// Package bot wires the long-running parts of profilebot together and
// manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"
)

// Runner is a component that serves until its context is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Bot owns the Telegram listener, the scheduler and the optional status server.
type Bot struct {
	logger     *slog.Logger
	tgBot      *tgbot.Bot
	scheduler  *Scheduler
	httpServer Runner
}

// NewBot creates a Bot. tgBot and httpServer may be nil to run without a
// command listener or status server.
func NewBot(logger *slog.Logger, tgBot *tgbot.Bot, scheduler *Scheduler, httpServer Runner) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		tgBot:      tgBot,
		scheduler:  scheduler,
		httpServer: httpServer,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	if b.tgBot != nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram bot listener")
			b.tgBot.Start(gCtx)
			b.logger.Info("Telegram bot listener stopped")

			if gCtx.Err() == nil {
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.httpServer != nil {
		g.Go(func() error {
			return b.httpServer.Run(gCtx)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
