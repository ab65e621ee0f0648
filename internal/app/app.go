// Package app builds profilebot's components from configuration and runs
// them for each CLI command.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/profilebot/internal/bot"
	"github.com/edgard/profilebot/internal/bot/handlers"
	"github.com/edgard/profilebot/internal/bot/tasks"
	"github.com/edgard/profilebot/internal/compose"
	"github.com/edgard/profilebot/internal/config"
	"github.com/edgard/profilebot/internal/database"
	"github.com/edgard/profilebot/internal/httpserver"
	"github.com/edgard/profilebot/internal/logger"
	"github.com/edgard/profilebot/internal/photo"
	"github.com/edgard/profilebot/internal/prayer"
	"github.com/edgard/profilebot/internal/status"
	"github.com/edgard/profilebot/internal/telegram"
	"github.com/edgard/profilebot/internal/weather"
)

// App holds the components shared by the CLI commands. The composer is
// always available; the account side is built by connect.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	clock    status.Clock
	composer *compose.Composer

	db      *sqlx.DB
	store   database.Store
	tg      *tgbot.Bot
	profile *telegram.ProfileClient
	rotator *photo.Rotator
}

// New creates the composition pipeline. It never touches the network.
func New(cfg *config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	policy := cfg.Retry.Policy()

	weatherClient := weather.NewClient(weather.ClientConfig{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		City:    cfg.Location.City,
		Timeout: cfg.Weather.Timeout,
		Retry:   policy,
	}, log)
	weatherService := weather.NewService(weatherClient, weather.NewCache(cfg.Weather.CacheTTL), log)

	prayerClient := prayer.NewClient(prayer.ClientConfig{
		BaseURL:   cfg.Prayer.BaseURL,
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Timezone:  cfg.Profile.Timezone,
		School:    cfg.Prayer.School,
		Timeout:   cfg.Prayer.Timeout,
		Retry:     policy,
	}, log)

	return &App{
		cfg:      cfg,
		logger:   log,
		clock:    status.NewClock(cfg.Zone),
		composer: compose.New(cfg.Profile.Name, prayer.NewCachedSource(prayerClient), weatherService, log),
	}
}

// Preview composes the fields for the current instant.
func (a *App) Preview(ctx context.Context) compose.Fields {
	return a.composer.Compose(ctx, a.clock())
}

// connect opens the state database, creates the bot and verifies the
// business connection.
func (a *App) connect(ctx context.Context) error {
	if a.profile != nil {
		return nil
	}
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}
	startTime := time.Now()

	db, err := database.NewDB(a.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	a.db = db
	a.store = database.NewStore(db, a.logger)

	tg, err := telegram.NewTelegramBot(a.cfg.Telegram.Token, a.logger,
		tgbot.WithServerURL(a.cfg.Telegram.APIURL),
		tgbot.WithMiddlewares(logger.Middleware(a.logger)),
	)
	if err != nil {
		return err
	}

	profile := telegram.NewProfileClient(tg, telegram.ProfileConfig{
		APIURL:               a.cfg.Telegram.APIURL,
		Token:                a.cfg.Telegram.Token,
		BusinessConnectionID: a.cfg.Telegram.BusinessConnectionID,
		RatePerSecond:        a.cfg.Telegram.RatePerSecond,
		Burst:                a.cfg.Telegram.Burst,
	}, a.logger)

	conn, err := profile.VerifyConnection(ctx)
	if err != nil {
		return err
	}
	if a.cfg.Telegram.AdminUserID == 0 {
		a.cfg.Telegram.AdminUserID = conn.User.ID
		a.logger.Info("Admin user derived from business connection", "user_id", conn.User.ID)
	}

	a.tg = tg
	a.profile = profile
	a.rotator = photo.NewRotator(a.cfg.Profile.PhotoDir, a.cfg.Profile.PhotoExt, profile, a.store, a.logger)

	a.logger.Info("Connected to account", "duration_ms", time.Since(startTime).Milliseconds())
	return nil
}

// Photo runs one photo rotation.
func (a *App) Photo(ctx context.Context, force bool) (photo.Result, error) {
	if err := a.connect(ctx); err != nil {
		return photo.Result{}, err
	}
	return a.rotator.Rotate(ctx, a.clock(), force)
}

// Run starts the service and blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}

	hDeps := handlers.HandlerDeps{
		Logger:   a.logger,
		Config:   a.cfg,
		Composer: a.composer,
		Photos:   a.rotator,
		Clock:    a.clock,
	}
	if err := telegram.RegisterHandlers(a.tg, a.logger, handlers.RegisterAllCommands(hDeps)); err != nil {
		return err
	}

	tDeps := tasks.TaskDeps{
		Logger:   a.logger,
		Composer: a.composer,
		Profile:  a.profile,
		Photos:   a.rotator,
		Clock:    a.clock,
		Retry:    a.cfg.Retry.Policy(),
	}
	sched, err := bot.NewScheduler(a.logger, &a.cfg.Scheduler, a.cfg.Zone, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		return err
	}

	var srv bot.Runner
	if a.cfg.HTTP.Enabled {
		srv = httpserver.New(a.cfg.HTTP.Addr, a.composer, a.clock, a.store, a.logger)
	}

	return bot.NewBot(a.logger, a.tg, sched, srv).Run(ctx)
}

// Close releases the database.
func (a *App) Close() {
	database.CloseDB(a.db)
}
