package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/cache"
	"github.com/Freeeeeet/tutoring_scheduler/internal/config"
	"github.com/Freeeeeet/tutoring_scheduler/internal/controller"
	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/rest"
	"github.com/Freeeeeet/tutoring_scheduler/internal/events"
	"github.com/Freeeeeet/tutoring_scheduler/internal/meeting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
	"github.com/Freeeeeet/tutoring_scheduler/migrations"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived dependency of the process
type App struct {
	logger  *zap.Logger
	server  *rest.Server
	bot     *controller.BotController
	closers []func() error
}

type storage struct {
	bookings service.BookingStore
	slots    service.SlotStore
	catalog  service.Catalog
	identity handlers.Identity
}

// New connects to the configured backends and assembles the services.
// On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	store, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	catalog := store.catalog
	if cfg.RedisAddr != "" {
		rdb, err := NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		catalog = cache.NewCatalogCache(catalog, rdb, cfg.CatalogCacheTTL, logger)
	}

	var publisher service.EventPublisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, amqpPublisher.Close)
		publisher = amqpPublisher
	} else {
		logger.Info("AMQP_URL not set, booking events are not published")
	}

	zoomCfg := meeting.ZoomConfig{
		AccountID:    cfg.ZoomAccountID,
		ClientID:     cfg.ZoomClientID,
		ClientSecret: cfg.ZoomClientSecret,
		APIURL:       cfg.ZoomAPIURL,
		TokenURL:     cfg.ZoomTokenURL,
		Timeout:      cfg.MeetingTimeout,
	}
	var meetings service.MeetingLinkProvider = meeting.Disabled{}
	if zoomCfg.Configured() {
		meetings = meeting.NewZoomProvider(zoomCfg, logger)
	} else {
		logger.Warn("Zoom credentials not set, virtual bookings cannot be confirmed")
	}

	scopes := service.NewAccessScopeResolver(catalog, logger)
	bookingService := service.NewBookingService(store.bookings, catalog, scopes, meetings, publisher, logger)
	slotService := service.NewSlotService(store.slots, catalog, scopes, logger)

	a.server = rest.NewServer(cfg.HTTPAddr, cfg.JWTSecret, bookingService, slotService, logger)

	if cfg.TelegramEnabled() {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
		cmdHandlers := handlers.NewHandlers(bookingService, slotService, store.identity, logger)
		a.bot = controller.NewBotController(b, cmdHandlers, logger)
		if err := a.bot.RegisterHandlers(ctx); err != nil {
			return nil, fmt.Errorf("register bot handlers: %w", err)
		}
	}

	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		a.logger.Warn("Using in-memory storage, data is lost on restart")
		catalog := memory.NewCatalog()
		return storage{
			bookings: memory.NewBookingStore(),
			slots:    memory.NewSlotStore(),
			catalog:  catalog,
			identity: catalog,
		}, nil
	}

	pool, err := NewPostgresPool(ctx, cfg.DBDSN, a.logger)
	if err != nil {
		return storage{}, err
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	migrator, err := NewMigrator(pool, migrations.FS, a.logger)
	if err != nil {
		return storage{}, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return storage{}, err
	}

	catalog := repository.NewCatalogRepository(pool)
	return storage{
		bookings: repository.NewBookingRepository(pool),
		slots:    repository.NewRecurringSlotRepository(pool, a.logger),
		catalog:  catalog,
		identity: catalog,
	}, nil
}

// Run serves HTTP, and the bot when enabled, until ctx is cancelled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start()
	}()

	botDone := make(chan struct{})
	if a.bot != nil {
		go func() {
			defer close(botDone)
			a.bot.Start(ctx)
		}()
	} else {
		close(botDone)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown requested")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if ctx.Err() != nil {
		<-botDone
	}

	return runErr
}

// Close releases backends in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}
