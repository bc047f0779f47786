package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/logging"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

func main() {
	cfg, err := config.Load() // Load .env and environment
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(database.Options{
		Driver:  cfg.DBDriver,
		User:    cfg.DBUser,
		Pass:    cfg.DBPass,
		Host:    cfg.DBHost,
		Port:    cfg.DBPort,
		Name:    cfg.DBName,
		Path:    cfg.DBPath,
		Migrate: cfg.DBMigrate,
	})
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb == nil {
		log.Warn("redis unavailable: selections kept in memory, cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	screens := repository.NewScreenRepo(db)
	movies := repository.NewMovieRepo(db)
	schedules := repository.NewScheduleRepo(db)
	tickets := repository.NewTicketRepo(db)

	// Booking events
	var events service.EventPublisher
	if cfg.RabbitMQURL != "" {
		events = queue.NewPublisher(cfg.RabbitMQURL, log)
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, LogPath: cfg.BookingLogPath, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("booking consumer stopped")
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set: booking events disabled")
	}

	// Services
	bookings := service.NewBookingService(schedules, screens, movies, tickets,
		service.NewSimulatedGateway(cfg.PaymentDelay), events, log, cfg.Location())
	selections := service.NewSelectionService(bookings, service.NewSelectionStore(rdb, cfg.SelectionTTL))

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens, log)
	catalogH := handler.NewCatalogHandler(movies, schedules, bookings, log, cfg.Location(), cfg.DBTimeout)
	selectionH := handler.NewSelectionHandler(selections, log, cfg.DBTimeout+cfg.PaymentDelay)
	ticketH := handler.NewTicketHandler(tickets, cfg.DBTimeout)
	adminH := handler.NewAdminHandler(screens, movies, schedules, tickets, log, cfg.DBTimeout)
	adminH.OnCatalogChange = func(ctx context.Context) {
		if err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix); err != nil {
			log.WithError(err).Warn("purge catalog cache")
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	guards := router.Guards{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:     middleware.NewRedisCache(cacheCfg, rdb, log),
	}
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, guards)
	router.RegisterPublic(e, catalogH, guards)
	router.RegisterCustomer(e, selectionH, ticketH, guards)
	router.RegisterAdmin(e, adminH, guards)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("listening")
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("stopped")
}
