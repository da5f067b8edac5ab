package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/gymhub/internal/config"
	"github.com/iliyamo/gymhub/internal/database"
	"github.com/iliyamo/gymhub/internal/google"
	"github.com/iliyamo/gymhub/internal/handler"
	"github.com/iliyamo/gymhub/internal/mailer"
	"github.com/iliyamo/gymhub/internal/middleware"
	"github.com/iliyamo/gymhub/internal/queue"
	"github.com/iliyamo/gymhub/internal/repository"
	"github.com/iliyamo/gymhub/internal/router"
	"github.com/iliyamo/gymhub/internal/service"
	"github.com/iliyamo/gymhub/internal/throttle"
	"github.com/iliyamo/gymhub/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", "gymhub").Logger()
	}
	zerolog.DefaultContextLogger = &log.Logger

	// A database outage at startup is not fatal: requests fail individually
	// and /readyz reports 503 until MySQL answers.
	db, err := database.Open(ctx, cfg.DSN())
	switch {
	case err != nil && db == nil:
		log.Fatal().Err(err).Msg("open database")
	case err != nil:
		log.Error().Err(err).Msg("database unreachable; serving degraded")
	default:
		if err := database.Migrate(ctx, db); err != nil {
			log.Error().Err(err).Msg("migrate database")
		}
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	var events service.Publisher
	if cfg.RabbitMQURL != "" {
		events = queue.NewPublisher(cfg.RabbitMQURL)
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.RabbitMQURL); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	e := newServer(cfg, db, rdb, events)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting gymhub")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}

// newServer builds the echo instance with every service wired to MySQL.
func newServer(cfg config.Config, db *sql.DB, rdb *redis.Client, events service.Publisher) *echo.Echo {
	users := repository.NewUserRepo(db)
	gyms, plans := repository.NewGymRepo(db), repository.NewPlanRepo(db)
	bookings, payouts := repository.NewBookingRepo(db), repository.NewPayoutRepo(db)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.RefreshTokenSecret)

	auth := &service.AuthService{
		Users:      users,
		Ledger:     service.NewSessionLedger(repository.NewSessionRepo(db), cfg.SessionHashKey),
		Tokens:     tokens,
		Google:     google.NewVerifier(cfg.GoogleClientID),
		Mailer:     mailer.New(cfg.Email, cfg.IsProduction()),
		Throttle:   throttle.NewRedis(rdb, "throttle:"),
		BcryptCost: cfg.BcryptCost,
		AutoVerify: cfg.AutoVerifyOnRegister,
		StrictMail: cfg.IsProduction(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	router.Register(e, router.Deps{
		Cfg:    cfg,
		Tokens: tokens,
		Users:  users,
		Redis:  rdb,
		DB:     db,

		Auth:     handler.NewAuthHandler(auth, cfg),
		Catalog:  &handler.CatalogHandler{Svc: &service.CatalogService{Gyms: gyms, Plans: plans}},
		Bookings: &handler.BookingHandler{Svc: &service.BookingService{Gyms: gyms, Plans: plans, Bookings: bookings, Events: events}},
		Payouts:  &handler.PayoutHandler{Svc: &service.PayoutService{Gyms: gyms, Payouts: payouts, Events: events}},
		Reviews:  &handler.ReviewHandler{Svc: &service.ReviewService{Bookings: bookings, Reviews: repository.NewReviewRepo(db)}},
		Tickets:  &handler.TicketHandler{Svc: &service.TicketService{Tickets: repository.NewTicketRepo(db)}},
		Reports: &handler.ReportHandler{Svc: &service.ReportService{
			Gyms:     gyms,
			Bookings: bookings,
			Payouts:  payouts,
			Stats:    repository.NewStatsRepo(db),
		}},
	})
	return e
}
