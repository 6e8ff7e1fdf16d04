package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-storefront/internal/booking"
	"github.com/iliyamo/cinema-storefront/internal/config"
	"github.com/iliyamo/cinema-storefront/internal/database"
	"github.com/iliyamo/cinema-storefront/internal/handler"
	"github.com/iliyamo/cinema-storefront/internal/model"
	"github.com/iliyamo/cinema-storefront/internal/pricing"
	"github.com/iliyamo/cinema-storefront/internal/queue"
	"github.com/iliyamo/cinema-storefront/internal/repository"
	"github.com/iliyamo/cinema-storefront/internal/router"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: cache, rate limiting and redis drafts disabled")
	} else {
		defer rdb.Close()
	}

	rule, err := pricing.RuleFromConfig(cfg.FeeRule, cfg.FeePercent, cfg.FeeFlat)
	if err != nil {
		log.Fatalf("pricing: %v", err)
	}

	users := repository.NewUserRepo()
	tokens := repository.NewTokenRepo()
	movies := repository.NewMovieRepo()
	showtimes := repository.NewShowtimeRepo(movies.All(ctx), time.Now())

	if cfg.AdminEmail != "" {
		if _, err := users.Create(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		log.Printf("seeded admin %s", cfg.AdminEmail)
	}

	var bookings repository.BookingRepo = repository.NewMemoryBookingRepo()
	if cfg.BookingStore == "mysql" {
		db, err := database.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		defer db.Close()
		repo := repository.NewMySQLBookingRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("mysql schema: %v", err)
		}
		bookings = repo
	}

	var drafts booking.DraftStore = booking.NewMemoryDraftStore(cfg.DraftTTL)
	if cfg.DraftStore == "redis" {
		if rdb == nil {
			log.Fatal("DRAFT_STORE=redis but redis is unavailable")
		}
		drafts = booking.NewRedisDraftStore(rdb, "draft", cfg.DraftTTL)
	}

	var events booking.Events = queue.NoopPublisher{}
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		events = pub
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, cfg.BookingLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking consumer stopped: %v", err)
			}
		}()
	}

	calc := pricing.NewCalculator(rule)
	svc := &booking.Service{
		Drafts:    drafts,
		Showtimes: showtimes,
		Bookings:  bookings,
		Sales:     movies,
		Pricing:   calc,
		Payments: &booking.Processor{
			Gateway: &booking.MockGateway{Delay: cfg.PaymentDelay},
			Timeout: cfg.PaymentTimeout,
		},
		Events: events,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Catalog:  &handler.CatalogHandler{Movies: movies, Showtimes: showtimes, Pricing: calc},
		Drafts:   &handler.DraftHandler{Svc: svc},
		Bookings: &handler.BookingHandler{Bookings: bookings, Sales: movies},
		Admin: &handler.AdminHandler{
			Movies:      movies,
			Showtimes:   showtimes,
			Users:       users,
			Bookings:    bookings,
			Redis:       rdb,
			CachePrefix: config.LoadCacheConfig().Prefix,
		},
	}, cfg, rdb)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
