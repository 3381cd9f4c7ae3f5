package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/config"
	"github.com/iliyamo/blood-donation-tracker/internal/database"
	"github.com/iliyamo/blood-donation-tracker/internal/handler"
	"github.com/iliyamo/blood-donation-tracker/internal/logger"
	"github.com/iliyamo/blood-donation-tracker/internal/middleware"
	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/queue"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/router"
	"github.com/iliyamo/blood-donation-tracker/internal/seed"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

func main() {
	_ = godotenv.Load()  // .env is optional; real environment wins
	cfg := config.Load() // Load environment config

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "blood-donation-tracker")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if cfg.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// Repositories
	users := repository.NewUserRepo(db)
	donors := repository.NewDonorRepo(db)
	hospitals := repository.NewHospitalRepo(db)
	requests := repository.NewBloodRequestRepo(db)
	donations := repository.NewDonationRepo(db)
	tokens := repository.NewTokenRepo(db)
	stats := repository.NewStatsRepo(db)

	// Domain events
	var events queue.Publisher = queue.NopPublisher{}
	if cfg.QueueEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitMQURL, log.Named("publisher"))
		consumer := queue.NewConsumer(cfg.RabbitMQURL, "", log.Named("consumer"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	// Services
	accounts := service.NewAccounts(users, donors, hospitals, cfg.BcryptCost)
	lifecycle := service.NewRequestLifecycle(requests, donations, events, cfg.Transitions, log.Named("requests"))
	matcher := service.NewDonationMatcher(donors, requests, donations, events,
		model.MatchRules{RequireBloodTypeMatch: cfg.RequireBloodTypeMatch}, log.Named("matcher"))

	if cfg.SeedDemo {
		s := &seed.Seeder{Accounts: accounts, Users: users, Donors: donors, Hospitals: hospitals, Log: log.Named("seed")}
		n, err := s.Run(ctx, seed.Demo)
		if err != nil {
			log.Fatal("seed demo accounts", zap.Error(err))
		}
		log.Info("demo accounts ready", zap.Int("created", n))
	}

	// Redis-backed middleware; both fail open when Redis is unreachable.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	defer rdb.Close()
	authLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(config.RateAuth), rdb, log.Named("ratelimit"))
	acceptLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(config.RateAccept), rdb, log.Named("ratelimit"))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log.Named("cache"))

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(middleware.RequestID(), middleware.RequestLogger(log.Named("http")), echomw.Recover())

	guard := router.Guard{
		JWTSecret: cfg.JWTSecret,
		Principal: middleware.LoadPrincipal(middleware.PrincipalSource{Users: users, Donors: donors, Hospitals: hospitals}, log),
	}
	router.RegisterRoutes(e, db, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, accounts, users, tokens, log), guard, authLimiter)
	router.RegisterPublic(e, handler.NewPublicHandler(stats, log), cache)
	router.RegisterDonor(e, handler.NewDonorHandler(matcher, donors, log), guard, acceptLimiter)
	router.RegisterHospital(e, handler.NewHospitalHandler(lifecycle, hospitals, log), guard)
	router.RegisterAdmin(e, &handler.AdminHandler{
		Users: users, Donors: donors, Hospitals: hospitals,
		Requests: requests, Donations: donations, Counters: stats,
		Matcher: matcher, Log: log,
	}, guard)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
