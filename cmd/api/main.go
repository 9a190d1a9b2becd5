package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mentorhood/mentorhood/internal/http/handlers"
	apimw "github.com/mentorhood/mentorhood/internal/http/middleware"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
	"github.com/mentorhood/mentorhood/internal/service"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/database"
	"github.com/mentorhood/mentorhood/pkg/events"
	"github.com/mentorhood/mentorhood/pkg/logger"
	mw "github.com/mentorhood/mentorhood/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var bus events.Publisher = events.Discard{}
	if nats, err := events.NewNATSEventBus(cfg.NATS.URL, "mentorhood-api"); err != nil {
		logger.Warn("NATS unavailable, events will be dropped", "error", err)
	} else {
		bus = nats
	}
	defer bus.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Repositories
	sessionRepo := postgres.NewSessionRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(pool, cfg.Booking.IdempotencyTTL)
	tokenRepo := postgres.NewTokenRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	questionRepo := postgres.NewQuestionRepository(pool)
	mentorRepo := postgres.NewMentorRepository(pool)
	amaRepo := postgres.NewAMARepository(pool)

	// Services
	bookingService := service.NewBookingService(bookingRepo, sessionRepo, idempotencyRepo, bus, cfg)
	sessionService := service.NewSessionService(sessionRepo, bus)
	tokenService := service.NewTokenService(tokenRepo, bus, cfg)
	userService := service.NewUserService(userRepo, cfg)
	questionService := service.NewQuestionService(questionRepo)
	mentorService := service.NewMentorService(mentorRepo)
	amaService := service.NewAMAService(amaRepo, bus, cfg)
	dashboardService := service.NewDashboardService(userRepo, bookingRepo, sessionRepo)

	loginLimiter := apimw.NewRateLimiter(apimw.NewRedisCounter(rdb), apimw.RateLimitConfig{
		Prefix:   "users",
		Requests: cfg.Auth.LoginRateLimit,
		Window:   cfg.Auth.LoginRateWindow,
	})

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	r.Mount("/api/users", handlers.NewUsersHandler(userService, loginLimiter.Middleware()).Routes())
	r.Mount("/api/sessions", handlers.NewSessionsHandler(sessionService, cfg.Auth.JWTSecret).Routes())
	r.Mount("/api/bookings", handlers.NewBookingsHandler(bookingService).Routes())
	r.Mount("/api/questionnaires", handlers.NewQuestionsHandler(questionService, cfg.Auth.JWTSecret).Routes())
	r.Mount("/tokens", handlers.NewTokensHandler(tokenService, cfg.Auth.JWTSecret).Routes())
	r.Mount("/api/mentors", handlers.NewMentorsHandler(mentorService, cfg.Auth.JWTSecret).Routes())
	amaHandler := handlers.NewAMAHandler(amaService, cfg.Auth.JWTSecret)
	r.Mount("/api/ama-sessions", amaHandler.Routes())
	r.Mount("/registrations", amaHandler.RegistrationRoutes())
	r.Mount("/dashboard", handlers.NewDashboardHandler(dashboardService, cfg.Auth.JWTSecret).Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting api", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down api...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Booking.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := bookingService.CleanupIdempotency(gctx)
				if err != nil {
					logger.Warn("Idempotency cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("Expired idempotency keys removed", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("API error", "error", err)
		os.Exit(1)
	}
}
