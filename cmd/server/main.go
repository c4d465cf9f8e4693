package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/red11scout/blueallygenaiwebsite/internal/api"
	"github.com/red11scout/blueallygenaiwebsite/internal/auth"
	"github.com/red11scout/blueallygenaiwebsite/internal/benchmarks"
	"github.com/red11scout/blueallygenaiwebsite/internal/cache"
	"github.com/red11scout/blueallygenaiwebsite/internal/calculator"
	"github.com/red11scout/blueallygenaiwebsite/internal/database"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/internal/middleware"
	"github.com/red11scout/blueallygenaiwebsite/internal/repository"
	"github.com/red11scout/blueallygenaiwebsite/internal/research"
	"github.com/red11scout/blueallygenaiwebsite/internal/services"
	"github.com/red11scout/blueallygenaiwebsite/internal/telemetry"
	"github.com/red11scout/blueallygenaiwebsite/pkg/config"
	"github.com/red11scout/blueallygenaiwebsite/pkg/retry"
)

const (
	serviceName     = "roi-calculator"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.New()
	log := logger.New(serviceName, cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		log.Debug("no .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, serviceVersion, cfg.OTELEndpoint)
	if err != nil {
		log.Fatal("Failed to set up tracing", err)
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Fatal("Failed to create metrics", err)
	}

	engine, err := loadEngine(cfg)
	if err != nil {
		log.Fatal("Failed to load benchmark tables", err, "file", cfg.BenchmarksFile)
	}

	deps := services.Dependencies{
		Engine:  engine,
		Metrics: metrics,
		Logger:  log,
		Config:  cfg,
	}
	checks := map[string]api.HealthCheck{}

	if cfg.DatabaseURL != "" {
		db, err := database.Connect(ctx, cfg.DatabaseURL, retry.DefaultConfig(), log)
		if err != nil {
			log.Fatal("Failed to connect to database", err)
		}
		defer db.Close()

		if err := database.RunMigrations(db.DB); err != nil {
			log.Fatal("Failed to run migrations", err)
		}
		deps.Repos = repository.NewRepositories(db.DB)
		checks["database"] = func(context.Context) error { return db.HealthCheck() }
	} else {
		log.Warn("DATABASE_URL not set; accounts, scenarios, research and audit are disabled")
	}

	if cfg.HasRedis() {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, serviceName+":")
		if err != nil {
			log.Fatal("Failed to connect to redis", err, "addr", cfg.RedisAddr)
		}
		defer rc.Close()
		deps.Cache = rc
		checks["redis"] = rc.Ping
	}

	researcher, err := newResearcher(ctx, cfg, engine, log)
	if err != nil {
		log.Fatal("Failed to create research provider", err, "provider", cfg.LLMProvider)
	}
	if researcher != nil {
		deps.Researcher = researcher
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("JWT_SECRET is required in production", nil)
		}
		secret, err := auth.NewCSRFToken()
		if err != nil {
			log.Fatal("Failed to generate JWT secret", err)
		}
		log.Warn("JWT_SECRET not set; using an ephemeral secret")
		cfg.JWTSecret = secret
	}
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	deps.JWT = jwtService

	svc := services.NewServices(deps)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.GetTrustedProxies()); err != nil {
		log.Fatal("Invalid trusted proxies", err)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.TracingMiddleware(metrics))
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware(cfg.MaxRequestSize))
	if cfg.EnableRateLimit {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPM).Middleware())
	}

	api.SetupRoutes(r, svc, api.RouteOptions{
		JWT:          jwtService,
		HealthChecks: checks,
		Version:      serviceVersion,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ResearchTimeout + 15*time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", err)
	}
}

func loadEngine(cfg *config.Config) (*calculator.Engine, error) {
	if cfg.BenchmarksFile == "" {
		return calculator.Default(), nil
	}
	tables, err := benchmarks.LoadFile(cfg.BenchmarksFile)
	if err != nil {
		return nil, err
	}
	return calculator.New(tables), nil
}

// newResearcher returns nil when no provider credentials are configured
func newResearcher(ctx context.Context, cfg *config.Config, engine *calculator.Engine, log logger.Logger) (*research.Service, error) {
	if !cfg.HasLLMCredentials() {
		log.Warn("no research provider credentials; company research is disabled", "provider", cfg.LLMProvider)
		return nil, nil
	}

	var provider research.Provider
	switch cfg.LLMProvider {
	case "gemini":
		p, err := research.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		provider = research.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL)
	}

	opts := []research.Option{research.WithLogger(log.With("component", "research"))}
	if cfg.EnableWebsiteSnapshot {
		opts = append(opts, research.WithSiteFetcher(research.NewSiteFetcher(research.NewClient(2))))
	}
	log.Info("Research provider configured", "provider", provider.Name())
	return research.NewService(provider, engine, opts...), nil
}
