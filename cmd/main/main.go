package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/auth"
	"www.github.com/Wanderer0074348/Yahmi/src/cache"
	"www.github.com/Wanderer0074348/Yahmi/src/config"
	"www.github.com/Wanderer0074348/Yahmi/src/dispatcher"
	"www.github.com/Wanderer0074348/Yahmi/src/esg"
	"www.github.com/Wanderer0074348/Yahmi/src/handlers"
	"www.github.com/Wanderer0074348/Yahmi/src/inference"
	"www.github.com/Wanderer0074348/Yahmi/src/logging"
	"www.github.com/Wanderer0074348/Yahmi/src/metrics"
	"www.github.com/Wanderer0074348/Yahmi/src/middleware"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
	"www.github.com/Wanderer0074348/Yahmi/src/store"
)

const oauthStateTTL = 10 * time.Minute

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, syncLogger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer syncLogger()

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		logger.Warn("Some AI services have no API key and will be skipped", zap.Strings("missing", missing))
	}

	m, err := metrics.New()
	if err != nil {
		logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	db, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database ready", zap.String("path", cfg.Database.Path))

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected", zap.String("address", cfg.Redis.Address))

	var completionCache models.CompletionCache
	switch cfg.Dispatcher.CacheBackend {
	case config.CacheBackendRedis:
		completionCache = cache.NewRedisCache(redisClient, cfg.Dispatcher.CacheTTL, cfg.Dispatcher.CacheMaxEntries)
	default:
		memoryCache := cache.NewMemoryCache(cfg.Dispatcher.CacheTTL, cfg.Dispatcher.CacheMaxEntries)
		defer memoryCache.Close()
		completionCache = memoryCache
	}

	registry, err := inference.NewRegistry(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AI providers", zap.Error(err))
	}
	logger.Info("AI providers ready",
		zap.Int("backends", registry.BackendCount()),
		zap.String("cache_backend", cfg.Dispatcher.CacheBackend),
	)

	completions := dispatcher.New(dispatcher.NewConfig(cfg, registry.Tiers()), completionCache, m, logger)
	generator := esg.NewGenerator(completions, completions, logger)

	sessionStore := auth.NewSessionStore(redisClient, cfg.Auth.SessionDuration)
	authService := auth.NewService(db, sessionStore, logger)
	var stateStore *auth.StateStore
	if cfg.Auth.GoogleEnabled() {
		stateStore = auth.NewStateStore(redisClient, oauthStateTTL)
		logger.Info("Google login enabled")
	}
	authHandler := auth.NewHandler(authService, stateStore, &cfg.Auth, logger)
	authMiddleware := middleware.NewAuthMiddleware(authService, logger)

	esgHandler := handlers.NewESGHandler(generator, db, logger)
	completionHandler := handlers.NewCompletionHandler(completions, logger)
	healthHandler := handlers.NewHealthHandler(db, handlers.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}), cfg.Server.Environment)

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger, m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	registerAPI(r, cfg, redisClient, m, logger, authHandler, authMiddleware, esgHandler, completionHandler, healthHandler)
	r.NoRoute(handlers.NotFound)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Yahmi API server running",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
		zap.Strings("allowed_origins", cfg.Server.AllowedOrigins),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func registerAPI(
	r *gin.Engine,
	cfg *config.Config,
	redisClient *redis.Client,
	m *metrics.Metrics,
	logger *zap.Logger,
	authHandler *auth.Handler,
	authMiddleware *middleware.AuthMiddleware,
	esgHandler *handlers.ESGHandler,
	completionHandler *handlers.CompletionHandler,
	healthHandler *handlers.HealthHandler,
) {
	limits := cfg.RateLimit
	apiLimiter := middleware.NewRateLimiter(redisClient, "api", limits.APIRequests, limits.APIWindow, m, logger)
	signupLimiter := middleware.NewRateLimiter(redisClient, "signup", limits.SignupPerHour, time.Hour, m, logger)
	signinLimiter := middleware.NewRateLimiter(redisClient, "signin", limits.SigninPerHour, time.Hour, m, logger)

	api := r.Group("/api")
	api.Use(apiLimiter.Middleware())

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", signupLimiter.Middleware(), authHandler.SignUp)
		authRoutes.POST("/signin", signinLimiter.Middleware(), authHandler.SignIn)
		authRoutes.POST("/signout", authMiddleware.RequireAuth(), authHandler.SignOut)
		authRoutes.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		authRoutes.GET("/google/login", authHandler.GoogleLogin)
		authRoutes.GET("/google/callback", authHandler.GoogleCallback)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/profile", esgHandler.GetProfile)
		protected.PUT("/profile", esgHandler.UpdateProfile)

		protected.POST("/assessment/generate", esgHandler.GenerateAssessment)
		protected.POST("/assessment/submit", esgHandler.SubmitAssessment)
		protected.GET("/assessments", esgHandler.ListAssessments)

		protected.POST("/report/generate", esgHandler.GenerateReport)
		protected.GET("/reports", esgHandler.ListReports)
		protected.GET("/reports/latest", esgHandler.LatestReport)

		protected.POST("/analytics/deep", esgHandler.DeepAnalytics)
		protected.GET("/analytics/latest", esgHandler.LatestAnalytics)
		protected.POST("/analysis/stream", esgHandler.StreamAnalysis)

		protected.GET("/dashboard", esgHandler.Dashboard)
		protected.POST("/ai/complete", completionHandler.HandleCompletion)
		protected.GET("/health/db", healthHandler.DatabaseHealth)
	}
}
