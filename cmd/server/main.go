package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"cinema-server/internal/collaboration"
	"cinema-server/internal/config"
	"cinema-server/internal/credentials"
	"cinema-server/internal/handler"
	"cinema-server/internal/messaging"
	"cinema-server/internal/providers"
	"cinema-server/internal/service"
	"cinema-server/shared/configservice"
	"cinema-server/shared/database"
	"cinema-server/shared/interfaces"
	sharedLogger "cinema-server/shared/logger"
	sharedMiddleware "cinema-server/shared/middleware"
)

const (
	connectRetries    = 50
	connectRetryDelay = 3 * time.Second
	configLoadTimeout = 10 * time.Second
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := sharedLogger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Configuration loaded", zap.String("env", cfg.Env), zap.String("logLevel", cfg.Log.Level))

	// --- External Connections ---
	if cfg.MigrateOnStart {
		if err := database.ApplyMigrations(cfg.GetDSN(), logger); err != nil {
			zap.L().Fatal("Failed to apply migrations", zap.String("dsn", cfg.GetMaskedDSN()), zap.Error(err))
		}
	}

	pgPool, err := setupPostgres(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	redisClient, err := setupRedis(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	var (
		mqConn    *amqp091.Connection
		publisher messaging.EventPublisher = messaging.NoopPublisher{}
	)
	if cfg.RabbitMQURL != "" {
		mqConn, err = connectRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()
		publisher, err = messaging.NewRabbitMQPublisher(mqConn, cfg.GenerationEventsQueue, logger)
		if err != nil {
			zap.L().Fatal("Failed to create generation event publisher", zap.Error(err))
		}
	} else {
		zap.L().Warn("RABBITMQ_URL is empty, generation events and config sync are disabled")
	}
	defer publisher.Close()

	// --- Dependency Injection ---
	sceneRepo := database.NewPgSceneRepository(pgPool, logger.Named("PgSceneRepo"))
	userKeysRepo := database.NewPgUserAIKeysRepository(pgPool, logger.Named("PgUserAIKeysRepo"))
	sessionRepo := database.NewPgCollaborationSessionRepository(pgPool, logger.Named("PgCollabSessionRepo"))
	systemConfigRepo := database.NewPgSystemAIConfigRepository(pgPool, logger.Named("PgSystemAIConfigRepo"))
	jobRepo := database.NewRedisGenerationJobRepository(redisClient, 0, logger.Named("RedisGenerationJobRepo"))

	configService, err := loadSystemConfig(systemConfigRepo, configLoadTimeout, logger)
	if err != nil {
		zap.L().Fatal("Failed to load system AI config", zap.Error(err))
	}

	// Без RabbitMQ кэш обновляется только на экземпляре, принявшем запрос админа
	appCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	var configCache service.ConfigCache = configService
	if mqConn != nil {
		configSync, err := messaging.NewConfigSync(mqConn, configService, logger)
		if err != nil {
			zap.L().Fatal("Failed to create config sync", zap.Error(err))
		}
		defer configSync.Close()
		if err := configSync.Start(appCtx); err != nil {
			zap.L().Fatal("Failed to start config sync consumer", zap.Error(err))
		}
		configCache = configSync
	}

	resolver := credentials.NewResolver(configService, userKeysRepo, cfg, logger)
	factory := providers.NewFactory(providers.Settings{
		Timeout:           cfg.ProviderTimeout,
		OpenAIBaseURL:     cfg.OpenAIBaseURL,
		OpenAIChatModel:   configService.GetString(configservice.ConfigKeyChatModel, cfg.OpenAIChatModel),
		OpenAIImageModel:  cfg.OpenAIImageModel,
		AnthropicBaseURL:  cfg.AnthropicBaseURL,
		AnthropicModel:    cfg.AnthropicModel,
		OllamaModel:       cfg.OllamaModel,
		KlingBaseURL:      cfg.KlingBaseURL,
		KlingModel:        cfg.KlingModel,
		RunwayBaseURL:     cfg.RunwayBaseURL,
		RunwayModel:       cfg.RunwayModel,
		VideoLegacyShapes: cfg.VideoLegacyShapes,
	}, resolver, logger)

	// Параметры опроса читаются на каждую задачу: админ может поменять их без рестарта
	pollSettings := func() (time.Duration, int) {
		return config.ClampPoll(
			configService.GetDuration(configservice.ConfigKeyVideoPollInterval, cfg.PollInterval),
			configService.GetInt(configservice.ConfigKeyVideoPollMaxAttempts, cfg.PollMaxAttempts),
		)
	}

	screenplaySvc := service.NewScreenplayService(sceneRepo, logger)
	generationSvc := service.NewGenerationService(factory, jobRepo, publisher, pollSettings, logger)
	aiConfigSvc := service.NewAIConfigService(systemConfigRepo, configCache, logger)
	gate := collaboration.NewGate(sessionRepo, sceneRepo, logger)

	// --- Rate limit для /collab: коды доступа перебираются по IP ---
	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        time.Minute,
		Limit:       uint(cfg.CollabRateLimit),
	})
	collabLimiter := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	cinemaHandler := handler.NewCinemaHandler(screenplaySvc, generationSvc, aiConfigSvc, gate, cfg.JWTSecret, logger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", handler.AccessCodeHeader}
	corsConfig.ExposeHeaders = []string{"X-Job-ID", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	cinemaHandler.RegisterRoutes(router, collabLimiter)

	// Метрики подключаются после регистрации маршрутов
	p.Use(router)

	// Видео-запрос держит соединение на весь бюджет опроса; бюджет ограничен сверху ClampPoll
	writeTimeout := 2*cfg.ProviderTimeout + config.MaxPollBudget + 30*time.Second

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort), zap.Duration("writeTimeout", writeTimeout))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")
	stopBackground()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupPostgres создает пул соединений с повторными попытками.
// loadSystemConfig загружает system_ai_config со своим таймаутом:
// подключение к БД до этого может занять минуты ретраев.
func loadSystemConfig(repo interfaces.SystemAIConfigRepository, timeout time.Duration, logger *zap.Logger) (*configservice.ConfigService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return configservice.NewConfigService(ctx, repo, logger)
}

func setupPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	zap.L().Info("Attempting to connect to PostgreSQL",
		zap.String("dsn", cfg.GetMaskedDSN()),
		zap.Int("max_retries", connectRetries),
		zap.Duration("retry_delay", connectRetryDelay),
	)

	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err == nil {
			err = pool.Ping(connectCtx)
			if err != nil {
				pool.Close()
			}
		}
		connectCancel()

		if err == nil {
			zap.L().Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}

		lastErr = err
		zap.L().Warn("Postgres connection failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < connectRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", connectRetries, lastErr)
}

// setupRedis создает клиент Redis с повторными попытками.
func setupRedis(cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		client := redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			zap.L().Info("Connected to Redis", zap.String("address", opts.Addr), zap.Int("attempt", attempt))
			return client, nil
		}

		client.Close()
		lastErr = err
		zap.L().Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < connectRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", connectRetries, lastErr)
}

// connectRabbitMQ подключается к RabbitMQ с повторными попытками.
func connectRabbitMQ(rawURL string, logger *zap.Logger) (*amqp091.Connection, error) {
	logger.Info("Attempting to connect to RabbitMQ", zap.String("url", maskURL(rawURL)), zap.Int("max_retries", connectRetries))

	var err error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		var conn *amqp091.Connection
		conn, err = amqp091.Dial(rawURL)
		if err == nil {
			logger.Info("Connected to RabbitMQ", zap.Int("attempt", attempt))
			go func() {
				closeErr := <-conn.NotifyClose(make(chan *amqp091.Error, 1))
				if closeErr != nil {
					logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		logger.Warn("RabbitMQ connection failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(connectRetryDelay)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", connectRetries, err)
}

// maskURL убирает пароль из URL для логов.
func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
