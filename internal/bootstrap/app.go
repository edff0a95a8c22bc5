package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "doodle-academy/internal/handler/http"
	wsHandler "doodle-academy/internal/handler/websocket"
	"doodle-academy/internal/hub"
	gormpersistence "doodle-academy/internal/infra/persistence/gorm"
	"doodle-academy/internal/infra/setup"
	redisstate "doodle-academy/internal/infra/state/redis"
	"doodle-academy/internal/middleware"
	"doodle-academy/internal/repository"
	"doodle-academy/internal/service"
	"doodle-academy/internal/tasks"
	"doodle-academy/internal/worker"
)

// Config 存储从环境变量或 .env 加载的配置
type Config struct {
	DBUser             string
	DBPassword         string
	DBHost             string
	DBPort             string
	DBName             string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	JWTSecret          string
	JWTExpiryHours     int
	ServerPort         string
	LogLevel           string
	AppEnv             string // development / production
	KeyPrefix          string // Redis key 前缀
	CORSAllowedOrigin  string
	ThumbnailSize      int
	DraftCheckSchedule string
	RateLimitMax       int
	RateLimitWindow    time.Duration
}

// LoadConfig 从环境变量加载配置，.env 文件可选
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             os.Getenv("DB_PORT"),
		DBName:             os.Getenv("DB_NAME"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		ServerPort:         envOr("SERVER_PORT", "8080"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		AppEnv:             envOr("APP_ENV", "development"),
		KeyPrefix:          envOr("REDIS_KEY_PREFIX", "da:"),
		CORSAllowedOrigin:  envOr("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		DraftCheckSchedule: envOr("DRAFT_CHECK_SCHEDULE", "@every 1m"),
		JWTExpiryHours:     24,
		RateLimitMax:       100,
		RateLimitWindow:    1 * time.Second,
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB")) // 解析失败按 0 处理

	cfg.ThumbnailSize = 256
	if raw := os.Getenv("THUMBNAIL_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("environment variable THUMBNAIL_SIZE must be a positive integer, got %q", raw)
		}
		cfg.ThumbnailSize = size
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// App 包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Scheduler   *asynq.Scheduler
	Hub         *hub.Hub
	HttpServer  *http.Server
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := newLogger(cfg)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	db, err := setup.InitDB(setup.DBConfig{
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	log.Info("Database initialized")

	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)

	// 4. Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	colorRepo := gormpersistence.NewGormColorRepository(db)
	projectRepo := gormpersistence.NewGormProjectRepository(db)
	draftRepo := gormpersistence.NewGormDraftRepository(db)
	xpEventRepo := gormpersistence.NewGormXPEventRepository(db)
	stateRepo := redisstate.NewRedisStateRepository(redisClient, cfg.KeyPrefix)

	// 5. Services
	authService, err := service.NewAuthService(userRepo, colorRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	progressService := service.NewProgressService(userRepo, colorRepo, asynqClient)
	projectService := service.NewProjectService(projectRepo, stateRepo, asynqClient, cfg.ThumbnailSize)
	draftService := service.NewDraftService(draftRepo, stateRepo)
	log.Info("Services initialized")

	// 6. Hub，经验变化推送给在线会话
	hubInstance := hub.NewHub(progressService, projectService, draftService)
	progressService.OnProgressChanged(hubInstance.RefreshProgress)

	// 7. Worker 和周期任务
	workerServer := worker.NewWorkerServer(redisClientOpt, worker.Handlers{
		XPEvents:   xpEventRepo,
		Thumbnails: projectService,
		Sessions:   hubInstance,
		Drafts:     draftService,
	}, log)
	scheduler := asynq.NewScheduler(redisClientOpt, &asynq.SchedulerOpts{Location: time.UTC})

	// 8. 路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := newRouter(cfg, log, stateRepo, routeHandlers{
		auth:     httpHandler.NewAuthHandler(authService),
		progress: httpHandler.NewProgressHandler(progressService),
		minigame: httpHandler.NewMinigameHandler(progressService),
		project:  httpHandler.NewProjectHandler(projectService),
		ws:       wsHandler.NewWebSocketHandler(hubInstance, progressService, projectService, draftService, cfg.CORSAllowedOrigin),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		AsynqServer: workerServer,
		Scheduler:   scheduler,
		Hub:         hubInstance,
		HttpServer:  httpServer,
	}, nil
}

func newLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel) // LoadConfig 已校验
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	// 各包直接使用 logrus 标准 logger，保持同样的格式和级别
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
	return log
}

type routeHandlers struct {
	auth     *httpHandler.AuthHandler
	progress *httpHandler.ProgressHandler
	minigame *httpHandler.MinigameHandler
	project  *httpHandler.ProjectHandler
	ws       *wsHandler.WebSocketHandler
}

func newRouter(cfg *Config, log *logrus.Logger, stateRepo repository.StateRepository, h routeHandlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigin))
	router.Use(middleware.RateLimit(stateRepo, cfg.RateLimitMax, cfg.RateLimitWindow))

	auth := middleware.Auth(cfg.JWTSecret)

	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.auth.Register)
		authRoutes.POST("/login", h.auth.Login)
	}
	me := api.Group("/me").Use(auth)
	{
		me.GET("/progress", h.progress.GetProgress)
		me.POST("/xp", h.progress.GrantXP)
		me.GET("/colors", h.progress.ListColors)
		me.POST("/colors/mix", h.progress.MixColors)
	}
	games := api.Group("/minigames").Use(auth)
	{
		games.GET("", h.minigame.List)
		games.GET("/art-class/prompt", h.minigame.ArtClassPrompt)
		games.GET("/memory-draw/round", h.minigame.MemoryDrawRound)
	}
	projects := api.Group("/projects").Use(auth)
	{
		projects.GET("", h.project.List)
		projects.POST("", h.project.Create)
		projects.GET("/:id", h.project.Get)
		projects.PUT("/:id", h.project.Update)
		projects.DELETE("/:id", h.project.Delete)
		projects.GET("/:id/thumbnail.png", h.project.Thumbnail)
		projects.GET("/:id/export.pdf", h.project.ExportPDF)
	}
	wsRoutes := router.Group("/ws").Use(auth)
	{
		wsRoutes.GET("/canvas", h.ws.HandleConnection)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	return router
}

// Start 启动后台 goroutine 和 HTTP 服务器
func (a *App) Start() {
	go a.Hub.Run()
	a.Log.Info("Hub routine started")

	go a.AsynqServer.Start()

	a.registerPeriodicTasks()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	schedule := a.Config.DraftCheckSchedule
	entryID, err := a.Scheduler.Register(schedule, tasks.NewDraftCheckpointTask())
	if err != nil {
		a.Log.Errorf("Could not register periodic draft checkpoint task: %v", err)
		return
	}
	a.Log.Infof("Periodic draft checkpoint task registered with schedule '%s' (EntryID: %s)", schedule, entryID)

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := a.Scheduler.Run(); err != nil {
			a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
		}
	}()
}

// Shutdown 优雅关闭：先停止接收请求，再保存在线草稿，最后关闭连接
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	// Hub 停止时会保存所有在线草稿会话
	if a.Hub != nil {
		a.Hub.Stop(ctx)
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware 记录每个请求
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
		})

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			entry.Error(errorMessage)
			return
		}
		switch {
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}

// CORSMiddleware 只允许配置的前端来源
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
