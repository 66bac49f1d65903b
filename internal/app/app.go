package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz_platform_backend/internal/config"
	"quiz_platform_backend/internal/controller"
	"quiz_platform_backend/internal/repository"
	"quiz_platform_backend/internal/service"
	"quiz_platform_backend/pkg/configwatcher"
	"quiz_platform_backend/pkg/database"
	"quiz_platform_backend/pkg/logger"
	"quiz_platform_backend/pkg/monitoring"
	"quiz_platform_backend/pkg/security"
	"quiz_platform_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user      *repository.UserRepository
	quiz      *repository.QuizRepository
	question  *repository.QuestionRepository
	attempt   *repository.AttemptRepository
	answer    *repository.AnswerRepository
	antiCheat *repository.AntiCheatRepository
}

type services struct {
	auth      *service.AuthService
	user      *service.UserService
	quiz      *service.QuizService
	attempt   *service.AttemptService
	antiCheat *service.AntiCheatService
	storage   *service.StorageService
}

type controllers struct {
	auth      *controller.AuthController
	quiz      *controller.QuizController
	attempt   *controller.AttemptController
	antiCheat *controller.AntiCheatController
	grade     *controller.GradeController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		quiz:      repository.NewQuizRepository(db, rdb),
		question:  repository.NewQuestionRepository(db),
		attempt:   repository.NewAttemptRepository(db),
		answer:    repository.NewAnswerRepository(db),
		antiCheat: repository.NewAntiCheatRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.quiz = service.NewQuizService(repos.quiz, repos.question, repos.attempt, repos.answer, repos.user)
	s.attempt = service.NewAttemptService(repos.quiz, repos.question, repos.attempt, repos.answer)
	s.antiCheat = service.NewAntiCheatService(repos.quiz, repos.attempt, repos.antiCheat)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.user),
		quiz:      controller.NewQuizController(s.quiz, s.storage),
		attempt:   controller.NewAttemptController(s.attempt),
		antiCheat: controller.NewAntiCheatController(s.antiCheat),
		grade:     controller.NewGradeController(s.attempt),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("quiz-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 配置热更新只覆盖可以安全在线变更的项
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(updated interface{}) {
		if next, ok := updated.(*config.Config); ok {
			cfg.RateLimit = next.RateLimit
			cfg.CORS = next.CORS
			logger.Log.Info("config reloaded")
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
