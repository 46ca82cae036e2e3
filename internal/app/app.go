package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduquiz_backend/internal/config"
	"eduquiz_backend/internal/controller"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/service"
	"eduquiz_backend/pkg/database"
	"eduquiz_backend/pkg/logger"
	"eduquiz_backend/pkg/monitoring"
	"eduquiz_backend/pkg/security"
	"eduquiz_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	class      *repository.ClassRepository
	quiz       *repository.QuizRepository
	submission *repository.SubmissionRepository
	progress   *repository.ProgressRepository
	assistance *repository.AssistanceRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	class      *service.ClassService
	quiz       *service.QuizService
	attempt    *service.AttemptService
	assistance *service.AssistanceService
	grading    *service.GradingService
}

type controllers struct {
	auth    *controller.AuthController
	class   *controller.ClassController
	quiz    *controller.QuizController
	student *controller.StudentController
	grading *controller.GradingController
	upload  *controller.UploadController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) ConfigCallbacks() []func(*config.Config) {
	return a.configCallbacks
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		class:      repository.NewClassRepository(db),
		quiz:       repository.NewQuizRepository(db),
		submission: repository.NewSubmissionRepository(db),
		progress:   repository.NewProgressRepository(db),
		assistance: repository.NewAssistanceRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.class = service.NewClassService(repos.class, repos.user)
	s.quiz = service.NewQuizService(repos.quiz, repos.class, repos.assistance)
	s.attempt = service.NewAttemptService(db, repos.quiz, repos.submission, repos.progress, repos.class, rdb)
	s.assistance = service.NewAssistanceService(db, repos.assistance, repos.quiz, repos.progress, rdb)
	s.grading = service.NewGradingService(db, repos.quiz, repos.submission, repos.progress, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		class:   controller.NewClassController(s.class),
		quiz:    controller.NewQuizController(s.quiz),
		student: controller.NewStudentController(s.quiz, s.attempt, s.assistance),
		grading: controller.NewGradingController(s.grading, s.assistance),
		upload:  controller.NewUploadController(s.storage),
		health:  controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
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
	defer logger.Log.Sync()

	logger.Log.Info("logger initialized")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("quiz-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

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
