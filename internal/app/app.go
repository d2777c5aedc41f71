package app

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/controller"
	"course_media_backend/internal/middleware"
	"course_media_backend/internal/repository"
	"course_media_backend/internal/service"
	"course_media_backend/pkg/configwatcher"
	"course_media_backend/pkg/database"
	"course_media_backend/pkg/logger"
	"course_media_backend/pkg/monitoring"
	"course_media_backend/pkg/security"
	"course_media_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	originChecker   *middleware.OriginChecker
	configCallbacks []func(*config.Config)
	tracerProvider  *sdktrace.TracerProvider
}

type repositories struct {
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	attempt    *repository.QuizAttemptRepository
}

type services struct {
	storage     *service.StorageService
	entitlement *service.EntitlementService
	asset       *service.AssetService
	stream      *service.StreamService
	quiz        *service.QuizService
	course      *service.CourseService
}

type controllers struct {
	stream *controller.StreamController
	quiz   *controller.QuizController
	course *controller.CourseController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		attempt:    repository.NewQuizAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	// 存储客户端显式构造注入，不走全局配置
	signer, err := service.NewMinioURLSigner(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage signer", zap.Error(err))
	}

	s.storage = service.NewStorageService(signer, cfg)
	s.entitlement = service.NewEntitlementService(repos.enrollment, rdb)
	s.asset = service.NewAssetService(repos.course)
	s.stream = service.NewStreamService(s.storage, cfg)
	s.quiz = service.NewQuizService(repos.attempt, repos.course, cfg)
	s.course = service.NewCourseService(repos.course, s.entitlement)

	// 配置热加载：签名 TTL/水印、衰减常量
	a.RegisterConfigCallback(s.storage.Reload)
	a.RegisterConfigCallback(s.quiz.Reload)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		stream: controller.NewStreamController(s.asset, s.entitlement, s.stream),
		quiz:   controller.NewQuizController(s.quiz, s.entitlement),
		course: controller.NewCourseController(s.course),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startConfigWatcher() {
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Config reloaded")
		a.originChecker.Update(newCfg.Stream.AllowedOrigins)
		for _, cb := range a.configCallbacks {
			cb(newCfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	runMigrations := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, runMigrations)
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
		Config:        cfg,
		DB:            db,
		Redis:         rdb,
		originChecker: middleware.NewOriginChecker(cfg.Stream.AllowedOrigins),
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("course-media-gateway", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		// 优雅停机时统一关闭，见 Run
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	app.startConfigWatcher()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
