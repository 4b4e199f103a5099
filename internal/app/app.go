package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/controller"
	"raid_checker_backend/internal/middleware"
	"raid_checker_backend/internal/repository"
	"raid_checker_backend/internal/service"
	"raid_checker_backend/pkg/configwatcher"
	"raid_checker_backend/pkg/database"
	"raid_checker_backend/pkg/logger"
	"raid_checker_backend/pkg/monitoring"
	"raid_checker_backend/pkg/security"
	"raid_checker_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPath 是热更新监听的配置文件
const ConfigPath = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiter         *security.IPRateLimiter
	tracerProvider  *sdktrace.TracerProvider
	stop            chan struct{}
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	account *repository.AccountRepository
	char    *repository.CharacterRepository
	raid    *repository.RaidRepository
	weekly  *repository.WeeklyCompletionRepository
	party   *repository.PartyCompletionRepository
}

type services struct {
	auth        *service.AuthService
	raid        *service.RaidService
	character   *service.CharacterService
	ledger      *service.LedgerService
	party       *service.PartyService
	account     *service.AccountService
	admin       *service.AdminService
	maintenance *service.MaintenanceService
}

type controllers struct {
	auth       *controller.AuthController
	raid       *controller.RaidController
	character  *controller.CharacterController
	completion *controller.CompletionController
	party      *controller.PartyController
	account    *controller.AccountController
	admin      *controller.AdminController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.Config = cfg
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		account: repository.NewAccountRepository(db),
		char:    repository.NewCharacterRepository(db),
		raid:    repository.NewRaidRepository(db, rdb),
		weekly:  repository.NewWeeklyCompletionRepository(db),
		party:   repository.NewPartyCompletionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) (*services, error) {
	schedule, err := service.NewResetSchedule(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	s := &services{}
	eligibility := service.NewEligibilityResolver(repos.raid, repos.weekly)

	s.auth = service.NewAuthService(repos.account, cfg)
	s.raid = service.NewRaidService(repos.raid)
	s.character = service.NewCharacterService(repos.char, repos.account, service.NewLostArkClient(cfg.LostArk))
	s.ledger = service.NewLedgerService(db, repos.char, repos.raid, repos.weekly, eligibility, schedule, cfg.Ledger.GoldGroupCap)
	s.party = service.NewPartyService(db, repos.char, repos.raid, repos.party, eligibility, s.ledger, schedule)
	s.account = service.NewAccountService(repos.account, repos.char, repos.raid, repos.weekly, schedule)
	s.admin = service.NewAdminService(repos.account, repos.char, repos.weekly, repos.party, s.ledger, s.character, schedule)
	s.maintenance = service.NewMaintenanceService(repos.weekly, repos.party, schedule, cfg.Ledger.RetentionWeeks)
	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		raid:       controller.NewRaidController(s.raid),
		character:  controller.NewCharacterController(s.character),
		completion: controller.NewCompletionController(s.ledger),
		party:      controller.NewPartyController(s.party),
		account:    controller.NewAccountController(s.account),
		admin:      controller.NewAdminController(s.admin, s.maintenance),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	a.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, window)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 保留期之外的周数据每小时清理一次，本周数据不受影响
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				if _, _, err := s.maintenance.PruneExpired(); err != nil {
					logger.Log.Error("prune expired weeks error", zap.Error(err))
				}
			}
		}
	}()

	go func() {
		if err := configwatcher.WatchConfig(ConfigPath, a.applyConfig, a.stop); err != nil {
			logger.Log.Warn("Config watcher disabled", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		stop:   make(chan struct{}),
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	// 副本目录在任何事务之前加载进本地缓存
	if err := repos.raid.Warm(); err != nil {
		logger.Log.Fatal("Failed to load raid catalog", zap.Error(err))
	}

	services, err := app.initServices(repos, cfg, db)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == "debug" {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
	})
	app.RegisterConfigCallback(func(c *config.Config) {
		app.limiter.Update(c.RateLimit.MaxRequests, time.Duration(c.RateLimit.WindowMinutes)*time.Minute)
	})

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	close(a.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
