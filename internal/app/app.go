package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"stem_dashboard/internal/config"
	"stem_dashboard/internal/controller"
	"stem_dashboard/internal/service"
	"stem_dashboard/internal/util"
	"stem_dashboard/pkg/configwatcher"
	"stem_dashboard/pkg/logger"
	"stem_dashboard/pkg/monitoring"
	"stem_dashboard/pkg/security"
	"stem_dashboard/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	services        *services
	tracer          *sdktrace.TracerProvider
	cfgMu           sync.Mutex
	configCallbacks []func(*config.Config)
}

type services struct {
	fetcher   *service.StatsFetcher
	storage   *service.StorageService
	catalog   *service.CatalogService
	tree      *service.CourseTree
	charts    *service.ChartRenderer
	banner    *service.Banner
	hub       *service.ViewHub
	dashboard *service.DashboardService
	export    *service.ExportService
}

type controllers struct {
	dashboard *controller.DashboardController
	course    *controller.CourseController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.Config = cfg
	a.cfgMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initServices(cfg *config.Config) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.fetcher = service.NewStatsFetcher(&cfg.Stats)
	s.tree = service.NewCourseTree()
	catalogName := cfg.Catalog.Object
	if cfg.Catalog.Source == util.StorageHTTP {
		catalogName = ""
	}
	s.catalog = service.NewCatalogService(s.storage, catalogName, s.tree)
	s.charts = service.NewChartRenderer(0, 0)
	s.banner = service.NewBanner()

	s.hub = service.NewViewHub()
	go s.hub.Run()

	s.dashboard = service.NewDashboardService(cfg, s.fetcher, s.charts, s.banner, s.tree, s.hub)
	s.export = service.NewExportService(s.dashboard)

	return s, nil
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		dashboard: controller.NewDashboardController(s.dashboard, s.export, s.hub),
		course:    controller.NewCourseController(s.tree),
		health:    controller.NewHealthController(s.tree, s.hub),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 && cfg.RateLimit.WindowMinutes > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{Config: cfg}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	services, err := app.initServices(cfg)
	if err != nil {
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	// 统计接口地址支持热更新
	app.RegisterConfigCallback(statsEndpointReloader(services.fetcher))

	return app, nil
}

func statsEndpointReloader(fetcher *service.StatsFetcher) func(*config.Config) {
	return func(newCfg *config.Config) {
		fetcher.SetEndpoint(newCfg.Stats.BaseURL, newCfg.Stats.Courses)
		logger.Log.Info("Stats endpoint updated", zap.String("baseUrl", newCfg.Stats.BaseURL))
	}
}

// startBackgroundTasks 加载课程目录、发起默认学期请求、监听配置文件
func (a *App) startBackgroundTasks(ctx context.Context) {
	go func() {
		if err := a.services.catalog.Load(ctx); err != nil {
			logger.Log.Error("Failed to load course catalog", zap.Error(err))
		}
	}()

	a.services.dashboard.Start(ctx)

	go func() {
		if err := configwatcher.WatchConfig(ctx, a.Config.ConfigFile, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	a.startBackgroundTasks(ctx)

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
	cancel()

	a.services.hub.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
