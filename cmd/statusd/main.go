package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"forum/internal/clock"
	"forum/internal/config"
	cronrunner "forum/internal/cron"
	"forum/internal/db"
	"forum/internal/events"
	"forum/internal/handler"
	"forum/internal/logger"
	"forum/internal/reconciler"
	gormrepository "forum/internal/repository/gorm"
	"forum/internal/scheduler"
	"forum/internal/service"
	"forum/internal/status"

	_ "forum/docs"
)

func main() {
	cfgPath := os.Getenv("FORUM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("FORUM_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	clk := clock.New()
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	hub := events.NewHub(logger)
	publishers := events.Multi{hub}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		publishers = append(publishers, events.NewRedisPublisher(redisClient, cfg.Redis.ChannelPrefix))
		defer redisClient.Close()
	}

	schedulerSvc := &scheduler.Scheduler{
		Repo:   store,
		Clock:  clk,
		Logger: logger,
		Config: cfg.Scheduler,
	}
	statusSvc := &status.Service{
		Repo:      store,
		Clock:     clk,
		Events:    publishers,
		Scheduler: schedulerSvc,
		Logger:    logger,
	}
	reconcilerSvc := &reconciler.Reconciler{
		Repo:      store,
		Status:    statusSvc,
		Events:    publishers,
		Destroyer: reconciler.NopDestroyer{},
		Clock:     clk,
		Logger:    logger,
		Config:    cfg.Reconciler,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Settings: settingsSvc}
	healthHandler.Register(engine)
	handler.RegisterDocs(engine)
	topicHandler := &handler.TopicHandler{
		Repo:      store,
		Status:    statusSvc,
		Scheduler: schedulerSvc,
	}
	topicHandler.Register(engine)
	adminHandler := &handler.AdminHandler{
		Repo:       store,
		Reconciler: reconcilerSvc,
		Settings:   settingsSvc,
		Clock:      clk,
	}
	adminHandler.Register(engine)
	streamHandler := &handler.StreamHandler{
		Hub:      hub,
		Settings: settingsSvc,
		Logger:   logger,
	}
	streamHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.Reconcile, func(ctx context.Context) {
			if !settingsSvc.IsEnabled(ctx, service.FeatureReconciler, true) {
				return
			}
			applied, err := reconcilerSvc.RunOnce(ctx, clk.Now())
			if err != nil {
				logger.Warn("cron reconcile failed", zap.Error(err))
				return
			}
			if len(applied) > 0 {
				logger.Info("cron reconcile ok", zap.Int("transitions", len(applied)))
			}
		})
		if err != nil {
			logger.Warn("cron register reconcile failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
