package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/config"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/api/handler"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/api/router"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/database"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/jwt"
	applogger "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/logger"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/redis"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 数据库连接与迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 4. Redis 可选：未配置时登出不吊销 Token，公开接口不限流
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	}
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// 5. 文件存储
	store, err := storage.NewLocal(&cfg.Storage, cfg.Server.BaseURL)
	if err != nil {
		logger.Fatal("init storage", zap.Error(err))
	}

	// 6. Repository → Service → Handler 依赖注入
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, store, blacklist, clock.System(), logger)
	h := handler.NewHandler(svc, logger)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Auth.EnsureAdmin(bootCtx); err != nil {
		logger.Fatal("create bootstrap admin", zap.Error(err))
	}
	if n, err := svc.Lifecycle.ReconcileStatuses(bootCtx); err != nil {
		logger.Warn("initial defense reconcile failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("initial defense reconcile", zap.Int64("completed", n))
	}
	bootCancel()

	// 7. 后台答辩状态巡检
	var sweeper *service.Sweeper
	if cfg.Lifecycle.SweepInterval > 0 {
		sweeper = service.NewSweeper(svc.Lifecycle, cfg.Lifecycle.SweepInterval, logger)
		sweeper.Start(context.Background())
	}

	// 8. 启动 HTTP 服务（支持优雅关闭）
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if sweeper != nil {
		sweeper.Stop()
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
