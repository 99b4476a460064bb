package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"servicecircle/internal/core/auth"
	"servicecircle/internal/core/cache"
	"servicecircle/internal/core/config"
	"servicecircle/internal/core/database"
	"servicecircle/internal/core/logger"
	"servicecircle/internal/core/server"
	"servicecircle/internal/matching"
	"servicecircle/internal/repo"
	"servicecircle/internal/service"
	"servicecircle/internal/transport/http/handler"
	"servicecircle/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 存储（失败会直接 Fatal）
	stores := mustOpenStores(cfg, log)

	// 可选 Redis：provider 目录快照缓存
	var rc *cache.Cache
	if cfg.Redis.Enabled {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cache.WithPrefix(cfg.App.Name+":"))
		defer func() { _ = rc.Close() }()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unreachable, directory cache falls back to db", zap.Error(err))
		}
		cancel()
	}

	dir := service.NewDirectorySource(stores.Users, rc,
		time.Duration(cfg.Geo.DirectoryCacheTTLSec)*time.Second, log)
	market := service.NewMarketplace(service.Deps{
		Users:     stores.Users,
		Requests:  stores.Requests,
		Directory: dir,
		Options: matching.Options{
			MaxRadiusKm: cfg.Geo.MaxServiceRadiusKm,
			ListLimit:   cfg.Geo.ProviderListLimit,
		},
		Logger: log,
	})
	accounts := service.NewAccountService(stores.Users, dir, log)

	jwter := auth.New(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)

	// 路由（用户端）
	reg := router.NewRegistry(
		handler.NewAuthHandler(accounts, jwter, log),
		handler.NewReceiverHandler(market, log),
		handler.NewProviderHandler(market, log),
		handler.NewRequestHandler(market, log),
	)
	r := router.NewAPIEngine(log, jwter, cfg.Limits, reg)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		logger.ToStdLogger(log, zapcore.ErrorLevel),
	)

	baseURL := server.HumanURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.String("db_driver", cfg.DB.Driver),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()
	log.Info("user api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("user api stopped gracefully")
}

func mustOpenStores(cfg *config.Config, l *zap.Logger) repo.Stores {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory storage, data is lost on restart")
		return repo.NewMemoryStores()
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                logger.ToStdLogger(l, zapcore.WarnLevel),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}
	return repo.NewGormStores(db)
}
