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

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"servicecircle/internal/core/auth"
	"servicecircle/internal/core/config"
	"servicecircle/internal/core/database"
	"servicecircle/internal/core/logger"
	"servicecircle/internal/core/server"
	"servicecircle/internal/domain"
	"servicecircle/internal/matching"
	"servicecircle/internal/repo"
	"servicecircle/internal/service"
	"servicecircle/internal/transport/http/handler"
	"servicecircle/internal/transport/http/router"
)

func main() {
	issueToken := flag.Bool("issue-token", false, "print an admin JWT and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "ttl of the token printed by -issue-token")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	jwter := auth.New(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)

	// 运维签发后台 token，不启动服务
	if *issueToken {
		tok, err := jwter.IssueWithTTL(domain.Principal{Role: domain.RoleAdmin}, *tokenTTL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	stores := mustOpenStores(cfg, log)
	market := service.NewMarketplace(service.Deps{
		Users:    stores.Users,
		Requests: stores.Requests,
		Options: matching.Options{
			MaxRadiusKm: cfg.Geo.MaxServiceRadiusKm,
			ListLimit:   cfg.Geo.ProviderListLimit,
		},
		Logger: log,
	})
	adminSvc := service.NewAdminService(stores.Users, stores.Requests, market)
	reg := router.NewRegistry(handler.NewAdminHandler(adminSvc, log))

	// 路由（后台端）
	r := router.NewAdminEngine(log, jwter, cfg.Limits, reg)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second,
		logger.ToStdLogger(log, zapcore.ErrorLevel))

	baseURL := server.HumanURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动；失败立即退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}

// 后台与用户端共享同一个库；memory 模式下只能看到本进程数据
func mustOpenStores(cfg *config.Config, l *zap.Logger) repo.Stores {
	if cfg.DB.Driver == "memory" {
		l.Warn("admin running on in-memory storage, it will not see api data")
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
	return repo.NewGormStores(db)
}
