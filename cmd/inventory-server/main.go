package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/api"
	"github.com/MorseWayne/stock_console/internal/config"
	"github.com/MorseWayne/stock_console/internal/logger"
	"github.com/MorseWayne/stock_console/internal/repo"
	"github.com/MorseWayne/stock_console/internal/router"
	"github.com/MorseWayne/stock_console/internal/service"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, "inventory-server", cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, lg, nil
}

// initRepository 根据 STORE_TYPE 选择存储，Redis 不可用时回退到内存存储
func initRepository(cfg *config.Config, lg *zap.Logger) (repo.ProductRepository, *redis.Client) {
	if cfg.Store.Type != "redis" {
		lg.Sugar().Infow("product store", "type", "memory")
		return repo.NewMemoryProductRepository(), nil
	}

	client, err := repo.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		lg.Sugar().Warnw("failed to connect to Redis, falling back to memory store", "addr", cfg.Redis.Addr(), "error", err)
		return repo.NewMemoryProductRepository(), nil
	}
	lg.Sugar().Infow("product store", "type", "redis", "addr", cfg.Redis.Addr())
	return repo.NewRedisProductRepository(client, cfg.App.Name), client
}

// initDependencies 初始化依赖注入链：仓储 -> 服务 -> API 处理器
func initDependencies(productRepo repo.ProductRepository, lg *zap.Logger) *router.Dependencies {
	productService := service.NewProductService(productRepo, lg)
	return &router.Dependencies{
		ProductHandler: api.NewProductHandler(productService, lg),
	}
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	lg.Sugar().Infow("server starting", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Sugar().Fatalw("server error", "err", err)
		}
	case <-quit:
		lg.Sugar().Infow("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Sugar().Errorw("server shutdown error", "err", err)
	}
	lg.Sugar().Infow("server exited")
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	productRepo, redisClient := initRepository(cfg, lg)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				lg.Sugar().Errorw("failed to close redis client", "err", err)
			}
		}()
	}

	deps := initDependencies(productRepo, lg)
	startServer(cfg, router.New(cfg, deps, lg), lg)
}
