package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/MorseWayne/stock_console/internal/client"
	"github.com/MorseWayne/stock_console/internal/config"
	"github.com/MorseWayne/stock_console/internal/console"
	"github.com/MorseWayne/stock_console/internal/logger"
	"github.com/MorseWayne/stock_console/internal/repl"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, lg, nil
}

// newSession 组装依赖链：库存服务客户端 -> 视图控制器 -> 变更协调器 -> 交互会话
func newSession(cfg *config.Config, lg *zap.Logger) (*repl.Session, *console.Controller, error) {
	inv, err := client.NewInventoryClient(cfg.Inventory.BaseURL,
		client.WithTimeout(cfg.Inventory.Timeout),
		client.WithLogger(lg),
	)
	if err != nil {
		return nil, nil, err
	}

	ctrl := console.NewController(inv, cfg.Console.PageSize, lg)
	coord := console.NewCoordinator(inv, ctrl, lg)

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	session := repl.NewSession(ctrl, coord, os.Stdin, os.Stdout,
		repl.WithPrompt(interactive),
		repl.WithLogger(lg),
	)
	return session, ctrl, nil
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	session, ctrl, err := newSession(cfg, lg)
	if err != nil {
		lg.Sugar().Fatalw("failed to initialize console", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Sugar().Infow("console starting",
		"inventory", cfg.Inventory.BaseURL,
		"page_size", ctrl.PageSize(),
	)

	// 首次加载失败不退出，用户可以稍后执行 list 重试
	if _, err := session.Execute(ctx, "list"); err != nil {
		fmt.Fprintf(os.Stdout, "error: %v\n", err)
		lg.Sugar().Warnw("initial load failed", "err", err)
	}

	if err := session.Run(ctx); err != nil {
		lg.Sugar().Errorw("console input error", "err", err)
	}
	lg.Sugar().Infow("console exited")
}
