package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taoyao-code/smart-lock/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/smart-lock/internal/config"
	"github.com/taoyao-code/smart-lock/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./configs/example.yaml)")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4) 组装并运行
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error("smart-lock exited", zap.Error(err))
		os.Exit(1)
	}
}
