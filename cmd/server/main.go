package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/config"
	"github.com/palemoky/bluff/internal/logger"
	"github.com/palemoky/bluff/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置，文件不存在时使用默认配置
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, *configPath); err != nil {
		log.Error("服务器异常退出", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
	log.Info("👋 服务器已关闭")
	closeLog()
}

func run(cfg *config.Config, log *zap.Logger, configPath string) error {
	srv, err := server.NewServer(cfg, log)
	if err != nil {
		return fmt.Errorf("创建服务器失败: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("🃏 吹牛牌服务器启动中...", zap.String("config", configPath))
	return srv.Run(ctx)
}
