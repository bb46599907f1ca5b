package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"coderoom/internal/api"
	"coderoom/internal/collab"
	"coderoom/internal/config"
	"coderoom/internal/engine"
	"coderoom/internal/logger"
	"coderoom/internal/sandbox"
	"coderoom/internal/workspace"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	executor, err := sandbox.NewDockerExecutor(zlog)
	if err != nil {
		zlog.Fatal("failed to init docker executor", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if !executor.Ping(ctx) {
		zlog.Warn("container runtime not reachable at startup; executions will fail until it is")
	}
	cancel()

	if cfg.Sandbox.PreloadImages {
		if err := executor.PreloadImages(context.Background()); err != nil {
			zlog.Fatal("failed to preload images", zap.Error(err))
		}
	}

	workspaces := workspace.NewManager(cfg.Sandbox.ScratchRoot, zlog)
	execEngine := engine.New(executor, workspaces, cfg.Sandbox, zlog)
	hub := collab.NewHub(zlog)

	router := api.NewRouter(execEngine, hub, zlog)

	zlog.Info("server listening", zap.String("addr", cfg.Server.Addr))
	if err := router.Run(cfg.Server.Addr); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
