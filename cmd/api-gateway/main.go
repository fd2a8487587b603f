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

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	obseino "github.com/VenkataAditya897/vizzy-conversational/internal/observability/eino"
	"github.com/VenkataAditya897/vizzy-conversational/internal/wire"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/tracer"
)

func main() {
	configPath := flag.String("config", "", "配置文件目录")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	if cfg.Observability.Tracing.Enabled {
		shutdown, err := tracer.Init(ctx, tracer.Config{
			ServiceName: cfg.App.Name,
			Endpoint:    cfg.Observability.Tracing.Endpoint,
			SampleRate:  cfg.Observability.Tracing.SampleRate,
			Enabled:     true,
		})
		if err != nil {
			logger.Fatal(ctx, "初始化链路追踪失败", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	obseino.Init()

	app, cleanup, err := wire.InitializeApp(cfg)
	if err != nil {
		logger.Fatal(ctx, "装配应用失败", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "HTTP 服务启动", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "HTTP 服务异常退出", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "收到退出信号，开始优雅关停")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "优雅关停失败", err)
	}
	logger.Info(ctx, "服务已退出")
}
