package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/rig-bridge/internal/api"
	"github.com/taoyao-code/rig-bridge/internal/app"
	cfgpkg "github.com/taoyao-code/rig-bridge/internal/config"
	"github.com/taoyao-code/rig-bridge/internal/engine"
	"github.com/taoyao-code/rig-bridge/internal/health"
	"github.com/taoyao-code/rig-bridge/internal/httpserver"
	"github.com/taoyao-code/rig-bridge/internal/logging"
	"github.com/taoyao-code/rig-bridge/internal/metrics"
	"github.com/taoyao-code/rig-bridge/internal/pad"
	"github.com/taoyao-code/rig-bridge/internal/rigconn"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
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
	log := zap.L()

	bridgeID := app.GenerateBridgeID()
	log.Info("rig-bridge starting",
		zap.String("bridge_id", bridgeID),
		zap.String("rig_addr", cfg.Rig.Addr))

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		metricsHandler = metrics.Handler(reg)
	}

	// 4) 输入设备（缺失时降级为中立采样器）
	sampler := pad.Open(cfg.Pad, log)

	// 5) 同步引擎
	state := engine.NewSyncState(cfg.Engine.StepsHz)
	dial := func() (engine.Requester, error) {
		conn, err := rigconn.Dial(cfg.Rig)
		if err != nil {
			return nil, err
		}
		conn.SetMetricsCallback(func(n int) { appMetrics.RigBytesReceived.Add(float64(n)) })
		return conn, nil
	}
	eng := engine.New(dial, state, sampler, engine.Config{
		SyncInterval:     cfg.Engine.SyncInterval,
		InputInterval:    cfg.Engine.InputInterval,
		DefaultFrequency: cfg.Engine.DefaultFrequency,
	}, appMetrics, log)

	// 6) 就绪检查与 HTTP 服务
	checks := health.NewAggregator(
		health.NewRigChecker(cfg.Rig.Addr, cfg.Rig.DialTimeout),
		health.NewEngineChecker(eng.Running),
	)
	readyFn := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return checks.Ready(ctx)
	}

	limiter := api.NewLimiter(cfg.HTTP.RateLimit.PerSecond, cfg.HTTP.RateLimit.Burst)
	apiHandler := api.NewHandler(eng, limiter, appMetrics, log, bridgeID, cfg.Rig.Addr)
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, readyFn, apiHandler.RegisterRoutes)

	go func() {
		if err := httpSrv.Start(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", zap.Error(err))
		}
	}()

	// 7) 启动引擎：连接失败即整体启动失败
	if err := eng.Start(); err != nil {
		log.Fatal("engine start error", zap.Error(err))
	}

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigCh:
		log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		eng.Stop()
	case <-eng.Done():
		// 传输层致命错误：引擎自行停机，进程报告失败退出
		if err := eng.Err(); err != nil {
			log.Error("engine terminated", zap.Error(err))
			exitCode = 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	_ = sampler.Close()

	if exitCode != 0 {
		_ = logger.Sync()
		os.Exit(exitCode)
	}
}
