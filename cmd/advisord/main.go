package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/post-advisor/internal/app"
	"github.com/joseph-ayodele/post-advisor/internal/async"
	"github.com/joseph-ayodele/post-advisor/internal/common"
	"github.com/joseph-ayodele/post-advisor/internal/ingest"
	"github.com/joseph-ayodele/post-advisor/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	deps := server.Deps{
		Ingestor: a.Ingestor,
		Pipeline: a.Processor,
		Exports:  a.Exports,
		Uploads:  a.Uploads,
	}
	if a.DB != nil {
		deps.DB = a.DB
	}
	srv := server.New(deps, server.Config{MaxUploadBytes: cfg.Storage.MaxUploadBytes}, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("post-advisor listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	var grpcServer *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		healthServer := health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC serve error", "error", err)
			}
		}()
	}

	var queue *async.WorkerQueue
	if cfg.Storage.InboxDir != "" {
		queue = startInbox(ctx, a, cfg.Storage.InboxDir, logger)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", "error", err)
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}

// startInbox feeds files dropped into dir through the pipeline.
func startInbox(ctx context.Context, a *app.App, dir string, logger *slog.Logger) *async.WorkerQueue {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create inbox dir", "dir", dir, "error", err)
		return nil
	}
	queue := async.NewWorkerQueue(ingest.InboxHandler(a.Ingestor, a.Processor, logger), logger,
		async.WithWorkers(2),
		async.WithQueueSize(128),
		async.WithProcessTimeout(3*time.Minute),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: false,
		SkipHidden:  true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start inbox watcher", "dir", dir, "error", err)
		return queue
	}

	go func() {
		for {
			select {
			case p, ok := <-events:
				if !ok {
					return
				}
				if err := queue.Enqueue(ctx, async.Job{Path: p}); err != nil {
					logger.Warn("inbox enqueue failed", "path", p, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("inbox watcher error", "error", err)
			}
		}
	}()
	logger.Info("inbox watching", "dir", dir)
	return queue
}
