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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/amenity-parser/internal/app"
	"github.com/joseph-ayodele/amenity-parser/internal/async"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/ingest"
	"github.com/joseph-ayodele/amenity-parser/internal/scheduler"
	"github.com/joseph-ayodele/amenity-parser/internal/server"
)

func main() {
	// Logger
	zl, _ := zap.NewProduction()
	defer zl.Sync()
	log := zl.Sugar()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Components
	cfg := common.LoadConfig()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.Build(ctx, cfg, logger, reg)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	defer a.Close()

	if a.Catalog != nil {
		if err := a.Catalog.Ping(ctx); err != nil {
			log.Warnw("catalog unavailable at startup; uploads will abort until it returns", "error", err)
		} else {
			log.Infow("catalog health OK", "kind", cfg.Catalog.Kind)
		}
	}

	// Runs
	runner := scheduler.NewRunner(func(ctx context.Context) (entity.RunReport, error) {
		return a.Discover(ctx, true)
	}, 0, logger)
	sched := scheduler.NewScheduler(ctx, cfg.Daemon.Schedule, runner, logger)
	if err := sched.Start(); err != nil {
		log.Fatalf("schedule %q: %v", cfg.Daemon.Schedule, err)
	}
	log.Infow("discovery scheduled", "spec", cfg.Daemon.Schedule, "next", sched.Next())

	// Watched directories
	queue := async.NewProcessorQueue(func(ctx context.Context, job async.Job) {
		if _, err := a.RunDocuments(ctx, []entity.SourceDocument{job.Document}, job.SkipParsed); err != nil {
			logger.Error("daemon.watch.run_failed", "path", job.Document.LocalPath, "error", err)
		}
	}, logger, async.WithBaseContext(ctx), async.WithProcessTimeout(cfg.Extract.DocTimeout+time.Minute))
	if len(cfg.Daemon.WatchDirs) > 0 {
		go watch(ctx, cfg, a, queue, logger)
		log.Infow("watching directories", "dirs", cfg.Daemon.WatchDirs)
	}

	// gRPC health
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)
	var pinger server.Pinger
	if a.Catalog != nil {
		pinger = a.Catalog
	}
	go server.NewHealthMonitor(hs, pinger, 30*time.Second, cfg.Catalog.PingTimeout, logger).Run(ctx)

	lis, err := net.Listen("tcp", cfg.Daemon.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Errorw("grpc serve", "error", err)
		}
	}()
	log.Infof("gRPC health serving on %s", cfg.Daemon.GRPCAddr)

	// Admin HTTP
	ingestSvc := server.NewIngestionService(a.Ingestor, func(ctx context.Context, docs []entity.SourceDocument) (entity.RunReport, error) {
		return a.RunDocuments(ctx, docs, true)
	}, logger)
	admin := server.NewAdmin(ctx, server.AdminConfig{PingTimeout: cfg.Catalog.PingTimeout},
		runner, ingestSvc, a.Jobs, pinger, reg, logger)
	httpServer := &http.Server{
		Addr:              cfg.Daemon.AdminAddr,
		Handler:           admin.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("admin serve", "error", err)
			stop()
		}
	}()
	log.Infof("admin HTTP serving on %s", cfg.Daemon.AdminAddr)

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	<-sched.Stop().Done()
	queue.Shutdown(shutdownCtx)
	log.Info("stopped.")
}

// watch feeds new PDFs from the watched directories into the queue.
func watch(ctx context.Context, cfg *common.Config, a *app.App, q async.Queue, logger *slog.Logger) {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Daemon.WatchDirs,
		InitialScan: true,
		Debounce:    cfg.Daemon.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("daemon.watch.start_failed", "error", err)
		return
	}
	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("daemon.watch.error", "error", err)
		case path, ok := <-events:
			if !ok {
				return
			}
			r, err := a.Ingestor.IngestPath(ctx, path)
			if err != nil {
				logger.Warn("daemon.watch.ingest_failed", "path", path, "error", err)
				continue
			}
			seq++
			job := async.Job{Seq: seq, Document: r.Document(), SkipParsed: true, SubmittedAt: time.Now()}
			if err := q.Enqueue(ctx, job); err != nil {
				logger.Warn("daemon.watch.enqueue_failed", "path", path, "error", err)
			}
		}
	}
}
