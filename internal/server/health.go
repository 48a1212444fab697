package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CatalogService is the gRPC health service name that follows catalog connectivity.
const CatalogService = "amenity.catalog"

// HealthMonitor mirrors catalog connectivity into a gRPC health server. The
// overall ("") status stays SERVING while the daemon runs; only the catalog
// service flips.
type HealthMonitor struct {
	hs       *health.Server
	catalog  Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHealthMonitor(hs *health.Server, catalog Pinger, interval, timeout time.Duration, logger *slog.Logger) *HealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return &HealthMonitor{hs: hs, catalog: catalog, interval: interval, timeout: timeout, logger: logger}
}

// Check pings the catalog once and updates the catalog service status.
func (m *HealthMonitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if m.catalog == nil {
		m.hs.SetServingStatus(CatalogService, healthpb.HealthCheckResponse_SERVICE_UNKNOWN)
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := m.catalog.Ping(ctx); err != nil {
		m.logger.Warn("health.catalog.unavailable", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.hs.SetServingStatus(CatalogService, st)
	return st
}

// Run checks immediately, then every interval until ctx is done, and finally
// marks everything NOT_SERVING.
func (m *HealthMonitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()
	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.hs.Shutdown()
			return
		case <-t.C:
			m.Check(ctx)
		}
	}
}
