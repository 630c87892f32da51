package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const shutdownTimeout = 5 * time.Second

// Init registers metrics and installs the process tracer provider. The
// returned function flushes and shuts the provider down.
func Init() func(ctx context.Context) error {
	RegisterMetrics()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// MetricsServer exposes /metrics for Prometheus. An empty address disables it.
type MetricsServer struct {
	addr string

	mu     sync.Mutex
	server *http.Server
	done   chan struct{}
}

func NewMetricsServer(addr string) *MetricsServer {
	return &MetricsServer{addr: addr}
}

func (m *MetricsServer) Start(ctx context.Context) error {
	if m.addr == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server != nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	m.server = &http.Server{
		Addr:              m.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.done = make(chan struct{})

	server, done := m.server, m.done
	go func() {
		defer close(done)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err.Error()).Error("metrics server failed")
		}
	}()
	log.WithField("addr", m.addr).Info("metrics server started")
	return nil
}

func (m *MetricsServer) Stop(ctx context.Context) error {
	m.mu.Lock()
	server, done := m.server, m.done
	m.server = nil
	m.mu.Unlock()
	if server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown metrics server")
	}
	<-done
	return nil
}
