// Package server exposes the estimate service over HTTP and the standard
// gRPC health protocol.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/logging"
	"github.com/rshade/ecotrack/internal/service"
)

// HealthServiceName is the service name reported by the gRPC health server
// in addition to the overall "" status.
const HealthServiceName = "ecotrack.Estimator"

const defaultShutdownTimeout = 10 * time.Second

// Server serves the HTTP API and, when configured, the gRPC health service.
type Server struct {
	cfg      config.ServerConfig
	svc      *service.Service
	gatherer prometheus.Gatherer
	logger   zerolog.Logger

	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
}

// New wires the HTTP routes and the gRPC health service. gatherer backs
// /metrics; nil selects the default Prometheus registry.
func New(cfg config.ServerConfig, svc *service.Service, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		cfg:      cfg,
		svc:      svc,
		gatherer: gatherer,
		logger:   logging.ComponentLogger(logger, "server"),
		health:   health.NewServer(),
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

// Handler returns the HTTP API with its middleware chain applied.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	s.Register(router)
	router.PanicHandler = s.handlePanic

	var h http.Handler = router
	h = corsMiddleware(s.cfg.CORS, h)
	h = s.accessLog(h)
	h = traceMiddleware(h)
	return h
}

// Register adds every API route to router.
func (s *Server) Register(router *httprouter.Router) {
	router.POST("/v1/estimates", s.handleEstimate)
	router.POST("/v1/estimates/batch", s.handleEstimateBatch)
	router.GET("/v1/estimates", s.handleHistory)
	router.POST("/v1/equivalencies", s.handleEquivalencies)
	router.GET("/v1/factors", s.handleFactorVersions)
	router.GET("/v1/factors/:version", s.handleFactorTable)
	router.GET("/healthz", s.handleHealth)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

// Run listens on the configured addresses and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	httpLn, err := lc.Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", s.cfg.Listen, err)
	}

	var grpcLn net.Listener
	if s.cfg.GRPCListen != "" {
		grpcLn, err = lc.Listen(ctx, "tcp", s.cfg.GRPCListen)
		if err != nil {
			_ = httpLn.Close()
			return fmt.Errorf("listen grpc %s: %w", s.cfg.GRPCListen, err)
		}
	}

	return s.Serve(ctx, httpLn, grpcLn)
}

// Serve serves on the given listeners until ctx is done or a listener fails,
// then shuts both down within the configured timeout. grpcLn may be nil.
func (s *Server) Serve(ctx context.Context, httpLn, grpcLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", httpLn.Addr().String()).Msg("starting HTTP server")
		if err := s.httpServer.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcLn != nil {
		g.Go(func() error {
			s.logger.Info().Str("addr", grpcLn.Addr().String()).Msg("starting gRPC health server")
			if err := s.grpcServer.Serve(grpcLn); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(grpcLn != nil)
	})

	return g.Wait()
}

func (s *Server) shutdown(withGRPC bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("shutting down")
	s.health.Shutdown()

	if withGRPC {
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.grpcServer.Stop()
			<-stopped
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("shutdown failed")
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
