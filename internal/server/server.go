// Package server exposes the document API over HTTP and a gRPC health
// service for orchestrators.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/permit-compliance/internal/export"
	"github.com/joseph-ayodele/permit-compliance/internal/observability"
	"github.com/joseph-ayodele/permit-compliance/internal/services/document"
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	JWTSecret      string
	JWTIssuer      string
	HealthInterval time.Duration
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	cfg     Config
	app     *fiber.App
	grpc    *grpc.Server
	health  *health.Server
	db      Pinger
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New wires the routes. db may be nil, in which case health checks only
// report the process as up.
func New(cfg Config, docs *document.Service, exporter *export.Service, db Pinger, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = 15 * time.Second
	}
	s := &Server{cfg: cfg, db: db, metrics: metrics, logger: logger}

	s.app = fiber.New(fiber.Config{
		AppName:               "permit-compliance",
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})
	s.app.Use(recover.New())
	s.app.Use(requestID())
	s.app.Use(metrics.Middleware())

	s.app.Get("/healthz", s.healthz)
	s.app.Get("/metrics", metrics.Handler())

	auth := NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer)
	api := s.app.Group("/api/v1", auth.Middleware())
	NewDocumentHandler(docs, exporter, logger).Register(api)

	s.grpc = grpc.NewServer()
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) healthz(c *fiber.Ctx) error {
	if err := s.ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}

// Run serves HTTP and gRPC until ctx is cancelled, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.GRPCAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http.serve", "addr", s.cfg.HTTPAddr)
		return s.app.Listen(s.cfg.HTTPAddr)
	})
	g.Go(func() error {
		s.logger.Info("grpc.serve", "addr", s.cfg.GRPCAddr)
		if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.watchHealth(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("server.shutdown")
		s.health.Shutdown()
		s.grpc.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	})
	return g.Wait()
}

// watchHealth mirrors database reachability into the gRPC health service.
func (s *Server) watchHealth(ctx context.Context) {
	update := func() {
		status := healthpb.HealthCheckResponse_SERVING
		if err := s.ping(ctx); err != nil {
			s.logger.Warn("health.db.unreachable", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		s.health.SetServingStatus("", status)
	}
	update()
	t := time.NewTicker(s.cfg.HealthInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			update()
		}
	}
}
