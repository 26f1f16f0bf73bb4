package rpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
)

// ServiceName is the health service key reported for the list backend.
const ServiceName = "movielist"

const pingTimeout = 5 * time.Second

type HealthServer struct {
	health *health.Server
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewHealthServer(gdb *gorm.DB, logger *zap.SugaredLogger) *HealthServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		health: h,
		db:     gdb,
		logger: logger,
	}
}

func (s *HealthServer) Register(grpcServer *grpc.Server) {
	healthpb.RegisterHealthServer(grpcServer, s.health)
	reflection.Register(grpcServer)
}

// Refresh pings the store and publishes the result.
func (s *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := db.Ping(ctx, s.db); err != nil {
		s.logger.Warnw("store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, gdb *gorm.DB, logger *zap.SugaredLogger) *HealthServer {
	instance := NewHealthServer(gdb, logger)

	grpcServer := grpc.NewServer()
	instance.Register(grpcServer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr())
			if err != nil {
				return err
			}
			instance.Refresh(ctx)

			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("grpc server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			instance.Shutdown()
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}
