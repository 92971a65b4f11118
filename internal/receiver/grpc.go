package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// GRPCReceiver handles OTLP gRPC log requests.
type GRPCReceiver struct {
	collogspb.UnimplementedLogsServiceServer
	sink   Ingester
	server *grpc.Server
	addr   string
}

// NewGRPCReceiver creates a new gRPC receiver.
func NewGRPCReceiver(addr string, sink Ingester) *GRPCReceiver {
	r := &GRPCReceiver{
		sink:   sink,
		addr:   addr,
		server: grpc.NewServer(),
	}

	collogspb.RegisterLogsServiceServer(r.server, r)

	// Register reflection service for debugging with grpcurl
	reflection.Register(r.server)

	return r
}

// Start starts the gRPC server.
func (r *GRPCReceiver) Start() error {
	lis, err := net.Listen("tcp", r.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return r.Serve(lis)
}

// Serve serves the logs service on an existing listener.
func (r *GRPCReceiver) Serve(lis net.Listener) error {
	slog.Info("gRPC server listening", "addr", lis.Addr().String())
	return r.server.Serve(lis)
}

// Shutdown gracefully shuts down the gRPC server.
func (r *GRPCReceiver) Shutdown(ctx context.Context) error {
	r.server.GracefulStop()
	return nil
}

// Export implements the LogsService Export RPC.
func (r *GRPCReceiver) Export(ctx context.Context, req *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	return ingest(r.sink, req), nil
}
