package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCPinger checks reachability through the server's standard gRPC health
// service.
type GRPCPinger struct {
	conn    *grpc.ClientConn
	health  healthpb.HealthClient
	service string
}

// NewGRPCPinger dials lazily; the first Ping establishes the connection.
// Extra dial options are appended after the insecure transport default.
func NewGRPCPinger(addr string, opts ...grpc.DialOption) (*GRPCPinger, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCPinger{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

func (p *GRPCPinger) Ping(ctx context.Context) error {
	resp, err := p.health.Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if s := resp.GetStatus(); s != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: health %s", ErrUnavailable, s)
	}
	return nil
}

func (p *GRPCPinger) Close() error {
	return p.conn.Close()
}
