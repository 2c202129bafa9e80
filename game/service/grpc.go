package service

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/xerrors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"chessnet/log"
)

func (sv *GameService) serveGRPC(ctx context.Context) <-chan error {
	if sv.conf.GRPCPort == 0 {
		return nil
	}
	errCh := make(chan error, 1)

	go func() {
		laddr := fmt.Sprintf(":%d", sv.conf.GRPCPort)
		log.Infof("game grpc: %#v", laddr)

		listenPort, err := net.Listen("tcp", laddr)
		if err != nil {
			errCh <- xerrors.Errorf("listen error: %w", err)
			return
		}

		server := grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(server, sv.health)
		sv.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

		c := make(chan error)
		go func() {
			c <- server.Serve(listenPort)
		}()
		select {
		case <-ctx.Done():
			server.Stop()
			log.Infof("gRPC server stop")
		case err := <-c:
			errCh <- err
			log.Infof("gRPC server error: %v", err)
		}
	}()

	return errCh
}
