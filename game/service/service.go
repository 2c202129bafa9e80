package service

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/xerrors"
	"google.golang.org/grpc/health"

	"chessnet/config"
	"chessnet/game"
	"chessnet/log"
)

type GameService struct {
	Registry *game.Registry

	conf   *config.GameConf
	health *health.Server

	sessions sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener

	shutdownChan chan struct{}
	done         chan error
}

func New(conf *config.GameConf, reg *game.Registry) *GameService {
	return &GameService{
		Registry: reg,
		conf:     conf,
		health:   health.NewServer(),

		shutdownChan: make(chan struct{}),
		done:         make(chan error, 1),
	}
}

// Serve runs every server until one of them fails, ctx is done, or Shutdown completes.
// After Shutdown it returns only once the sessions were drained.
func (s *GameService) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var err error
	select {
	case <-ctx.Done():
	case err = <-s.serveGRPC(ctx):
	case err = <-s.serveTCP(ctx):
	case err = <-s.servePprof(ctx):
	case err = <-s.done:
	}
	return err
}

func (s *GameService) shutdownRequested() bool {
	select {
	case <-s.shutdownChan:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting, disconnects every session and waits for the sessions to end.
func (s *GameService) Shutdown(ctx context.Context) {
	log.Infof("GameService is gracefully shutting down")

	select {
	case <-s.shutdownChan:
		// Shutdown is already requested
		return
	default:
		close(s.shutdownChan)
	}
	s.health.Shutdown()

	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()

	n := s.Registry.DisconnectAll()
	log.Infof("waiting for %v sessions to be closed", n)

	drained := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(drained)
	}()

	select {
	case <-ctx.Done():
		s.done <- xerrors.Errorf("shutdown: %w", ctx.Err())
	case <-drained:
		log.Infof("graceful shutdown completed")
		s.done <- nil
	}
}

func (s *GameService) numSessions() int {
	return s.Registry.NumSessions()
}

func (s *GameService) acceptBackoff() time.Duration {
	return time.Duration(s.conf.AcceptBackoff)
}
