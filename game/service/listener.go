package service

import (
	"context"
	"net"
	"time"

	"golang.org/x/xerrors"

	"chessnet/log"
)

func (s *GameService) serveTCP(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	go func() {
		laddr := s.conf.Addr()
		log.Infof("game tcp: %#v", laddr)

		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", laddr)
		if err != nil {
			errCh <- xerrors.Errorf("listen failed: %w", err)
			return
		}
		// Shutdown時のnilは送らない. 終了はs.done経由で通知される
		if err := s.ServeListener(ctx, listener); err != nil {
			errCh <- err
		}
	}()

	return errCh
}

// ServeListener accepts connections on l and runs a session for each of them.
// It returns nil once Shutdown closed the listener.
func (s *GameService) ServeListener(ctx context.Context, l net.Listener) error {
	s.mu.Lock()
	if s.shutdownRequested() {
		s.mu.Unlock()
		l.Close()
		return nil
	}
	s.listener = l
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-s.shutdownChan:
		}
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.shutdownRequested() || ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if xerrors.As(err, &ne) && ne.Timeout() {
				log.Infof("accept: %v", err)
				time.Sleep(s.acceptBackoff())
				continue
			}
			return xerrors.Errorf("accept: %w", err)
		}

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			s.Registry.ServeConn(ctx, conn)
		}()
	}
}
