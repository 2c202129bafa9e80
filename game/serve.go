package game

import (
	"context"
	"net"
	"time"

	"golang.org/x/xerrors"

	"chessnet/binary"
)

// handshake exchanges the protocol id and version, returning the client version.
func (reg *Registry) handshake(conn *binary.Conn) (int32, error) {
	if err := conn.Write(binary.NewHello(reg.conf.ProtocolID, reg.conf.Version)); err != nil {
		return 0, xerrors.Errorf("send hello: %w", err)
	}
	id, err := conn.ReceiveString()
	if err != nil {
		return 0, xerrors.Errorf("receive protocol id: %w", err)
	}
	ver, err := conn.ReceiveInteger()
	if err != nil {
		return 0, xerrors.Errorf("receive version: %w", err)
	}
	if id != reg.conf.ProtocolID {
		return 0, xerrors.Errorf("%q: %w", id, ErrProtocolMismatch)
	}
	if ver < reg.conf.SupportedVersion {
		return 0, xerrors.Errorf("version=%v supported=%v: %w", ver, reg.conf.SupportedVersion, ErrUnsupportedVersion)
	}
	return ver, nil
}

// ServeConn runs one client from the handshake until it disconnects.
// The connection is closed on return. Cancelling ctx closes the connection.
func (reg *Registry) ServeConn(ctx context.Context, nc net.Conn) error {
	conn := binary.NewConn(nc)
	conn.SetLimits(reg.conf.MaxStringLen, reg.conf.MaxGameDataLen)
	conn.SetWriteTimeout(time.Duration(reg.conf.WriteTimeout))
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	ver, err := reg.handshake(conn)
	if err != nil {
		reg.logger.Infof("handshake failed: remote=%v: %v", nc.RemoteAddr(), err)
		return err
	}

	s, err := reg.AddSession(conn, ver)
	if err != nil {
		reg.logger.Errorf("AddSession: %+v", err)
		return err
	}
	defer reg.Disconnect(s)

	s.SendPlayerId(s.id)

	for {
		err := reg.dispatch(s)
		if err == nil {
			continue
		}
		switch {
		case xerrors.Is(err, ErrDisconnection), xerrors.Is(err, binary.ErrNoData):
			s.logger.Infof("disconnected: %v", err)
			return nil
		default:
			s.logger.Infof("protocol violation: %v", err)
			return err
		}
	}
}
