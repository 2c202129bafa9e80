package client

import (
	"context"
	"net"

	"golang.org/x/xerrors"

	"chessnet/binary"
)

// EventBufferSize : Events() のバッファサイズ
var EventBufferSize = 256

// Connection : ゲームサーバへの接続
type Connection struct {
	conn *binary.Conn

	// ID : サーバから割り当てられたプレイヤーID
	ID            int32
	ServerVersion int32

	evch chan *Event
	done chan error
}

// Dial connects to addr and performs the handshake.
func Dial(ctx context.Context, addr, protocolID string, version int32) (*Connection, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, xerrors.Errorf("dial: %w", err)
	}
	c, err := Handshake(nc, protocolID, version)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

// Handshake exchanges the hello with the server over nc and waits for the player id.
// The event receiver starts once the handshake succeeded.
func Handshake(nc net.Conn, protocolID string, version int32) (*Connection, error) {
	conn := binary.NewConn(nc)

	sid, err := conn.ReceiveString()
	if err != nil {
		return nil, xerrors.Errorf("receive server id: %w", err)
	}
	sver, err := conn.ReceiveInteger()
	if err != nil {
		return nil, xerrors.Errorf("receive server version: %w", err)
	}
	if sid != protocolID {
		return nil, xerrors.Errorf("protocol id mismatch: %q", sid)
	}
	if err := conn.Write(binary.NewHello(protocolID, version)); err != nil {
		return nil, xerrors.Errorf("send hello: %w", err)
	}

	ev, err := readEvent(conn)
	if err != nil {
		return nil, xerrors.Errorf("receive player id: %w", err)
	}
	if ev.Type != binary.MsgTypePlayerId {
		return nil, xerrors.Errorf("unexpected message: %v", ev.Type)
	}

	c := &Connection{
		conn:          conn,
		ID:            ev.PlayerID,
		ServerVersion: sver,
		evch:          make(chan *Event, EventBufferSize),
		done:          make(chan error, 1),
	}
	go c.receiver()
	return c, nil
}

func (c *Connection) receiver() {
	defer close(c.evch)
	for {
		ev, err := readEvent(c.conn)
		if err != nil {
			if xerrors.Is(err, binary.ErrNoData) {
				err = nil
			}
			c.done <- err
			return
		}
		c.evch <- ev
		if ev.Type == binary.MsgTypeDisconnection {
			c.done <- nil
			return
		}
	}
}

// Events : Eventが流れてくるチャネル. 切断されるとcloseされる
func (c *Connection) Events() <-chan *Event {
	return c.evch
}

// Wait : 接続終了を待つ
func (c *Connection) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-c.done:
		return err
	}
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) send(ev *binary.Event) error {
	if err := c.conn.Write(ev); err != nil {
		return xerrors.Errorf("send %v: %w", ev.Type(), err)
	}
	return nil
}

func (c *Connection) CreateRoom(name string) error {
	return c.send(binary.NewEvent(binary.MsgTypeCreateRoom).AppendString(name))
}

func (c *Connection) JoinRoom(id int32) error {
	return c.send(binary.NewEvent(binary.MsgTypeJoinRoom).AppendInt(id))
}

func (c *Connection) LeaveRoom() error {
	return c.send(binary.NewEvent(binary.MsgTypeLeaveRoom))
}

func (c *Connection) ChangeType(t binary.PlayerType) error {
	return c.send(binary.NewEvent(binary.MsgTypeChangeType).AppendInt(int32(t)))
}

func (c *Connection) RemovePlayer(id int32) error {
	return c.send(binary.NewEvent(binary.MsgTypeRemovePlayer).AppendInt(id))
}

// Disconnect tells the server to end the session.
func (c *Connection) Disconnect() error {
	return c.send(binary.NewEvDisconnection())
}

func (c *Connection) GameData(data []byte) error {
	return c.send(binary.NewEvGameData(data))
}

func (c *Connection) Message(text string) error {
	return c.send(binary.NewEvent(binary.MsgTypeMessage).AppendString(text))
}

func (c *Connection) Move(data int32) error {
	return c.send(binary.NewEvMove(data))
}

func (c *Connection) Name(name string) error {
	return c.send(binary.NewEvent(binary.MsgTypeName).AppendString(name))
}

func (c *Connection) NetworkRequest(req binary.NetworkRequest) error {
	return c.send(binary.NewEvNetworkRequest(req))
}

func (c *Connection) Notify(n binary.Notification) error {
	return c.send(binary.NewEvNotification(n))
}

func (c *Connection) PlayerRequest(req binary.PlayerRequest) error {
	return c.send(binary.NewEvPlayerRequest(req))
}

func (c *Connection) PlayerTime(millis int32) error {
	return c.send(binary.NewEvent(binary.MsgTypePlayerTime).AppendInt(millis))
}

func (c *Connection) PromoteTo(pieceType int32) error {
	return c.send(binary.NewEvPromoteTo(pieceType))
}
