package cmd

import (
	"context"
	"time"

	"golang.org/x/xerrors"

	"chessnet/binary"
	"chessnet/client"
)

// dial connects to the game server and performs the handshake.
var dial = func(ctx context.Context) (*client.Connection, error) {
	return client.Dial(ctx, serverAddr, protocolID, version)
}

// bot : 1接続分のテスト用クライアント
type bot struct {
	name string
	conn *client.Connection
	room *client.Room
}

func newBot(ctx context.Context, name string) (*bot, error) {
	conn, err := dial(ctx)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", name, err)
	}
	b := &bot{
		name: name,
		conn: conn,
		room: client.NewRoom(conn.ID),
	}
	if err := conn.Name(name); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Debugf("%v: connected id=%v", name, conn.ID)
	return b, nil
}

func (b *bot) Close() {
	b.conn.Disconnect()
	b.conn.Close()
}

// waitFor reads events until match returns true.
func (b *bot) waitFor(ctx context.Context, what string, match func(ev *client.Event) bool) (*client.Event, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
			return nil, xerrors.Errorf("%v: timeout waiting %v", b.name, what)
		case ev, ok := <-b.conn.Events():
			if !ok {
				return nil, xerrors.Errorf("%v: disconnected waiting %v", b.name, what)
			}
			if err := b.room.Update(ev); err != nil {
				return nil, xerrors.Errorf("%v: %w", b.name, err)
			}
			logger.Debugf("%v: %v %+v", b.name, ev.Type, ev)
			if match(ev) {
				return ev, nil
			}
		}
	}
}

func (b *bot) waitNotification(ctx context.Context, n binary.Notification) error {
	_, err := b.waitFor(ctx, n.String(), func(ev *client.Event) bool {
		return ev.Type == binary.MsgTypeNotification && ev.Notification() == n
	})
	return err
}

func (b *bot) waitType(ctx context.Context, t binary.MsgType) (*client.Event, error) {
	return b.waitFor(ctx, t.String(), func(ev *client.Event) bool {
		return ev.Type == t
	})
}

// findRoom asks the room list and returns the id of the room named name.
func (b *bot) findRoom(ctx context.Context, name string) (int32, error) {
	if err := b.conn.NetworkRequest(binary.RequestRoomList); err != nil {
		return 0, err
	}
	ev, err := b.waitFor(ctx, "RoomInfo "+name, func(ev *client.Event) bool {
		return ev.Type == binary.MsgTypeRoomInfo && ev.Text == name
	})
	if err != nil {
		return 0, err
	}
	return ev.RoomID, nil
}

func (b *bot) seat(ctx context.Context, t binary.PlayerType) error {
	if err := b.conn.ChangeType(t); err != nil {
		return err
	}
	_, err := b.waitFor(ctx, "PlayerType", func(ev *client.Event) bool {
		return ev.Type == binary.MsgTypePlayerType && ev.PlayerID == b.conn.ID
	})
	return err
}
