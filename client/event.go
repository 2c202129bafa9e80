package client

import (
	"golang.org/x/xerrors"

	"chessnet/binary"
)

// Event : サーバから届いたメッセージ
//
// Field usage per Type:
//   - PlayerId, HostChanged, PlayerLeft, PlayerReady: PlayerID
//   - PlayerType: PlayerID, Value (binary.PlayerType)
//   - PlayerJoined, Name: PlayerID, Text
//   - Message: PlayerID (sender), Text
//   - PlayerTime: PlayerID, Value (millis)
//   - Move, PromoteTo, NetworkRequest, Notification, PlayerRequest: Value
//   - GameData: Data
//   - RoomInfo: RoomID, Text, Private, Value (player count)
type Event struct {
	Type     binary.MsgType
	PlayerID int32
	RoomID   int32
	Value    int32
	Text     string
	Private  bool
	Data     []byte
}

func (ev *Event) Notification() binary.Notification {
	return binary.Notification(ev.Value)
}

func readEvent(conn *binary.Conn) (*Event, error) {
	t, err := conn.ReceiveMsgType()
	if err != nil {
		return nil, err
	}
	ev := &Event{Type: t}

	ints := func(dst ...*int32) error {
		for _, p := range dst {
			v, err := conn.ReceiveInteger()
			if err != nil {
				return err
			}
			*p = v
		}
		return nil
	}

	switch t {
	case binary.MsgTypePlayerId, binary.MsgTypeHostChanged, binary.MsgTypePlayerLeft, binary.MsgTypePlayerReady:
		err = ints(&ev.PlayerID)
	case binary.MsgTypePlayerType, binary.MsgTypePlayerTime:
		err = ints(&ev.PlayerID, &ev.Value)
	case binary.MsgTypePlayerJoined, binary.MsgTypeName, binary.MsgTypeMessage:
		if err = ints(&ev.PlayerID); err == nil {
			ev.Text, err = conn.ReceiveString()
		}
	case binary.MsgTypeMove, binary.MsgTypePromoteTo, binary.MsgTypeNetworkRequest,
		binary.MsgTypeNotification, binary.MsgTypePlayerRequest:
		err = ints(&ev.Value)
	case binary.MsgTypeGameData:
		var n int32
		if err = ints(&n); err == nil {
			ev.Data, err = conn.ReceiveBytes(int(n))
		}
	case binary.MsgTypeRoomInfo:
		var private int32
		if err = ints(&ev.RoomID); err != nil {
			break
		}
		if ev.Text, err = conn.ReceiveString(); err != nil {
			break
		}
		if err = ints(&private, &ev.Value); err == nil {
			ev.Private = private != 0
		}
	case binary.MsgTypeDisconnection:
	default:
		return nil, xerrors.Errorf("unexpected message: %v", t)
	}
	if err != nil {
		return nil, xerrors.Errorf("read %v: %w", t, err)
	}
	return ev, nil
}
