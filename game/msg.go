package game

import (
	"golang.org/x/xerrors"

	"chessnet/binary"
	"chessnet/game/metrics"
)

// dispatch reads one message of s and applies it to the registry.
// A returned error ends the session.
func (reg *Registry) dispatch(s *Session) error {
	conn := s.conn
	t, err := conn.ReceiveMsgType()
	if err != nil {
		return err
	}
	metrics.MessageRecv.Add(1)

	switch t {
	case binary.MsgTypeCreateRoom:
		name, err := conn.ReceiveString()
		if err != nil {
			return err
		}
		s.logger.Debugf("CreateRoom: %q", name)
		if _, err := reg.OpenRoom(s, name, false); err != nil {
			s.logger.Errorf("CreateRoom failed: %+v", err)
		}

	case binary.MsgTypeJoinRoom:
		id, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		s.logger.Debugf("JoinRoom: %v", id)
		reg.JoinRoom(s, RoomID(id))

	case binary.MsgTypeLeaveRoom:
		s.logger.Debugf("LeaveRoom")
		reg.LeaveRoom(s)

	case binary.MsgTypeChangeType:
		v, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		s.logger.Debugf("ChangeType: %v", binary.PlayerType(v))
		reg.ChangeSeat(s, binary.PlayerType(v))

	case binary.MsgTypeRemovePlayer:
		id, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		s.logger.Debugf("RemovePlayer: %v", id)
		reg.Kick(s, SessionID(id))

	case binary.MsgTypeDisconnection:
		return ErrDisconnection

	case binary.MsgTypeGameData:
		size, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		data, err := conn.ReceiveBytes(int(size))
		if err != nil {
			return err
		}
		n := reg.RelayGameData(s, data)
		s.logger.Debugf("GameData: %v bytes to %v sessions", len(data), n)

	case binary.MsgTypeMessage:
		text, err := conn.ReceiveString()
		if err != nil {
			return err
		}
		reg.RelayMessage(s, text)

	case binary.MsgTypeMove:
		v, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		reg.RelayMove(s, v)

	case binary.MsgTypeName:
		name, err := conn.ReceiveString()
		if err != nil {
			return err
		}
		s.logger.Debugf("Name: %q", name)
		reg.SetName(s, name)

	case binary.MsgTypeNetworkRequest:
		v, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		if binary.NetworkRequest(v) == binary.RequestRoomList {
			reg.SendRoomList(s)
		} else {
			s.logger.Debugf("NetworkRequest ignored: %v", v)
		}

	case binary.MsgTypeNotification:
		v, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		s.logger.Debugf("Notification: %v", binary.Notification(v))
		reg.Notify(s, binary.Notification(v))

	case binary.MsgTypePlayerRequest:
		v, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		reg.RelayPlayerRequest(s, binary.PlayerRequest(v))

	case binary.MsgTypePlayerTime:
		v, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		reg.RelayTime(s, v)

	case binary.MsgTypePromoteTo:
		v, err := conn.ReceiveInteger()
		if err != nil {
			return err
		}
		reg.RelayPromotion(s, v)

	default:
		return xerrors.Errorf("%v: %w", t, ErrUnknownMsgType)
	}
	return nil
}
