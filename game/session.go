package game

import (
	"time"

	"chessnet/binary"
	"chessnet/game/metrics"
	"chessnet/log"
)

type SessionID int32

// Session is the server side of one connected client.
type Session struct {
	id        SessionID
	conn      *binary.Conn
	version   int32
	connected time.Time
	logger    log.Logger

	// guarded by Registry.mu
	name         string
	ready        bool
	room         *Room
	synchronized bool
	removed      bool
}

func newSession(id SessionID, conn *binary.Conn, version int32, logger log.Logger) *Session {
	return &Session{
		id:        id,
		conn:      conn,
		version:   version,
		connected: time.Now(),
		logger:    logger.With("session", id),
	}
}

func (s *Session) ID() SessionID {
	return s.id
}

func (s *Session) Version() int32 {
	return s.version
}

// ConnectedFor reports the session uptime.
func (s *Session) ConnectedFor() time.Duration {
	return time.Since(s.connected)
}

// send writes ev and reports whether it reached the stream.
// A failed send is logged only; the stream is unusable afterwards and the
// receive loop of s notices the disconnection by itself.
func (s *Session) send(ev *binary.Event) bool {
	if err := s.conn.Write(ev); err != nil {
		s.logger.Debugf("send %v failed: %v", ev.Type(), err)
		return false
	}
	metrics.MessageSent.Add(1)
	return true
}

func (s *Session) SendPlayerId(id SessionID) bool {
	return s.send(binary.NewEvPlayerId(int32(id)))
}

func (s *Session) SendHostChanged(id SessionID) bool {
	return s.send(binary.NewEvHostChanged(int32(id)))
}

func (s *Session) SendPlayerType(id SessionID, t binary.PlayerType) bool {
	return s.send(binary.NewEvPlayerType(int32(id), t))
}

func (s *Session) SendPlayerJoined(id SessionID, name string) bool {
	return s.send(binary.NewEvPlayerJoined(int32(id), name))
}

func (s *Session) SendPlayerLeft(id SessionID) bool {
	return s.send(binary.NewEvPlayerLeft(int32(id)))
}

func (s *Session) SendPlayerReady(id SessionID) bool {
	return s.send(binary.NewEvPlayerReady(int32(id)))
}

func (s *Session) SendGameData(data []byte) bool {
	return s.send(binary.NewEvGameData(data))
}

func (s *Session) SendMessage(sender SessionID, text string) bool {
	return s.send(binary.NewEvMessage(int32(sender), text))
}

func (s *Session) SendMove(data int32) bool {
	return s.send(binary.NewEvMove(data))
}

func (s *Session) SendName(id SessionID, name string) bool {
	return s.send(binary.NewEvName(int32(id), name))
}

func (s *Session) SendNetworkRequest(req binary.NetworkRequest) bool {
	return s.send(binary.NewEvNetworkRequest(req))
}

func (s *Session) SendNotification(n binary.Notification) bool {
	return s.send(binary.NewEvNotification(n))
}

func (s *Session) SendPlayerRequest(req binary.PlayerRequest) bool {
	return s.send(binary.NewEvPlayerRequest(req))
}

func (s *Session) SendRoomInfo(id RoomID, name string, private bool, players int) bool {
	return s.send(binary.NewEvRoomInfo(int32(id), name, private, int32(players)))
}

func (s *Session) SendPlayerTime(id SessionID, millis int32) bool {
	return s.send(binary.NewEvPlayerTime(int32(id), millis))
}

func (s *Session) SendPromoteTo(pieceType int32) bool {
	return s.send(binary.NewEvPromoteTo(pieceType))
}

func (s *Session) SendDisconnection() bool {
	return s.send(binary.NewEvDisconnection())
}

// Close closes the stream; the receive loop then ends.
func (s *Session) Close() {
	s.conn.Close()
}
