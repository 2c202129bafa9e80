package binary

import (
	"strings"
)

// Event is one encoded server-to-client message.
// It is written to the stream with a single write so that concurrent
// senders never interleave their bytes.
type Event struct {
	typ MsgType
	buf []byte
}

// NewEvent starts an event tagged with t.
func NewEvent(t MsgType) *Event {
	ev := &Event{typ: t, buf: make([]byte, 0, 16)}
	return ev.AppendInt(int32(t))
}

// newRawEvent starts an untagged payload (handshake).
func newRawEvent() *Event {
	return &Event{typ: MsgTypeUnknown, buf: make([]byte, 0, 32)}
}

func (ev *Event) Type() MsgType {
	return ev.typ
}

// Bytes returns the encoded event.
func (ev *Event) Bytes() []byte {
	return ev.buf
}

func (ev *Event) AppendInt(v int32) *Event {
	var b [4]byte
	PutInt32(b[:], v)
	ev.buf = append(ev.buf, b[:]...)
	return ev
}

func (ev *Event) AppendBool(v bool) *Event {
	if v {
		return ev.AppendInt(1)
	}
	return ev.AppendInt(0)
}

// AppendString appends a length-prefixed string.
// The string is cut at the first NUL since peers read it as a C string.
func (ev *Event) AppendString(s string) *Event {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	ev.AppendInt(int32(len(s)))
	ev.buf = append(ev.buf, s...)
	return ev
}

// AppendBlob appends a length-prefixed byte sequence.
func (ev *Event) AppendBlob(p []byte) *Event {
	ev.AppendInt(int32(len(p)))
	ev.buf = append(ev.buf, p...)
	return ev
}

func PutInt32(dst []byte, val int32) {
	v := uint32(val)
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}

func GetInt32(src []byte) int32 {
	return int32(uint32(src[0])<<24 | uint32(src[1])<<16 | uint32(src[2])<<8 | uint32(src[3]))
}

// NewHello : handshakeで交換する識別子とバージョン
func NewHello(id string, version int32) *Event {
	return newRawEvent().AppendString(id).AppendInt(version)
}

func NewEvPlayerId(id int32) *Event {
	return NewEvent(MsgTypePlayerId).AppendInt(id)
}

func NewEvHostChanged(id int32) *Event {
	return NewEvent(MsgTypeHostChanged).AppendInt(id)
}

func NewEvPlayerType(id int32, t PlayerType) *Event {
	return NewEvent(MsgTypePlayerType).AppendInt(id).AppendInt(int32(t))
}

func NewEvPlayerJoined(id int32, name string) *Event {
	return NewEvent(MsgTypePlayerJoined).AppendInt(id).AppendString(name)
}

func NewEvPlayerLeft(id int32) *Event {
	return NewEvent(MsgTypePlayerLeft).AppendInt(id)
}

func NewEvPlayerReady(id int32) *Event {
	return NewEvent(MsgTypePlayerReady).AppendInt(id)
}

func NewEvGameData(data []byte) *Event {
	return NewEvent(MsgTypeGameData).AppendBlob(data)
}

func NewEvMessage(sender int32, text string) *Event {
	return NewEvent(MsgTypeMessage).AppendInt(sender).AppendString(text)
}

func NewEvMove(data int32) *Event {
	return NewEvent(MsgTypeMove).AppendInt(data)
}

func NewEvName(id int32, name string) *Event {
	return NewEvent(MsgTypeName).AppendInt(id).AppendString(name)
}

func NewEvNetworkRequest(req NetworkRequest) *Event {
	return NewEvent(MsgTypeNetworkRequest).AppendInt(int32(req))
}

func NewEvNotification(n Notification) *Event {
	return NewEvent(MsgTypeNotification).AppendInt(int32(n))
}

func NewEvPlayerRequest(req PlayerRequest) *Event {
	return NewEvent(MsgTypePlayerRequest).AppendInt(int32(req))
}

func NewEvRoomInfo(id int32, name string, private bool, players int32) *Event {
	return NewEvent(MsgTypeRoomInfo).AppendInt(id).AppendString(name).AppendBool(private).AppendInt(players)
}

func NewEvPlayerTime(id int32, millis int32) *Event {
	return NewEvent(MsgTypePlayerTime).AppendInt(id).AppendInt(millis)
}

func NewEvPromoteTo(pieceType int32) *Event {
	return NewEvent(MsgTypePromoteTo).AppendInt(pieceType)
}

func NewEvDisconnection() *Event {
	return NewEvent(MsgTypeDisconnection)
}
