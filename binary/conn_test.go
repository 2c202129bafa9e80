package binary

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
)

func newPipe(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server), client
}

func TestEventLayout(t *testing.T) {
	tests := map[string]struct {
		ev   *Event
		want []byte
	}{
		"PlayerId": {
			NewEvPlayerId(258),
			[]byte{0, 0, 0, 18, 0, 0, 1, 2},
		},
		"RoomInfo": {
			NewEvRoomInfo(7, "ab", true, 3),
			[]byte{0, 0, 0, 23, 0, 0, 0, 7, 0, 0, 0, 2, 'a', 'b', 0, 0, 0, 1, 0, 0, 0, 3},
		},
		"GameData": {
			NewEvGameData([]byte{9, 8, 7}),
			[]byte{0, 0, 0, 7, 0, 0, 0, 3, 9, 8, 7},
		},
		"Message cut at NUL": {
			NewEvMessage(-1, "hi\x00there"),
			[]byte{0, 0, 0, 8, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 2, 'h', 'i'},
		},
		"Hello": {
			NewHello("AC", 400),
			[]byte{0, 0, 0, 2, 'A', 'C', 0, 0, 1, 0x90},
		},
	}
	for name, test := range tests {
		if diff := cmp.Diff(test.ev.Bytes(), test.want); diff != "" {
			t.Errorf("%s: (-got +want)\n%s", name, diff)
		}
	}
}

func TestReceive(t *testing.T) {
	c, peer := newPipe(t)

	go func() {
		peer.Write(NewEvMessage(42, "hello").Bytes())
		peer.Write([]byte{1, 2, 3, 4})
	}()

	typ, err := c.ReceiveMsgType()
	if err != nil || typ != MsgTypeMessage {
		t.Fatalf("ReceiveMsgType = %v, %v, wants %v", typ, err, MsgTypeMessage)
	}
	id, err := c.ReceiveInteger()
	if err != nil || id != 42 {
		t.Fatalf("ReceiveInteger = %v, %v, wants 42", id, err)
	}
	s, err := c.ReceiveString()
	if err != nil || s != "hello" {
		t.Fatalf("ReceiveString = %q, %v, wants hello", s, err)
	}
	b, err := c.ReceiveBytes(4)
	if err != nil || !bytes.Equal(b, []byte{1, 2, 3, 4}) {
		t.Fatalf("ReceiveBytes = %v, %v", b, err)
	}
}

func TestReceiveNoData(t *testing.T) {
	c, peer := newPipe(t)

	go func() {
		peer.Write([]byte{0, 0})
		peer.Close()
	}()

	_, err := c.ReceiveInteger()
	if !xerrors.Is(err, ErrNoData) {
		t.Fatalf("ReceiveInteger error = %v, wants ErrNoData", err)
	}
}

func TestReceiveTooLarge(t *testing.T) {
	c, peer := newPipe(t)
	c.SetLimits(4, 4)

	go func() {
		peer.Write(newRawEvent().AppendString("too long").Bytes())
	}()

	_, err := c.ReceiveString()
	if !xerrors.Is(err, ErrTooLarge) {
		t.Fatalf("ReceiveString error = %v, wants ErrTooLarge", err)
	}

	if _, err := c.ReceiveBytes(5); !xerrors.Is(err, ErrTooLarge) {
		t.Fatalf("ReceiveBytes error = %v, wants ErrTooLarge", err)
	}
	if _, err := c.ReceiveBytes(-1); !xerrors.Is(err, ErrTooLarge) {
		t.Fatalf("ReceiveBytes(-1) error = %v, wants ErrTooLarge", err)
	}
}

func TestWriteAfterClose(t *testing.T) {
	c, peer := newPipe(t)

	go io.Copy(io.Discard, peer)

	if err := c.SendInteger(1); err != nil {
		t.Fatalf("SendInteger error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if err := c.Write(NewEvPlayerLeft(1)); !xerrors.Is(err, ErrClosed) {
		t.Fatalf("Write after close = %v, wants ErrClosed", err)
	}
}

func TestWriteFailureMarksClosed(t *testing.T) {
	c, peer := newPipe(t)
	peer.Close()

	if err := c.SendString("x"); err == nil {
		t.Fatalf("SendString to closed peer must fail")
	}
	if err := c.SendBytes([]byte{1}); !xerrors.Is(err, ErrClosed) {
		t.Fatalf("SendBytes after failure = %v, wants ErrClosed", err)
	}
}

func TestStringers(t *testing.T) {
	if s := MsgTypeRoomInfo.String(); s != "RoomInfo" {
		t.Fatalf("MsgTypeRoomInfo = %v", s)
	}
	if s := MsgType(99).String(); s != "MsgType(99)" {
		t.Fatalf("MsgType(99) = %v", s)
	}
	if s := NotifyTookBackMove.String(); s != "TookBackMove" {
		t.Fatalf("NotifyTookBackMove = %v", s)
	}
	if s := White.String(); s != "White" {
		t.Fatalf("White = %v", s)
	}
	if PlayerType(3).Valid() || !Observer.Valid() {
		t.Fatalf("PlayerType.Valid mismatch")
	}
}
