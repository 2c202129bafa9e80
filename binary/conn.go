package binary

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/xerrors"
)

var (
	// ErrNoData : 切断または途中までしか読めなかった.
	// The receive loop treats it as a normal end of the session.
	ErrNoData = xerrors.New("no data")

	// ErrTooLarge : 上限を超える長さが通知された
	ErrTooLarge = xerrors.New("length exceeds limit")

	ErrClosed = xerrors.New("connection closed")
)

const (
	DefaultMaxStringLen = 4096
	DefaultMaxBytesLen  = 1 << 20
)

// Conn is the byte stream of one client.
// Reads are done by the owner's receive loop only; writes may come from any goroutine.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader

	maxStringLen int
	maxBytesLen  int

	muWrite      sync.Mutex
	writeTimeout time.Duration
	closed       bool
}

func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn:         c,
		r:            bufio.NewReader(c),
		maxStringLen: DefaultMaxStringLen,
		maxBytesLen:  DefaultMaxBytesLen,
	}
}

// SetLimits sets the largest string and blob the peer may announce.
func (c *Conn) SetLimits(maxString, maxBytes int) {
	c.maxStringLen = maxString
	c.maxBytesLen = maxBytes
}

// SetWriteTimeout bounds every write. 0 means no deadline.
func (c *Conn) SetWriteTimeout(d time.Duration) {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	c.writeTimeout = d
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the underlying stream. It is safe to call more than once.
func (c *Conn) Close() error {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Write sends an encoded event.
// A failed write marks the stream unusable; following writes fail immediately.
func (c *Conn) Write(ev *Event) error {
	return c.write(ev.Bytes())
}

func (c *Conn) SendInteger(v int32) error {
	var b [4]byte
	PutInt32(b[:], v)
	return c.write(b[:])
}

func (c *Conn) SendString(s string) error {
	return c.write(newRawEvent().AppendString(s).Bytes())
}

// SendBytes sends p as is, without a length prefix.
func (c *Conn) SendBytes(p []byte) error {
	return c.write(p)
}

func (c *Conn) write(p []byte) error {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return xerrors.Errorf("set write deadline: %w", err)
		}
	}
	if _, err := c.conn.Write(p); err != nil {
		c.closed = true
		c.conn.Close()
		return xerrors.Errorf("write: %w", err)
	}
	return nil
}

// ReceiveInteger blocks until 4 bytes arrive.
func (c *Conn) ReceiveInteger() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return 0, xerrors.Errorf("receive integer (%v): %w", err, ErrNoData)
	}
	return GetInt32(b[:]), nil
}

// ReceiveString reads a length-prefixed string.
func (c *Conn) ReceiveString() (string, error) {
	n, err := c.ReceiveInteger()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > c.maxStringLen {
		return "", xerrors.Errorf("receive string: len=%v max=%v: %w", n, c.maxStringLen, ErrTooLarge)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return "", xerrors.Errorf("receive string (%v): %w", err, ErrNoData)
	}
	return string(buf), nil
}

// ReceiveBytes reads exactly n bytes.
func (c *Conn) ReceiveBytes(n int) ([]byte, error) {
	if n < 0 || n > c.maxBytesLen {
		return nil, xerrors.Errorf("receive bytes: len=%v max=%v: %w", n, c.maxBytesLen, ErrTooLarge)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, xerrors.Errorf("receive bytes (%v): %w", err, ErrNoData)
	}
	return buf, nil
}

// ReceiveMsgType reads the next message tag.
func (c *Conn) ReceiveMsgType() (MsgType, error) {
	v, err := c.ReceiveInteger()
	return MsgType(v), err
}
