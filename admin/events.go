package admin

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chessnet/game"
	"chessnet/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventHub streams room events to websocket subscribers.
type EventHub struct {
	bufSize int

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

func NewEventHub(bufSize int) *EventHub {
	if bufSize <= 0 {
		bufSize = 1
	}
	return &EventHub{
		bufSize: bufSize,
		subs:    make(map[*subscriber]struct{}),
	}
}

// HandleRoomEvent never blocks: a subscriber whose buffer is full is dropped.
func (h *EventHub) HandleRoomEvent(ev *game.RoomEvent) {
	data, err := json.Marshal(struct {
		Event string `json:"event"`
		*game.RoomEvent
		ElapsedMillis int64 `json:"elapsed_millis"`
	}{ev.Kind.String(), ev, ev.Elapsed.Milliseconds()})
	if err != nil {
		log.Errorf("marshal room event: %+v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.send <- data:
		default:
			log.Infof("event subscriber is too slow: %v", s.conn.RemoteAddr())
			h.unsubscribe(s)
		}
	}
}

func (h *EventHub) NumSubscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		h.unsubscribe(s)
	}
}

func (h *EventHub) subscribe(s *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subs[s] = struct{}{}
	return true
}

func (h *EventHub) unsubscribe(s *subscriber) {
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
}

func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Infof("websocket upgrade failed: %v", err)
		return
	}

	s := &subscriber{
		conn: conn,
		send: make(chan []byte, h.bufSize),
	}
	if !h.subscribe(s) {
		conn.Close()
		return
	}
	log.Debugf("event subscriber: %v", conn.RemoteAddr())

	go s.writePump()
	go h.readPump(s)
}

// readPump only detects the disconnection; subscribers never send anything meaningful.
func (h *EventHub) readPump(s *subscriber) {
	defer func() {
		h.mu.Lock()
		h.unsubscribe(s)
		h.mu.Unlock()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Infof("event subscriber error: %v", err)
			}
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
