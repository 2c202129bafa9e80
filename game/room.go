package game

import (
	"time"

	"chessnet/binary"
)

type RoomID int32

// Room pairs up to two seated players with any number of observers.
// Every field is guarded by Registry.mu.
type Room struct {
	id      RoomID
	name    string
	private bool

	owner     *Session
	white     *Session
	black     *Session
	observers []*Session

	paused    bool
	started   bool
	startedAt time.Time
}

func newRoom(id RoomID, name string, private bool, owner *Session) *Room {
	return &Room{
		id:      id,
		name:    name,
		private: private,
		owner:   owner,
	}
}

func (r *Room) ID() RoomID {
	return r.id
}

func (r *Room) Name() string {
	return r.name
}

func (r *Room) Private() bool {
	return r.private
}

// occupants returns white, black and then observers in join order.
func (r *Room) occupants() []*Session {
	ss := make([]*Session, 0, len(r.observers)+2)
	if r.white != nil {
		ss = append(ss, r.white)
	}
	if r.black != nil {
		ss = append(ss, r.black)
	}
	return append(ss, r.observers...)
}

func (r *Room) count() int {
	n := len(r.observers)
	if r.white != nil {
		n++
	}
	if r.black != nil {
		n++
	}
	return n
}

func (r *Room) empty() bool {
	return r.count() == 0
}

// slotOf returns the slot s occupies.
func (r *Room) slotOf(s *Session) (binary.PlayerType, bool) {
	switch {
	case s == nil:
		return binary.Observer, false
	case r.white == s:
		return binary.White, true
	case r.black == s:
		return binary.Black, true
	}
	for _, o := range r.observers {
		if o == s {
			return binary.Observer, true
		}
	}
	return binary.Observer, false
}

func (r *Room) isSeated(s *Session) bool {
	return s != nil && (r.white == s || r.black == s)
}

func (r *Room) opponentOf(s *Session) *Session {
	switch s {
	case r.white:
		return r.black
	case r.black:
		return r.white
	}
	return nil
}

func (r *Room) has(s *Session) bool {
	_, ok := r.slotOf(s)
	return ok
}

func (r *Room) findOccupant(id SessionID) *Session {
	for _, s := range r.occupants() {
		if s.id == id {
			return s
		}
	}
	return nil
}

// remove takes s out of whichever slot it occupies.
func (r *Room) remove(s *Session) {
	switch s {
	case r.white:
		r.white = nil
		return
	case r.black:
		r.black = nil
		return
	}
	for i, o := range r.observers {
		if o == s {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Room) put(s *Session, t binary.PlayerType) {
	switch t {
	case binary.White:
		r.white = s
	case binary.Black:
		r.black = s
	default:
		r.observers = append(r.observers, s)
	}
}

// nextOwner picks the successor host: white, black, then the first observer.
func (r *Room) nextOwner() *Session {
	if r.white != nil {
		return r.white
	}
	if r.black != nil {
		return r.black
	}
	if len(r.observers) > 0 {
		return r.observers[0]
	}
	return nil
}

// broadcast sends ev to every occupant except the given session.
// A failed send never stops delivery to the others.
func (r *Room) broadcast(ev *binary.Event, except *Session) {
	for _, s := range r.occupants() {
		if s != except {
			s.send(ev)
		}
	}
}

func (r *Room) elapsed(now time.Time) time.Duration {
	if !r.started {
		return 0
	}
	return now.Sub(r.startedAt)
}

func (r *Room) seatName(s *Session) string {
	if s == nil {
		return ""
	}
	return s.name
}
