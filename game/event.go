package game

import (
	"time"
)

type RoomEventKind int

const (
	RoomStarted RoomEventKind = iota + 1
	RoomEnded
)

func (k RoomEventKind) String() string {
	switch k {
	case RoomStarted:
		return "started"
	case RoomEnded:
		return "ended"
	}
	return "unknown"
}

// RoomEvent : 対局の開始・終了
type RoomEvent struct {
	Kind      RoomEventKind `json:"kind"`
	Time      time.Time     `json:"time"`
	RoomID    RoomID        `json:"room_id"`
	Name      string        `json:"name"`
	Private   bool          `json:"private"`
	White     string        `json:"white"`
	Black     string        `json:"black"`
	Observers int           `json:"observers"`
	Elapsed   time.Duration `json:"elapsed"`
}

// EventHandler receives room lifecycle events.
// It is called while the registry is locked, so it must not block nor call back into the Registry.
type EventHandler interface {
	HandleRoomEvent(ev *RoomEvent)
}

type EventHandlerFunc func(ev *RoomEvent)

func (f EventHandlerFunc) HandleRoomEvent(ev *RoomEvent) {
	f(ev)
}

func (r *Room) event(kind RoomEventKind, now time.Time) *RoomEvent {
	return &RoomEvent{
		Kind:      kind,
		Time:      now,
		RoomID:    r.id,
		Name:      r.name,
		Private:   r.private,
		White:     r.seatName(r.white),
		Black:     r.seatName(r.black),
		Observers: len(r.observers),
		Elapsed:   r.elapsed(now),
	}
}
