package client

import (
	"golang.org/x/xerrors"

	"chessnet/binary"
)

type Player struct {
	ID    int32
	Name  string
	Type  binary.PlayerType
	Ready bool
}

// Room : クライアント側で保持する部屋の状態
type Room struct {
	Me      int32
	Joined  bool
	Started bool
	Paused  bool
	Host    int32
	Players map[int32]*Player
}

func NewRoom(me int32) *Room {
	return &Room{
		Me:      me,
		Players: make(map[int32]*Player),
	}
}

// Update applies ev to the room state.
func (r *Room) Update(ev *Event) error {
	switch ev.Type {
	case binary.MsgTypeNotification:
		r.onNotification(ev.Notification())
	case binary.MsgTypeHostChanged:
		r.Host = ev.PlayerID
	case binary.MsgTypePlayerJoined:
		r.Players[ev.PlayerID] = &Player{ID: ev.PlayerID, Name: ev.Text}
	case binary.MsgTypePlayerLeft:
		delete(r.Players, ev.PlayerID)
	case binary.MsgTypePlayerType:
		p, ok := r.Players[ev.PlayerID]
		if !ok {
			return xerrors.Errorf("player %v not found", ev.PlayerID)
		}
		p.Type = binary.PlayerType(ev.Value)
		p.Ready = false
	case binary.MsgTypePlayerReady:
		p, ok := r.Players[ev.PlayerID]
		if !ok {
			return xerrors.Errorf("player %v not found", ev.PlayerID)
		}
		p.Ready = true
	case binary.MsgTypeName:
		if p, ok := r.Players[ev.PlayerID]; ok {
			p.Name = ev.Text
		}
	}
	return nil
}

func (r *Room) onNotification(n binary.Notification) {
	switch n {
	case binary.NotifyJoinedRoom:
		r.Joined = true
		r.Started = false
		r.Paused = false
		r.Host = 0
		r.Players = map[int32]*Player{r.Me: {ID: r.Me}}
	case binary.NotifyLeftRoom:
		r.Joined = false
		r.Started = false
		r.Paused = false
		r.Host = 0
		r.Players = make(map[int32]*Player)
	case binary.NotifyGameStarted:
		r.Started = true
		for _, p := range r.Players {
			p.Ready = false
		}
	case binary.NotifyResigned, binary.NotifyGameDrawn:
		r.Started = false
	case binary.NotifyGamePaused:
		r.Paused = true
	case binary.NotifyGameResumed:
		r.Paused = false
	}
}

// Seat returns the player sitting in t.
func (r *Room) Seat(t binary.PlayerType) *Player {
	if t == binary.Observer {
		return nil
	}
	for _, p := range r.Players {
		if p.Type == t {
			return p
		}
	}
	return nil
}
