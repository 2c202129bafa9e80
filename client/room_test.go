package client_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"chessnet/binary"
	"chessnet/client"
)

func newRoom() *client.Room {
	r := client.NewRoom(2)
	r.Joined = true
	r.Host = 1
	r.Players = map[int32]*client.Player{
		1: {ID: 1, Name: "alice", Type: binary.White},
		2: {ID: 2, Name: "bob", Type: binary.Observer},
	}
	return r
}

func TestRoom_Update_onJoinedRoom(t *testing.T) {
	room := newRoom()
	if err := room.Update(&client.Event{Type: binary.MsgTypeNotification, Value: int32(binary.NotifyJoinedRoom)}); err != nil {
		t.Fatalf("%v", err)
	}
	want := map[int32]*client.Player{2: {ID: 2}}
	if diff := cmp.Diff(want, room.Players); diff != "" {
		t.Fatalf("players (-want +got)\n%s", diff)
	}
	if !room.Joined || room.Host != 0 {
		t.Fatalf("joined=%v host=%v", room.Joined, room.Host)
	}
}

func TestRoom_Update_onPlayerJoined(t *testing.T) {
	room := newRoom()
	if err := room.Update(&client.Event{Type: binary.MsgTypePlayerJoined, PlayerID: 3, Text: "carol"}); err != nil {
		t.Fatalf("%v", err)
	}
	want := &client.Player{ID: 3, Name: "carol", Type: binary.Observer}
	if diff := cmp.Diff(want, room.Players[3]); diff != "" {
		t.Fatalf("player (-want +got)\n%s", diff)
	}
}

func TestRoom_Update_onPlayerLeft(t *testing.T) {
	room := newRoom()
	if err := room.Update(&client.Event{Type: binary.MsgTypePlayerLeft, PlayerID: 1}); err != nil {
		t.Fatalf("%v", err)
	}
	if _, ok := room.Players[1]; ok {
		t.Fatalf("player 1 still exists")
	}
}

func TestRoom_Update_onPlayerType(t *testing.T) {
	room := newRoom()
	room.Players[2].Ready = true
	if err := room.Update(&client.Event{Type: binary.MsgTypePlayerType, PlayerID: 2, Value: int32(binary.Black)}); err != nil {
		t.Fatalf("%v", err)
	}
	want := &client.Player{ID: 2, Name: "bob", Type: binary.Black}
	if diff := cmp.Diff(want, room.Players[2]); diff != "" {
		t.Fatalf("player (-want +got)\n%s", diff)
	}
	if p := room.Seat(binary.Black); p == nil || p.ID != 2 {
		t.Fatalf("black seat = %v", p)
	}

	err := room.Update(&client.Event{Type: binary.MsgTypePlayerType, PlayerID: 9, Value: int32(binary.Black)})
	if err == nil {
		t.Fatalf("unknown player must be an error")
	}
}

func TestRoom_Update_onGameStarted(t *testing.T) {
	room := newRoom()
	for _, id := range []int32{1, 2} {
		if err := room.Update(&client.Event{Type: binary.MsgTypePlayerReady, PlayerID: id}); err != nil {
			t.Fatalf("%v", err)
		}
	}
	room.Update(&client.Event{Type: binary.MsgTypeNotification, Value: int32(binary.NotifyGameStarted)})
	if !room.Started {
		t.Fatalf("not started")
	}
	for id, p := range room.Players {
		if p.Ready {
			t.Errorf("player %v is still ready", id)
		}
	}

	room.Update(&client.Event{Type: binary.MsgTypeNotification, Value: int32(binary.NotifyGamePaused)})
	if !room.Paused {
		t.Fatalf("not paused")
	}
	room.Update(&client.Event{Type: binary.MsgTypeNotification, Value: int32(binary.NotifyResigned)})
	if room.Started {
		t.Fatalf("still started")
	}
}

func TestRoom_Update_onHostChanged(t *testing.T) {
	room := newRoom()
	room.Update(&client.Event{Type: binary.MsgTypeHostChanged, PlayerID: 2})
	if room.Host != 2 {
		t.Fatalf("host = %v, wants 2", room.Host)
	}
	room.Update(&client.Event{Type: binary.MsgTypeName, PlayerID: 2, Text: "robert"})
	if room.Players[2].Name != "robert" {
		t.Fatalf("name = %q", room.Players[2].Name)
	}
}
