package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"chessnet/config"
	"chessnet/game"
)

type fakeRegistry struct {
	handlers []game.EventHandler
}

func (f *fakeRegistry) Subscribe(h game.EventHandler) {
	f.handlers = append(f.handlers, h)
}

func TestStartHistoryFlushesOnStop(t *testing.T) {
	dir := t.TempDir()
	reg := &fakeRegistry{}
	stop, err := startHistory(&config.HistoryConf{Dir: dir, MaxSize: 1}, reg)
	if err != nil {
		t.Fatalf("startHistory: %+v", err)
	}
	if len(reg.handlers) != 1 {
		t.Fatalf("handlers = %v, wants 1", len(reg.handlers))
	}

	reg.handlers[0].HandleRoomEvent(&game.RoomEvent{
		Kind:      game.RoomEnded,
		Time:      time.Now(),
		Name:      "Test",
		White:     "alice",
		Black:     "bob",
		Observers: 1,
		Elapsed:   1500 * time.Millisecond,
	})
	stop()

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil || len(files) != 1 {
		t.Fatalf("files = %v, %v", files, err)
	}
	got, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff("Test,Public,alice,bob,1,1500\n", string(got)); diff != "" {
		t.Fatalf("history (-want +got)\n%s", diff)
	}
}

func TestStartHistoryDisabled(t *testing.T) {
	reg := &fakeRegistry{}
	stop, err := startHistory(&config.HistoryConf{}, reg)
	if err != nil {
		t.Fatalf("startHistory: %+v", err)
	}
	stop()
	if len(reg.handlers) != 0 {
		t.Fatalf("handlers = %v, wants 0", len(reg.handlers))
	}
}
