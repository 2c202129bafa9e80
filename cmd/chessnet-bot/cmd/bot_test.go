package cmd

import (
	"context"
	"net"
	"testing"
	"time"

	"chessnet/client"
	"chessnet/config"
	"chessnet/game"
)

// useRegistry makes bots connect to an in-process registry over net.Pipe.
func useRegistry(t *testing.T) (*game.Registry, chan game.RoomEventKind) {
	t.Helper()
	conf := config.Default().Game
	conf.WriteTimeout = config.Duration(time.Second)
	reg := game.NewRegistry(&conf)

	events := make(chan game.RoomEventKind, 16)
	reg.Subscribe(game.EventHandlerFunc(func(ev *game.RoomEvent) {
		select {
		case events <- ev.Kind:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	orig := dial
	dial = func(context.Context) (*client.Connection, error) {
		sc, cc := net.Pipe()
		go reg.ServeConn(ctx, sc)
		return client.Handshake(cc, conf.ProtocolID, conf.Version)
	}
	t.Cleanup(func() {
		dial = orig
		cancel()
	})
	return reg, events
}

func waitEvents(t *testing.T, events chan game.RoomEventKind, want ...game.RoomEventKind) {
	t.Helper()
	for _, w := range want {
		select {
		case k := <-events:
			if k != w {
				t.Fatalf("room event %v, wants %v", k, w)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("timeout waiting %v", w)
		}
	}
}

func TestScenario(t *testing.T) {
	_, events := useRegistry(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runScenario(ctx, "scenario-test"); err != nil {
		t.Fatalf("scenario: %+v", err)
	}
	waitEvents(t, events, game.RoomStarted, game.RoomEnded)
}

func TestSoakRoom(t *testing.T) {
	_, events := useRegistry(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	soakObservers = 1
	if err := runSoakRoom(ctx, 0, 1500*time.Millisecond); err != nil {
		t.Fatalf("soak: %+v", err)
	}
	waitEvents(t, events, game.RoomStarted, game.RoomEnded)
}

func TestRunSoakArgs(t *testing.T) {
	ctx := context.Background()
	if err := runSoak(ctx, 0, time.Second, time.Second); err == nil {
		t.Fatalf("room count 0 must fail")
	}
	if err := runSoak(ctx, 1, time.Minute, time.Second); err == nil {
		t.Fatalf("min > max must fail")
	}
}
