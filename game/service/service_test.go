package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"chessnet/binary"
	"chessnet/client"
	"chessnet/config"
	"chessnet/game"
)

func TestServeAndShutdown(t *testing.T) {
	conf := config.Default().Game
	svc := New(&conf, game.NewRegistry(&conf))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- svc.ServeListener(context.Background(), l) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var conns []*client.Connection
	for i := 0; i < 2; i++ {
		c, err := client.Dial(ctx, l.Addr().String(), conf.ProtocolID, conf.Version)
		if err != nil {
			t.Fatalf("dial: %+v", err)
		}
		defer c.Close()
		conns = append(conns, c)
	}
	if conns[0].ID == conns[1].ID {
		t.Fatalf("same id: %v", conns[0].ID)
	}

	conns[0].CreateRoom("Test")
	ev := <-conns[0].Events()
	if ev.Type != binary.MsgTypeNotification || ev.Notification() != binary.NotifyJoinedRoom {
		t.Fatalf("event: %+v", ev)
	}

	go svc.Shutdown(ctx)

	for _, c := range conns {
		var last *client.Event
		for ev := range c.Events() {
			last = ev
		}
		if last == nil || last.Type != binary.MsgTypeDisconnection {
			t.Fatalf("client %v: last event %+v", c.ID, last)
		}
	}

	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("ServeListener: %+v", err)
		}
	case <-ctx.Done():
		t.Fatalf("ServeListener did not return")
	}

	if err := <-svc.done; err != nil {
		t.Fatalf("Shutdown: %+v", err)
	}
	if n := svc.numSessions(); n != 0 {
		t.Fatalf("sessions = %v, wants 0", n)
	}

	if _, err := client.Dial(ctx, l.Addr().String(), conf.ProtocolID, conf.Version); err == nil {
		t.Fatalf("dial after shutdown must fail")
	}
}

func listenerAddr(t *testing.T, svc *GameService) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		svc.mu.Lock()
		l := svc.listener
		svc.mu.Unlock()
		if l != nil {
			return fmt.Sprintf("127.0.0.1:%d", l.Addr().(*net.TCPAddr).Port)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("listener not ready")
	return ""
}

func TestServeWaitsForSessions(t *testing.T) {
	conf := config.Default().Game
	conf.Port = 0
	conf.GRPCPort = 0
	conf.PprofPort = 0
	reg := game.NewRegistry(&conf)
	svc := New(&conf, reg)

	served := make(chan error, 1)
	go func() { served <- svc.Serve(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	addr := listenerAddr(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		c, err := client.Dial(ctx, addr, conf.ProtocolID, conf.Version)
		if err != nil {
			t.Fatalf("dial: %+v", err)
		}
		defer c.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range c.Events() {
			}
		}()
	}
	if n := reg.NumSessions(); n != 5 {
		t.Fatalf("sessions = %v, wants 5", n)
	}

	go svc.Shutdown(ctx)

	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("Serve: %+v", err)
		}
	case <-ctx.Done():
		t.Fatalf("Serve did not return")
	}
	if n := reg.NumSessions(); n != 0 {
		t.Fatalf("Serve returned with %v live sessions", n)
	}
	wg.Wait()
}
