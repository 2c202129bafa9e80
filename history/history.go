// Package history records finished games.
package history

import (
	"context"
	"sync"
	"time"

	"golang.org/x/xerrors"

	"chessnet/game"
	"chessnet/log"
)

// Record : 終了した対局1件
type Record struct {
	RoomName  string    `db:"room_name"`
	Private   bool      `db:"private"`
	White     string    `db:"white"`
	Black     string    `db:"black"`
	Observers int       `db:"observers"`
	ElapsedMs int64     `db:"elapsed_ms"`
	EndedAt   time.Time `db:"ended_at"`
}

func NewRecord(ev *game.RoomEvent) *Record {
	return &Record{
		RoomName:  ev.Name,
		Private:   ev.Private,
		White:     ev.White,
		Black:     ev.Black,
		Observers: ev.Observers,
		ElapsedMs: ev.Elapsed.Milliseconds(),
		EndedAt:   ev.Time,
	}
}

type Sink interface {
	Write(ctx context.Context, rec *Record) error
	Close() error
}

// Recorder queues game-ended events and hands them to the sinks on its own goroutine.
type Recorder struct {
	sinks []Sink
	ch    chan *Record

	closeOnce sync.Once
}

func NewRecorder(bufSize int, sinks ...Sink) *Recorder {
	return &Recorder{
		sinks: sinks,
		ch:    make(chan *Record, bufSize),
	}
}

// HandleRoomEvent never blocks; records are dropped when the queue is full.
func (r *Recorder) HandleRoomEvent(ev *game.RoomEvent) {
	if ev.Kind != game.RoomEnded {
		return
	}
	select {
	case r.ch <- NewRecord(ev):
	default:
		log.Errorf("history queue is full: room=%v name=%q", ev.RoomID, ev.Name)
	}
}

// Run writes queued records until ctx is done, then flushes the rest and closes the sinks.
func (r *Recorder) Run(ctx context.Context) error {
	defer r.close()
	for {
		select {
		case <-ctx.Done():
			r.flush()
			return nil
		case rec := <-r.ch:
			r.write(context.Background(), rec)
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case rec := <-r.ch:
			r.write(context.Background(), rec)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, rec *Record) {
	for _, s := range r.sinks {
		if err := s.Write(ctx, rec); err != nil {
			log.Errorf("history write: %+v", err)
		}
	}
}

func (r *Recorder) close() {
	r.closeOnce.Do(func() {
		for _, s := range r.sinks {
			if err := s.Close(); err != nil {
				log.Errorf("history close: %+v", xerrors.Errorf("%T: %w", s, err))
			}
		}
	})
}
