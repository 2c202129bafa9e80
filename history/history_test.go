package history

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"

	"chessnet/config"
	"chessnet/game"
)

func TestQueries(t *testing.T) {
	ok, err := regexp.MatchString(
		`INSERT INTO game_history \((.+, |)room_name(, .+|)\) VALUES \((.+, |):room_name(, .+|)\)`,
		insertQuery)
	if err != nil {
		t.Fatalf("insertQuery match error: %+v", err)
	}
	if !ok {
		t.Fatalf("insertQuery not match: %v", insertQuery)
	}
}

func newDbMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %+v", err)
	}
	return sqlx.NewDb(db, "mysql"), mock
}

var testRecord = &Record{
	RoomName:  "Test",
	Private:   true,
	White:     "alice",
	Black:     "bob",
	Observers: 2,
	ElapsedMs: 61500,
	EndedAt:   time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC),
}

func TestDBWriter(t *testing.T) {
	db, mock := newDbMock(t)
	w := NewDBWriter(db)

	mock.ExpectExec("INSERT INTO game_history").
		WithArgs("Test", true, "alice", "bob", 2, int64(61500), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	if err := w.Write(context.Background(), testRecord); err != nil {
		t.Fatalf("Write: %+v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %+v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDBWriterError(t *testing.T) {
	db, mock := newDbMock(t)
	w := NewDBWriter(db)

	mock.ExpectExec("INSERT INTO game_history").WillReturnError(os.ErrDeadlineExceeded)
	if err := w.Write(context.Background(), testRecord); err == nil {
		t.Fatalf("Write must fail")
	}
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(&config.HistoryConf{Dir: dir, MaxSize: 1})
	now := time.Date(2022, 3, 4, 23, 59, 0, 0, time.Local)
	w.now = func() time.Time { return now }

	rec := *testRecord
	if err := w.Write(context.Background(), &rec); err != nil {
		t.Fatalf("Write: %+v", err)
	}
	rec.RoomName = "a,b"
	rec.Private = false
	rec.Black = ""
	if err := w.Write(context.Background(), &rec); err != nil {
		t.Fatalf("Write: %+v", err)
	}

	now = now.Add(time.Hour)
	if err := w.Write(context.Background(), testRecord); err != nil {
		t.Fatalf("Write: %+v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %+v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "2022-03-04.log"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Test,Private,alice,bob,2,61500\n" + "\"a,b\",Public,alice,,2,61500\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("2022-03-04.log (-want +got)\n%s", diff)
	}

	got, err = os.ReadFile(filepath.Join(dir, "2022-03-05.log"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff("Test,Private,alice,bob,2,61500\n", string(got)); diff != "" {
		t.Fatalf("2022-03-05.log (-want +got)\n%s", diff)
	}
}

type memSink struct {
	mu     sync.Mutex
	recs   []*Record
	closed bool
}

func (s *memSink) Write(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *memSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestRecorder(t *testing.T) {
	sink := &memSink{}
	r := NewRecorder(2, sink)

	ended := &game.RoomEvent{
		Kind:      game.RoomEnded,
		Time:      testRecord.EndedAt,
		Name:      "Test",
		Private:   true,
		White:     "alice",
		Black:     "bob",
		Observers: 2,
		Elapsed:   61500 * time.Millisecond,
	}
	r.HandleRoomEvent(&game.RoomEvent{Kind: game.RoomStarted, Name: "Test"})
	r.HandleRoomEvent(ended)
	r.HandleRoomEvent(ended)
	r.HandleRoomEvent(ended) // dropped

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %+v", err)
	}

	if diff := cmp.Diff([]*Record{testRecord, testRecord}, sink.recs); diff != "" {
		t.Fatalf("records (-want +got)\n%s", diff)
	}
	if !sink.closed {
		t.Fatalf("sink is not closed")
	}
}
