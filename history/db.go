package history

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"golang.org/x/xerrors"
)

const insertQuery = "" +
	"INSERT INTO game_history (room_name, private, white, black, observers, elapsed_ms, ended_at) " +
	"VALUES (:room_name, :private, :white, :black, :observers, :elapsed_ms, :ended_at)"

// DBWriter inserts one row per game into game_history.
type DBWriter struct {
	db *sqlx.DB
}

// OpenDB connects to MySQL with dsn.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, xerrors.Errorf("sqlx.Open: %w", err)
	}
	return db, nil
}

func NewDBWriter(db *sqlx.DB) *DBWriter {
	return &DBWriter{db: db}
}

func (w *DBWriter) Write(ctx context.Context, rec *Record) error {
	if _, err := w.db.NamedExecContext(ctx, insertQuery, rec); err != nil {
		return xerrors.Errorf("insert game_history: %w", err)
	}
	return nil
}

func (w *DBWriter) Close() error {
	return w.db.Close()
}
