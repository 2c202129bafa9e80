package history

import (
	"context"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/xerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"chessnet/config"
)

const dateLayout = "2006-01-02"

// FileWriter appends one CSV line per game to <dir>/<yyyy-MM-dd>.log.
//
//	name,Private|Public,white,black,observers,elapsedMillis
type FileWriter struct {
	conf *config.HistoryConf
	now  func() time.Time

	date string
	out  *lumberjack.Logger
}

func NewFileWriter(conf *config.HistoryConf) *FileWriter {
	return &FileWriter{
		conf: conf,
		now:  time.Now,
	}
}

func (w *FileWriter) Write(ctx context.Context, rec *Record) error {
	date := w.now().Format(dateLayout)
	if w.out == nil || w.date != date {
		if w.out != nil {
			w.out.Close()
		}
		w.date = date
		w.out = &lumberjack.Logger{
			Filename:   filepath.Join(w.conf.Dir, date+".log"),
			MaxSize:    w.conf.MaxSize,
			MaxBackups: w.conf.MaxBackups,
			MaxAge:     w.conf.MaxAge,
			Compress:   w.conf.Compress,
			LocalTime:  true,
		}
	}

	privacy := "Public"
	if rec.Private {
		privacy = "Private"
	}
	cw := csv.NewWriter(w.out)
	err := cw.Write([]string{
		rec.RoomName,
		privacy,
		rec.White,
		rec.Black,
		strconv.Itoa(rec.Observers),
		strconv.FormatInt(rec.ElapsedMs, 10),
	})
	if err == nil {
		cw.Flush()
		err = cw.Error()
	}
	if err != nil {
		return xerrors.Errorf("write %v: %w", w.out.Filename, err)
	}
	return nil
}

func (w *FileWriter) Close() error {
	if w.out == nil {
		return nil
	}
	return w.out.Close()
}
