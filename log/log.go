package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"chessnet/config"
)

// Level type of loglevel
type Level int

const (
	// NOLOG output no logs
	NOLOG Level = iota
	// ERROR output error logs
	ERROR
	// INFO output info/error logs
	INFO
	// DEBUG output debug/info/error logs
	DEBUG
	// ALL output all logs
	ALL
)

// Logger is the leveled, structured logger handed to sessions and rooms.
type Logger = *zap.SugaredLogger

var (
	mu       sync.RWMutex
	root     = newRoot(zapcore.AddSync(os.Stdout), false)
	level    = INFO
	sugar    = get(root, INFO)
	levelOff = zapcore.FatalLevel + 1
)

func newEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	return ec
}

func newRoot(w zapcore.WriteSyncer, json bool) *zap.Logger {
	ec := newEncoderConfig()
	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		enc = zapcore.NewConsoleEncoder(ec)
	}
	return zap.New(zapcore.NewCore(enc, w, zapcore.DebugLevel), zap.AddCaller())
}

// InitLogger builds the root logger from conf: stdout and, when LogPath is set,
// a rotating file. The returned func flushes the buffered entries.
func InitLogger(conf *config.LogConf) func() {
	ec := newEncoderConfig()

	var stdoutEnc zapcore.Encoder
	if conf.LogStdoutConsole {
		stdoutEnc = zapcore.NewConsoleEncoder(ec)
	} else {
		stdoutEnc = zapcore.NewJSONEncoder(ec)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEnc, zapcore.Lock(os.Stdout), Level(conf.LogStdoutLevel).zapLevel()),
	}

	if conf.LogPath != "" {
		lj := &lumberjack.Logger{
			Filename:   conf.LogPath,
			MaxSize:    conf.LogMaxSize,
			MaxBackups: conf.LogMaxBackups,
			MaxAge:     conf.LogMaxAge,
			Compress:   conf.LogCompress,
		}
		cores = append(cores,
			zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.AddSync(lj), Level(conf.LogFileLevel).zapLevel()))
	}

	setRoot(zap.New(zapcore.NewTee(cores...), zap.AddCaller()))

	return func() {
		mu.RLock()
		defer mu.RUnlock()
		_ = root.Sync()
	}
}

// SetWriter sets custom log writer
func SetWriter(w io.Writer) {
	setRoot(newRoot(zapcore.AddSync(w), false))
}

func setRoot(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
	sugar = get(root, level)
}

// CurrentLevel returns current log level
func CurrentLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetLevel sets log level
func SetLevel(l Level) (old Level) {
	mu.Lock()
	defer mu.Unlock()
	old = level
	level = l
	sugar = get(root, level)
	return old
}

// Get returns a logger which outputs logs at l or higher severity.
func Get(l Level) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return get(root, l)
}

func get(r *zap.Logger, l Level) Logger {
	if !r.Core().Enabled(l.zapLevel()) {
		// the sinks are already stricter than l.
		return r.Sugar()
	}
	return r.WithOptions(zap.IncreaseLevel(l.zapLevel())).Sugar()
}

// Debugf outputs log for debug
func Debugf(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

// Infof outputs log for information
func Infof(format string, v ...interface{}) {
	current().Infof(format, v...)
}

// Errorf outputs log for error
func Errorf(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

func current() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar.Desugar().WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func (l Level) zapLevel() zapcore.Level {
	switch {
	case l <= NOLOG:
		return levelOff
	case l == ERROR:
		return zapcore.ErrorLevel
	case l == INFO:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// String implements Stringer interface
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case ERROR:
		return "ERROR"
	}
	if l >= ALL {
		return "ALL"
	}
	return "NOLOG"
}
