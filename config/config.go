package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml"
	"golang.org/x/xerrors"
)

type Config struct {
	Game    GameConf
	Admin   AdminConf
	History HistoryConf
}

type LogConf struct {
	// LogStdoutConsole : stdout をローカル開発用のフォーマットにする
	LogStdoutConsole bool `toml:"log_stdout_console"`
	// LogStdoutLevel : stdout のログレベル設定
	LogStdoutLevel uint32 `toml:"log_stdout_level"`

	// ローテーション設定
	// https://github.com/natefinch/lumberjack#type-logger
	LogPath       string `toml:"log_path"`
	LogFileLevel  uint32 `toml:"log_file_level"`
	LogMaxSize    int    `toml:"log_max_size"`
	LogMaxBackups int    `toml:"log_max_backups"`
	LogMaxAge     int    `toml:"log_max_age"`
	LogCompress   bool   `toml:"log_compress"`
}

type GameConf struct {
	Hostname string
	Port     int

	GRPCPort  int `toml:"grpc_port"`
	PprofPort int `toml:"pprof_port"`

	// ProtocolID : handshakeで交換する識別文字列
	ProtocolID string `toml:"protocol_id"`
	// Version : サーバのプロトコルバージョン
	Version int32
	// SupportedVersion : 受け入れるクライアントの最小バージョン
	SupportedVersion int32 `toml:"supported_version"`

	// WriteTimeout : 1メッセージの送信にかける最大時間. 0なら無制限
	WriteTimeout Duration `toml:"write_timeout"`
	// AcceptBackoff : accept失敗時の待ち時間
	AcceptBackoff Duration `toml:"accept_backoff"`
	// SnapshotTimeout : 管理用スナップショット取得時のロック待ち上限
	SnapshotTimeout Duration `toml:"snapshot_timeout"`

	MaxStringLen   int `toml:"max_string_len"`
	MaxGameDataLen int `toml:"max_game_data_len"`

	DefaultLoglevel uint32 `toml:"default_loglevel"`

	LogConf
}

type AdminConf struct {
	Hostname string
	Port     int

	// WebRoot : 静的ファイルのディレクトリ. 空なら配信しない
	WebRoot string `toml:"web_root"`

	ApiTimeout Duration `toml:"api_timeout"`

	// EventBufSize : /events の購読者ごとの送信バッファ
	EventBufSize int `toml:"event_buf_size"`

	Loglevel uint32 `toml:"loglevel"`

	LogConf
}

type HistoryConf struct {
	// Dir : 対局履歴ファイルの出力先. 空なら出力しない
	Dir        string
	MaxSize    int  `toml:"max_size"`
	MaxBackups int  `toml:"max_backups"`
	MaxAge     int  `toml:"max_age"`
	Compress   bool `toml:"compress"`

	// DSN : 設定されていれば game_history テーブルにも記録する
	DSN string `toml:"dsn"`
}

func (c *GameConf) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *AdminConf) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	td, err := time.ParseDuration(string(text))
	*d = Duration(td)
	return err
}

// Load : tomlファイルから読み込む
//
// 次の環境変数はtomlより優先される.
// - CHESSNET_HOSTNAME:   Config.{Game,Admin}.Hostname
// - CHESSNET_PORT:       Config.Game.Port
// - CHESSNET_ADMIN_PORT: Config.Admin.Port
//
func Load(conffile string) (*Config, error) {
	c := Default()

	confBytes, err := os.ReadFile(conffile)
	if err != nil {
		return nil, xerrors.Errorf("read config: %w", err)
	}

	err = toml.Unmarshal(confBytes, c)
	if err != nil {
		return nil, xerrors.Errorf("parse config: %w", err)
	}

	c.applyEnvVar()

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "localhost"
	}

	return &Config{
		Game: GameConf{
			Hostname: hostname,
			Port:     2570,

			ProtocolID:       "AlphaChess",
			Version:          400,
			SupportedVersion: 400,

			WriteTimeout:    Duration(10 * time.Second),
			AcceptBackoff:   Duration(100 * time.Millisecond),
			SnapshotTimeout: Duration(time.Second),

			MaxStringLen:   4096,
			MaxGameDataLen: 1 << 20,

			DefaultLoglevel: 2,

			LogConf: LogConf{
				LogStdoutLevel: 4,
				LogPath:        "/var/log/chessnet/chessnet-server.log",
				LogFileLevel:   4,
				LogMaxSize:     500,
			},
		},
		Admin: AdminConf{
			Hostname:     hostname,
			Port:         2580,
			ApiTimeout:   Duration(5 * time.Second),
			EventBufSize: 64,
			Loglevel:     2,
		},
		History: HistoryConf{
			MaxSize: 100,
		},
	}
}

// applyEnvVar : 環境変数で上書きする
func (c *Config) applyEnvVar() {
	if v := os.Getenv("CHESSNET_HOSTNAME"); v != "" {
		c.Game.Hostname = v
		c.Admin.Hostname = v
	}
	if v, err := strconv.Atoi(os.Getenv("CHESSNET_PORT")); err == nil {
		c.Game.Port = v
	}
	if v, err := strconv.Atoi(os.Getenv("CHESSNET_ADMIN_PORT")); err == nil {
		c.Admin.Port = v
	}
}

func (c *Config) validate() error {
	if c.Game.ProtocolID == "" {
		return xerrors.Errorf("Game.protocol_id must not be empty")
	}
	if c.Game.SupportedVersion > c.Game.Version {
		return xerrors.Errorf("Game.supported_version(%v) exceeds Game.version(%v)",
			c.Game.SupportedVersion, c.Game.Version)
	}
	if c.Game.MaxStringLen <= 0 || c.Game.MaxGameDataLen <= 0 {
		return xerrors.Errorf("Game max lengths must be positive: string=%v gamedata=%v",
			c.Game.MaxStringLen, c.Game.MaxGameDataLen)
	}
	return nil
}
