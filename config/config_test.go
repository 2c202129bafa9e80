package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	filename := "testdata/test.toml"

	c, err := Load(filename)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	game := GameConf{
		Hostname: "chessnet.localhost",
		Port:     12570,
		GRPCPort: 12571,

		ProtocolID:       "AlphaChess",
		Version:          410,
		SupportedVersion: 400,

		WriteTimeout:    Duration(time.Second * 3),
		AcceptBackoff:   Duration(time.Millisecond * 50),
		SnapshotTimeout: Duration(time.Second),

		MaxStringLen:   256,
		MaxGameDataLen: 1 << 20,

		DefaultLoglevel: 3,

		LogConf: LogConf{
			LogStdoutLevel: 4,
			LogPath:        "/tmp/chessnet-server.log",
			LogFileLevel:   3,
			LogMaxSize:     1,
			LogMaxBackups:  2,
			LogMaxAge:      3,
			LogCompress:    true,
		},
	}
	if diff := cmp.Diff(c.Game, game); diff != "" {
		t.Fatalf("c.Game differs: (-got +want)\n%s", diff)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "localhost"
	}
	admin := AdminConf{
		Hostname:     hostname,
		Port:         18080,
		WebRoot:      "/tmp/www",
		ApiTimeout:   Duration(time.Second * 2),
		EventBufSize: 64,
		Loglevel:     2,
	}
	if diff := cmp.Diff(c.Admin, admin); diff != "" {
		t.Fatalf("c.Admin differs: (-got +want)\n%s", diff)
	}

	history := HistoryConf{
		Dir:        "/tmp/chessnet-history",
		MaxSize:    100,
		MaxBackups: 7,
	}
	if diff := cmp.Diff(c.History, history); diff != "" {
		t.Fatalf("c.History differs: (-got +want)\n%s", diff)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CHESSNET_PORT", "3000")
	t.Setenv("CHESSNET_ADMIN_PORT", "3001")
	t.Setenv("CHESSNET_HOSTNAME", "env.localhost")

	c, err := Load("testdata/test.toml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.Game.Port != 3000 || c.Admin.Port != 3001 {
		t.Fatalf("ports = %v, %v, wants 3000, 3001", c.Game.Port, c.Admin.Port)
	}
	if c.Game.Hostname != "env.localhost" || c.Admin.Hostname != "env.localhost" {
		t.Fatalf("hostnames = %v, %v, wants env.localhost", c.Game.Hostname, c.Admin.Hostname)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("testdata/bad_version.toml"); err == nil {
		t.Fatalf("Load must fail when supported_version exceeds version")
	}
	if _, err := Load("testdata/not_found.toml"); err == nil {
		t.Fatalf("Load must fail for missing file")
	}
}

func TestAddr(t *testing.T) {
	c := Default()
	if a := c.Game.Addr(); a != ":2570" {
		t.Fatalf("Game.Addr() = %v, wants :2570", a)
	}
	if a := c.Admin.Addr(); a != ":2580" {
		t.Fatalf("Admin.Addr() = %v, wants :2580", a)
	}
}
