package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chessnet/admin"
	"chessnet/config"
	"chessnet/game"
	"chessnet/game/service"
	"chessnet/history"
	"chessnet/log"
)

var (
	ChessnetVersion string = "LOCAL"
	ChessnetCommit  string = "LOCAL"
)

const historyQueueSize = 256

type subscriber interface {
	Subscribe(h game.EventHandler)
}

// startHistory subscribes the game history recorder to reg.
// The returned stop flushes the queued records, closes the sinks and waits for them.
func startHistory(conf *config.HistoryConf, reg subscriber) (func(), error) {
	var sinks []history.Sink
	if conf.Dir != "" {
		log.Infof("history dir: %v", conf.Dir)
		sinks = append(sinks, history.NewFileWriter(conf))
	}
	if conf.DSN != "" {
		db, err := history.OpenDB(conf.DSN)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, history.NewDBWriter(db))
	}
	if len(sinks) == 0 {
		return func() {}, nil
	}

	recorder := history.NewRecorder(historyQueueSize, sinks...)
	reg.Subscribe(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		recorder.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}, nil
}

func main() {
	if len(os.Args) < 2 {
		panic(fmt.Errorf("no config.toml specified"))
	}
	conf, err := config.Load(os.Args[1])
	if err != nil {
		panic(fmt.Errorf("%+v\n", err))
	}

	defer log.InitLogger(&conf.Game.LogConf)()
	log.SetLevel(log.Level(conf.Game.DefaultLoglevel))
	log.Infof("chessnet-server")
	log.Infof("ChessnetVersion: %v", ChessnetVersion)
	log.Infof("ChessnetCommit: %v", ChessnetCommit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := game.NewRegistry(&conf.Game)

	stopHistory, err := startHistory(&conf.History, reg)
	if err != nil {
		panic(fmt.Errorf("%+v\n", err))
	}

	adm := admin.New(&conf.Admin, reg)
	reg.Subscribe(adm.Events)
	go func() {
		if err := adm.Serve(ctx); err != nil {
			log.Errorf("admin service: %+v", err)
		}
	}()

	svc := service.New(&conf.Game, reg)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-ctx.Done():
		case sig := <-ch:
			log.Infof("got signal: %v", sig)
			svc.Shutdown(ctx)
		}
	}()

	err = svc.Serve(ctx)
	// 切断時に終了した対局の記録を書き出してから終了する
	stopHistory()
	if err != nil {
		panic(fmt.Errorf("%+v\n", err))
	}
}
