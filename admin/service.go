// Package admin serves the read-only monitoring API.
package admin

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/xerrors"

	"chessnet/config"
	"chessnet/game"
	"chessnet/log"
)

// Snapshotter : 管理APIが参照するスナップショットの取得元
type Snapshotter interface {
	ListSessions() []game.SessionInfo
	ListRooms() []game.RoomInfo
}

type AdminService struct {
	conf   *config.AdminConf
	reg    Snapshotter
	Events *EventHub
	logger log.Logger
}

func New(conf *config.AdminConf, reg Snapshotter) *AdminService {
	return &AdminService{
		conf:   conf,
		reg:    reg,
		Events: NewEventHub(conf.EventBufSize),
		logger: log.Get(log.Level(conf.Loglevel)),
	}
}

func (sv *AdminService) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var err error
	select {
	case <-ctx.Done():
	case err = <-sv.serveAPI(ctx):
	}
	return err
}

func (sv *AdminService) serveAPI(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	go func() {
		laddr := sv.conf.Addr()
		sv.logger.Infof("admin api: %#v", laddr)

		listener, err := net.Listen("tcp", laddr)
		if err != nil {
			errCh <- xerrors.Errorf("listen error: %w", err)
			return
		}

		r := mux.NewRouter()
		sv.registerRoutes(r)

		svr := &http.Server{
			Handler:     r,
			ReadTimeout: time.Duration(sv.conf.ApiTimeout),
		}
		go func() {
			<-ctx.Done()
			sv.Events.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			svr.Shutdown(shutdownCtx)
		}()

		errCh <- svr.Serve(listener)
	}()

	return errCh
}
