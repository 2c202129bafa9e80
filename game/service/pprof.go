package service

import (
	"context"
	"encoding/json"
	_ "expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"chessnet/log"
)

func (sv *GameService) servePprof(ctx context.Context) <-chan error {
	if sv.conf.PprofPort == 0 {
		return nil
	}

	http.HandleFunc("/debug/sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"sessions": sv.numSessions()})
	})

	errCh := make(chan error, 1)

	go func() {
		laddr := fmt.Sprintf(":%d", sv.conf.PprofPort)
		log.Infof("game pprof: %#v", laddr)

		errCh <- http.ListenAndServe(laddr, nil)
	}()

	return errCh
}
