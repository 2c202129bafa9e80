package metrics

import (
	"expvar"
)

var (
	expmap       = expvar.NewMap("chessnet")
	Conns        = new(expvar.Int)
	Rooms        = new(expvar.Int)
	MessageSent  = new(expvar.Int)
	MessageRecv  = new(expvar.Int)
	GamesStarted = new(expvar.Int)
	GamesEnded   = new(expvar.Int)
)

func init() {
	expmap.Set("conns", Conns)
	expmap.Set("rooms", Rooms)
	expmap.Set("message_sent", MessageSent)
	expmap.Set("message_recv", MessageRecv)
	expmap.Set("games_started", GamesStarted)
	expmap.Set("games_ended", GamesEnded)
}
