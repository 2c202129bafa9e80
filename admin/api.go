package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/vmihailenco/msgpack/v5"

	"chessnet/binary"
	"chessnet/game"
)

const contentTypeMsgpack = "application/x-msgpack"

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("chessnet works\n"))
}

func (sv *AdminService) registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.HandleFunc("/health/", handleHealth).Methods("GET")

	r.HandleFunc("/players.json", sv.handlePlayersTable).Methods("GET")
	r.HandleFunc("/rooms.json", sv.handleRoomsTable).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/players", sv.handlePlayers).Methods("GET")
	api.HandleFunc("/rooms", sv.handleRooms).Methods("GET")

	r.HandleFunc("/events", sv.Events.ServeWS).Methods("GET")

	if sv.conf.WebRoot != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(sv.conf.WebRoot)))
	}
}

// render writes v as msgpack when the client accepts it, otherwise as JSON.
func (sv *AdminService) render(w http.ResponseWriter, r *http.Request, v interface{}) {
	var (
		body []byte
		err  error
		ct   string
	)
	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		body, err = msgpack.Marshal(v)
		ct = contentTypeMsgpack
	} else {
		body, err = json.Marshal(v)
		ct = "application/json"
	}
	if err != nil {
		sv.logger.Errorf("marshal response: %+v", err)
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ct+"; charset=utf-8")
	w.Write(body)
}

func (sv *AdminService) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players := sv.reg.ListSessions()
	if players == nil {
		players = []game.SessionInfo{}
	}
	sv.render(w, r, players)
}

func (sv *AdminService) handleRooms(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "1"
	rooms := []game.RoomInfo{}
	for _, room := range sv.reg.ListRooms() {
		if room.Private && !all {
			continue
		}
		rooms = append(rooms, room)
	}
	sv.render(w, r, rooms)
}

// handlePlayersTable : id,name,version,connectedSeconds,roomId,type,ready
func (sv *AdminService) handlePlayersTable(w http.ResponseWriter, r *http.Request) {
	table := [][]string{}
	for _, p := range sv.reg.ListSessions() {
		room, typ := "", ""
		if p.Type >= 0 {
			room = strconv.Itoa(int(p.RoomID))
			typ = binary.PlayerType(p.Type).String()
		}
		table = append(table, []string{
			strconv.Itoa(int(p.ID)),
			p.Name,
			strconv.Itoa(int(p.Version)),
			strconv.FormatInt(p.ConnectedSeconds, 10),
			room,
			typ,
			strconv.FormatBool(p.Ready),
		})
	}
	sv.render(w, r, table)
}

// handleRoomsTable : id,name,Private|Public,Waiting|Playing|Paused,count
func (sv *AdminService) handleRoomsTable(w http.ResponseWriter, r *http.Request) {
	table := [][]string{}
	for _, room := range sv.reg.ListRooms() {
		table = append(table, []string{
			strconv.Itoa(int(room.ID)),
			room.Name,
			privacy(room.Private),
			roomStatus(&room),
			strconv.Itoa(room.OccupantCount),
		})
	}
	sv.render(w, r, table)
}

func privacy(private bool) string {
	if private {
		return "Private"
	}
	return "Public"
}

func roomStatus(room *game.RoomInfo) string {
	switch {
	case room.Paused:
		return "Paused"
	case room.Started:
		return "Playing"
	}
	return "Waiting"
}
