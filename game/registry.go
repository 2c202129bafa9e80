package game

import (
	"math"
	"sync"
	"time"

	"chessnet/binary"
	"chessnet/config"
	"chessnet/game/metrics"
	"chessnet/log"
)

// Registry owns every live session and room.
// All of them, and every Room field plus Session.{name,ready,room,synchronized},
// are guarded by mu; each exported operation holds it for its whole duration.
type Registry struct {
	conf   *config.GameConf
	logger log.Logger

	mu       sync.Mutex
	sessions map[SessionID]*Session
	rooms    map[RoomID]*Room

	lastSessionID int32
	lastRoomID    int32
	maxID         int32

	handlers []EventHandler

	now func() time.Time
}

func NewRegistry(conf *config.GameConf) *Registry {
	if conf == nil {
		conf = &config.Default().Game
	}
	return &Registry{
		conf:     conf,
		logger:   log.Get(log.Level(conf.DefaultLoglevel)),
		sessions: make(map[SessionID]*Session),
		rooms:    make(map[RoomID]*Room),
		maxID:    math.MaxInt32,
		now:      time.Now,
	}
}

// Subscribe registers h for room lifecycle events.
func (reg *Registry) Subscribe(h EventHandler) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.handlers = append(reg.handlers, h)
}

func (reg *Registry) emit(ev *RoomEvent) {
	reg.logger.Infof("room %v: room=%v name=%q white=%q black=%q observers=%v elapsed=%v",
		ev.Kind, ev.RoomID, ev.Name, ev.White, ev.Black, ev.Observers, ev.Elapsed)
	for _, h := range reg.handlers {
		h.HandleRoomEvent(ev)
	}
}

// nextID advances *last, wrapping past maxID back to 1, and skips ids still in use.
func (reg *Registry) nextID(last *int32, inUse func(int32) bool) (int32, error) {
	for i := int32(0); i < reg.maxID; i++ {
		if *last >= reg.maxID {
			*last = 1
		} else {
			*last++
		}
		if !inUse(*last) {
			return *last, nil
		}
	}
	return 0, ErrNoFreeID
}

// AddSession registers a connection which passed the handshake.
func (reg *Registry) AddSession(conn *binary.Conn, version int32) (*Session, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id, err := reg.nextID(&reg.lastSessionID, func(id int32) bool {
		_, ok := reg.sessions[SessionID(id)]
		return ok
	})
	if err != nil {
		return nil, err
	}
	s := newSession(SessionID(id), conn, version, reg.logger)
	reg.sessions[s.id] = s
	metrics.Conns.Add(1)
	s.logger.Debugf("session added: version=%v remote=%v", version, conn.RemoteAddr())
	return s, nil
}

// RemoveSession detaches s from the registry.
// It does not leave the room; call LeaveRoom first or use Disconnect.
func (reg *Registry) RemoveSession(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.removeSession(s)
}

func (reg *Registry) removeSession(s *Session) {
	if s == nil || s.removed {
		return
	}
	s.removed = true
	delete(reg.sessions, s.id)
	metrics.Conns.Add(-1)

	// 作成されたまま誰も入室していない部屋を残さない
	for id, r := range reg.rooms {
		if r.owner == s && r.empty() {
			reg.deleteRoom(id)
		}
	}
	s.logger.Debugf("session removed")
}

// Disconnect leaves the current room and removes s as one operation.
func (reg *Registry) Disconnect(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.leaveRoom(s)
	reg.removeSession(s)
}

// FindSession returns the live session with id, or nil.
func (reg *Registry) FindSession(id SessionID) *Session {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.sessions[id]
}

// FindRoom returns the live room with id, or nil.
func (reg *Registry) FindRoom(id RoomID) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.rooms[id]
}

// CreateRoom creates an empty room owned by owner. The owner is not seated.
func (reg *Registry) CreateRoom(owner *Session, name string, private bool) (*Room, error) {
	if owner == nil {
		return nil, ErrNoOwner
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.createRoom(owner, name, private)
}

func (reg *Registry) createRoom(owner *Session, name string, private bool) (*Room, error) {
	id, err := reg.nextID(&reg.lastRoomID, func(id int32) bool {
		_, ok := reg.rooms[RoomID(id)]
		return ok
	})
	if err != nil {
		return nil, err
	}
	r := newRoom(RoomID(id), name, private, owner)
	reg.rooms[r.id] = r
	metrics.Rooms.Add(1)
	reg.logger.Infof("room created: room=%v name=%q owner=%v private=%v", r.id, name, owner.id, private)
	return r, nil
}

// OpenRoom creates a room and moves owner into it atomically.
func (reg *Registry) OpenRoom(owner *Session, name string, private bool) (*Room, error) {
	if owner == nil {
		return nil, ErrNoOwner
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if owner.removed {
		return nil, nil
	}
	reg.leaveRoom(owner)
	r, err := reg.createRoom(owner, name, private)
	if err != nil {
		return nil, err
	}
	reg.joinRoom(owner, r)
	return r, nil
}

func (reg *Registry) deleteRoom(id RoomID) {
	if _, ok := reg.rooms[id]; !ok {
		return
	}
	delete(reg.rooms, id)
	metrics.Rooms.Add(-1)
	reg.logger.Infof("room deleted: room=%v", id)
}

// JoinRoom moves s into the room with id as an observer.
// It is a no-op when the room does not exist or s is already in it.
func (reg *Registry) JoinRoom(s *Session, id RoomID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r := reg.rooms[id]
	if s == nil || s.removed || r == nil || s.room == r {
		return
	}
	reg.leaveRoom(s)
	reg.joinRoom(s, r)
}

func (reg *Registry) joinRoom(s *Session, r *Room) {
	s.SendNotification(binary.NotifyJoinedRoom)

	existing := r.occupants()
	for _, o := range existing {
		o.SendPlayerJoined(s.id, s.name)
	}
	for _, o := range existing {
		t, _ := r.slotOf(o)
		s.SendPlayerJoined(o.id, o.name)
		s.SendPlayerType(o.id, t)
	}

	r.put(s, binary.Observer)
	s.room = r
	s.ready = false

	// 作成者が入室前に別の部屋へ移った場合など, オーナーが不在なら入室者が引き継ぐ
	if r.owner == nil || r.owner.room != r {
		r.owner = s
	}

	if r.owner == s {
		s.synchronized = true
		s.SendHostChanged(s.id)
	} else {
		s.synchronized = false
		r.owner.SendNetworkRequest(binary.RequestGameData)
	}
	s.logger.Infof("joined room: room=%v owner=%v occupants=%v", r.id, r.owner.id, r.count())
}

// LeaveRoom takes s out of its room. It is a no-op when s is not in a room.
func (reg *Registry) LeaveRoom(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.leaveRoom(s)
}

func (reg *Registry) leaveRoom(s *Session) {
	if s == nil || s.room == nil {
		return
	}
	r := s.room

	s.SendNotification(binary.NotifyLeftRoom)

	// 空室で削除する場合の記録用に退室前の状態を残す
	var ended *RoomEvent
	if r.started {
		ended = r.event(RoomEnded, reg.now())
	}

	r.remove(s)
	s.room = nil
	s.ready = false
	s.synchronized = false
	s.logger.Infof("left room: room=%v", r.id)

	if r.empty() {
		if ended != nil {
			r.started = false
			metrics.GamesEnded.Add(1)
			reg.emit(ended)
		}
		reg.deleteRoom(r.id)
		return
	}

	if r.owner == s {
		r.owner = r.nextOwner()
		r.owner.SendHostChanged(r.owner.id)
		reg.logger.Infof("owner switched: room=%v owner=%v->%v", r.id, s.id, r.owner.id)
	}
	r.broadcast(binary.NewEvPlayerLeft(int32(s.id)), nil)
}

// Kick removes the occupant target from the room owned by owner.
// Requests from a non-owner, or for a session outside the room, are ignored.
func (reg *Registry) Kick(owner *Session, target SessionID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r := owner.room
	if r == nil || r.owner != owner {
		owner.logger.Debugf("kick ignored: not the owner")
		return
	}
	t := r.findOccupant(target)
	if t == nil {
		owner.logger.Debugf("kick ignored: %v is not in room %v", target, r.id)
		return
	}
	owner.logger.Infof("kick: room=%v target=%v", r.id, target)
	reg.leaveRoom(t)
}

// ChangeSeat moves s to the slot t. Illegal moves are ignored:
// a seat can only be taken while empty, and only seated players can become observers.
func (reg *Registry) ChangeSeat(s *Session, t binary.PlayerType) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r := s.room
	if r == nil {
		return false
	}
	switch t {
	case binary.Observer:
		if !r.isSeated(s) {
			return false
		}
	case binary.White:
		if r.white != nil {
			return false
		}
	case binary.Black:
		if r.black != nil {
			return false
		}
	default:
		return false
	}

	s.ready = false
	r.remove(s)
	r.put(s, t)
	r.broadcast(binary.NewEvPlayerType(int32(s.id), t), nil)
	s.logger.Debugf("seat changed: room=%v type=%v", r.id, t)
	return true
}

// SetReady marks a seated session ready and starts the game once both seats are ready.
func (reg *Registry) SetReady(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.setReady(s)
}

func (reg *Registry) setReady(s *Session) {
	r := s.room
	if r == nil || !r.isSeated(s) {
		return
	}
	s.ready = true
	r.broadcast(binary.NewEvPlayerReady(int32(s.id)), nil)

	if r.white == nil || r.black == nil || !r.white.ready || !r.black.ready {
		return
	}
	r.white.ready = false
	r.black.ready = false
	r.started = true
	r.startedAt = reg.now()
	r.broadcast(binary.NewEvNotification(binary.NotifyGameStarted), nil)
	metrics.GamesStarted.Add(1)
	reg.emit(r.event(RoomStarted, r.startedAt))
}

// EndGame finishes the running game of the room. It is idempotent.
func (reg *Registry) EndGame(id RoomID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r := reg.rooms[id]; r != nil {
		reg.endGame(r)
	}
}

func (reg *Registry) endGame(r *Room) {
	if r.started {
		metrics.GamesEnded.Add(1)
		reg.emit(r.event(RoomEnded, reg.now()))
	}
	r.started = false
	r.startedAt = time.Time{}
}

// RelayGameData delivers data to every occupant which has not been synchronized yet.
func (reg *Registry) RelayGameData(sender *Session, data []byte) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r := sender.room
	if r == nil {
		return 0
	}
	ev := binary.NewEvGameData(data)
	n := 0
	for _, s := range r.occupants() {
		if s.synchronized {
			continue
		}
		s.send(ev)
		s.synchronized = true
		n++
	}
	return n
}

// RelayMessage forwards a chat text to the other occupants.
func (reg *Registry) RelayMessage(sender *Session, text string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r := sender.room; r != nil {
		r.broadcast(binary.NewEvMessage(int32(sender.id), text), sender)
	}
}

// RelayMove forwards a move from a seated player to the other occupants.
func (reg *Registry) RelayMove(sender *Session, data int32) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r := sender.room; r != nil && r.isSeated(sender) {
		r.broadcast(binary.NewEvMove(data), sender)
	}
}

// RelayTime forwards the clock of a seated player to the other occupants.
func (reg *Registry) RelayTime(sender *Session, millis int32) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r := sender.room; r != nil && r.isSeated(sender) {
		r.broadcast(binary.NewEvPlayerTime(int32(sender.id), millis), sender)
	}
}

// RelayPromotion forwards a promotion choice to the other occupants.
func (reg *Registry) RelayPromotion(sender *Session, pieceType int32) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r := sender.room; r != nil {
		r.broadcast(binary.NewEvPromoteTo(pieceType), sender)
	}
}

// RelayPlayerRequest forwards a draw or takeback request to the opposing seat.
func (reg *Registry) RelayPlayerRequest(sender *Session, req binary.PlayerRequest) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r := sender.room
	if r == nil {
		return
	}
	if o := r.opponentOf(sender); o != nil {
		o.SendPlayerRequest(req)
	}
}

// Notify applies a notification from a seated player and relays it to the room.
func (reg *Registry) Notify(sender *Session, n binary.Notification) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r := sender.room
	if r == nil || !r.isSeated(sender) {
		sender.logger.Debugf("notification ignored: %v", n)
		return
	}

	switch n {
	case binary.NotifyIAmReady:
		reg.setReady(sender)
	case binary.NotifyIResign:
		r.broadcast(binary.NewEvNotification(binary.NotifyResigned), nil)
		reg.endGame(r)
	case binary.NotifyGamePaused:
		r.paused = true
		r.broadcast(binary.NewEvNotification(binary.NotifyGamePaused), nil)
	case binary.NotifyGameResumed:
		r.paused = false
		r.broadcast(binary.NewEvNotification(binary.NotifyGameResumed), nil)
	case binary.NotifyDrawRequestAccepted:
		r.broadcast(binary.NewEvNotification(binary.NotifyGameDrawn), nil)
		reg.endGame(r)
	case binary.NotifyTakebackRequestAccepted:
		r.broadcast(binary.NewEvNotification(binary.NotifyTookBackMove), nil)
	case binary.NotifyGameEnded:
		reg.endGame(r)
	default:
		r.broadcast(binary.NewEvNotification(n), nil)
	}
}

// SetName renames s and tells its room, or s alone when it is in no room.
func (reg *Registry) SetName(s *Session, name string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	s.name = name
	if r := s.room; r != nil {
		r.broadcast(binary.NewEvName(int32(s.id), name), nil)
		return
	}
	s.SendName(s.id, name)
}

// SendRoomList sends one RoomInfo per live room to s.
func (reg *Registry) SendRoomList(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, r := range reg.sortedRooms() {
		s.SendRoomInfo(r.id, r.name, r.private, r.count())
	}
}

// DisconnectAll asks every client to go away and closes its stream.
func (reg *Registry) DisconnectAll() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, s := range reg.sessions {
		s.SendDisconnection()
		s.Close()
	}
	return len(reg.sessions)
}

// NumSessions returns the number of live sessions.
func (reg *Registry) NumSessions() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.sessions)
}
