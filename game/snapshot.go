package game

import (
	"sort"
	"time"
)

// SessionInfo : 管理画面向けのセッション情報
type SessionInfo struct {
	ID               SessionID `json:"id" msgpack:"id"`
	Name             string    `json:"name" msgpack:"name"`
	Ready            bool      `json:"ready" msgpack:"ready"`
	RoomID           RoomID    `json:"room_id" msgpack:"room_id"`
	Type             int32     `json:"type" msgpack:"type"` // -1: not in a room
	Synchronized     bool      `json:"synchronized" msgpack:"synchronized"`
	Version          int32     `json:"version" msgpack:"version"`
	ConnectedSeconds int64     `json:"connected_seconds" msgpack:"connected_seconds"`
}

// RoomInfo : 管理画面向けの部屋情報
type RoomInfo struct {
	ID            RoomID `json:"id" msgpack:"id"`
	Name          string `json:"name" msgpack:"name"`
	Private       bool   `json:"private" msgpack:"private"`
	Paused        bool   `json:"paused" msgpack:"paused"`
	Started       bool   `json:"started" msgpack:"started"`
	OccupantCount int    `json:"occupant_count" msgpack:"occupant_count"`
	ElapsedMillis int64  `json:"elapsed_millis" msgpack:"elapsed_millis"`
}

const snapshotPollInterval = 5 * time.Millisecond

// tryLock waits for mu up to SnapshotTimeout.
func (reg *Registry) tryLock() bool {
	deadline := time.Now().Add(time.Duration(reg.conf.SnapshotTimeout))
	for {
		if reg.mu.TryLock() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(snapshotPollInterval)
	}
}

// ListSessions copies every live session. It returns nil when the lock could not be taken in time.
func (reg *Registry) ListSessions() []SessionInfo {
	if !reg.tryLock() {
		reg.logger.Infof("ListSessions: lock timeout")
		return nil
	}
	defer reg.mu.Unlock()

	now := reg.now()
	infos := make([]SessionInfo, 0, len(reg.sessions))
	for _, s := range reg.sessions {
		info := SessionInfo{
			ID:               s.id,
			Name:             s.name,
			Ready:            s.ready,
			Type:             -1,
			Synchronized:     s.synchronized,
			Version:          s.version,
			ConnectedSeconds: int64(now.Sub(s.connected) / time.Second),
		}
		if r := s.room; r != nil {
			t, _ := r.slotOf(s)
			info.RoomID = r.id
			info.Type = int32(t)
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// ListRooms copies every live room. It returns nil when the lock could not be taken in time.
func (reg *Registry) ListRooms() []RoomInfo {
	if !reg.tryLock() {
		reg.logger.Infof("ListRooms: lock timeout")
		return nil
	}
	defer reg.mu.Unlock()

	now := reg.now()
	rooms := reg.sortedRooms()
	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, RoomInfo{
			ID:            r.id,
			Name:          r.name,
			Private:       r.private,
			Paused:        r.paused,
			Started:       r.started,
			OccupantCount: r.count(),
			ElapsedMillis: r.elapsed(now).Milliseconds(),
		})
	}
	return infos
}

func (reg *Registry) sortedRooms() []*Room {
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].id < rooms[j].id })
	return rooms
}
