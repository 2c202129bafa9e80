package binary

import (
	"fmt"
)

// MsgType : tag written before every message on the stream.
//
// binary format:
// | 32bit-be MsgType | payload ... |
//
type MsgType int32

const (
	MsgTypeUnknown MsgType = iota

	// Sent by the client only.

	// MsgTypeCreateRoom : 部屋を作成する
	// payload:
	//  - string: room name
	MsgTypeCreateRoom
	// MsgTypeJoinRoom : 部屋に入室する
	// payload:
	//  - int: room id
	MsgTypeJoinRoom
	// MsgTypeLeaveRoom : 部屋から退室する
	// payload: empty
	MsgTypeLeaveRoom
	// MsgTypeChangeType : 席を移動する
	// payload:
	//  - int: PlayerType
	MsgTypeChangeType
	// MsgTypeRemovePlayer : 部屋のオーナーが他のプレイヤーを退室させる
	// payload:
	//  - int: target player id
	MsgTypeRemovePlayer

	// Sent by both the client and the server.

	// MsgTypeDisconnection : 切断
	// payload: empty
	MsgTypeDisconnection
	// MsgTypeGameData : 対局状態のスナップショット
	// payload:
	//  - int: size
	//  - bytes[size]: opaque game data
	MsgTypeGameData
	// MsgTypeMessage : チャット
	// payload (client): string text
	// payload (server): int sender id, string text
	MsgTypeMessage
	// MsgTypeMove : 指し手
	// payload:
	//  - int: opaque move data
	MsgTypeMove
	// MsgTypeName : プレイヤー名
	// payload (client): string name
	// payload (server): int player id, string name
	MsgTypeName
	// MsgTypeNetworkRequest : payload: int NetworkRequest
	MsgTypeNetworkRequest
	// MsgTypeNotification : payload: int Notification
	MsgTypeNotification
	// MsgTypePlayerRequest : payload: int PlayerRequest
	MsgTypePlayerRequest
	// MsgTypePlayerTime : 残り時間
	// payload (client): int millis
	// payload (server): int player id, int millis
	MsgTypePlayerTime
	// MsgTypePromoteTo : payload: int piece type
	MsgTypePromoteTo

	// Sent by the server only.

	// MsgTypeGameDataUpdate is reserved; the server never emits it.
	MsgTypeGameDataUpdate
	// MsgTypeHostChanged : payload: int new owner id
	MsgTypeHostChanged
	// MsgTypePlayerId : payload: int assigned id
	MsgTypePlayerId
	// MsgTypePlayerType : payload: int player id, int PlayerType
	MsgTypePlayerType
	// MsgTypePlayerJoined : payload: int player id, string name
	MsgTypePlayerJoined
	// MsgTypePlayerLeft : payload: int player id
	MsgTypePlayerLeft
	// MsgTypePlayerReady : payload: int player id
	MsgTypePlayerReady
	// MsgTypeRoomInfo : payload: int room id, string name, int private(0/1), int player count
	MsgTypeRoomInfo
)

var msgTypeNames = [...]string{
	"Unknown",
	"CreateRoom", "JoinRoom", "LeaveRoom", "ChangeType", "RemovePlayer",
	"Disconnection", "GameData", "Message", "Move", "Name", "NetworkRequest", "Notification",
	"PlayerRequest", "PlayerTime", "PromoteTo",
	"GameDataUpdate", "HostChanged", "PlayerId", "PlayerType", "PlayerJoined", "PlayerLeft",
	"PlayerReady", "RoomInfo",
}

func (t MsgType) String() string {
	if t >= 0 && int(t) < len(msgTypeNames) {
		return msgTypeNames[t]
	}
	return fmt.Sprintf("MsgType(%d)", int32(t))
}

// Notification kinds carried by MsgTypeNotification.
type Notification int32

const (
	// Sent by the client only.
	NotifyIAmReady Notification = iota
	NotifyIResign
	NotifyGameEnded

	// Sent by the client and the server.
	NotifyGamePaused
	NotifyGameResumed
	NotifyDrawRequestAccepted
	NotifyDrawRequestRejected
	NotifyTakebackRequestAccepted
	NotifyTakebackRequestRejected

	// Sent by the server only.
	NotifyGameStarted
	NotifyGameDrawn
	NotifyJoinedRoom
	NotifyLeftRoom
	NotifyResigned
	NotifyTookBackMove
)

var notificationNames = [...]string{
	"IAmReady", "IResign", "GameEnded",
	"GamePaused", "GameResumed", "DrawRequestAccepted", "DrawRequestRejected",
	"TakebackRequestAccepted", "TakebackRequestRejected",
	"GameStarted", "GameDrawn", "JoinedRoom", "LeftRoom", "Resigned", "TookBackMove",
}

func (n Notification) String() string {
	if n >= 0 && int(n) < len(notificationNames) {
		return notificationNames[n]
	}
	return fmt.Sprintf("Notification(%d)", int32(n))
}

// NetworkRequest kinds carried by MsgTypeNetworkRequest.
type NetworkRequest int32

const (
	RequestGameData NetworkRequest = iota
	RequestRoomList
)

// PlayerRequest kinds carried by MsgTypePlayerRequest.
type PlayerRequest int32

const (
	DrawRequest PlayerRequest = iota
	TakebackRequest
)

// PlayerType is the slot a player occupies in a room.
type PlayerType int32

const (
	Observer PlayerType = iota
	Black
	White
)

func (t PlayerType) String() string {
	switch t {
	case Observer:
		return "Observer"
	case Black:
		return "Black"
	case White:
		return "White"
	}
	return fmt.Sprintf("PlayerType(%d)", int32(t))
}

// Valid reports whether t names one of the three slots.
func (t PlayerType) Valid() bool {
	return t == Observer || t == Black || t == White
}
