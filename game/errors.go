package game

import (
	"golang.org/x/xerrors"
)

var (
	// ErrProtocolMismatch : handshakeの識別子が一致しない
	ErrProtocolMismatch = xerrors.New("protocol id mismatch")
	// ErrUnsupportedVersion : クライアントのバージョンが古い
	ErrUnsupportedVersion = xerrors.New("unsupported client version")
	// ErrDisconnection : クライアントからの切断通知
	ErrDisconnection = xerrors.New("disconnection requested")
	// ErrUnknownMsgType : 解釈できないメッセージ
	ErrUnknownMsgType = xerrors.New("unknown message type")
	// ErrNoFreeID : 生存中のIDで埋まっている
	ErrNoFreeID = xerrors.New("no free id")
	// ErrNoOwner : 作成者のいない部屋は作れない
	ErrNoOwner = xerrors.New("room owner is nil")
)
