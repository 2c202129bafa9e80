package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"chessnet/binary"
)

// scenarioCmd : 一局分の流れを確認する
//  1. white が部屋を作成し black, observer が入室する
//  2. black の入室時に white が GameData を送り同期する
//  3. 着席して準備完了, 対局開始
//  4. 指し手・残り時間を交換し, 引き分けを提案して拒否される
//  5. black が投了して対局終了
var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run a game scenario",
	Long:  `Run a game scenario and check the events each player receives`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runScenario(cmd.Context(), fmt.Sprintf("scenario-%d", rootPID())); err != nil {
			return err
		}
		logger.Infof("scenario: ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(ctx context.Context, roomName string) error {
	white, err := newBot(ctx, "white")
	if err != nil {
		return err
	}
	defer white.Close()
	black, err := newBot(ctx, "black")
	if err != nil {
		return err
	}
	defer black.Close()
	observer, err := newBot(ctx, "observer")
	if err != nil {
		return err
	}
	defer observer.Close()

	white.conn.CreateRoom(roomName)
	if err := white.waitNotification(ctx, binary.NotifyJoinedRoom); err != nil {
		return err
	}
	id, err := black.findRoom(ctx, roomName)
	if err != nil {
		return err
	}

	gameData := []byte("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w")
	for _, b := range []*bot{black, observer} {
		b.conn.JoinRoom(id)
		if err := b.waitNotification(ctx, binary.NotifyJoinedRoom); err != nil {
			return err
		}
		if _, err := white.waitType(ctx, binary.MsgTypeNetworkRequest); err != nil {
			return err
		}
		white.conn.GameData(gameData)
		ev, err := b.waitType(ctx, binary.MsgTypeGameData)
		if err != nil {
			return err
		}
		if !bytes.Equal(ev.Data, gameData) {
			return xerrors.Errorf("%v: game data mismatch: %q", b.name, ev.Data)
		}
	}
	if white.room.Host != white.conn.ID {
		return xerrors.Errorf("host = %v, wants %v", white.room.Host, white.conn.ID)
	}

	if err := white.seat(ctx, binary.White); err != nil {
		return err
	}
	if err := black.seat(ctx, binary.Black); err != nil {
		return err
	}
	white.conn.Notify(binary.NotifyIAmReady)
	black.conn.Notify(binary.NotifyIAmReady)
	for _, b := range []*bot{white, black, observer} {
		if err := b.waitNotification(ctx, binary.NotifyGameStarted); err != nil {
			return err
		}
	}

	white.conn.Move(0x0c1c)
	white.conn.PlayerTime(299000)
	for _, b := range []*bot{black, observer} {
		ev, err := b.waitType(ctx, binary.MsgTypeMove)
		if err != nil {
			return err
		}
		if ev.Value != 0x0c1c {
			return xerrors.Errorf("%v: move = %x", b.name, ev.Value)
		}
		if _, err := b.waitType(ctx, binary.MsgTypePlayerTime); err != nil {
			return err
		}
	}

	black.conn.PlayerRequest(binary.DrawRequest)
	if _, err := white.waitType(ctx, binary.MsgTypePlayerRequest); err != nil {
		return err
	}
	white.conn.Notify(binary.NotifyDrawRequestRejected)
	if err := black.waitNotification(ctx, binary.NotifyDrawRequestRejected); err != nil {
		return err
	}

	black.conn.Notify(binary.NotifyIResign)
	for _, b := range []*bot{white, black, observer} {
		if err := b.waitNotification(ctx, binary.NotifyResigned); err != nil {
			return err
		}
		if b.room.Started {
			return xerrors.Errorf("%v: room is still started", b.name)
		}
	}
	return nil
}
