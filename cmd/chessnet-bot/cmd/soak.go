package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"chessnet/binary"
)

var (
	soakRoomCount   int
	soakObservers   int
	soakMinLifeTime time.Duration
	soakMaxLifeTime time.Duration
)

// soakCmd runs soak test
//
// 耐久性テスト
//  1. white が部屋を作成し, black と observer が入室する
//  2. 対局開始後, 1秒毎に交互に指し手と残り時間を送る
//  3. 指定範囲のランダムな時間が経過したら white が投了し全員退室する
//  4. 1~3を指定並列数で動かし続ける
var soakCmd = &cobra.Command{
	Use:   "soak",
	Short: "Run soak test",
	Long:  `soak test (耐久性テスト): 指定した範囲の寿命の部屋を、指定数並列に動かし続ける`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSoak(cmd.Context(), soakRoomCount, soakMinLifeTime, soakMaxLifeTime)
	},
}

func init() {
	rootCmd.AddCommand(soakCmd)

	soakCmd.Flags().IntVarP(&soakRoomCount, "room-count", "c", 10, "Parallel room count")
	soakCmd.Flags().IntVarP(&soakObservers, "observers", "o", 2, "Observers per room")
	soakCmd.Flags().DurationVarP(&soakMinLifeTime, "min-life-time", "m", time.Minute, "Minimum life time")
	soakCmd.Flags().DurationVarP(&soakMaxLifeTime, "max-life-time", "M", 5*time.Minute, "Maximum life time")
}

func rootPID() int {
	return os.Getpid()
}

// runSoak runs soak test
func runSoak(ctx context.Context, roomCount int, minLifeTime, maxLifeTime time.Duration) error {
	if roomCount < 1 {
		return fmt.Errorf("room count must be greater than 0")
	}
	if minLifeTime > maxLifeTime {
		return fmt.Errorf("min life time must be less than max life time")
	}
	lifetimeRange := int64(maxLifeTime - minLifeTime)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	go func() {
		s := make(chan os.Signal, 1)
		signal.Notify(s, syscall.SIGINT)
		select {
		case sig := <-s:
			logger.Infof("signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	ech := make(chan error, roomCount)
	counter := make(chan struct{}, roomCount)

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-ech:
			cancel()
			return err
		case counter <- struct{}{}:
		}

		wg.Add(1)
		go func(n int) {
			lifetime := minLifeTime
			if lifetimeRange != 0 {
				lifetime += time.Duration(rand.Int63n(lifetimeRange))
			}
			err := runSoakRoom(ctx, n, lifetime)
			if err != nil {
				ech <- err
			}
			<-counter
			wg.Done()
		}(n)

		time.Sleep(time.Second)
	}
}

// runSoakRoom runs a room
func runSoakRoom(ctx context.Context, n int, lifetime time.Duration) error {
	name := fmt.Sprintf("soak-%d-%d", rootPID(), n)
	logger.Infof("%v: start lifetime=%v", name, lifetime)

	white, err := newBot(ctx, name+"-white")
	if err != nil {
		return err
	}
	defer white.Close()
	black, err := newBot(ctx, name+"-black")
	if err != nil {
		return err
	}
	defer black.Close()

	white.conn.CreateRoom(name)
	if err := white.waitNotification(ctx, binary.NotifyJoinedRoom); err != nil {
		return err
	}
	id, err := black.findRoom(ctx, name)
	if err != nil {
		return err
	}

	bots := []*bot{white, black}
	for i := 0; i < soakObservers; i++ {
		o, err := newBot(ctx, fmt.Sprintf("%v-observer%d", name, i))
		if err != nil {
			return err
		}
		defer o.Close()
		bots = append(bots, o)
	}
	for _, b := range bots[1:] {
		b.conn.JoinRoom(id)
		if err := b.waitNotification(ctx, binary.NotifyJoinedRoom); err != nil {
			return err
		}
	}

	if err := white.seat(ctx, binary.White); err != nil {
		return err
	}
	if err := black.seat(ctx, binary.Black); err != nil {
		return err
	}
	white.conn.Notify(binary.NotifyIAmReady)
	black.conn.Notify(binary.NotifyIAmReady)
	for _, b := range bots {
		if err := b.waitNotification(ctx, binary.NotifyGameStarted); err != nil {
			return err
		}
	}

	deadline := time.After(lifetime)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	remain := int32(lifetime / time.Millisecond)
	for turn := 0; ; turn++ {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			white.conn.Notify(binary.NotifyIResign)
			for _, b := range bots {
				if err := b.waitNotification(ctx, binary.NotifyResigned); err != nil {
					return err
				}
			}
			logger.Infof("%v: finished after %v moves", name, turn)
			return nil
		case <-ticker.C:
		}

		mover, other := white, black
		if turn%2 == 1 {
			mover, other = black, white
		}
		move := rand.Int31n(1 << 12)
		remain -= 1000
		mover.conn.Move(move)
		mover.conn.PlayerTime(remain)
		ev, err := other.waitType(ctx, binary.MsgTypeMove)
		if err != nil {
			return err
		}
		if ev.Value != move {
			return xerrors.Errorf("%v: move = %v, wants %v", other.name, ev.Value, move)
		}
		if _, err := other.waitType(ctx, binary.MsgTypePlayerTime); err != nil {
			return err
		}
	}
}
