package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/xerrors"
)

// RoomInfo : 管理APIの部屋情報
type RoomInfo struct {
	ID            int32  `msgpack:"id"`
	Name          string `msgpack:"name"`
	Private       bool   `msgpack:"private"`
	Paused        bool   `msgpack:"paused"`
	Started       bool   `msgpack:"started"`
	OccupantCount int    `msgpack:"occupant_count"`
	ElapsedMillis int64  `msgpack:"elapsed_millis"`
}

// PlayerInfo : 管理APIのプレイヤー情報
type PlayerInfo struct {
	ID               int32  `msgpack:"id"`
	Name             string `msgpack:"name"`
	Ready            bool   `msgpack:"ready"`
	RoomID           int32  `msgpack:"room_id"`
	Type             int32  `msgpack:"type"` // -1: not in a room
	Synchronized     bool   `msgpack:"synchronized"`
	Version          int32  `msgpack:"version"`
	ConnectedSeconds int64  `msgpack:"connected_seconds"`
}

var (
	// AdminTransport : 管理APIへのリクエストに使う http.Client.Transport
	AdminTransport http.RoundTripper

	// AdminTimeout : 管理APIへのリクエストのタイムアウト時間
	AdminTimeout time.Duration = time.Second * 5
)

// Rooms fetches the room snapshot from the admin API. Private rooms are included when all is true.
func Rooms(ctx context.Context, baseURL string, all bool) ([]RoomInfo, error) {
	q := url.Values{}
	if all {
		q.Set("all", "1")
	}
	var rooms []RoomInfo
	if err := adminRequest(ctx, baseURL, "/api/rooms", q, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Players fetches the session snapshot from the admin API.
func Players(ctx context.Context, baseURL string) ([]PlayerInfo, error) {
	var players []PlayerInfo
	if err := adminRequest(ctx, baseURL, "/api/players", nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func adminRequest(ctx context.Context, baseURL, path string, q url.Values, res interface{}) error {
	u := baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return xerrors.Errorf("new request: %w", err)
	}
	req.Header.Add("Accept", "application/x-msgpack")

	client := &http.Client{
		Transport: AdminTransport,
		Timeout:   AdminTimeout,
	}
	r, err := client.Do(req)
	if err != nil {
		return xerrors.Errorf("do request: %w", err)
	}
	defer r.Body.Close()
	if r.StatusCode != 200 {
		body, _ := io.ReadAll(r.Body)
		return xerrors.Errorf("do request: %v: %v", r.Status, string(body))
	}

	if err := msgpack.NewDecoder(r.Body).Decode(res); err != nil {
		return xerrors.Errorf("decode body: %w", err)
	}
	return nil
}
