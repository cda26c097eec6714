package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

// fakeServer records every slim.request and answers with canned results keyed by the first command word
type fakeServer struct {
	mu       sync.Mutex
	calls    [][]string
	players  []string
	results  map[string]map[string]any
	respond  func(cmd []string) map[string]any
	user     string
	password string
}

func (f *fakeServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jsonrpc.js" {
			http.NotFound(w, r)
			return
		}
		if f.user != "" {
			u, p, ok := r.BasicAuth()
			if !ok || u != f.user || p != f.password {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}

		var req struct {
			ID     int64  `json:"id"`
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		if req.Method != "slim.request" || len(req.Params) != 2 {
			t.Errorf("unexpected envelope: %+v", req)
		}

		player, _ := req.Params[0].(string)
		rawCmd, _ := req.Params[1].([]any)
		cmd := make([]string, len(rawCmd))
		for i, a := range rawCmd {
			cmd[i], _ = a.(string)
		}

		f.mu.Lock()
		f.calls = append(f.calls, cmd)
		f.players = append(f.players, player)
		result := f.results[cmd[0]]
		if f.respond != nil {
			result = f.respond(cmd)
		}
		f.mu.Unlock()

		if result == nil {
			result = map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": req.ID, "method": req.Method, "result": result})
	}
}

func (f *fakeServer) lastCall() ([]string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil, ""
	}
	return f.calls[len(f.calls)-1], f.players[len(f.players)-1]
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(zap.NewNop(), srv.URL, config.GatewayConfig{
		Timeout:     2 * time.Second,
		PlayerLimit: 50,
		Username:    f.user,
		Password:    f.password,
	})
}

func TestClient_ListPlayers(t *testing.T) {
	f := &fakeServer{results: map[string]map[string]any{
		"players": {
			"count": 3,
			"players_loop": []any{
				map[string]any{"playerid": "00:04:20:aa", "name": "Kitchen", "modelname": "Squeezebox Touch", "power": 1, "connected": 1, "isplayer": 1},
				map[string]any{"playerid": "00:04:20:bb", "name": "Office", "model": "squeezelite", "power": "0", "connected": 0},
				map[string]any{"playerid": "00:04:20:cc", "name": "Bridge", "isplayer": 0},
			},
		},
	}}
	c := newTestClient(t, f)

	players, err := c.ListPlayers(context.Background())
	if err != nil {
		t.Fatalf("ListPlayers: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("got %d players, want 2 (non-player entries skipped)", len(players))
	}
	want := domain.Player{ID: "00:04:20:aa", Name: "Kitchen", Model: "Squeezebox Touch", Powered: true, Connected: true}
	if players[0] != want {
		t.Errorf("players[0] = %+v, want %+v", players[0], want)
	}
	if players[1].Powered || players[1].Connected || players[1].Model != "squeezelite" {
		t.Errorf("players[1] = %+v", players[1])
	}

	cmd, player := f.lastCall()
	if player != "" || strings.Join(cmd, " ") != "players 0 50" {
		t.Errorf("sent %q to %q", cmd, player)
	}
}

func TestClient_Status(t *testing.T) {
	f := &fakeServer{results: map[string]map[string]any{
		"status": {
			"mode":               "play",
			"time":               "42.5",
			"mixer volume":       -35,
			"playlist shuffle":   "1",
			"playlist repeat":    2,
			"playlist_cur_index": "1",
			"playlist_loop": []any{
				map[string]any{"playlist index": 0, "id": 11, "title": "A", "artist": "X", "coverid": "abc", "duration": 200.5},
				map[string]any{"playlist index": 1, "id": "12", "title": "B", "artist": "Y", "type": "flc", "samplerate": "96000", "samplesize": 24, "bitrate": "2304kbps"},
				map[string]any{"playlist index": 2, "id": -9001, "title": "", "remote_title": "Radio Paradise", "remote": 1, "url": "http://stream.example/rp", "artwork_url": "http://img.example/rp.png"},
			},
		},
	}}
	c := newTestClient(t, f)

	st, err := c.Status(context.Background(), "00:04:20:aa")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	if !st.IsPlaying || st.PositionSeconds != 42.5 {
		t.Errorf("transport = playing %v pos %v", st.IsPlaying, st.PositionSeconds)
	}
	if st.VolumePercent != 35 {
		t.Errorf("VolumePercent = %d, want 35 (muted volume is absolute)", st.VolumePercent)
	}
	if !st.Shuffle || st.Repeat != domain.RepeatAll {
		t.Errorf("shuffle %v repeat %v", st.Shuffle, st.Repeat)
	}
	if len(st.Playlist) != 3 {
		t.Fatalf("playlist length %d, want 3", len(st.Playlist))
	}
	if st.CurrentTrack == nil || st.CurrentTrack.ID != "12" {
		t.Fatalf("CurrentTrack = %+v, want id 12", st.CurrentTrack)
	}
	if st.CurrentTrack.SampleRate != 96000 || st.CurrentTrack.BitDepth != 24 || st.CurrentTrack.Format != "flc" {
		t.Errorf("format fields = %+v", st.CurrentTrack)
	}
	if st.Playlist[0].ArtworkRef != "/music/abc/cover.jpg" || st.Playlist[0].BackendTrackRef != "11" {
		t.Errorf("library track = %+v", st.Playlist[0])
	}
	remote := st.Playlist[2]
	if remote.Title != "Radio Paradise" || remote.BackendTrackRef != "http://stream.example/rp" || remote.SourceTag != "remote" {
		t.Errorf("remote track = %+v", remote)
	}

	cmd, player := f.lastCall()
	if player != "00:04:20:aa" || cmd[0] != "status" || cmd[1] != "0" {
		t.Errorf("sent %q to %q", cmd, player)
	}
}

func longPlaylist(n int) []any {
	loop := make([]any, n)
	for i := range loop {
		loop[i] = map[string]any{"playlist index": i, "id": 1000 + i, "title": fmt.Sprintf("Track %d", i)}
	}
	return loop
}

func TestParseStatus_CurrentOutsideWindow(t *testing.T) {
	st := parseStatus(map[string]any{
		"mode":               "play",
		"playlist_cur_index": "700",
		"playlist_tracks":    900,
		"playlist_loop":      longPlaylist(statusWindow),
	})
	if st.CurrentTrack != nil || st.PlaylistIndex != 700 || len(st.Playlist) != statusWindow {
		t.Errorf("current %v index %d queue %d", st.CurrentTrack, st.PlaylistIndex, len(st.Playlist))
	}
}

func TestClient_StatusLongQueueFetchesCurrentEntry(t *testing.T) {
	f := &fakeServer{}
	f.respond = func(cmd []string) map[string]any {
		if cmd[1] == "0" {
			return map[string]any{
				"mode":               "play",
				"current_title":      "Live title",
				"playlist_cur_index": "700",
				"playlist_tracks":    900,
				"playlist_loop":      longPlaylist(statusWindow),
			}
		}
		return map[string]any{
			"playlist_loop": []any{
				map[string]any{"playlist index": 700, "id": 1700, "title": "Track 700", "artist": "Deep"},
			},
		}
	}
	c := newTestClient(t, f)

	st, err := c.Status(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.CurrentTrack == nil || st.CurrentTrack.ID != "1700" || st.CurrentTrack.Artist != "Deep" {
		t.Fatalf("CurrentTrack = %+v, want id 1700", st.CurrentTrack)
	}
	if st.PlaylistIndex != 700 || len(st.Playlist) != statusWindow {
		t.Errorf("index %d queue %d", st.PlaylistIndex, len(st.Playlist))
	}

	cmd, _ := f.lastCall()
	if strings.Join(cmd[:3], " ") != "status 700 1" {
		t.Errorf("follow-up request = %q", cmd)
	}
}

func TestClient_StatusLongQueueEntryFailure(t *testing.T) {
	f := &fakeServer{respond: func([]string) map[string]any {
		return map[string]any{"playlist_cur_index": 600, "playlist_tracks": 700, "playlist_loop": longPlaylist(10)}
	}}
	handle := f.handler(t)
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		handle(w, r)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(zap.NewNop(), srv.URL, config.GatewayConfig{Timeout: 2 * time.Second, PlayerLimit: 50})

	// A missing current entry must fail the poll rather than report an empty track
	if _, err := c.Status(context.Background(), "p1"); err == nil {
		t.Error("expected an error when the current entry cannot be fetched")
	}
}

func TestClient_StatusEmptyPlaylist(t *testing.T) {
	f := &fakeServer{results: map[string]map[string]any{
		"status": {"mode": "stop", "mixer volume": 20},
	}}
	c := newTestClient(t, f)

	st, err := c.Status(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.CurrentTrack != nil || len(st.Playlist) != 0 || st.PlaylistIndex != -1 {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestClient_Commands(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		want string
	}{
		{"play", func(c *Client) error { return c.Play(context.Background(), "p1") }, "play"},
		{"pause", func(c *Client) error { return c.Pause(context.Background(), "p1") }, "pause 1"},
		{"resume", func(c *Client) error { return c.Resume(context.Background(), "p1") }, "pause 0"},
		{"next", func(c *Client) error { return c.Next(context.Background(), "p1") }, "playlist index +1"},
		{"previous", func(c *Client) error { return c.Previous(context.Background(), "p1") }, "playlist index -1"},
		{"seek", func(c *Client) error { return c.Seek(context.Background(), "p1", 93.25) }, "time 93.2"},
		{"volume clamps", func(c *Client) error { return c.SetVolume(context.Background(), "p1", 140) }, "mixer volume 100"},
		{"index", func(c *Client) error { return c.PlayIndex(context.Background(), "p1", 3) }, "playlist index 3"},
		{"add library", func(c *Client) error { return c.PlaylistAdd(context.Background(), "p1", "123") }, "playlistcontrol cmd:add track_id:123"},
		{"add url", func(c *Client) error { return c.PlaylistAdd(context.Background(), "p1", "http://x/y.mp3") }, "playlist add http://x/y.mp3"},
		{"delete", func(c *Client) error { return c.PlaylistDelete(context.Background(), "p1", 2) }, "playlist delete 2"},
		{"move", func(c *Client) error { return c.PlaylistMove(context.Background(), "p1", 0, 4) }, "playlist move 0 4"},
		{"load", func(c *Client) error { return c.LoadTracks(context.Background(), "p1", []string{"1", "2"}) }, "playlistcontrol cmd:load track_id:1,2"},
		{"play track", func(c *Client) error { return c.PlayTrack(context.Background(), "p1", "77") }, "playlistcontrol cmd:load track_id:77"},
		{"play url", func(c *Client) error { return c.PlayURL(context.Background(), "p1", "http://r/s") }, "playlist play http://r/s"},
		{"shuffle", func(c *Client) error { return c.SetShuffle(context.Background(), "p1", true) }, "playlist shuffle 1"},
		{"repeat one", func(c *Client) error { return c.SetRepeat(context.Background(), "p1", domain.RepeatOne) }, "playlist repeat 1"},
		{"pref", func(c *Client) error { return c.SetPref(context.Background(), "p1", "transitionType", "1") }, "playerpref transitionType 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeServer{}
			c := newTestClient(t, f)
			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cmd, player := f.lastCall()
			if player != "p1" {
				t.Errorf("player = %q, want p1", player)
			}
			if got := strings.Join(cmd, " "); got != tt.want {
				t.Errorf("command = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_LoadMixedRefsFallsBackToClearAndAdd(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)

	if err := c.LoadTracks(context.Background(), "p1", []string{"5", "http://x/y"}); err != nil {
		t.Fatalf("LoadTracks: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var got []string
	for _, cmd := range f.calls {
		got = append(got, strings.Join(cmd, " "))
	}
	want := []string{"playlist clear", "playlistcontrol cmd:add track_id:5", "playlist add http://x/y"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestClient_Favorites(t *testing.T) {
	f := &fakeServer{results: map[string]map[string]any{
		"favorites": {
			"loop_loop": []any{
				map[string]any{"name": "FIP", "url": "http://icecast.radiofrance.fr/fip-hifi.aac", "image": "/imageproxy/fip.png", "isaudio": 1},
				map[string]any{"name": "Folder", "hasitems": 1, "isaudio": 0},
				map[string]any{"name": "Album", "url": "db:album.title=X", "isaudio": 1},
			},
		},
	}}
	c := newTestClient(t, f)

	stations, err := c.Favorites(context.Background())
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(stations) != 1 || stations[0].Name != "FIP" || stations[0].ArtworkURL != "/imageproxy/fip.png" {
		t.Errorf("stations = %+v", stations)
	}
}

func TestClient_Errors(t *testing.T) {
	t.Run("HTTP error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		c := NewClient(zap.NewNop(), srv.URL, config.GatewayConfig{})

		if _, err := c.Status(context.Background(), "p1"); err == nil || !strings.Contains(err.Error(), "unexpected status code: 500") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("RPC error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":1,"error":{"code":-32601,"message":"no such command"}}`))
		}))
		defer srv.Close()
		c := NewClient(zap.NewNop(), srv.URL, config.GatewayConfig{})

		if err := c.Play(context.Background(), "p1"); err == nil || !strings.Contains(err.Error(), "no such command") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("missing player id", func(t *testing.T) {
		c := NewClient(zap.NewNop(), "http://127.0.0.1:1", config.GatewayConfig{})
		if err := c.Play(context.Background(), ""); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := &fakeServer{}
		c := newTestClient(t, f)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.ListPlayers(ctx); err == nil || !strings.Contains(err.Error(), "context canceled") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("basic auth", func(t *testing.T) {
		f := &fakeServer{user: "admin", password: "secret"}
		c := newTestClient(t, f)
		if err := c.Play(context.Background(), "p1"); err != nil {
			t.Errorf("authenticated call failed: %v", err)
		}
	})
}
