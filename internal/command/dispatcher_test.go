package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/genricoloni/zonesync/internal/clock"
	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/domain/mocks"
	"github.com/genricoloni/zonesync/internal/playback"
	"github.com/genricoloni/zonesync/internal/store"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakePlayers struct {
	active   string
	disabled map[string]bool
}

func (f *fakePlayers) Active() (domain.Player, bool) {
	if f.active == "" {
		return domain.Player{}, false
	}
	return domain.Player{ID: f.active}, true
}

func (f *fakePlayers) IsDisabled(id string) bool { return f.disabled[id] }

type recordingSyncer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSyncer) ScheduleSync(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
}

func (r *recordingSyncer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delays)
}

var (
	trackA = domain.Track{ID: "101", Title: "Alpha", Artist: "One", DurationSeconds: 200}
	trackB = domain.Track{ID: "102", Title: "Bravo", Artist: "Two", DurationSeconds: 180}
	trackC = domain.Track{ID: "103", Title: "Charlie", Artist: "Three", DurationSeconds: 240}
)

type dispatcherFixture struct {
	d       *Dispatcher
	gateway *mocks.MockGateway
	players *fakePlayers
	state   *playback.State
	syncer  *recordingSyncer
	clock   *clock.Fake
}

func newDispatcher(t *testing.T, mutate func(*config.AppConfig)) *dispatcherFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	f := &dispatcherFixture{
		gateway: mocks.NewMockGateway(ctrl),
		players: &fakePlayers{active: "p1", disabled: map[string]bool{}},
		state:   playback.NewState(zap.NewNop()),
		syncer:  &recordingSyncer{},
		clock:   clock.NewFake(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)),
	}
	f.d = New(zap.NewNop(), cfg, f.gateway, f.players, f.state, f.syncer, f.clock)
	return f
}

func (f *dispatcherFixture) setQueue(current *domain.Track, queue ...domain.Track) {
	f.setQueueAt(current, -1, queue...)
}

func (f *dispatcherFixture) setQueueAt(current *domain.Track, index int, queue ...domain.Track) {
	f.state.Update(func(st *domain.PlaybackState) {
		st.CurrentTrack = current
		st.QueueIndex = index
		st.Queue = queue
	})
}

func TestDispatcher_NoActivePlayer(t *testing.T) {
	f := newDispatcher(t, nil)
	f.players.active = ""

	// No gateway expectations: any network call fails the test
	if err := f.d.Play(context.Background()); !errors.Is(err, domain.ErrNoActivePlayer) {
		t.Errorf("Play() err = %v, want ErrNoActivePlayer", err)
	}
	if f.state.Snapshot().IsPlaying {
		t.Error("isPlaying must stay false")
	}
	if f.syncer.count() != 0 {
		t.Error("rejected commands must not schedule a sync")
	}
}

func TestDispatcher_DisabledPlayer(t *testing.T) {
	f := newDispatcher(t, nil)
	f.players.disabled["p1"] = true

	cmds := map[string]func() error{
		"pause":   func() error { return f.d.Pause(context.Background()) },
		"next":    func() error { return f.d.Next(context.Background()) },
		"seek":    func() error { return f.d.Seek(context.Background(), 10) },
		"enqueue": func() error { return f.d.AddToQueue(context.Background(), trackA) },
		"track":   func() error { return f.d.PlayTrack(context.Background(), trackA) },
	}
	for name, cmd := range cmds {
		if err := cmd(); !errors.Is(err, domain.ErrPlayerDisabled) {
			t.Errorf("%s err = %v, want ErrPlayerDisabled", name, err)
		}
	}
}

func TestDispatcher_Transport(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *dispatcherFixture)
		expect func(gw *mocks.MockGatewayMockRecorder)
		run    func(d *Dispatcher) error
		check  func(t *testing.T, st domain.PlaybackState)
	}{
		{
			name:   "play",
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Play(gomock.Any(), "p1").Return(nil) },
			run:    func(d *Dispatcher) error { return d.Play(context.Background()) },
			check: func(t *testing.T, st domain.PlaybackState) {
				if !st.IsPlaying {
					t.Error("play should be optimistic")
				}
			},
		},
		{
			name:   "toggle resumes",
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Resume(gomock.Any(), "p1").Return(nil) },
			run:    func(d *Dispatcher) error { return d.Toggle(context.Background()) },
			check: func(t *testing.T, st domain.PlaybackState) {
				if !st.IsPlaying {
					t.Error("toggle from paused should flip to playing")
				}
			},
		},
		{
			name: "toggle pauses",
			setup: func(f *dispatcherFixture) {
				f.state.Update(func(st *domain.PlaybackState) { st.IsPlaying = true })
			},
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Pause(gomock.Any(), "p1").Return(nil) },
			run:    func(d *Dispatcher) error { return d.Toggle(context.Background()) },
			check: func(t *testing.T, st domain.PlaybackState) {
				if st.IsPlaying {
					t.Error("toggle from playing should flip to paused")
				}
			},
		},
		{
			name: "seek clamps to duration",
			setup: func(f *dispatcherFixture) {
				f.setQueue(&trackA, trackA)
			},
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Seek(gomock.Any(), "p1", 200.0).Return(nil) },
			run:    func(d *Dispatcher) error { return d.Seek(context.Background(), 500) },
			check: func(t *testing.T, st domain.PlaybackState) {
				if st.PositionSeconds != 200 {
					t.Errorf("position = %v, want 200", st.PositionSeconds)
				}
			},
		},
		{
			name:   "shuffle",
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.SetShuffle(gomock.Any(), "p1", true).Return(nil) },
			run:    func(d *Dispatcher) error { return d.SetShuffle(context.Background(), true) },
			check: func(t *testing.T, st domain.PlaybackState) {
				if !st.Shuffle {
					t.Error("shuffle should be optimistic")
				}
			},
		},
		{
			name: "repeat",
			expect: func(gw *mocks.MockGatewayMockRecorder) {
				gw.SetRepeat(gomock.Any(), "p1", domain.RepeatOne).Return(nil)
			},
			run: func(d *Dispatcher) error { return d.SetRepeat(context.Background(), domain.RepeatOne) },
			check: func(t *testing.T, st domain.PlaybackState) {
				if st.Repeat != domain.RepeatOne {
					t.Error("repeat should be optimistic")
				}
			},
		},
		{
			name: "player pref forwarded untouched",
			expect: func(gw *mocks.MockGatewayMockRecorder) {
				gw.SetPref(gomock.Any(), "p1", "transitionType", "1").Return(nil)
			},
			run: func(d *Dispatcher) error {
				return d.SetPlayerPref(context.Background(), "transitionType", "1")
			},
		},
		{
			name: "gateway failure is absorbed",
			expect: func(gw *mocks.MockGatewayMockRecorder) {
				gw.Pause(gomock.Any(), "p1").Return(errors.New("timeout"))
			},
			run: func(d *Dispatcher) error { return d.Pause(context.Background()) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatcher(t, nil)
			if tt.setup != nil {
				tt.setup(f)
			}
			tt.expect(f.gateway.EXPECT())

			if err := tt.run(f.d); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, f.state.Snapshot())
			}
			if f.syncer.count() != 1 || f.syncer.delays[0] != 300*time.Millisecond {
				t.Errorf("post-command sync = %v, want one at 300ms", f.syncer.delays)
			}
		})
	}
}

func TestDispatcher_NextPrevious(t *testing.T) {
	tests := []struct {
		name     string
		current  *domain.Track
		queue    []domain.Track
		index    int
		indexCap bool
		next     bool
		expect   func(gw *mocks.MockGatewayMockRecorder)
	}{
		{
			name: "next by index", current: &trackA, queue: []domain.Track{trackA, trackB}, index: -1, indexCap: true, next: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.PlayIndex(gomock.Any(), "p1", 1).Return(nil) },
		},
		{
			name: "previous by index", current: &trackC, queue: []domain.Track{trackA, trackB, trackC}, index: -1, indexCap: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.PlayIndex(gomock.Any(), "p1", 1).Return(nil) },
		},
		{
			name: "unknown current falls back", current: &trackC, queue: []domain.Track{trackA, trackB}, index: -1, indexCap: true, next: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Next(gomock.Any(), "p1").Return(nil) },
		},
		{
			name: "end of queue falls back", current: &trackB, queue: []domain.Track{trackA, trackB}, index: 1, indexCap: true, next: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Next(gomock.Any(), "p1").Return(nil) },
		},
		{
			name: "no index capability", current: &trackB, queue: []domain.Track{trackA, trackB}, index: 1, indexCap: false,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Previous(gomock.Any(), "p1").Return(nil) },
		},
		{
			name: "repeated track uses reported index", current: &trackA, queue: []domain.Track{trackA, trackB, trackA, trackC}, index: 2, indexCap: true, next: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.PlayIndex(gomock.Any(), "p1", 3).Return(nil) },
		},
		{
			name: "repeated track previous uses reported index", current: &trackA, queue: []domain.Track{trackA, trackB, trackA, trackC}, index: 2, indexCap: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.PlayIndex(gomock.Any(), "p1", 1).Return(nil) },
		},
		{
			name: "repeated track without index falls back", current: &trackA, queue: []domain.Track{trackA, trackB, trackA, trackC}, index: -1, indexCap: true, next: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.Next(gomock.Any(), "p1").Return(nil) },
		},
		{
			name: "stale index ignored", current: &trackB, queue: []domain.Track{trackA, trackB, trackC}, index: 0, indexCap: true, next: true,
			expect: func(gw *mocks.MockGatewayMockRecorder) { gw.PlayIndex(gomock.Any(), "p1", 2).Return(nil) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatcher(t, func(c *config.AppConfig) { c.Capabilities.PlaylistIndex = tt.indexCap })
			f.setQueueAt(tt.current, tt.index, tt.queue...)
			tt.expect(f.gateway.EXPECT())

			var err error
			if tt.next {
				err = f.d.Next(context.Background())
			} else {
				err = f.d.Previous(context.Background())
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cur := f.state.Snapshot().CurrentTrack; cur == nil || cur.ID != tt.current.ID {
				t.Error("current track must only change through a sync")
			}
		})
	}
}

func TestDispatcher_LoadGuard(t *testing.T) {
	f := newDispatcher(t, nil)
	ctx := context.Background()

	f.gateway.EXPECT().PlayTrack(gomock.Any(), "p1", "101").Return(nil).Times(2)
	f.gateway.EXPECT().PlayTrack(gomock.Any(), "p1", "102").Return(nil).Times(1)

	if err := f.d.PlayTrack(ctx, trackA); err != nil {
		t.Fatalf("first PlayTrack: %v", err)
	}
	if err := f.d.PlayTrack(ctx, trackA); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Errorf("double tap err = %v, want ErrDuplicateRequest", err)
	}
	if err := f.d.PlayTrack(ctx, trackB); err != nil {
		t.Errorf("different track within cooldown: %v", err)
	}

	f.clock.Advance(3 * time.Second)
	if err := f.d.PlayTrack(ctx, trackA); err != nil {
		t.Errorf("same track after cooldown: %v", err)
	}
	if !f.state.Snapshot().IsPlaying {
		t.Error("load should be optimistic")
	}
}

func TestDispatcher_FailedLoadCanBeRetried(t *testing.T) {
	f := newDispatcher(t, nil)
	ctx := context.Background()

	gomock.InOrder(
		f.gateway.EXPECT().PlayTrack(gomock.Any(), "p1", "101").Return(errors.New("connection refused")),
		f.gateway.EXPECT().PlayTrack(gomock.Any(), "p1", "101").Return(nil),
	)

	if err := f.d.PlayTrack(ctx, trackA); err != nil {
		t.Fatalf("first PlayTrack: %v", err)
	}
	if err := f.d.PlayTrack(ctx, trackA); err != nil {
		t.Errorf("retry after failure err = %v, want nil", err)
	}
	if err := f.d.PlayTrack(ctx, trackA); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Errorf("double tap after success err = %v, want ErrDuplicateRequest", err)
	}
}

func TestDispatcher_LoadInFlight(t *testing.T) {
	f := newDispatcher(t, nil)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.EXPECT().PlayURL(gomock.Any(), "p1", "http://radio/a").DoAndReturn(
		func(ctx context.Context, id, uri string) error {
			close(entered)
			<-release
			return nil
		})

	done := make(chan error)
	go func() {
		done <- f.d.PlayStation(ctx, domain.RadioStation{Name: "A", URL: "http://radio/a"})
	}()
	<-entered

	err := f.d.PlayPlaylist(ctx, []domain.Track{trackA, trackB}, 0)
	if !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Errorf("load during load err = %v, want ErrDuplicateRequest", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("PlayStation: %v", err)
	}
}

func TestDispatcher_PlayPlaylist(t *testing.T) {
	f := newDispatcher(t, nil)
	ctx := context.Background()

	gomock.InOrder(
		f.gateway.EXPECT().LoadTracks(gomock.Any(), "p1", []string{"101", "102", "103"}).Return(nil),
		f.gateway.EXPECT().PlayIndex(gomock.Any(), "p1", 2).Return(nil),
	)

	if err := f.d.PlayPlaylist(ctx, []domain.Track{trackA, trackB, trackC}, 2); err != nil {
		t.Fatalf("PlayPlaylist: %v", err)
	}
	if err := f.d.PlayPlaylist(ctx, nil, 0); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("empty playlist err = %v", err)
	}
}

func TestDispatcher_QueueEdits(t *testing.T) {
	f := newDispatcher(t, nil)
	ctx := context.Background()

	gw := f.gateway.EXPECT()
	gw.PlaylistAdd(gomock.Any(), "p1", "103").Return(nil)
	gw.PlaylistDelete(gomock.Any(), "p1", 0).Return(nil)
	gw.PlaylistMove(gomock.Any(), "p1", 2, 0).Return(nil)
	gw.PlaylistClear(gomock.Any(), "p1").Return(nil)

	f.setQueue(&trackA, trackA, trackB)
	_ = f.d.AddToQueue(ctx, trackC)
	_ = f.d.RemoveFromQueue(ctx, 0)
	_ = f.d.MoveInQueue(ctx, 2, 0)
	_ = f.d.ClearQueue(ctx)

	// Remote edits wait for the sync to replace the queue
	if n := len(f.state.Snapshot().Queue); n != 2 {
		t.Errorf("local queue length = %d, want untouched 2", n)
	}
	if f.syncer.count() != 4 {
		t.Errorf("syncs scheduled = %d, want 4", f.syncer.count())
	}
}

func TestDispatcher_LocalQueueEdits(t *testing.T) {
	f := newDispatcher(t, nil)
	f.players.active = ""
	ctx := context.Background()

	_ = f.d.AddToQueue(ctx, trackA)
	_ = f.d.AddToQueue(ctx, trackB)
	_ = f.d.AddToQueue(ctx, trackC)
	if err := f.d.MoveInQueue(ctx, 2, 0); err != nil {
		t.Fatalf("MoveInQueue: %v", err)
	}
	if err := f.d.RemoveFromQueue(ctx, 1); err != nil {
		t.Fatalf("RemoveFromQueue: %v", err)
	}

	q := f.state.Snapshot().Queue
	if len(q) != 2 || q[0].ID != "103" || q[1].ID != "102" {
		t.Errorf("queue = %+v, want [103 102]", q)
	}
	if err := f.d.RemoveFromQueue(ctx, 5); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("out of range err = %v", err)
	}

	_ = f.d.ClearQueue(ctx)
	if n := len(f.state.Snapshot().Queue); n != 0 {
		t.Errorf("queue length after clear = %d", n)
	}
	if f.syncer.count() != 0 {
		t.Error("local edits must not schedule syncs")
	}
}

// The next() scenario end to end with the real synchronizer
func TestDispatcher_NextScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	logger := zap.NewNop()
	cfg := config.Default()
	cfg.Sync.InitialDelay = time.Hour
	clk := clock.Real{}

	state := playback.NewState(logger)
	history := playback.NewHistory(logger, cfg, store.NewMemoryStore(), clk)
	syncer := playback.NewSynchronizer(logger, cfg, gw, state, history, nil, nil, clk)
	t.Cleanup(syncer.Close)
	players := &fakePlayers{active: "p1"}
	d := New(logger, cfg, gw, players, state, syncer, clk)

	syncer.Activate("p1")
	gw.EXPECT().Status(gomock.Any(), "p1").Return(&domain.Status{
		IsPlaying: true, CurrentTrack: &trackA, Playlist: []domain.Track{trackA, trackB},
	}, nil)
	if !syncer.SyncNow(context.Background()) {
		t.Fatal("initial sync failed")
	}

	synced := make(chan struct{})
	gw.EXPECT().PlayIndex(gomock.Any(), "p1", 1).Return(nil)
	gw.EXPECT().Status(gomock.Any(), "p1").DoAndReturn(
		func(ctx context.Context, id string) (*domain.Status, error) {
			defer close(synced)
			return &domain.Status{IsPlaying: true, CurrentTrack: &trackB, Playlist: []domain.Track{trackA, trackB}}, nil
		})

	start := time.Now()
	if err := d.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatal("forced sync never ran")
	}
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("sync ran after %v, want the post-command delay", elapsed)
	}

	// The apply follows the status call; wait for the track change and its history entry
	deadline := time.Now().Add(time.Second)
	for {
		cur := state.Snapshot().CurrentTrack
		if cur != nil && cur.ID == trackB.ID && len(history.Entries()) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("current track = %+v, want B", cur)
		}
		time.Sleep(5 * time.Millisecond)
	}

	entries := history.Entries()
	if len(entries) != 2 || entries[0].Track.ID != trackB.ID {
		t.Errorf("history = %+v, want B recorded exactly once", entries)
	}
}
