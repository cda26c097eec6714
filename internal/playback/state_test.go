package playback

import (
	"context"
	"testing"
	"time"

	"github.com/genricoloni/zonesync/internal/clock"
	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/store"
	"go.uber.org/zap"
)

func TestState_HydrateNeverRestoresCurrentTrack(t *testing.T) {
	s := NewState(zap.NewNop())
	s.Update(func(st *domain.PlaybackState) { st.CurrentTrack = trackA() })

	s.Hydrate(domain.Snapshot{
		Queue:           []domain.Track{*trackB()},
		Volume:          1.7,
		Shuffle:         true,
		Repeat:          domain.RepeatOne,
		PositionSeconds: 33,
	})

	st := s.Snapshot()
	if st.CurrentTrack == nil || st.CurrentTrack.ID != "a" {
		t.Errorf("hydrate touched the current track: %v", st.CurrentTrack)
	}
	if len(st.Queue) != 1 || st.Volume != 1 || !st.Shuffle || st.Repeat != domain.RepeatOne || st.PositionSeconds != 33 {
		t.Errorf("resume fields not restored: %+v", st)
	}

	snap := s.Persistable()
	if len(snap.Queue) != 1 || snap.PositionSeconds != 33 {
		t.Errorf("persistable = %+v", snap)
	}
}

func TestState_SnapshotIsDeepCopy(t *testing.T) {
	s := NewState(zap.NewNop())
	s.Update(func(st *domain.PlaybackState) {
		st.CurrentTrack = trackA()
		st.Queue = []domain.Track{*trackA()}
	})

	snap := s.Snapshot()
	snap.CurrentTrack.Title = "changed"
	snap.Queue[0].Title = "changed"

	again := s.Snapshot()
	if again.CurrentTrack.Title != "Alpha" || again.Queue[0].Title != "Alpha" {
		t.Error("snapshot aliases live state")
	}
}

func TestState_Changes(t *testing.T) {
	s := NewState(zap.NewNop())
	ch, unsubscribe := s.Changes()
	defer unsubscribe()

	s.Update(func(st *domain.PlaybackState) { st.IsPlaying = true })
	s.Update(func(st *domain.PlaybackState) { st.IsPlaying = false })

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change signal")
	}
	select {
	case <-ch:
		t.Error("signals should coalesce")
	default:
	}
}

func TestHistory(t *testing.T) {
	cfg := config.Default()
	cfg.Sync.HistorySize = 2
	st := store.NewMemoryStore()
	clk := clock.NewFake(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	h := NewHistory(zap.NewNop(), cfg, st, clk)

	if !h.Record(*trackA()) {
		t.Error("first record should be added")
	}
	if h.Record(*trackA()) {
		t.Error("repeat of newest entry must be ignored")
	}
	if h.Record(domain.Track{ID: "r", IsRadio: true}) {
		t.Error("radio must be ignored")
	}
	h.Record(*trackB())
	h.Record(domain.Track{ID: "c", Title: "Charlie"})

	entries := h.Entries()
	if len(entries) != 2 || entries[0].Track.ID != "c" || entries[1].Track.ID != "b" {
		t.Fatalf("entries = %+v, want [c b]", entries)
	}

	ctx := context.Background()
	if err := h.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := NewHistory(zap.NewNop(), cfg, st, clk)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := restored.Entries(); len(got) != 2 || got[0].Track.ID != "c" {
		t.Errorf("restored = %+v", got)
	}
}
