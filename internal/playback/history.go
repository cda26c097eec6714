package playback

import (
	"context"
	"sync"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/store"
	"go.uber.org/zap"
)

// History is the bounded list of recently started tracks, newest first
type History struct {
	logger  *zap.Logger
	store   domain.Store
	clock   domain.Clock
	limit   int
	mu      sync.Mutex
	entries []domain.HistoryEntry
	dirty   bool
}

// NewHistory creates an empty history
func NewHistory(logger *zap.Logger, cfg *config.AppConfig, st domain.Store, clk domain.Clock) *History {
	limit := cfg.Sync.HistorySize
	if limit <= 0 {
		limit = 100
	}
	return &History{
		logger: logger.Named("history"),
		store:  st,
		clock:  clk,
		limit:  limit,
	}
}

// Record adds a track unless it is a radio stream or the same as the newest entry.
// It reports whether an entry was added.
func (h *History) Record(t domain.Track) bool {
	if t.IsRadio {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) > 0 && h.entries[0].Track.SameIdentity(t) {
		return false
	}

	entry := domain.HistoryEntry{Track: t, PlayedAt: h.clock.Now()}
	h.entries = append([]domain.HistoryEntry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	h.dirty = true

	h.logger.Debug("Track added to history",
		zap.String("title", t.Title),
		zap.String("artist", t.Artist))
	return true
}

// Entries returns a copy of the history, newest first
func (h *History) Entries() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.HistoryEntry{}, h.entries...)
}

// Load reads the persisted history
func (h *History) Load(ctx context.Context) error {
	var entries []domain.HistoryEntry
	found, err := store.GetJSON(ctx, h.store, store.KeyHistory, &entries)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	h.entries = entries
	h.dirty = false
	return nil
}

// Save persists the history if it changed since the last save
func (h *History) Save(ctx context.Context) error {
	h.mu.Lock()
	if !h.dirty {
		h.mu.Unlock()
		return nil
	}
	entries := append([]domain.HistoryEntry{}, h.entries...)
	h.dirty = false
	h.mu.Unlock()

	if err := store.SetJSON(ctx, h.store, store.KeyHistory, entries); err != nil {
		h.mu.Lock()
		h.dirty = true
		h.mu.Unlock()
		return err
	}
	return nil
}
