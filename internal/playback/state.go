package playback

import (
	"sync"

	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/notify"
	"go.uber.org/zap"
)

// State owns the live PlaybackState aggregate.
// Readers only ever get deep copies; writers go through Update.
type State struct {
	mu      sync.RWMutex
	current domain.PlaybackState
	changes *notify.Broadcaster
}

// NewState creates an empty playback state
func NewState(logger *zap.Logger) *State {
	return &State{
		current: domain.PlaybackState{Queue: []domain.Track{}, QueueIndex: -1},
		changes: notify.NewBroadcaster(logger.Named("state")),
	}
}

// Snapshot returns a deep copy of the current state
func (s *State) Snapshot() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update applies fn to the state under the write lock and notifies subscribers.
// fn must not call back into State.
func (s *State) Update(fn func(*domain.PlaybackState)) {
	s.mu.Lock()
	fn(&s.current)
	if s.current.Queue == nil {
		s.current.Queue = []domain.Track{}
	}
	s.mu.Unlock()

	s.changes.Notify()
}

// Hydrate restores the resume fields of a persisted snapshot.
// The current track is never restored.
func (s *State) Hydrate(snap domain.Snapshot) {
	s.Update(func(st *domain.PlaybackState) {
		st.Queue = append([]domain.Track(nil), snap.Queue...)
		st.Volume = clampUnit(snap.Volume)
		st.Shuffle = snap.Shuffle
		st.Repeat = snap.Repeat
		st.PositionSeconds = snap.PositionSeconds
	})
}

// Persistable returns the resume snapshot of the current state
func (s *State) Persistable() domain.Snapshot {
	st := s.Snapshot()
	return domain.Snapshot{
		Queue:           st.Queue,
		Volume:          st.Volume,
		Shuffle:         st.Shuffle,
		Repeat:          st.Repeat,
		PositionSeconds: st.PositionSeconds,
	}
}

// Changes subscribes to state change signals
func (s *State) Changes() (<-chan struct{}, func()) {
	return s.changes.Subscribe()
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
