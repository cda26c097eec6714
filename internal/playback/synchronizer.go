package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase is the synchronizer state of the active session
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSyncing
	PhaseErrorBackoff
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSyncing:
		return "syncing"
	case PhaseErrorBackoff:
		return "error-backoff"
	default:
		return "unknown"
	}
}

// VolumeFilter decides whether a polled volume may overwrite the local one
type VolumeFilter interface {
	AcceptPolled(percent int) bool
}

// ZoneVolumeSink receives polled player volumes for the zone list
type ZoneVolumeSink interface {
	SetPlayerVolume(playerID string, percent int)
}

// session is one polling lifecycle bound to a single player
type session struct {
	id       uuid.UUID
	playerID string
	ctx      context.Context
	cancel   context.CancelFunc
	inFlight atomic.Bool

	// guarded by Synchronizer.mu
	phase          Phase
	consecutive    int
	interval       time.Duration
	failures       []time.Time
	suspendedUntil time.Time
}

// Synchronizer polls the active player and reconciles its status into State
type Synchronizer struct {
	logger  *zap.Logger
	cfg     config.SyncConfig
	gateway domain.Gateway
	state   *State
	history *History
	volume  VolumeFilter
	zones   ZoneVolumeSink
	clock   domain.Clock

	mu       sync.Mutex
	current  *session
	stations stationIndex
	wg       sync.WaitGroup
}

// NewSynchronizer creates an idle synchronizer
func NewSynchronizer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gateway domain.Gateway,
	state *State,
	history *History,
	volume VolumeFilter,
	zones ZoneVolumeSink,
	clk domain.Clock,
) *Synchronizer {
	return &Synchronizer{
		logger:  logger.Named("sync"),
		cfg:     cfg.Sync,
		gateway: gateway,
		state:   state,
		history: history,
		volume:  volume,
		zones:   zones,
		clock:   clk,
	}
}

// Activate starts a polling session for playerID, tearing down any previous one.
// Activating the already active player only schedules a near-immediate sync.
func (s *Synchronizer) Activate(playerID string) {
	s.mu.Lock()
	if s.current != nil && s.current.playerID == playerID {
		s.mu.Unlock()
		s.ScheduleSync(s.cfg.InitialDelay)
		return
	}
	s.teardownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:       uuid.New(),
		playerID: playerID,
		ctx:      ctx,
		cancel:   cancel,
		interval: s.cfg.BaseInterval,
	}
	s.current = sess
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Sync session started",
		zap.String("player", playerID),
		zap.String("session", sess.id.String()))

	go s.run(sess)
}

// Deactivate stops the current session, if any
func (s *Synchronizer) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// Close stops the current session and waits for its loop to exit
func (s *Synchronizer) Close() {
	s.Deactivate()
	s.wg.Wait()
}

func (s *Synchronizer) teardownLocked() {
	if s.current == nil {
		return
	}
	s.logger.Debug("Sync session stopped",
		zap.String("player", s.current.playerID),
		zap.String("session", s.current.id.String()))
	s.current.cancel()
	s.current = nil
}

// ActivePlayer returns the player of the current session
func (s *Synchronizer) ActivePlayer() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.playerID, true
}

// Phase reports the state of the current session
func (s *Synchronizer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return PhaseIdle
	}
	return s.current.phase
}

// SetStations replaces the favourite stations used for radio detection
func (s *Synchronizer) SetStations(stations []domain.RadioStation) {
	idx := newStationIndex(stations)
	s.mu.Lock()
	s.stations = idx
	s.mu.Unlock()
	s.logger.Debug("Radio stations updated", zap.Int("count", len(idx)))
}

// SyncNow runs one out-of-band sync of the current session.
// It reports false when there is no session, a sync is already running or the result was discarded.
func (s *Synchronizer) SyncNow(ctx context.Context) bool {
	sess := s.currentSession()
	if sess == nil {
		return false
	}
	return s.syncSession(ctx, sess)
}

// ScheduleSync forces a sync of the current session after delay.
// The timer is bound to the session; a later player switch turns it into a no-op.
func (s *Synchronizer) ScheduleSync(delay time.Duration) {
	sess := s.currentSession()
	if sess == nil {
		return
	}
	time.AfterFunc(delay, func() {
		if sess.ctx.Err() != nil {
			return
		}
		s.syncSession(sess.ctx, sess)
	})
}

func (s *Synchronizer) currentSession() *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Synchronizer) run(sess *session) {
	defer s.wg.Done()

	timer := time.NewTimer(s.cfg.InitialDelay)
	defer timer.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-timer.C:
		}

		s.syncSession(sess.ctx, sess)
		timer.Reset(s.nextDelay(sess))
	}
}

// nextDelay is the current poll interval, stretched to the end of a suspension
func (s *Synchronizer) nextDelay(sess *session) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := sess.interval
	if until := sess.suspendedUntil.Sub(s.clock.Now()); until > d {
		d = until
	}
	return d
}

func (s *Synchronizer) syncSession(ctx context.Context, sess *session) bool {
	if !sess.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("Sync already in flight, skipping", zap.String("player", sess.playerID))
		return false
	}
	defer sess.inFlight.Store(false)

	if !s.begin(sess) {
		return false
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	status, err := s.gateway.Status(reqCtx, sess.playerID)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != sess {
		s.logger.Debug("Discarding result of stale session",
			zap.String("player", sess.playerID),
			zap.String("session", sess.id.String()))
		return false
	}

	if err != nil {
		s.recordFailureLocked(sess, err)
		return false
	}

	s.recordSuccessLocked(sess)
	s.applyLocked(sess.playerID, status)
	return true
}

// begin marks the session as syncing unless attempts are suspended
func (s *Synchronizer) begin(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != sess {
		return false
	}
	if now := s.clock.Now(); now.Before(sess.suspendedUntil) {
		s.logger.Debug("Sync suspended after repeated failures",
			zap.String("player", sess.playerID),
			zap.Duration("remaining", sess.suspendedUntil.Sub(now)))
		return false
	}
	sess.phase = PhaseSyncing
	return true
}

func (s *Synchronizer) recordSuccessLocked(sess *session) {
	if sess.consecutive > 0 {
		s.logger.Info("Player reachable again",
			zap.String("player", sess.playerID),
			zap.Int("failedAttempts", sess.consecutive))
	}
	sess.phase = PhaseIdle
	sess.consecutive = 0
	sess.interval = s.cfg.BaseInterval
	sess.failures = sess.failures[:0]
	sess.suspendedUntil = time.Time{}
}

func (s *Synchronizer) recordFailureLocked(sess *session, err error) {
	now := s.clock.Now()
	sess.phase = PhaseErrorBackoff
	sess.consecutive++

	recent := sess.failures[:0]
	for _, t := range sess.failures {
		if now.Sub(t) < s.cfg.FailureWindow {
			recent = append(recent, t)
		}
	}
	sess.failures = append(recent, now)

	if s.cfg.BackoffAfter > 0 && sess.consecutive >= s.cfg.BackoffAfter {
		sess.interval *= 2
		if sess.interval > s.cfg.MaxInterval {
			sess.interval = s.cfg.MaxInterval
		}
	}

	fields := []zap.Field{
		zap.String("player", sess.playerID),
		zap.Int("consecutive", sess.consecutive),
		zap.Duration("interval", sess.interval),
		zap.Error(err),
	}
	if sess.consecutive == 1 || (s.cfg.FailureLimit > 0 && sess.consecutive%s.cfg.FailureLimit == 0) {
		s.logger.Warn("Status poll failed", fields...)
	} else {
		s.logger.Debug("Status poll failed", fields...)
	}

	if s.cfg.FailureLimit > 0 && len(sess.failures) >= s.cfg.FailureLimit {
		sess.suspendedUntil = sess.failures[0].Add(s.cfg.FailureWindow)
		sess.failures = sess.failures[:0]
		s.logger.Warn("Too many poll failures, suspending sync",
			zap.String("player", sess.playerID),
			zap.Time("until", sess.suspendedUntil))
	}
}

// applyLocked reconciles a successful poll into the playback state
func (s *Synchronizer) applyLocked(playerID string, status *domain.Status) {
	var current *domain.Track
	if status.CurrentTrack != nil {
		t := s.stations.label(*status.CurrentTrack)
		current = &t
	}

	queue := make([]domain.Track, len(status.Playlist))
	for i, t := range status.Playlist {
		queue[i] = s.stations.label(t)
	}

	acceptVolume := s.volume == nil || s.volume.AcceptPolled(status.VolumePercent)

	var started *domain.Track
	s.state.Update(func(st *domain.PlaybackState) {
		st.IsPlaying = status.IsPlaying
		st.PositionSeconds = status.PositionSeconds
		st.Shuffle = status.Shuffle
		st.Repeat = status.Repeat

		switch {
		case current == nil:
			st.CurrentTrack = nil
		case st.CurrentTrack == nil || !st.CurrentTrack.SameIdentity(*current):
			st.CurrentTrack = current
			started = current
		default:
			// Same item; refresh metadata without a track change
			st.CurrentTrack = current
		}

		st.Queue = queue
		st.QueueIndex = -1
		if current != nil {
			st.QueueIndex = status.PlaylistIndex
		}
		if acceptVolume {
			st.Volume = float64(status.VolumePercent) / 100
		}
	})

	if acceptVolume && s.zones != nil {
		s.zones.SetPlayerVolume(playerID, status.VolumePercent)
	}

	if started != nil {
		s.logger.Info("Track changed",
			zap.String("player", playerID),
			zap.String("title", started.Title),
			zap.String("artist", started.Artist),
			zap.Bool("radio", started.IsRadio))
		if s.history != nil {
			s.history.Record(*started)
		}
	}
}
