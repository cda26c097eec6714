package command

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/playback"
	"go.uber.org/zap"
)

// ErrInvalidIndex is returned for queue positions outside the local queue
var ErrInvalidIndex = errors.New("queue index out of range")

// Players exposes the active selection to the dispatcher
type Players interface {
	Active() (domain.Player, bool)
	IsDisabled(playerID string) bool
}

// Syncer forces a delayed sync after a command
type Syncer interface {
	ScheduleSync(delay time.Duration)
}

// Dispatcher turns user intents into gateway calls on the active player.
// Only local rejections are returned; gateway failures are logged and healed by the next sync.
type Dispatcher struct {
	logger  *zap.Logger
	gateway domain.Gateway
	players Players
	state   *playback.State
	syncer  Syncer
	clock   domain.Clock

	timeout          time.Duration
	postCommandDelay time.Duration
	loadCooldown     time.Duration
	caps             config.Capabilities

	loadMu     sync.Mutex
	loading    bool
	lastLoad   string
	lastLoadAt time.Time
}

// New creates a command dispatcher
func New(
	logger *zap.Logger,
	cfg *config.AppConfig,
	gateway domain.Gateway,
	players Players,
	state *playback.State,
	syncer Syncer,
	clk domain.Clock,
) *Dispatcher {
	return &Dispatcher{
		logger:           logger.Named("command"),
		gateway:          gateway,
		players:          players,
		state:            state,
		syncer:           syncer,
		clock:            clk,
		timeout:          cfg.Gateway.Timeout,
		postCommandDelay: cfg.Sync.PostCommandDelay,
		loadCooldown:     cfg.Sync.LoadCooldown,
		caps:             cfg.Capabilities,
	}
}

// Play starts playback of the current queue
func (d *Dispatcher) Play(ctx context.Context) error {
	id, err := d.guard("play")
	if err != nil {
		return err
	}
	d.state.Update(func(st *domain.PlaybackState) { st.IsPlaying = true })
	d.send(ctx, "play", id, func(ctx context.Context) error {
		return d.gateway.Play(ctx, id)
	})
	return nil
}

// Pause pauses playback
func (d *Dispatcher) Pause(ctx context.Context) error {
	id, err := d.guard("pause")
	if err != nil {
		return err
	}
	d.state.Update(func(st *domain.PlaybackState) { st.IsPlaying = false })
	d.send(ctx, "pause", id, func(ctx context.Context) error {
		return d.gateway.Pause(ctx, id)
	})
	return nil
}

// Toggle pauses a playing player and resumes a paused one
func (d *Dispatcher) Toggle(ctx context.Context) error {
	id, err := d.guard("toggle")
	if err != nil {
		return err
	}

	var wasPlaying bool
	d.state.Update(func(st *domain.PlaybackState) {
		wasPlaying = st.IsPlaying
		st.IsPlaying = !st.IsPlaying
	})
	d.send(ctx, "toggle", id, func(ctx context.Context) error {
		if wasPlaying {
			return d.gateway.Pause(ctx, id)
		}
		return d.gateway.Resume(ctx, id)
	})
	return nil
}

// Next skips to the following queue entry
func (d *Dispatcher) Next(ctx context.Context) error {
	return d.skip(ctx, "next", 1)
}

// Previous goes back to the preceding queue entry
func (d *Dispatcher) Previous(ctx context.Context) error {
	return d.skip(ctx, "previous", -1)
}

// skip resolves the current position in the last known queue and plays the neighbour by index.
// When the position is unknown or ambiguous, or index commands are unsupported, it falls back
// to the relative command; this is best effort and not an error.
func (d *Dispatcher) skip(ctx context.Context, op string, delta int) error {
	id, err := d.guard(op)
	if err != nil {
		return err
	}

	st := d.state.Snapshot()
	target := -1
	if d.caps.PlaylistIndex {
		if idx := st.CurrentIndex(); idx >= 0 {
			if next := idx + delta; next >= 0 && next < len(st.Queue) {
				target = next
			}
		}
	}

	d.state.Update(func(st *domain.PlaybackState) { st.PositionSeconds = 0 })

	if target < 0 {
		d.logger.Debug("Queue position not resolved, using relative command",
			zap.String("command", op),
			zap.String("player", id))
		d.send(ctx, op, id, func(ctx context.Context) error {
			if delta > 0 {
				return d.gateway.Next(ctx, id)
			}
			return d.gateway.Previous(ctx, id)
		})
		return nil
	}

	d.send(ctx, op, id, func(ctx context.Context) error {
		return d.gateway.PlayIndex(ctx, id, target)
	})
	return nil
}

// Seek moves the play position, clamped to the track duration when known
func (d *Dispatcher) Seek(ctx context.Context, seconds float64) error {
	id, err := d.guard("seek")
	if err != nil {
		return err
	}
	if seconds < 0 {
		seconds = 0
	}
	d.state.Update(func(st *domain.PlaybackState) {
		if st.CurrentTrack != nil && st.CurrentTrack.DurationSeconds > 0 && seconds > st.CurrentTrack.DurationSeconds {
			seconds = st.CurrentTrack.DurationSeconds
		}
		st.PositionSeconds = seconds
	})
	d.send(ctx, "seek", id, func(ctx context.Context) error {
		return d.gateway.Seek(ctx, id, seconds)
	})
	return nil
}

// PlayTrack replaces the remote queue with a single track and plays it
func (d *Dispatcher) PlayTrack(ctx context.Context, track domain.Track) error {
	id, err := d.guard("playTrack")
	if err != nil {
		return err
	}
	ref := track.Ref()
	if !d.beginLoad("playTrack", "track:"+ref) {
		return domain.ErrDuplicateRequest
	}
	defer d.endLoad()

	d.startedLoading()
	err = d.send(ctx, "playTrack", id, func(ctx context.Context) error {
		return d.gateway.PlayTrack(ctx, id, ref)
	})
	if err != nil {
		d.forgetLoad()
	}
	return nil
}

// PlayPlaylist loads tracks as the remote queue and starts at index start
func (d *Dispatcher) PlayPlaylist(ctx context.Context, tracks []domain.Track, start int) error {
	id, err := d.guard("playPlaylist")
	if err != nil {
		return err
	}
	if len(tracks) == 0 || start < 0 || start >= len(tracks) {
		d.logger.Warn("Command rejected: invalid playlist start",
			zap.Int("tracks", len(tracks)),
			zap.Int("start", start))
		return ErrInvalidIndex
	}

	refs := make([]string, len(tracks))
	for i, t := range tracks {
		refs[i] = t.Ref()
	}
	key := "playlist:" + strings.Join(refs, ",") + "@" + strconv.Itoa(start)
	if !d.beginLoad("playPlaylist", key) {
		return domain.ErrDuplicateRequest
	}
	defer d.endLoad()

	d.startedLoading()
	err = d.send(ctx, "playPlaylist", id, func(ctx context.Context) error {
		if err := d.gateway.LoadTracks(ctx, id, refs); err != nil {
			return err
		}
		if start > 0 {
			return d.gateway.PlayIndex(ctx, id, start)
		}
		return nil
	})
	if err != nil {
		d.forgetLoad()
	}
	return nil
}

// PlayStation plays a favourite radio station
func (d *Dispatcher) PlayStation(ctx context.Context, station domain.RadioStation) error {
	id, err := d.guard("playStation")
	if err != nil {
		return err
	}
	if !d.beginLoad("playStation", "station:"+station.URL) {
		return domain.ErrDuplicateRequest
	}
	defer d.endLoad()

	d.startedLoading()
	err = d.send(ctx, "playStation", id, func(ctx context.Context) error {
		return d.gateway.PlayURL(ctx, id, station.URL)
	})
	if err != nil {
		d.forgetLoad()
	}
	return nil
}

// AddToQueue appends a track to the remote playlist, or to the local queue when no player is active
func (d *Dispatcher) AddToQueue(ctx context.Context, track domain.Track) error {
	id, local, err := d.queueGuard("addToQueue")
	if err != nil {
		return err
	}
	if local {
		d.state.Update(func(st *domain.PlaybackState) {
			st.Queue = append(st.Queue, track)
		})
		return nil
	}
	d.send(ctx, "addToQueue", id, func(ctx context.Context) error {
		return d.gateway.PlaylistAdd(ctx, id, track.Ref())
	})
	return nil
}

// RemoveFromQueue deletes the queue entry at index
func (d *Dispatcher) RemoveFromQueue(ctx context.Context, index int) error {
	id, local, err := d.queueGuard("removeFromQueue")
	if err != nil {
		return err
	}
	if index < 0 {
		return ErrInvalidIndex
	}
	if local {
		return d.editLocal(func(q []domain.Track) ([]domain.Track, bool) {
			if index >= len(q) {
				return q, false
			}
			return append(q[:index:index], q[index+1:]...), true
		})
	}
	d.send(ctx, "removeFromQueue", id, func(ctx context.Context) error {
		return d.gateway.PlaylistDelete(ctx, id, index)
	})
	return nil
}

// MoveInQueue moves the entry at from to position to
func (d *Dispatcher) MoveInQueue(ctx context.Context, from, to int) error {
	id, local, err := d.queueGuard("moveInQueue")
	if err != nil {
		return err
	}
	if from < 0 || to < 0 {
		return ErrInvalidIndex
	}
	if local {
		return d.editLocal(func(q []domain.Track) ([]domain.Track, bool) {
			if from >= len(q) || to >= len(q) {
				return q, false
			}
			t := q[from]
			out := append(q[:from:from], q[from+1:]...)
			out = append(out[:to], append([]domain.Track{t}, out[to:]...)...)
			return out, true
		})
	}
	d.send(ctx, "moveInQueue", id, func(ctx context.Context) error {
		return d.gateway.PlaylistMove(ctx, id, from, to)
	})
	return nil
}

// ClearQueue empties the queue
func (d *Dispatcher) ClearQueue(ctx context.Context) error {
	id, local, err := d.queueGuard("clearQueue")
	if err != nil {
		return err
	}
	if local {
		d.state.Update(func(st *domain.PlaybackState) { st.Queue = nil })
		return nil
	}
	d.send(ctx, "clearQueue", id, func(ctx context.Context) error {
		return d.gateway.PlaylistClear(ctx, id)
	})
	return nil
}

// SetShuffle switches shuffle on or off
func (d *Dispatcher) SetShuffle(ctx context.Context, enabled bool) error {
	id, err := d.guard("setShuffle")
	if err != nil {
		return err
	}
	d.state.Update(func(st *domain.PlaybackState) { st.Shuffle = enabled })
	d.send(ctx, "setShuffle", id, func(ctx context.Context) error {
		return d.gateway.SetShuffle(ctx, id, enabled)
	})
	return nil
}

// SetRepeat sets the repeat mode
func (d *Dispatcher) SetRepeat(ctx context.Context, mode domain.RepeatMode) error {
	id, err := d.guard("setRepeat")
	if err != nil {
		return err
	}
	d.state.Update(func(st *domain.PlaybackState) { st.Repeat = mode })
	d.send(ctx, "setRepeat", id, func(ctx context.Context) error {
		return d.gateway.SetRepeat(ctx, id, mode)
	})
	return nil
}

// SetPlayerPref forwards a player preference such as transitionType or replayGainMode
func (d *Dispatcher) SetPlayerPref(ctx context.Context, name, value string) error {
	id, err := d.guard("setPlayerPref")
	if err != nil {
		return err
	}
	d.send(ctx, "setPlayerPref", id, func(ctx context.Context) error {
		return d.gateway.SetPref(ctx, id, name, value)
	})
	return nil
}

// guard resolves the active player or rejects the command locally
func (d *Dispatcher) guard(op string) (string, error) {
	p, ok := d.players.Active()
	if !ok {
		d.logger.Warn("Command rejected: no active player", zap.String("command", op))
		return "", domain.ErrNoActivePlayer
	}
	if d.players.IsDisabled(p.ID) {
		d.logger.Warn("Command rejected: player disabled",
			zap.String("command", op),
			zap.String("player", p.ID))
		return "", domain.ErrPlayerDisabled
	}
	return p.ID, nil
}

// queueGuard is guard for queue edits, which fall back to the local queue without a player
func (d *Dispatcher) queueGuard(op string) (string, bool, error) {
	p, ok := d.players.Active()
	if !ok {
		d.logger.Debug("No active player, editing local queue", zap.String("command", op))
		return "", true, nil
	}
	if d.players.IsDisabled(p.ID) {
		d.logger.Warn("Command rejected: player disabled",
			zap.String("command", op),
			zap.String("player", p.ID))
		return "", false, domain.ErrPlayerDisabled
	}
	return p.ID, false, nil
}

func (d *Dispatcher) editLocal(fn func([]domain.Track) ([]domain.Track, bool)) error {
	ok := true
	d.state.Update(func(st *domain.PlaybackState) {
		var q []domain.Track
		q, ok = fn(st.Queue)
		st.Queue = q
	})
	if !ok {
		return ErrInvalidIndex
	}
	return nil
}

// beginLoad is the re-entrancy guard of load commands
func (d *Dispatcher) beginLoad(op, key string) bool {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	now := d.clock.Now()
	switch {
	case d.loading:
		d.logger.Info("Load already in flight, dropping request", zap.String("command", op))
		return false
	case key == d.lastLoad && now.Sub(d.lastLoadAt) < d.loadCooldown:
		d.logger.Info("Duplicate load within cooldown, dropping request", zap.String("command", op))
		return false
	}
	d.loading = true
	d.lastLoad = key
	d.lastLoadAt = now
	return true
}

// forgetLoad lets a failed load be retried straight away
func (d *Dispatcher) forgetLoad() {
	d.loadMu.Lock()
	d.lastLoad = ""
	d.loadMu.Unlock()
}

func (d *Dispatcher) endLoad() {
	d.loadMu.Lock()
	d.loading = false
	d.loadMu.Unlock()
}

func (d *Dispatcher) startedLoading() {
	d.state.Update(func(st *domain.PlaybackState) {
		st.IsPlaying = true
		st.PositionSeconds = 0
	})
}

// send runs a gateway call with a bounded timeout and schedules the confirming sync.
// The call error is logged here; callers only use it for bookkeeping.
func (d *Dispatcher) send(ctx context.Context, op, playerID string, call func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := call(callCtx)
	if err != nil {
		d.logger.Warn("Command failed",
			zap.String("command", op),
			zap.String("player", playerID),
			zap.Error(err))
	} else {
		d.logger.Debug("Command sent", zap.String("command", op), zap.String("player", playerID))
	}
	d.syncer.ScheduleSync(d.postCommandDelay)
	return err
}
