package mpris

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/playback"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
	busPrefix   = "org.mpris.MediaPlayer2."
)

// Commands are the transport intents the bridge forwards
type Commands interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Toggle(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error
	SetShuffle(ctx context.Context, enabled bool) error
	SetRepeat(ctx context.Context, mode domain.RepeatMode) error
}

// VolumeControl receives volume changes made by desktop widgets
type VolumeControl interface {
	RequestVolume(percent int) int
}

// ArtworkSource provides the cached cover of the current track
type ArtworkSource interface {
	Artwork() domain.Artwork
	ArtworkChanges() (<-chan struct{}, func())
}

// Server exports the playback state as an MPRIS media player on the session bus
type Server struct {
	logger   *zap.Logger
	cfg      *config.AppConfig
	commands Commands
	volume   VolumeControl
	state    *playback.State
	artwork  ArtworkSource

	mu      sync.Mutex
	running bool
	busName string
	conn    Conn
	props   propertySetter
	last    map[string]interface{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates the MPRIS bridge
func NewServer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	commands Commands,
	volume VolumeControl,
	state *playback.State,
	artwork ArtworkSource,
) *Server {
	return &Server{
		logger:   logger.Named("mpris"),
		cfg:      cfg,
		commands: commands,
		volume:   volume,
		state:    state,
		artwork:  artwork,
		busName:  busPrefix + cfg.MPRISName,
		last:     make(map[string]interface{}),
	}
}

// Start connects to the session bus and exports the player.
// A missing bus only disables the bridge.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.MPRISEnabled {
		s.logger.Info("MPRIS bridge disabled")
		return nil
	}

	conn, err := connectSessionBus()
	if err != nil {
		s.logger.Warn("No session bus, MPRIS bridge disabled", zap.Error(err))
		return nil
	}

	props, err := s.export(conn)
	if err != nil {
		s.logger.Warn("Failed to export MPRIS objects", zap.Error(err))
		conn.Close()
		return nil
	}

	reply, err := conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
		s.logger.Warn("Bus name unavailable, MPRIS bridge disabled",
			zap.String("name", s.busName),
			zap.Error(err))
		conn.Close()
		return nil
	}

	s.mu.Lock()
	s.conn = conn
	s.props = props
	s.running = true
	s.mu.Unlock()

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(loopCtx)

	s.logger.Info("MPRIS bridge started", zap.String("name", s.busName))
	return nil
}

// Stop releases the bus name and closes the connection
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	conn := s.conn
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	_, releaseErr := conn.ReleaseName(s.busName)
	err := multierr.Combine(releaseErr, conn.Close())

	s.logger.Info("MPRIS bridge shutdown complete")
	return err
}

// export publishes the root and player interfaces with their properties
func (s *Server) export(conn *dbus.Conn) (*prop.Properties, error) {
	root := &rootObject{}
	player := &playerObject{server: s}

	if err := conn.Export(root, objectPath, rootIface); err != nil {
		return nil, fmt.Errorf("failed to export root interface: %w", err)
	}
	if err := conn.Export(player, objectPath, playerIface); err != nil {
		return nil, fmt.Errorf("failed to export player interface: %w", err)
	}

	props, err := prop.Export(conn, objectPath, s.propertyMap())
	if err != nil {
		return nil, fmt.Errorf("failed to export properties: %w", err)
	}

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       rootIface,
				Methods:    introspect.Methods(root),
				Properties: props.Introspection(rootIface),
			},
			{
				Name:       playerIface,
				Methods:    introspect.Methods(player),
				Properties: props.Introspection(playerIface),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), objectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, fmt.Errorf("failed to export introspection: %w", err)
	}
	return props, nil
}

func (s *Server) propertyMap() prop.Map {
	st := s.state.Snapshot()
	art := s.artwork.Artwork()

	constant := func(v interface{}) *prop.Prop {
		return &prop.Prop{Value: v, Emit: prop.EmitConst}
	}

	return prop.Map{
		rootIface: {
			"CanQuit":             constant(false),
			"CanRaise":            constant(false),
			"HasTrackList":        constant(false),
			"Identity":            constant("ZoneSync"),
			"SupportedUriSchemes": constant([]string{}),
			"SupportedMimeTypes":  constant([]string{}),
		},
		playerIface: {
			"PlaybackStatus": {Value: playbackStatus(st), Emit: prop.EmitTrue},
			"LoopStatus":     {Value: loopStatus(st.Repeat), Writable: true, Emit: prop.EmitTrue, Callback: s.onLoopStatus},
			"Shuffle":        {Value: st.Shuffle, Writable: true, Emit: prop.EmitTrue, Callback: s.onShuffle},
			"Volume":         {Value: st.Volume, Writable: true, Emit: prop.EmitTrue, Callback: s.onVolume},
			"Metadata":       {Value: metadata(st, art), Emit: prop.EmitTrue},
			"Position":       {Value: micros(st.PositionSeconds), Emit: prop.EmitFalse},
			"Rate":           constant(1.0),
			"MinimumRate":    constant(1.0),
			"MaximumRate":    constant(1.0),
			"CanGoNext":      constant(true),
			"CanGoPrevious":  constant(true),
			"CanPlay":        constant(true),
			"CanPause":       constant(true),
			"CanSeek":        constant(true),
			"CanControl":     constant(true),
		},
	}
}

// run keeps the exported properties in step with state and artwork changes
func (s *Server) run(ctx context.Context) {
	defer s.wg.Done()

	stateCh, unsubState := s.state.Changes()
	defer unsubState()
	artCh, unsubArt := s.artwork.ArtworkChanges()
	defer unsubArt()

	s.publish()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stateCh:
			s.publish()
		case <-artCh:
			s.publish()
		}
	}
}

// publish pushes every changed property to the bus
func (s *Server) publish() {
	st := s.state.Snapshot()
	art := s.artwork.Artwork()

	s.set("PlaybackStatus", playbackStatus(st))
	s.set("LoopStatus", loopStatus(st.Repeat))
	s.set("Shuffle", st.Shuffle)
	s.set("Volume", st.Volume)
	s.set("Metadata", metadata(st, art))
	s.set("Position", micros(st.PositionSeconds))
}

func (s *Server) set(name string, v interface{}) {
	s.mu.Lock()
	props := s.props
	if props == nil || reflect.DeepEqual(s.last[name], v) {
		s.mu.Unlock()
		return
	}
	s.last[name] = v
	s.mu.Unlock()

	props.SetMust(playerIface, name, v)
}

func (s *Server) onVolume(c *prop.Change) *dbus.Error {
	v, ok := c.Value.(float64)
	if !ok {
		return dbus.MakeFailedError(fmt.Errorf("invalid volume %v", c.Value))
	}
	percent := s.volume.RequestVolume(int(math.Round(v * 100)))
	s.logger.Debug("Volume set from desktop", zap.Int("percent", percent))
	return nil
}

func (s *Server) onShuffle(c *prop.Change) *dbus.Error {
	enabled, ok := c.Value.(bool)
	if !ok {
		return dbus.MakeFailedError(fmt.Errorf("invalid shuffle %v", c.Value))
	}
	return s.call("Shuffle", func(ctx context.Context) error {
		return s.commands.SetShuffle(ctx, enabled)
	})
}

func (s *Server) onLoopStatus(c *prop.Change) *dbus.Error {
	str, _ := c.Value.(string)
	mode, ok := parseLoopStatus(str)
	if !ok {
		return dbus.MakeFailedError(fmt.Errorf("invalid loop status %q", str))
	}
	return s.call("LoopStatus", func(ctx context.Context) error {
		return s.commands.SetRepeat(ctx, mode)
	})
}

// call runs a command with the gateway timeout and converts rejections to D-Bus errors
func (s *Server) call(op string, fn func(ctx context.Context) error) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Gateway.Timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.logger.Debug("MPRIS command rejected", zap.String("op", op), zap.Error(err))
		return dbus.MakeFailedError(err)
	}
	return nil
}

// rootObject implements org.mpris.MediaPlayer2; the daemon has no window to raise
type rootObject struct{}

func (r *rootObject) Raise() *dbus.Error { return nil }
func (r *rootObject) Quit() *dbus.Error  { return nil }

// playerObject implements org.mpris.MediaPlayer2.Player
type playerObject struct {
	server *Server
}

func (p *playerObject) Play() *dbus.Error {
	return p.server.call("Play", p.server.commands.Play)
}

func (p *playerObject) Pause() *dbus.Error {
	return p.server.call("Pause", p.server.commands.Pause)
}

func (p *playerObject) PlayPause() *dbus.Error {
	return p.server.call("PlayPause", p.server.commands.Toggle)
}

// Stop pauses; the remote player keeps its queue
func (p *playerObject) Stop() *dbus.Error {
	return p.server.call("Stop", p.server.commands.Pause)
}

func (p *playerObject) Next() *dbus.Error {
	return p.server.call("Next", p.server.commands.Next)
}

func (p *playerObject) Previous() *dbus.Error {
	return p.server.call("Previous", p.server.commands.Previous)
}

// Seek moves relative to the current position; offset is in microseconds
func (p *playerObject) Seek(offset int64) *dbus.Error {
	pos := p.server.state.Snapshot().PositionSeconds + float64(offset)/microsPerSecond
	if pos < 0 {
		pos = 0
	}
	return p.server.call("Seek", func(ctx context.Context) error {
		return p.server.commands.Seek(ctx, pos)
	})
}

// SetPosition seeks to an absolute position; stale track ids are ignored
func (p *playerObject) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	st := p.server.state.Snapshot()
	if trackID != trackPath(st.CurrentTrack) || position < 0 {
		return nil
	}
	return p.server.call("SetPosition", func(ctx context.Context) error {
		return p.server.commands.Seek(ctx, float64(position)/microsPerSecond)
	})
}

func (p *playerObject) OpenUri(uri string) *dbus.Error {
	return dbus.MakeFailedError(fmt.Errorf("opening %q is not supported", uri))
}
