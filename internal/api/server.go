package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/genricoloni/zonesync/internal/playback"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Players is the zone selection surface
type Players interface {
	Players() []domain.Player
	Zones() []domain.Zone
	Refresh(ctx context.Context) error
	SetActive(ctx context.Context, playerID string) error
	ToggleDisabled(ctx context.Context, playerID string) error
	SelectLocal(ctx context.Context) error
	Changes() (<-chan struct{}, func())
}

// Commands are the playback intents exposed over HTTP
type Commands interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Toggle(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error
	SetShuffle(ctx context.Context, enabled bool) error
	SetRepeat(ctx context.Context, mode domain.RepeatMode) error
	PlayTrack(ctx context.Context, track domain.Track) error
	PlayPlaylist(ctx context.Context, tracks []domain.Track, start int) error
	PlayStation(ctx context.Context, station domain.RadioStation) error
	AddToQueue(ctx context.Context, track domain.Track) error
	RemoveFromQueue(ctx context.Context, index int) error
	MoveInQueue(ctx context.Context, from, to int) error
	ClearQueue(ctx context.Context) error
	SetPlayerPref(ctx context.Context, name, value string) error
}

// Volume is the arbiter surface
type Volume interface {
	RequestVolume(percent int) int
	StepVolume(delta int) int
	Target() domain.VolumeTarget
}

// Library exposes favourites and the cached artwork
type Library interface {
	Stations() []domain.RadioStation
	Artwork() domain.Artwork
	ArtworkChanges() (<-chan struct{}, func())
}

// HistorySource lists recently played tracks
type HistorySource interface {
	Entries() []domain.HistoryEntry
}

// Push is the websocket message sent on every change
type Push struct {
	State   domain.PlaybackState `json:"state"`
	Zones   []domain.Zone        `json:"zones"`
	Target  domain.VolumeTarget  `json:"target"`
	Artwork domain.Artwork       `json:"artwork"`
}

// Server is the HTTP and websocket front end
type Server struct {
	logger   *zap.Logger
	cfg      *config.AppConfig
	state    *playback.State
	players  Players
	commands Commands
	volume   Volume
	library  Library
	history  HistorySource

	router   chi.Router
	upgrader websocket.Upgrader
	hub      *hub

	httpServer *http.Server
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewServer creates the API server and its routes
func NewServer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	state *playback.State,
	players Players,
	commands Commands,
	volume Volume,
	library Library,
	history HistorySource,
) *Server {
	logger = logger.Named("api")
	s := &Server{
		logger:   logger,
		cfg:      cfg,
		state:    state,
		players:  players,
		commands: commands,
		volume:   volume,
		library:  library,
		history:  history,
		hub:      newHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Served on the local network to our own UI
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	s.startPush()

	s.logger.Info("API listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Stop shuts the HTTP server down and disconnects websocket clients
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.stopPush()
	s.hub.closeAll()
	return err
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handle(s.getState))
		r.Get("/zones", s.handle(s.getZones))
		r.Get("/history", s.handle(s.getHistory))
		r.Get("/stations", s.handle(s.getStations))
		r.Get("/artwork/{kind}", s.handle(s.getArtwork))

		r.Route("/players", func(r chi.Router) {
			r.Get("/", s.handle(s.getPlayers))
			r.Post("/refresh", s.handle(s.refreshPlayers))
			r.Post("/prefs", s.handle(s.setPlayerPref))
			r.Post("/{id}/activate", s.handle(s.activatePlayer))
			r.Post("/{id}/toggle-disabled", s.handle(s.toggleDisabled))
		})
		r.Post("/local", s.handle(s.selectLocal))

		r.Route("/transport", func(r chi.Router) {
			r.Post("/seek", s.handle(s.seek))
			r.Post("/shuffle", s.handle(s.setShuffle))
			r.Post("/repeat", s.handle(s.setRepeat))
			r.Post("/{action}", s.handle(s.transport))
		})

		r.Get("/volume", s.handle(s.getVolume))
		r.Post("/volume", s.handle(s.setVolume))

		r.Route("/play", func(r chi.Router) {
			r.Post("/track", s.handle(s.playTrack))
			r.Post("/playlist", s.handle(s.playPlaylist))
			r.Post("/station", s.handle(s.playStation))
		})

		r.Route("/queue", func(r chi.Router) {
			r.Post("/", s.handle(s.addToQueue))
			r.Delete("/", s.handle(s.clearQueue))
			r.Post("/move", s.handle(s.moveInQueue))
			r.Delete("/{index}", s.handle(s.removeFromQueue))
		})
	})
	return r
}

func (s *Server) snapshot() Push {
	return Push{
		State:   s.state.Snapshot(),
		Zones:   s.players.Zones(),
		Target:  s.volume.Target(),
		Artwork: s.library.Artwork(),
	}
}

// startPush broadcasts a fresh snapshot whenever state, zones or artwork change
func (s *Server) startPush() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	stateCh, unsubState := s.state.Changes()
	zonesCh, unsubZones := s.players.Changes()
	artCh, unsubArt := s.library.ArtworkChanges()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubState()
		defer unsubZones()
		defer unsubArt()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stateCh:
			case <-zonesCh:
			case <-artCh:
			}
			data, err := json.Marshal(s.snapshot())
			if err != nil {
				s.logger.Error("Failed to encode push", zap.Error(err))
				continue
			}
			s.hub.broadcast(data)
		}
	}()
}

func (s *Server) stopPush() {
	if s.cancel != nil {
		s.cancel()
		s.wg.Wait()
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	data, err := json.Marshal(s.snapshot())
	if err != nil {
		conn.Close()
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- data
	s.hub.add(c)

	go s.hub.writePump(c)
	go s.hub.readPump(c)
}
