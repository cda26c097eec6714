package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (s *Server) getState(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) getZones(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, s.players.Zones())
}

func (s *Server) getPlayers(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, s.players.Players())
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, s.history.Entries())
}

func (s *Server) getStations(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, s.library.Stations())
}

// getArtwork serves the cached cover or backdrop of the current track
func (s *Server) getArtwork(w http.ResponseWriter, r *http.Request) error {
	art := s.library.Artwork()

	var path string
	switch chi.URLParam(r, "kind") {
	case "cover":
		path = art.CoverPath
	case "backdrop":
		path = art.BackdropPath
	default:
		return badRequest("unknown artwork kind")
	}
	if path == "" {
		return errNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return errNotFound
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
	return nil
}

func (s *Server) refreshPlayers(w http.ResponseWriter, r *http.Request) error {
	if err := s.players.Refresh(r.Context()); err != nil {
		return errUpstream
	}
	return writeJSON(w, http.StatusOK, s.players.Zones())
}

func (s *Server) activatePlayer(w http.ResponseWriter, r *http.Request) error {
	if err := s.players.SetActive(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, s.players.Zones())
}

func (s *Server) toggleDisabled(w http.ResponseWriter, r *http.Request) error {
	if err := s.players.ToggleDisabled(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, s.players.Players())
}

func (s *Server) selectLocal(w http.ResponseWriter, r *http.Request) error {
	if err := s.players.SelectLocal(r.Context()); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, s.players.Zones())
}

func (s *Server) setPlayerPref(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if body.Name == "" {
		return badRequest("name is required")
	}
	if err := s.commands.SetPlayerPref(r.Context(), body.Name, body.Value); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) transport(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var err error
	switch action := chi.URLParam(r, "action"); action {
	case "play":
		err = s.commands.Play(ctx)
	case "pause":
		err = s.commands.Pause(ctx)
	case "toggle":
		err = s.commands.Toggle(ctx)
	case "next":
		err = s.commands.Next(ctx)
	case "previous":
		err = s.commands.Previous(ctx)
	default:
		return badRequest("unknown action %q", action)
	}
	if err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) seek(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Seconds *float64 `json:"seconds"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if body.Seconds == nil {
		return badRequest("seconds is required")
	}
	if err := s.commands.Seek(r.Context(), *body.Seconds); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) setShuffle(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if err := s.commands.SetShuffle(r.Context(), body.Enabled); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) setRepeat(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	mode, ok := domain.ParseRepeatMode(body.Mode)
	if !ok {
		return badRequest("unknown repeat mode %q", body.Mode)
	}
	if err := s.commands.SetRepeat(r.Context(), mode); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) getVolume(w http.ResponseWriter, r *http.Request) error {
	st := s.state.Snapshot()
	return writeJSON(w, http.StatusOK, map[string]any{
		"volume": st.Volume,
		"target": s.volume.Target(),
	})
}

// setVolume accepts an absolute percent or a relative step
func (s *Server) setVolume(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Percent *int `json:"percent"`
		Step    *int `json:"step"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}

	var percent int
	switch {
	case body.Percent != nil:
		percent = s.volume.RequestVolume(*body.Percent)
	case body.Step != nil:
		percent = s.volume.StepVolume(*body.Step)
	default:
		return badRequest("percent or step is required")
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"percent": percent,
		"target":  s.volume.Target(),
	})
}

func (s *Server) playTrack(w http.ResponseWriter, r *http.Request) error {
	var track domain.Track
	if err := decodeJSON(r, &track); err != nil {
		return err
	}
	if track.Ref() == "" {
		return badRequest("track needs an id or stream url")
	}
	if err := s.commands.PlayTrack(r.Context(), track); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) playPlaylist(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Tracks []domain.Track `json:"tracks"`
		Start  int            `json:"start"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if len(body.Tracks) == 0 {
		return badRequest("tracks are required")
	}
	if err := s.commands.PlayPlaylist(r.Context(), body.Tracks, body.Start); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) playStation(w http.ResponseWriter, r *http.Request) error {
	var station domain.RadioStation
	if err := decodeJSON(r, &station); err != nil {
		return err
	}
	if station.URL == "" {
		return badRequest("url is required")
	}
	if err := s.commands.PlayStation(r.Context(), station); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) addToQueue(w http.ResponseWriter, r *http.Request) error {
	var track domain.Track
	if err := decodeJSON(r, &track); err != nil {
		return err
	}
	if err := s.commands.AddToQueue(r.Context(), track); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) removeFromQueue(w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return badRequest("index must be a number")
	}
	if err := s.commands.RemoveFromQueue(r.Context(), index); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) moveInQueue(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return err
	}
	if err := s.commands.MoveInQueue(r.Context(), body.From, body.To); err != nil {
		return err
	}
	return noContent(w)
}

func (s *Server) clearQueue(w http.ResponseWriter, r *http.Request) error {
	if err := s.commands.ClearQueue(r.Context()); err != nil {
		return err
	}
	return noContent(w)
}
