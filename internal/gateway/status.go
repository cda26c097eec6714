package gateway

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

// statusTags asks for artist, album, duration, url, coverid, artwork_url, type,
// bitrate, samplerate, samplesize, remote flag and remote title
const statusTags = "tags:alduKcorTIxN"

// statusWindow is how many playlist entries a status poll returns
const statusWindow = 500

// ListPlayers enumerates the players connected to the server
func (c *Client) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	result, err := c.request(ctx, "", "players", "0", strconv.Itoa(c.cfg.PlayerLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	loop := getLoop(result, "players_loop")
	players := make([]domain.Player, 0, len(loop))
	for _, p := range loop {
		if hasKey(p, "isplayer") && !getBool(p, "isplayer") {
			continue
		}
		id := getString(p, "playerid")
		if id == "" {
			continue
		}
		model := getString(p, "modelname")
		if model == "" {
			model = getString(p, "model")
		}
		players = append(players, domain.Player{
			ID:        id,
			Name:      getString(p, "name"),
			Model:     model,
			Powered:   getBool(p, "power"),
			Connected: !hasKey(p, "connected") || getBool(p, "connected"),
		})
	}

	c.logger.Debug("Players listed", zap.Int("count", len(players)))
	return players, nil
}

// Status fetches the full transport and playlist snapshot of a player
func (c *Client) Status(ctx context.Context, playerID string) (*domain.Status, error) {
	if playerID == "" {
		return nil, fmt.Errorf("status needs a player id")
	}
	result, err := c.request(ctx, playerID, "status", "0", strconv.Itoa(statusWindow), statusTags)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status: %w", err)
	}
	st := parseStatus(result)

	// The current entry lies beyond the returned window on long queues
	if st.CurrentTrack == nil && st.PlaylistIndex >= len(st.Playlist) && getInt(result, "playlist_tracks") > st.PlaylistIndex {
		current, err := c.playlistEntry(ctx, playerID, st.PlaylistIndex)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Title == "" {
			current.Title = getString(result, "current_title")
		}
		st.CurrentTrack = current
	}
	return st, nil
}

// playlistEntry fetches the single playlist entry at index
func (c *Client) playlistEntry(ctx context.Context, playerID string, index int) (*domain.Track, error) {
	result, err := c.request(ctx, playerID, "status", strconv.Itoa(index), "1", statusTags)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist entry %d: %w", index, err)
	}
	for _, entry := range getLoop(result, "playlist_loop") {
		if hasKey(entry, "playlist index") && getInt(entry, "playlist index") != index {
			continue
		}
		t := parseTrack(entry)
		return &t, nil
	}
	return nil, nil
}

func parseStatus(result map[string]any) *domain.Status {
	st := &domain.Status{
		IsPlaying:       getString(result, "mode") == "play",
		PositionSeconds: getFloat(result, "time"),
		// Negative mixer volume means muted at that level
		VolumePercent: int(math.Abs(getFloat(result, "mixer volume"))),
		Shuffle:       getInt(result, "playlist shuffle") != 0,
		Repeat:        parseRepeat(getInt(result, "playlist repeat")),
		PlaylistIndex: -1,
	}

	if hasKey(result, "playlist_cur_index") {
		st.PlaylistIndex = getInt(result, "playlist_cur_index")
	}

	loop := getLoop(result, "playlist_loop")
	st.Playlist = make([]domain.Track, 0, len(loop))
	for i, entry := range loop {
		track := parseTrack(entry)
		st.Playlist = append(st.Playlist, track)

		idx := i
		if hasKey(entry, "playlist index") {
			idx = getInt(entry, "playlist index")
		}
		if idx == st.PlaylistIndex && st.CurrentTrack == nil {
			t := track
			st.CurrentTrack = &t
		}
	}

	// Remote streams may carry a live title outside the playlist entry
	if st.CurrentTrack != nil && st.CurrentTrack.Title == "" {
		st.CurrentTrack.Title = getString(result, "current_title")
	}

	return st
}

func parseRepeat(n int) domain.RepeatMode {
	switch n {
	case 1:
		return domain.RepeatOne
	case 2:
		return domain.RepeatAll
	default:
		return domain.RepeatOff
	}
}

func parseTrack(entry map[string]any) domain.Track {
	remote := getBool(entry, "remote")
	t := domain.Track{
		ID:              getString(entry, "id"),
		Title:           getString(entry, "title"),
		Artist:          getString(entry, "artist"),
		Album:           getString(entry, "album"),
		DurationSeconds: getFloat(entry, "duration"),
		Format:          getString(entry, "type"),
		Bitrate:         getString(entry, "bitrate"),
		SampleRate:      getInt(entry, "samplerate"),
		BitDepth:        getInt(entry, "samplesize"),
		StreamURL:       getString(entry, "url"),
		SourceTag:       "library",
	}

	if remote {
		t.SourceTag = "remote"
		t.BackendTrackRef = t.StreamURL
		if rt := getString(entry, "remote_title"); rt != "" && t.Title == "" {
			t.Title = rt
		}
	} else {
		t.BackendTrackRef = t.ID
	}

	if art := getString(entry, "artwork_url"); art != "" {
		t.ArtworkRef = art
	} else if cover := getString(entry, "coverid"); cover != "" {
		t.ArtworkRef = "/music/" + cover + "/cover.jpg"
	}

	return t
}

// Favorites lists favourite audio items that have a stream URL
func (c *Client) Favorites(ctx context.Context) ([]domain.RadioStation, error) {
	result, err := c.request(ctx, "", "favorites", "items", "0", "200", "want_url:1")
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	var stations []domain.RadioStation
	for _, item := range getLoop(result, "loop_loop") {
		url := getString(item, "url")
		if url == "" || (hasKey(item, "isaudio") && !getBool(item, "isaudio")) {
			continue
		}
		if !strings.Contains(url, "://") {
			continue
		}
		stations = append(stations, domain.RadioStation{
			Name:       getString(item, "name"),
			URL:        url,
			ArtworkURL: getString(item, "image"),
		})
	}
	return stations, nil
}
