package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/genricoloni/zonesync/internal/domain"
)

func (c *Client) Play(ctx context.Context, playerID string) error {
	return c.command(ctx, playerID, "play")
}

func (c *Client) Pause(ctx context.Context, playerID string) error {
	return c.command(ctx, playerID, "pause", "1")
}

func (c *Client) Resume(ctx context.Context, playerID string) error {
	return c.command(ctx, playerID, "pause", "0")
}

func (c *Client) Next(ctx context.Context, playerID string) error {
	return c.command(ctx, playerID, "playlist", "index", "+1")
}

func (c *Client) Previous(ctx context.Context, playerID string) error {
	return c.command(ctx, playerID, "playlist", "index", "-1")
}

func (c *Client) Seek(ctx context.Context, playerID string, seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	return c.command(ctx, playerID, "time", strconv.FormatFloat(seconds, 'f', 1, 64))
}

func (c *Client) SetVolume(ctx context.Context, playerID string, percent int) error {
	return c.command(ctx, playerID, "mixer", "volume", strconv.Itoa(clampPercent(percent)))
}

func (c *Client) PlayIndex(ctx context.Context, playerID string, index int) error {
	return c.command(ctx, playerID, "playlist", "index", strconv.Itoa(index))
}

// PlaylistAdd appends a library track id or a stream URL
func (c *Client) PlaylistAdd(ctx context.Context, playerID string, ref string) error {
	if isLibraryID(ref) {
		return c.command(ctx, playerID, "playlistcontrol", "cmd:add", "track_id:"+ref)
	}
	return c.command(ctx, playerID, "playlist", "add", ref)
}

func (c *Client) PlaylistDelete(ctx context.Context, playerID string, index int) error {
	return c.command(ctx, playerID, "playlist", "delete", strconv.Itoa(index))
}

func (c *Client) PlaylistMove(ctx context.Context, playerID string, from, to int) error {
	return c.command(ctx, playerID, "playlist", "move", strconv.Itoa(from), strconv.Itoa(to))
}

func (c *Client) PlaylistClear(ctx context.Context, playerID string) error {
	return c.command(ctx, playerID, "playlist", "clear")
}

// LoadTracks replaces the playlist with refs. Library ids are loaded in one call;
// a mix of ids and URLs falls back to clear + add.
func (c *Client) LoadTracks(ctx context.Context, playerID string, refs []string) error {
	if len(refs) == 0 {
		return fmt.Errorf("load needs at least one track")
	}

	allLibrary := true
	for _, ref := range refs {
		if !isLibraryID(ref) {
			allLibrary = false
			break
		}
	}
	if allLibrary {
		return c.command(ctx, playerID, "playlistcontrol", "cmd:load", "track_id:"+strings.Join(refs, ","))
	}

	if err := c.PlaylistClear(ctx, playerID); err != nil {
		return err
	}
	for _, ref := range refs {
		if err := c.PlaylistAdd(ctx, playerID, ref); err != nil {
			return err
		}
	}
	return nil
}

// PlayTrack replaces the playlist with a single track and starts it
func (c *Client) PlayTrack(ctx context.Context, playerID string, ref string) error {
	if isLibraryID(ref) {
		return c.command(ctx, playerID, "playlistcontrol", "cmd:load", "track_id:"+ref)
	}
	return c.PlayURL(ctx, playerID, ref)
}

func (c *Client) PlayURL(ctx context.Context, playerID string, uri string) error {
	return c.command(ctx, playerID, "playlist", "play", uri)
}

func (c *Client) SetShuffle(ctx context.Context, playerID string, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return c.command(ctx, playerID, "playlist", "shuffle", v)
}

func (c *Client) SetRepeat(ctx context.Context, playerID string, mode domain.RepeatMode) error {
	v := "0"
	switch mode {
	case domain.RepeatOne:
		v = "1"
	case domain.RepeatAll:
		v = "2"
	}
	return c.command(ctx, playerID, "playlist", "repeat", v)
}

// SetPref forwards a player preference such as transitionType or replayGainMode
func (c *Client) SetPref(ctx context.Context, playerID, name, value string) error {
	return c.command(ctx, playerID, "playerpref", name, value)
}

func isLibraryID(ref string) bool {
	if ref == "" {
		return false
	}
	for _, r := range ref {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

var _ domain.Gateway = (*Client)(nil)
