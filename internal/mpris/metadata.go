package mpris

import (
	"strings"

	"github.com/genricoloni/zonesync/internal/domain"
	"github.com/godbus/dbus/v5"
)

const (
	noTrackPath     = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
	trackPathBase   = "/org/zonesync/track/"
	statusPlaying   = "Playing"
	statusPaused    = "Paused"
	statusStopped   = "Stopped"
	loopNone        = "None"
	loopTrack       = "Track"
	loopPlaylist    = "Playlist"
	microsPerSecond = 1_000_000
)

func playbackStatus(st domain.PlaybackState) string {
	switch {
	case st.CurrentTrack == nil:
		return statusStopped
	case st.IsPlaying:
		return statusPlaying
	default:
		return statusPaused
	}
}

func loopStatus(mode domain.RepeatMode) string {
	switch mode {
	case domain.RepeatOne:
		return loopTrack
	case domain.RepeatAll:
		return loopPlaylist
	default:
		return loopNone
	}
}

func parseLoopStatus(s string) (domain.RepeatMode, bool) {
	switch s {
	case loopNone:
		return domain.RepeatOff, true
	case loopTrack:
		return domain.RepeatOne, true
	case loopPlaylist:
		return domain.RepeatAll, true
	}
	return domain.RepeatOff, false
}

// trackPath builds a valid object path from the track id
func trackPath(t *domain.Track) dbus.ObjectPath {
	if t == nil {
		return noTrackPath
	}
	id := t.ID
	if id == "" {
		id = t.Title + "_" + t.Artist
	}

	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return noTrackPath
	}
	return dbus.ObjectPath(trackPathBase + b.String())
}

func micros(seconds float64) int64 {
	return int64(seconds * microsPerSecond)
}

// metadata maps the current track onto the xesam/mpris metadata dictionary.
// Artwork is only announced once the cached file for this very track exists.
func metadata(st domain.PlaybackState, art domain.Artwork) map[string]dbus.Variant {
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackPath(st.CurrentTrack)),
	}
	t := st.CurrentTrack
	if t == nil {
		return md
	}

	md["xesam:title"] = dbus.MakeVariant(t.Title)
	if t.Artist != "" {
		md["xesam:artist"] = dbus.MakeVariant([]string{t.Artist})
	}
	if t.Album != "" {
		md["xesam:album"] = dbus.MakeVariant(t.Album)
	}
	if t.DurationSeconds > 0 {
		md["mpris:length"] = dbus.MakeVariant(micros(t.DurationSeconds))
	}
	if t.ArtworkRef != "" && art.Ref == t.ArtworkRef && art.CoverPath != "" {
		md["mpris:artUrl"] = dbus.MakeVariant("file://" + art.CoverPath)
	}
	if t.StreamURL != "" {
		md["xesam:url"] = dbus.MakeVariant(t.StreamURL)
	}
	return md
}
