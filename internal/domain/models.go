package domain

import (
	"strings"
	"time"
)

// RepeatMode is the playlist repeat behaviour reported by the remote player
type RepeatMode int

const (
	// RepeatOff plays the queue once
	RepeatOff RepeatMode = iota
	// RepeatOne repeats the current track
	RepeatOne
	// RepeatAll repeats the whole queue
	RepeatAll
)

// String returns the repeat mode name
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseRepeatMode converts "off", "one" or "all" into a RepeatMode
func ParseRepeatMode(s string) (RepeatMode, bool) {
	switch strings.ToLower(s) {
	case "off", "none":
		return RepeatOff, true
	case "one", "track":
		return RepeatOne, true
	case "all", "playlist":
		return RepeatAll, true
	}
	return RepeatOff, false
}

// Player is a remote playback endpoint exposed by the gateway
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Model         string `json:"model"`
	Powered       bool   `json:"powered"`
	Connected     bool   `json:"connected"`
	VolumePercent int    `json:"volumePercent"`
}

// ZoneKind distinguishes remote players from the local pseudo-zone
type ZoneKind string

const (
	// ZoneKindPlayer is a zone backed by a remote player
	ZoneKindPlayer ZoneKind = "player"
	// ZoneKindLocal is the local-only pseudo-zone
	ZoneKindLocal ZoneKind = "local"
)

// LocalZoneID identifies the local pseudo-zone
const LocalZoneID = "local"

// Zone is a selectable output target derived from the player registry
type Zone struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Kind   ZoneKind `json:"kind"`
	Active bool     `json:"active"`
	Volume float64  `json:"volume"`
}

// Track is an immutable snapshot of a playable item
type Track struct {
	ID              string  `json:"id,omitempty"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Album           string  `json:"album"`
	DurationSeconds float64 `json:"durationSeconds"`
	SourceTag       string  `json:"sourceTag,omitempty"`
	ArtworkRef      string  `json:"artworkRef,omitempty"`
	Format          string  `json:"format,omitempty"`
	Bitrate         string  `json:"bitrate,omitempty"`
	SampleRate      int     `json:"sampleRate,omitempty"`
	BitDepth        int     `json:"bitDepth,omitempty"`
	IsRadio         bool    `json:"isRadio,omitempty"`
	BackendTrackRef string  `json:"backendTrackRef,omitempty"`
	StreamURL       string  `json:"streamUrl,omitempty"`
}

// SameIdentity reports whether two tracks refer to the same item.
// Tracks are compared by id; when either id is missing title and artist are used.
func (t Track) SameIdentity(other Track) bool {
	if t.ID != "" && other.ID != "" {
		return t.ID == other.ID
	}
	return t.Title == other.Title && t.Artist == other.Artist
}

// Ref returns the reference used to address the track on the remote player
func (t Track) Ref() string {
	if t.BackendTrackRef != "" {
		return t.BackendTrackRef
	}
	if t.ID != "" {
		return t.ID
	}
	return t.StreamURL
}

// PlaybackState is the local view of the active player's transport and queue
type PlaybackState struct {
	CurrentTrack    *Track     `json:"currentTrack"`
	Queue           []Track    `json:"queue"`
	IsPlaying       bool       `json:"isPlaying"`
	PositionSeconds float64    `json:"positionSeconds"`
	Volume          float64    `json:"volume"`
	Shuffle         bool       `json:"shuffle"`
	Repeat          RepeatMode `json:"repeat"`
	// QueueIndex is the player-reported position of CurrentTrack, -1 when unknown
	QueueIndex int `json:"queueIndex"`
}

// Clone returns a deep copy so callers can never alias the live queue or track
func (s PlaybackState) Clone() PlaybackState {
	out := s
	if s.CurrentTrack != nil {
		t := *s.CurrentTrack
		out.CurrentTrack = &t
	}
	if s.Queue != nil {
		out.Queue = append([]Track(nil), s.Queue...)
	}
	return out
}

// CurrentIndex returns the queue position of CurrentTrack, or -1 when it is unknown or ambiguous.
// The reported QueueIndex wins when it still points at the current track; otherwise the
// track must match exactly one queue entry.
func (s PlaybackState) CurrentIndex() int {
	if s.CurrentTrack == nil {
		return -1
	}
	if s.QueueIndex >= 0 && s.QueueIndex < len(s.Queue) && s.Queue[s.QueueIndex].SameIdentity(*s.CurrentTrack) {
		return s.QueueIndex
	}
	found := -1
	for i, q := range s.Queue {
		if !q.SameIdentity(*s.CurrentTrack) {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = i
	}
	return found
}

// Status is a single poll result from the remote player
type Status struct {
	IsPlaying       bool
	PositionSeconds float64
	VolumePercent   int
	Shuffle         bool
	Repeat          RepeatMode
	CurrentTrack    *Track
	Playlist        []Track
	PlaylistIndex   int
}

// VolumeTargetKind names the backend owning the volume control
type VolumeTargetKind string

const (
	// TargetRemotePlayer routes volume to the player's own mixer
	TargetRemotePlayer VolumeTargetKind = "remote-player"
	// TargetHardwareDAC routes volume to the hardware DAC
	TargetHardwareDAC VolumeTargetKind = "hardware-dac"
	// TargetExternalAudioCore routes volume to the external audio core
	TargetExternalAudioCore VolumeTargetKind = "external-audio-core"
)

// VolumeTarget is the backend that currently receives setVolume calls
type VolumeTarget struct {
	Kind   VolumeTargetKind `json:"kind"`
	Handle string           `json:"handle,omitempty"`
}

// PendingVolumeChange is a volume request waiting out the debounce window
type PendingVolumeChange struct {
	RequestedPercent int
	IssuedAt         time.Time
}

// RadioStation is a favourite internet radio station
type RadioStation struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// Snapshot is the resume state written to the persistent store.
// It deliberately carries no current track.
type Snapshot struct {
	Queue           []Track    `json:"queue"`
	Volume          float64    `json:"volume"`
	Shuffle         bool       `json:"shuffle"`
	Repeat          RepeatMode `json:"repeat"`
	PositionSeconds float64    `json:"positionSeconds"`
}

// HistoryEntry records a track that started playing
type HistoryEntry struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"playedAt"`
}

// Artwork is cover art cached on disk for the current track
type Artwork struct {
	Ref          string `json:"ref"`
	CoverPath    string `json:"coverPath"`
	BackdropPath string `json:"backdropPath"`
}
