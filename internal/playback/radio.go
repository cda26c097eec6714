package playback

import (
	"strings"

	"github.com/genricoloni/zonesync/internal/domain"
)

const radioIDPrefix = "radio:"

// stationIndex maps normalised stream URLs to favourite stations
type stationIndex map[string]domain.RadioStation

func newStationIndex(stations []domain.RadioStation) stationIndex {
	idx := make(stationIndex, len(stations))
	for _, st := range stations {
		if key := normalizeStreamURL(st.URL); key != "" {
			idx[key] = st
		}
	}
	return idx
}

// label relabels a track whose stream is a known station with the station identity
func (idx stationIndex) label(t domain.Track) domain.Track {
	if len(idx) == 0 {
		return t
	}
	st, ok := idx[normalizeStreamURL(t.StreamURL)]
	if !ok {
		st, ok = idx[normalizeStreamURL(t.BackendTrackRef)]
	}
	if !ok {
		return t
	}

	t.ID = radioIDPrefix + normalizeStreamURL(st.URL)
	t.Title = st.Name
	t.Artist = "Radio"
	t.Album = ""
	t.IsRadio = true
	if st.ArtworkURL != "" {
		t.ArtworkRef = st.ArtworkURL
	}
	return t
}

func normalizeStreamURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	for _, scheme := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, scheme)
	}
	return strings.TrimRight(u, "/")
}
