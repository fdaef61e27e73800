// Package favorites owns the curated playlist/channel set and the watch
// history, persisted as a single snapshot to a local file and mirrored to
// a remote configuration endpoint.
package favorites

import "time"

// PlaylistRef is a curated playlist entry. Immutable once resolved except
// for the lazily-filled thumbnail fields.
type PlaylistRef struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	VideoThumbnail string `json:"videoThumbnail,omitempty"`
}

// ChannelRef is a curated channel entry.
type ChannelRef struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	VideoThumbnail string `json:"videoThumbnail,omitempty"`
}

// WatchEntry is one recently-viewed video.
type WatchEntry struct {
	VideoID   string    `json:"videoId"`
	Title     string    `json:"title"`
	Channel   string    `json:"channel"`
	Thumbnail string    `json:"thumbnail"`
	WatchedAt time.Time `json:"watchedAt"`
}

// Collection is the full persisted favorites snapshot. Ids are unique
// within Playlists and within Channels independently; History is ordered
// most-recent-first, capped at 50, with unique video ids.
type Collection struct {
	// Revision changes on every save and is used to detect lost updates
	// between concurrent writers of the remote snapshot.
	Revision  string       `json:"revision,omitempty"`
	Playlists []PlaylistRef `json:"playlists"`
	Channels  []ChannelRef  `json:"channels"`
	History   []WatchEntry  `json:"watch_history"`
}

// emptyCollection returns a collection with non-nil slices so the JSON
// snapshot always carries all three arrays.
func emptyCollection() Collection {
	return Collection{
		Playlists: []PlaylistRef{},
		Channels:  []ChannelRef{},
		History:   []WatchEntry{},
	}
}

// normalize replaces nil slices after decoding.
func normalize(c Collection) Collection {
	if c.Playlists == nil {
		c.Playlists = []PlaylistRef{}
	}
	if c.Channels == nil {
		c.Channels = []ChannelRef{}
	}
	if c.History == nil {
		c.History = []WatchEntry{}
	}
	return c
}

// clone deep-copies a collection so readers never share backing arrays
// with the store.
func clone(c Collection) Collection {
	out := c
	out.Playlists = append([]PlaylistRef(nil), c.Playlists...)
	out.Channels = append([]ChannelRef(nil), c.Channels...)
	out.History = append([]WatchEntry(nil), c.History...)
	return out
}
