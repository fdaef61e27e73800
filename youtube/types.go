// Package youtube provides a typed client for the YouTube Data API v3.
package youtube

import (
	"errors"
	"time"
)

// Sentinel errors for platform operations.
var (
	ErrNotFound       = errors.New("youtube: not found")
	ErrInvalidURL     = errors.New("youtube: unrecognized url")
	ErrNetworkTimeout = errors.New("youtube: network timeout")
)

// Thumbnails holds the thumbnail URLs reported for an item, keyed by size.
// Any of the fields may be empty.
type Thumbnails struct {
	Default string `json:"default,omitempty"`
	Medium  string `json:"medium,omitempty"`
	High    string `json:"high,omitempty"`
}

// BestURL picks the display thumbnail. Medium is preferred, then default,
// then high; an empty string means no thumbnail was available.
func (t Thumbnails) BestURL() string {
	switch {
	case t.Medium != "":
		return t.Medium
	case t.Default != "":
		return t.Default
	case t.High != "":
		return t.High
	}
	return ""
}

// Video is one search or playlist result item.
type Video struct {
	ID          string
	Title       string
	Channel     string
	Description string
	Published   time.Time
	Thumbnails  Thumbnails
}

// Page is one page of paginated video results. NextPageToken is empty
// when the upstream has no more pages.
type Page struct {
	Items         []Video
	NextPageToken string
	TotalResults  int64
}

// Details carries the per-video enrichment fields fetched from videos.list.
type Details struct {
	Title      string
	Channel    string
	Thumbnails Thumbnails
	// Duration is the raw ISO 8601 duration string, e.g. "PT1M30S".
	Duration   string
	Embeddable bool
}

// Playlist is a playlist summary from playlists.list.
type Playlist struct {
	ID          string
	Title       string
	Description string
	Thumbnails  Thumbnails
}

// RefKind distinguishes what a resolved URL points at.
type RefKind int

const (
	RefPlaylist RefKind = iota
	RefChannel
)

// Ref is a resolved playlist or channel reference, ready to be added to
// the curated set.
type Ref struct {
	Kind        RefKind
	ID          string
	Title       string
	Description string
	Thumbnail   string
}
