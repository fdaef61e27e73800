package favorites

import (
	"context"
	"log"
	"time"

	"github.com/kpretz/kid-safe-youtube/youtube"
)

// maxHistory caps the watch history length.
const maxHistory = 50

// Placeholder values used when a detail lookup cannot enrich a view.
const (
	unknownTitle   = "Unknown Title"
	unknownChannel = "Unknown Channel"
)

// DetailLookup fetches per-video enrichment fields. *youtube.Client
// satisfies it.
type DetailLookup interface {
	VideoDetails(ctx context.Context, ids []string) (map[string]youtube.Details, error)
}

// History is the bounded, deduplicated recency list layered on top of the
// store.
type History struct {
	store   *Store
	details DetailLookup // nil disables enrichment lookups
}

// NewHistory creates the watch history manager.
func NewHistory(store *Store, details DetailLookup) *History {
	return &History{store: store, details: details}
}

// RecordView records that a video was watched. Missing enrichment fields
// trigger exactly one detail lookup; if it fails, placeholders are used
// rather than failing the call. A re-watched video moves to the front
// with a fresh timestamp instead of appearing twice.
func (h *History) RecordView(ctx context.Context, videoID, title, channel, thumbnail string) WatchEntry {
	if h.details != nil && (title == "" || channel == "" || thumbnail == "") {
		details, err := h.details.VideoDetails(ctx, []string{videoID})
		if err != nil {
			log.Printf("favorites: history lookup %s: %v", videoID, err)
		} else if d, ok := details[videoID]; ok {
			if title == "" {
				title = d.Title
			}
			if channel == "" {
				channel = d.Channel
			}
			if thumbnail == "" {
				thumbnail = d.Thumbnails.BestURL()
			}
		}
	}

	if title == "" {
		title = unknownTitle
	}
	if channel == "" {
		channel = unknownChannel
	}

	entry := WatchEntry{
		VideoID:   videoID,
		Title:     title,
		Channel:   channel,
		Thumbnail: thumbnail,
		WatchedAt: time.Now().UTC(),
	}

	s := h.store
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]WatchEntry, 0, len(s.data.History)+1)
	kept = append(kept, entry)
	for _, e := range s.data.History {
		if e.VideoID != videoID {
			kept = append(kept, e)
		}
	}
	if len(kept) > maxHistory {
		kept = kept[:maxHistory]
	}
	s.data.History = kept
	s.save(ctx)

	return entry
}

// Recent returns the n most recent entries, most-recent-first. An n past
// the end returns the full history.
func (h *History) Recent(n int) []WatchEntry {
	s := h.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(s.data.History) {
		n = len(s.data.History)
	}
	return append([]WatchEntry(nil), s.data.History[:n]...)
}

// Remove deletes the matching entry if present; removing an absent id is
// a no-op. The snapshot is persisted either way.
func (h *History) Remove(ctx context.Context, videoID string) {
	s := h.store
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.data.History[:0]
	for _, e := range s.data.History {
		if e.VideoID != videoID {
			kept = append(kept, e)
		}
	}
	s.data.History = kept
	s.save(ctx)
}

// Clear empties the watch history.
func (h *History) Clear(ctx context.Context) {
	s := h.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.History = []WatchEntry{}
	s.save(ctx)
}
