// Package feed turns raw paginated YouTube API responses into bounded,
// filtered, display-ready video and playlist lists.
package feed

import (
	"context"
	"fmt"
	"log"

	"github.com/kpretz/kid-safe-youtube/youtube"
)

// shortFormMaxSeconds is the duration threshold at or below which a video
// is classified as short-form and excluded from regular feeds.
const shortFormMaxSeconds = 60

// Platform is the upstream API surface the aggregator consumes.
type Platform interface {
	Search(ctx context.Context, query string, max int64) (youtube.Page, error)
	ChannelVideos(ctx context.Context, channelID, pageToken string) (youtube.Page, error)
	VideoDetails(ctx context.Context, ids []string) (map[string]youtube.Details, error)
	PlaylistItems(ctx context.Context, playlistID string, max int64) ([]youtube.Video, error)
	ChannelPlaylists(ctx context.Context, channelID string, max int64) ([]youtube.Playlist, error)
}

// VideoSummary is a display-ready video entry. It is transient and never
// persisted.
type VideoSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	Thumbnail       string `json:"thumbnail"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	Embeddable      bool   `json:"embeddable,omitempty"`
}

// PlaylistSummary is a display-ready playlist entry.
type PlaylistSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// Aggregator produces bounded, filtered, ordered lists from the platform.
// Upstream failures degrade to partial or empty results; no list operation
// returns an error.
type Aggregator struct {
	platform Platform
	cache    *Cache
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithCache attaches a feed-page cache. A nil cache is ignored.
func WithCache(c *Cache) Option {
	return func(a *Aggregator) { a.cache = c }
}

// New creates an Aggregator over the given platform client.
func New(platform Platform, opts ...Option) *Aggregator {
	a := &Aggregator{platform: platform}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search runs a strict-safe free-text search and maps the first page of
// results to display summaries.
func (a *Aggregator) Search(ctx context.Context, query string, maxResults int) []VideoSummary {
	if maxResults <= 0 {
		return nil
	}

	page, err := a.platform.Search(ctx, query, int64(maxResults))
	if err != nil {
		log.Printf("feed: search %q: %v", query, err)
		return nil
	}

	out := make([]VideoSummary, 0, len(page.Items))
	for _, v := range keepDisplayable(page.Items) {
		out = append(out, summarize(v))
		if len(out) == maxResults {
			break
		}
	}
	return out
}

// ChannelVideos lists a channel's most recent videos, newest first,
// paginating upstream until maxResults non-short-form videos have been
// accumulated or the channel is exhausted. Any upstream error ends the
// loop with whatever has been accumulated so far.
func (a *Aggregator) ChannelVideos(ctx context.Context, channelID string, maxResults int, excludeShortForm bool) []VideoSummary {
	if maxResults <= 0 {
		return nil
	}

	cacheKey := fmt.Sprintf("feed:channel:%s:%d:%t", channelID, maxResults, excludeShortForm)
	var cached []VideoSummary
	if a.cache.get(ctx, cacheKey, &cached) {
		return cached
	}

	var out []VideoSummary
	pageToken := ""
	for {
		page, err := a.platform.ChannelVideos(ctx, channelID, pageToken)
		if err != nil {
			log.Printf("feed: channel %s page fetch: %v", channelID, err)
			break
		}

		kept := keepDisplayable(page.Items)

		var details map[string]youtube.Details
		if excludeShortForm && len(kept) > 0 {
			details, err = a.platform.VideoDetails(ctx, videoIDs(kept))
			if err != nil {
				log.Printf("feed: channel %s duration lookup: %v", channelID, err)
				break
			}
		}

		for _, v := range kept {
			if excludeShortForm && isShortForm(details[v.ID].Duration) {
				continue
			}
			s := summarize(v)
			if d, ok := details[v.ID]; ok {
				if secs, parsed := parseDurationSeconds(d.Duration); parsed {
					s.DurationSeconds = secs
				}
			}
			out = append(out, s)
			if len(out) == maxResults {
				break
			}
		}

		if len(out) >= maxResults || page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if len(out) > maxResults {
		out = out[:maxResults]
	}
	a.cache.set(ctx, cacheKey, out)
	return out
}

// PlaylistVideos lists up to maxResults entries of a playlist, in playlist
// order. Removed and id-less entries are dropped. When requireEmbeddable
// is set, non-embeddable videos are dropped; videos whose status could not
// be fetched are kept, mirroring the lenient short-form default.
func (a *Aggregator) PlaylistVideos(ctx context.Context, playlistID string, maxResults int, requireEmbeddable bool) []VideoSummary {
	if maxResults <= 0 {
		return nil
	}

	cacheKey := fmt.Sprintf("feed:playlist:%s:%d:%t", playlistID, maxResults, requireEmbeddable)
	var cached []VideoSummary
	if a.cache.get(ctx, cacheKey, &cached) {
		return cached
	}

	items, err := a.platform.PlaylistItems(ctx, playlistID, int64(maxResults))
	if err != nil {
		log.Printf("feed: playlist %s fetch: %v", playlistID, err)
		return nil
	}

	kept := keepDisplayable(items)

	var details map[string]youtube.Details
	if requireEmbeddable && len(kept) > 0 {
		details, err = a.platform.VideoDetails(ctx, videoIDs(kept))
		if err != nil {
			log.Printf("feed: playlist %s status lookup: %v", playlistID, err)
			details = nil
		}
	}

	out := make([]VideoSummary, 0, len(kept))
	for _, v := range kept {
		s := summarize(v)
		if requireEmbeddable && details != nil {
			d, ok := details[v.ID]
			if ok && !d.Embeddable {
				continue
			}
			s.Embeddable = !ok || d.Embeddable
		}
		out = append(out, s)
		if len(out) == maxResults {
			break
		}
	}
	a.cache.set(ctx, cacheKey, out)
	return out
}

// ChannelPlaylists lists up to maxResults of a channel's playlists.
func (a *Aggregator) ChannelPlaylists(ctx context.Context, channelID string, maxResults int) []PlaylistSummary {
	if maxResults <= 0 {
		return nil
	}

	playlists, err := a.platform.ChannelPlaylists(ctx, channelID, int64(maxResults))
	if err != nil {
		log.Printf("feed: channel %s playlists: %v", channelID, err)
		return nil
	}

	out := make([]PlaylistSummary, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, PlaylistSummary{
			ID:          p.ID,
			Title:       p.Title,
			Description: Summarize(p.Description),
			Thumbnail:   p.Thumbnails.BestURL(),
		})
		if len(out) == maxResults {
			break
		}
	}
	return out
}

// removedTitles marks playlist entries whose video no longer exists.
var removedTitles = map[string]bool{
	"Deleted video": true,
	"Private video": true,
}

// keepDisplayable drops items without a resolvable video id and removed
// placeholders, preserving order.
func keepDisplayable(items []youtube.Video) []youtube.Video {
	kept := make([]youtube.Video, 0, len(items))
	for _, v := range items {
		if v.ID == "" || removedTitles[v.Title] {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// isShortForm classifies a raw ISO 8601 duration. Unparsable durations
// default to not short-form.
func isShortForm(duration string) bool {
	secs, ok := parseDurationSeconds(duration)
	return ok && secs <= shortFormMaxSeconds
}

func videoIDs(items []youtube.Video) []string {
	ids := make([]string, 0, len(items))
	for _, v := range items {
		ids = append(ids, v.ID)
	}
	return ids
}

func summarize(v youtube.Video) VideoSummary {
	return VideoSummary{
		ID:          v.ID,
		Title:       v.Title,
		Channel:     v.Channel,
		Thumbnail:   v.Thumbnails.BestURL(),
		Description: Summarize(v.Description),
	}
}
