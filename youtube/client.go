package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/kpretz/kid-safe-youtube/retry"
)

// pageSize is the platform page maximum for search requests.
const pageSize = 50

// Client wraps the YouTube Data API v3 with typed results, per-call
// timeouts and bounded retries.
type Client struct {
	service  *youtube.Service
	retryCfg retry.Config
	timeout  time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithRetryConfig overrides the default retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a YouTube Data API v3 client using an API key.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: api key required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	c := &Client{
		service:  service,
		retryCfg: retry.DefaultConfig(),
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do runs fn with the per-call timeout and bounded retry applied.
func (c *Client) do(ctx context.Context, fn func(context.Context) error) error {
	return retry.Do(ctx, c.retryCfg, apiErrorClassifier, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := fn(callCtx); err != nil {
			if callCtx.Err() != nil && ctx.Err() == nil {
				return ErrNetworkTimeout
			}
			return err
		}
		return nil
	})
}

// Search performs a strict-safe free-text video search.
func (c *Client) Search(ctx context.Context, query string, max int64) (Page, error) {
	var page Page
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.Search.List([]string{"snippet"}).
			Q(query).
			Type("video").
			SafeSearch("strict").
			MaxResults(max).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}
		page = searchPage(resp)
		return nil
	})
	return page, err
}

// ChannelVideos fetches one page of a channel's videos, newest first.
// An empty pageToken requests the first page.
func (c *Client) ChannelVideos(ctx context.Context, channelID, pageToken string) (Page, error) {
	var page Page
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.Search.List([]string{"snippet"}).
			ChannelId(channelID).
			Type("video").
			Order("date").
			SafeSearch("strict").
			MaxResults(pageSize).
			PageToken(pageToken).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}
		page = searchPage(resp)
		return nil
	})
	return page, err
}

// VideoDetails fetches duration, embeddability and snippet fields for the
// given video ids in a single call. Ids missing from the response are
// absent from the returned map.
func (c *Client) VideoDetails(ctx context.Context, ids []string) (map[string]Details, error) {
	details := make(map[string]Details, len(ids))
	if len(ids) == 0 {
		return details, nil
	}

	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.Videos.List([]string{"snippet", "contentDetails", "status"}).
			Id(ids...).
			MaxResults(int64(len(ids))).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}

		for _, item := range resp.Items {
			if item.Id == "" {
				continue
			}
			d := Details{}
			if item.Snippet != nil {
				d.Title = item.Snippet.Title
				d.Channel = item.Snippet.ChannelTitle
				d.Thumbnails = thumbs(item.Snippet.Thumbnails)
			}
			if item.ContentDetails != nil {
				d.Duration = item.ContentDetails.Duration
			}
			if item.Status != nil {
				d.Embeddable = item.Status.Embeddable
			}
			details[item.Id] = d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// PlaylistItems fetches up to max entries of a playlist, in playlist order.
// Entries without a resolvable video id are skipped.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string, max int64) ([]Video, error) {
	var videos []Video
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(max).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}

		videos = videos[:0]
		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			v := Video{
				ID:          item.Snippet.ResourceId.VideoId,
				Title:       item.Snippet.Title,
				Channel:     item.Snippet.ChannelTitle,
				Description: item.Snippet.Description,
				Thumbnails:  thumbs(item.Snippet.Thumbnails),
			}
			if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				v.Published = t
			}
			videos = append(videos, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// ChannelPlaylists fetches up to max of a channel's public playlists.
func (c *Client) ChannelPlaylists(ctx context.Context, channelID string, max int64) ([]Playlist, error) {
	var playlists []Playlist
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.Playlists.List([]string{"snippet"}).
			ChannelId(channelID).
			MaxResults(max).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}

		playlists = playlists[:0]
		for _, item := range resp.Items {
			if item.Id == "" || item.Snippet == nil {
				continue
			}
			playlists = append(playlists, Playlist{
				ID:          item.Id,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				Thumbnails:  thumbs(item.Snippet.Thumbnails),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

// searchPage converts a search response into a Page, skipping items
// without a video id.
func searchPage(resp *youtube.SearchListResponse) Page {
	page := Page{NextPageToken: resp.NextPageToken}
	if resp.PageInfo != nil {
		page.TotalResults = resp.PageInfo.TotalResults
	}
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		v := Video{
			ID:          item.Id.VideoId,
			Title:       item.Snippet.Title,
			Channel:     item.Snippet.ChannelTitle,
			Description: item.Snippet.Description,
			Thumbnails:  thumbs(item.Snippet.Thumbnails),
		}
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			v.Published = t
		}
		page.Items = append(page.Items, v)
	}
	return page
}

// thumbs flattens the API thumbnail set into the sizes the portal uses.
func thumbs(td *youtube.ThumbnailDetails) Thumbnails {
	var t Thumbnails
	if td == nil {
		return t
	}
	if td.Default != nil {
		t.Default = td.Default.Url
	}
	if td.Medium != nil {
		t.Medium = td.Medium.Url
	}
	if td.High != nil {
		t.High = td.High.Url
	}
	return t
}

// apiErrorClassifier determines if an API error is retryable.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidURL):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 429 || gerr.Code >= 500:
			return true
		case gerr.Code == 403:
			// Quota and rate-limit rejections come back as 403.
			msg := gerr.Error()
			return strings.Contains(msg, "quotaExceeded") || strings.Contains(msg, "rateLimitExceeded")
		default:
			return false
		}
	}

	// Network-level failures default to retryable.
	return true
}
