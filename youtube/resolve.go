package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// channelIDRegex matches YouTube channel IDs (UC followed by 22 base64 chars).
var channelIDRegex = regexp.MustCompile(`UC[a-zA-Z0-9_-]{22}`)

// Reference is the parsed form of an operator-supplied URL, before any
// API lookup has happened.
type Reference struct {
	Kind RefKind
	// ID holds the playlist or channel id. For handle URLs it holds the
	// bare handle without the leading "@".
	ID       string
	IsHandle bool
}

// ParseReference recognizes the three supported URL shapes: a playlist
// URL carrying a "list" parameter, a /channel/<id> URL, and an @handle
// (bare or as a youtube.com/@handle URL). Anything else is ErrInvalidURL.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	// Bare @handle
	if strings.HasPrefix(raw, "@") {
		handle := strings.TrimPrefix(raw, "@")
		if handle == "" {
			return Reference{}, fmt.Errorf("%w: empty handle", ErrInvalidURL)
		}
		return Reference{Kind: RefChannel, ID: handle, IsHandle: true}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	if list := u.Query().Get("list"); list != "" {
		return Reference{Kind: RefPlaylist, ID: list}, nil
	}

	if strings.Contains(u.Path, "/channel/") {
		rest := u.Path[strings.Index(u.Path, "/channel/")+len("/channel/"):]
		id := strings.Split(rest, "/")[0]
		if channelIDRegex.MatchString(id) {
			return Reference{Kind: RefChannel, ID: channelIDRegex.FindString(id)}, nil
		}
		return Reference{}, fmt.Errorf("%w: malformed channel id in %q", ErrInvalidURL, raw)
	}

	if i := strings.Index(u.Path, "/@"); i >= 0 {
		handle := strings.Split(u.Path[i+2:], "/")[0]
		if handle != "" {
			return Reference{Kind: RefChannel, ID: handle, IsHandle: true}, nil
		}
	}

	return Reference{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
}

// ResolveReference parses an operator-supplied URL and fetches the
// title, description and thumbnail of the playlist or channel it names.
func (c *Client) ResolveReference(ctx context.Context, raw string) (Ref, error) {
	ref, err := ParseReference(raw)
	if err != nil {
		return Ref{}, err
	}

	switch {
	case ref.Kind == RefPlaylist:
		return c.playlistRef(ctx, ref.ID)
	case ref.IsHandle:
		channelID, err := c.searchChannelByHandle(ctx, ref.ID)
		if err != nil {
			return Ref{}, err
		}
		return c.channelRef(ctx, channelID)
	default:
		return c.channelRef(ctx, ref.ID)
	}
}

// playlistRef looks up a playlist by id.
func (c *Client) playlistRef(ctx context.Context, playlistID string) (Ref, error) {
	var ref Ref
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.Playlists.List([]string{"snippet"}).
			Id(playlistID).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("%w: playlist %s", ErrNotFound, playlistID)
		}

		item := resp.Items[0]
		ref = Ref{Kind: RefPlaylist, ID: item.Id}
		if item.Snippet != nil {
			ref.Title = item.Snippet.Title
			ref.Description = item.Snippet.Description
			ref.Thumbnail = thumbs(item.Snippet.Thumbnails).BestURL()
		}
		return nil
	})
	return ref, err
}

// channelRef looks up a channel by id.
func (c *Client) channelRef(ctx context.Context, channelID string) (Ref, error) {
	var ref Ref
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.Channels.List([]string{"snippet"}).
			Id(channelID).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return fmt.Errorf("%w: channel %s", ErrNotFound, channelID)
		}

		item := resp.Items[0]
		ref = Ref{Kind: RefChannel, ID: item.Id}
		if item.Snippet != nil {
			ref.Title = item.Snippet.Title
			ref.Description = item.Snippet.Description
			ref.Thumbnail = thumbs(item.Snippet.Thumbnails).BestURL()
		}
		return nil
	})
	return ref, err
}

// searchChannelByHandle resolves a handle (@username) to a channel id.
func (c *Client) searchChannelByHandle(ctx context.Context, handle string) (string, error) {
	var channelID string
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.service.Search.List([]string{"id"}).
			Q(handle).
			Type("channel").
			MaxResults(1).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 || resp.Items[0].Id == nil || resp.Items[0].Id.ChannelId == "" {
			return fmt.Errorf("%w: handle @%s", ErrNotFound, handle)
		}
		channelID = resp.Items[0].Id.ChannelId
		return nil
	})
	return channelID, err
}
