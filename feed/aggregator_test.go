package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kpretz/kid-safe-youtube/youtube"
)

// fakePlatform serves canned pages and records which lookups were made.
type fakePlatform struct {
	pages       []youtube.Page
	pageErrs    []error
	details     map[string]youtube.Details
	detailsErr  error
	playlist    []youtube.Video
	playlistErr error
	channelPls  []youtube.Playlist
	searchPage  youtube.Page
	searchErr   error

	pageCalls    int
	detailsCalls int
}

func (f *fakePlatform) Search(ctx context.Context, query string, max int64) (youtube.Page, error) {
	return f.searchPage, f.searchErr
}

func (f *fakePlatform) ChannelVideos(ctx context.Context, channelID, pageToken string) (youtube.Page, error) {
	i := f.pageCalls
	f.pageCalls++
	if i < len(f.pageErrs) && f.pageErrs[i] != nil {
		return youtube.Page{}, f.pageErrs[i]
	}
	if i >= len(f.pages) {
		return youtube.Page{}, nil
	}
	return f.pages[i], nil
}

func (f *fakePlatform) VideoDetails(ctx context.Context, ids []string) (map[string]youtube.Details, error) {
	f.detailsCalls++
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	out := make(map[string]youtube.Details, len(ids))
	for _, id := range ids {
		if d, ok := f.details[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (f *fakePlatform) PlaylistItems(ctx context.Context, playlistID string, max int64) ([]youtube.Video, error) {
	return f.playlist, f.playlistErr
}

func (f *fakePlatform) ChannelPlaylists(ctx context.Context, channelID string, max int64) ([]youtube.Playlist, error) {
	return f.channelPls, nil
}

func vid(id string) youtube.Video {
	return youtube.Video{
		ID:      id,
		Title:   "Video " + id,
		Channel: "Test Channel",
		Thumbnails: youtube.Thumbnails{
			Medium: "https://i.ytimg.com/" + id + "/medium.jpg",
		},
	}
}

func ids(summaries []VideoSummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.ID)
	}
	return out
}

func TestChannelVideos_ExcludesShortForm(t *testing.T) {
	platform := &fakePlatform{
		pages: []youtube.Page{
			{Items: []youtube.Video{vid("a"), vid("b"), vid("c"), vid("d")}},
		},
		details: map[string]youtube.Details{
			"a": {Duration: "PT5M"},
			"b": {Duration: "PT45S"}, // short
			"c": {Duration: "PT1M"},  // short, exactly 60s
			"d": {Duration: "PT2M10S"},
		},
	}

	agg := New(platform)
	got := agg.ChannelVideos(context.Background(), "UC1", 10, true)

	want := []string{"a", "d"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("ChannelVideos() ids = %v, want %v", ids(got), want)
	}
	for _, s := range got {
		if s.DurationSeconds > 0 && s.DurationSeconds <= 60 {
			t.Errorf("short-form video %s leaked into result", s.ID)
		}
	}
}

func TestChannelVideos_PaginatesUntilFull(t *testing.T) {
	platform := &fakePlatform{
		pages: []youtube.Page{
			{Items: []youtube.Video{vid("a"), vid("b")}, NextPageToken: "page2"},
			{Items: []youtube.Video{vid("c"), vid("d")}, NextPageToken: "page3"},
			{Items: []youtube.Video{vid("e")}},
		},
		details: map[string]youtube.Details{
			"a": {Duration: "PT5M"},
			"b": {Duration: "PT30S"}, // short
			"c": {Duration: "PT5M"},
			"d": {Duration: "PT5M"},
			"e": {Duration: "PT5M"},
		},
	}

	agg := New(platform)
	got := agg.ChannelVideos(context.Background(), "UC1", 3, true)

	// Page order must be preserved across page boundaries.
	want := []string{"a", "c", "d"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("ChannelVideos() ids = %v, want %v", ids(got), want)
	}
	// Target reached on page 2; page 3 must not be fetched.
	if platform.pageCalls != 2 {
		t.Errorf("page fetches = %d, want 2", platform.pageCalls)
	}
}

func TestChannelVideos_UpstreamErrorDegradesToPartial(t *testing.T) {
	platform := &fakePlatform{
		pages: []youtube.Page{
			{Items: []youtube.Video{vid("a"), vid("b")}, NextPageToken: "page2"},
		},
		pageErrs: []error{nil, errors.New("upstream 503")},
		details: map[string]youtube.Details{
			"a": {Duration: "PT5M"},
			"b": {Duration: "PT5M"},
		},
	}

	agg := New(platform)
	got := agg.ChannelVideos(context.Background(), "UC1", 10, true)

	want := []string{"a", "b"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("ChannelVideos() ids = %v, want %v", ids(got), want)
	}
}

func TestChannelVideos_DetailsErrorDegradesToPartial(t *testing.T) {
	platform := &fakePlatform{
		pages: []youtube.Page{
			{Items: []youtube.Video{vid("a")}, NextPageToken: "page2"},
		},
		detailsErr: errors.New("quotaExceeded"),
	}

	agg := New(platform)
	got := agg.ChannelVideos(context.Background(), "UC1", 10, true)

	if len(got) != 0 {
		t.Errorf("ChannelVideos() returned %d items, want 0", len(got))
	}
}

func TestChannelVideos_DropsPlaceholdersWithoutCounting(t *testing.T) {
	deleted := youtube.Video{ID: "gone", Title: "Deleted video"}
	private := youtube.Video{ID: "hidden", Title: "Private video"}
	noID := youtube.Video{Title: "mystery"}

	platform := &fakePlatform{
		pages: []youtube.Page{
			{Items: []youtube.Video{deleted, vid("a"), noID, private, vid("b")}},
		},
	}

	agg := New(platform)
	got := agg.ChannelVideos(context.Background(), "UC1", 10, false)

	want := []string{"a", "b"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("ChannelVideos() ids = %v, want %v", ids(got), want)
	}
}

func TestChannelVideos_UnparsableDurationIncluded(t *testing.T) {
	platform := &fakePlatform{
		pages: []youtube.Page{
			{Items: []youtube.Video{vid("a")}},
		},
		details: map[string]youtube.Details{
			"a": {Duration: "not-a-duration"},
		},
	}

	agg := New(platform)
	got := agg.ChannelVideos(context.Background(), "UC1", 10, true)

	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("ChannelVideos() = %v, want the unparsable-duration video included", ids(got))
	}
}

func TestChannelVideos_NoDetailLookupWhenShortsAllowed(t *testing.T) {
	platform := &fakePlatform{
		pages: []youtube.Page{
			{Items: []youtube.Video{vid("a"), vid("b")}},
		},
	}

	agg := New(platform)
	agg.ChannelVideos(context.Background(), "UC1", 10, false)

	if platform.detailsCalls != 0 {
		t.Errorf("detail lookups = %d, want 0", platform.detailsCalls)
	}
}

func TestPlaylistVideos_FiltersNonEmbeddable(t *testing.T) {
	platform := &fakePlatform{
		playlist: []youtube.Video{vid("a"), vid("b"), vid("c")},
		details: map[string]youtube.Details{
			"a": {Embeddable: true},
			"b": {Embeddable: false},
			"c": {Embeddable: true},
		},
	}

	agg := New(platform)
	got := agg.PlaylistVideos(context.Background(), "PL1", 10, true)

	want := []string{"a", "c"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("PlaylistVideos() ids = %v, want %v", ids(got), want)
	}
}

func TestPlaylistVideos_DropsRemovedEntries(t *testing.T) {
	platform := &fakePlatform{
		playlist: []youtube.Video{
			{ID: "gone", Title: "Deleted video"},
			vid("a"),
			{Title: "no id"},
		},
	}

	agg := New(platform)
	got := agg.PlaylistVideos(context.Background(), "PL1", 10, false)

	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("PlaylistVideos() ids = %v, want [a]", ids(got))
	}
}

func TestPlaylistVideos_UpstreamErrorReturnsEmpty(t *testing.T) {
	platform := &fakePlatform{playlistErr: errors.New("upstream down")}

	agg := New(platform)
	got := agg.PlaylistVideos(context.Background(), "PL1", 10, false)

	if len(got) != 0 {
		t.Errorf("PlaylistVideos() returned %d items, want 0", len(got))
	}
}

func TestPlaylistVideos_StatusLookupFailureKeepsCandidates(t *testing.T) {
	platform := &fakePlatform{
		playlist:   []youtube.Video{vid("a"), vid("b")},
		detailsErr: errors.New("quotaExceeded"),
	}

	agg := New(platform)
	got := agg.PlaylistVideos(context.Background(), "PL1", 10, true)

	want := []string{"a", "b"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("PlaylistVideos() ids = %v, want %v", ids(got), want)
	}
}

func TestChannelPlaylists(t *testing.T) {
	platform := &fakePlatform{
		channelPls: []youtube.Playlist{
			{
				ID:          "PL1",
				Title:       "Science",
				Description: strings.Repeat("x", 150),
				Thumbnails:  youtube.Thumbnails{Default: "d", Medium: "m", High: "h"},
			},
		},
	}

	agg := New(platform)
	got := agg.ChannelPlaylists(context.Background(), "UC1", 10)

	if len(got) != 1 {
		t.Fatalf("ChannelPlaylists() returned %d items, want 1", len(got))
	}
	if got[0].Thumbnail != "m" {
		t.Errorf("thumbnail = %q, want medium", got[0].Thumbnail)
	}
	if len([]rune(got[0].Description)) != 103 {
		t.Errorf("description not summarized: len = %d", len(got[0].Description))
	}
}

func TestSearch_MapsAndBounds(t *testing.T) {
	platform := &fakePlatform{
		searchPage: youtube.Page{
			Items: []youtube.Video{vid("a"), vid("b"), vid("c")},
		},
	}

	agg := New(platform)
	got := agg.Search(context.Background(), "dinosaurs", 2)

	want := []string{"a", "b"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("Search() ids = %v, want %v", ids(got), want)
	}
	if got[0].Thumbnail == "" {
		t.Error("Search() did not resolve thumbnails")
	}
}

func TestSearch_UpstreamErrorReturnsEmpty(t *testing.T) {
	platform := &fakePlatform{searchErr: errors.New("upstream down")}

	agg := New(platform)
	if got := agg.Search(context.Background(), "dinosaurs", 5); len(got) != 0 {
		t.Errorf("Search() returned %d items, want 0", len(got))
	}
}
