// Package server exposes the portal's HTTP/JSON surface.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kpretz/kid-safe-youtube/favorites"
	"github.com/kpretz/kid-safe-youtube/feed"
	"github.com/kpretz/kid-safe-youtube/youtube"
)

// defaultMaxResults bounds list endpoints when the request does not say.
const defaultMaxResults = 20

// Feeds is the aggregation surface the handlers consume.
type Feeds interface {
	Search(ctx context.Context, query string, maxResults int) []feed.VideoSummary
	ChannelVideos(ctx context.Context, channelID string, maxResults int, excludeShortForm bool) []feed.VideoSummary
	PlaylistVideos(ctx context.Context, playlistID string, maxResults int, requireEmbeddable bool) []feed.VideoSummary
	ChannelPlaylists(ctx context.Context, channelID string, maxResults int) []feed.PlaylistSummary
}

// Resolver turns an operator-supplied URL into a playlist or channel ref.
type Resolver interface {
	ResolveReference(ctx context.Context, raw string) (youtube.Ref, error)
}

// Server holds the route handlers' dependencies.
type Server struct {
	feeds    Feeds
	store    *favorites.Store
	history  *favorites.History
	resolver Resolver
	admin    AdminConfig
}

// New creates the server.
func New(feeds Feeds, store *favorites.Store, history *favorites.History, resolver Resolver, admin AdminConfig) *Server {
	return &Server{
		feeds:    feeds,
		store:    store,
		history:  history,
		resolver: resolver,
		admin:    admin,
	}
}

// Routes builds the route tree.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/home", s.handleHome)
		r.Get("/search", s.handleSearch)
		r.Get("/playlists/{id}/videos", s.handlePlaylistVideos)
		r.Get("/channels/{id}/videos", s.handleChannelVideos)
		r.Get("/channels/{id}/playlists", s.handleChannelPlaylists)

		r.Post("/history/{videoID}", s.handleRecordView)
		r.Get("/history", s.handleRecentHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Delete("/history/{videoID}", s.handleRemoveHistory)

		r.Post("/admin/login", s.handleAdminLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/admin/playlists", s.handleAddPlaylist)
			r.Delete("/admin/playlists/{id}", s.handleRemovePlaylist)
			r.Post("/admin/channels", s.handleAddChannel)
			r.Delete("/admin/channels/{id}", s.handleRemoveChannel)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "kid-safe-youtube",
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"playlists": snap.Playlists,
		"channels":  snap.Channels,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
