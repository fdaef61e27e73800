package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	if len(q) > 200 {
		writeError(w, http.StatusBadRequest, "q is too long")
		return
	}

	videos := s.feeds.Search(r.Context(), q, maxParam(r, defaultMaxResults))
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

func (s *Server) handlePlaylistVideos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	requireEmbeddable := r.URL.Query().Get("embeddable") != "false"

	videos := s.feeds.PlaylistVideos(r.Context(), id, maxParam(r, 50), requireEmbeddable)
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

func (s *Server) handleChannelVideos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	excludeShortForm := r.URL.Query().Get("shorts") != "include"

	videos := s.feeds.ChannelVideos(r.Context(), id, maxParam(r, defaultMaxResults), excludeShortForm)
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

func (s *Server) handleChannelPlaylists(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	playlists := s.feeds.ChannelPlaylists(r.Context(), id, maxParam(r, defaultMaxResults))
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// maxParam reads the max query parameter, bounded to 1..50.
func maxParam(r *http.Request, def int) int {
	v := r.URL.Query().Get("max")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > 50 {
		return 50
	}
	return n
}
