package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video id is required")
		return
	}

	// Enrichment fields are optional; missing ones trigger a lookup.
	var body struct {
		Title     string `json:"title"`
		Channel   string `json:"channel"`
		Thumbnail string `json:"thumbnail"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	entry := s.history.RecordView(r.Context(), videoID, body.Title, body.Channel, body.Thumbnail)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRecentHistory(w http.ResponseWriter, r *http.Request) {
	n := 50
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": s.history.Recent(n)})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.history.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveHistory(w http.ResponseWriter, r *http.Request) {
	s.history.Remove(r.Context(), chi.URLParam(r, "videoID"))
	w.WriteHeader(http.StatusNoContent)
}
