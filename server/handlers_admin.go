package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kpretz/kid-safe-youtube/favorites"
	"github.com/kpretz/kid-safe-youtube/youtube"
)

func (s *Server) handleAddPlaylist(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.resolveBody(w, r, youtube.RefPlaylist, "playlist")
	if !ok {
		return
	}

	entry := favorites.PlaylistRef{
		ID:          ref.ID,
		Title:       ref.Title,
		Description: ref.Description,
		Thumbnail:   ref.Thumbnail,
	}
	if err := s.store.AddPlaylist(r.Context(), entry); err != nil {
		if errors.Is(err, favorites.ErrDuplicate) {
			writeError(w, http.StatusConflict, "playlist is already in the favorites")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not save playlist")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleAddChannel(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.resolveBody(w, r, youtube.RefChannel, "channel")
	if !ok {
		return
	}

	entry := favorites.ChannelRef{
		ID:          ref.ID,
		Title:       ref.Title,
		Description: ref.Description,
		Thumbnail:   ref.Thumbnail,
	}
	if err := s.store.AddChannel(r.Context(), entry); err != nil {
		if errors.Is(err, favorites.ErrDuplicate) {
			writeError(w, http.StatusConflict, "channel is already in the favorites")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not save channel")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRemovePlaylist(w http.ResponseWriter, r *http.Request) {
	s.store.RemovePlaylist(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveChannel(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveChannel(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// resolveBody reads the {"url": ...} body and resolves it, enforcing that
// the resolved reference has the expected kind.
func (s *Server) resolveBody(w http.ResponseWriter, r *http.Request, want youtube.RefKind, wantName string) (youtube.Ref, bool) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		writeError(w, http.StatusBadRequest, "request body must contain a url")
		return youtube.Ref{}, false
	}

	ref, err := s.resolver.ResolveReference(r.Context(), body.URL)
	switch {
	case errors.Is(err, youtube.ErrInvalidURL):
		writeError(w, http.StatusUnprocessableEntity, "url is not a recognized playlist or channel link")
		return youtube.Ref{}, false
	case errors.Is(err, youtube.ErrNotFound):
		writeError(w, http.StatusUnprocessableEntity, "no "+wantName+" exists at that url")
		return youtube.Ref{}, false
	case err != nil:
		writeError(w, http.StatusBadGateway, "could not resolve url")
		return youtube.Ref{}, false
	}

	if ref.Kind != want {
		writeError(w, http.StatusUnprocessableEntity, "url does not point at a "+wantName)
		return youtube.Ref{}, false
	}
	return ref, true
}
