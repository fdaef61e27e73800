package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/kpretz/kid-safe-youtube/storage"
)

// Sentinel errors for store mutations.
var (
	// ErrDuplicate indicates the id is already present in the collection.
	ErrDuplicate = errors.New("favorites: already present")
)

// Syncer mirrors an encoded snapshot to a remote configuration endpoint.
// Push is best-effort: a returned error signals degradation, not failure
// of the save that triggered it.
type Syncer interface {
	Push(ctx context.Context, token string) error
}

// Store owns the canonical in-memory collection and writes it through on
// every mutation. The local file write is the durability guarantee; the
// remote push is advisory and attempted independently.
type Store struct {
	mu     sync.RWMutex
	path   string
	syncer Syncer // nil disables remote sync
	data   Collection
}

// Open creates the store, loading the initial collection from the best
// available source: the externally supplied encoded snapshot, then the
// local file, then an empty default. Decode failures at a source are
// logged and the next source is tried; Open itself never fails.
func Open(path, encoded string, syncer Syncer) *Store {
	return &Store{
		path:   path,
		syncer: syncer,
		data:   loadInitial(encoded, path),
	}
}

func loadInitial(encoded, path string) Collection {
	if encoded != "" {
		c, err := Decode(encoded)
		if err == nil {
			log.Printf("favorites: loaded snapshot from environment")
			return c
		}
		log.Printf("favorites: environment snapshot unusable: %v", err)
	}

	if data, err := os.ReadFile(path); err == nil {
		var c Collection
		if err := json.Unmarshal(data, &c); err == nil {
			log.Printf("favorites: loaded snapshot from %s", path)
			return normalize(c)
		}
		log.Printf("favorites: file snapshot unusable: %v", err)
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("favorites: read %s: %v", path, err)
	}

	return emptyCollection()
}

// Snapshot returns a deep copy of the current collection.
func (s *Store) Snapshot() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.data)
}

// AddPlaylist appends a resolved playlist to the curated set. Returns
// ErrDuplicate, without mutating anything, if the id is already present.
func (s *Store) AddPlaylist(ctx context.Context, ref PlaylistRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data.Playlists {
		if p.ID == ref.ID {
			return ErrDuplicate
		}
	}

	s.data.Playlists = append(s.data.Playlists, ref)
	s.save(ctx)
	return nil
}

// AddChannel appends a resolved channel to the curated set. Returns
// ErrDuplicate, without mutating anything, if the id is already present.
func (s *Store) AddChannel(ctx context.Context, ref ChannelRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.data.Channels {
		if c.ID == ref.ID {
			return ErrDuplicate
		}
	}

	s.data.Channels = append(s.data.Channels, ref)
	s.save(ctx)
	return nil
}

// RemovePlaylist removes the matching playlist. Removing an absent id is
// not an error; the snapshot is persisted either way.
func (s *Store) RemovePlaylist(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.data.Playlists[:0]
	for _, p := range s.data.Playlists {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.data.Playlists = kept
	s.save(ctx)
}

// RemoveChannel removes the matching channel. Removing an absent id is
// not an error; the snapshot is persisted either way.
func (s *Store) RemoveChannel(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.data.Channels[:0]
	for _, c := range s.data.Channels {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.data.Channels = kept
	s.save(ctx)
}

// save persists the collection: the file write and the remote push are
// attempted independently, and failures in either are logged, never
// propagated. Callers must hold the write lock.
func (s *Store) save(ctx context.Context) {
	s.data.Revision = uuid.NewString()

	if err := s.writeFile(); err != nil {
		log.Printf("favorites: write %s: %v", s.path, err)
	}

	if s.syncer != nil {
		token, err := Encode(s.data)
		if err != nil {
			log.Printf("favorites: encode for sync: %v", err)
			return
		}
		if err := s.syncer.Push(ctx, token); err != nil {
			log.Printf("favorites: remote sync degraded: %v", err)
		}
	}
}

func (s *Store) writeFile() error {
	w, err := storage.NewAtomicWriter(s.path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.data); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}
