package syncer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kpretz/kid-safe-youtube/favorites"
)

// fakeRemote is an httptest-backed remote config endpoint.
type fakeRemote struct {
	vars     []envVar
	getCode  int
	putCode  int
	getCalls int
	putCalls int
}

func (f *fakeRemote) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			f.getCalls++
			if f.getCode != 0 {
				w.WriteHeader(f.getCode)
				return
			}
			json.NewEncoder(w).Encode(f.vars)
		case http.MethodPut:
			f.putCalls++
			if f.putCode != 0 {
				w.WriteHeader(f.putCode)
				return
			}
			body, _ := io.ReadAll(r.Body)
			var vars []envVar
			if err := json.Unmarshal(body, &vars); err != nil {
				t.Errorf("PUT body not valid JSON: %v", err)
			}
			f.vars = vars
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newTestSyncer(t *testing.T, remote *fakeRemote) (*Syncer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(remote.handler(t))
	t.Cleanup(srv.Close)

	s := New(Config{
		BaseURL:   srv.URL,
		Token:     "secret-token",
		ServiceID: "srv-123",
	})
	return s, srv
}

func encodeSnapshot(t *testing.T, c favorites.Collection) string {
	t.Helper()
	token, err := favorites.Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestPush_ReplacesExistingEntry(t *testing.T) {
	remote := &fakeRemote{
		vars: []envVar{
			{Key: "YOUTUBE_API_KEY", Value: "key"},
			{Key: DefaultEnvKey, Value: "old-token"},
		},
	}
	s, _ := newTestSyncer(t, remote)

	token := encodeSnapshot(t, favorites.Collection{Revision: "r1"})
	if err := s.Push(context.Background(), token); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	if len(remote.vars) != 2 {
		t.Fatalf("remote entries = %d, want 2", len(remote.vars))
	}
	found := false
	for _, v := range remote.vars {
		if v.Key == DefaultEnvKey {
			found = true
			if v.Value != token {
				t.Errorf("snapshot entry = %q, want new token", v.Value)
			}
		}
	}
	if !found {
		t.Error("snapshot entry missing after push")
	}
}

func TestPush_RemovesStaleDuplicates(t *testing.T) {
	remote := &fakeRemote{
		vars: []envVar{
			{Key: DefaultEnvKey, Value: "stale-1"},
			{Key: "PORT", Value: "8080"},
			{Key: DefaultEnvKey, Value: "stale-2"},
		},
	}
	s, _ := newTestSyncer(t, remote)

	token := encodeSnapshot(t, favorites.Collection{Revision: "r1"})
	if err := s.Push(context.Background(), token); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	count := 0
	for _, v := range remote.vars {
		if v.Key == DefaultEnvKey {
			count++
		}
	}
	if count != 1 {
		t.Errorf("snapshot entries after push = %d, want 1", count)
	}
}

func TestPush_AppendsWhenEntryAbsent(t *testing.T) {
	remote := &fakeRemote{
		vars: []envVar{{Key: "PORT", Value: "8080"}},
	}
	s, _ := newTestSyncer(t, remote)

	token := encodeSnapshot(t, favorites.Collection{Revision: "r1"})
	if err := s.Push(context.Background(), token); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	if len(remote.vars) != 2 {
		t.Errorf("remote entries = %d, want 2", len(remote.vars))
	}
}

func TestPush_UnconfiguredIsManualMode(t *testing.T) {
	s := New(Config{BaseURL: "https://api.example.com"})

	if s.Enabled() {
		t.Error("Enabled() = true with no credentials")
	}
	if err := s.Push(context.Background(), "token"); err != nil {
		t.Errorf("Push() in manual mode error = %v, want nil", err)
	}
}

func TestPush_FetchFailureDegradesToManual(t *testing.T) {
	remote := &fakeRemote{getCode: http.StatusInternalServerError}
	s, _ := newTestSyncer(t, remote)

	if err := s.Push(context.Background(), "token"); err == nil {
		t.Error("Push() error = nil, want degradation error")
	}
	if remote.putCalls != 0 {
		t.Errorf("PUT attempted after failed GET")
	}
}

func TestPush_WriteFailureDegradesToManual(t *testing.T) {
	remote := &fakeRemote{
		vars:    []envVar{},
		putCode: http.StatusInternalServerError,
	}
	s, _ := newTestSyncer(t, remote)

	token := encodeSnapshot(t, favorites.Collection{Revision: "r1"})
	if err := s.Push(context.Background(), token); err == nil {
		t.Error("Push() error = nil, want degradation error")
	}
}

func TestPush_AuthFailureDegradesToManual(t *testing.T) {
	remote := &fakeRemote{}
	srv := httptest.NewServer(remote.handler(t))
	t.Cleanup(srv.Close)

	s := New(Config{
		BaseURL:   srv.URL,
		Token:     "wrong-token",
		ServiceID: "srv-123",
	})

	if err := s.Push(context.Background(), "token"); err == nil {
		t.Error("Push() error = nil, want degradation error")
	}
}

func TestPush_TracksRevisionAcrossPushes(t *testing.T) {
	remote := &fakeRemote{vars: []envVar{}}
	s, _ := newTestSyncer(t, remote)
	ctx := context.Background()

	if err := s.Push(ctx, encodeSnapshot(t, favorites.Collection{Revision: "r1"})); err != nil {
		t.Fatalf("first Push() error = %v", err)
	}
	if s.lastRevision != "r1" {
		t.Errorf("lastRevision = %q, want r1", s.lastRevision)
	}

	// A second push against a remote still holding r1 is our own write;
	// it must succeed and advance the revision.
	if err := s.Push(ctx, encodeSnapshot(t, favorites.Collection{Revision: "r2"})); err != nil {
		t.Fatalf("second Push() error = %v", err)
	}
	if s.lastRevision != "r2" {
		t.Errorf("lastRevision = %q, want r2", s.lastRevision)
	}
}
