// Package syncer mirrors the favorites snapshot to a remote configuration
// endpoint, so a redeploy picks the curated set back up from its
// environment.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/kpretz/kid-safe-youtube/favorites"
)

// DefaultEnvKey is the environment entry that carries the snapshot.
const DefaultEnvKey = "FAVORITES_DATA"

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the remote endpoint coordinates. Leaving Token or
// ServiceID empty disables remote sync entirely; pushes then degrade to
// manual mode.
type Config struct {
	BaseURL   string
	Token     string
	ServiceID string
	EnvKey    string
	Timeout   time.Duration
}

// envVar is one remote configuration entry.
type envVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Syncer performs best-effort read-modify-write updates of the single
// environment entry holding the snapshot token. Writes are serialized
// through an internal mutex so concurrent admin sessions cannot
// interleave their read-modify-write cycles within this process.
type Syncer struct {
	cfg  Config
	http HTTPClient

	mu sync.Mutex
	// lastRevision is the snapshot revision this process last wrote
	// remotely, used to detect another writer's update.
	lastRevision string
}

// Option configures the Syncer.
type Option func(*Syncer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(s *Syncer) { s.http = c }
}

// New creates a Syncer.
func New(cfg Config, opts ...Option) *Syncer {
	if cfg.EnvKey == "" {
		cfg.EnvKey = DefaultEnvKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	s := &Syncer{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether remote sync is configured.
func (s *Syncer) Enabled() bool {
	return s.cfg.Token != "" && s.cfg.ServiceID != ""
}

// Push mirrors the encoded snapshot to the remote endpoint. Any missing
// configuration, HTTP failure or auth failure degrades to manual mode:
// the token is surfaced in the log for out-of-band application. The
// returned error reports degradation caused by a remote failure; it is
// advisory and never reflects on the durability of the local save.
func (s *Syncer) Push(ctx context.Context, token string) error {
	if !s.Enabled() {
		s.manual(token)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vars, err := s.fetchEnvVars(ctx)
	if err != nil {
		s.manual(token)
		return fmt.Errorf("syncer: fetch remote config: %w", err)
	}

	s.warnOnForeignWrite(vars)

	// Replace the snapshot entry, dropping stale duplicates.
	replaced := false
	out := make([]envVar, 0, len(vars)+1)
	for _, v := range vars {
		if v.Key == s.cfg.EnvKey {
			if !replaced {
				out = append(out, envVar{Key: s.cfg.EnvKey, Value: token})
				replaced = true
			}
			continue
		}
		out = append(out, v)
	}
	if !replaced {
		out = append(out, envVar{Key: s.cfg.EnvKey, Value: token})
	}

	if err := s.putEnvVars(ctx, out); err != nil {
		s.manual(token)
		return fmt.Errorf("syncer: write remote config: %w", err)
	}

	if c, err := favorites.Decode(token); err == nil {
		s.lastRevision = c.Revision
	}
	log.Printf("syncer: snapshot applied to %s", s.cfg.ServiceID)
	return nil
}

// warnOnForeignWrite flags a remote snapshot that this process did not
// write, which means another admin session pushed since our last write
// and is about to be overwritten.
func (s *Syncer) warnOnForeignWrite(vars []envVar) {
	if s.lastRevision == "" {
		return
	}
	for _, v := range vars {
		if v.Key != s.cfg.EnvKey {
			continue
		}
		c, err := favorites.Decode(v.Value)
		if err != nil {
			return
		}
		if c.Revision != "" && c.Revision != s.lastRevision {
			log.Printf("syncer: remote snapshot revision %s is not ours (%s); overwriting another writer's update", c.Revision, s.lastRevision)
		}
		return
	}
}

// manual surfaces the token to the operator instead of applying it.
func (s *Syncer) manual(token string) {
	log.Printf("syncer: manual mode - set %s to the following value:\n%s", s.cfg.EnvKey, token)
}

func (s *Syncer) envVarsURL() string {
	return fmt.Sprintf("%s/v1/services/%s/env-vars", s.cfg.BaseURL, s.cfg.ServiceID)
}

func (s *Syncer) fetchEnvVars(ctx context.Context) ([]envVar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.envVarsURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var vars []envVar
	if err := json.Unmarshal(body, &vars); err != nil {
		return nil, fmt.Errorf("parse env vars: %w", err)
	}
	return vars, nil
}

func (s *Syncer) putEnvVars(ctx context.Context, vars []envVar) error {
	body, err := json.Marshal(vars)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.envVarsURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
