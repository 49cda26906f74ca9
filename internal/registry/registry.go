// Package registry owns the author catalog and each author's seen marker.
// The playback engine never touches it directly; callers hand the engine
// Registry.MarkSeen as its seen callback.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tessro/reel/internal/core"
	reelerrors "github.com/tessro/reel/internal/errors"
	"github.com/tessro/reel/internal/logger"
)

// Marker records whether an author's stories have been opened.
type Marker struct {
	AuthorID string    `json:"author_id"`
	Seen     bool      `json:"seen"`
	SeenAt   time.Time `json:"seen_at"`
}

// Store persists seen markers.
type Store interface {
	Load(ctx context.Context) ([]Marker, error)
	Save(ctx context.Context, m Marker) error
	Clear(ctx context.Context) error
}

// Entry pairs an author with its marker for listing.
type Entry struct {
	Author core.Author
	Marker Marker
}

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	authors []core.Author
	markers map[string]Marker
	store   Store
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock overrides time.Now for SeenAt stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a registry over authors and loads existing markers from store.
// Markers for authors missing from the catalog are kept but never listed.
func New(ctx context.Context, authors []core.Author, store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	r := &Registry{
		authors: make([]core.Author, len(authors)),
		markers: make(map[string]Marker),
		store:   store,
		log:     logger.Nop(),
		now:     time.Now,
	}
	copy(r.authors, authors)
	for _, opt := range opts {
		opt(r)
	}

	markers, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", reelerrors.ErrStoreUnavailable, err)
	}
	for _, m := range markers {
		r.markers[m.AuthorID] = m
	}
	return r, nil
}

// Authors returns every author, unseen first, keeping catalog order within
// each group.
func (r *Registry) Authors() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, len(r.authors))
	for i, a := range r.authors {
		m, ok := r.markers[a.ID]
		if !ok {
			m = Marker{AuthorID: a.ID}
		}
		entries[i] = Entry{Author: a, Marker: m}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return !entries[i].Marker.Seen && entries[j].Marker.Seen
	})
	return entries
}

// Len returns the number of authors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.authors)
}

// Get returns the author with the given ID.
func (r *Registry) Get(id string) (core.Author, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.authors {
		if a.ID == id {
			return a, true
		}
	}
	return core.Author{}, false
}

// Find looks an author up by ID or case-insensitive name.
func (r *Registry) Find(query string) (core.Author, error) {
	q := strings.TrimSpace(query)
	if a, ok := r.Get(q); ok {
		return a, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.authors {
		if strings.EqualFold(a.Name, q) {
			return a, nil
		}
	}
	return core.Author{}, fmt.Errorf("%w: %q", reelerrors.ErrAuthorNotFound, query)
}

// IsSeen reports whether the author's stories have been opened.
func (r *Registry) IsSeen(id string) bool {
	return r.Marker(id).Seen
}

// Marker returns the author's marker, unseen if none was recorded.
func (r *Registry) Marker(id string) Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.markers[id]; ok {
		return m
	}
	return Marker{AuthorID: id}
}

// MarkSeen flags an author as seen. It matches the playback engine's seen
// callback; storage failures are logged and the author stays unseen.
func (r *Registry) MarkSeen(id string) {
	if err := r.MarkSeenContext(context.Background(), id); err != nil {
		r.log.Warnf("persist seen marker for %s: %v", id, err)
	}
}

// MarkSeenContext flags an author as seen and persists the marker. Marking an
// already seen author is a no-op. The marker only flips once the store has
// accepted it, so a failed save is retried by the next call.
func (r *Registry) MarkSeenContext(ctx context.Context, id string) error {
	if r.IsSeen(id) {
		return nil
	}

	m := Marker{AuthorID: id, Seen: true, SeenAt: r.now().UTC()}
	if err := r.store.Save(ctx, m); err != nil {
		return err
	}

	r.mu.Lock()
	if prev, ok := r.markers[id]; !ok || !prev.Seen {
		r.markers[id] = m
	}
	r.mu.Unlock()

	r.log.Debugf("author %s marked seen", id)
	return nil
}

// Reset clears every seen marker.
func (r *Registry) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.markers = make(map[string]Marker)
	r.mu.Unlock()

	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear seen markers: %w", err)
	}
	return nil
}
