package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	reelerrors "github.com/tessro/reel/internal/errors"
)

type countingStore struct {
	*MemoryStore
	saves int
	err   error

	// failNext makes only the next n saves fail
	failNext int
}

func (s *countingStore) Save(ctx context.Context, m Marker) error {
	s.saves++
	if s.err != nil {
		return s.err
	}
	if s.failNext > 0 {
		s.failNext--
		return errors.New("database is locked")
	}
	return s.MemoryStore.Save(ctx, m)
}

func fixedClock() time.Time {
	return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Author.Name
	}
	return out
}

func TestAuthorsUnseenFirst(t *testing.T) {
	r, err := New(context.Background(), DefaultCatalog(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pierre", "Paul", "Clara", "Rebecca"}, names(r.Authors()))

	r.MarkSeen("pierre")
	r.MarkSeen("clara")

	assert.Equal(t, []string{"Paul", "Rebecca", "Pierre", "Clara"}, names(r.Authors()))
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore()}
	calls := 0
	clock := func() time.Time {
		calls++
		return fixedClock().Add(time.Duration(calls) * time.Hour)
	}
	r, err := New(context.Background(), DefaultCatalog(), store, WithClock(clock))
	require.NoError(t, err)

	require.NoError(t, r.MarkSeenContext(context.Background(), "paul"))
	first := r.Marker("paul")
	require.NoError(t, r.MarkSeenContext(context.Background(), "paul"))
	r.MarkSeen("paul")

	assert.True(t, r.IsSeen("paul"))
	assert.Equal(t, first, r.Marker("paul"))
	assert.Equal(t, 1, store.saves)
}

func TestMarkSeenStoreFailureLeavesUnseen(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore(), err: errors.New("disk full")}
	r, err := New(context.Background(), DefaultCatalog(), store)
	require.NoError(t, err)

	r.MarkSeen("paul")

	assert.False(t, r.IsSeen("paul"))
	assert.Equal(t, []string{"Pierre", "Paul", "Clara", "Rebecca"}, names(r.Authors()))
}

func TestMarkSeenRetriesAfterFailedSave(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: NewMemoryStore(), failNext: 1}
	r, err := New(ctx, DefaultCatalog(), store)
	require.NoError(t, err)

	assert.Error(t, r.MarkSeenContext(ctx, "clara"))
	assert.False(t, r.IsSeen("clara"))

	require.NoError(t, r.MarkSeenContext(ctx, "clara"))
	assert.True(t, r.IsSeen("clara"))
	assert.Equal(t, 2, store.saves)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "clara", saved[0].AuthorID)
	assert.True(t, saved[0].Seen)
}

func TestMarkersSurviveReload(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "seen.json"))
	require.NoError(t, err)

	r, err := New(ctx, DefaultCatalog(), store, WithClock(fixedClock))
	require.NoError(t, err)
	r.MarkSeen("rebecca")

	reloaded, err := New(ctx, DefaultCatalog(), store)
	require.NoError(t, err)
	assert.True(t, reloaded.IsSeen("rebecca"))
	assert.Equal(t, fixedClock(), reloaded.Marker("rebecca").SeenAt)
	assert.False(t, reloaded.IsSeen("paul"))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r, err := New(ctx, DefaultCatalog(), store)
	require.NoError(t, err)
	r.MarkSeen("paul")

	require.NoError(t, r.Reset(ctx))

	assert.False(t, r.IsSeen("paul"))
	markers, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestFind(t *testing.T) {
	r, err := New(context.Background(), DefaultCatalog(), nil)
	require.NoError(t, err)

	a, err := r.Find("clara")
	require.NoError(t, err)
	assert.Equal(t, "Clara", a.Name)
	assert.Len(t, a.Stories, 2)

	a, err = r.Find(" REBECCA ")
	require.NoError(t, err)
	assert.Equal(t, "rebecca", a.ID)

	_, err = r.Find("nobody")
	assert.True(t, errors.Is(err, reelerrors.ErrAuthorNotFound))
}

type brokenStore struct{ MemoryStore }

func (b *brokenStore) Load(context.Context) ([]Marker, error) {
	return nil, errors.New("corrupt")
}

func TestNewFailsOnUnreadableStore(t *testing.T) {
	_, err := New(context.Background(), DefaultCatalog(), &brokenStore{})
	assert.True(t, errors.Is(err, reelerrors.ErrStoreUnavailable))
}
