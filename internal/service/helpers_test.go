package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scribbles/internal/avatar"
	"scribbles/internal/clock"
	"scribbles/internal/queue"
	"scribbles/internal/repository"
	"scribbles/internal/storage"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

var errDiskFull = errors.New("disk full")

// flakyStore wraps a real store and fails writes while failSave is set.
type flakyStore struct {
	storage.Store
	mu       sync.Mutex
	failSave bool
	failKey  string
	saves    int
}

func (f *flakyStore) Save(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave || (f.failKey != "" && key == f.failKey) {
		return errDiskFull
	}
	f.saves++
	return f.Store.Save(ctx, key, data)
}

func (f *flakyStore) setFailSave(fail bool) {
	f.mu.Lock()
	f.failSave = fail
	f.mu.Unlock()
}

// setFailKey makes writes to key alone fail; "" clears it.
func (f *flakyStore) setFailKey(key string) {
	f.mu.Lock()
	f.failKey = key
	f.mu.Unlock()
}

func (f *flakyStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BlogEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.BlogEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, event)
	return "1-0", nil
}

func (p *recordingPublisher) published() []queue.BlogEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.BlogEvent(nil), p.events...)
}

// =============================================================================
// FIXTURES
// =============================================================================

var testNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *flakyStore
	clock     *clock.StubClock
	publisher *recordingPublisher
	accounts  *AccountService
	posts     *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, &flakyStore{Store: storage.NewMemoryStore("")})
}

// newFixtureOn builds both stores over store, as a process restart would.
func newFixtureOn(t *testing.T, store *flakyStore) *fixture {
	t.Helper()
	ctx := context.Background()
	avatars := avatar.NewDiceBear("")
	clk := clock.NewStubClock(testNow)
	pub := &recordingPublisher{}

	accounts, err := NewAccountService(ctx,
		repository.NewAccountRepository(store),
		repository.NewSessionRepository(store),
		PlainPasswords{}, avatars, zap.NewNop())
	require.NoError(t, err)

	posts, err := NewPostService(ctx,
		repository.NewPostRepository(store),
		accounts, avatars, clk, pub, zap.NewNop())
	require.NoError(t, err)

	return &fixture{
		store:     store,
		clock:     clk,
		publisher: pub,
		accounts:  accounts,
		posts:     posts,
	}
}

// sequentialIDs replaces the uuid generator with "id-1", "id-2", ...
func sequentialIDs(s *PostService) {
	var n int
	s.newID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}
