package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/services/slskd"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

type fakeSearcher struct {
	mu        sync.Mutex
	starts    atomic.Int32
	deletes   atomic.Int32
	queries   []string
	completed bool
	startErr  error
	deleteErr error
	delay     time.Duration
}

func (f *fakeSearcher) StartSearch(_ context.Context, query string) (string, error) {
	n := f.starts.Add(1)
	if f.startErr != nil {
		return "", f.startErr
	}
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return fmt.Sprintf("search-%d", n), nil
}

func (f *fakeSearcher) WaitForSearch(context.Context, string) (bool, error) {
	time.Sleep(f.delay)
	return f.completed, nil
}

func (f *fakeSearcher) SearchResponses(_ context.Context, id string) ([]slskd.SearchResponse, error) {
	return []slskd.SearchResponse{{Username: "peer-" + id}}, nil
}

func (f *fakeSearcher) DeleteSearch(context.Context, string) error {
	f.deletes.Add(1)
	return f.deleteErr
}

// fakeGrouper returns one result per response, keyed by query and peer
type fakeGrouper struct{}

func (fakeGrouper) Group(query string, responses []slskd.SearchResponse) []models.GroupedSearchResult {
	results := make([]models.GroupedSearchResult, 0, len(responses))
	for _, r := range responses {
		results = append(results, models.GroupedSearchResult{
			ID:            query + "|" + r.Username,
			PeerIdentity:  r.Username,
			DirectoryPath: `Music\` + query,
		})
	}
	return results
}

func newSearchController(t *testing.T, searcher SearchProvider, ttl time.Duration) *SearchController {
	t.Helper()
	return NewSearchController(&config.Config{CacheTTL: ttl}, searcher, fakeGrouper{},
		utils.NewLoggerWithOutput("error", io.Discard))
}

func TestGetOrSearchResultsIsIdempotent(t *testing.T) {
	searcher := &fakeSearcher{completed: true}
	c := newSearchController(t, searcher, time.Minute)

	first, err := c.GetOrSearchResults(context.Background(), "  Radiohead OK Computer ")
	require.NoError(t, err)
	second, err := c.GetOrSearchResults(context.Background(), "radiohead ok computer")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), searcher.starts.Load())
	assert.Equal(t, int32(1), searcher.deletes.Load())
	assert.Equal(t, []string{"Radiohead OK Computer"}, searcher.queries)
}

func TestGetOrSearchResultsPartialIsNotAnError(t *testing.T) {
	searcher := &fakeSearcher{completed: false}
	c := newSearchController(t, searcher, time.Minute)

	results, err := c.GetOrSearchResults(context.Background(), "album")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGetOrSearchResultsPropagatesBackendError(t *testing.T) {
	searcher := &fakeSearcher{startErr: slskd.ErrUnavailable}
	c := newSearchController(t, searcher, time.Minute)

	_, err := c.GetOrSearchResults(context.Background(), "album")
	assert.ErrorIs(t, err, slskd.ErrUnavailable)

	// Failures are not cached
	_, err = c.GetOrSearchResults(context.Background(), "album")
	assert.Error(t, err)
	assert.Equal(t, int32(2), searcher.starts.Load())
}

func TestDeleteSearchErrorIsSwallowed(t *testing.T) {
	searcher := &fakeSearcher{completed: true, deleteErr: errors.New("gone")}
	c := newSearchController(t, searcher, time.Minute)

	_, err := c.GetOrSearchResults(context.Background(), "album")
	assert.NoError(t, err)
}

func TestConcurrentIdenticalSearchesShareOneSession(t *testing.T) {
	searcher := &fakeSearcher{completed: true, delay: 100 * time.Millisecond}
	c := newSearchController(t, searcher, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrSearchResults(context.Background(), "Same Query")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), searcher.starts.Load())
}

func TestSearchCacheExpiry(t *testing.T) {
	searcher := &fakeSearcher{completed: true}
	c := newSearchController(t, searcher, 50*time.Millisecond)

	_, err := c.GetOrSearchResults(context.Background(), "album")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	_, err = c.GetOrSearchResults(context.Background(), "album")
	require.NoError(t, err)

	assert.Equal(t, int32(2), searcher.starts.Load())
}

func TestResultCacheIsIndependentOfSearchCache(t *testing.T) {
	searcher := &fakeSearcher{completed: true}
	c := newSearchController(t, searcher, time.Minute)

	results, err := c.GetOrSearchResults(context.Background(), "first")
	require.NoError(t, err)
	c.CacheResultsForDownload(results)

	c.searches.Flush()
	_, err = c.GetOrSearchResults(context.Background(), "second")
	require.NoError(t, err)

	for _, r := range results {
		got, ok := c.GetCachedResult(r.ID)
		require.True(t, ok)
		assert.Equal(t, r, got)
	}

	_, ok := c.GetCachedResult("missing")
	assert.False(t, ok)
}

func TestResultCacheExpiry(t *testing.T) {
	c := newSearchController(t, &fakeSearcher{}, 50*time.Millisecond)
	c.CacheResultsForDownload([]models.GroupedSearchResult{{ID: "a"}})

	_, ok := c.GetCachedResult("a")
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)
	_, ok = c.GetCachedResult("a")
	assert.False(t, ok)

	c.CleanExpired()
	assert.Equal(t, 0, c.Stats().CachedResults)
}

func TestBuildSearchQuery(t *testing.T) {
	assert.Equal(t, "free text", BuildSearchQuery(" free text ", "artist", "album"))
	assert.Equal(t, "Radiohead OK Computer", BuildSearchQuery("", "Radiohead", "OK Computer"))
	assert.Equal(t, "Radiohead", BuildSearchQuery("", "Radiohead", ""))
	assert.Equal(t, "", BuildSearchQuery("", "", "OK Computer"))
	assert.Equal(t, "", BuildSearchQuery("  ", "", ""))
}
