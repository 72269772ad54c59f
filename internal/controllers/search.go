package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/metrics"
	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/services/slskd"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

var tracer = otel.Tracer("github.com/BlieNuckel/tunarr/internal/controllers")

// ErrResultNotFound is returned for result ids that are absent or expired
var ErrResultNotFound = errors.New("result not found")

// SearchProvider drives search sessions on the P2P backend
type SearchProvider interface {
	StartSearch(ctx context.Context, query string) (string, error)
	WaitForSearch(ctx context.Context, id string) (bool, error)
	SearchResponses(ctx context.Context, id string) ([]slskd.SearchResponse, error)
	DeleteSearch(ctx context.Context, id string) error
}

// ResultGrouper deduplicates raw peer responses into candidate releases
type ResultGrouper interface {
	Group(query string, responses []slskd.SearchResponse) []models.GroupedSearchResult
}

// SearchStats reports cache occupancy, including entries expired but not yet swept
type SearchStats struct {
	CachedSearches int `json:"cached_searches"`
	CachedResults  int `json:"cached_results"`
}

// SearchController runs searches against slskd and caches their grouped results
type SearchController struct {
	searcher SearchProvider
	grouper  ResultGrouper
	searches *cache.Cache // normalized query -> []models.GroupedSearchResult
	results  *cache.Cache // result id -> models.GroupedSearchResult
	flight   singleflight.Group
	logger   *logrus.Logger
}

// NewSearchController creates a new search controller
func NewSearchController(cfg *config.Config, searcher SearchProvider, grouper ResultGrouper, logger *logrus.Logger) *SearchController {
	// No janitor goroutines: expiry is handled lazily and by the scheduler sweep
	return &SearchController{
		searcher: searcher,
		grouper:  grouper,
		searches: cache.New(cfg.CacheTTL, 0),
		results:  cache.New(cfg.CacheTTL, 0),
		logger:   logger,
	}
}

// BuildSearchQuery picks the free-text query of an indexer request: q when
// present, else "artist album", else artist. An empty result means no query.
func BuildSearchQuery(q, artist, album string) string {
	q, artist, album = strings.TrimSpace(q), strings.TrimSpace(artist), strings.TrimSpace(album)
	switch {
	case q != "":
		return q
	case artist != "" && album != "":
		return artist + " " + album
	default:
		return artist
	}
}

// GetOrSearchResults returns the grouped results for query, from cache when an
// unexpired entry exists. Identical concurrent searches share one backend round trip.
func (c *SearchController) GetOrSearchResults(ctx context.Context, query string) ([]models.GroupedSearchResult, error) {
	key := utils.Normalize(query)
	c.CleanExpired()

	if cached, ok := c.searches.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		c.logger.WithField("query", key).Debug("Search cache hit")
		return cached.([]models.GroupedSearchResult), nil
	}
	metrics.CacheMissesTotal.Inc()

	v, err, shared := c.flight.Do(key, func() (any, error) {
		if cached, ok := c.searches.Get(key); ok {
			return cached, nil
		}
		// The session runs to completion even if the requesting client goes away
		results, err := c.search(context.WithoutCancel(ctx), strings.TrimSpace(query))
		if err != nil {
			return nil, err
		}
		c.searches.Set(key, results, cache.DefaultExpiration)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.WithField("query", key).Debug("Joined in-flight search")
	}
	return v.([]models.GroupedSearchResult), nil
}

func (c *SearchController) search(ctx context.Context, query string) ([]models.GroupedSearchResult, error) {
	ctx, span := tracer.Start(ctx, "SearchController.search")
	defer span.End()
	span.SetAttributes(attribute.String("search.query", query))

	start := time.Now()
	defer func() { metrics.SearchDuration.Observe(time.Since(start).Seconds()) }()

	fail := func(operation string, err error) ([]models.GroupedSearchResult, error) {
		metrics.BackendErrorsTotal.WithLabelValues(operation).Inc()
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithError(err).WithField("query", query).Error("Search failed")
		return nil, err
	}

	id, err := c.searcher.StartSearch(ctx, query)
	if err != nil {
		return fail("start_search", err)
	}
	defer func() {
		if err := c.searcher.DeleteSearch(ctx, id); err != nil {
			c.logger.WithError(err).WithField("search_id", id).Debug("Failed to delete search")
		}
	}()

	completed, err := c.searcher.WaitForSearch(ctx, id)
	if err != nil {
		return fail("wait_search", err)
	}

	responses, err := c.searcher.SearchResponses(ctx, id)
	if err != nil {
		return fail("search_responses", err)
	}

	outcome := "completed"
	if !completed {
		outcome = "partial"
		c.logger.WithFields(logrus.Fields{
			"query":     query,
			"responses": len(responses),
		}).Warn("Search did not complete in time, using partial results")
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	results := c.grouper.Group(query, responses)
	span.SetAttributes(
		attribute.Int("search.responses", len(responses)),
		attribute.Int("search.results", len(results)),
	)

	c.logger.WithFields(logrus.Fields{
		"query":     query,
		"responses": len(responses),
		"results":   len(results),
		"duration":  time.Since(start).Round(time.Millisecond).String(),
	}).Info("Search completed")

	return results, nil
}

// CacheResultsForDownload (re)inserts each result under its id with a fresh TTL,
// independent of the search cache entry it came from.
func (c *SearchController) CacheResultsForDownload(results []models.GroupedSearchResult) {
	for _, r := range results {
		c.results.Set(r.ID, r, cache.DefaultExpiration)
	}
}

// GetCachedResult returns the cached result with the given id
func (c *SearchController) GetCachedResult(id string) (models.GroupedSearchResult, bool) {
	v, ok := c.results.Get(id)
	if !ok {
		return models.GroupedSearchResult{}, false
	}
	return v.(models.GroupedSearchResult), true
}

// CleanExpired evicts expired entries from both caches
func (c *SearchController) CleanExpired() {
	c.searches.DeleteExpired()
	c.results.DeleteExpired()
}

// Stats returns the current cache sizes
func (c *SearchController) Stats() SearchStats {
	return SearchStats{
		CachedSearches: c.searches.ItemCount(),
		CachedResults:  c.results.ItemCount(),
	}
}
