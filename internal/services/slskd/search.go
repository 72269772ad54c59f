package slskd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// waitGrace is added to the slskd search timeout to bound WaitForSearch
	waitGrace = 5 * time.Second

	pollInitialInterval = 250 * time.Millisecond
	pollMaxInterval     = 2 * time.Second

	responseLimit = 200
	fileLimit     = 10000
)

var errSearchPending = errors.New("search still in progress")

func searchPath(id string) string {
	return "/searches/" + url.PathEscape(id)
}

// StartSearch starts a search session and returns its id
func (c *Client) StartSearch(ctx context.Context, query string) (string, error) {
	if err := c.searchLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to start search: %w", err)
	}

	req := SearchRequest{
		ID:            uuid.NewString(),
		SearchText:    query,
		SearchTimeout: int(c.searchTimeout / time.Millisecond),
		ResponseLimit: responseLimit,
		FileLimit:     fileLimit,
	}

	var search Search
	if err := c.do(ctx, http.MethodPost, "/searches", req, &search); err != nil {
		return "", fmt.Errorf("failed to start search: %w", err)
	}
	if search.ID == "" {
		search.ID = req.ID
	}

	c.logger.WithFields(logrus.Fields{
		"search_id": search.ID,
		"query":     query,
	}).Debug("Started slskd search")

	return search.ID, nil
}

// GetSearch returns the current state of a search session
func (c *Client) GetSearch(ctx context.Context, id string) (*Search, error) {
	var search Search
	if err := c.do(ctx, http.MethodGet, searchPath(id), nil, &search); err != nil {
		return nil, err
	}
	return &search, nil
}

// WaitForSearch polls the search state with exponential backoff until slskd
// reports it complete or the wait bound elapses. The bound elapsing is not an
// error: it returns false so the caller can proceed with partial responses.
func (c *Client) WaitForSearch(ctx context.Context, id string) (bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.searchTimeout+c.waitGrace)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = pollInitialInterval
	b.MaxInterval = pollMaxInterval
	b.MaxElapsedTime = 0

	poll := func() error {
		search, err := c.GetSearch(waitCtx, id)
		if err != nil {
			if waitCtx.Err() != nil {
				return backoff.Permanent(waitCtx.Err())
			}
			return backoff.Permanent(err)
		}
		if search.Done() {
			return nil
		}
		return errSearchPending
	}

	err := backoff.Retry(poll, backoff.WithContext(b, waitCtx))
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, errSearchPending):
		c.logger.WithField("search_id", id).Debug("Search wait bound elapsed")
		return false, nil
	default:
		return false, fmt.Errorf("failed to poll search: %w", err)
	}
}

// SearchResponses returns every response collected by a search session
func (c *Client) SearchResponses(ctx context.Context, id string) ([]SearchResponse, error) {
	var responses []SearchResponse
	if err := c.do(ctx, http.MethodGet, searchPath(id)+"/responses", nil, &responses); err != nil {
		return nil, fmt.Errorf("failed to fetch search responses: %w", err)
	}
	return responses, nil
}

// DeleteSearch removes a search session from slskd
func (c *Client) DeleteSearch(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, searchPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	return nil
}
