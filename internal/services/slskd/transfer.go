package slskd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/models"
)

func downloadsPath(username string) string {
	return "/transfers/downloads/" + url.PathEscape(username)
}

// EnqueueDownload asks slskd to download files from a peer
func (c *Client) EnqueueDownload(ctx context.Context, username string, files []models.ReleaseFile) error {
	req := make([]DownloadRequest, 0, len(files))
	for _, f := range files {
		req = append(req, DownloadRequest{Filename: f.Filename, Size: f.Size})
	}

	if err := c.do(ctx, http.MethodPost, downloadsPath(username), req, nil); err != nil {
		return fmt.Errorf("failed to enqueue download: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"files": len(files),
	}).Info("Enqueued slskd download")

	return nil
}

// DownloadTransfers returns every download slskd knows about, grouped by peer and directory
func (c *Client) DownloadTransfers(ctx context.Context) ([]TransferGroup, error) {
	var groups []TransferGroup
	if err := c.do(ctx, http.MethodGet, "/transfers/downloads", nil, &groups); err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	return groups, nil
}

// CancelDownload cancels a download and removes it from the slskd transfer list
func (c *Client) CancelDownload(ctx context.Context, username, id string) error {
	path := downloadsPath(username) + "/" + url.PathEscape(id) + "?remove=true"
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to cancel download: %w", err)
	}
	return nil
}
