package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/controllers"
	"github.com/BlieNuckel/tunarr/internal/models"
)

// StatusHandler handles status requests
type StatusHandler struct {
	searchCtrl   *controllers.SearchController
	downloadCtrl *controllers.DownloadController
	logger       *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(searchCtrl *controllers.SearchController, downloadCtrl *controllers.DownloadController, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		searchCtrl:   searchCtrl,
		downloadCtrl: downloadCtrl,
		logger:       logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TrackedJobs    int    `json:"tracked_jobs"`
	Active         int    `json:"active"`
	Completed      int    `json:"completed"`
	Failed         int    `json:"failed"`
	CachedSearches int    `json:"cached_searches"`
	CachedResults  int    `json:"cached_results"`
	Backend        string `json:"backend"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := h.searchCtrl.Stats()
	response := StatusResponse{
		TrackedJobs:    h.downloadCtrl.TrackedJobs(),
		CachedSearches: stats.CachedSearches,
		CachedResults:  stats.CachedResults,
		Backend:        "ok",
	}

	// Job status is only known after polling slskd
	snapshot, err := h.downloadCtrl.Poll(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Failed to poll slskd for status")
		response.Backend = "unavailable"
	} else {
		counts := snapshot.JobCounts()
		response.Active = counts[models.JobStatusActive]
		response.Completed = counts[models.JobStatusCompleted]
		response.Failed = counts[models.JobStatusFailed]
	}

	writeJSON(w, http.StatusOK, response, h.logger)
}
