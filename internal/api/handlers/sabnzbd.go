package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/controllers"
	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/services/nzb"
)

const (
	sabnzbdVersion = "4.2.3"

	maxNZBSize      = 15 * 1024 * 1024 // 15MB
	defaultCategory = "music"
)

// SABnzbdHandler emulates the SABnzbd API consumed by download-client integrations
type SABnzbdHandler struct {
	downloadCtrl *controllers.DownloadController
	downloadRoot string
	logger       *logrus.Logger
}

// NewSABnzbdHandler creates a new SABnzbd handler
func NewSABnzbdHandler(cfg *config.Config, downloadCtrl *controllers.DownloadController, logger *logrus.Logger) *SABnzbdHandler {
	return &SABnzbdHandler{
		downloadCtrl: downloadCtrl,
		downloadRoot: cfg.SlskdDownloadPath,
		logger:       logger,
	}
}

type queueEnvelope struct {
	Queue queueBody `json:"queue"`
}

type queueBody struct {
	Status    string             `json:"status"`
	Paused    bool               `json:"paused"`
	NoOfSlots int                `json:"noofslots"`
	Slots     []models.QueueSlot `json:"slots"`
}

type historyEnvelope struct {
	History historyBody `json:"history"`
}

type historyBody struct {
	NoOfSlots int                  `json:"noofslots"`
	Slots     []models.HistorySlot `json:"slots"`
}

// ServeHTTP handles /api/sabnzbd/api?mode=...
func (h *SABnzbdHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// mode may be in the query string, a urlencoded body or a multipart body
	mode := r.FormValue("mode")

	switch mode {
	case "version":
		writeJSON(w, http.StatusOK, map[string]string{"version": sabnzbdVersion}, h.logger)

	case "get_config":
		writeJSON(w, http.StatusOK, map[string]any{
			"config": map[string]any{
				"misc": map[string]any{"complete_dir": h.downloadRoot},
				"categories": []map[string]any{
					{"name": defaultCategory, "dir": ""},
				},
			},
		}, h.logger)

	case "fullstatus":
		writeJSON(w, http.StatusOK, map[string]any{
			"status": map[string]any{"completedir": h.downloadRoot},
		}, h.logger)

	case "queue":
		if r.FormValue("name") == "delete" {
			h.deleteItems(w, r, "queue")
			return
		}
		h.queue(w, r)

	case "history":
		if r.FormValue("name") == "delete" {
			h.deleteItems(w, r, "history")
			return
		}
		h.history(w, r)

	case "addfile":
		h.addFile(w, r)

	default:
		h.logger.WithField("mode", mode).Debug("Unhandled SABnzbd mode")
		writeJSON(w, http.StatusOK, map[string]bool{"status": true}, h.logger)
	}
}

func (h *SABnzbdHandler) queue(w http.ResponseWriter, r *http.Request) {
	slots, err := h.downloadCtrl.BuildQueueSlots(r.Context())
	if err != nil {
		// Degrade to an empty queue so the client's periodic refresh keeps working
		h.logger.WithError(err).Error("Failed to build queue")
		slots = []models.QueueSlot{}
	}

	status := "Idle"
	if len(slots) > 0 {
		status = "Downloading"
	}

	writeJSON(w, http.StatusOK, queueEnvelope{Queue: queueBody{
		Status:    status,
		NoOfSlots: len(slots),
		Slots:     slots,
	}}, h.logger)
}

func (h *SABnzbdHandler) history(w http.ResponseWriter, r *http.Request) {
	slots, err := h.downloadCtrl.BuildHistorySlots(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build history")
		slots = []models.HistorySlot{}
	}

	writeJSON(w, http.StatusOK, historyEnvelope{History: historyBody{
		NoOfSlots: len(slots),
		Slots:     slots,
	}}, h.logger)
}

func (h *SABnzbdHandler) deleteItems(w http.ResponseWriter, r *http.Request, source string) {
	for _, id := range strings.Split(r.FormValue("value"), ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		var err error
		if source == "queue" {
			err = h.downloadCtrl.DeleteQueueItem(r.Context(), id)
		} else {
			err = h.downloadCtrl.DeleteHistoryItem(id)
		}

		if errors.Is(err, controllers.ErrJobNotFound) {
			h.logger.WithField("job_id", id).Debug("Delete requested for unknown job")
		} else if err != nil {
			h.logger.WithError(err).WithField("job_id", id).Warn("Failed to delete job")
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"status": true}, h.logger)
}

func uploadedNZB(r *http.Request) (multipart.File, error) {
	file, _, err := r.FormFile("name")
	if err == nil {
		return file, nil
	}
	file, _, err = r.FormFile("nzbfile")
	return file, err
}

func (h *SABnzbdHandler) addFile(w http.ResponseWriter, r *http.Request) {
	file, err := uploadedNZB(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": false, "error": "No NZB file uploaded"}, h.logger)
		return
	}
	defer file.Close()

	document, err := io.ReadAll(io.LimitReader(file, maxNZBSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": false, "error": "Failed to read NZB file"}, h.logger)
		return
	}

	job, err := h.downloadCtrl.AddFile(r.Context(), document, r.FormValue("cat"))
	switch {
	case errors.Is(err, nzb.ErrMalformedDocument):
		h.logger.WithError(err).Warn("Rejected malformed NZB")
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": false, "error": err.Error()}, h.logger)
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to add download")
		writeJSON(w, http.StatusBadGateway, map[string]any{"status": false, "error": err.Error()}, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": true, "nzo_ids": []string{job.JobID}}, h.logger)
}
