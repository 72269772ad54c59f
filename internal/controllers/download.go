package controllers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/metrics"
	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/services/nzb"
	"github.com/BlieNuckel/tunarr/internal/services/slskd"
	"github.com/BlieNuckel/tunarr/internal/utils"
)

const (
	defaultCategory = "music"
	unknownTitle    = "Unknown"
	bytesPerMB      = 1024 * 1024
	failMessage     = "One or more files failed to download from slskd"
)

// ErrJobNotFound is returned for job ids that are not tracked
var ErrJobNotFound = errors.New("job not found")

// TransferProvider starts, lists and cancels downloads on the P2P backend
type TransferProvider interface {
	EnqueueDownload(ctx context.Context, username string, files []models.ReleaseFile) error
	DownloadTransfers(ctx context.Context) ([]slskd.TransferGroup, error)
	CancelDownload(ctx context.Context, username, id string) error
}

// JobView is a tracked job together with its live transfer state at poll time
type JobView struct {
	Job       *models.TrackedJob
	Transfers []slskd.Transfer
	Status    models.JobStatus
}

// Snapshot is one poll of the backend, classified per job. Every job is in
// exactly one of Queue or History.
type Snapshot struct {
	Queue   []JobView
	History []JobView
}

// DownloadController manages download jobs created through the SABnzbd surface
type DownloadController struct {
	transfers    TransferProvider
	registry     *models.JobRegistry
	downloadRoot string
	now          func() time.Time
	logger       *logrus.Logger
}

// NewDownloadController creates a new download controller
func NewDownloadController(cfg *config.Config, transfers TransferProvider, registry *models.JobRegistry, logger *logrus.Logger) *DownloadController {
	return &DownloadController{
		transfers:    transfers,
		registry:     registry,
		downloadRoot: cfg.SlskdDownloadPath,
		now:          time.Now,
		logger:       logger,
	}
}

// NewJobID returns an id of the form slskd_<unix ms>_<6 hex chars>
func NewJobID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("slskd_%d_%s", now.UnixMilli(), suffix)
}

// AddFile decodes a synthetic NZB, asks slskd to download its files and tracks
// the job. Decode failures wrap nzb.ErrMalformedDocument.
func (c *DownloadController) AddFile(ctx context.Context, document []byte, category string) (*models.TrackedJob, error) {
	md, err := nzb.Decode(document)
	if err != nil {
		return nil, err
	}

	if category == "" {
		category = defaultCategory
	}

	// slskd stores downloads under the leaf directory of the remote path
	title := unknownTitle
	if len(md.Files) > 0 {
		title = utils.ExtractDirectoryName(md.Files[0].Filename)
	}

	now := c.now()
	job := &models.TrackedJob{
		JobID:        NewJobID(now),
		Title:        title,
		Category:     category,
		PeerIdentity: md.PeerIdentity,
		Files:        md.Files,
		TotalSize:    models.TotalFileSize(md.Files),
		AddedAt:      now,
	}

	if len(job.Files) > 0 {
		if err := c.transfers.EnqueueDownload(ctx, job.PeerIdentity, job.Files); err != nil {
			metrics.BackendErrorsTotal.WithLabelValues("enqueue_download").Inc()
			return nil, fmt.Errorf("failed to start download: %w", err)
		}
	}

	c.registry.Add(job)
	metrics.JobsAddedTotal.Inc()
	metrics.TrackedJobs.Set(float64(c.registry.Len()))

	c.logger.WithFields(logrus.Fields{
		"job_id":   job.JobID,
		"title":    job.Title,
		"category": job.Category,
		"files":    len(job.Files),
		"size":     job.TotalSize,
	}).Info("Download job added")

	return job, nil
}

// Poll fetches the current transfers once and classifies every tracked job
func (c *DownloadController) Poll(ctx context.Context) (*Snapshot, error) {
	jobs := c.registry.All()
	snapshot := &Snapshot{}
	if len(jobs) == 0 {
		return snapshot, nil
	}

	groups, err := c.transfers.DownloadTransfers(ctx)
	if err != nil {
		metrics.BackendErrorsTotal.WithLabelValues("list_downloads").Inc()
		return nil, err
	}

	for _, job := range jobs {
		matched := FindMatchingTransfers(job.PeerIdentity, job.Files, groups)
		view := JobView{Job: job, Transfers: matched, Status: AggregateStatus(matched)}
		if view.Status.IsTerminal() {
			snapshot.History = append(snapshot.History, view)
		} else {
			snapshot.Queue = append(snapshot.Queue, view)
		}
	}
	return snapshot, nil
}

func formatMB(b int64) string {
	return strconv.FormatFloat(float64(b)/bytesPerMB, 'f', 1, 64)
}

// QueueSlot projects an active job into a SABnzbd queue slot
func QueueSlot(index int, view JobView) models.QueueSlot {
	total := view.Job.TotalSize
	transferred := bytesTransferred(view.Transfers)
	remaining := total - transferred
	if remaining < 0 {
		remaining = 0
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(transferred) / float64(total) * 100))
	}

	status := "Queued"
	for _, t := range view.Transfers {
		if isDownloading(t.State) {
			status = "Downloading"
			break
		}
	}

	return models.QueueSlot{
		NzoID:      view.Job.JobID,
		Index:      index,
		Filename:   view.Job.Title,
		Category:   view.Job.Category,
		Priority:   "Normal",
		MB:         formatMB(total),
		MBLeft:     formatMB(remaining),
		Percentage: strconv.Itoa(percentage),
		Status:     status,
		TimeLeft:   EstimateTimeLeft(view.Transfers),
	}
}

// HistorySlot projects a finished job into a SABnzbd history slot. The
// completion time is the poll time; slskd does not report it.
func (c *DownloadController) HistorySlot(view JobView) models.HistorySlot {
	slot := models.HistorySlot{
		NzoID:     view.Job.JobID,
		Name:      view.Job.Title,
		Category:  view.Job.Category,
		Bytes:     view.Job.TotalSize,
		Status:    string(models.JobStatusCompleted),
		Completed: c.now().Unix(),
		Storage:   c.downloadRoot + "/" + view.Job.Title,
	}
	if view.Status == models.JobStatusFailed {
		slot.Status = string(models.JobStatusFailed)
		slot.FailMessage = failMessage
	}
	return slot
}

// QueueSlots returns the queue slots of the given snapshot
func (c *DownloadController) QueueSlots(snapshot *Snapshot) []models.QueueSlot {
	slots := make([]models.QueueSlot, 0, len(snapshot.Queue))
	for i, view := range snapshot.Queue {
		slots = append(slots, QueueSlot(i, view))
	}
	return slots
}

// HistorySlots returns the history slots of the given snapshot
func (c *DownloadController) HistorySlots(snapshot *Snapshot) []models.HistorySlot {
	slots := make([]models.HistorySlot, 0, len(snapshot.History))
	for _, view := range snapshot.History {
		slots = append(slots, c.HistorySlot(view))
	}
	return slots
}

// BuildQueueSlots polls slskd and returns the queue slots of every active job
func (c *DownloadController) BuildQueueSlots(ctx context.Context) ([]models.QueueSlot, error) {
	snapshot, err := c.Poll(ctx)
	if err != nil {
		return nil, err
	}
	return c.QueueSlots(snapshot), nil
}

// BuildHistorySlots polls slskd and returns the history slots of every finished job
func (c *DownloadController) BuildHistorySlots(ctx context.Context) ([]models.HistorySlot, error) {
	snapshot, err := c.Poll(ctx)
	if err != nil {
		return nil, err
	}
	return c.HistorySlots(snapshot), nil
}

// DeleteQueueItem cancels the job's transfers on slskd and stops tracking it.
// Cancel failures are logged and do not prevent removal.
func (c *DownloadController) DeleteQueueItem(ctx context.Context, jobID string) error {
	job, ok := c.registry.Get(jobID)
	if !ok {
		return ErrJobNotFound
	}

	groups, err := c.transfers.DownloadTransfers(ctx)
	if err != nil {
		metrics.BackendErrorsTotal.WithLabelValues("list_downloads").Inc()
		c.logger.WithError(err).WithField("job_id", jobID).Warn("Failed to list transfers, removing job without cancelling")
	}

	for _, t := range FindMatchingTransfers(job.PeerIdentity, job.Files, groups) {
		if err := c.transfers.CancelDownload(ctx, job.PeerIdentity, t.ID); err != nil {
			metrics.BackendErrorsTotal.WithLabelValues("cancel_download").Inc()
			c.logger.WithError(err).WithFields(logrus.Fields{
				"job_id":      jobID,
				"transfer_id": t.ID,
			}).Warn("Failed to cancel transfer")
		}
	}

	return c.remove(jobID, "queue")
}

// DeleteHistoryItem stops tracking a job. Downloaded files are left in place.
func (c *DownloadController) DeleteHistoryItem(jobID string) error {
	return c.remove(jobID, "history")
}

func (c *DownloadController) remove(jobID, source string) error {
	if !c.registry.Remove(jobID) {
		return ErrJobNotFound
	}
	metrics.JobsRemovedTotal.WithLabelValues(source).Inc()
	metrics.TrackedJobs.Set(float64(c.registry.Len()))
	c.logger.WithFields(logrus.Fields{
		"job_id": jobID,
		"source": source,
	}).Info("Download job removed")
	return nil
}

// TrackedJobs returns the number of jobs currently tracked
func (c *DownloadController) TrackedJobs() int {
	return c.registry.Len()
}

// JobCounts returns the number of tracked jobs per status in snapshot
func (s *Snapshot) JobCounts() map[models.JobStatus]int {
	counts := map[models.JobStatus]int{
		models.JobStatusActive:    len(s.Queue),
		models.JobStatusCompleted: 0,
		models.JobStatusFailed:    0,
	}
	for _, view := range s.History {
		counts[view.Status]++
	}
	return counts
}
