package controllers

import (
	"fmt"
	"math"
	"strings"

	"github.com/BlieNuckel/tunarr/internal/models"
	"github.com/BlieNuckel/tunarr/internal/services/slskd"
)

const (
	timeLeftNone    = "00:00:00"
	timeLeftUnknown = "99:99:99"
)

// transferStates maps slskd per-file transfer states to buckets
var transferStates = map[string]models.TransferBucket{
	"Requested":            models.BucketActive,
	"Queued":               models.BucketActive,
	"Queued, Locally":      models.BucketActive,
	"Queued, Remotely":     models.BucketActive,
	"Initializing":         models.BucketActive,
	"InProgress":           models.BucketActive,
	"Completed, Succeeded": models.BucketCompleted,
	"Completed, Cancelled": models.BucketFailed,
	"Completed, TimedOut":  models.BucketFailed,
	"Completed, Errored":   models.BucketFailed,
	"Completed, Rejected":  models.BucketFailed,
	"Completed, Aborted":   models.BucketFailed,
}

// MapTransferState classifies a raw slskd transfer state. Unknown states are
// Active, except unknown "Completed, *" variants which are Failed.
func MapTransferState(state string) models.TransferBucket {
	state = strings.TrimSpace(state)
	if bucket, ok := transferStates[state]; ok {
		return bucket
	}
	if strings.HasPrefix(state, "Completed") {
		return models.BucketFailed
	}
	return models.BucketActive
}

func isDownloading(state string) bool {
	for _, flag := range strings.Split(state, ",") {
		switch strings.TrimSpace(flag) {
		case "Initializing", "InProgress":
			return true
		}
	}
	return false
}

// FindMatchingTransfers returns the transfers of peer whose filename is one of files.
// Matching is by filename alone.
func FindMatchingTransfers(peer string, files []models.ReleaseFile, groups []slskd.TransferGroup) []slskd.Transfer {
	wanted := make(map[string]struct{}, len(files))
	for _, f := range files {
		wanted[f.Filename] = struct{}{}
	}

	var matched []slskd.Transfer
	for _, group := range groups {
		if group.Username != peer {
			continue
		}
		for _, dir := range group.Directories {
			for _, t := range dir.Files {
				if _, ok := wanted[t.Filename]; ok {
					matched = append(matched, t)
				}
			}
		}
	}
	return matched
}

// AggregateStatus derives a job status from its matched transfers:
// no transfers or any Active is Active, all Completed is Completed, otherwise Failed.
func AggregateStatus(transfers []slskd.Transfer) models.JobStatus {
	if len(transfers) == 0 {
		return models.JobStatusActive
	}

	completed := 0
	for _, t := range transfers {
		switch MapTransferState(t.State) {
		case models.BucketActive:
			return models.JobStatusActive
		case models.BucketCompleted:
			completed++
		}
	}

	if completed == len(transfers) {
		return models.JobStatusCompleted
	}
	return models.JobStatusFailed
}

// EstimateTimeLeft estimates the remaining download time as HH:MM:SS from the
// transfers still in the Active bucket.
func EstimateTimeLeft(transfers []slskd.Transfer) string {
	var (
		remaining int64
		speed     float64
		active    int
	)
	for _, t := range transfers {
		if MapTransferState(t.State) != models.BucketActive {
			continue
		}
		active++
		if left := t.Size - t.BytesTransferred; left > 0 {
			remaining += left
		}
		speed += t.AverageSpeed
	}

	if active == 0 {
		return timeLeftNone
	}
	if speed <= 0 {
		return timeLeftUnknown
	}
	return formatDuration(int64(math.Ceil(float64(remaining) / speed)))
}

func formatDuration(seconds int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func bytesTransferred(transfers []slskd.Transfer) int64 {
	var total int64
	for _, t := range transfers {
		if t.BytesTransferred > 0 {
			total += t.BytesTransferred
		}
	}
	return total
}
