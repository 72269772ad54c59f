// Package slskd provides a client for the slskd API.
package slskd

import "strings"

// SearchRequest is the body of POST /api/v0/searches
type SearchRequest struct {
	ID            string `json:"id"`
	SearchText    string `json:"searchText"`
	SearchTimeout int    `json:"searchTimeout"` // milliseconds
	ResponseLimit int    `json:"responseLimit,omitempty"`
	FileLimit     int    `json:"fileLimit,omitempty"`
}

// Search is a search session as reported by slskd
type Search struct {
	ID            string      `json:"id"`
	SearchText    string      `json:"searchText"`
	State         SearchState `json:"state"`
	IsComplete    bool        `json:"isComplete"`
	ResponseCount int         `json:"responseCount"`
	FileCount     int         `json:"fileCount"`
}

// Done reports whether slskd has finished collecting responses
func (s Search) Done() bool {
	return s.IsComplete || s.State.IsComplete()
}

// SearchResponse represents a user's response to a search.
type SearchResponse struct {
	Username          string `json:"username"`
	FileCount         int    `json:"fileCount"`
	HasFreeUploadSlot bool   `json:"hasFreeUploadSlot"`
	UploadSpeed       int64  `json:"uploadSpeed"`
	QueueLength       int    `json:"queueLength"`
	Files             []File `json:"files"`
	LockedFiles       []File `json:"lockedFiles"`
}

// File represents a file in search results.
type File struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
	BitRate   int    `json:"bitRate"`
	BitDepth  int    `json:"bitDepth"`
	Length    int    `json:"length"` // Duration in seconds
	IsLocked  bool   `json:"isLocked"`
}

// DownloadRequest is one element of the body of POST /api/v0/transfers/downloads/{username}
type DownloadRequest struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// TransferGroup is every download from one peer, grouped by remote directory
type TransferGroup struct {
	Username    string              `json:"username"`
	Directories []TransferDirectory `json:"directories"`
}

// TransferDirectory is the downloads under one remote directory
type TransferDirectory struct {
	Directory string     `json:"directory"`
	FileCount int        `json:"fileCount"`
	Files     []Transfer `json:"files"`
}

// Transfer is a single file-level download
type Transfer struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Filename         string  `json:"filename"`
	State            string  `json:"state"` // e.g. "Queued, Remotely", "InProgress", "Completed, Succeeded"
	Size             int64   `json:"size"`
	BytesTransferred int64   `json:"bytesTransferred"`
	BytesRemaining   int64   `json:"bytesRemaining"`
	AverageSpeed     float64 `json:"averageSpeed"`
	PercentComplete  float64 `json:"percentComplete"`
}

// SearchState represents the state of a search.
type SearchState string

const (
	SearchStateNone       SearchState = "None"
	SearchStateRequested  SearchState = "Requested"
	SearchStateInProgress SearchState = "InProgress"
	SearchStateCompleted  SearchState = "Completed"
	SearchStateTimedOut   SearchState = "TimedOut"
	SearchStateCancelled  SearchState = "Cancelled"
	SearchStateErrored    SearchState = "Errored"
)

// IsComplete returns true if the search is in a terminal state.
// slskd reports flag combinations such as "Completed, TimedOut".
func (s SearchState) IsComplete() bool {
	for _, flag := range strings.Split(string(s), ",") {
		switch SearchState(strings.TrimSpace(flag)) {
		case SearchStateCompleted, SearchStateTimedOut, SearchStateCancelled, SearchStateErrored:
			return true
		}
	}
	return false
}
