package models

import "time"

// TrackedJob represents one download request submitted through the download-client protocol
type TrackedJob struct {
	JobID        string
	Title        string
	Category     string
	PeerIdentity string
	Files        []ReleaseFile
	TotalSize    int64 // bytes
	AddedAt      time.Time
}

// clone returns a copy that shares no mutable state with j
func (j *TrackedJob) clone() *TrackedJob {
	c := *j
	c.Files = append([]ReleaseFile(nil), j.Files...)
	return &c
}
