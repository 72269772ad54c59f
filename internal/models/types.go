package models

// JobStatus is the status of a tracked job, aggregated over its matched transfers
type JobStatus string

const (
	JobStatusActive    JobStatus = "Queued-or-Active"
	JobStatusCompleted JobStatus = "Completed"
	JobStatusFailed    JobStatus = "Failed"
)

// IsTerminal reports whether the job belongs to history rather than the queue
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// TransferBucket is the per-file classification of a backend transfer state
type TransferBucket string

const (
	BucketActive    TransferBucket = "Active"
	BucketCompleted TransferBucket = "Completed"
	BucketFailed    TransferBucket = "Failed"
)

// Quality represents the audio quality tier of a release
type Quality string

const (
	QualityLossless Quality = "LOSSLESS"
	QualityMP3      Quality = "MP3"
	QualityOther    Quality = "OTHER"
)

// Newznab category identifiers. These are a wire contract with the consuming
// client and must not be renumbered.
const (
	CategoryAudio    = 3000
	CategoryMP3      = 3010
	CategoryLossless = 3040
)

// CategoryForQuality returns the Newznab category a release of the given quality is filed under
func CategoryForQuality(q Quality) int {
	if q == QualityLossless {
		return CategoryLossless
	}
	return CategoryMP3
}
