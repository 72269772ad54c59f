package models

// ReleaseFile is one file of a candidate release, addressed by its full remote path
type ReleaseFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// GroupedSearchResult is one de-duplicated candidate source for a release.
// Immutable once created; ID is unique within a result set.
type GroupedSearchResult struct {
	ID            string        `json:"id"`
	PeerIdentity  string        `json:"peerIdentity"`
	DirectoryPath string        `json:"directoryPath"`
	Files         []ReleaseFile `json:"files"`
	TotalSize     int64         `json:"totalSize"`
	HasFreeSlot   bool          `json:"hasFreeSlot"`
	UploadSpeed   int64         `json:"uploadSpeed"`
	BitrateHint   int           `json:"bitrateHint"`
	Quality       Quality       `json:"quality"`
	Category      int           `json:"category"`
}

// TotalFileSize sums the sizes of a file list
func TotalFileSize(files []ReleaseFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
