package models

// QueueSlot is one entry of the SABnzbd queue response
type QueueSlot struct {
	NzoID      string `json:"nzo_id"`
	Index      int    `json:"index"`
	Filename   string `json:"filename"`
	Category   string `json:"cat"`
	Priority   string `json:"priority"`
	MB         string `json:"mb"`
	MBLeft     string `json:"mbleft"`
	Percentage string `json:"percentage"`
	Status     string `json:"status"`
	TimeLeft   string `json:"timeleft"`
}

// HistorySlot is one entry of the SABnzbd history response
type HistorySlot struct {
	NzoID       string `json:"nzo_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Bytes       int64  `json:"bytes"`
	Status      string `json:"status"`
	Completed   int64  `json:"completed"` // unix seconds; synthesized at poll time
	Storage     string `json:"storage"`
	FailMessage string `json:"fail_message"`
}
