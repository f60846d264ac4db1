package models

// TriggerResult is the outcome of a trigger call. It is returned together
// with an error; a non-nil error always means Triggered is false.
type TriggerResult struct {
	Triggered  bool   `json:"triggered"`
	Item       string `json:"item"`
	URL        string `json:"url"`
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"status_code,omitempty"`
}
