package progress

// Progress is derived on every read and never persisted.
type Progress struct {
	Current    float64 `json:"current"`
	Target     float64 `json:"target"`
	Percentage float64 `json:"percentage"`
	Completed  bool    `json:"completed"`
	// Unsupported is set when no rule is registered for the metric.
	Unsupported bool   `json:"unsupported,omitempty"`
	Metric      string `json:"metric,omitempty"`
}
