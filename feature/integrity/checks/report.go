package checks

// Check statuses.
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusMismatch = "mismatch"
	StatusError    = "error"
	StatusSkipped  = "skipped"
)

// Report is the common outcome of a check.
type Report struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Failed builds an error report.
func Failed(err error) Report {
	return Report{Status: StatusError, Error: err.Error()}
}
