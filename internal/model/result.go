package model

import (
	"encoding/json"
	"time"
)

// Status classifies the outcome of scanning a single file.
type Status int

const (
	StatusClean Status = iota // No pattern matched
	StatusAlert               // At least one pattern matched
	StatusError               // File could not be opened or read
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusAlert:
		return "alert"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ScanResult is the outcome of scanning one candidate file.
type ScanResult struct {
	Path    string   // Path of the scanned file
	Status  Status   // Clean, Alert or Error
	Secrets []string // Distinct matched labels in first-seen order; non-empty iff Alert
	Err     error    // Read failure for Error results
}

// NewResult classifies a scan outcome. A non-nil err always yields an Error
// result with no labels, whatever was matched before the failure.
func NewResult(path string, labels []string, err error) ScanResult {
	switch {
	case err != nil:
		return ScanResult{Path: path, Status: StatusError, Secrets: []string{}, Err: err}
	case len(labels) > 0:
		return ScanResult{Path: path, Status: StatusAlert, Secrets: labels}
	default:
		return ScanResult{Path: path, Status: StatusClean, Secrets: []string{}}
	}
}

// MarshalJSON flattens Err to its message.
func (r ScanResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Path    string   `json:"path"`
		Status  Status   `json:"status"`
		Secrets []string `json:"secrets"`
		Error   string   `json:"error,omitempty"`
	}{
		Path:    r.Path,
		Status:  r.Status,
		Secrets: r.Secrets,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Summary holds run-level aggregates.
type Summary struct {
	RunID            string        `json:"run_id"`
	Root             string        `json:"root"`
	FilesScanned     int           `json:"files_scanned"`
	FilesWithSecrets int           `json:"files_with_secrets"`
	TotalSecrets     int           `json:"total_secrets"`
	Errors           int           `json:"errors"`
	Elapsed          time.Duration `json:"elapsed_ns"`
}

// Report is everything a single scan run hands to the presentation layer.
type Report struct {
	Summary Summary      `json:"summary"`
	Results []ScanResult `json:"results"`
}

// Alerts returns only the results that carry secrets.
func (r Report) Alerts() []ScanResult {
	var out []ScanResult
	for _, res := range r.Results {
		if res.Status == StatusAlert {
			out = append(out, res)
		}
	}
	return out
}
