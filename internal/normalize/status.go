package normalize

import "strings"

// Status is the lowercased, trimmed status string reported by the API.
//
// Only the constants below carry meaning. Any other value is kept verbatim
// so it can be echoed back to the caller, and is treated as still processing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusError     Status = "error"
	StatusUnknown   Status = "unknown"
)

// ParseStatus lowercases and trims s. An empty result becomes [StatusUnknown].
func ParseStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusUnknown
	}
	return Status(s)
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsSuccess reports whether the job finished and produced a result.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusCompleted
}

// IsFailure reports whether the job finished without a result.
func (s Status) IsFailure() bool {
	return s == StatusFailed || s == StatusError
}

// IsTerminal reports whether the job will not change any further.
func (s Status) IsTerminal() bool {
	return s.IsSuccess() || s.IsFailure()
}
