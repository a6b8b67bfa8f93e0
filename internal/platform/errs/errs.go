package errs

import "fmt"

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed or the target URL missing or blocked (HTTP 400).
	InvalidInput
	// Unreachable indicates the target document could not be fetched (HTTP 502).
	Unreachable
	// Timeout indicates the inspection deadline was exceeded (HTTP 504).
	Timeout
	// ParsingFailed indicates the document could not be parsed (HTTP 500).
	ParsingFailed
)

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target, when one exists
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}
