package video

import "fmt"

// OutcomeKind classifies how an extraction job ended
type OutcomeKind int

const (
	// Succeeded means ffmpeg exited with status 0
	Succeeded OutcomeKind = iota
	// FailedValidation means the request was rejected before any external call
	FailedValidation
	// FailedNoBinary means no ffmpeg could be located or installed
	FailedNoBinary
	// FailedProcessError means ffmpeg exited non-zero; Diagnostics holds its stderr
	FailedProcessError
	// FailedException means an unexpected error interrupted the job
	FailedException
)

// String returns the string representation of the outcome kind
func (k OutcomeKind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case FailedValidation:
		return "validation failed"
	case FailedNoBinary:
		return "ffmpeg unavailable"
	case FailedProcessError:
		return "ffmpeg failed"
	case FailedException:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of an extraction job
type Outcome struct {
	Kind OutcomeKind
	// Message is a human-readable summary suitable for display
	Message string
	// Diagnostics holds the full ffmpeg stderr for FailedProcessError
	Diagnostics string
	// ExitCode is ffmpeg's exit status when the process ran
	ExitCode int
	// Err carries the underlying cause, wrapped with one of the package sentinels
	Err error
}

// Succeeded reports whether the job completed successfully
func (o Outcome) Succeeded() bool {
	return o.Kind == Succeeded
}

// AsError converts a failed outcome to an error; it returns nil on success
func (o Outcome) AsError() error {
	if o.Succeeded() {
		return nil
	}
	if o.Err != nil {
		return o.Err
	}
	return fmt.Errorf("%w: %s", ErrUnexpected, o.Message)
}
