package pipeline

import (
	"fmt"
	"strings"
)

// ValidationError means the input itself was unusable (empty text,
// unsupported type). Surfaced directly, never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ExtractionError means no text could be derived from a PDF or from the
// audio track of a video after trying every available backend.
type ExtractionError struct {
	Message string
}

func (e *ExtractionError) Error() string { return e.Message }

// TranscriptionError means every transcription backend failed. Attempted
// records which backends were tried, in order.
type TranscriptionError struct {
	Attempted []string
	Message   string
}

func (e *TranscriptionError) Error() string {
	if len(e.Attempted) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (attempted: %s)", e.Message, strings.Join(e.Attempted, ", "))
}

// StructuringError means the AI call or its response parsing failed after
// the repair attempt and bounded retries. Nothing is persisted on this path.
type StructuringError struct {
	Message string
}

func (e *StructuringError) Error() string { return e.Message }
