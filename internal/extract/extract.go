// Package extract derives plain text from uploaded documents. Backends are
// tried in a fixed priority order; the first one that yields text wins.
package extract

import (
	"fmt"
	"strings"

	"studysahayak-backend/internal/pipeline"
)

// Extractor is one text-extraction backend.
type Extractor interface {
	Name() string
	Available() bool
	Extract(path string) (string, error)
}

// Chain tries its extractors in order and stops at the first non-empty
// result. A backend that errors or produces no text is skipped with a
// warning; it never aborts the chain.
type Chain struct {
	extractors []Extractor
}

func NewChain(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// DefaultPDFChain prefers the higher-fidelity reader and falls back to the
// basic one.
func DefaultPDFChain() *Chain {
	return NewChain(&LedongthucExtractor{}, &RscExtractor{})
}

func (c *Chain) Extract(path string) (*pipeline.ExtractionResult, error) {
	var warnings []string

	for _, e := range c.extractors {
		if !e.Available() {
			warnings = append(warnings, fmt.Sprintf("%s unavailable", e.Name()))
			continue
		}

		text, err := e.Extract(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s failed: %v", e.Name(), err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			warnings = append(warnings, fmt.Sprintf("%s yielded no text", e.Name()))
			continue
		}

		return &pipeline.ExtractionResult{
			Text:       text,
			MethodUsed: e.Name(),
			Warnings:   warnings,
		}, nil
	}

	return nil, &pipeline.ExtractionError{Message: "no text extracted"}
}
