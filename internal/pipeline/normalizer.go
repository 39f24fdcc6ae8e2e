package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// MinTextLength is the smallest cleaned-text size worth structuring.
const MinTextLength = 10

// DocumentExtractor converts a document file into plain text.
type DocumentExtractor interface {
	Extract(path string) (*ExtractionResult, error)
}

// VideoTranscriber converts a video file into transcribed text.
type VideoTranscriber interface {
	Transcribe(ctx context.Context, path, language string) (*ExtractionResult, error)
}

// Normalizer routes an upload to the extractor or transcriber matching its
// declared type and cleans the resulting raw text. It holds no state across
// calls.
type Normalizer struct {
	pdf   DocumentExtractor
	video VideoTranscriber
}

func NewNormalizer(pdf DocumentExtractor, video VideoTranscriber) *Normalizer {
	return &Normalizer{pdf: pdf, video: video}
}

func (n *Normalizer) Normalize(ctx context.Context, upload UploadRequest) (*ExtractionResult, error) {
	var result *ExtractionResult
	var err error

	switch upload.ContentType {
	case ContentTypeText:
		result = &ExtractionResult{Text: upload.Text, MethodUsed: "direct"}
	case ContentTypePDF:
		result, err = n.pdf.Extract(upload.FilePath)
	case ContentTypeVideo:
		result, err = n.video.Transcribe(ctx, upload.FilePath, upload.Language)
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unsupported content type: %s", upload.ContentType)}
	}
	if err != nil {
		return nil, err
	}

	result.Text = CleanText(result.Text)
	if result.Text == "" {
		if upload.ContentType == ContentTypeText {
			return nil, &ValidationError{Message: "text content is empty"}
		}
		return nil, &ExtractionError{Message: "no text extracted"}
	}
	if upload.ContentType == ContentTypeText && len(result.Text) < MinTextLength {
		return nil, &ValidationError{Message: fmt.Sprintf("text content must be at least %d characters", MinTextLength)}
	}

	return result, nil
}

// CleanText normalizes line endings, strips NUL bytes, trims every line and
// collapses runs of blank lines down to one.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
