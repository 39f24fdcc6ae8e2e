package pipeline

import (
	"fmt"
	"strings"
	"time"

	"studysahayak-backend/internal/models"
)

// Assemble merges the AI's structured output with extraction metadata into
// the persisted document shape. Pure transform; the caller persists the
// record and owns the ID fields.
func Assemble(structured *models.StructuredContent, extraction *ExtractionResult, upload UploadRequest) *models.ContentRecord {
	words := len(strings.Fields(extraction.Text))

	sc := *structured
	if sc.Metadata.ContentType == "" {
		sc.Metadata.ContentType = upload.ContentType
	}
	if sc.Metadata.Language == "" {
		sc.Metadata.Language = upload.Language
	}
	if sc.Metadata.EstimatedReadTime == "" {
		sc.Metadata.EstimatedReadTime = EstimateReadTime(words)
	}

	title := sc.Title
	if title == "" && len(sc.MainSections) > 0 {
		title = sc.MainSections[0].SectionTitle
	}
	if title == "" {
		title = "Untitled Content"
	}

	now := time.Now().UTC()
	return &models.ContentRecord{
		Title:             title,
		ContentType:       upload.ContentType,
		StructuredContent: sc,
		RawMetadata: models.RawMetadata{
			WordCount:        words,
			CharacterCount:   len(extraction.Text),
			ExtractionMethod: extraction.MethodUsed,
			Warnings:         extraction.Warnings,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EstimateReadTime assumes roughly 200 words per minute.
func EstimateReadTime(words int) string {
	minutes := words / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d minutes", minutes)
}
