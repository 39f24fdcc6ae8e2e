package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StructuredSection is one body section of AI-structured material.
type StructuredSection struct {
	SectionTitle string   `json:"section_title"`
	Content      string   `json:"content"`
	KeyPoints    []string `json:"key_points"`
}

type StructuredMetadata struct {
	ContentType       string `json:"content_type"`
	Language          string `json:"language"`
	EstimatedReadTime string `json:"estimated_read_time"`
}

// StructuredContent is the educational document shape the AI is asked to
// produce. Every field except main_sections may legitimately come back
// empty; missing fields are filled with empty defaults after parsing.
type StructuredContent struct {
	Title            string              `json:"title"`
	ExecutiveSummary string              `json:"executive_summary"`
	Introduction     string              `json:"introduction"`
	MainSections     []StructuredSection `json:"main_sections"`
	KeyTakeaways     []string            `json:"key_takeaways"`
	Conclusion       string              `json:"conclusion"`
	ConceptsGlossary map[string]string   `json:"concepts_glossary"`
	Metadata         StructuredMetadata  `json:"metadata"`
}

// FlattenText joins the readable parts of the document into plain text,
// used when derived artifacts (summary, notes, quiz) are generated from an
// already-structured record.
func (sc *StructuredContent) FlattenText() string {
	var parts []string

	if sc.ExecutiveSummary != "" {
		parts = append(parts, sc.ExecutiveSummary)
	}
	if sc.Introduction != "" {
		parts = append(parts, sc.Introduction)
	}
	for _, section := range sc.MainSections {
		if section.Content != "" {
			parts = append(parts, section.Content)
		}
		parts = append(parts, section.KeyPoints...)
	}
	parts = append(parts, sc.KeyTakeaways...)
	if sc.Conclusion != "" {
		parts = append(parts, sc.Conclusion)
	}

	return strings.Join(parts, " ")
}

// RawMetadata describes how the source text was obtained.
type RawMetadata struct {
	WordCount        int      `json:"word_count"`
	CharacterCount   int      `json:"character_count"`
	ExtractionMethod string   `json:"extraction_method"`
	Warnings         []string `json:"warnings,omitempty"`
}

// ContentRecord is the persisted document produced by a pipeline run.
type ContentRecord struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Title             string            `json:"title"`
	ContentType       string            `json:"content_type"`
	StructuredContent StructuredContent `json:"structured_content"`
	RawMetadata       RawMetadata       `json:"raw_metadata"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ContentListItem is the listing projection (structured body excluded).
type ContentListItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	WordCount   int       `json:"word_count"`
	CreatedAt   time.Time `json:"created_at"`
}
