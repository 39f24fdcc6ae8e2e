package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"studysahayak-backend/internal/models"
	"studysahayak-backend/internal/pipeline"
)

const (
	maxRetries         = 2
	defaultInputBudget = 100000
)

// AIService wraps the Gemini client: it structures extracted text into the
// educational document shape and generates derived artifacts (summary,
// notes, quiz) from stored content.
type AIService struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	maxInputChars int
	rateChan      chan struct{} // Token bucket
}

func NewAIService(apiKey string, concurrentReqs, maxInputChars int) (*AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	if maxInputChars <= 0 {
		maxInputChars = defaultInputBudget
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &AIService{
		client:        client,
		model:         model,
		maxInputChars: maxInputChars,
		rateChan:      rateChan,
	}, nil
}

func (s *AIService) Close() {
	s.client.Close()
}

// Client exposes the underlying genai client so the transcription backend
// can reuse the same connection and API key.
func (s *AIService) Client() *genai.Client { return s.client }

// Model exposes the configured generative model.
func (s *AIService) Model() *genai.GenerativeModel { return s.model }

// acquireRate blocks until a rate slot is available
func (s *AIService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *AIService) releaseRate() {
	s.rateChan <- struct{}{}
}

// StructureContent sends normalized text to Gemini and parses the response
// into StructuredContent. Transient API failures are retried with backoff;
// auth and quota failures are not. Returns any truncation warnings alongside
// the parsed document.
func (s *AIService) StructureContent(ctx context.Context, req pipeline.StructuringRequest) (*models.StructuredContent, []string, error) {
	text, warnings := s.boundInput(req.Text)

	prompt := buildStructuringPrompt(text, req.ContentType, req.Language)
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, warnings, &pipeline.StructuringError{Message: fmt.Sprintf("AI request failed: %v", err)}
	}

	structured, err := parseStructuredResponse(raw, req)
	if err != nil {
		return nil, warnings, err
	}
	return structured, warnings, nil
}

// parseStructuredResponse decodes a structuring response and enforces the
// document shape: main_sections must be non-empty, every other field gets an
// empty default.
func parseStructuredResponse(raw string, req pipeline.StructuringRequest) (*models.StructuredContent, error) {
	var structured models.StructuredContent
	if err := ParseObject(raw, &structured); err != nil {
		return nil, &pipeline.StructuringError{Message: "invalid AI response"}
	}

	if len(structured.MainSections) == 0 {
		return nil, &pipeline.StructuringError{Message: "invalid AI response: no main sections"}
	}
	fillStructuredDefaults(&structured, req)

	return &structured, nil
}

// GenerateSummary produces the condensed summary artifact.
func (s *AIService) GenerateSummary(ctx context.Context, text, language string) (*models.Summary, error) {
	bounded, _ := s.boundInput(text)

	raw, err := s.generate(ctx, buildSummaryPrompt(bounded, language))
	if err != nil {
		return nil, &pipeline.StructuringError{Message: fmt.Sprintf("AI request failed: %v", err)}
	}

	var summary models.Summary
	if err := ParseObject(raw, &summary); err != nil {
		return nil, &pipeline.StructuringError{Message: "invalid AI response"}
	}
	if summary.KeyPoints == nil {
		summary.KeyPoints = []string{}
	}
	if summary.Concepts == nil {
		summary.Concepts = map[string]string{}
	}

	return &summary, nil
}

// GenerateNotes produces the detailed study-notes artifact.
func (s *AIService) GenerateNotes(ctx context.Context, text, language string) (*models.Notes, error) {
	bounded, _ := s.boundInput(text)

	raw, err := s.generate(ctx, buildNotesPrompt(bounded, language))
	if err != nil {
		return nil, &pipeline.StructuringError{Message: fmt.Sprintf("AI request failed: %v", err)}
	}

	var notes models.Notes
	if err := ParseObject(raw, &notes); err != nil {
		return nil, &pipeline.StructuringError{Message: "invalid AI response"}
	}
	if notes.Title == "" {
		notes.Title = "Generated Notes"
	}

	return &notes, nil
}

// GenerateQuiz produces a multiple-choice quiz. numQuestions <= 0 picks a
// count from the content length.
func (s *AIService) GenerateQuiz(ctx context.Context, text, language string, numQuestions int) (*models.Quiz, error) {
	bounded, _ := s.boundInput(text)

	if numQuestions <= 0 {
		numQuestions = defaultQuestionCount(bounded)
	}
	if numQuestions > 50 {
		numQuestions = 50
	}

	raw, err := s.generate(ctx, buildQuizPrompt(bounded, language, numQuestions))
	if err != nil {
		return nil, &pipeline.StructuringError{Message: fmt.Sprintf("AI request failed: %v", err)}
	}

	var quiz models.Quiz
	if err := ParseObject(raw, &quiz); err != nil {
		return nil, &pipeline.StructuringError{Message: "invalid AI response"}
	}

	quiz.Questions = validateQuizQuestions(quiz.Questions)
	quiz.TotalQuestions = len(quiz.Questions)
	if quiz.QuizTitle == "" {
		quiz.QuizTitle = "Generated Quiz"
	}

	return &quiz, nil
}

// GenerateGraph produces the hierarchical concept-graph artifact.
func (s *AIService) GenerateGraph(ctx context.Context, text, language string) (*models.ConceptGraph, error) {
	bounded, _ := s.boundInput(text)

	raw, err := s.generate(ctx, buildGraphPrompt(bounded, language))
	if err != nil {
		return nil, &pipeline.StructuringError{Message: fmt.Sprintf("AI request failed: %v", err)}
	}

	var graph models.ConceptGraph
	if err := ParseObject(raw, &graph); err != nil {
		return nil, &pipeline.StructuringError{Message: "invalid AI response"}
	}
	if len(graph.HierarchyLevels) == 0 {
		return nil, &pipeline.StructuringError{Message: "invalid AI response: no hierarchy levels"}
	}
	if graph.Relationships == nil {
		graph.Relationships = []models.GraphRelationship{}
	}

	return &graph, nil
}

// generate runs one prompt with bounded retries and exponential backoff.
func (s *AIService) generate(ctx context.Context, prompt string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			log.Printf("Retrying Gemini call in %s (attempt %d/%d): %v", backoff, attempt, maxRetries, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			if isFatalAPIError(err) {
				return "", fmt.Errorf("Gemini API error: %w", err)
			}
			lastErr = err
			continue
		}

		return extractText(resp), nil
	}

	return "", fmt.Errorf("Gemini API error after %d retries: %w", maxRetries, lastErr)
}

// isFatalAPIError reports whether the error must not be retried:
// authentication, permission, and quota failures, plus caller cancellation.
func isFatalAPIError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 400, 401, 403, 429:
			return true
		}
	}
	return false
}

// boundInput truncates oversized text to the configured budget, recording a
// warning instead of failing.
func (s *AIService) boundInput(text string) (string, []string) {
	if len(text) <= s.maxInputChars {
		return text, nil
	}

	truncated := text[:s.maxInputChars]
	if idx := strings.LastIndexByte(truncated, ' '); idx > 0 {
		truncated = truncated[:idx]
	} else {
		// No word boundary in range; at least do not cut mid-rune.
		for len(truncated) > 0 {
			r, size := utf8.DecodeLastRuneInString(truncated)
			if r != utf8.RuneError || size != 1 {
				break
			}
			truncated = truncated[:len(truncated)-1]
		}
	}

	warning := fmt.Sprintf("input truncated from %d to %d characters", len(text), len(truncated))
	log.Printf("WARNING: %s", warning)
	return truncated, []string{warning}
}

func fillStructuredDefaults(sc *models.StructuredContent, req pipeline.StructuringRequest) {
	for i := range sc.MainSections {
		if sc.MainSections[i].KeyPoints == nil {
			sc.MainSections[i].KeyPoints = []string{}
		}
	}
	if sc.KeyTakeaways == nil {
		sc.KeyTakeaways = []string{}
	}
	if sc.ConceptsGlossary == nil {
		sc.ConceptsGlossary = map[string]string{}
	}
	if sc.Metadata.ContentType == "" {
		sc.Metadata.ContentType = req.ContentType
	}
	if sc.Metadata.Language == "" {
		sc.Metadata.Language = req.Language
	}
}

func defaultQuestionCount(text string) int {
	words := len(strings.Fields(text))
	switch {
	case words < 200:
		return 5
	case words < 500:
		return 10
	case words < 1000:
		return 15
	default:
		return 20
	}
}

func validateQuizQuestions(questions []models.QuizQuestion) []models.QuizQuestion {
	valid := make([]models.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if q.Question == "" || len(q.Options) == 0 {
			continue
		}
		if _, ok := q.Options[q.CorrectAnswer]; !ok {
			continue
		}
		q.ID = len(valid) + 1
		valid = append(valid, q)
	}
	return valid
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// MarshalArtifact renders an artifact for caching and persistence.
func MarshalArtifact(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return data, nil
}
