package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studysahayak-backend/internal/models"
)

type fakeGenerator struct {
	quizCalls    int
	graphCalls   int
	numQuestions int
	language     string
}

func (f *fakeGenerator) GenerateSummary(ctx context.Context, text, language string) (*models.Summary, error) {
	return &models.Summary{MainTopic: "summary"}, nil
}

func (f *fakeGenerator) GenerateNotes(ctx context.Context, text, language string) (*models.Notes, error) {
	return &models.Notes{Title: "notes"}, nil
}

func (f *fakeGenerator) GenerateQuiz(ctx context.Context, text, language string, numQuestions int) (*models.Quiz, error) {
	f.quizCalls++
	f.numQuestions = numQuestions
	f.language = language
	return &models.Quiz{QuizTitle: "quiz"}, nil
}

func (f *fakeGenerator) GenerateGraph(ctx context.Context, text, language string) (*models.ConceptGraph, error) {
	f.graphCalls++
	f.language = language
	return &models.ConceptGraph{
		MainTopic: models.GraphTopic{Title: "Thermodynamics"},
		HierarchyLevels: []models.GraphLevel{
			{Level: 1, Title: "Core Laws", Nodes: []models.GraphNode{{ID: "n1", Title: "First Law"}}},
		},
		Relationships: []models.GraphRelationship{},
	}, nil
}

func storedRecord() *models.ContentRecord {
	return &models.ContentRecord{
		ID:    uuid.New(),
		Title: "Thermodynamics",
		StructuredContent: models.StructuredContent{
			MainSections: []models.StructuredSection{
				{SectionTitle: "Core Laws", Content: "Energy is conserved."},
			},
			Metadata: models.StructuredMetadata{Language: "english"},
		},
	}
}

func artifactRequest(t *testing.T, path string, body interface{}) *http.Request {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func artifactRouter(h *ArtifactHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/content/{id}/quiz", h.Quiz)
	r.Post("/content/{id}/graph", h.Graph)
	return r
}

func TestQuiz_ClampsQuestionCount(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"above maximum", 100, 50},
		{"negative means auto", -3, 0},
		{"zero means auto", 0, 0},
		{"in range passes through", 15, 15},
	}

	record := storedRecord()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			store := &fakeContentStore{record: record}
			h := NewArtifactHandler(gen, store, nil)

			req := artifactRequest(t, "/content/"+record.ID.String()+"/quiz",
				map[string]int{"num_questions": tc.requested})
			rr := httptest.NewRecorder()
			artifactRouter(h).ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if gen.quizCalls != 1 {
				t.Fatalf("Expected 1 quiz generation, got %d", gen.quizCalls)
			}
			if gen.numQuestions != tc.want {
				t.Errorf("Expected %d questions requested, got %d", tc.want, gen.numQuestions)
			}
		})
	}
}

func TestGraph_GeneratesAndPersists(t *testing.T) {
	gen := &fakeGenerator{}
	record := storedRecord()
	store := &fakeContentStore{record: record}
	h := NewArtifactHandler(gen, store, nil)

	req := artifactRequest(t, "/content/"+record.ID.String()+"/graph", nil)
	rr := httptest.NewRecorder()
	artifactRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gen.graphCalls != 1 {
		t.Fatalf("Expected 1 graph generation, got %d", gen.graphCalls)
	}
	if gen.language != "english" {
		t.Errorf("Expected record language to be used, got %q", gen.language)
	}

	var graph models.ConceptGraph
	if err := json.NewDecoder(rr.Body).Decode(&graph); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if graph.MainTopic.Title != "Thermodynamics" {
		t.Errorf("Expected main topic in response, got %q", graph.MainTopic.Title)
	}
	if len(graph.HierarchyLevels) != 1 {
		t.Errorf("Expected 1 hierarchy level, got %d", len(graph.HierarchyLevels))
	}

	wantKey := fmt.Sprintf("artifact:%s:graph:english:0", record.ID)
	if _, ok := store.artifacts[wantKey]; !ok {
		t.Errorf("Expected artifact persisted under %q, have %v", wantKey, keysOf(store.artifacts))
	}
}

func TestGraph_ServesStoredArtifactWithoutRegenerating(t *testing.T) {
	gen := &fakeGenerator{}
	record := storedRecord()
	key := fmt.Sprintf("artifact:%s:graph:english:0", record.ID)
	store := &fakeContentStore{
		record:    record,
		artifacts: map[string]json.RawMessage{key: json.RawMessage(`{"main_topic":{"title":"Cached"}}`)},
	}
	h := NewArtifactHandler(gen, store, nil)

	req := artifactRequest(t, "/content/"+record.ID.String()+"/graph", nil)
	rr := httptest.NewRecorder()
	artifactRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gen.graphCalls != 0 {
		t.Errorf("Expected no regeneration for stored artifact, got %d calls", gen.graphCalls)
	}
	if !strings.Contains(rr.Body.String(), "Cached") {
		t.Errorf("Expected stored artifact body, got %s", rr.Body.String())
	}
}

func TestQuiz_UnknownContentReturns404(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewArtifactHandler(gen, &fakeContentStore{}, nil)

	req := artifactRequest(t, "/content/"+uuid.NewString()+"/quiz", nil)
	rr := httptest.NewRecorder()
	artifactRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
	if gen.quizCalls != 0 {
		t.Errorf("Expected no generation for missing content, got %d calls", gen.quizCalls)
	}
}

func keysOf(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
