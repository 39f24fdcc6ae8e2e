package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studysahayak-backend/internal/extract"
	"studysahayak-backend/internal/models"
	"studysahayak-backend/internal/pipeline"
)

type fakeStructurer struct {
	structured *models.StructuredContent
	err        error
	calls      int
}

func (f *fakeStructurer) StructureContent(ctx context.Context, req pipeline.StructuringRequest) (*models.StructuredContent, []string, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.structured, nil, nil
}

type fakeContentStore struct {
	created   *models.ContentRecord
	record    *models.ContentRecord
	artifacts map[string]json.RawMessage
}

func (f *fakeContentStore) Create(ctx context.Context, c *models.ContentRecord) error {
	f.created = c
	return nil
}

func (f *fakeContentStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.ContentRecord, error) {
	if f.record == nil {
		return nil, pgx.ErrNoRows
	}
	return f.record, nil
}

func (f *fakeContentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ContentListItem, error) {
	return nil, nil
}

func (f *fakeContentStore) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return f.record != nil, nil
}

func (f *fakeContentStore) SetArtifact(ctx context.Context, id, userID uuid.UUID, key string, artifact json.RawMessage) error {
	if f.artifacts == nil {
		f.artifacts = make(map[string]json.RawMessage)
	}
	f.artifacts[key] = artifact
	return nil
}

func (f *fakeContentStore) GetArtifact(ctx context.Context, id, userID uuid.UUID, key string) (json.RawMessage, error) {
	if a, ok := f.artifacts[key]; ok {
		return a, nil
	}
	return nil, pgx.ErrNoRows
}

type stubPDFReader struct {
	name string
	text string
	err  error
}

func (s *stubPDFReader) Name() string    { return s.name }
func (s *stubPDFReader) Available() bool { return true }
func (s *stubPDFReader) Extract(path string) (string, error) {
	return s.text, s.err
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(fileContent)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func TestUpload_RejectsBeforeProcessing(t *testing.T) {
	// A nil pipeline would panic if these requests got past validation.
	h := NewContentHandler(nil, nil, nil, t.TempDir())

	tests := []struct {
		name       string
		fields     map[string]string
		fileField  string
		fileName   string
		wantStatus int
	}{
		{
			"unknown type",
			map[string]string{"type": "audio"},
			"", "",
			http.StatusBadRequest,
		},
		{
			"missing type",
			map[string]string{"content": "some text"},
			"", "",
			http.StatusBadRequest,
		},
		{
			"text without content",
			map[string]string{"type": "text"},
			"", "",
			http.StatusBadRequest,
		},
		{
			"pdf without file",
			map[string]string{"type": "pdf"},
			"", "",
			http.StatusBadRequest,
		},
		{
			"pdf with wrong extension",
			map[string]string{"type": "pdf"},
			"file", "notes.docx",
			http.StatusBadRequest,
		},
		{
			"video with wrong extension",
			map[string]string{"type": "video"},
			"file", "lecture.mp3",
			http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tc.fields, tc.fileField, tc.fileName, []byte("data"))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			h.Upload(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpload_ShortTextFailsBeforeAICall(t *testing.T) {
	// A nil AI service would panic if the pipeline reached structuring.
	h := NewContentHandler(pipeline.NewNormalizer(nil, nil), nil, nil, t.TempDir())

	body, contentType := multipartBody(t, map[string]string{"type": "text", "content": "hi"}, "", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error.Stage != "validation" {
		t.Errorf("Expected validation stage, got %q", resp.Error.Stage)
	}
}

func TestUpload_RejectsOversizedBody(t *testing.T) {
	h := NewContentHandler(nil, nil, nil, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", strings.NewReader("x"))
	req.ContentLength = maxUploadBytes + 1
	rr := httptest.NewRecorder()

	h.Upload(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error.Code != "FILE_TOO_LARGE" {
		t.Errorf("Expected code FILE_TOO_LARGE, got %q", resp.Error.Code)
	}
}

func TestSupportedFormats(t *testing.T) {
	h := NewContentHandler(nil, nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/supported-formats", nil)
	rr := httptest.NewRecorder()

	h.SupportedFormats(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp struct {
		MaxFileSizeMB int `json:"max_file_size_mb"`
		Formats       []struct {
			Type      string `json:"type"`
			Extension string `json:"extension"`
		} `json:"formats"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.MaxFileSizeMB != 50 {
		t.Errorf("Expected 50MB limit, got %d", resp.MaxFileSizeMB)
	}

	types := map[string]bool{}
	for _, f := range resp.Formats {
		types[f.Type] = true
	}
	for _, want := range []string{"text", "pdf", "video"} {
		if !types[want] {
			t.Errorf("Expected %q in supported formats", want)
		}
	}
}

func TestGetContent_InvalidID(t *testing.T) {
	h := NewContentHandler(nil, nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/not-a-uuid", nil)
	rr := httptest.NewRecorder()

	h.Get(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed ID, got %d", rr.Code)
	}
}

func TestUpload_TextFlowsThroughToStore(t *testing.T) {
	structurer := &fakeStructurer{structured: &models.StructuredContent{
		Title: "Photosynthesis",
		MainSections: []models.StructuredSection{
			{SectionTitle: "Light Reactions", Content: "Chlorophyll absorbs light."},
		},
	}}
	store := &fakeContentStore{}
	h := NewContentHandler(pipeline.NewNormalizer(nil, nil), structurer, store, t.TempDir())

	text := "Photosynthesis converts light energy into chemical energy stored in glucose."
	body, contentType := multipartBody(t, map[string]string{"type": "text", "content": text}, "", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if structurer.calls != 1 {
		t.Errorf("Expected 1 structuring call, got %d", structurer.calls)
	}
	if store.created == nil {
		t.Fatal("Expected a record to be persisted")
	}
	if store.created.Title != "Photosynthesis" {
		t.Errorf("Expected title from structured output, got %q", store.created.Title)
	}
	if store.created.RawMetadata.ExtractionMethod != "direct" {
		t.Errorf("Expected extraction method direct, got %q", store.created.RawMetadata.ExtractionMethod)
	}
	if got := store.created.StructuredContent.Metadata.ContentType; got != "text" {
		t.Errorf("Expected metadata content type text, got %q", got)
	}
	if store.created.RawMetadata.WordCount == 0 {
		t.Error("Expected a non-zero word count")
	}

	var resp struct {
		ContentID string `json:"content_id"`
		Title     string `json:"title"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Title != "Photosynthesis" {
		t.Errorf("Expected title in response, got %q", resp.Title)
	}
}

func TestUpload_PDFRecordsFallbackExtractor(t *testing.T) {
	chain := extract.NewChain(
		&stubPDFReader{name: "primary-reader", err: errors.New("corrupt xref")},
		&stubPDFReader{name: "backup-reader", text: "Mitochondria are the powerhouse of the cell."},
	)
	structurer := &fakeStructurer{structured: &models.StructuredContent{
		MainSections: []models.StructuredSection{{SectionTitle: "Cell Biology"}},
	}}
	store := &fakeContentStore{}
	h := NewContentHandler(pipeline.NewNormalizer(chain, nil), structurer, store, t.TempDir())

	body, contentType := multipartBody(t, map[string]string{"type": "pdf"}, "file", "lecture.pdf", []byte("%PDF-1.4"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if store.created == nil {
		t.Fatal("Expected a record to be persisted")
	}
	if got := store.created.RawMetadata.ExtractionMethod; got != "backup-reader" {
		t.Errorf("Expected fallback extractor to be recorded, got %q", got)
	}
	foundWarning := false
	for _, w := range store.created.RawMetadata.Warnings {
		if strings.Contains(w, "primary-reader") {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Errorf("Expected a warning naming the failed extractor, got %v", store.created.RawMetadata.Warnings)
	}
}

func TestUpload_EmptyTextSkipsStructuringAndPersist(t *testing.T) {
	structurer := &fakeStructurer{}
	store := &fakeContentStore{}
	h := NewContentHandler(pipeline.NewNormalizer(nil, nil), structurer, store, t.TempDir())

	body, contentType := multipartBody(t, map[string]string{"type": "text", "content": "   "}, "", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if structurer.calls != 0 {
		t.Errorf("Expected no structuring calls, got %d", structurer.calls)
	}
	if store.created != nil {
		t.Error("Expected nothing persisted for rejected input")
	}
}

func TestUpload_StructuringFailureDoesNotPersist(t *testing.T) {
	structurer := &fakeStructurer{err: &pipeline.StructuringError{Message: "invalid AI response"}}
	store := &fakeContentStore{}
	h := NewContentHandler(pipeline.NewNormalizer(nil, nil), structurer, store, t.TempDir())

	body, contentType := multipartBody(t, map[string]string{
		"type":    "text",
		"content": "A perfectly reasonable lecture transcript about thermodynamics.",
	}, "", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d: %s", rr.Code, rr.Body.String())
	}
	if store.created != nil {
		t.Error("Expected nothing persisted when structuring fails")
	}
}
