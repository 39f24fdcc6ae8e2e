package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"studysahayak-backend/internal/models"
	"studysahayak-backend/internal/pipeline"
	"studysahayak-backend/internal/services"
)

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantStage  string
	}{
		{
			"field validation",
			&services.ValidationError{Fields: map[string]string{"username": "too short"}},
			http.StatusBadRequest, "VALIDATION_ERROR", "",
		},
		{
			"conflict",
			&services.ConflictError{Message: "username already taken"},
			http.StatusConflict, "CONFLICT", "",
		},
		{
			"not found",
			&services.NotFoundError{Message: "content not found"},
			http.StatusNotFound, "NOT_FOUND", "",
		},
		{
			"unauthorized",
			&services.UnauthorizedError{Message: "invalid username or password"},
			http.StatusUnauthorized, "UNAUTHORIZED", "",
		},
		{
			"pipeline validation",
			&pipeline.ValidationError{Message: "text content is empty"},
			http.StatusBadRequest, "VALIDATION_ERROR", "validation",
		},
		{
			"extraction failure",
			&pipeline.ExtractionError{Message: "no text extracted"},
			http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "extraction",
		},
		{
			"transcription failure",
			&pipeline.TranscriptionError{Attempted: []string{"gemini"}, Message: "all transcription backends failed"},
			http.StatusUnprocessableEntity, "TRANSCRIPTION_FAILED", "transcription",
		},
		{
			"structuring failure",
			&pipeline.StructuringError{Message: "invalid AI response"},
			http.StatusBadGateway, "STRUCTURING_FAILED", "structuring",
		},
		{
			"unknown error",
			errors.New("connection reset"),
			http.StatusInternalServerError, "INTERNAL_ERROR", "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/content/upload", nil)
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
			if resp.Error.Stage != tc.wantStage {
				t.Errorf("Expected stage %q, got %q", tc.wantStage, resp.Error.Stage)
			}
		})
	}
}

func TestErrorResp_CarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "Content not found", req)

	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", resp.Error.RequestID)
	}
}
