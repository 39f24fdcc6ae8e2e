package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"studysahayak-backend/internal/models"
	"studysahayak-backend/internal/pipeline"
	"studysahayak-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithStage(code, message, stage string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Stage:     stage,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *services.ConflictError:
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", e.Message, r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
	default:
		if handlePipelineError(w, r, err) {
			return
		}
		log.Printf("unhandled error on %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// handlePipelineError maps processing-stage failures to HTTP responses.
// Validation problems are the client's fault; extraction and transcription
// failures mean the file could not be processed; structuring failures mean
// the upstream AI service misbehaved.
func handlePipelineError(w http.ResponseWriter, r *http.Request, err error) bool {
	var (
		validationErr    *pipeline.ValidationError
		extractionErr    *pipeline.ExtractionError
		transcriptionErr *pipeline.TranscriptionError
		structuringErr   *pipeline.StructuringError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithStage("VALIDATION_ERROR", validationErr.Message, "validation", r))
	case errors.As(err, &extractionErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithStage("EXTRACTION_FAILED", extractionErr.Message, "extraction", r))
	case errors.As(err, &transcriptionErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithStage("TRANSCRIPTION_FAILED", transcriptionErr.Error(), "transcription", r))
	case errors.As(err, &structuringErr):
		writeJSON(w, http.StatusBadGateway, errorRespWithStage("STRUCTURING_FAILED", structuringErr.Message, "structuring", r))
	default:
		return false
	}
	return true
}
