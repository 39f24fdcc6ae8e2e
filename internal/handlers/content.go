package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studysahayak-backend/internal/middleware"
	"studysahayak-backend/internal/models"
	"studysahayak-backend/internal/pipeline"
)

const maxUploadBytes = 50 * 1024 * 1024 // 50MB

var allowedExtensions = map[string]map[string]bool{
	pipeline.ContentTypePDF: {
		".pdf": true,
	},
	pipeline.ContentTypeVideo: {
		".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
		".webm": true, ".flv": true, ".wmv": true,
	},
}

type ContentHandler struct {
	normalizer  *pipeline.Normalizer
	ai          contentStructurer
	contentRepo contentStore
	uploadDir   string
}

type contentStructurer interface {
	StructureContent(ctx context.Context, req pipeline.StructuringRequest) (*models.StructuredContent, []string, error)
}

type contentStore interface {
	Create(ctx context.Context, c *models.ContentRecord) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.ContentRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ContentListItem, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	SetArtifact(ctx context.Context, id, userID uuid.UUID, key string, artifact json.RawMessage) error
	GetArtifact(ctx context.Context, id, userID uuid.UUID, key string) (json.RawMessage, error)
}

func NewContentHandler(normalizer *pipeline.Normalizer, ai contentStructurer, contentRepo contentStore, uploadDir string) *ContentHandler {
	return &ContentHandler{
		normalizer:  normalizer,
		ai:          ai,
		contentRepo: contentRepo,
		uploadDir:   uploadDir,
	}
}

// Upload accepts a multipart form with a "type" field (text, pdf or video),
// either a "content" text field or a "file" part, and an optional "language".
// The upload is processed synchronously: extract, structure, persist. The
// structured record is created only when every stage succeeds.
func (h *ContentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 50MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(r.FormValue("type")))
	language := strings.TrimSpace(r.FormValue("language"))
	if language == "" {
		language = "english"
	}

	upload := pipeline.UploadRequest{
		ContentType: contentType,
		Language:    language,
	}

	switch contentType {
	case pipeline.ContentTypeText:
		upload.Text = r.FormValue("content")
		if strings.TrimSpace(upload.Text) == "" {
			writeJSON(w, http.StatusBadRequest, errorRespWithStage("VALIDATION_ERROR", "text content is empty", "validation", r))
			return
		}

	case pipeline.ContentTypePDF, pipeline.ContentTypeVideo:
		tempPath, cleanup, err := h.saveUploadedFile(r, contentType)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		defer cleanup()
		upload.FilePath = tempPath

	default:
		writeJSON(w, http.StatusBadRequest, errorRespWithStage("VALIDATION_ERROR", "type must be one of: text, pdf, video", "validation", r))
		return
	}

	extraction, err := h.normalizer.Normalize(r.Context(), upload)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	structured, warnings, err := h.ai.StructureContent(r.Context(), pipeline.StructuringRequest{
		Text:        extraction.Text,
		Language:    language,
		ContentType: contentType,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	extraction.Warnings = append(extraction.Warnings, warnings...)

	record := pipeline.Assemble(structured, extraction, upload)
	record.UserID = middleware.GetUserID(r.Context())

	if err := h.contentRepo.Create(r.Context(), record); err != nil {
		log.Printf("failed to persist content for user %s: %v", record.UserID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save content", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"content_id": record.ID,
		"title":      record.Title,
	})
}

// saveUploadedFile validates the file part's extension against the declared
// content type and spools it to a temp file. The returned cleanup removes the
// temp file and must always run, success or failure.
func (h *ContentHandler) saveUploadedFile(r *http.Request, contentType string) (string, func(), error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &pipeline.ValidationError{Message: "no file provided"}
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[contentType][ext] {
		return "", nil, &pipeline.ValidationError{
			Message: "unsupported file extension " + ext + " for type " + contentType,
		}
	}

	tmp, err := os.CreateTemp(h.uploadDir, "upload-*"+ext)
	if err != nil {
		return "", nil, err
	}

	cleanup := func() {
		if removeErr := os.Remove(tmp.Name()); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Printf("failed to remove temp file %s: %v", tmp.Name(), removeErr)
		}
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}

	return tmp.Name(), cleanup, nil
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	items, err := h.contentRepo.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("failed to list content for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list content", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	record, err := h.contentRepo.GetByID(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
			return
		}
		log.Printf("failed to load content %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load content", r))
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	deleted, err := h.contentRepo.Delete(r.Context(), id, userID)
	if err != nil {
		log.Printf("failed to delete content %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete content", r))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Content not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Content deleted"})
}

func (h *ContentHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"max_file_size_mb": 50,
		"formats": []map[string]string{
			{"type": "text", "extension": "", "description": "Plain text submitted in the content field"},
			{"type": "pdf", "extension": ".pdf", "description": "PDF Document"},
			{"type": "video", "extension": ".mp4", "description": "MP4 Video"},
			{"type": "video", "extension": ".avi", "description": "AVI Video"},
			{"type": "video", "extension": ".mov", "description": "QuickTime Video"},
			{"type": "video", "extension": ".mkv", "description": "Matroska Video"},
			{"type": "video", "extension": ".webm", "description": "WebM Video"},
			{"type": "video", "extension": ".flv", "description": "Flash Video"},
			{"type": "video", "extension": ".wmv", "description": "Windows Media Video"},
		},
	})
}
