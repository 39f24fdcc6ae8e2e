package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"studysahayak-backend/internal/middleware"
	"studysahayak-backend/internal/models"
	"studysahayak-backend/internal/services"
)

const artifactCacheTTL = 24 * time.Hour

// ArtifactHandler serves derived artifacts (summary, notes, quiz, graph)
// generated from stored structured content. Generated artifacts are cached
// in Redis and persisted on the content record so regeneration is only paid
// once per parameter combination.
type ArtifactHandler struct {
	ai          artifactGenerator
	contentRepo contentStore
	redis       *redis.Client
}

type artifactGenerator interface {
	GenerateSummary(ctx context.Context, text, language string) (*models.Summary, error)
	GenerateNotes(ctx context.Context, text, language string) (*models.Notes, error)
	GenerateQuiz(ctx context.Context, text, language string, numQuestions int) (*models.Quiz, error)
	GenerateGraph(ctx context.Context, text, language string) (*models.ConceptGraph, error)
}

func NewArtifactHandler(ai artifactGenerator, contentRepo contentStore, redisClient *redis.Client) *ArtifactHandler {
	return &ArtifactHandler{
		ai:          ai,
		contentRepo: contentRepo,
		redis:       redisClient,
	}
}

func (h *ArtifactHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "summary", func(ctx context.Context, text string, req models.ArtifactRequest) (interface{}, error) {
		return h.ai.GenerateSummary(ctx, text, req.Language)
	})
}

func (h *ArtifactHandler) Notes(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "notes", func(ctx context.Context, text string, req models.ArtifactRequest) (interface{}, error) {
		return h.ai.GenerateNotes(ctx, text, req.Language)
	})
}

func (h *ArtifactHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "quiz", func(ctx context.Context, text string, req models.ArtifactRequest) (interface{}, error) {
		return h.ai.GenerateQuiz(ctx, text, req.Language, req.NumQuestions)
	})
}

func (h *ArtifactHandler) Graph(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "graph", func(ctx context.Context, text string, req models.ArtifactRequest) (interface{}, error) {
		return h.ai.GenerateGraph(ctx, text, req.Language)
	})
}

func (h *ArtifactHandler) serve(w http.ResponseWriter, r *http.Request, kind string, generate func(context.Context, string, models.ArtifactRequest) (interface{}, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid content ID", r))
		return
	}

	var req models.ArtifactRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}
	// Zero means pick a question count from the content length; overrides
	// are clamped into range rather than rejected.
	if req.NumQuestions < 0 {
		req.NumQuestions = 0
	}
	if req.NumQuestions > 50 {
		req.NumQuestions = 50
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

	if req.Language == "" {
		req.Language = record.StructuredContent.Metadata.Language
	}
	if req.Language == "" {
		req.Language = "english"
	}

	key := artifactKey(id, kind, req)

	if cached := h.cacheGet(r.Context(), key); cached != nil {
		writeRawJSON(w, http.StatusOK, cached)
		return
	}

	if stored, err := h.contentRepo.GetArtifact(r.Context(), id, userID, key); err == nil && len(stored) > 0 {
		h.cacheSet(r.Context(), key, stored)
		writeRawJSON(w, http.StatusOK, stored)
		return
	}

	artifact, err := generate(r.Context(), record.StructuredContent.FlattenText(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	data, err := services.MarshalArtifact(artifact)
	if err != nil {
		log.Printf("failed to marshal %s artifact for content %s: %v", kind, id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to encode artifact", r))
		return
	}

	h.cacheSet(r.Context(), key, data)
	if err := h.contentRepo.SetArtifact(r.Context(), id, userID, key, data); err != nil {
		// Serve the artifact anyway; only persistence failed.
		log.Printf("failed to persist %s artifact for content %s: %v", kind, id, err)
	}

	writeRawJSON(w, http.StatusOK, data)
}

func artifactKey(id uuid.UUID, kind string, req models.ArtifactRequest) string {
	return fmt.Sprintf("artifact:%s:%s:%s:%d", id, kind, req.Language, req.NumQuestions)
}

func (h *ArtifactHandler) cacheGet(ctx context.Context, key string) []byte {
	if h.redis == nil {
		return nil
	}
	data, err := h.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("redis get %s failed: %v", key, err)
		}
		return nil
	}
	return data
}

func (h *ArtifactHandler) cacheSet(ctx context.Context, key string, data []byte) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Set(ctx, key, data, artifactCacheTTL).Err(); err != nil {
		log.Printf("redis set %s failed: %v", key, err)
	}
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
