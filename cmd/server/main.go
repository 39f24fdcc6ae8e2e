package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"google.golang.org/api/option"

	"studysahayak-backend/internal/config"
	"studysahayak-backend/internal/database"
	"studysahayak-backend/internal/extract"
	"studysahayak-backend/internal/handlers"
	"studysahayak-backend/internal/middleware"
	"studysahayak-backend/internal/pipeline"
	"studysahayak-backend/internal/repository"
	"studysahayak-backend/internal/router"
	"studysahayak-backend/internal/services"
	"studysahayak-backend/internal/transcribe"
)

func main() {
	log.Println("🚀 Starting StudySahayak Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	contentRepo := repository.NewContentRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	aiService, err := services.NewAIService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, cfg.GeminiMaxInputChars)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer aiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Step 6: Build the Processing Pipeline ────
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("✗ Failed to create upload directory: %v", err)
	}

	pdfChain := extract.DefaultPDFChain()

	backends := []transcribe.Backend{
		transcribe.NewGeminiBackend(aiService.Client(), aiService.Model()),
	}
	var speechOpts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		speechOpts = append(speechOpts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	if speechClient, err := speech.NewClient(context.Background(), speechOpts...); err != nil {
		log.Printf("Google Cloud Speech unavailable, skipping backend: %v", err)
	} else {
		defer speechClient.Close()
		backends = append(backends, transcribe.NewGoogleSpeechBackend(speechClient))
	}
	backends = append(backends, &transcribe.WhisperLocalBackend{
		Binary:    cfg.WhisperBin,
		ModelPath: cfg.WhisperModel,
	})

	transcriber := transcribe.NewTranscriber(
		&transcribe.FFmpegExtractor{TempDir: cfg.UploadDir},
		backends...,
	)

	normalizer := pipeline.NewNormalizer(pdfChain, transcriber)
	log.Printf("✓ Processing pipeline ready (%d transcription backends)", len(backends))

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, jwtAuth)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	contentHandler := handlers.NewContentHandler(normalizer, aiService, contentRepo, cfg.UploadDir)
	artifactHandler := handlers.NewArtifactHandler(aiService, contentRepo, redisClient)

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		contentHandler,
		artifactHandler,
		cfg.FrontendURL,
	)

	// Uploads are processed synchronously, so the write timeout must cover
	// extraction, transcription and the AI round trips.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ StudySahayak Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
