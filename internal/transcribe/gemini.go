package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// GeminiBackend transcribes via the Gemini File API: the WAV is uploaded,
// waited until active, then transcribed with a plain-text prompt. It is the
// highest-accuracy engine in the chain.
type GeminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiBackend(client *genai.Client, model *genai.GenerativeModel) *GeminiBackend {
	return &GeminiBackend{client: client, model: model}
}

func (b *GeminiBackend) Name() string    { return "gemini" }
func (b *GeminiBackend) Available() bool { return b.client != nil }

func (b *GeminiBackend) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	file, err := b.client.UploadFile(ctx, "", bytes.NewReader(audio), &genai.UploadFileOptions{
		DisplayName: "upload-audio",
		MIMEType:    "audio/wav",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio to Gemini: %w", err)
	}

	// Ensure remote file is cleaned up
	defer b.client.DeleteFile(context.Background(), file.Name)

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := b.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return "", fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return "", fmt.Errorf("Gemini failed to process uploaded audio file")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("audio file did not become active in time")
	}

	prompt := "Transcribe the provided audio verbatim. Return plain text only, without markdown, headers, or explanations."
	if language != "" {
		prompt += " The spoken language is " + language + "."
	}

	resp, err := b.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{MIMEType: "audio/wav", URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}

	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}

	return strings.TrimSpace(text.String()), nil
}
