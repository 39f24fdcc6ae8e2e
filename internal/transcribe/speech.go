package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

// GoogleSpeechBackend is the networked fallback engine, built on Google
// Cloud Speech-to-Text.
type GoogleSpeechBackend struct {
	client *speech.Client
}

func NewGoogleSpeechBackend(client *speech.Client) *GoogleSpeechBackend {
	return &GoogleSpeechBackend{client: client}
}

func (b *GoogleSpeechBackend) Name() string    { return "google-speech" }
func (b *GoogleSpeechBackend) Available() bool { return b.client != nil }

func (b *GoogleSpeechBackend) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            16000,
			AudioChannelCount:          1,
			LanguageCode:               speechLanguageCode(language),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	op, err := b.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	var text strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		text.WriteString(result.Alternatives[0].Transcript)
		text.WriteString(" ")
	}

	cleaned := strings.TrimSpace(text.String())
	if cleaned == "" {
		return "", fmt.Errorf("no speech detected")
	}
	return cleaned, nil
}

// speechLanguageCode maps a declared language to a BCP-47 code. Already-tagged
// values pass through unchanged.
func speechLanguageCode(language string) string {
	if strings.Contains(language, "-") {
		return language
	}

	switch strings.ToLower(language) {
	case "", "en", "english":
		return "en-US"
	case "hindi":
		return "hi-IN"
	case "spanish":
		return "es-ES"
	case "french":
		return "fr-FR"
	case "german":
		return "de-DE"
	default:
		return "en-US"
	}
}
