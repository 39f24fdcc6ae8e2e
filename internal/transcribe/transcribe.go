// Package transcribe turns uploaded videos into text: the audio track is
// demuxed to a temporary WAV, then a prioritized list of speech-to-text
// backends is tried until one succeeds.
package transcribe

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"studysahayak-backend/internal/pipeline"
)

// Backend is one interchangeable speech-to-text engine.
type Backend interface {
	Name() string
	Available() bool
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// AudioExtractor produces a mono 16 kHz WAV from a video container. The
// returned path is a temporary file owned by the caller.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}

// Transcriber runs the fixed-priority backend chain. The first success wins;
// no output from a failed backend ever reaches the result.
type Transcriber struct {
	audio    AudioExtractor
	backends []Backend
}

func NewTranscriber(audio AudioExtractor, backends ...Backend) *Transcriber {
	return &Transcriber{audio: audio, backends: backends}
}

func (t *Transcriber) Transcribe(ctx context.Context, videoPath, language string) (*pipeline.ExtractionResult, error) {
	audioPath, err := t.audio.ExtractAudio(ctx, videoPath)
	if err != nil {
		return nil, &pipeline.ExtractionError{Message: fmt.Sprintf("failed to extract audio track: %v", err)}
	}
	defer os.Remove(audioPath)

	var attempted, warnings []string
	for _, b := range t.backends {
		if !b.Available() {
			warnings = append(warnings, fmt.Sprintf("%s unavailable", b.Name()))
			continue
		}
		attempted = append(attempted, b.Name())

		text, err := b.Transcribe(ctx, audioPath, language)
		if err != nil {
			log.Printf("Transcription via %s failed: %v", b.Name(), err)
			warnings = append(warnings, fmt.Sprintf("%s failed: %v", b.Name(), err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			warnings = append(warnings, fmt.Sprintf("%s detected no speech", b.Name()))
			continue
		}

		return &pipeline.ExtractionResult{
			Text:       text,
			MethodUsed: b.Name(),
			Warnings:   warnings,
		}, nil
	}

	return nil, &pipeline.TranscriptionError{
		Attempted: attempted,
		Message:   "all transcription backends failed",
	}
}

// FFmpegExtractor shells out to ffmpeg to demux the audio track.
type FFmpegExtractor struct {
	TempDir string
}

func (f *FFmpegExtractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return "", fmt.Errorf("ffmpeg not found in PATH")
	}

	tmp, err := os.CreateTemp(f.TempDir, "audio-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}
	audioPath := tmp.Name()
	tmp.Close()

	// 16 kHz mono PCM, the format every backend in the chain accepts.
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		audioPath,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(audioPath)
		return "", fmt.Errorf("ffmpeg: %v: %s", err, lastLine(stderr.String()))
	}

	info, err := os.Stat(audioPath)
	if err != nil || info.Size() == 0 {
		os.Remove(audioPath)
		return "", fmt.Errorf("video has no usable audio stream")
	}

	return audioPath, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
