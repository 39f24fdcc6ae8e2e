package transcribe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// WhisperLocalBackend is the offline last resort: it shells out to a local
// whisper.cpp binary if one is installed.
type WhisperLocalBackend struct {
	Binary    string // defaults to "whisper-cli"
	ModelPath string // optional -m argument
}

func (b *WhisperLocalBackend) Name() string { return "whisper-local" }

func (b *WhisperLocalBackend) Available() bool {
	_, err := exec.LookPath(b.binary())
	return err == nil
}

func (b *WhisperLocalBackend) binary() string {
	if b.Binary != "" {
		return b.Binary
	}
	return "whisper-cli"
}

func (b *WhisperLocalBackend) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	args := []string{"-f", audioPath, "-nt", "-np"}
	if b.ModelPath != "" {
		args = append(args, "-m", b.ModelPath)
	}
	if language != "" {
		args = append(args, "-l", whisperLanguage(language))
	}

	cmd := exec.CommandContext(ctx, b.binary(), args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper: %v: %s", err, lastLine(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

func whisperLanguage(language string) string {
	lower := strings.ToLower(language)
	switch lower {
	case "english":
		return "en"
	case "hindi":
		return "hi"
	case "spanish":
		return "es"
	case "french":
		return "fr"
	case "german":
		return "de"
	}
	if len(lower) == 2 {
		return lower
	}
	return "auto"
}
