package domain

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyCompletion reports that the completion service answered without
// any usable text. Callers fall through to the deterministic fallback.
var ErrEmptyCompletion = errors.New("completion returned no text")

// Completer is the external language-model text-generation API.
type Completer interface {
	Complete(ctx context.Context, instructions, input string, maxOutputTokens int) (string, error)
}

// Transcriber converts raw audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// VisionCompleter is a completion call that can look at an image by URL.
type VisionCompleter interface {
	CompleteWithImage(ctx context.Context, instructions, prompt, imageURL string) (string, error)
}
