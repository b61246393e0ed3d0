// Package media turns attachments into text: voice and audio notes are
// downloaded and transcribed, photos are described through a vision
// completion.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"

	"sinax/internal/domain"
	"sinax/internal/lang"
)

// imagePrompt is the fixed instruction for photo analysis.
const imagePrompt = "Describe this image succinctly and technically. Flag any visible defects, damage or wear."

const (
	analyzeFailureFA = "تصویر قابل تحلیل نبود. لطفاً دوباره بفرست یا توضیح متنی بده."
	analyzeFailureEN = "The image could not be analyzed. Please resend it or describe it in text."
)

// maxDownloadBytes bounds attachment downloads (Telegram bot files cap at 20MB).
const maxDownloadBytes = 20 << 20

// Preprocessor converts media attachments to plain text for the router.
type Preprocessor struct {
	gateway     domain.Gateway
	transcriber domain.Transcriber
	vision      domain.VisionCompleter
	httpc       *http.Client
	logger      *slog.Logger
}

type Config struct {
	Gateway     domain.Gateway
	Transcriber domain.Transcriber
	Vision      domain.VisionCompleter
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

func NewPreprocessor(cfg Config) *Preprocessor {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Preprocessor{
		gateway:     cfg.Gateway,
		transcriber: cfg.Transcriber,
		vision:      cfg.Vision,
		httpc:       cfg.HTTPClient,
		logger:      cfg.Logger,
	}
}

// Transcribe resolves fileID to a download URL, fetches the audio into a
// temporary file and submits it for transcription. The temp file is removed
// on every exit path. Any stage failing surfaces as one wrapped error.
func (p *Preprocessor) Transcribe(ctx context.Context, fileID string) (string, error) {
	url, err := p.gateway.FileURL(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	tmp, err := p.download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	filename := path.Base(url)
	if filename == "." || filename == "/" {
		filename = "voice.ogg"
	}
	text, err := p.transcriber.Transcribe(ctx, tmp, filename)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	p.logger.Info("audio transcribed", "file_id", fileID, "text_len", len(text))
	return text, nil
}

// DescribeImage runs a vision completion over imageURL with the active
// persona as instructions. The return value is final reply text: on any
// failure it is the locale-appropriate analysis apology, never an error.
func (p *Preprocessor) DescribeImage(ctx context.Context, instructions, imageURL string, l lang.Lang) string {
	if imageURL == "" {
		return analyzeFailure(l)
	}
	text, err := p.vision.CompleteWithImage(ctx, instructions, imagePrompt, imageURL)
	if err != nil {
		p.logger.Warn("image analysis failed", "err", err)
		return analyzeFailure(l)
	}
	return text
}

func analyzeFailure(l lang.Lang) string {
	if l == lang.Persian {
		return analyzeFailureFA
	}
	return analyzeFailureEN
}

// download fetches url into a temp file and returns it positioned at the
// start. The caller owns close and removal.
func (p *Preprocessor) download(ctx context.Context, url string) (*os.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "sinax-audio-*")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxDownloadBytes)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("download copy: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("temp seek: %w", err)
	}
	return tmp, nil
}
