package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sinax/internal/lang"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubGateway struct {
	fileURL string
	fileErr error
}

func (s *stubGateway) Send(ctx context.Context, chatID int64, text string) error { return nil }
func (s *stubGateway) FileURL(ctx context.Context, fileID string) (string, error) {
	return s.fileURL, s.fileErr
}

type stubTranscriber struct {
	got  string
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	b, _ := io.ReadAll(audio)
	s.got = string(b)
	return s.text, s.err
}

type stubVision struct {
	text string
	err  error
}

func (s *stubVision) CompleteWithImage(ctx context.Context, instructions, prompt, imageURL string) (string, error) {
	return s.text, s.err
}

func TestTranscribe_HappyPath(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ogg-bytes"))
	}))
	defer files.Close()

	tr := &stubTranscriber{text: "hello voice"}
	p := NewPreprocessor(Config{
		Gateway:     &stubGateway{fileURL: files.URL + "/voice/file_1.oga"},
		Transcriber: tr,
		Logger:      testLogger(),
	})

	got, err := p.Transcribe(context.Background(), "file-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello voice" {
		t.Fatalf("expected transcript, got %q", got)
	}
	if tr.got != "ogg-bytes" {
		t.Fatalf("transcriber should receive the downloaded bytes, got %q", tr.got)
	}
}

func TestTranscribe_FileLookupFailure(t *testing.T) {
	p := NewPreprocessor(Config{
		Gateway:     &stubGateway{fileErr: errors.New("no file path")},
		Transcriber: &stubTranscriber{},
		Logger:      testLogger(),
	})
	if _, err := p.Transcribe(context.Background(), "file-1"); err == nil {
		t.Fatal("expected error when file lookup fails")
	}
}

func TestTranscribe_DownloadFailure(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer files.Close()

	p := NewPreprocessor(Config{
		Gateway:     &stubGateway{fileURL: files.URL + "/gone.oga"},
		Transcriber: &stubTranscriber{},
		Logger:      testLogger(),
	})
	if _, err := p.Transcribe(context.Background(), "file-1"); err == nil {
		t.Fatal("expected error when download fails")
	}
}

func TestTranscribe_TranscriptionFailure(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ogg"))
	}))
	defer files.Close()

	p := NewPreprocessor(Config{
		Gateway:     &stubGateway{fileURL: files.URL + "/v.oga"},
		Transcriber: &stubTranscriber{err: errors.New("whisper 500")},
		Logger:      testLogger(),
	})
	if _, err := p.Transcribe(context.Background(), "file-1"); err == nil {
		t.Fatal("expected error when transcription fails")
	}
}

func TestDescribeImage_ReturnsModelText(t *testing.T) {
	p := NewPreprocessor(Config{
		Vision: &stubVision{text: "a worn drive belt"},
		Logger: testLogger(),
	})
	got := p.DescribeImage(context.Background(), "persona", "https://x/p.jpg", lang.English)
	if got != "a worn drive belt" {
		t.Fatalf("expected model text, got %q", got)
	}
}

func TestDescribeImage_FailureGivesLocaleApology(t *testing.T) {
	p := NewPreprocessor(Config{
		Vision: &stubVision{err: errors.New("timeout")},
		Logger: testLogger(),
	})

	en := p.DescribeImage(context.Background(), "persona", "https://x/p.jpg", lang.English)
	if !strings.Contains(en, "could not be analyzed") {
		t.Fatalf("expected English apology, got %q", en)
	}

	fa := p.DescribeImage(context.Background(), "persona", "https://x/p.jpg", lang.Persian)
	if fa != analyzeFailureFA {
		t.Fatalf("expected Persian apology, got %q", fa)
	}
}
