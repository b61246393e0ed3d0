package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"sinax/internal/domain"
	"sinax/internal/lang"
	"sinax/internal/topic"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeGateway struct {
	sent    []sentMessage
	sendErr error
	fileURL string
	fileErr error
}

func (f *fakeGateway) Send(ctx context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID, text})
	return f.sendErr
}

func (f *fakeGateway) FileURL(ctx context.Context, fileID string) (string, error) {
	return f.fileURL, f.fileErr
}

type fakeCompleter struct {
	reply        string
	err          error
	instructions string
	input        string
	calls        int
}

func (f *fakeCompleter) Complete(ctx context.Context, instructions, input string, maxOutputTokens int) (string, error) {
	f.calls++
	f.instructions = instructions
	f.input = input
	return f.reply, f.err
}

type fakeMedia struct {
	transcript    string
	transcribeErr error
	description   string
	describedURL  string
}

func (f *fakeMedia) Transcribe(ctx context.Context, fileID string) (string, error) {
	return f.transcript, f.transcribeErr
}

func (f *fakeMedia) DescribeImage(ctx context.Context, instructions, imageURL string, l lang.Lang) string {
	f.describedURL = imageURL
	return f.description
}

func newTestRouter(gw *fakeGateway, c *fakeCompleter, m *fakeMedia) *Router {
	return New(Config{
		Gateway:   gw,
		Completer: c,
		Media:     m,
		Persona:   "persona text",
		Topics:    topic.NewCache(8),
		Logger:    testLogger(),
	})
}

// Scenario 1: healthy completion, English text.
func TestHandle_TextHealthyCompletion(t *testing.T) {
	gw := &fakeGateway{}
	c := &fakeCompleter{reply: "Hi there"}
	r := newTestRouter(gw, c, &fakeMedia{})

	r.Handle(context.Background(), domain.Update{ChatID: 5, Kind: domain.KindText, Text: "hello"})

	if len(gw.sent) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(gw.sent))
	}
	if gw.sent[0].chatID != 5 || gw.sent[0].text != "Hi there" {
		t.Fatalf("unexpected send: %+v", gw.sent[0])
	}
	if !strings.Contains(c.instructions, "persona text") {
		t.Fatalf("persona missing from instructions: %q", c.instructions)
	}
	if !strings.Contains(c.instructions, "Answer in English") {
		t.Fatalf("expected English language hint, got %q", c.instructions)
	}
}

// Scenario 2: Persian text, completion times out, fallback served.
func TestHandle_PersianTimeoutServesFallback(t *testing.T) {
	gw := &fakeGateway{}
	c := &fakeCompleter{err: errors.New("context deadline exceeded")}
	r := newTestRouter(gw, c, &fakeMedia{})

	r.Handle(context.Background(), domain.Update{ChatID: 9, Kind: domain.KindText, Text: "تیغه اره می‌لرزد"})

	if len(gw.sent) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(gw.sent))
	}
	reply := gw.sent[0].text
	if reply == "" {
		t.Fatal("fallback reply must be non-empty")
	}
	if !strings.Contains(reply, "؟") {
		t.Fatalf("fallback must carry a follow-up question marker: %q", reply)
	}
	if strings.Contains(reply, "deadline") {
		t.Fatalf("raw error text must never reach the chat: %q", reply)
	}
}

// Scenario 3: unsupported update kind gets the fixed notice.
func TestHandle_OtherKindGetsUnsupportedNotice(t *testing.T) {
	gw := &fakeGateway{}
	r := newTestRouter(gw, &fakeCompleter{}, &fakeMedia{})

	r.Handle(context.Background(), domain.Update{ChatID: 3, Kind: domain.KindOther})

	if len(gw.sent) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(gw.sent))
	}
	if gw.sent[0].text != unsupportedMessage {
		t.Fatalf("expected unsupported notice, got %q", gw.sent[0].text)
	}
}

// Scenario 4: photo description goes out verbatim, no fallback wrapping.
func TestHandle_PhotoDescriptionSentVerbatim(t *testing.T) {
	gw := &fakeGateway{fileURL: "https://files.example/p_large.jpg"}
	m := &fakeMedia{description: "scored bearing race, replace it"}
	r := newTestRouter(gw, &fakeCompleter{}, m)

	r.Handle(context.Background(), domain.Update{ChatID: 4, Kind: domain.KindPhoto, FileID: "photo-large"})

	if m.describedURL != "https://files.example/p_large.jpg" {
		t.Fatalf("expected resolved photo URL, got %q", m.describedURL)
	}
	if len(gw.sent) != 1 || gw.sent[0].text != "scored bearing race, replace it" {
		t.Fatalf("description must be sent verbatim: %+v", gw.sent)
	}
}

func TestHandle_VoiceTranscribedThenCompleted(t *testing.T) {
	gw := &fakeGateway{}
	c := &fakeCompleter{reply: "spoken answer"}
	m := &fakeMedia{transcript: "what oil grade"}
	r := newTestRouter(gw, c, m)

	r.Handle(context.Background(), domain.Update{ChatID: 7, Kind: domain.KindVoice, FileID: "v1"})

	if c.input != "what oil grade" {
		t.Fatalf("transcript should feed the completion, got %q", c.input)
	}
	if len(gw.sent) != 1 || gw.sent[0].text != "spoken answer" {
		t.Fatalf("unexpected sends: %+v", gw.sent)
	}
}

func TestHandle_VoiceTranscriptionFailureApologizes(t *testing.T) {
	gw := &fakeGateway{}
	c := &fakeCompleter{}
	m := &fakeMedia{transcribeErr: errors.New("download failed")}
	r := newTestRouter(gw, c, m)

	r.Handle(context.Background(), domain.Update{ChatID: 7, Kind: domain.KindAudio, FileID: "a1"})

	if c.calls != 0 {
		t.Fatal("completion must not run when transcription fails")
	}
	if len(gw.sent) != 1 || gw.sent[0].text != audioFailureFA {
		t.Fatalf("expected audio apology, got %+v", gw.sent)
	}
}

func TestHandle_CommandGetsWelcome(t *testing.T) {
	gw := &fakeGateway{}
	r := newTestRouter(gw, &fakeCompleter{}, &fakeMedia{})

	r.Handle(context.Background(), domain.Update{ChatID: 2, Kind: domain.KindCommand, Text: "/start"})

	if len(gw.sent) != 1 || gw.sent[0].text != welcomeMessage {
		t.Fatalf("expected welcome message, got %+v", gw.sent)
	}
}

// Totality: every kind produces exactly one send and never panics.
func TestHandle_ExactlyOneSendPerKind(t *testing.T) {
	kinds := []domain.UpdateKind{
		domain.KindCommand, domain.KindVoice, domain.KindAudio,
		domain.KindPhoto, domain.KindText, domain.KindOther,
	}
	for _, kind := range kinds {
		gw := &fakeGateway{fileURL: "https://files.example/f"}
		r := newTestRouter(gw, &fakeCompleter{reply: "ok"}, &fakeMedia{transcript: "t", description: "d"})

		r.Handle(context.Background(), domain.Update{ChatID: 1, Kind: kind, Text: "hi", FileID: "f"})

		if len(gw.sent) != 1 {
			t.Fatalf("kind %q: expected exactly one send, got %d", kind, len(gw.sent))
		}
	}
}

func TestHandle_SendFailureIsSwallowed(t *testing.T) {
	gw := &fakeGateway{sendErr: errors.New("403 blocked")}
	r := newTestRouter(gw, &fakeCompleter{reply: "ok"}, &fakeMedia{})

	// Must not panic or retry.
	r.Handle(context.Background(), domain.Update{ChatID: 1, Kind: domain.KindText, Text: "hi"})

	if len(gw.sent) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(gw.sent))
	}
}

func TestHandle_TopicRememberedAndUsedInFallback(t *testing.T) {
	topics := topic.NewCache(8)
	gw := &fakeGateway{}
	c := &fakeCompleter{reply: "torque it to spec"}
	r := New(Config{
		Gateway:   gw,
		Completer: c,
		Media:     &fakeMedia{},
		Persona:   "p",
		Topics:    topics,
		Logger:    testLogger(),
	})

	// Successful exchange about a recognized subject remembers the topic.
	r.Handle(context.Background(), domain.Update{ChatID: 11, Kind: domain.KindText, Text: "saw blade 300mm vibrates"})
	remembered, ok := topics.Get(11)
	if !ok {
		t.Fatal("expected topic to be remembered after a successful exchange")
	}
	if remembered.Class != "saw_blade" {
		t.Fatalf("unexpected class %q", remembered.Class)
	}
	if remembered.DimensionMM != 300 {
		t.Fatalf("expected remembered dimension 300, got %v", remembered.DimensionMM)
	}

	// Upstream dies; continuation phrase re-engages the remembered subject.
	c.err = errors.New("upstream down")
	c.reply = ""
	r.Handle(context.Background(), domain.Update{ChatID: 11, Kind: domain.KindText, Text: "another question"})

	last := gw.sent[len(gw.sent)-1].text
	if !strings.Contains(last, "saw blade") {
		t.Fatalf("continuation fallback should mention the remembered subject: %q", last)
	}
}

func TestHandle_NoTopicForUnrecognizedSubject(t *testing.T) {
	topics := topic.NewCache(8)
	gw := &fakeGateway{}
	r := New(Config{
		Gateway:   gw,
		Completer: &fakeCompleter{reply: "sure"},
		Media:     &fakeMedia{},
		Persona:   "p",
		Topics:    topics,
		Logger:    testLogger(),
	})

	r.Handle(context.Background(), domain.Update{ChatID: 12, Kind: domain.KindText, Text: "tell me a joke"})

	if _, ok := topics.Get(12); ok {
		t.Fatal("unrecognized subjects must not be remembered")
	}
}
