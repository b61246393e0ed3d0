// Package relay routes one inbound update to the right producer and sends
// exactly one reply back to the originating chat. Every branch is terminal:
// no retries, no loops, no cross-update state beyond the best-effort topic
// cache.
package relay

import (
	"context"
	"log/slog"
	"time"

	"sinax/internal/domain"
	"sinax/internal/fallback"
	"sinax/internal/lang"
	"sinax/internal/metrics"
	"sinax/internal/topic"
)

// MediaProcessor is the media preprocessing surface the router consumes.
type MediaProcessor interface {
	Transcribe(ctx context.Context, fileID string) (string, error)
	DescribeImage(ctx context.Context, instructions, imageURL string, l lang.Lang) string
}

// Router is the top-level per-update decision function.
type Router struct {
	gateway         domain.Gateway
	completer       domain.Completer
	media           MediaProcessor
	topics          *topic.Cache
	persona         string
	maxOutputTokens int
	collector       *metrics.Collector
	logger          *slog.Logger
}

type Config struct {
	Gateway         domain.Gateway
	Completer       domain.Completer
	Media           MediaProcessor
	Topics          *topic.Cache
	Persona         string
	MaxOutputTokens int
	Collector       *metrics.Collector
	Logger          *slog.Logger
}

func New(cfg Config) *Router {
	if cfg.Topics == nil {
		cfg.Topics = topic.NewCache(topic.DefaultCapacity)
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 800
	}
	if cfg.Collector == nil {
		cfg.Collector = metrics.NewCollector()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Router{
		gateway:         cfg.Gateway,
		completer:       cfg.Completer,
		media:           cfg.Media,
		topics:          cfg.Topics,
		persona:         cfg.Persona,
		maxOutputTokens: cfg.MaxOutputTokens,
		collector:       cfg.Collector,
		logger:          cfg.Logger,
	}
}

// Handle processes one update to completion. It never returns an error:
// every recognized update ends in exactly one outbound send, and internal
// failures become user-facing replies, never exceptions.
func (r *Router) Handle(ctx context.Context, upd domain.Update) {
	r.collector.UpdatesTotal(string(upd.Kind)).Inc()

	switch upd.Kind {
	case domain.KindCommand:
		r.send(ctx, upd.ChatID, welcomeMessage)

	case domain.KindVoice, domain.KindAudio:
		text, err := r.media.Transcribe(ctx, upd.FileID)
		if err != nil {
			r.logger.Warn("transcription failed", "chat_id", upd.ChatID, "err", err)
			r.send(ctx, upd.ChatID, audioFailure(lang.Persian))
			return
		}
		r.answer(ctx, upd.ChatID, text)

	case domain.KindPhoto:
		r.handlePhoto(ctx, upd)

	case domain.KindText:
		r.answer(ctx, upd.ChatID, upd.Text)

	default:
		r.send(ctx, upd.ChatID, unsupportedMessage)
	}
}

// handlePhoto resolves the attachment URL and sends the image description
// verbatim. The description is final reply text and bypasses the generic
// completion path entirely.
func (r *Router) handlePhoto(ctx context.Context, upd domain.Update) {
	url, err := r.gateway.FileURL(ctx, upd.FileID)
	if err != nil {
		r.logger.Warn("photo url lookup failed", "chat_id", upd.ChatID, "err", err)
		r.send(ctx, upd.ChatID, r.media.DescribeImage(ctx, r.persona, "", lang.Persian))
		return
	}
	r.send(ctx, upd.ChatID, r.media.DescribeImage(ctx, r.persona, url, lang.Persian))
}

// answer runs the completion path shared by text, voice and audio updates:
// upstream completion first, deterministic fallback on empty or error.
func (r *Router) answer(ctx context.Context, chatID int64, text string) {
	locale := lang.Detect(text)
	instructions := r.persona + "\n\n" + languageHint(locale)

	start := time.Now()
	reply, err := r.completer.Complete(ctx, instructions, text, r.maxOutputTokens)
	r.collector.CompletionSeconds().Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.Warn("completion failed, serving fallback", "chat_id", chatID, "err", err)
		r.collector.FallbacksTotal().Inc()

		var remembered *domain.Topic
		if t, ok := r.topics.Get(chatID); ok {
			remembered = &t
		}
		r.send(ctx, chatID, fallback.Respond(text, locale, remembered))
		return
	}

	r.rememberTopic(chatID, text, locale)
	r.send(ctx, chatID, reply)
}

// rememberTopic notes the subject of a successful exchange when the text
// matches a recognized equipment class. Best-effort only.
func (r *Router) rememberTopic(chatID int64, text string, locale lang.Lang) {
	class := fallback.DetectClass(text)
	if class == fallback.ClassNone {
		return
	}
	entry := domain.Topic{
		Subject: class.Subject(locale == lang.Persian),
		Class:   string(class),
		SeenAt:  time.Now(),
	}
	if mm, ok := fallback.ParseMeasurement(text); ok {
		entry.DimensionMM = mm
	}
	r.topics.Put(chatID, entry)
}

// send delivers the reply. Delivery failures are logged and counted only:
// the gateway is best-effort and the update is already handled.
func (r *Router) send(ctx context.Context, chatID int64, text string) {
	if err := r.gateway.Send(ctx, chatID, text); err != nil {
		r.collector.SendFailuresTotal().Inc()
		r.logger.Error("gateway send failed", "chat_id", chatID, "err", err)
	}
}
