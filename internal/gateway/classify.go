package gateway

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sinax/internal/domain"
)

// ParseUpdate classifies one raw Telegram update into a domain update.
// Kind precedence: command > voice > audio > photo > text > other. Returns
// ok=false when the update carries no message at all (nothing to reply to).
func ParseUpdate(upd tgbotapi.Update) (domain.Update, bool) {
	msg := upd.Message
	if msg == nil {
		msg = upd.EditedMessage
	}
	if msg == nil || msg.Chat == nil {
		return domain.Update{}, false
	}

	out := domain.Update{ChatID: msg.Chat.ID}

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/"):
		out.Kind = domain.KindCommand
		out.Text = text
	case msg.Voice != nil:
		out.Kind = domain.KindVoice
		out.FileID = msg.Voice.FileID
	case msg.Audio != nil:
		out.Kind = domain.KindAudio
		out.FileID = msg.Audio.FileID
	case len(msg.Photo) > 0:
		// Telegram orders photo sizes ascending; the last is the largest.
		out.Kind = domain.KindPhoto
		out.FileID = msg.Photo[len(msg.Photo)-1].FileID
	case text != "":
		out.Kind = domain.KindText
		out.Text = text
	default:
		out.Kind = domain.KindOther
	}
	return out, true
}
