package relay

import "sinax/internal/lang"

// Fixed user-facing strings. Persian is the default locale: the bot's
// primary audience writes Persian, and updates without any text (stickers,
// documents) carry no locale signal.

const welcomeMessage = "سلام! من SINAX هستم؛ دستیار فنی و صنعتی.\n" +
	"سوال متنی بفرست، پیام صوتی بده یا عکس قطعه را ارسال کن تا بررسی کنم.\n\n" +
	"Hi! I'm SINAX, a technical advisor. Send a text question, a voice note, or a photo of the part."

const unsupportedMessage = "این نوع پیام پشتیبانی نمی‌شود. لطفاً متن، پیام صوتی یا عکس بفرست."

const (
	audioFailureFA = "پیام صوتی قابل پردازش نبود. لطفاً دوباره بفرست یا سوالت را بنویس."
	audioFailureEN = "The audio could not be processed. Please resend it or type your question."
)

func audioFailure(l lang.Lang) string {
	if l == lang.Persian {
		return audioFailureFA
	}
	return audioFailureEN
}

// languageHint is appended to the persona so the model answers in the
// detected locale.
func languageHint(l lang.Lang) string {
	if l == lang.Persian {
		return "به فارسی پاسخ بده."
	}
	return "Answer in English."
}
