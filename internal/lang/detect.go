// Package lang classifies inbound text as Persian or English by
// character-set inspection. Persian wins as soon as a single rune from the
// Arabic script blocks appears; everything else, including the empty
// string, is English.
package lang

// Lang is a detected locale.
type Lang string

const (
	Persian Lang = "fa"
	English Lang = "en"
)

// Detect returns the locale of text. Pure and deterministic.
func Detect(text string) Lang {
	for _, r := range text {
		if isArabicScript(r) {
			return Persian
		}
	}
	return English
}

func isArabicScript(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF: // Arabic
		return true
	case r >= 0x0750 && r <= 0x077F: // Arabic Supplement
		return true
	case r >= 0xFB50 && r <= 0xFDFF: // Arabic Presentation Forms-A
		return true
	case r >= 0xFE70 && r <= 0xFEFF: // Arabic Presentation Forms-B
		return true
	}
	return false
}
