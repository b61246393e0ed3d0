package domain

import "time"

// Topic is the best-effort per-chat short-term context: the last equipment
// subject a chat talked about, used only to improve continuation replies.
// Losing it must never break a reply, only reduce continuity quality.
type Topic struct {
	Subject     string    // human-readable subject label, in the chat's locale
	Class       string    // recognized equipment class key
	DimensionMM float64   // last parsed dimension in millimeters, 0 if none
	SeenAt      time.Time
}
