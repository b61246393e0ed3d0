package domain

// UpdateKind classifies one inbound update from the messaging gateway.
type UpdateKind string

const (
	KindCommand UpdateKind = "command"
	KindVoice   UpdateKind = "voice"
	KindAudio   UpdateKind = "audio"
	KindPhoto   UpdateKind = "photo"
	KindText    UpdateKind = "text"
	KindOther   UpdateKind = "other"
)

// Update is one event delivered by the messaging gateway. It is created
// once when the webhook body is classified and consumed exactly once by
// the relay router; nothing is persisted.
type Update struct {
	ChatID int64
	Kind   UpdateKind
	Text   string // present for text/command
	FileID string // present for voice/audio/photo (highest-resolution variant for photos)
}
