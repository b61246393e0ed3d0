package domain

import "context"

// Gateway is the outbound side of the messaging platform (Telegram).
type Gateway interface {
	// Send delivers one text message to a chat. Best-effort: callers log
	// the error and move on, there is no retry policy.
	Send(ctx context.Context, chatID int64, text string) error

	// FileURL resolves an attachment file ID to a direct download URL.
	FileURL(ctx context.Context, fileID string) (string, error)
}
