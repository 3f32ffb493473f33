package repository

import (
	"context"

	"bluegenie-core/internal/domain/model"
)

// ConversationStore is the durable per-personality message log. Every
// mutating call writes through before returning; writes are whole-log
// replace, so readers never observe a partially written log.
type ConversationStore interface {
	// Load returns the persisted log, or an empty slice when none exists.
	// A corrupt record is treated as missing history, not an error.
	Load(ctx context.Context, personalityID string) ([]model.Message, error)
	Append(ctx context.Context, personalityID string, msg model.Message) error
	Clear(ctx context.Context, personalityID string) error
	ClearAll(ctx context.Context) error

	// ShouldAutoReset is true when the idle threshold has elapsed since the
	// log's last message.
	ShouldAutoReset(ctx context.Context, personalityID string) (bool, error)

	// ToggleBookmark flips the bookmark flag in place; no-op if absent.
	ToggleBookmark(ctx context.Context, personalityID, messageID string) error
}
