package repository

import (
	"context"

	"bluegenie-core/internal/domain/model"
)

// IntentLog is the write-ahead record for generation accounting. Append
// happens before any counter is touched; Ack after the remote sync lands.
// Pending intents are replayed on the next entitlement reload.
type IntentLog interface {
	Append(ctx context.Context, intent model.GenerationIntent) error
	Ack(ctx context.Context, intentID string) error
	Pending(ctx context.Context, userID string) ([]model.GenerationIntent, error)
}
