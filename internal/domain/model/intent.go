package model

import "time"

// GenerationIntent is a write-ahead record linking the local generation
// accounting with the remote counter increment. An intent is appended before
// either side is touched and acknowledged once the remote sync lands; pending
// intents are replayed on the next entitlement reload so a crash between the
// two writes cannot double count or undercount.
type GenerationIntent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ArtifactID string    `json:"artifact_id"`
	CreatedAt  time.Time `json:"created_at"`
	Acked      bool      `json:"acked"`
}
