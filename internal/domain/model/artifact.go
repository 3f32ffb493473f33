package model

import (
	"crypto/rand"
	"time"

	"bluegenie-core/internal/domain"

	"github.com/oklog/ulid/v2"
)

// GeneratedArtifact is one stored music/audio result, distinct from a chat
// message. The metadata record and its audio file live and die together.
type GeneratedArtifact struct {
	ID              string    `json:"id"`
	Prompt          string    `json:"prompt"`
	FilePath        string    `json:"file_path"`
	MimeType        string    `json:"mime_type"`
	DurationSeconds int       `json:"duration_seconds"`
	FreeTier        bool      `json:"free_tier"`
	CostCents       int       `json:"cost_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewArtifactID returns a ULID: lexicographic order matches creation order,
// which the library leans on for oldest-first eviction.
func NewArtifactID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

func NewGeneratedArtifact(prompt, mimeType string, durationSeconds int, freeTier bool, costCents int) (*GeneratedArtifact, error) {
	if prompt == "" || mimeType == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &GeneratedArtifact{
		ID:              NewArtifactID(now),
		Prompt:          prompt,
		MimeType:        mimeType,
		DurationSeconds: durationSeconds,
		FreeTier:        freeTier,
		CostCents:       costCents,
		CreatedAt:       now,
	}, nil
}

// FileName derives a stable on-disk name from the artifact identity.
func (a *GeneratedArtifact) FileName() string {
	ext := ".mp3"
	switch a.MimeType {
	case "audio/wav", "audio/x-wav":
		ext = ".wav"
	case "audio/ogg":
		ext = ".ogg"
	}
	return a.ID + ext
}
