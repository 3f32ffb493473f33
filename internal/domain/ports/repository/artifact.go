package repository

import (
	"context"

	"bluegenie-core/internal/domain/model"
)

// ArtifactLibrary is the durable catalog of generated audio. Save is
// all-or-nothing: a metadata record without its file (or the reverse) must
// never be left behind, and the retention cap evicts oldest-first.
type ArtifactLibrary interface {
	Save(ctx context.Context, audio []byte, prompt, mimeType string, durationSeconds int, freeTier bool, costCents int) (*model.GeneratedArtifact, error)
	// Delete removes metadata and file together; no-op when absent.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.GeneratedArtifact, error)
	GetByID(ctx context.Context, id string) (*model.GeneratedArtifact, error)
}
