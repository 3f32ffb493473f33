package ai

import (
	"context"
	"log"
	"time"

	"bluegenie-core/internal/domain/ports/adapter"
)

var _ adapter.GenerationService = (*NoopGenerationAdapter)(nil)

// NoopGenerationAdapter implements adapter.GenerationService for local/dev
// runs. It logs prompts instead of calling a real provider.
type NoopGenerationAdapter struct{}

func NewNoopGenerationAdapter() *NoopGenerationAdapter {
	return &NoopGenerationAdapter{}
}

func (a *NoopGenerationAdapter) Chat(ctx context.Context, prompt string, history []adapter.Message, personalityID string) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	log.Printf("[noop-gen] chat as %s (%d context messages): %s\n", personalityID, len(history), prompt)
	return "This is a placeholder reply.", nil
}

func (a *NoopGenerationAdapter) AnalyzeImage(ctx context.Context, prompt string, image adapter.ImagePayload, history []adapter.Message, personalityID string) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	log.Printf("[noop-gen] analyze %s image (%d bytes) as %s: %s\n", image.MimeType, len(image.Data), personalityID, prompt)
	return "This is a placeholder image description.", nil
}
