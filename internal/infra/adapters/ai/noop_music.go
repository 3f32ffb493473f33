package ai

import (
	"context"
	"log"
	"time"

	"bluegenie-core/internal/domain/ports/adapter"
)

var _ adapter.MusicService = (*NoopMusicAdapter)(nil)

// NoopMusicAdapter implements adapter.MusicService for local/dev runs. It
// returns a tiny silent payload instead of calling a real provider.
type NoopMusicAdapter struct{}

func NewNoopMusicAdapter() *NoopMusicAdapter {
	return &NoopMusicAdapter{}
}

func (a *NoopMusicAdapter) Name() string { return "noop-music" }

func (a *NoopMusicAdapter) GenerateMusic(ctx context.Context, prompt string) (*adapter.AudioResult, error) {
	select {
	case <-time.After(200 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	log.Printf("[noop-music] generate: %s\n", prompt)
	return &adapter.AudioResult{
		Audio:           []byte("noop-audio"),
		MimeType:        "audio/mpeg",
		DurationSeconds: 120,
	}, nil
}
