package adapter

import "context"

// Message is one turn of conversation context passed to the provider.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

// ImagePayload carries inline image bytes for multimodal prompts.
type ImagePayload struct {
	Data     []byte
	MimeType string
}

// GenerationService is the port for text/image LLM inference. The concrete
// vendor client lives outside the core; callers bound the wait with ctx.
type GenerationService interface {
	// Chat returns the assistant text for the prompt plus recent context.
	Chat(ctx context.Context, prompt string, history []Message, personalityID string) (string, error)
	// AnalyzeImage answers a prompt about an attached image.
	AnalyzeImage(ctx context.Context, prompt string, image ImagePayload, history []Message, personalityID string) (string, error)
}

// AudioResult is a completed music generation.
type AudioResult struct {
	Audio           []byte
	MimeType        string
	DurationSeconds int
}

// MusicService is the port for music generation providers.
type MusicService interface {
	Name() string
	// GenerateMusic produces an audio track for the prompt. Providers report
	// content-filter rejections with "flagged"/"safety" in the error text,
	// which callers treat as retryable with the unenhanced prompt.
	GenerateMusic(ctx context.Context, prompt string) (*AudioResult, error)
}
