package usecase

import (
	"strings"
	"testing"
)

func TestEnhanceMusicPrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantRaw bool   // passes through unchanged
		want    string // substring of the enhancement, when expanded
	}{
		{name: "quoted title passes through", prompt: `a song called "Blue Sky"`, wantRaw: true},
		{name: "single quotes pass through", prompt: "play 'Moonlight' style", wantRaw: true},
		{name: "explicit instrumental passes through", prompt: "instrumental jazz", wantRaw: true},
		{name: "long prompt passes through", prompt: strings.Repeat("detailed words ", 8), wantRaw: true},
		{
			name:   "over fifteen words passes through",
			prompt: "a b c d e f g h i j k l m n o p", wantRaw: true,
		},
		{name: "electronic", prompt: "energetic techno", want: "synthesizers"},
		{name: "electronic calm mood", prompt: "calm house", want: "atmospheric and ambient"},
		{name: "folk happy mood", prompt: "happy folk tune", want: "bright and uplifting"},
		{name: "piano", prompt: "gentle piano", want: "piano composition"},
		{name: "jazz", prompt: "fast jazz", want: "uptempo and swinging"},
		{name: "rock", prompt: "rock anthem", want: "electric guitar riffs"},
		{name: "lofi", prompt: "lofi study", want: "atmospheric soundscape"},
		{name: "hip hop", prompt: "trap banger", want: "808 bass"},
		{name: "orchestral sad mood", prompt: "sad cinematic theme", want: "emotional and dramatic"},
		{name: "metal", prompt: "heavy metal", want: "distorted guitars"},
		{name: "pop", prompt: "upbeat pop", want: "catchy and upbeat"},
		{name: "blues", prompt: "slow blues", want: "soulful guitar"},
		{name: "funk", prompt: "funk jam", want: "syncopated rhythms"},
		{name: "bare mood gets generic context", prompt: "something dreamy", want: "instrumental music"},
		{name: "vague but longer gets fallback", prompt: "music for a rainy afternoon drive", want: "instrumental musical composition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceMusicPrompt(tt.prompt)
			if tt.wantRaw {
				if got != tt.prompt {
					t.Fatalf("expected pass-through, got %q", got)
				}
				return
			}
			if !strings.HasPrefix(got, tt.prompt) {
				t.Fatalf("enhancement must preserve the original wording up front: %q", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("expected %q in enhancement, got %q", tt.want, got)
			}
		})
	}
}
