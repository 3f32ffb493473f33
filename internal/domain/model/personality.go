package model

// ResponseStyle selects how the generation collaborator is prompted.
type ResponseStyle string

const (
	StyleConversational ResponseStyle = "conversational"
	StyleMusic          ResponseStyle = "music"
)

// Personality is a named preset that partitions conversation history
// and carries the greeting seeded into an empty log.
type Personality struct {
	ID       string
	Name     string
	Greeting string
	Style    ResponseStyle
	Free     bool // available without premium
}

const (
	PersonalityDefault       = "default"
	PersonalityMusicComposer = "music_composer"
)

// AutoResetNotice replaces a log truncated by the idle auto-reset policy.
const AutoResetNotice = "It's been a while, so I started a fresh conversation for us. What's on your mind?"

var personalities = []Personality{
	{
		ID:       PersonalityDefault,
		Name:     "Blue Genie",
		Greeting: "Hi! I'm Blue Genie, your AI companion. Ask me anything!",
		Style:    StyleConversational,
		Free:     true,
	},
	{
		ID:       PersonalityMusicComposer,
		Name:     "Music Composer",
		Greeting: "Welcome to the studio! Describe a song and I'll help you write or generate it.",
		Style:    StyleMusic,
		Free:     true,
	},
	{
		ID:       "study_buddy",
		Name:     "Study Buddy",
		Greeting: "Ready to learn? Tell me what subject we're tackling today.",
		Style:    StyleConversational,
	},
	{
		ID:       "storyteller",
		Name:     "Storyteller",
		Greeting: "Once upon a time... give me a spark and I'll spin you a tale.",
		Style:    StyleConversational,
	},
}

// Personalities returns all canned presets in display order.
func Personalities() []Personality {
	out := make([]Personality, len(personalities))
	copy(out, personalities)
	return out
}

// PersonalityByID returns the preset and whether it exists.
func PersonalityByID(id string) (Personality, bool) {
	for _, p := range personalities {
		if p.ID == id {
			return p, true
		}
	}
	return Personality{}, false
}
