package usecase

import "strings"

// EnhanceMusicPrompt expands short, vague prompts with genre and mood detail
// to improve generation quality. Specific requests pass through untouched:
// quoted text, explicit "instrumental", or prompts already detailed enough.
// The expansion runs locally so it can never trip a provider safety filter.
func EnhanceMusicPrompt(prompt string) string {
	if strings.ContainsAny(prompt, `"'`) {
		return prompt
	}
	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "instrumental") {
		return prompt
	}
	if len(prompt) > 100 || len(strings.Fields(prompt)) > 15 {
		return prompt
	}
	return expandPrompt(prompt, lower)
}

func containsAnyWord(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// expandPrompt builds the enhanced prompt from detected genre and mood
// keywords, always preserving the user's original wording up front.
func expandPrompt(prompt, lower string) string {
	isHappy := containsAnyWord(lower, "happy", "joyful", "upbeat", "cheerful", "bright")
	isSad := containsAnyWord(lower, "sad", "melancholy", "somber", "dark", "moody", "emotional")
	isEnergetic := containsAnyWord(lower, "energetic", "intense", "powerful", "fast", "aggressive", "driving")
	isCalm := containsAnyWord(lower, "calm", "peaceful", "relaxing", "soft", "gentle", "slow")

	pick := func(energetic, calm, other string) string {
		switch {
		case isEnergetic:
			return energetic
		case isCalm:
			return calm
		default:
			return other
		}
	}

	switch {
	case containsAnyWord(lower, "electronic", "edm", "techno", "house", "trance"):
		mood := pick("high-energy and driving", "atmospheric and ambient", "dynamic and engaging")
		return prompt + " - featuring synthesizers, electronic drums, pulsing bass, and " + mood + " electronic textures"

	case containsAnyWord(lower, "acoustic", "folk"):
		mood := "warm and organic"
		if isHappy {
			mood = "bright and uplifting"
		} else if isSad {
			mood = "introspective and emotional"
		}
		return prompt + " - with fingerstyle guitar, natural acoustic instruments, and " + mood + " folk melodies"

	case containsAnyWord(lower, "piano", "classical"):
		mood := pick("dramatic and powerful", "gentle and serene", "expressive and flowing")
		return prompt + " - an " + mood + " piano composition with classical influences and rich harmonies"

	case containsAnyWord(lower, "jazz", "swing", "bebop"):
		mood := pick("uptempo and swinging", "smooth and laid-back", "sophisticated and groovy")
		return prompt + " - featuring " + mood + " jazz instrumentation with piano, bass, and drums"

	case containsAnyWord(lower, "rock", "guitar"):
		mood := pick("high-octane and aggressive", "melodic and atmospheric", "driving and powerful")
		return prompt + " - with " + mood + " electric guitar riffs, solid drums, and bass groove"

	case containsAnyWord(lower, "ambient", "chill", "lofi"):
		return prompt + " - creating an atmospheric soundscape with soft textures, gentle rhythms, and calming sonic layers"

	case containsAnyWord(lower, "hip hop", "rap", "beat", "trap", "boom bap"):
		mood := pick("hard-hitting and aggressive", "smooth and laid-back", "modern and groovy")
		return prompt + " - a " + mood + " beat with deep 808 bass, crisp drums, and melodic elements"

	case containsAnyWord(lower, "orchestral", "cinematic", "epic", "symphony"):
		mood := "sweeping and majestic"
		if isEnergetic {
			mood = "epic and powerful"
		} else if isSad {
			mood = "emotional and dramatic"
		}
		return prompt + " - a " + mood + " orchestral composition with strings, brass, and dynamic percussion"

	case containsAnyWord(lower, "country", "bluegrass"):
		return prompt + " - featuring acoustic guitar, banjo, fiddle, and authentic country instrumentation with storytelling melodies"

	case containsAnyWord(lower, "reggae", "ska", "dub"):
		return prompt + " - with offbeat guitar rhythms, groovy bass lines, and uplifting reggae vibes"

	case containsAnyWord(lower, "metal", "heavy"):
		return prompt + " - featuring heavy distorted guitars, double bass drums, and intense powerful energy"

	case strings.Contains(lower, "pop"):
		mood := "contemporary and polished"
		if isHappy {
			mood = "catchy and upbeat"
		} else if isSad {
			mood = "emotional and melodic"
		}
		return prompt + " - with " + mood + " pop production, memorable hooks, and modern instrumentation"

	case strings.Contains(lower, "blues"):
		return prompt + " - featuring soulful guitar, expressive melodies, and authentic blues feel with emotional depth"

	case containsAnyWord(lower, "funk", "groove"):
		return prompt + " - with syncopated rhythms, funky bass lines, tight drums, and infectious groove"

	case containsAnyWord(lower, "r&b", "soul"):
		return prompt + " - featuring smooth rhythms, soulful melodies, and rich harmonies with contemporary production"

	case len(strings.Fields(prompt)) <= 3:
		// Likely a bare mood or feeling.
		return prompt + " instrumental music - an expressive musical composition with rich melodies, harmonies, and dynamic instrumentation"

	default:
		return prompt + " - an instrumental musical composition with expressive melodies, rich harmonies, and dynamic arrangements"
	}
}
