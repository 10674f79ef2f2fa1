package signals

import "github.com/danielpatrickdp/affect-field/go-controller/internal/affect"

// DefaultLexicon returns the built-in English keyword table.
func DefaultLexicon() Lexicon {
	lex := Lexicon{}
	add := func(ch affect.Channel, w float64, words ...string) {
		for _, word := range words {
			lex[word] = append(lex[word], Cue{Channel: ch, Weight: w})
		}
	}

	add(affect.Joy, 1, "happy", "joy", "glad", "delight", "delighted", "love", "wonderful",
		"great", "laugh", "smile", "bright", "celebrate", "fun", "excited", "yay")
	add(affect.Joy, -1, "sad", "miserable", "awful", "terrible", "cry", "grief", "gloomy")

	add(affect.Curiosity, 1, "why", "how", "what", "curious", "wonder", "explore", "learn",
		"discover", "question", "puzzle", "interesting", "investigate", "strange")
	add(affect.Curiosity, -1, "boring", "bored", "dull", "tedious")

	add(affect.Wonder, 1, "amazing", "magic", "magical", "stars", "dream", "dreaming",
		"marvel", "miracle", "beautiful", "wonder", "sparkle", "infinite")

	add(affect.Serenity, 1, "calm", "peace", "peaceful", "quiet", "still", "gentle", "rest",
		"breathe", "relaxed", "soft", "serene", "slow")
	add(affect.Serenity, -1, "chaos", "rush", "noise", "panic", "frantic", "hurry")

	add(affect.Longing, 1, "miss", "missing", "remember", "memory", "lost", "far", "away",
		"home", "yearn", "wish", "once", "distant", "nostalgia")

	add(affect.Tension, 1, "afraid", "fear", "angry", "anger", "stress", "stressed", "worry",
		"worried", "anxious", "tense", "danger", "deadline", "hate", "urgent", "panic", "frantic")
	add(affect.Tension, -1, "calm", "relaxed", "safe", "ease")

	add(affect.Awe, 1, "vast", "huge", "immense", "ocean", "sky", "mountain", "cosmos",
		"universe", "sublime", "overwhelming", "ancient", "awe", "infinite", "stars")

	return lex
}
