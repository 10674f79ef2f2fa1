package signals

import "github.com/danielpatrickdp/affect-field/go-controller/internal/affect"

// #region cue

// Cue is one lexicon entry's contribution to a channel.
type Cue struct {
	Channel affect.Channel
	Weight  float64 // signed; negative pushes the channel down
}

// Lexicon maps lowercase tokens to their cues.
type Lexicon map[string][]Cue

// #endregion cue

// #region config

// ProducerConfig holds tuning knobs for signal computation.
type ProducerConfig struct {
	NegationWindow   int     // tokens after a negator whose cues are flipped
	IntensifierScale float64 // multiplier for cues following an intensifier
	Saturation       float64 // tanh scale: score/Saturation maps to the channel offset
	ExclaimBoost     float64 // per '!' added to tension and joy (capped at 3)
	QuestionBoost    float64 // per '?' added to curiosity (capped at 3)
	DiversityWeight  float64 // lexical diversity contribution to curiosity
}

// DefaultProducerConfig returns sensible defaults.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		NegationWindow:   3,
		IntensifierScale: 1.5,
		Saturation:       2.0,
		ExclaimBoost:     0.3,
		QuestionBoost:    0.4,
		DiversityWeight:  0.3,
	}
}

// #endregion config

// #region input

// ProduceInput bundles the text to analyse.
type ProduceInput struct {
	Text string
}

// ProduceResult is the partial state derived from the text. Channels with
// no evidence are absent so a merge leaves them untouched.
type ProduceResult struct {
	Partial affect.Partial
	Tokens  int
	Hits    int // tokens that matched the lexicon
}

// #endregion input
