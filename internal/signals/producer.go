package signals

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region producer

// Producer computes affect evidence from free text with keyword heuristics.
// It never touches the network and is safe for concurrent use.
type Producer struct {
	lexicon Lexicon
	config  ProducerConfig
}

// NewProducer creates a Producer. A nil lexicon uses DefaultLexicon.
func NewProducer(lexicon Lexicon, config ProducerConfig) *Producer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Producer{lexicon: lexicon, config: config}
}

// #endregion producer

// #region produce

// Produce scores the text against the lexicon. ctx is only checked for
// cancellation; the computation itself never blocks.
func (p *Producer) Produce(ctx context.Context, input ProduceInput) (ProduceResult, error) {
	if err := ctx.Err(); err != nil {
		return ProduceResult{}, err
	}

	tokens := tokenize(input.Text)
	var scores [affect.NumChannels]float64
	var seen [affect.NumChannels]bool
	hits := 0

	negateLeft := 0
	boost := 1.0
	for _, tok := range tokens {
		switch {
		case negators[tok]:
			negateLeft = p.config.NegationWindow
			continue
		case intensifiers[tok]:
			boost = p.config.IntensifierScale
			continue
		}

		cues, ok := p.lexicon[tok]
		if ok {
			hits++
			sign := 1.0
			if negateLeft > 0 {
				sign = -0.5
			}
			for _, c := range cues {
				if !c.Channel.Valid() {
					continue
				}
				scores[c.Channel] += sign * boost * c.Weight
				seen[c.Channel] = true
			}
		}
		boost = 1.0
		if negateLeft > 0 {
			negateLeft--
		}
	}

	p.punctuation(input.Text, &scores, &seen)
	p.diversity(tokens, &scores, &seen)

	out := affect.Partial{}
	for ch := range scores {
		if !seen[ch] {
			continue
		}
		out[affect.Channel(ch)] = affect.NeutralValue + 0.5*math.Tanh(scores[ch]/p.saturation())
	}
	return ProduceResult{Partial: out, Tokens: len(tokens), Hits: hits}, nil
}

// #endregion produce

// #region punctuation

// punctuation turns exclamation and question marks into arousal and curiosity.
func (p *Producer) punctuation(text string, scores *[affect.NumChannels]float64, seen *[affect.NumChannels]bool) {
	exclaim := math.Min(3, float64(strings.Count(text, "!")))
	question := math.Min(3, float64(strings.Count(text, "?")))
	if exclaim > 0 {
		scores[affect.Tension] += exclaim * p.config.ExclaimBoost
		scores[affect.Joy] += exclaim * p.config.ExclaimBoost * 0.5
		seen[affect.Tension], seen[affect.Joy] = true, true
	}
	if question > 0 {
		scores[affect.Curiosity] += question * p.config.QuestionBoost
		seen[affect.Curiosity] = true
	}
}

// #endregion punctuation

// #region diversity

// diversity nudges curiosity by lexical variety. Needs a handful of tokens
// to mean anything.
func (p *Producer) diversity(tokens []string, scores *[affect.NumChannels]float64, seen *[affect.NumChannels]bool) {
	if len(tokens) < 5 || p.config.DiversityWeight == 0 {
		return
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	ratio := float64(len(unique)) / float64(len(tokens))
	scores[affect.Curiosity] += (ratio - 0.5) * 2 * p.config.DiversityWeight
	seen[affect.Curiosity] = true
}

// #endregion diversity

// #region helpers

func (p *Producer) saturation() float64 {
	if p.config.Saturation <= 0 {
		return 1
	}
	return p.config.Saturation
}

// tokenize splits text into lowercase letter/apostrophe runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "can't": true,
	"isn't": true, "wasn't": true, "without": true, "hardly": true,
}

var intensifiers = map[string]bool{
	"very": true, "so": true, "really": true, "deeply": true, "utterly": true,
	"extremely": true, "incredibly": true, "truly": true,
}

// #endregion helpers
