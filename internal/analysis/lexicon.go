package analysis

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/signals"
)

// LexiconAnalyzer is the offline analyzer: keyword heuristics, no network.
type LexiconAnalyzer struct {
	producer *signals.Producer
}

// NewLexiconAnalyzer wraps a signals producer. A nil producer uses the
// default lexicon and config.
func NewLexiconAnalyzer(producer *signals.Producer) *LexiconAnalyzer {
	if producer == nil {
		producer = signals.NewProducer(nil, signals.DefaultProducerConfig())
	}
	return &LexiconAnalyzer{producer: producer}
}

// Analyze scores text against the lexicon. Text with no evidence yields an
// empty partial and no error.
func (a *LexiconAnalyzer) Analyze(ctx context.Context, text string) (affect.Partial, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	ctx, span := startSpan(ctx, "analysis.lexicon", attribute.Int("analysis.text_len", len(text)))
	res, err := a.producer.Produce(ctx, signals.ProduceInput{Text: text})
	span.SetAttributes(attribute.Int("analysis.hits", res.Hits))
	endSpan(span, res.Partial, err)
	if err != nil {
		return nil, err
	}
	return res.Partial, nil
}
