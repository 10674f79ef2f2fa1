package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"go.opentelemetry.io/otel/attribute"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region config

// OpenAIConfig configures the hosted analyzer.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string // empty means the public endpoint
	Model           string
	MaxOutputTokens int64
	MaxAttempts     int
	// Backoff[i] is the wait after failed attempt i; the last entry repeats.
	RateLimitBackoff   []time.Duration
	ServerErrorBackoff []time.Duration
}

// DefaultOpenAIConfig returns conservative settings for an interactive
// sampler: short waits, few attempts.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:              "gpt-5-mini",
		MaxOutputTokens:    256,
		MaxAttempts:        3,
		RateLimitBackoff:   []time.Duration{2 * time.Second, 5 * time.Second},
		ServerErrorBackoff: []time.Duration{500 * time.Millisecond, 2 * time.Second},
	}
}

// #endregion config

// #region analyzer

const analyzerInstructions = `You rate the emotional colour of a short piece of text.
Return one value between 0 and 1 for each of: joy, curiosity, wonder, serenity, longing, tension, awe.
0.5 means the text carries no signal for that channel. Do not explain.`

// OpenAIAnalyzer asks a hosted model for a structured affect rating.
type OpenAIAnalyzer struct {
	client *openai.Client
	cfg    OpenAIConfig
	format responses.ResponseFormatTextConfigUnionParam
}

// NewOpenAIAnalyzer builds a client from cfg. The SDK's own retries are
// disabled; CallWithRetry owns the retry policy.
func NewOpenAIAnalyzer(cfg OpenAIConfig) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai analyzer: api key is empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai analyzer: model is empty")
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	schema := GenerateSchema[affectResponse]()
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "affect_rating",
			Schema:      schema,
			Strict:      openai.Bool(true),
			Description: openai.String("Per-channel affect rating"),
			Type:        "json_schema",
		},
	}
	return &OpenAIAnalyzer{client: &client, cfg: cfg, format: format}, nil
}

// Analyze rates text. Values outside [0,1] are left for the gate to veto.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) (affect.Partial, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	ctx, span := startSpan(ctx, "analysis.openai",
		attribute.String("analysis.model", a.cfg.Model),
		attribute.Int("analysis.text_len", len(text)),
	)

	params := responses.ResponseNewParams{
		Model:           a.cfg.Model,
		MaxOutputTokens: openai.Int(a.cfg.MaxOutputTokens),
		Instructions:    openai.String(analyzerInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{Format: a.format},
	}

	resp, err := CallWithRetry(ctx, a.cfg, func(ctx context.Context) (*responses.Response, error) {
		return a.client.Responses.New(ctx, params)
	})
	if err != nil {
		err = fmt.Errorf("openai analyze: %w", err)
		endSpan(span, nil, err)
		return nil, err
	}

	var out affectResponse
	if err := DecodeModelJSON(resp.OutputText(), &out); err != nil {
		err = fmt.Errorf("openai decode: %w", err)
		endSpan(span, nil, err)
		return nil, err
	}
	p := out.partial()
	endSpan(span, p, nil)
	return p, nil
}

// #endregion analyzer

// #region retry

// CallWithRetry runs call up to cfg.MaxAttempts times, backing off on rate
// limits and server errors. Other errors return immediately. Waits honour
// ctx cancellation.
func CallWithRetry(ctx context.Context, cfg OpenAIConfig, call func(context.Context) (*responses.Response, error)) (*responses.Response, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var wait time.Duration
		switch {
		case isRateLimitError(err):
			wait = backoffAt(cfg.RateLimitBackoff, attempt)
		case isServerError(err):
			wait = backoffAt(cfg.ServerErrorBackoff, attempt)
		default:
			return nil, err
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func backoffAt(waits []time.Duration, attempt int) time.Duration {
	if len(waits) == 0 {
		return 0
	}
	if attempt >= len(waits) {
		return waits[len(waits)-1]
	}
	return waits[attempt]
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// #endregion retry
