// Package vision generates alt text for catalog images through a multimodal
// chat-completions API. Rate limits are absorbed by retrying at the token
// budget's pace; any other failure degrades the row to a sentinel value so a
// single bad image never aborts a run.
package vision

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/catalogtools/alttexter/pkg/client"
	"github.com/catalogtools/alttexter/pkg/logging"
	"github.com/catalogtools/alttexter/pkg/ratelimit"
	"github.com/rs/zerolog"
)

// FailedAltText is written for rows whose generation failed terminally. It is
// grep-able in the output so failed rows can be re-run later.
const FailedAltText = "[alt text generation failed]"

// DefaultModel is the multimodal model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// defaultPrompt asks for alt text directly usable in a product catalog.
const defaultPrompt = "Write concise, descriptive alt text for this image, " +
	"suitable for an e-commerce product catalog. Respond with the alt text " +
	"only, no quotes and no preamble."

const maxCompletionTokens = 120

// Config holds generation API settings.
type Config struct {
	// APIKey authenticates against the generation API. Required.
	APIKey string

	// Model overrides DefaultModel.
	Model string

	// BaseURL overrides the API endpoint (tests, proxies, compatible
	// backends).
	BaseURL string

	// Prompt overrides the default instruction sent with each image.
	Prompt string
}

// Generator produces alt text for image URLs.
type Generator struct {
	api    *openai.Client
	model  string
	prompt string
	caller *client.Caller
	logger zerolog.Logger
}

// Option customizes a Generator.
type Option func(*Generator) []client.Option

// WithSleeper overrides how rate-limit backoff sleeps are performed.
func WithSleeper(sleep client.Sleeper) Option {
	return func(*Generator) []client.Option {
		return []client.Option{client.WithSleeper(sleep)}
	}
}

// NewGenerator creates a Generator. The budget sizes the fixed backoff
// applied when the API reports a rate limit.
func NewGenerator(cfg Config, budget ratelimit.Budget, opts ...Option) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("vision: API key is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	g := &Generator{
		api:    openai.NewClientWithConfig(apiCfg),
		model:  cfg.Model,
		prompt: cfg.Prompt,
		logger: logging.NewLogger("vision"),
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.prompt == "" {
		g.prompt = defaultPrompt
	}

	var callerOpts []client.Option
	for _, opt := range opts {
		callerOpts = append(callerOpts, opt(g)...)
	}
	g.caller = client.New("vision", classifyGenerationError,
		client.FixedBackoff(budget.PerCallDelay()), callerOpts...)

	return g, nil
}

// Generate returns alt text for the image at imageURL. Terminal API failures
// are absorbed: the sentinel FailedAltText is returned with a nil error, and
// the row carries on through the pipeline. Only interruption (context
// cancellation during a backoff or in-flight call) surfaces as an error.
func (g *Generator) Generate(ctx context.Context, imageURL string) (string, error) {
	start := time.Now()

	text, err := client.Do(ctx, g.caller, func(ctx context.Context) (string, error) {
		return g.complete(ctx, imageURL)
	})
	generationDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, client.ErrInterrupted) || ctx.Err() != nil {
			return "", err
		}
		generationsTotal.WithLabelValues("sentinel").Inc()
		g.logger.Warn().
			Str("url", imageURL).
			Err(err).
			Msg("Generation failed - writing sentinel")
		return FailedAltText, nil
	}

	generationsTotal.WithLabelValues("success").Inc()
	return text, nil
}

// complete performs one chat-completions call.
func (g *Generator) complete(ctx context.Context, imageURL string) (string, error) {
	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: maxCompletionTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: g.prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("completion response is empty")
	}
	return text, nil
}

// classifyGenerationError maps go-openai errors onto retry classes. Only HTTP
// 429 is retriable.
func classifyGenerationError(err error) client.ErrorClass {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return client.ClassifyHTTPStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return client.ClassifyHTTPStatus(reqErr.HTTPStatusCode)
	}
	return client.ErrorClassNetwork
}
