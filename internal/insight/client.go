// AngelaMos | 2026
// client.go

package insight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/moodflow/internal/config"
	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/premium"
)

const systemPrompt = "You are a compassionate and insightful life coach. " +
	"Provide supportive, actionable insights based on journal entries."

var ErrEmptyCompletion = errors.New("insight: empty completion")

// Client generates premium reflections through an OpenAI-compatible chat
// completions endpoint. It never retries; the caller owns fallback.
type Client struct {
	api         openai.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

func NewClient(cfg config.InsightConfig, httpClient *http.Client) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (c *Client) Generate(
	ctx context.Context,
	content, sentimentLabel string,
) (string, error) {
	ctx, span := core.StartSpan(ctx, "insight.generate",
		attribute.String("insight.model", c.model),
	)
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(UserPrompt(content, sentimentLabel)),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return "", fmt.Errorf("insight: chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}

	return text, nil
}

func UserPrompt(content, sentimentLabel string) string {
	return fmt.Sprintf(
		"Act as a compassionate and insightful coach. The user wrote this "+
			"journal entry: '%s'. Their overall sentiment was %s. Provide a "+
			"short, helpful, and kind comment to help them reflect. Keep it "+
			"under 150 words and make it personal and encouraging.",
		content,
		sentimentLabel,
	)
}

var _ premium.InsightGenerator = (*Client)(nil)
