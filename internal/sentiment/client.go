// AngelaMos | 2026
// client.go

package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/moodflow/internal/config"
	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/entry"
)

const maxResponseBytes = 1 << 20

var (
	ErrUnexpectedStatus = errors.New("sentiment: unexpected status")
	ErrMalformed        = errors.New("sentiment: malformed response")
)

// Client calls a Hugging Face text-classification inference endpoint.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewClient(cfg config.SentimentConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http:   httpClient,
	}
}

func (c *Client) Analyze(
	ctx context.Context,
	text string,
) (entry.Sentiment, error) {
	ctx, span := core.StartSpan(ctx, "sentiment.analyze")
	defer span.End()

	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return entry.Sentiment{}, fmt.Errorf("sentiment: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		bytes.NewReader(body),
	)
	if err != nil {
		return entry.Sentiment{}, fmt.Errorf("sentiment: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		core.SetSpanError(ctx, err)
		return entry.Sentiment{}, fmt.Errorf("sentiment: request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return entry.Sentiment{}, fmt.Errorf(
			"%w: %d",
			ErrUnexpectedStatus,
			resp.StatusCode,
		)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return entry.Sentiment{}, fmt.Errorf("sentiment: read response: %w", err)
	}

	return ParseResponse(raw)
}

// ParseResponse picks the highest-scoring label. The endpoint returns
// either [[{label,score},...]] or the flattened [{label,score},...].
func ParseResponse(raw []byte) (entry.Sentiment, error) {
	if !gjson.ValidBytes(raw) {
		return entry.Sentiment{}, ErrMalformed
	}

	candidates := gjson.ParseBytes(raw)
	if !candidates.IsArray() {
		return entry.Sentiment{}, ErrMalformed
	}
	if first := candidates.Get("0"); first.IsArray() {
		candidates = first
	}

	var (
		best  entry.Sentiment
		found bool
	)
	candidates.ForEach(func(_, item gjson.Result) bool {
		label := item.Get("label")
		score := item.Get("score")
		if label.Type != gjson.String || score.Type != gjson.Number {
			return true
		}
		if !found || score.Float() > best.Score {
			best = entry.Sentiment{
				Label: strings.ToUpper(label.Str),
				Score: score.Float(),
			}
			found = true
		}
		return true
	})

	if !found || best.Label == "" {
		return entry.Sentiment{}, ErrMalformed
	}

	return best, nil
}

var _ entry.SentimentAnalyzer = (*Client)(nil)
