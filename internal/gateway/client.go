// AngelaMos | 2026
// client.go

package gateway

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
	"github.com/carterperez-dev/templates/moodflow/internal/premium"
)

const (
	paymentLinkPath  = "/api/v1/paymentlinks/"
	maxResponseBytes = 1 << 20
)

var (
	ErrUnexpectedStatus = errors.New("gateway: unexpected status")
	ErrNoInvoiceURL     = errors.New("gateway: response missing invoice_url")
)

// Client creates hosted payment links on an IntaSend-compatible API.
type Client struct {
	baseURL        string
	publishableKey string
	secretKey      string
	http           *http.Client
}

func NewClient(cfg config.PaymentConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		publishableKey: cfg.PublishableKey,
		secretKey:      cfg.SecretKey,
		http:           httpClient,
	}
}

type paymentLinkBody struct {
	PublicKey   string                  `json:"public_key,omitempty"`
	Amount      int                     `json:"amount"`
	Currency    string                  `json:"currency"`
	Reference   string                  `json:"api_ref"`
	CallbackURL string                  `json:"callback_url"`
	RedirectURL string                  `json:"redirect_url"`
	Metadata    premium.PaymentMetadata `json:"metadata"`
}

func (c *Client) CreatePaymentLink(
	ctx context.Context,
	req premium.PaymentRequest,
) (string, error) {
	ctx, span := core.StartSpan(ctx, "gateway.create_payment_link",
		attribute.String("payment.reference", req.Reference),
	)
	defer span.End()

	body, err := json.Marshal(paymentLinkBody{
		PublicKey:   c.publishableKey,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		RedirectURL: req.RedirectURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return "", fmt.Errorf("gateway: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+paymentLinkPath,
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.secretKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		core.SetSpanError(ctx, err)
		return "", fmt.Errorf("gateway: request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("gateway: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	invoiceURL := strings.TrimSpace(gjson.GetBytes(raw, "invoice_url").String())
	if invoiceURL == "" {
		return "", ErrNoInvoiceURL
	}

	return invoiceURL, nil
}

var _ premium.PaymentGateway = (*Client)(nil)
