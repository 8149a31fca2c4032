// AngelaMos | 2026
// service.go

package premium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/entry"
)

const (
	StateComplete = "COMPLETE"
	ProductName   = "premium_insight"

	FallbackInsight = "Unable to generate insight at this time. Please try again later."
)

type WebhookOutcome string

const (
	OutcomeRejected          WebhookOutcome = "rejected"
	OutcomeIgnoredState      WebhookOutcome = "ignored_state"
	OutcomeMalformedMetadata WebhookOutcome = "malformed_metadata"
	OutcomeUnknownEntry      WebhookOutcome = "unknown_entry"
	OutcomeUnlocked          WebhookOutcome = "unlocked"
	OutcomeStoreError        WebhookOutcome = "store_error"
)

// EntryStore is the subset of the entry repository the unlock flow writes
// through. Every method is scoped by owner.
type EntryStore interface {
	GetForUser(ctx context.Context, id int64, userID string) (*entry.Entry, error)
	Unlock(ctx context.Context, id int64, userID string) (bool, error)
	SaveAnalysis(
		ctx context.Context,
		id int64,
		userID, analysis string,
	) (string, error)
}

type PaymentMetadata struct {
	EntryID string `json:"entry_id"`
	UserID  string `json:"user_id"`
	Product string `json:"product"`
}

type PaymentRequest struct {
	Amount      int
	Currency    string
	Reference   string
	CallbackURL string
	RedirectURL string
	Metadata    PaymentMetadata
}

type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req PaymentRequest) (string, error)
}

type InsightGenerator interface {
	Generate(ctx context.Context, content, sentimentLabel string) (string, error)
}

type Config struct {
	Amount        int
	Currency      string
	PublicURL     string
	WebhookSecret string
}

type Service struct {
	store     EntryStore
	gateway   PaymentGateway
	generator InsightGenerator
	cfg       Config
	logger    *slog.Logger
	inflight  singleflight.Group
}

func NewService(
	store EntryStore,
	gateway PaymentGateway,
	generator InsightGenerator,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return &Service{
		store:     store,
		gateway:   gateway,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// RequestPaymentLink asks the gateway for a hosted checkout bound to the
// caller's entry. It never changes the entry.
func (s *Service) RequestPaymentLink(
	ctx context.Context,
	entryID int64,
	userID string,
) (string, error) {
	if _, err := s.store.GetForUser(ctx, entryID, userID); err != nil {
		return "", err
	}

	id := strconv.FormatInt(entryID, 10)
	req := PaymentRequest{
		Amount:      s.cfg.Amount,
		Currency:    s.cfg.Currency,
		Reference:   fmt.Sprintf("moodflow_insight_%s_%s", id, userID),
		CallbackURL: s.cfg.PublicURL + "/payment-webhook",
		RedirectURL: s.cfg.PublicURL + "/?payment=success&entry_id=" + id,
		Metadata: PaymentMetadata{
			EntryID: id,
			UserID:  userID,
			Product: ProductName,
		},
	}

	ctx, span := core.StartSpan(ctx, "premium.request_payment_link",
		attribute.Int64("entry.id", entryID),
	)
	defer span.End()

	url, err := s.gateway.CreatePaymentLink(ctx, req)
	if err == nil && url == "" {
		err = errors.New("gateway returned no invoice url")
	}
	if err != nil {
		core.SetSpanError(ctx, err)
		s.logger.ErrorContext(ctx, "payment link creation failed",
			"entry_id", entryID,
			"user_id", userID,
			"error", err,
		)
		return "", fmt.Errorf(
			"request payment link: %w",
			core.UpstreamError("payment service unavailable"),
		)
	}

	return url, nil
}

// HandleWebhook authenticates a gateway callback and applies the unlock it
// describes. Only a bad signature yields an error; every other outcome is
// acknowledged so the gateway stops redelivering.
func (s *Service) HandleWebhook(
	ctx context.Context,
	payload []byte,
	signature string,
) (WebhookOutcome, error) {
	ctx, span := core.StartSpan(ctx, "premium.handle_webhook")
	defer span.End()

	if !core.VerifyPayloadSignature(s.cfg.WebhookSecret, payload, signature) {
		core.RecordWebhook(string(OutcomeRejected))
		s.logger.WarnContext(ctx, "payment webhook signature rejected")
		return OutcomeRejected, fmt.Errorf("handle webhook: %w", core.ErrSignatureInvalid)
	}

	outcome := s.applyWebhook(ctx, payload)
	span.SetAttributes(attribute.String("webhook.outcome", string(outcome)))
	core.RecordWebhook(string(outcome))

	return outcome, nil
}

func (s *Service) applyWebhook(
	ctx context.Context,
	payload []byte,
) WebhookOutcome {
	if !gjson.ValidBytes(payload) {
		s.logger.WarnContext(ctx, "payment webhook body is not valid json")
		return OutcomeMalformedMetadata
	}

	state := gjson.GetBytes(payload, "state").String()
	if state != StateComplete {
		s.logger.InfoContext(ctx, "payment webhook ignored", "state", state)
		return OutcomeIgnoredState
	}

	entryID, userID, ok := parseMetadata(payload)
	if !ok {
		s.logger.WarnContext(ctx, "payment webhook metadata missing or malformed",
			"metadata_type", gjson.GetBytes(payload, "metadata").Type.String(),
		)
		return OutcomeMalformedMetadata
	}

	found, err := s.store.Unlock(ctx, entryID, userID)
	if err != nil {
		core.SetSpanError(ctx, err)
		s.logger.ErrorContext(ctx, "premium unlock failed",
			"entry_id", entryID,
			"user_id", userID,
			"error", err,
		)
		return OutcomeStoreError
	}

	if !found {
		s.logger.WarnContext(ctx, "payment webhook references unknown entry",
			"entry_id", entryID,
			"user_id", userID,
		)
		return OutcomeUnknownEntry
	}

	core.AddSpanEvent(ctx, "entry.unlocked", attribute.Int64("entry.id", entryID))
	s.logger.InfoContext(ctx, "premium unlocked",
		"entry_id", entryID,
		"user_id", userID,
	)
	return OutcomeUnlocked
}

func parseMetadata(payload []byte) (int64, string, bool) {
	meta := gjson.GetBytes(payload, "metadata")
	if !meta.IsObject() {
		return 0, "", false
	}

	rawUser := meta.Get("user_id")
	if rawUser.Type != gjson.String {
		return 0, "", false
	}
	parsedUser, err := uuid.Parse(strings.TrimSpace(rawUser.Str))
	if err != nil {
		return 0, "", false
	}
	userID := parsedUser.String()

	entryID, ok := ParseEntryID(meta.Get("entry_id"))
	if !ok {
		return 0, "", false
	}

	return entryID, userID, true
}

// ParseEntryID accepts a positive entry id encoded as a JSON string or an
// integral number.
func ParseEntryID(raw gjson.Result) (int64, bool) {
	var id int64
	switch raw.Type {
	case gjson.String:
		parsed, err := strconv.ParseInt(strings.TrimSpace(raw.Str), 10, 64)
		if err != nil {
			return 0, false
		}
		id = parsed
	case gjson.Number:
		if raw.Num != math.Trunc(raw.Num) {
			return 0, false
		}
		id = raw.Int()
	default:
		return 0, false
	}

	return id, id > 0
}

// GetPremiumInsight returns the stored analysis for an unlocked entry,
// generating and persisting it on first request. Concurrent first requests
// in this process share one generation; across processes the conditional
// write keeps the first stored text.
func (s *Service) GetPremiumInsight(
	ctx context.Context,
	entryID int64,
	userID string,
) (string, error) {
	e, err := s.store.GetForUser(ctx, entryID, userID)
	if err != nil {
		return "", err
	}

	if !e.PremiumUnlocked {
		core.RecordInsight("payment_required")
		return "", fmt.Errorf(
			"get insight: %w",
			core.PaymentRequiredError("premium not unlocked for this entry"),
		)
	}

	if e.HasAnalysis() {
		core.RecordInsight("cached")
		return *e.PremiumAnalysis, nil
	}

	key := strconv.FormatInt(e.ID, 10)
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), e)
	})
	if err != nil {
		return "", err
	}

	text, ok := v.(string)
	if !ok {
		return "", errors.New("get insight: unexpected result type")
	}

	return text, nil
}

func (s *Service) generate(ctx context.Context, e *entry.Entry) (string, error) {
	ctx, span := core.StartSpan(ctx, "premium.generate_insight",
		attribute.Int64("entry.id", e.ID),
	)
	defer span.End()

	text, err := s.generator.Generate(ctx, e.Content, e.SentimentLabel)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		if err != nil {
			core.SetSpanError(ctx, err)
		}
		s.logger.WarnContext(ctx, "insight generation failed, using fallback",
			"entry_id", e.ID,
			"error", err,
		)
		core.RecordCollaboratorFallback("insight")
		core.RecordInsight("fallback")
		return FallbackInsight, nil
	}

	stored, err := s.store.SaveAnalysis(ctx, e.ID, e.UserID, text)
	if err != nil {
		return "", fmt.Errorf("persist insight: %w", err)
	}

	core.RecordInsight("generated")
	return stored, nil
}
