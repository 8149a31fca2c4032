// AngelaMos | 2026
// handler.go

package premium

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/middleware"
)

const (
	SignatureHeader = "X-Provider-Signature"

	maxRequestBodyBytes = 1 << 16
	maxWebhookBodyBytes = 1 << 20
)

type PaymentLinkResponse struct {
	PaymentURL string `json:"payment_url"`
}

type InsightResponse struct {
	Insight string `json:"insight"`
}

type WebhookAck struct {
	Status string `json:"status"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Post("/payment-webhook", h.PaymentWebhook)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/payment-link", h.CreatePaymentLink)
		r.Post("/insight", h.GetInsight)
	})
}

func (h *Handler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	entryID, ok := readEntryID(w, r)
	if !ok {
		return
	}

	url, err := h.service.RequestPaymentLink(r.Context(), entryID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	core.OK(w, PaymentLinkResponse{PaymentURL: url})
}

func (h *Handler) GetInsight(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	entryID, ok := readEntryID(w, r)
	if !ok {
		return
	}

	insight, err := h.service.GetPremiumInsight(r.Context(), entryID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	core.OK(w, InsightResponse{Insight: insight})
}

// PaymentWebhook passes the body to the service byte-for-byte; it is not
// decoded until the signature over those bytes checks out. A body that
// cannot be read in full cannot be verified and is refused the same way.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		core.JSONError(w, core.SignatureInvalidError())
		return
	}

	_, err = h.service.HandleWebhook(
		r.Context(),
		payload,
		r.Header.Get(SignatureHeader),
	)
	if err != nil {
		if errors.Is(err, core.ErrSignatureInvalid) {
			core.JSONError(w, core.SignatureInvalidError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.RawJSON(w, http.StatusOK, WebhookAck{Status: "success"})
}

func readEntryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil || !gjson.ValidBytes(body) {
		core.BadRequest(w, "invalid request body")
		return 0, false
	}

	entryID, ok := ParseEntryID(gjson.GetBytes(body, "entry_id"))
	if !ok {
		core.BadRequest(w, "entry_id is required")
		return 0, false
	}

	return entryID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "entry")
	case core.IsAppError(err):
		core.JSONError(w, err)
	default:
		core.InternalServerError(w, err)
	}
}
