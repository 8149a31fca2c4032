// AngelaMos | 2026
// handler.go

package entry

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/middleware"
)

const maxEntryBodyBytes = 1 << 16

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: core.NewValidator()}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/entry", h.CreateEntry)
		r.Get("/entries", h.ListEntries)
	})
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CreateEntryRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxEntryBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), userID, req.Text)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToEntryResponse(entry))
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	entries, err := h.service.ListEntries(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToEntryListResponse(entries))
}
