// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/middleware"
)

const maxAuthBodyBytes = 1 << 16

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	service *Service
	cookie  CookieConfig
}

func NewHandler(service *Service, cookie CookieConfig) *Handler {
	return &Handler{
		service: service,
		cookie:  cookie,
	}
}

// RegisterRoutes mounts the public credential endpoints behind limiter and
// the session-scoped ones behind authenticator.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, limiter func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/logout", h.Logout)
		r.Get("/user", h.GetUser)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.Register(
		r.Context(),
		req,
		r.UserAgent(),
		core.ClientIP(r),
	)
	if err != nil {
		var dupErr *core.DuplicateKeyError
		switch {
		case errors.As(err, &dupErr):
			core.JSONError(w, core.DuplicateError(dupErr.Field))
		case core.IsAppError(err):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.setSessionCookie(w, resp.Session.Token, resp.Session.ExpiresAt)
	core.Created(w, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.Login(
		r.Context(),
		req,
		r.UserAgent(),
		core.ClientIP(r),
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.Unauthorized(w, "invalid credentials")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.setSessionCookie(w, resp.Session.Token, resp.Session.ExpiresAt)
	core.OK(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetSessionToken(r.Context())

	if err := h.service.Logout(r.Context(), token); err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.clearSessionCookie(w)
	core.NoContent(w)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, user)
}

func (h *Handler) setSessionCookie(
	w http.ResponseWriter,
	token string,
	expiresAt time.Time,
) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
