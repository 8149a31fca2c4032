// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/entry"
)

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type UserDeactivator interface {
	Deactivate(ctx context.Context, id string) error
}

type EntryCounter interface {
	Count(ctx context.Context) (entry.EntryCounts, error)
}

type Handler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
	sessions   SessionPurger
	users      UserDeactivator
	entries    EntryCounter
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	Sessions   SessionPurger
	Users      UserDeactivator
	Entries    EntryCounter
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
		sessions:   cfg.Sessions,
		users:      cfg.Users,
		entries:    cfg.Entries,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Post("/users/{userID}/deactivate", h.DeactivateUser)
		r.Post("/sessions/purge", h.PurgeSessions)
	})
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if _, err := uuid.Parse(userID); err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	if err := h.users.Deactivate(r.Context(), userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "user deactivated", "user_id", userID)
	core.NoContent(w)
}

func (h *Handler) PurgeSessions(w http.ResponseWriter, r *http.Request) {
	n, err := h.sessions.PurgeExpiredSessions(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PurgeResponse{Deleted: n})
}

type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}
