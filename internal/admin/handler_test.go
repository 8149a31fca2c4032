// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/entry"
)

type fakeOps struct {
	deactivated []string
	deactErr    error
	purged      int64
	purgeErr    error
}

func (f *fakeOps) Deactivate(_ context.Context, id string) error {
	if f.deactErr != nil {
		return f.deactErr
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeOps) PurgeExpiredSessions(context.Context) (int64, error) {
	return f.purged, f.purgeErr
}

type fakeCounter struct{}

func (fakeCounter) Count(context.Context) (entry.EntryCounts, error) {
	return entry.EntryCounts{Total: 3, Unlocked: 1, Analyzed: 1}, nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(ops *fakeOps) *chi.Mux {
	h := NewHandler(HandlerConfig{
		DBStats:   func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25} },
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
		Sessions:  ops,
		Users:     ops,
		Entries:   fakeCounter{},
	})
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough)
	return r
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestDeactivateUser(t *testing.T) {
	ops := &fakeOps{}
	r := newTestRouter(ops)
	id := uuid.NewString()

	rec := serve(r, http.MethodPost, "/admin/users/"+id+"/deactivate")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{id}, ops.deactivated)

	rec = serve(r, http.MethodPost, "/admin/users/not-a-uuid/deactivate")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ops.deactErr = core.ErrNotFound
	rec = serve(r, http.MethodPost, "/admin/users/"+id+"/deactivate")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurgeSessions(t *testing.T) {
	ops := &fakeOps{purged: 12}
	r := newTestRouter(ops)

	rec := serve(r, http.MethodPost, "/admin/sessions/purge")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data PurgeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.Data.Deleted)

	ops.purgeErr = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError,
		serve(r, http.MethodPost, "/admin/sessions/purge").Code)
}

func TestSystemStats(t *testing.T) {
	r := newTestRouter(&fakeOps{})

	rec := serve(r, http.MethodGet, "/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Database.Healthy)
	assert.False(t, body.Data.Redis.Healthy)
	require.NotNil(t, body.Data.Database.Stats)
	assert.Equal(t, 25, body.Data.Database.Stats.MaxOpenConnections)
	assert.Nil(t, body.Data.Redis.Stats)
	require.NotNil(t, body.Data.Entries)
	assert.Equal(t, int64(3), body.Data.Entries.Total)
}
