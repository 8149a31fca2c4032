// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const probeTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Check is one dependency probed by /readyz. A failing Optional check is
// reported but leaves the instance ready.
type Check struct {
	Name     string
	Checker  Checker
	Optional bool
}

type Handler struct {
	checks   []Check
	ready    atomic.Bool
	shutdown atomic.Bool
	now      func() time.Time
}

func NewHandler(checks ...Check) *Handler {
	h := &Handler{checks: checks, now: time.Now}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

// Health is the public probe. It never touches dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.refuseWhileStopping(w) {
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.refuseWhileStopping(w) {
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.refuseWhileStopping(w) {
		return
	}
	if !h.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "not_ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	results := h.probe(ctx)

	resp := ReadinessResponse{Status: "ok", Checks: results}
	code := http.StatusOK
	for i, res := range results {
		if !res.Healthy && !h.checks[i].Optional {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, resp)
}

func (h *Handler) refuseWhileStopping(w http.ResponseWriter) bool {
	if !h.shutdown.Load() {
		return false
	}
	writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
	return true
}

// probe runs every check concurrently. Results keep registration order.
func (h *Handler) probe(ctx context.Context) []HealthCheck {
	results := make([]HealthCheck, len(h.checks))

	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = runCheck(ctx, c)
		}()
	}
	wg.Wait()

	return results
}

func runCheck(ctx context.Context, c Check) HealthCheck {
	res := HealthCheck{Name: c.Name, Healthy: true}
	if c.Checker == nil {
		res.Healthy = false
		res.Message = c.Name + " checker not configured"
		return res
	}

	start := time.Now()
	err := c.Checker.Ping(ctx)
	res.Latency = time.Since(start).String()
	if err != nil {
		res.Healthy = false
		res.Message = "ping failed"
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
