// AngelaMos | 2026
// stats.go

package admin

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
	"github.com/carterperez-dev/templates/moodflow/internal/entry"
)

const statsProbeTimeout = 3 * time.Second

// GetSystemStats probes the database, Redis and entry counts concurrently.
// A failed probe is reported in the body and never fails the request.
func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statsProbeTimeout)
	defer cancel()

	resp := SystemStatsResponse{Runtime: readRuntime()}

	var g errgroup.Group
	g.Go(func() error {
		resp.Database.Healthy = ping(ctx, h.dbPing)
		return nil
	})
	g.Go(func() error {
		resp.Redis.Healthy = ping(ctx, h.redisPing)
		return nil
	})
	g.Go(func() error {
		if h.entries == nil {
			return nil
		}
		if c, err := h.entries.Count(ctx); err == nil {
			resp.Entries = &c
		}
		return nil
	})
	_ = g.Wait() //nolint:errcheck // probes never return errors

	if h.dbStats != nil {
		s := h.dbStats()
		resp.Database.Stats = &DBPoolStats{
			MaxOpenConnections: s.MaxOpenConnections,
			OpenConnections:    s.OpenConnections,
			InUse:              s.InUse,
			Idle:               s.Idle,
			WaitCount:          s.WaitCount,
			WaitDuration:       s.WaitDuration.String(),
		}
	}
	if h.redisStats != nil {
		s := h.redisStats()
		resp.Redis.Stats = &RedisPoolStats{
			Hits:       s.Hits,
			Misses:     s.Misses,
			Timeouts:   s.Timeouts,
			TotalConns: s.TotalConns,
			IdleConns:  s.IdleConns,
		}
	}

	core.OK(w, resp)
}

func ping(ctx context.Context, fn func(context.Context) error) bool {
	return fn == nil || fn(ctx) == nil
}

func readRuntime() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     m.Alloc,
		NumGC:        m.NumGC,
	}
}

type SystemStatsResponse struct {
	Entries  *entry.EntryCounts `json:"entries,omitempty"`
	Database DatabaseStatus     `json:"database"`
	Redis    RedisStatus        `json:"redis"`
	Runtime  RuntimeStats       `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
