package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/turtacn/aether-intel/pkg/types/common"
)

// HealthChecker reports the health of one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a name and probe function into a HealthChecker.
func CheckerFunc(name string, fn func(ctx context.Context) error) HealthChecker {
	return checkerFunc{name: name, fn: fn}
}

type checkerFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkerFunc) Name() string                    { return c.name }
func (c checkerFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler over the given dependency
// checkers.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

// LivenessResponse is the liveness probe body.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Liveness handles GET /healthz.  It confirms the process is serving and
// never consults external dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz.  All checkers run concurrently under a
// shared timeout; any failure yields 503 with the per-component detail.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	report := common.HealthReport{
		Status:    common.HealthUp,
		Timestamp: common.NewTimestamp(),
	}
	if len(h.checkers) == 0 {
		writeJSON(w, http.StatusOK, report)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	components := make([]common.ComponentHealth, len(h.checkers))
	var wg sync.WaitGroup
	for i, checker := range h.checkers {
		wg.Add(1)
		go func(i int, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)
			ch := common.ComponentHealth{
				Name:    checker.Name(),
				Status:  common.HealthUp,
				Latency: time.Since(start),
			}
			if err != nil {
				ch.Status = common.HealthDown
				ch.Message = err.Error()
			}
			components[i] = ch
		}(i, checker)
	}
	wg.Wait()

	status := http.StatusOK
	for _, c := range components {
		if c.Status != common.HealthUp {
			report.Status = common.HealthDown
			status = http.StatusServiceUnavailable
			break
		}
	}
	report.Components = components
	writeJSON(w, status, report)
}
