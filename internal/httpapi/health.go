package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Check is one readiness dependency, e.g. the customer record store.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

func Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func Readyz(timeout time.Duration, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				slog.Warn("readiness check failed", "check", c.Name, "err", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "check": c.Name})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// RegisterProbes mounts the probes on the server's router.
func (s *Server) RegisterProbes(timeout time.Duration, checks ...Check) {
	s.Mux.HandleFunc("/healthz", Healthz()).Methods(http.MethodGet)
	s.Mux.HandleFunc("/readyz", Readyz(timeout, checks...)).Methods(http.MethodGet)
}
