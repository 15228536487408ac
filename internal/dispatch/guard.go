package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"wanotif/internal/providers/whatsapp"
)

// Guard protects the provider from this process: a local rate limit and a
// circuit breaker that opens on transient provider failures. It never retries.
type Guard struct {
	Limiter   *rate.Limiter
	Breaker   *gobreaker.CircuitBreaker
	LimitWait time.Duration
}

// NewGuard mirrors the worker defaults: trip after 10 consecutive transient
// failures, probe again after 20s.
func NewGuard(rps float64, burst int) *Guard {
	g := &Guard{
		Breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "whatsapp",
			MaxRequests: 3,
			Timeout:     20 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
		}),
	}
	if rps > 0 {
		g.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return g
}

type sendFunc func(ctx context.Context) (whatsapp.Response, error)

// unhealthyStatus lets a transient HTTP status count against the breaker
// while the response itself is still handed back to the caller.
type unhealthyStatus struct{ status int }

func (e unhealthyStatus) Error() string { return "provider unhealthy: status " + strconv.Itoa(e.status) }

func (g *Guard) Do(ctx context.Context, call sendFunc) (whatsapp.Response, error) {
	if g == nil {
		return call(ctx)
	}
	if g.Limiter != nil {
		waitCtx, cancel := context.WithTimeout(ctx, g.limitWait())
		err := g.Limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			return whatsapp.Response{}, fmt.Errorf("local rate limit: %w", err)
		}
	}
	if g.Breaker == nil {
		return call(ctx)
	}

	res, err := g.Breaker.Execute(func() (any, error) {
		resp, err := call(ctx)
		if err != nil {
			return resp, err
		}
		if whatsapp.Transient(nil, resp.StatusCode) {
			return resp, unhealthyStatus{status: resp.StatusCode}
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return whatsapp.Response{}, fmt.Errorf("whatsapp circuit open: %w", err)
	}
	resp, _ := res.(whatsapp.Response)
	var us unhealthyStatus
	if errors.As(err, &us) {
		return resp, nil
	}
	return resp, err
}

func (g *Guard) limitWait() time.Duration {
	if g.LimitWait <= 0 {
		return 2 * time.Second
	}
	return g.LimitWait
}
