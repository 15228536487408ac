package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"wanotif/internal/providers/whatsapp"
)

func TestGuardNilPassesThrough(t *testing.T) {
	var g *Guard
	resp, err := g.Do(context.Background(), func(context.Context) (whatsapp.Response, error) {
		return whatsapp.Response{StatusCode: 200}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestGuardReturnsServerErrorResponse(t *testing.T) {
	g := NewGuard(0, 0)
	resp, err := g.Do(context.Background(), func(context.Context) (whatsapp.Response, error) {
		return whatsapp.Response{StatusCode: 503}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
	assert.Equal(t, uint32(1), g.Breaker.Counts().ConsecutiveFailures)
}

func TestGuardOpenBreakerIsError(t *testing.T) {
	g := &Guard{Breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "test",
		Timeout:     time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 1 },
	})}
	calls := 0
	call := func(context.Context) (whatsapp.Response, error) {
		calls++
		return whatsapp.Response{}, errors.New("dial tcp: connection refused")
	}
	_, err := g.Do(context.Background(), call)
	require.Error(t, err)

	_, err = g.Do(context.Background(), call)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 1, calls)
}

func TestGuardLimiterTimeout(t *testing.T) {
	g := &Guard{Limiter: rate.NewLimiter(rate.Every(time.Hour), 1), LimitWait: 10 * time.Millisecond}
	ok := func(context.Context) (whatsapp.Response, error) { return whatsapp.Response{StatusCode: 200}, nil }

	_, err := g.Do(context.Background(), ok)
	require.NoError(t, err)
	_, err = g.Do(context.Background(), ok)
	require.Error(t, err)
}
