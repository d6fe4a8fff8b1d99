package apiclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned without a network call while the backend is considered down.
var ErrCircuitOpen = errors.New("backend unavailable: circuit open")

// BreakerSettings configure the circuit breaker around network calls.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker. Zero disables it.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before one probe is let through.
	Cooldown time.Duration
}

// WithCircuitBreaker stops calling the backend after repeated transport
// errors or 5xx answers. Cached GETs are still served while it is open.
func WithCircuitBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		if s.ConsecutiveFailures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "aidex-api",
			MaxRequests: 1,
			Timeout:     s.Cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.ConsecutiveFailures
			},
			IsSuccessful: backendHealthy,
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("api circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
}

// backendHealthy reports whether err still means the backend is up. Client
// errors (4xx) and caller cancellation do not count against it.
func backendHealthy(err error) bool {
	if err == nil {
		return true
	}
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.StatusCode < 500
	}
	return errors.Is(err, context.Canceled)
}

// send performs the network call, through the breaker when one is configured.
func (c *Client) send(ctx context.Context, method, endpoint string, opts *RequestOptions) (RawMessage, error) {
	if c.breaker == nil {
		return c.do(ctx, method, endpoint, opts)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, endpoint, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, ErrCircuitOpen)
	}
	if err != nil {
		return nil, err
	}
	return out.(RawMessage), nil
}
