// Package ratelimit builds the client-side token bucket used to keep request
// bursts against an n8n instance within a configured budget.
package ratelimit

import "golang.org/x/time/rate"

// NewRateLimiter creates a limiter allowing requestsPerMinute requests per minute.
// Tokens refill continuously at requestsPerMinute/60 per second and the burst is
// one second's worth of requests (at least one).
//
// A non-positive requestsPerMinute disables limiting and returns nil.
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}

	burst := max(requestsPerMinute/60, 1)

	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
}
