package upload

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/metrics"
)

// Breaker stops calling a failing image host for a while so uploads fail
// fast instead of piling up on timeouts.
type Breaker struct {
	host ImageHost
	cb   *gobreaker.CircuitBreaker[string]
}

func NewBreaker(host ImageHost) *Breaker {
	name := "image-host-" + host.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return &Breaker{host: host, cb: cb}
}

func (b *Breaker) Name() string { return b.host.Name() }

// Unwrap returns the wrapped host.
func (b *Breaker) Unwrap() ImageHost { return b.host }

func (b *Breaker) Upload(ctx context.Context, img Image) (string, error) {
	url, err := b.cb.Execute(func() (string, error) {
		return b.host.Upload(ctx, img)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Ctx(ctx).Warn().Err(err).Msg("image host rejected by circuit breaker")
	}
	return url, err
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
