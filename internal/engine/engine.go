// Package engine derives booking views, availability, lifecycle states,
// review eligibility and dashboard statistics from raw backend records.
// Every method is a pure function of its arguments and the supplied now.
package engine

import (
	"github.com/rs/zerolog"
)

const (
	componentNormalizer   = "normalizer"
	componentAvailability = "availability"
	componentStatus       = "status"
	componentEligibility  = "eligibility"
	componentStats        = "stats"
)

// Engine holds immutable configuration for the derivations.
type Engine struct {
	logger   *zerolog.Logger
	fallback TemporalFallback
	ratings  RatingSource
	observe  func(component string)
}

type Option func(*Engine)

func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			l := logger.With().Str("component", "engine").Logger()
			e.logger = &l
		}
	}
}

// WithTemporalFallback sets how unparseable dates and times are treated.
func WithTemporalFallback(policy TemporalFallback) Option {
	return func(e *Engine) { e.fallback = policy }
}

// WithRatingSource selects where professional ratings are read from.
func WithRatingSource(source RatingSource) Option {
	return func(e *Engine) { e.ratings = source }
}

// WithFallbackObserver registers a hook called whenever the temporal
// fallback policy is applied.
func WithFallbackObserver(fn func(component string)) Option {
	return func(e *Engine) { e.observe = fn }
}

func New(opts ...Option) *Engine {
	nop := zerolog.Nop()
	e := &Engine{
		logger:   &nop,
		fallback: FallbackFuture,
		ratings:  RatingSourceAppointments,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TemporalFallback returns the configured fallback policy.
func (e *Engine) TemporalFallback() TemporalFallback {
	return e.fallback
}

// RatingSource returns the configured rating source.
func (e *Engine) RatingSource() RatingSource {
	return e.ratings
}
