// Package service orchestrates backend reads around the engine and
// delegates the two marketplace mutations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotmarket/internal/domain"
	"slotmarket/internal/metrics"

	"github.com/rs/zerolog"
)

var (
	// ErrBackendUnavailable means a primary collection could not be fetched.
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrInvalidViewer      = errors.New("viewer is required")
)

type systemClock struct {
	loc *time.Location
}

// NewClock returns a clock reporting wall time in loc. A nil loc means time.Local.
func NewClock(loc *time.Location) domain.Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func nopLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}

// backendError classifies a failed primary fetch. Cancellation passes through
// untouched, a missing record keeps domain.ErrNotFound, and anything else
// becomes ErrBackendUnavailable.
func backendError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.IncBackendError(op)
	return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, op, err)
}

func publish(bus domain.EventPublisher, logger *zerolog.Logger, eventType string, payload interface{}) {
	if bus == nil {
		return
	}
	if err := bus.PublishJSON(eventType, payload); err != nil {
		logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
