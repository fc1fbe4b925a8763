package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"slotmarket/internal/config"
	"slotmarket/internal/domain"
	"slotmarket/internal/metrics"
	"slotmarket/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	lookupProfessional = "professional"
	lookupIdentity     = "identity"
)

// Resolver fetches the records referenced by a batch of appointments. Each
// distinct id is looked up once, concurrently, under its own timeout. A
// failed lookup leaves its key absent so the engine substitutes placeholders.
type Resolver struct {
	backend domain.Backend
	timeout time.Duration
	limit   int
	logger  *zerolog.Logger
}

func NewResolver(backend domain.Backend, cfg config.LookupConfig, logger *zerolog.Logger) *Resolver {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = time.Duration(models.DefaultLookupTimeoutMs) * time.Millisecond
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = models.DefaultLookupConcurrency
	}
	return &Resolver{
		backend: backend,
		timeout: timeout,
		limit:   limit,
		logger:  nopLogger(logger),
	}
}

// Professionals resolves professional profiles by id. The error is non-nil
// only when ctx ends before the lookups finish.
func (r *Resolver) Professionals(ctx context.Context, ids []string) (map[string]models.ProfessionalRecord, error) {
	return resolve(ctx, r, lookupProfessional, ids, r.backend.Professional)
}

// Identities resolves user identities by id.
func (r *Resolver) Identities(ctx context.Context, ids []string) (map[string]models.IdentityRecord, error) {
	return resolve(ctx, r, lookupIdentity, ids, r.backend.Identity)
}

func resolve[T any](
	ctx context.Context,
	r *Resolver,
	kind string,
	ids []string,
	fetch func(context.Context, string) (*T, error),
) (map[string]T, error) {
	unique := distinct(ids)
	found := make(map[string]T, len(unique))
	if len(unique) == 0 {
		return found, ctx.Err()
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.limit)

	for _, id := range unique {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			rec, err := fetch(lookupCtx, id)
			if err != nil {
				result := lookupResult(err)
				metrics.IncLookup(kind, result)
				if ctx.Err() == nil {
					r.logger.Warn().
						Err(err).
						Str("kind", kind).
						Str("id", id).
						Str("result", result).
						Msg("lookup failed, using placeholder")
				}
				return nil
			}
			if rec == nil {
				metrics.IncLookup(kind, "not_found")
				return nil
			}

			metrics.IncLookup(kind, "ok")
			mu.Lock()
			found[id] = *rec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

func lookupResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}

// distinct drops blanks and duplicates, keeping first-seen order.
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
