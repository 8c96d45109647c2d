// Package registry allocates identifiers that are absent from the key-value
// store at the time of check. The check-then-write window is not
// transactional: two concurrent callers can still collide between the
// existence check and the entity write. The postgres store's unique
// constraints catch that on write; the pure key-value path accepts the race,
// matching the behavior of the system this replaces.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rBrown1405/zentry-pos-sub001/internal/identifier"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

// ErrExhausted is returned when the bounded retry budget runs out without
// finding a free identifier.
var ErrExhausted = errors.New("identifier allocation exhausted")

const maxAttempts = 10

type Registry struct {
	kv     store.KeyValue
	logger *slog.Logger
}

func New(kv store.KeyValue, logger *slog.Logger) *Registry {
	return &Registry{kv: kv, logger: logger.With("component", "registry")}
}

// allocate runs the bounded retry loop: on collision the last two characters
// of the candidate are rewritten with a fresh random 2-digit suffix.
func (r *Registry) allocate(ctx context.Context, kind string, candidate string, key func(string) string) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		exists, err := r.kv.Exists(ctx, key(candidate))
		if err != nil {
			return "", fmt.Errorf("failed to check %s %q: %w", kind, candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		r.logger.Debug("identifier collision, retrying", "kind", kind, "candidate", candidate, "attempt", attempt)
		candidate = mutateSuffix(candidate)
	}
	return "", fmt.Errorf("%w: unable to generate unique %s", ErrExhausted, kind)
}

func (r *Registry) BusinessCode(ctx context.Context, companyName string) (string, error) {
	return r.allocate(ctx, "business code", identifier.BusinessCode(companyName), store.BusinessKey)
}

func (r *Registry) BusinessID(ctx context.Context, businessCode string) (string, error) {
	return r.allocate(ctx, "business id", identifier.BusinessID(businessCode), store.BusinessIDKey)
}

func (r *Registry) StaffID(ctx context.Context, fullName, position string) (string, error) {
	return r.allocate(ctx, "staff id", identifier.StaffID(fullName, position), store.StaffKey)
}

func (r *Registry) PropertyCode(ctx context.Context, propertyName, businessType string) (string, error) {
	return r.allocate(ctx, "property code", identifier.PropertyCode(propertyName, businessType), store.PropertyKey)
}

func (r *Registry) ConnectionCode(ctx context.Context) (string, error) {
	return r.allocate(ctx, "connection code", identifier.ConnectionCode(), store.ConnectionCodeKey)
}

func mutateSuffix(code string) string {
	if len(code) < 2 {
		return identifier.RandomDigits(2)
	}
	return code[:len(code)-2] + identifier.RandomDigits(2)
}
