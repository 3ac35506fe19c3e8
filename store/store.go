// Package store provides the capacity-tiered key-value persistence the
// engine is given as an injected capability.
//
// Values are routed by serialized size: small values go to a fast,
// quota-limited tier, large ones to a durable embedded database. Reads check
// the fast tier first and fall through to the durable tier on a miss or a
// decode failure, so a value that ever landed on the durable tier keeps
// being found there. A ristretto read cache sits in front of both tiers.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// KV is the narrow persistence capability handed to the engine. Keys are
// namespaced so one store can hold the registry, the manual groups and the
// upload audit side by side.
type KV interface {
	// Get returns the value and true, or false when the key does not exist.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	// Put stores the value, overwriting any previous one.
	Put(ctx context.Context, namespace, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, namespace, key string) error
	// Close releases the underlying resources.
	Close() error
}

// ErrQuotaExceeded is returned by a fast tier whose capacity would be
// exceeded by a write. The tiered store treats it as a routing signal, not a
// failure.
var ErrQuotaExceeded = errors.New("store: fast tier quota exceeded")

// DefaultFastTierLimit is the serialized size under which a value is written
// to the fast tier.
const DefaultFastTierLimit = 2 << 20 // 2 MiB

// Tiered routes values between a fast and a durable tier.
type Tiered struct {
	fast    KV
	durable KV
	cache   *readCache
	limit   int
	log     *zap.Logger
}

// Option configures a Tiered store.
type Option func(*Tiered)

// WithLimit overrides the fast-tier size threshold.
func WithLimit(limit int) Option {
	return func(t *Tiered) {
		if limit > 0 {
			t.limit = limit
		}
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(t *Tiered) { t.log = log }
}

// NewTiered assembles a tiered store over the two given tiers.
func NewTiered(fast, durable KV, opts ...Option) (*Tiered, error) {
	t := &Tiered{
		fast:    fast,
		durable: durable,
		limit:   DefaultFastTierLimit,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(t)
	}
	cache, err := newReadCache()
	if err != nil {
		return nil, fmt.Errorf("cannot build read cache: %w", err)
	}
	t.cache = cache
	return t, nil
}

// Put serializes routing policy: values under the limit go to the fast
// tier, larger ones to the durable tier. A failing fast-tier write (quota)
// falls back to the durable tier instead of propagating; a failing
// durable-tier write propagates, there is no further fallback.
//
// The other tier's copy is deleted on every write so a read can never see a
// stale value shadowing the fresh one.
func (t *Tiered) Put(ctx context.Context, namespace, key string, value []byte) error {
	t.cache.invalidate(namespace, key)

	if len(value) < t.limit {
		if err := t.fast.Put(ctx, namespace, key, value); err == nil {
			if err := t.durable.Delete(ctx, namespace, key); err != nil {
				return fmt.Errorf("cannot clear durable copy of %s/%s: %w", namespace, key, err)
			}
			return nil
		} else if !errors.Is(err, ErrQuotaExceeded) {
			t.log.Warn("fast tier write failed, falling back to durable tier",
				zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		}
	}

	if err := t.durable.Put(ctx, namespace, key, value); err != nil {
		return fmt.Errorf("cannot write %s/%s to durable tier: %w", namespace, key, err)
	}
	if err := t.fast.Delete(ctx, namespace, key); err != nil {
		return fmt.Errorf("cannot clear fast copy of %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Get checks the read cache, then the fast tier, then the durable tier. A
// fast-tier miss or read failure is never treated as "value does not exist"
// before the durable tier has been consulted.
func (t *Tiered) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if v, ok := t.cache.get(namespace, key); ok {
		return v, true, nil
	}

	v, ok, err := t.fast.Get(ctx, namespace, key)
	if err != nil {
		t.log.Warn("fast tier read failed, falling back to durable tier",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
	} else if ok {
		t.cache.put(namespace, key, v)
		return v, true, nil
	}

	v, ok, err = t.durable.Get(ctx, namespace, key)
	if err != nil {
		return nil, false, fmt.Errorf("cannot read %s/%s from durable tier: %w", namespace, key, err)
	}
	if ok {
		t.cache.put(namespace, key, v)
	}
	return v, ok, nil
}

// Delete removes the key from both tiers.
func (t *Tiered) Delete(ctx context.Context, namespace, key string) error {
	t.cache.invalidate(namespace, key)
	if err := t.fast.Delete(ctx, namespace, key); err != nil {
		return err
	}
	return t.durable.Delete(ctx, namespace, key)
}

// Close closes both tiers.
func (t *Tiered) Close() error {
	t.cache.close()
	ferr := t.fast.Close()
	derr := t.durable.Close()
	if ferr != nil {
		return ferr
	}
	return derr
}

var _ KV = (*Tiered)(nil)
