package cache

import (
	"context"
	"errors"

	"github.com/viccon/sturdyc"
)

// errNotStored marks a loaded value that the namespace chose not to keep.
var errNotStored = errors.New("cache: value not stored")

// Loader computes a value on a miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Namespace is one independently sized cache region backed by a sturdyc client.
// Concurrent misses on the same key share one loader call.
type Namespace[T any] struct {
	name     string
	client   *sturdyc.Client[T]
	counters *counters
	skip     func(T) bool
}

type Option[T any] func(*Namespace[T])

// SkipWhen keeps values matching fn out of the cache; they are still returned.
func SkipWhen[T any](fn func(T) bool) Option[T] {
	return func(n *Namespace[T]) {
		n.skip = fn
	}
}

func New[T any](cfg Config, opts ...Option[T]) (*Namespace[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &counters{}
	sturdyOpts := []sturdyc.Option{sturdyc.WithMetrics(c)}
	if cfg.EvictionInterval > 0 {
		sturdyOpts = append(sturdyOpts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	n := &Namespace[T]{
		name:     cfg.Name,
		client:   sturdyc.New[T](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, sturdyOpts...),
		counters: c,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *Namespace[T]) Name() string {
	return n.name
}

// GetOrCompute returns the cached value for key or runs loader and stores
// its result. Loader errors are returned and nothing is stored.
func (n *Namespace[T]) GetOrCompute(ctx context.Context, key string, loader Loader[T]) (T, error) {
	var (
		loaded T
		ran    bool
	)

	v, err := n.client.GetOrFetch(ctx, key, func(ctx context.Context) (T, error) {
		val, err := loader(ctx)
		if err != nil {
			return val, err
		}
		if n.skip != nil && n.skip(val) {
			loaded, ran = val, true
			return val, errNotStored
		}
		return val, nil
	})

	if errors.Is(err, errNotStored) {
		if ran {
			return loaded, nil
		}
		// another caller's load was not stored; compute our own copy
		return loader(ctx)
	}
	return v, err
}

// Get reads without loading.
func (n *Namespace[T]) Get(key string) (T, bool) {
	return n.client.Get(key)
}

func (n *Namespace[T]) Invalidate(key string) {
	n.client.Delete(key)
}

func (n *Namespace[T]) InvalidateAll() {
	for _, key := range n.client.ScanKeys() {
		n.client.Delete(key)
	}
}

func (n *Namespace[T]) Size() int {
	return n.client.Size()
}

func (n *Namespace[T]) Stats() Stats {
	return n.counters.snapshot(n.name, n.client.Size())
}
