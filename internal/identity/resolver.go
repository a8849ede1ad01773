package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/nao1215/ghbuster/internal/github"
	"golang.org/x/sync/singleflight"
)

// LookupFunc fetches the resource identified by key. A nil error means the
// resource exists.
type LookupFunc[K comparable] func(ctx context.Context, key K) error

// Resolver is a memoized existence check keyed by K.
//
// A not found or access blocked answer resolves to false. Any other error
// is returned to the caller and not cached, so a later call retries it.
type Resolver[K comparable] struct {
	lookup LookupFunc[K]

	mu    sync.RWMutex
	known map[K]bool

	group singleflight.Group
}

// NewResolver creates a Resolver backed by lookup.
func NewResolver[K comparable](lookup LookupFunc[K]) *Resolver[K] {
	return &Resolver[K]{
		lookup: lookup,
		known:  make(map[K]bool),
	}
}

// Exists reports whether key still resolves.
func (r *Resolver[K]) Exists(ctx context.Context, key K) (bool, error) {
	if exists, ok := r.cached(key); ok {
		return exists, nil
	}

	v, err, _ := r.group.Do(fmt.Sprint(key), func() (any, error) {
		// A concurrent caller may have stored the answer between the cache
		// miss and acquiring the flight.
		if exists, ok := r.cached(key); ok {
			return exists, nil
		}
		err := r.lookup(ctx, key)
		switch {
		case err == nil:
			r.store(key, true)
			return true, nil
		case github.IsGone(err):
			r.store(key, false)
			return false, nil
		default:
			return false, err
		}
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil //nolint:forcetypeassert // the flight only returns bool
}

// Len returns the number of memoized answers.
func (r *Resolver[K]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.known)
}

func (r *Resolver[K]) cached(key K) (bool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exists, ok := r.known[key]
	return exists, ok
}

func (r *Resolver[K]) store(key K, exists bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[key] = exists
}
