// Package paginate provides the shared infinite/paginated fetch adapter:
// sequential page fetching with order-preserving concatenation and a computed
// has-next flag, reused by posts, events, comments, and RSVP-filtered lists.
package paginate

import (
	"context"
	"sync"

	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
)

// FetchPage retrieves one page of a resource.
type FetchPage[T any] func(ctx context.Context, page int) ([]T, models.Pagination, error)

// Infinite tracks an ordered list of fetched pages for one list view.
//
// Flattening preserves fetch order; no client-side re-sort is applied. If the
// product needs chronological order the server must supply it pre-sorted.
type Infinite[T any] struct {
	mu       sync.Mutex
	fetch    FetchPage[T]
	enabled  func() bool
	pageSize int

	pages    [][]T
	meta     models.Pagination
	started  bool
	inFlight bool
	lastErr  error
}

// Option configures an Infinite query.
type Option[T any] func(*Infinite[T])

// WithEnabled gates the query. While enabled() is false no request is issued
// and HasNext reports false; used when the identifying parameter (an event or
// post id) is not known yet.
func WithEnabled[T any](enabled func() bool) Option[T] {
	return func(q *Infinite[T]) { q.enabled = enabled }
}

// NewInfinite builds an adapter over fetch.
func NewInfinite[T any](fetch FetchPage[T], opts ...Option[T]) *Infinite[T] {
	q := &Infinite[T]{fetch: fetch, enabled: func() bool { return true }}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Items returns the flattened item list in fetch order. After a first-page
// failure the list is empty, never partially populated.
func (q *Infinite[T]) Items() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []T
	for _, page := range q.pages {
		out = append(out, page...)
	}
	return out
}

// HasNext reports whether another page exists. A disabled query has no next
// page; an enabled query that never fetched has its first page pending.
func (q *Infinite[T]) HasNext() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.enabled() {
		return false
	}
	if !q.started {
		return true
	}
	return q.meta.HasNext()
}

// Loading reports whether a page fetch is in flight.
func (q *Infinite[T]) Loading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Err returns the most recent fetch failure, cleared by the next success.
func (q *Infinite[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Reset drops all fetched pages so the next FetchNext starts from page one.
func (q *Infinite[T]) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pages = nil
	q.meta = models.Pagination{}
	q.started = false
	q.lastErr = nil
}

// FetchNext retrieves the next page and appends it. Calls are no-ops when the
// query is disabled, exhausted, or a fetch is already in flight; concurrent
// invocations coalesce into the single in-flight request.
//
// The adapter tolerates its consumer disappearing before the response lands:
// a late result only updates internal state.
func (q *Infinite[T]) FetchNext(ctx context.Context) error {
	q.mu.Lock()
	if !q.enabled() || q.inFlight {
		q.mu.Unlock()
		return nil
	}
	page := 1
	if q.started {
		next, ok := q.meta.Next()
		if !ok {
			q.mu.Unlock()
			return nil
		}
		page = next
	}
	q.inFlight = true
	q.mu.Unlock()

	items, meta, err := q.fetch(ctx, page)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight = false
	if err != nil {
		q.lastErr = err
		return err
	}
	q.lastErr = nil
	q.started = true
	q.meta = meta
	q.pages = append(q.pages, items)
	return nil
}
