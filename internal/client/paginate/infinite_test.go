package paginate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
)

// pagedSource serves fixed pages and counts requests.
type pagedSource struct {
	mu    sync.Mutex
	pages [][]int
	calls int
	block chan struct{}
}

func (s *pagedSource) fetch(ctx context.Context, page int) ([]int, models.Pagination, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if page < 1 || page > len(s.pages) {
		return nil, models.Pagination{}, errors.New("page out of range")
	}
	return s.pages[page-1], models.Pagination{Page: page, Pages: len(s.pages)}, nil
}

func (s *pagedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestInfinite_SequentialFetchPreservesOrder(t *testing.T) {
	src := &pagedSource{pages: [][]int{{1, 2}, {3, 4}, {5}}}
	q := NewInfinite(src.fetch)
	ctx := context.Background()

	for q.HasNext() {
		require.NoError(t, q.FetchNext(ctx))
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, q.Items())
	assert.False(t, q.HasNext())
	assert.Equal(t, 3, src.callCount())
}

func TestInfinite_ExhaustedFetchIsNoop(t *testing.T) {
	src := &pagedSource{pages: [][]int{{1}}}
	q := NewInfinite(src.fetch)
	ctx := context.Background()

	require.NoError(t, q.FetchNext(ctx))
	require.False(t, q.HasNext())

	require.NoError(t, q.FetchNext(ctx))
	assert.Equal(t, 1, src.callCount(), "no request when hasNext is false")
}

func TestInfinite_DisabledIssuesNoRequests(t *testing.T) {
	src := &pagedSource{pages: [][]int{{1}}}
	var eventID int
	q := NewInfinite(src.fetch, WithEnabled[int](func() bool { return eventID != 0 }))
	ctx := context.Background()

	assert.False(t, q.HasNext())
	require.NoError(t, q.FetchNext(ctx))
	assert.Zero(t, src.callCount())
	assert.Empty(t, q.Items())

	eventID = 7
	assert.True(t, q.HasNext())
	require.NoError(t, q.FetchNext(ctx))
	assert.Equal(t, 1, src.callCount())
}

func TestInfinite_FirstPageErrorLeavesItemsEmpty(t *testing.T) {
	src := &pagedSource{pages: nil}
	q := NewInfinite(src.fetch)

	err := q.FetchNext(context.Background())
	require.Error(t, err)
	assert.Empty(t, q.Items())
	assert.Error(t, q.Err())

	// a later success clears the recorded error
	src.mu.Lock()
	src.pages = [][]int{{1}}
	src.mu.Unlock()
	require.NoError(t, q.FetchNext(context.Background()))
	assert.NoError(t, q.Err())
	assert.Equal(t, []int{1}, q.Items())
}

func TestInfinite_ConcurrentFetchesCoalesce(t *testing.T) {
	src := &pagedSource{pages: [][]int{{1, 2}}, block: make(chan struct{})}
	q := NewInfinite(src.fetch)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.FetchNext(ctx)
	}()

	// wait for the first call to be in flight, then pile on
	for !q.Loading() {
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, q.FetchNext(ctx))
	require.NoError(t, q.FetchNext(ctx))

	close(src.block)
	wg.Wait()

	assert.Equal(t, 1, src.callCount(), "concurrent invocations coalesce")
	assert.Equal(t, []int{1, 2}, q.Items())
}

// A response landing after the consumer stopped reading must only update
// internal state, never crash.
func TestInfinite_LateResponseAfterAbandonment(t *testing.T) {
	src := &pagedSource{pages: [][]int{{1}}, block: make(chan struct{})}
	q := NewInfinite(src.fetch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.FetchNext(context.Background())
	}()

	// consumer walks away; nothing reads q anymore
	close(src.block)
	<-done

	assert.Equal(t, []int{1}, q.Items())
}

func TestInfinite_Reset(t *testing.T) {
	src := &pagedSource{pages: [][]int{{1}, {2}}}
	q := NewInfinite(src.fetch)
	ctx := context.Background()

	require.NoError(t, q.FetchNext(ctx))
	require.NoError(t, q.FetchNext(ctx))
	require.Len(t, q.Items(), 2)

	q.Reset()
	assert.Empty(t, q.Items())
	assert.True(t, q.HasNext())

	require.NoError(t, q.FetchNext(ctx))
	assert.Equal(t, []int{1}, q.Items(), "reset restarts from page one")
}
