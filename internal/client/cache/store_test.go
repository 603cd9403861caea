package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

func newStore() *Store {
	return NewStore(5*time.Minute, 10*time.Minute)
}

func TestStore_SetGet(t *testing.T) {
	s := newStore()

	s.Set(KeyOf(KeyEventComments, 7), []string{"a", "b"})

	v, ok := s.Get(KeyOf(KeyEventComments, 7))
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)

	_, ok = s.Get(KeyOf(KeyEventComments, 8))
	assert.False(t, ok)
}

func TestStore_InvalidateByPrefixFamily(t *testing.T) {
	s := newStore()
	s.Set(KeyOf(KeyEventComments, 7), "seven")
	s.Set(KeyOf(KeyEventComments, 9), "nine")
	s.Set(KeyOf(KeyMemberPosts, "u-1"), "posts")

	touched := s.Invalidate(KeyEventComments)
	assert.Equal(t, 2, touched)

	_, ok := s.Get(KeyOf(KeyEventComments, 7))
	assert.False(t, ok)
	_, ok = s.Get(KeyOf(KeyMemberPosts, "u-1"))
	assert.True(t, ok)
}

// "event-comments" must not swallow sibling prefixes that merely share a
// leading substring.
func TestStore_PrefixBoundary(t *testing.T) {
	s := newStore()
	s.Set(KeyOf(KeyEvents, 3), "event")
	s.Set(KeyOf(KeyEventsRSVPs, 3), "rsvps")

	s.Invalidate(KeyEvents)

	_, ok := s.Get(KeyOf(KeyEvents, 3))
	assert.False(t, ok)
	_, ok = s.Get(KeyOf(KeyEventsRSVPs, 3))
	assert.True(t, ok, "events-rsvps is a different family")
}

func TestStore_StaleTimeExpiry(t *testing.T) {
	s := newStore()
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set(KeyRandomEvents, "feed")

	current = current.Add(4 * time.Minute)
	_, ok := s.Get(KeyRandomEvents)
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = s.Get(KeyRandomEvents)
	assert.False(t, ok, "older than stale time reads as miss")
}

func TestStore_GCEvictsOldEntries(t *testing.T) {
	s := newStore()
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set(KeyRandomEvents, "old")
	current = current.Add(11 * time.Minute)
	s.Set(KeyMemberPosts, "fresh")

	evicted := s.GC()
	assert.Equal(t, 1, evicted)
	_, ok := s.Get(KeyMemberPosts)
	assert.True(t, ok)
}

func TestStore_ClearDropsEverything(t *testing.T) {
	s := newStore()
	s.Set(KeyRandomEvents, "feed")
	s.Set(KeyOf(KeyMemberPosts, "u-1"), "posts")

	s.Clear()

	_, ok := s.Get(KeyRandomEvents)
	assert.False(t, ok)
	_, ok = s.Get(KeyOf(KeyMemberPosts, "u-1"))
	assert.False(t, ok)
}

func TestFetch_ReadThrough(t *testing.T) {
	s := newStore()
	calls := 0
	fn := func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, err := Fetch(context.Background(), s, KeyRandomEvents, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = Fetch(context.Background(), s, KeyRandomEvents, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls, "second read served from cache")

	s.Invalidate(KeyRandomEvents)
	_, err = Fetch(context.Background(), s, KeyRandomEvents, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "stale entry refetches")
}

func TestFetch_ErrorNotCached(t *testing.T) {
	s := newStore()
	calls := 0
	fn := func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	}

	_, err := Fetch(context.Background(), s, KeyRandomEvents, fn)
	require.Error(t, err)
	_, err = Fetch(context.Background(), s, KeyRandomEvents, fn)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

// After an event comment lands, every list that shows that event's comment
// counts must refetch.
func TestPolicy_EventCommentFanOut(t *testing.T) {
	s := newStore()
	p := NewPolicy(s, logging.NewTextLogger(io.Discard))

	s.Set(KeyOf(KeyEventComments, 7), "comments")
	s.Set(KeyOf(KeyOrgActiveEvents, 2), "active")
	s.Set(KeyOf(KeyOrgPastEvents, 2), "past")
	s.Set(KeyRandomEvents, "feed")
	s.Set(KeyOf(KeyMemberEventsByRSVP, "u-1", "approved"), "mine")
	s.Set(KeyOf(KeyMemberPosts, "u-1"), "posts")

	p.InvalidateFor(context.Background(), MutationEventCommentCreate)

	for _, key := range []string{
		KeyOf(KeyEventComments, 7),
		KeyOf(KeyOrgActiveEvents, 2),
		KeyOf(KeyOrgPastEvents, 2),
		KeyRandomEvents,
		KeyOf(KeyMemberEventsByRSVP, "u-1", "approved"),
	} {
		_, ok := s.Get(key)
		assert.False(t, ok, "expected %s stale", key)
	}

	_, ok := s.Get(KeyOf(KeyMemberPosts, "u-1"))
	assert.True(t, ok, "member posts unaffected by event comments")
}

func TestPolicy_PostCommentFanOut(t *testing.T) {
	s := newStore()
	p := NewPolicy(s, logging.NewTextLogger(io.Discard))

	s.Set(KeyOf(KeyPostComments, 3), "comments")
	s.Set(KeyOf(KeyMemberPosts, "u-1"), "posts")
	s.Set(KeyRandomEvents, "feed")

	p.InvalidateFor(context.Background(), MutationPostCommentCreate)

	_, ok := s.Get(KeyOf(KeyPostComments, 3))
	assert.False(t, ok)
	_, ok = s.Get(KeyOf(KeyMemberPosts, "u-1"))
	assert.False(t, ok)
	_, ok = s.Get(KeyRandomEvents)
	assert.True(t, ok, "post comments never touch the event feed")
}

func TestPolicy_LeaveOrganizationIncludesEventComments(t *testing.T) {
	s := newStore()
	p := NewPolicy(s, logging.NewTextLogger(io.Discard))

	s.Set(KeyOf(KeyOrgMembership, "u-1"), "memberships")
	s.Set(KeyOf(KeyEventComments, 7), "comments")
	s.Set(KeyRandomEvents, "feed")

	p.InvalidateFor(context.Background(), MutationLeaveOrganization)

	for _, key := range []string{
		KeyOf(KeyOrgMembership, "u-1"),
		KeyOf(KeyEventComments, 7),
		KeyRandomEvents,
	} {
		_, ok := s.Get(key)
		assert.False(t, ok, "expected %s stale", key)
	}
}

func TestPolicy_EveryMutationHasEntries(t *testing.T) {
	for m, prefixes := range policy {
		assert.NotEmpty(t, prefixes, "mutation %s", m)
	}
	assert.NotEmpty(t, Affected(MutationRSVPCreate))
	assert.Empty(t, Affected(Mutation("unknown")))
}
