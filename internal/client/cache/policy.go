package cache

import (
	"context"

	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// Mutation identifies a write operation with cache consequences.
type Mutation string

const (
	MutationPostCreate Mutation = "post.create"
	MutationPostUpdate Mutation = "post.update"
	MutationPostDelete Mutation = "post.delete"

	MutationPostCommentCreate  Mutation = "comment.post.create"
	MutationEventCommentCreate Mutation = "comment.event.create"
	MutationCommentEdit        Mutation = "comment.edit"
	MutationCommentDelete      Mutation = "comment.delete"

	MutationEventCreate Mutation = "event.create"
	MutationEventUpdate Mutation = "event.update"
	MutationEventDelete Mutation = "event.delete"

	MutationRSVPCreate  Mutation = "rsvp.create"
	MutationRSVPDelete  Mutation = "rsvp.delete"
	MutationRSVPAccept  Mutation = "rsvp.accept"
	MutationRSVPDecline Mutation = "rsvp.decline"

	MutationJoinOrganization       Mutation = "organization.join"
	MutationLeaveOrganization      Mutation = "organization.leave"
	MutationMembershipStatusUpdate Mutation = "organization.membership.status"

	MutationTwoFAEnable  Mutation = "twofa.enable"
	MutationTwoFADisable Mutation = "twofa.disable"
	MutationTwoFABypass  Mutation = "twofa.bypass"
)

// policy is the single declarative table mapping each mutation kind to the
// cached query families its success makes stale. Invalidation is coarse and
// over-inclusive on purpose: refetching a handful of list views is cheaper
// than tracking per-item staleness.
var policy = map[Mutation][]string{
	MutationPostCreate: {KeyMemberPosts},
	MutationPostUpdate: {KeyMemberPosts, KeyPost},
	MutationPostDelete: {KeyMemberPosts},

	MutationPostCommentCreate: {KeyEventComments, KeyPostComments, KeyMemberPosts},
	MutationEventCommentCreate: {
		KeyEventComments, KeyPostComments,
		KeyOrgActiveEvents, KeyOrgPastEvents,
		KeyRandomEvents, KeyMemberEventsByRSVP,
	},
	MutationCommentEdit: {
		KeyEventComments, KeyPostComments, KeyMemberPosts,
		KeyOrgActiveEvents, KeyOrgPastEvents,
		KeyRandomEvents, KeyMemberEventsByRSVP,
	},
	MutationCommentDelete: {
		KeyEventComments, KeyPostComments, KeyMemberPosts,
		KeyOrgActiveEvents, KeyOrgPastEvents,
		KeyRandomEvents, KeyMemberEventsByRSVP,
	},

	MutationEventCreate: {KeyOrgActiveEvents},
	MutationEventUpdate: {KeyOrgActiveEvents, KeyEvents},
	MutationEventDelete: {KeyOrgActiveEvents, KeyRandomEvents},

	MutationRSVPCreate:  {KeyRandomEvents, KeyMemberEventsByRSVP, KeyOrgActiveEvents},
	MutationRSVPDelete:  {KeyRandomEvents, KeyMemberEventsByRSVP, KeyOrgActiveEvents},
	MutationRSVPAccept:  {KeyOrgActiveEvents, KeyEventsRSVPs},
	MutationRSVPDecline: {KeyOrgActiveEvents, KeyEventsRSVPs},

	MutationJoinOrganization: {
		KeyRandomEvents, KeyMemberEventsByRSVP,
		KeyOrgActiveEvents, KeyMemberPastEvents,
	},
	// Leaving drops the organization's events from every member-facing list,
	// including their cached comment threads.
	MutationLeaveOrganization: {
		KeyOrgMembership, KeyOrgMemberRequests,
		KeyRandomEvents, KeyMemberEventsByRSVP,
		KeyOrgActiveEvents, KeyMemberPastEvents,
		KeyEventComments,
	},
	MutationMembershipStatusUpdate: {KeyOrgMemberRequests, KeyOrgMembers},

	MutationTwoFAEnable:  {KeyTwoFAStatus},
	MutationTwoFADisable: {KeyTwoFAStatus},
	MutationTwoFABypass:  {KeyTwoFAStatus},
}

// Policy applies the invalidation table to a Store after successful
// mutations.
type Policy struct {
	store *Store
	log   logging.Logger
}

func NewPolicy(store *Store, log logging.Logger) *Policy {
	return &Policy{store: store, log: log.With("component", "cache-policy")}
}

// Affected returns the key families invalidated by m. The empty slice means
// the mutation is unknown to the table.
func Affected(m Mutation) []string {
	return policy[m]
}

// InvalidateFor marks every query family affected by m stale. Callers invoke
// it only after the mutation's success response.
func (p *Policy) InvalidateFor(ctx context.Context, m Mutation) {
	prefixes := policy[m]
	if len(prefixes) == 0 {
		p.log.Warn(ctx, "mutation has no invalidation entry", "mutation", string(m))
		return
	}
	touched := p.store.Invalidate(prefixes...)
	p.log.Debug(ctx, "cache invalidated", "mutation", string(m), "families", len(prefixes), "entries", touched)
}

// Store exposes the underlying store for read-through fetches.
func (p *Policy) Store() *Store { return p.store }
