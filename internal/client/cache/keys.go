package cache

import (
	"fmt"
	"strings"
)

// Query key prefixes. These identify every cached query in the client and are
// the vocabulary of the invalidation policy.
const (
	KeyPosts                   = "posts"
	KeyMemberPosts             = "member-posts"
	KeyPost                    = "post"
	KeyComments                = "comments"
	KeyPostComments            = "post-comments"
	KeyEventComments           = "event-comments"
	KeyUser                    = "user"
	KeyMember                  = "member"
	KeyOrganization            = "organization"
	KeyEvents                  = "events"
	KeyEventsRSVPs             = "events-rsvps"
	KeyRandomEvents            = "random-events"
	KeyMemberEvents            = "member-events"
	KeyOrgActiveEvents         = "organization-events-active"
	KeyOrgPastEvents           = "organization-events-past"
	KeyOrgMembers              = "organization-members"
	KeyOrgMemberRequests       = "organization-member-requests"
	KeyMemberEventsByRSVP      = "member-events-by-rsvp-status"
	KeyMemberPastEvents        = "member-past-events"
	KeyOrgMembership           = "organization-membership"
	KeyMemberCalendarEvents    = "member-calendar-events"
	KeyOrgCalendarEvents       = "organization-calendar-events"
	KeyTwoFAStatus             = "two-fa-status"
)

const keySep = "|"

// KeyOf composes a cache key from a prefix and its arguments. Keys built with
// the same prefix share an invalidation fate regardless of arguments.
func KeyOf(prefix string, args ...any) string {
	if len(args) == 0 {
		return prefix
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, prefix)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, keySep)
}

// keyMatches reports whether key belongs to the prefix family.
func keyMatches(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+keySep)
}
