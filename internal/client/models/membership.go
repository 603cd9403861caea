package models

// RSVP statuses assigned by the server. The client only requests transitions.
const (
	RSVPStatusPending  = "pending"
	RSVPStatusApproved = "approved"
	RSVPStatusRejected = "rejected"
)

// Membership statuses for join-organization requests.
const (
	MembershipStatusPending  = "pending"
	MembershipStatusApproved = "approved"
	MembershipStatusRejected = "rejected"
)

// RSVP is a member's request to attend an organization's event.
type RSVP struct {
	RSVPID  int64         `json:"rsvp_id"`
	EventID int64         `json:"event_id"`
	Account CommentAuthor `json:"account"`
	Status  string        `json:"status"`
}

// EventRSVPs lists every RSVP recorded against one event.
type EventRSVPs struct {
	EventID int64  `json:"event_id"`
	RSVPs   []RSVP `json:"rsvps"`
}

// OrganizationMember is one member of an organization as seen by either side.
type OrganizationMember struct {
	UserID         int64  `json:"user_id"`
	AccountUUID    string `json:"account_uuid"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	ProfilePicture Image  `json:"profile_picture"`
}

// OrganizationMembership is one organization the viewer belongs to, with the
// organization's member roster.
type OrganizationMembership struct {
	OrganizationID   int64                `json:"organization_id"`
	OrganizationName string               `json:"organization_name"`
	MembershipStatus string               `json:"membership_status"`
	Members          []OrganizationMember `json:"members"`
}

// PendingMembership is a join request that has not been acted on yet.
type PendingMembership struct {
	OrganizationID       int64  `json:"organization_id"`
	OrganizationName     string `json:"organization_name"`
	OrganizationCategory string `json:"organization_category"`
	OrganizationLogo     Image  `json:"organization_logo"`
	MembershipStatus     string `json:"membership_status"`
}

// MembershipsResponse wraps the joined-organizations listing.
type MembershipsResponse struct {
	Organizations []OrganizationMembership `json:"organizations"`
}

// PendingMembershipsResponse wraps the pending join requests listing.
type PendingMembershipsResponse struct {
	PendingMemberships []PendingMembership `json:"pending_memberships"`
}
