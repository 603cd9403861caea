package services

import (
	"context"
	"strconv"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// OrganizationService covers membership from both sides: the member's
// joined and pending organizations, and the organization's roster and
// application queue.
type OrganizationService struct {
	api   Doer
	cache *cache.Policy
	log   logging.Logger
}

func NewOrganizationService(doer Doer, policy *cache.Policy, log logging.Logger) *OrganizationService {
	return &OrganizationService{api: doer, cache: policy, log: log.With("component", "organizations")}
}

// Memberships lists every organization the signed-in member belongs to,
// each with its member roster.
func (s *OrganizationService) Memberships(ctx context.Context) (models.MembershipsResponse, error) {
	key := cache.KeyOf(cache.KeyOrgMembership)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.MembershipsResponse, error) {
		var out models.MembershipsResponse
		err := s.api.Get(ctx, "/organization/memberships", nil, &out)
		return out, err
	})
}

// PendingMemberships lists the member's join requests still awaiting a
// decision.
func (s *OrganizationService) PendingMemberships(ctx context.Context) (models.PendingMembershipsResponse, error) {
	key := cache.KeyOf(cache.KeyOrgMembership, "pending")
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.PendingMembershipsResponse, error) {
		var out models.PendingMembershipsResponse
		err := s.api.Get(ctx, "/organization/pending-membership", nil, &out)
		return out, err
	})
}

// MembershipStatus reports the member's standing with one organization.
func (s *OrganizationService) MembershipStatus(ctx context.Context, organizationID int64) (string, error) {
	key := cache.KeyOf(cache.KeyOrgMembership, "status", organizationID)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (string, error) {
		var out struct {
			Status string `json:"status"`
		}
		err := s.api.Get(ctx, "/organization/membership/status/"+strconv.FormatInt(organizationID, 10), nil, &out)
		return out.Status, err
	})
}

// Leave withdraws the signed-in member from an organization.
func (s *OrganizationService) Leave(ctx context.Context, organizationID int64) error {
	body := api.NewForm().SetInt("organization_id", organizationID)
	if err := s.api.PostForm(ctx, "/organization/leave", body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationLeaveOrganization)
	return nil
}

// Members lists the signed-in organization's approved roster.
func (s *OrganizationService) Members(ctx context.Context) ([]models.OrganizationMember, error) {
	key := cache.KeyOf(cache.KeyOrgMembers)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) ([]models.OrganizationMember, error) {
		var out struct {
			Members []models.OrganizationMember `json:"members"`
		}
		err := s.api.Get(ctx, "/organization/organization-members", nil, &out)
		return out.Members, err
	})
}

// PendingApplications lists join requests awaiting the organization's
// decision.
func (s *OrganizationService) PendingApplications(ctx context.Context) ([]models.OrganizationMember, error) {
	key := cache.KeyOf(cache.KeyOrgMemberRequests)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) ([]models.OrganizationMember, error) {
		var out struct {
			Members []models.OrganizationMember `json:"members"`
		}
		err := s.api.Get(ctx, "/organization/pending-applications", nil, &out)
		return out.Members, err
	})
}

// UpdateMembershipStatus approves or rejects one member's join request.
func (s *OrganizationService) UpdateMembershipStatus(ctx context.Context, userID int64, status string) error {
	body := api.NewForm().Set("status", status)
	if err := s.api.PutForm(ctx, "/organization/membership/status/"+strconv.FormatInt(userID, 10), body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationMembershipStatusUpdate)
	return nil
}
