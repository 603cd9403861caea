package services

import (
	"context"
	"strconv"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/client/paginate"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// HomeService backs the discovery feed: public events in random order plus
// the member-side join and RSVP actions taken from it.
type HomeService struct {
	api   Doer
	cache *cache.Policy
	log   logging.Logger
}

func NewHomeService(doer Doer, policy *cache.Policy, log logging.Logger) *HomeService {
	return &HomeService{api: doer, cache: policy, log: log.With("component", "home")}
}

// RandomEvents returns the paged query over the public discovery feed.
func (s *HomeService) RandomEvents() *paginate.Infinite[models.Event] {
	return paginate.NewInfinite(func(ctx context.Context, page int) ([]models.Event, models.Pagination, error) {
		key := cache.KeyOf(cache.KeyRandomEvents, page)
		res, err := cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.EventsPage, error) {
			var out models.EventsPage
			err := s.api.Get(ctx, "/event/random", pageQuery(page), &out)
			return out, err
		})
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return res.Events, res.Pagination, nil
	})
}

// JoinOrganization files a membership request with an organization.
func (s *HomeService) JoinOrganization(ctx context.Context, organizationID int64) error {
	body := api.NewForm().SetInt("organization_id", organizationID)
	if err := s.api.PostForm(ctx, "/organization/join", body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationJoinOrganization)
	return nil
}

// CreateRSVP requests attendance at an event.
func (s *HomeService) CreateRSVP(ctx context.Context, eventID int64) error {
	body := api.NewForm().SetInt("event_id", eventID)
	if err := s.api.PostForm(ctx, "/rsvp", body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationRSVPCreate)
	return nil
}

// DeleteRSVP withdraws an attendance request.
func (s *HomeService) DeleteRSVP(ctx context.Context, rsvpID int64) error {
	if err := s.api.Delete(ctx, "/rsvp/"+strconv.FormatInt(rsvpID, 10), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationRSVPDelete)
	return nil
}
