package services

import (
	"context"
	"strconv"
	"time"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/forms"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/client/paginate"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// EventService covers organization-authored events: CRUD, the organization's
// active and past listings, and RSVP moderation.
type EventService struct {
	api   Doer
	cache *cache.Policy
	log   logging.Logger
}

func NewEventService(doer Doer, policy *cache.Policy, log logging.Logger) *EventService {
	return &EventService{api: doer, cache: policy, log: log.With("component", "events")}
}

// Event fetches a single event by id.
func (s *EventService) Event(ctx context.Context, id int64) (models.Event, error) {
	key := cache.KeyOf(cache.KeyEvents, id)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.Event, error) {
		var out models.Event
		err := s.api.Get(ctx, "/event/single/"+strconv.FormatInt(id, 10), nil, &out)
		return out, err
	})
}

// ActiveEvents returns the paged query over the signed-in organization's
// upcoming events.
func (s *EventService) ActiveEvents() *paginate.Infinite[models.Event] {
	return s.pagedEvents(cache.KeyOrgActiveEvents, "/event/organization/active")
}

// PastEvents returns the paged query over the signed-in organization's past
// events.
func (s *EventService) PastEvents() *paginate.Infinite[models.Event] {
	return s.pagedEvents(cache.KeyOrgPastEvents, "/event/organization/past")
}

// MemberEventsByRSVP returns the paged query over the events a member has
// RSVPed to, filtered by status, each with its comment preview.
func (s *EventService) MemberEventsByRSVP(status string) *paginate.Infinite[models.Event] {
	return paginate.NewInfinite(func(ctx context.Context, page int) ([]models.Event, models.Pagination, error) {
		key := cache.KeyOf(cache.KeyMemberEventsByRSVP, status, page)
		res, err := cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.EventsPage, error) {
			q := pageQuery(page)
			q.Set("status", status)
			var out models.EventsPage
			err := s.api.Get(ctx, "/event/user/events_by_rsvp_status_with_comments", q, &out)
			return out, err
		})
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return res.Events, res.Pagination, nil
	})
}

// MemberPastEvents returns the paged query over events a member attended.
func (s *EventService) MemberPastEvents() *paginate.Infinite[models.Event] {
	return s.pagedEvents(cache.KeyMemberPastEvents, "/event/user/past")
}

func (s *EventService) pagedEvents(prefix, path string) *paginate.Infinite[models.Event] {
	return paginate.NewInfinite(func(ctx context.Context, page int) ([]models.Event, models.Pagination, error) {
		key := cache.KeyOf(prefix, page)
		res, err := cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.EventsPage, error) {
			var out models.EventsPage
			err := s.api.Get(ctx, path, pageQuery(page), &out)
			return out, err
		})
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return res.Events, res.Pagination, nil
	})
}

// RSVPs lists every RSVP recorded against one event.
func (s *EventService) RSVPs(ctx context.Context, eventID int64) (models.EventRSVPs, error) {
	key := cache.KeyOf(cache.KeyEventsRSVPs, eventID)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.EventRSVPs, error) {
		var out models.EventRSVPs
		err := s.api.Get(ctx, "/rsvp/event/"+strconv.FormatInt(eventID, 10), nil, &out)
		return out, err
	})
}

// AcceptRSVP approves a pending attendance request.
func (s *EventService) AcceptRSVP(ctx context.Context, rsvpID int64) error {
	return s.moderateRSVP(ctx, rsvpID, models.RSVPStatusApproved, cache.MutationRSVPAccept)
}

// DeclineRSVP rejects a pending attendance request.
func (s *EventService) DeclineRSVP(ctx context.Context, rsvpID int64) error {
	return s.moderateRSVP(ctx, rsvpID, models.RSVPStatusRejected, cache.MutationRSVPDecline)
}

func (s *EventService) moderateRSVP(ctx context.Context, rsvpID int64, status string, m cache.Mutation) error {
	body := api.NewForm().Set("status", status)
	if err := s.api.PutForm(ctx, "/rsvp/"+strconv.FormatInt(rsvpID, 10), body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, m)
	return nil
}

// Create publishes a new event.
func (s *EventService) Create(ctx context.Context, form forms.Event) error {
	if err := forms.Validate(form); err != nil {
		return err
	}
	if err := s.api.PostForm(ctx, "/event", eventForm(form), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationEventCreate)
	return nil
}

// Update edits an existing event.
func (s *EventService) Update(ctx context.Context, id int64, form forms.Event) error {
	if err := forms.Validate(form); err != nil {
		return err
	}
	if err := s.api.PutForm(ctx, "/event/"+strconv.FormatInt(id, 10), eventForm(form), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationEventUpdate)
	return nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, "/event/"+strconv.FormatInt(id, 10), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationEventDelete)
	return nil
}

func eventForm(form forms.Event) *api.Form {
	body := api.NewForm().
		Set("title", form.Title).
		Set("description", form.Description).
		Set("event_date", form.EventDate.Format(time.RFC3339)).
		Set("country", form.Address.Country).
		Set("province", form.Address.Province).
		Set("city", form.Address.City).
		Set("barangay", form.Address.Barangay).
		Set("house_building_number", form.Address.HouseBuildingNumber).
		Set("country_code", form.Address.CountryCode).
		Set("province_code", form.Address.ProvinceCode).
		Set("city_code", form.Address.CityCode).
		Set("barangay_code", form.Address.BarangayCode).
		DeclareFile("image")
	if len(form.Image) > 0 {
		body.File("image", form.ImageName, form.Image)
	}
	return body
}
