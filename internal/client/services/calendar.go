package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// CalendarService backs the month views: a member sees only events they
// RSVPed to, an organization sees its own active and past events.
type CalendarService struct {
	api   Doer
	cache *cache.Policy
	log   logging.Logger
}

func NewCalendarService(doer Doer, policy *cache.Policy, log logging.Logger) *CalendarService {
	return &CalendarService{api: doer, cache: policy, log: log.With("component", "calendar")}
}

// MemberMonth fetches the member's calendar for one month.
func (s *CalendarService) MemberMonth(ctx context.Context, year int, month time.Month) (models.MemberCalendar, error) {
	key := cache.KeyOf(cache.KeyMemberCalendarEvents, year, int(month))
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.MemberCalendar, error) {
		var out models.MemberCalendar
		err := s.api.Get(ctx, "/event/user/calendar", monthQuery(year, month), &out)
		return out, err
	})
}

// OrganizationMonth fetches the organization's calendar for one month.
func (s *CalendarService) OrganizationMonth(ctx context.Context, year int, month time.Month) (models.OrganizationCalendar, error) {
	key := cache.KeyOf(cache.KeyOrgCalendarEvents, year, int(month))
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.OrganizationCalendar, error) {
		var out models.OrganizationCalendar
		err := s.api.Get(ctx, "/event/organization/calendar", monthQuery(year, month), &out)
		return out, err
	})
}

func monthQuery(year int, month time.Month) url.Values {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(int(month)))
	return q
}
