package services

import (
	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/config"
	"github.com/llwyd-bot123/opencircle-client/internal/client/prefs"
	"github.com/llwyd-bot123/opencircle-client/internal/client/session"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// Services bundles every resource service behind one constructor.
type Services struct {
	Auth          *AuthService
	Posts         *PostService
	Comments      *CommentService
	Events        *EventService
	Home          *HomeService
	Organizations *OrganizationService
	Calendar      *CalendarService
}

// New wires the services over a shared transport, cache policy, and session
// store. The prefs repository may be nil when local persistence is disabled.
func New(client *api.Client, policy *cache.Policy, sess *session.Store, pf prefs.Repository, cfg *config.Config, log logging.Logger) *Services {
	return &Services{
		Auth:          NewAuthService(client, policy, sess, pf, cfg, log),
		Posts:         NewPostService(client, policy, log),
		Comments:      NewCommentService(client, policy, log),
		Events:        NewEventService(client, policy, log),
		Home:          NewHomeService(client, policy, log),
		Organizations: NewOrganizationService(client, policy, log),
		Calendar:      NewCalendarService(client, policy, log),
	}
}
