package session

import "github.com/llwyd-bot123/opencircle-client/internal/client/models"

// Client route names. Navigation is URL-shaped even in non-browser hosts so
// the guard rules stay one-to-one with the product's routing.
const (
	RouteLogin               = "/login"
	RouteHome                = "/home"
	RouteMemberProfile       = "/member-profile"
	RouteOrganizationProfile = "/organization-profile"
	RouteTwoFactorSetup      = "/two-factor-setup"
	RouteOTPVerification     = "/otp-signin-verification"
)

// Decision is the outcome of a guard check.
type Decision struct {
	Allow      bool
	RedirectTo string
	// From preserves the originally requested location for post-login return.
	From string
}

// Guard decides route access from the session store.
type Guard struct {
	store *Store
}

func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// Check evaluates access to location. With no role restriction any
// authenticated account passes. An unauthenticated visitor is sent to the
// login route with the requested location preserved; an authenticated account
// of the wrong kind is sent to the generic home route instead.
func (g *Guard) Check(location string, allowed ...models.AccountKind) Decision {
	user := g.store.User()
	if user == nil {
		return Decision{RedirectTo: RouteLogin, From: location}
	}
	if len(allowed) == 0 {
		return Decision{Allow: true}
	}
	for _, kind := range allowed {
		if user.Kind() == kind {
			return Decision{Allow: true}
		}
	}
	return Decision{RedirectTo: RouteHome}
}

// LandingRoute returns the role-specific page an account lands on after
// authentication completes.
func LandingRoute(a models.Account) string {
	switch {
	case models.IsOrganization(a):
		return RouteOrganizationProfile
	case models.IsMember(a):
		return RouteMemberProfile
	default:
		return RouteLogin
	}
}
