package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/config"
	"github.com/llwyd-bot123/opencircle-client/internal/client/forms"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/client/prefs"
	"github.com/llwyd-bot123/opencircle-client/internal/client/session"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// Phase is the login flow's current step.
type Phase string

const (
	PhaseLoggedOut             Phase = "logged_out"
	PhaseSubmitting            Phase = "submitting"
	PhaseTwoFactorRequired     Phase = "two_factor_required"
	PhaseTwoFactorSetupPending Phase = "two_factor_setup_pending"
	PhaseLoggedIn              Phase = "logged_in"
)

// ErrNoStepUp is returned when a two-factor operation is invoked while no
// matching step is pending.
var ErrNoStepUp = errors.New("no two-factor step is pending")

var errCookieAbsent = errors.New("session cookie not set yet")

// Challenge identifies the account awaiting second-factor verification.
type Challenge struct {
	Email string
	Kind  models.AccountKind
}

// pendingLogin is a signin that succeeded but whose completion is deferred
// until the setup step resolves.
type pendingLogin struct {
	account   models.Account
	expiresAt string
}

// AuthService drives signin, signup, logout, and the two-factor step-up flow.
//
// The flow moves LoggedOut -> Submitting -> {LoggedIn | TwoFactorRequired |
// TwoFactorSetupPending}; the two challenge states resolve to LoggedIn via
// verification, enablement, or bypass.
type AuthService struct {
	api     SessionDoer
	cache   *cache.Policy
	session *session.Store
	prefs   prefs.Repository
	log     logging.Logger

	cookieWaitTimeout  time.Duration
	cookieWaitInterval time.Duration

	mu        sync.Mutex
	phase     Phase
	challenge Challenge
	pending   *pendingLogin
}

func NewAuthService(doer SessionDoer, policy *cache.Policy, sess *session.Store, pf prefs.Repository, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		api:                doer,
		cache:              policy,
		session:            sess,
		prefs:              pf,
		log:                log.With("component", "auth"),
		cookieWaitTimeout:  cfg.CookieWaitTimeout,
		cookieWaitInterval: cfg.CookieWaitInterval,
		phase:              PhaseLoggedOut,
	}
}

// Phase returns the flow's current step.
func (s *AuthService) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Challenge returns the identity awaiting verification. Meaningful only in
// PhaseTwoFactorRequired.
func (s *AuthService) Challenge() Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challenge
}

// LoginMember signs a member in. The returned phase tells the caller whether
// the session is live or a second-factor step must be resolved first.
func (s *AuthService) LoginMember(ctx context.Context, form forms.Login) (Phase, error) {
	if err := forms.Validate(form); err != nil {
		return s.Phase(), err
	}
	s.setPhase(PhaseSubmitting)

	body := api.NewForm().Set("login", form.Login).Set("password", form.Password)
	var resp models.MemberLoginResponse
	if err := s.api.PostForm(ctx, "/account/user_signin", body, &resp); err != nil {
		s.setPhase(PhaseLoggedOut)
		return PhaseLoggedOut, err
	}

	switch {
	case resp.TwoFARequired:
		s.mu.Lock()
		s.phase = PhaseTwoFactorRequired
		s.challenge = Challenge{Email: form.Login, Kind: models.KindMember}
		s.pending = nil
		s.mu.Unlock()
		s.log.Info(ctx, "second factor required", "email", form.Login)
	case !resp.TwoFAConfigured && !resp.TwoFABypass:
		s.mu.Lock()
		s.phase = PhaseTwoFactorSetupPending
		s.pending = &pendingLogin{account: resp.User, expiresAt: resp.ExpiresAt}
		s.mu.Unlock()
		s.log.Info(ctx, "two-factor setup pending", "email", form.Login)
	default:
		s.complete(ctx, resp.User, resp.ExpiresAt)
	}
	return s.Phase(), nil
}

// LoginOrganization signs an organization in. Organizations carry no second
// factor, so a success always lands in PhaseLoggedIn.
func (s *AuthService) LoginOrganization(ctx context.Context, form forms.Login) (Phase, error) {
	if err := forms.Validate(form); err != nil {
		return s.Phase(), err
	}
	s.setPhase(PhaseSubmitting)

	body := api.NewForm().Set("login", form.Login).Set("password", form.Password)
	var resp models.OrganizationLoginResponse
	if err := s.api.PostForm(ctx, "/account/organization_signin", body, &resp); err != nil {
		s.setPhase(PhaseLoggedOut)
		return PhaseLoggedOut, err
	}
	s.complete(ctx, resp.Organization, resp.ExpiresAt)
	return s.Phase(), nil
}

// StartTwoFASetup waits for the server-set session cookie, then initiates
// second-factor setup and returns the QR payload. The cookie appears
// asynchronously after signin; when it never shows up within the configured
// window, setup is skipped and the pending login completes anyway, reported
// via skipped=true.
func (s *AuthService) StartTwoFASetup(ctx context.Context) (models.TwoFASetup, bool, error) {
	s.mu.Lock()
	if s.phase != PhaseTwoFactorSetupPending {
		s.mu.Unlock()
		return models.TwoFASetup{}, false, ErrNoStepUp
	}
	s.mu.Unlock()

	if err := s.waitForSessionCookie(ctx); err != nil {
		s.log.Warn(ctx, "session cookie never appeared, skipping two-factor setup", "err", err)
		s.completePending(ctx)
		return models.TwoFASetup{}, true, nil
	}

	var setup models.TwoFASetup
	if err := s.api.PostForm(ctx, "/account/two_fa/setup_initiate", api.NewForm(), &setup); err != nil {
		return models.TwoFASetup{}, false, err
	}
	return setup, false, nil
}

// EnableTwoFA confirms setup with a six-digit authenticator code and
// completes any pending login.
func (s *AuthService) EnableTwoFA(ctx context.Context, code string) error {
	if err := forms.Validate(forms.OTPCode{Code: code}); err != nil {
		return err
	}
	body := api.NewForm().Set("totp_token", code).Set("account_type", s.accountType())
	if err := s.api.PostForm(ctx, "/account/two_fa/enable", body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationTwoFAEnable)
	s.completePending(ctx)
	return nil
}

// DisableTwoFA turns the second factor off for the active account.
func (s *AuthService) DisableTwoFA(ctx context.Context) error {
	if err := s.api.PostForm(ctx, "/account/two_fa/disable", api.NewForm(), nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationTwoFADisable)
	return nil
}

// BypassTwoFA records the user's choice to skip the second factor and
// completes any pending login.
func (s *AuthService) BypassTwoFA(ctx context.Context) error {
	body := api.NewForm().SetBool("bypass_status", true)
	if err := s.api.PostForm(ctx, "/account/two_fa/bypass", body, nil); err != nil {
		return err
	}
	s.cache.InvalidateFor(ctx, cache.MutationTwoFABypass)
	s.completePending(ctx)
	return nil
}

// VerifyTwoFA resolves the PhaseTwoFactorRequired challenge with either an
// authenticator code or a backup code. The account kind of the response
// decides the landing page.
func (s *AuthService) VerifyTwoFA(ctx context.Context, code string, backup bool) (models.Account, error) {
	s.mu.Lock()
	if s.phase != PhaseTwoFactorRequired {
		s.mu.Unlock()
		return nil, ErrNoStepUp
	}
	challenge := s.challenge
	s.mu.Unlock()

	body := api.NewForm().
		Set("login", challenge.Email).
		Set("account_type", kindToAccountType(challenge.Kind))
	if backup {
		if err := forms.Validate(forms.BackupCode{Code: code}); err != nil {
			return nil, err
		}
		body.Set("backup_code", code)
	} else {
		if err := forms.Validate(forms.OTPCode{Code: code}); err != nil {
			return nil, err
		}
		body.Set("totp_token", code)
	}

	var resp models.TwoFAVerifyResponse
	if err := s.api.PostForm(ctx, "/account/two_fa/verify", body, &resp); err != nil {
		return nil, err
	}
	account, err := resp.Account()
	if err != nil {
		return nil, err
	}
	s.complete(ctx, account, resp.ExpiresAt)
	return account, nil
}

// TwoFAStatus reports whether the active account has the second factor
// enabled or bypassed.
func (s *AuthService) TwoFAStatus(ctx context.Context) (models.TwoFAStatus, error) {
	key := cache.KeyOf(cache.KeyTwoFAStatus)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.TwoFAStatus, error) {
		var out models.TwoFAStatus
		err := s.api.Get(ctx, "/account/two_fa/status", nil, &out)
		return out, err
	})
}

// AuthUser fetches the account behind the current session cookie.
func (s *AuthService) AuthUser(ctx context.Context) (models.Account, error) {
	key := cache.KeyOf(cache.KeyUser)
	return cache.Fetch(ctx, s.cache.Store(), key, func(ctx context.Context) (models.Account, error) {
		var raw json.RawMessage
		if err := s.api.Get(ctx, "/account/auth_user", nil, &raw); err != nil {
			return nil, err
		}
		return models.DecodeAccount(raw)
	})
}

// SignupMember registers a member account. The profile picture field is
// always submitted, as an empty placeholder when no image was provided.
func (s *AuthService) SignupMember(ctx context.Context, form forms.MemberSignup) error {
	if err := forms.Validate(form); err != nil {
		return err
	}
	body := api.NewForm().
		Set("first_name", form.FirstName).
		Set("last_name", form.LastName).
		Set("email", form.Email).
		Set("password", form.Password).
		Set("bio", form.Bio).
		DeclareFile("profile_picture")
	if len(form.ProfilePicture) > 0 {
		body.File("profile_picture", form.PictureName, form.ProfilePicture)
	}
	return s.api.PostForm(ctx, "/account/user", body, nil)
}

// SignupOrganization registers an organization account.
func (s *AuthService) SignupOrganization(ctx context.Context, form forms.OrganizationSignup) error {
	if err := forms.Validate(form); err != nil {
		return err
	}
	body := api.NewForm().
		Set("name", form.Name).
		Set("email", form.Email).
		Set("password", form.Password).
		Set("category", form.Category).
		Set("description", form.Description).
		DeclareFile("logo")
	if len(form.Logo) > 0 {
		body.File("logo", form.LogoName, form.Logo)
	}
	return s.api.PostForm(ctx, "/account/organization", body, nil)
}

// Logout ends the session. Local state is cleared unconditionally; a server
// failure is logged and otherwise ignored so the user is never stuck signed
// in on a dead backend.
func (s *AuthService) Logout(ctx context.Context) {
	if err := s.api.PostForm(ctx, "/account/logout", api.NewForm(), nil); err != nil {
		s.log.Warn(ctx, "server logout failed, clearing local session anyway", "err", err)
	}

	s.session.Clear(ctx)
	s.cache.Store().Clear()
	if s.prefs != nil {
		if err := s.prefs.Clear(ctx); err != nil {
			s.log.Warn(ctx, "failed to clear local preferences", "err", err)
		}
	}

	s.mu.Lock()
	s.phase = PhaseLoggedOut
	s.challenge = Challenge{}
	s.pending = nil
	s.mu.Unlock()
}

// complete installs the account as the live session and re-arms the
// session-loss hook.
func (s *AuthService) complete(ctx context.Context, account models.Account, expiresAt string) {
	s.api.ResetSessionLoss()
	s.session.Login(ctx, account, expiresAt)
	s.mu.Lock()
	s.phase = PhaseLoggedIn
	s.challenge = Challenge{}
	s.pending = nil
	s.mu.Unlock()
}

// completePending finishes the signin that was parked behind the setup step.
func (s *AuthService) completePending(ctx context.Context) {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()
	if pending == nil {
		return
	}
	s.complete(ctx, pending.account, pending.expiresAt)
}

// waitForSessionCookie polls the cookie jar at the configured interval until
// the session cookie appears or the window closes.
func (s *AuthService) waitForSessionCookie(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cookieWaitTimeout)
	defer cancel()
	return retry.Do(ctx, retry.NewConstant(s.cookieWaitInterval), func(ctx context.Context) error {
		if s.api.HasSessionCookie(api.SessionCookieName) {
			return nil
		}
		return retry.RetryableError(errCookieAbsent)
	})
}

func (s *AuthService) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// accountType names the active account kind the way the server's two-factor
// endpoints expect it.
func (s *AuthService) accountType() string {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()
	if pending != nil {
		return kindToAccountType(pending.account.Kind())
	}
	if user := s.session.User(); user != nil {
		return kindToAccountType(user.Kind())
	}
	return kindToAccountType(models.KindMember)
}

func kindToAccountType(kind models.AccountKind) string {
	if kind == models.KindOrganization {
		return "organization"
	}
	return "user"
}
