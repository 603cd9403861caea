package optest_test

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/client/config"
	"github.com/llwyd-bot123/opencircle-client/internal/client/forms"
	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/client/services"
	"github.com/llwyd-bot123/opencircle-client/internal/client/session"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
	"github.com/llwyd-bot123/opencircle-client/internal/optest"
)

type stack struct {
	client  *api.Client
	store   *cache.Store
	session *session.Store
	svc     *services.Services
}

func newStack(t *testing.T, srv *optest.Server) *stack {
	t.Helper()
	cfg := &config.Config{
		APIBaseURL:         srv.URL + "/api",
		UploadBaseURL:      srv.URL + "/uploads",
		RequestTimeout:     5 * time.Second,
		CookieWaitTimeout:  200 * time.Millisecond,
		CookieWaitInterval: 20 * time.Millisecond,
		CacheStaleTime:     time.Minute,
		CacheGCTime:        time.Hour,
	}
	log := logging.NewTextLogger(io.Discard)

	client, err := api.New(cfg, log, nil)
	require.NoError(t, err)

	store := cache.NewStore(cfg.CacheStaleTime, cfg.CacheGCTime)
	sess := session.NewStore(log)
	svc := services.New(client, cache.NewPolicy(store, log), sess, nil, cfg, log)
	return &stack{client: client, store: store, session: sess, svc: svc}
}

func login() forms.Login {
	return forms.Login{Login: "ada@example.com", Password: "secret1"}
}

func TestMemberSigninEndToEnd(t *testing.T) {
	srv := optest.New(optest.Options{}, optest.Account{
		Email: "ada@example.com", Password: "secret1", TwoFAConfigured: true,
	})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	phase, err := s.svc.Auth.LoginMember(ctx, login())
	require.NoError(t, err)
	assert.Equal(t, services.PhaseLoggedIn, phase)
	assert.True(t, s.client.HasSessionCookie(api.SessionCookieName))

	account, err := s.svc.Auth.AuthUser(ctx)
	require.NoError(t, err)
	assert.True(t, models.IsMember(account))
	assert.Equal(t, session.RouteMemberProfile, session.LandingRoute(account))
}

func TestSigninRejectionSurfacesInline(t *testing.T) {
	srv := optest.New(optest.Options{}, optest.Account{
		Email: "ada@example.com", Password: "secret1",
	})
	defer srv.Close()
	s := newStack(t, srv)

	var redirects atomic.Int32
	s.client.SetUnauthorizedHook(func() { redirects.Add(1) })

	_, err := s.svc.Auth.LoginMember(context.Background(), forms.Login{
		Login: "ada@example.com", Password: "wrong-pass",
	})
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Zero(t, redirects.Load(), "a signin 401 must never trigger the login redirect")
}

func TestTwoFactorChallengeFlow(t *testing.T) {
	srv := optest.New(optest.Options{}, optest.Account{
		Email: "ada@example.com", Password: "secret1", TwoFARequired: true,
	})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	var redirects atomic.Int32
	s.client.SetUnauthorizedHook(func() { redirects.Add(1) })

	phase, err := s.svc.Auth.LoginMember(ctx, login())
	require.NoError(t, err)
	require.Equal(t, services.PhaseTwoFactorRequired, phase)

	_, err = s.svc.Auth.VerifyTwoFA(ctx, "000000", false)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Zero(t, redirects.Load(), "a verify 401 must surface inline")

	account, err := s.svc.Auth.VerifyTwoFA(ctx, optest.ValidOTP, false)
	require.NoError(t, err)
	assert.True(t, models.IsMember(account))
	assert.True(t, s.session.IsAuthenticated())
	assert.True(t, s.client.HasSessionCookie(api.SessionCookieName))
}

func TestTwoFactorBackupCodeFlow(t *testing.T) {
	srv := optest.New(optest.Options{}, optest.Account{
		Email: "ada@example.com", Password: "secret1", TwoFARequired: true,
	})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	_, err := s.svc.Auth.LoginMember(ctx, login())
	require.NoError(t, err)

	account, err := s.svc.Auth.VerifyTwoFA(ctx, optest.ValidBackupCode, true)
	require.NoError(t, err)
	assert.True(t, models.IsMember(account))
}

func TestTwoFactorSetupAndEnable(t *testing.T) {
	srv := optest.New(optest.Options{}, optest.Account{
		Email: "ada@example.com", Password: "secret1",
	})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	phase, err := s.svc.Auth.LoginMember(ctx, login())
	require.NoError(t, err)
	require.Equal(t, services.PhaseTwoFactorSetupPending, phase)
	assert.False(t, s.session.IsAuthenticated())

	setup, skipped, err := s.svc.Auth.StartTwoFASetup(ctx)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.NotEmpty(t, setup.QRCode)
	assert.NotEmpty(t, setup.BackupCodes)

	require.NoError(t, s.svc.Auth.EnableTwoFA(ctx, optest.ValidOTP))
	assert.Equal(t, services.PhaseLoggedIn, s.svc.Auth.Phase())
	assert.True(t, s.session.IsAuthenticated())

	status, err := s.svc.Auth.TwoFAStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Enabled)
}

func TestTwoFactorSetupCookieTimeout(t *testing.T) {
	srv := optest.New(optest.Options{WithholdLoginCookie: true}, optest.Account{
		Email: "ada@example.com", Password: "secret1",
	})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	phase, err := s.svc.Auth.LoginMember(ctx, login())
	require.NoError(t, err)
	require.Equal(t, services.PhaseTwoFactorSetupPending, phase)

	_, skipped, err := s.svc.Auth.StartTwoFASetup(ctx)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Equal(t, services.PhaseLoggedIn, s.svc.Auth.Phase())
	assert.True(t, s.session.IsAuthenticated())
}

func TestTwoFactorBypass(t *testing.T) {
	srv := optest.New(optest.Options{}, optest.Account{
		Email: "ada@example.com", Password: "secret1",
	})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	_, err := s.svc.Auth.LoginMember(ctx, login())
	require.NoError(t, err)

	require.NoError(t, s.svc.Auth.BypassTwoFA(ctx))
	assert.Equal(t, services.PhaseLoggedIn, s.svc.Auth.Phase())

	status, err := s.svc.Auth.TwoFAStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Bypass)
	assert.False(t, status.Enabled)
}

func TestSessionLossFiresRedirectOnce(t *testing.T) {
	srv := optest.New(optest.Options{})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	var redirects atomic.Int32
	s.client.SetUnauthorizedHook(func() { redirects.Add(1) })

	_, err := s.svc.Auth.AuthUser(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	_, err = s.svc.Auth.TwoFAStatus(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)

	assert.Equal(t, int32(1), redirects.Load())
}

func TestLogoutClearsStateWhenServerIsDown(t *testing.T) {
	srv := optest.New(optest.Options{}, optest.Account{
		Email: "ada@example.com", Password: "secret1", TwoFAConfigured: true,
	})
	s := newStack(t, srv)
	ctx := context.Background()

	_, err := s.svc.Auth.LoginMember(ctx, login())
	require.NoError(t, err)
	require.True(t, s.session.IsAuthenticated())
	s.store.Set(cache.KeyOf(cache.KeyRandomEvents, 1), models.EventsPage{})

	srv.Close()
	s.svc.Auth.Logout(ctx)

	assert.False(t, s.session.IsAuthenticated())
	_, ok := s.store.Get(cache.KeyOf(cache.KeyRandomEvents, 1))
	assert.False(t, ok)
	assert.Equal(t, services.PhaseLoggedOut, s.svc.Auth.Phase())
}

func TestFeedPaginationOverTheWire(t *testing.T) {
	srv := optest.New(optest.Options{
		PageSize: 2,
		Events: []optest.Event{
			{ID: 1, Title: "Cleanup Drive"},
			{ID: 2, Title: "Book Fair"},
			{ID: 3, Title: "Fun Run"},
		},
	})
	defer srv.Close()
	s := newStack(t, srv)
	ctx := context.Background()

	feed := s.svc.Home.RandomEvents()
	require.NoError(t, feed.FetchNext(ctx))
	assert.Len(t, feed.Items(), 2)
	assert.True(t, feed.HasNext())

	require.NoError(t, feed.FetchNext(ctx))
	items := feed.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Fun Run", items[2].Title)
	assert.False(t, feed.HasNext())
}

func TestEmptyFeedIsExplicit(t *testing.T) {
	srv := optest.New(optest.Options{})
	defer srv.Close()
	s := newStack(t, srv)

	feed := s.svc.Home.RandomEvents()
	require.NoError(t, feed.FetchNext(context.Background()))
	assert.Empty(t, feed.Items())
	assert.NoError(t, feed.Err())
	assert.False(t, feed.HasNext())
}
