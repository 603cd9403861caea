package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/llwyd-bot123/opencircle-client/internal/client/forms"
	"github.com/llwyd-bot123/opencircle-client/internal/client/prefs"
	"github.com/llwyd-bot123/opencircle-client/internal/client/services"
	"github.com/llwyd-bot123/opencircle-client/internal/client/session"
)

// Login runs the full signin flow including the two-factor step-up prompts.
func (a *App) Login(ctx context.Context) error {
	kind, err := GetSimpleText(a.reader, "Account type (member/organization)", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	form := forms.Login{Login: email, Password: password}
	var phase services.Phase
	if strings.HasPrefix(strings.ToLower(kind), "org") {
		phase, err = a.svc.Auth.LoginOrganization(ctx, form)
	} else {
		phase, err = a.svc.Auth.LoginMember(ctx, form)
	}
	if err != nil {
		return err
	}

	switch phase {
	case services.PhaseTwoFactorRequired:
		a.route = session.RouteOTPVerification
		return a.verifyChallenge(ctx)
	case services.PhaseTwoFactorSetupPending:
		a.route = session.RouteTwoFactorSetup
		return a.resolveSetup(ctx)
	case services.PhaseLoggedIn:
		return a.landed(ctx)
	}
	return nil
}

// verifyChallenge prompts for the authenticator or backup code.
func (a *App) verifyChallenge(ctx context.Context) error {
	code, err := GetSimpleText(a.reader, "Enter your 6-digit code (or type 'backup')", a.out)
	if err != nil {
		return err
	}
	backup := false
	if strings.EqualFold(code, "backup") {
		backup = true
		code, err = GetSimpleText(a.reader, "Enter a backup code", a.out)
		if err != nil {
			return err
		}
	}
	if _, err := a.svc.Auth.VerifyTwoFA(ctx, code, backup); err != nil {
		return err
	}
	return a.landed(ctx)
}

// resolveSetup walks the user through enabling or skipping the second factor
// after a first login.
func (a *App) resolveSetup(ctx context.Context) error {
	setup, skipped, err := a.svc.Auth.StartTwoFASetup(ctx)
	if err != nil {
		return err
	}
	if skipped {
		fmt.Fprintln(a.out, "Two-factor setup unavailable right now, continuing without it.")
		return a.landed(ctx)
	}

	fmt.Fprintln(a.out, "Scan this QR code with your authenticator app:")
	fmt.Fprintln(a.out, setup.QRCode)
	if len(setup.BackupCodes) > 0 {
		fmt.Fprintln(a.out, "Backup codes (store them somewhere safe):")
		for _, code := range setup.BackupCodes {
			fmt.Fprintln(a.out, "  "+code)
		}
	}

	enable, err := GetConfirm(a.reader, "Enable two-factor authentication now?", a.out)
	if err != nil {
		return err
	}
	if !enable {
		if err := a.svc.Auth.BypassTwoFA(ctx); err != nil {
			return err
		}
		return a.landed(ctx)
	}

	code, err := GetSimpleText(a.reader, "Enter the 6-digit code from your app", a.out)
	if err != nil {
		return err
	}
	if err := a.svc.Auth.EnableTwoFA(ctx, code); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Two-factor authentication enabled.")
	return a.landed(ctx)
}

// landed moves to the role-specific landing page and restores the saved
// profile tab.
func (a *App) landed(ctx context.Context) error {
	user := a.session.User()
	a.route = session.LandingRoute(user)
	fmt.Fprintf(a.out, "Logged in as %s\n", user.DisplayName())

	key := prefs.KeyMemberProfileTab
	if a.isOrganization() {
		key = prefs.KeyOrganizationProfileTab
	}
	tab, err := prefs.ActiveProfileTab(ctx, a.prefs, key)
	if err != nil {
		a.log.Warn(ctx, "failed to restore profile tab", "err", err)
		return nil
	}
	fmt.Fprintf(a.out, "Profile tab: %s\n", tab)
	return nil
}

// Signup registers a new account.
func (a *App) Signup(ctx context.Context) error {
	kind, err := GetSimpleText(a.reader, "Account type (member/organization)", a.out)
	if err != nil {
		return err
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if strings.HasPrefix(strings.ToLower(kind), "org") {
		name, err := GetSimpleText(a.reader, "Organization name", a.out)
		if err != nil {
			return err
		}
		category, err := GetSimpleText(a.reader, "Category", a.out)
		if err != nil {
			return err
		}
		err = a.svc.Auth.SignupOrganization(ctx, forms.OrganizationSignup{
			Name: name, Email: email, Password: password, Category: category,
		})
		if err != nil {
			return err
		}
	} else {
		first, err := GetSimpleText(a.reader, "First name", a.out)
		if err != nil {
			return err
		}
		last, err := GetSimpleText(a.reader, "Last name", a.out)
		if err != nil {
			return err
		}
		err = a.svc.Auth.SignupMember(ctx, forms.MemberSignup{
			FirstName: first, LastName: last, Email: email, Password: password,
		})
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(a.out, "Account created, you can log in now.")
	return nil
}

// TwoFA shows the second-factor status and offers to toggle it.
func (a *App) TwoFA(ctx context.Context) error {
	status, err := a.svc.Auth.TwoFAStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Two-factor enabled: %v, bypassed: %v\n", status.Enabled, status.Bypass)

	if status.Enabled {
		disable, err := GetConfirm(a.reader, "Disable two-factor authentication?", a.out)
		if err != nil || !disable {
			return err
		}
		if err := a.svc.Auth.DisableTwoFA(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Two-factor authentication disabled.")
	}
	return nil
}

// Logout ends the session; local state is dropped even when the server is
// unreachable.
func (a *App) Logout(ctx context.Context) error {
	a.svc.Auth.Logout(ctx)
	a.route = session.RouteLogin
	a.feed = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
