package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
	"github.com/llwyd-bot123/opencircle-client/internal/client/prefs"
	"github.com/llwyd-bot123/opencircle-client/internal/client/session"
)

// Memberships lists the organizations the member belongs to and the requests
// still pending.
func (a *App) Memberships(ctx context.Context) error {
	joined, err := a.svc.Organizations.Memberships(ctx)
	if err != nil {
		return err
	}
	pending, err := a.svc.Organizations.PendingMemberships(ctx)
	if err != nil {
		return err
	}

	if len(joined.Organizations) == 0 && len(pending.PendingMemberships) == 0 {
		fmt.Fprintln(a.out, "No memberships yet")
		return nil
	}
	for _, org := range joined.Organizations {
		fmt.Fprintf(a.out, "#%d %s (%d members)\n", org.OrganizationID, org.OrganizationName, len(org.Members))
	}
	for _, p := range pending.PendingMemberships {
		fmt.Fprintf(a.out, "#%d %s [%s]\n", p.OrganizationID, p.OrganizationName, p.MembershipStatus)
	}
	return nil
}

// Leave withdraws from an organization.
func (a *App) Leave(ctx context.Context, organizationID string) error {
	id, err := parseID(organizationID)
	if err != nil {
		return err
	}
	if err := a.svc.Organizations.Leave(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Left the organization.")
	return nil
}

// Applications lists join requests awaiting the organization's decision.
func (a *App) Applications(ctx context.Context) error {
	members, err := a.svc.Organizations.PendingApplications(ctx)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		fmt.Fprintln(a.out, "No pending applications")
		return nil
	}
	for _, m := range members {
		fmt.Fprintf(a.out, "#%d %s %s [%s]\n", m.UserID, m.FirstName, m.LastName, m.Status)
	}
	return nil
}

// Moderate approves or rejects a join request.
func (a *App) Moderate(ctx context.Context, userID string, approve bool) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	status := models.MembershipStatusApproved
	if !approve {
		status = models.MembershipStatusRejected
	}
	if err := a.svc.Organizations.UpdateMembershipStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Application %s.\n", status)
	return nil
}

// Events lists the organization's upcoming events with their RSVPs.
func (a *App) Events(ctx context.Context) error {
	fmt.Fprintln(a.out, "Loading events...")
	q := a.svc.Events.ActiveEvents()
	if err := q.FetchNext(ctx); err != nil {
		return err
	}
	a.renderEvents(q.Items(), q.HasNext())
	return nil
}

// PastEvents lists the organization's finished events.
func (a *App) PastEvents(ctx context.Context) error {
	fmt.Fprintln(a.out, "Loading events...")
	q := a.svc.Events.PastEvents()
	if err := q.FetchNext(ctx); err != nil {
		return err
	}
	a.renderEvents(q.Items(), q.HasNext())
	return nil
}

// Calendar prints the current month's view for the active account kind.
func (a *App) Calendar(ctx context.Context) error {
	now := time.Now()
	if a.isOrganization() {
		cal, err := a.svc.Calendar.OrganizationMonth(ctx, now.Year(), now.Month())
		if err != nil {
			return err
		}
		if len(cal.ActiveEvents) == 0 && len(cal.PastEvents) == 0 {
			fmt.Fprintln(a.out, "No events found")
			return nil
		}
		a.renderEvents(append(cal.ActiveEvents, cal.PastEvents...), false)
		return nil
	}

	cal, err := a.svc.Calendar.MemberMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return err
	}
	a.renderEvents(cal.RSVPedEvents, false)
	return nil
}

// Profile shows the active account and remembers the tab the user switches
// to.
func (a *App) Profile(ctx context.Context) error {
	decision := a.guard.Check(session.RouteMemberProfile, models.KindMember)
	if a.isOrganization() {
		decision = a.guard.Check(session.RouteOrganizationProfile, models.KindOrganization)
	}
	if !decision.Allow {
		a.route = decision.RedirectTo
		fmt.Fprintf(a.out, "Redirected to %s\n", decision.RedirectTo)
		return nil
	}

	user := a.session.User()
	fmt.Fprintf(a.out, "%s (%s)\n", user.DisplayName(), user.Kind())

	key := prefs.KeyMemberProfileTab
	if a.isOrganization() {
		key = prefs.KeyOrganizationProfileTab
	}
	tab, err := GetSimpleText(a.reader, "Tab (post/events/calendar, empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if tab == "" {
		current, err := prefs.ActiveProfileTab(ctx, a.prefs, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Current tab: %s\n", current)
		return nil
	}
	if err := a.prefs.Set(ctx, key, tab); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Tab saved: %s\n", tab)
	return nil
}
