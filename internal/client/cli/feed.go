package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/llwyd-bot123/opencircle-client/internal/client/models"
)

// Feed loads the first page of the public discovery feed.
func (a *App) Feed(ctx context.Context) error {
	a.feed = a.svc.Home.RandomEvents()
	return a.More(ctx)
}

// More fetches the next feed page and re-renders the list.
func (a *App) More(ctx context.Context) error {
	if a.feed == nil {
		a.feed = a.svc.Home.RandomEvents()
	}
	fmt.Fprintln(a.out, "Loading events...")
	if err := a.feed.FetchNext(ctx); err != nil {
		return err
	}
	a.renderEvents(a.feed.Items(), a.feed.HasNext())
	return nil
}

func (a *App) renderEvents(events []models.Event, hasNext bool) {
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events found")
		return
	}
	for _, e := range events {
		org := ""
		if e.Organization != nil {
			org = " by " + e.Organization.Name
		}
		status := ""
		if e.RSVPStatus != "" {
			status = " [" + e.RSVPStatus + "]"
		}
		fmt.Fprintf(a.out, "#%d %s%s on %s%s (%d comments)\n",
			e.ID, e.Title, org, e.EventDate.Format("2006-01-02 15:04"), status, e.TotalComments)
		for _, c := range e.LatestComments {
			fmt.Fprintf(a.out, "    %s: %s\n", c.Author.DisplayName, c.Message)
		}
	}
	if hasNext {
		fmt.Fprintln(a.out, "Type 'more' for the next page.")
	}
}

// RSVP requests attendance at an event.
func (a *App) RSVP(ctx context.Context, eventID string) error {
	id, err := parseID(eventID)
	if err != nil {
		return err
	}
	if err := a.svc.Home.CreateRSVP(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "RSVP sent.")
	return nil
}

// CancelRSVP withdraws an attendance request.
func (a *App) CancelRSVP(ctx context.Context, rsvpID string) error {
	id, err := parseID(rsvpID)
	if err != nil {
		return err
	}
	if err := a.svc.Home.DeleteRSVP(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "RSVP withdrawn.")
	return nil
}

// Join files a membership request with an organization.
func (a *App) Join(ctx context.Context, organizationID string) error {
	id, err := parseID(organizationID)
	if err != nil {
		return err
	}
	if err := a.svc.Home.JoinOrganization(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Membership request sent.")
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
