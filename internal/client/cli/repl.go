package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches onto. App satisfies
// it; REPL tests substitute a stub.
type execIface interface {
	isLoggedIn() bool
	isOrganization() bool

	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	TwoFA(ctx context.Context) error
	Logout(ctx context.Context) error

	Feed(ctx context.Context) error
	More(ctx context.Context) error
	RSVP(ctx context.Context, eventID string) error
	CancelRSVP(ctx context.Context, rsvpID string) error
	Join(ctx context.Context, organizationID string) error

	Posts(ctx context.Context, uid string) error
	Comment(ctx context.Context, target, id string) error
	Comments(ctx context.Context, target, id string) error

	Memberships(ctx context.Context) error
	Leave(ctx context.Context, organizationID string) error
	Applications(ctx context.Context) error
	Moderate(ctx context.Context, userID string, approve bool) error

	Events(ctx context.Context) error
	PastEvents(ctx context.Context) error
	Calendar(ctx context.Context) error
	Profile(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them. Handler errors
// are printed, never fatal; the loop ends on EOF or exit/quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprintf(out, "oc %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printHelp(a, out)
		case "exit", "quit":
			return

		case "login":
			err = a.Login(ctx)
		case "signup":
			err = a.Signup(ctx)
		case "2fa":
			err = a.TwoFA(ctx)
		case "logout":
			err = a.Logout(ctx)

		case "feed":
			err = a.Feed(ctx)
		case "more":
			err = a.More(ctx)
		case "rsvp":
			err = withArg(args, func(id string) error { return a.RSVP(ctx, id) })
		case "unrsvp":
			err = withArg(args, func(id string) error { return a.CancelRSVP(ctx, id) })
		case "join":
			err = withArg(args, func(id string) error { return a.Join(ctx, id) })

		case "posts":
			err = withArg(args, func(uid string) error { return a.Posts(ctx, uid) })
		case "comment":
			err = withTwoArgs(args, func(target, id string) error { return a.Comment(ctx, target, id) })
		case "comments":
			err = withTwoArgs(args, func(target, id string) error { return a.Comments(ctx, target, id) })

		case "memberships":
			err = a.Memberships(ctx)
		case "leave":
			err = withArg(args, func(id string) error { return a.Leave(ctx, id) })
		case "applications":
			err = a.Applications(ctx)
		case "approve":
			err = withArg(args, func(id string) error { return a.Moderate(ctx, id, true) })
		case "reject":
			err = withArg(args, func(id string) error { return a.Moderate(ctx, id, false) })

		case "events":
			err = a.Events(ctx)
		case "past":
			err = a.PastEvents(ctx)
		case "calendar":
			err = a.Calendar(ctx)
		case "profile":
			err = a.Profile(ctx)

		default:
			fmt.Fprintf(out, "Unknown command %q, type 'help'\n", cmd)
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func printHelp(a execIface, out io.Writer) {
	switch {
	case !a.isLoggedIn():
		fmt.Fprintln(out, "Available commands: login, signup, feed, more, exit")
	case a.isOrganization():
		fmt.Fprintln(out, "Available commands: events, past, applications, approve <user>, reject <user>, comment event <id>, comments event <id>, calendar, profile, 2fa, logout, exit")
	default:
		fmt.Fprintln(out, "Available commands: feed, more, rsvp <event>, unrsvp <rsvp>, join <org>, posts <uuid>, comment <post|event> <id>, comments <post|event> <id>, memberships, leave <org>, calendar, profile, 2fa, logout, exit")
	}
}

func withArg(args []string, fn func(string) error) error {
	if len(args) < 1 {
		return fmt.Errorf("missing argument")
	}
	return fn(args[0])
}

func withTwoArgs(args []string, fn func(string, string) error) error {
	if len(args) < 2 {
		return fmt.Errorf("expected two arguments")
	}
	return fn(args[0], args[1])
}
