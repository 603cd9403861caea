// Package services exposes every remote operation of the OpenCircle platform
// as typed methods: reads go through the query cache, mutations validate
// their form, submit multipart, and apply the invalidation policy only after
// the server confirms success.
package services

import (
	"context"
	"net/url"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
)

// Doer is the transport surface the resource services depend on. *api.Client
// satisfies it; tests substitute a double.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	PostForm(ctx context.Context, path string, form *api.Form, out any) error
	PutForm(ctx context.Context, path string, form *api.Form, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// SessionDoer adds the session-cookie surface the auth flow needs on top of
// plain transport.
type SessionDoer interface {
	Doer
	HasSessionCookie(name string) bool
	ResetSessionLoss()
}
