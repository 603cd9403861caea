package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llwyd-bot123/opencircle-client/internal/client/api"
	"github.com/llwyd-bot123/opencircle-client/internal/client/cache"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

// fakeDoer is the transport double shared by the service tests. Responses
// are registered per method+path; every request is recorded for assertions.
type fakeDoer struct {
	mu        sync.Mutex
	handlers  map[string]func(query url.Values) (any, error)
	calls     []fakeCall
	hasCookie bool
	resets    int
}

type fakeCall struct {
	method string
	path   string
	query  url.Values
	form   *api.Form
}

func newFakeDoer() *fakeDoer {
	return &fakeDoer{handlers: map[string]func(url.Values) (any, error){}}
}

func (f *fakeDoer) stub(method, path string, body any, err error) {
	f.handle(method, path, func(url.Values) (any, error) { return body, err })
}

func (f *fakeDoer) handle(method, path string, fn func(query url.Values) (any, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = fn
}

func (f *fakeDoer) respond(method, path string, query url.Values, form *api.Form, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{method: method, path: path, query: query, form: form})
	fn := f.handlers[method+" "+path]
	f.mu.Unlock()

	if fn == nil {
		return nil
	}
	body, err := fn(query)
	if err != nil {
		return err
	}
	if out == nil || body == nil {
		return nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bad stub body: %w", err)
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeDoer) Get(ctx context.Context, path string, query url.Values, out any) error {
	return f.respond("GET", path, query, nil, out)
}

func (f *fakeDoer) PostForm(ctx context.Context, path string, form *api.Form, out any) error {
	return f.respond("POST", path, nil, form, out)
}

func (f *fakeDoer) PutForm(ctx context.Context, path string, form *api.Form, out any) error {
	return f.respond("PUT", path, nil, form, out)
}

func (f *fakeDoer) Delete(ctx context.Context, path string, out any) error {
	return f.respond("DELETE", path, nil, nil, out)
}

func (f *fakeDoer) HasSessionCookie(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasCookie
}

func (f *fakeDoer) ResetSessionLoss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeDoer) setCookie(present bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hasCookie = present
}

func (f *fakeDoer) callsTo(method, path string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDoer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// formFields decodes a recorded multipart form back into its value fields.
func formFields(t *testing.T, form *api.Form) map[string]string {
	t.Helper()
	require.NotNil(t, form)
	body, contentType, err := form.Encode()
	require.NoError(t, err)
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)

	fields := map[string]string{}
	reader := multipart.NewReader(body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if part.FileName() != "" {
			continue
		}
		value, err := io.ReadAll(part)
		require.NoError(t, err)
		fields[part.FormName()] = string(value)
	}
	return fields
}

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard)
}

func testPolicy() (*cache.Store, *cache.Policy) {
	store := cache.NewStore(0, 0)
	return store, cache.NewPolicy(store, testLogger())
}
