package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"gotest.tools/v3/assert"

	"github.com/tatipharma/pharmabi/api"
)

// backend is a fake pharmabi API. Routes are keyed by "METHOD /path" and
// reply with a successful envelope around their value, unless the value is
// an http.HandlerFunc.
type backend struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]any
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Auth   string
}

func newBackend(t *testing.T, routes map[string]any) *backend {
	t.Helper()
	b := &backend{routes: routes}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	req := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
	}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &req.Body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	route, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	switch v := route.(type) {
	case http.HandlerFunc:
		v(w, r)
	case nil:
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeEnvelope(w, nil)
	default:
		writeEnvelope(w, v)
	}
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func (b *backend) Requests(method, path string) []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []recordedRequest
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func pageOf[T any](items ...T) api.Page[T] {
	return api.Page[T]{Items: items, TotalCount: len(items), PageNumber: 1, PageSize: 10}
}

func newTestToken(t *testing.T, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "jdoe",
		"exp": expires.Unix(),
	}).SignedString([]byte("test-secret"))
	assert.NilError(t, err)
	return token
}

// writeTestSession saves a session for jdoe, as login would, under the
// default session directory of home.
func writeTestSession(t *testing.T, ctx context.Context, home string, expires time.Time) string {
	t.Helper()
	token := newTestToken(t, expires)
	sess := map[string]any{
		"token": token,
		"profile": api.LoginResponse{
			Token:    token,
			UserName: "jdoe",
			FullName: "Jane Doe",
			Email:    "jdoe@example.com",
			Role:     "sales",
		},
	}
	raw, err := json.Marshal(sess)
	assert.NilError(t, err)

	fs := newCLI(ctx).Fs
	err = afero.WriteFile(fs, filepath.Join(home, ".pharmabi", "session"), raw, 0o600)
	assert.NilError(t, err)
	return token
}

func activeCustomer(id int, first, mobile string) api.Customer {
	active := true
	return api.Customer{ID: id, FirstName: first, LastName: "Kamara", Mobile: mobile, City: "Freetown", IsActive: &active}
}
