package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"

	"github.com/tatipharma/pharmabi/internal/logging"
	"github.com/tatipharma/pharmabi/internal/timer"
)

// CredentialSource supplies the bearer token attached to every request. An
// empty token is not an error: the request is sent without an Authorization
// header and the backend decides.
type CredentialSource interface {
	Token() string
}

type Client struct {
	Name        string
	Version     string
	URL         string
	Credentials CredentialSource
	HTTP        http.Client

	// OnUnauthorized is called whenever a request returns 401 Unauthorized.
	OnUnauthorized func()

	// ExportQuirkFixedPaging forces pageNumber=1,pageSize=1 on pdf and excel
	// exports. See Client.Export.
	ExportQuirkFixedPaging bool
}

func (c Client) token() string {
	if c.Credentials == nil {
		return ""
	}
	return c.Credentials.Token()
}

func (c Client) userAgent() string {
	return fmt.Sprintf("pharmabi/%v (%v; %v/%v)", c.Version, c.Name, runtime.GOOS, runtime.GOARCH)
}

func (c Client) newRequest(ctx context.Context, method, path string, values url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL+path, reader)
	if err != nil {
		return nil, err
	}

	if len(values) > 0 {
		req.URL.RawQuery = values.Encode()
	}

	if token := c.token(); token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// do sends one request and returns the response body of a 2xx response. Any
// other outcome is returned as an Error.
func (c Client) do(ctx context.Context, method, path string, values url.Values, body any) (*http.Response, []byte, error) {
	req, err := c.newRequest(ctx, method, path, values, body)
	if err != nil {
		return nil, nil, err
	}

	defer timer.LogTimeElapsed(time.Now(), fmt.Sprintf("%s %s", method, path))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		logging.Debugf("%s %q: %s", method, path, logging.Redact(err.Error()))
		return nil, nil, Error{Method: method, Path: path, Message: statusFallback(0), cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, Error{Method: method, Path: path, Code: int32(resp.StatusCode), Message: statusFallback(resp.StatusCode), cause: err}
	}

	logging.Debugf("%s %q responded %d", method, path, resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized && c.OnUnauthorized != nil {
		c.OnUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, errs := decodeFailure(resp.StatusCode, respBody)
		return nil, nil, Error{Method: method, Path: path, Code: int32(resp.StatusCode), Message: msg, Errors: errs}
	}

	return resp, respBody, nil
}

func unwrap[Res any](method, path string, status int, body []byte, fallback string) (*Res, error) {
	var env Envelope[Res]
	if err := json.Unmarshal(body, &env); err != nil {
		logging.Debugf("parsing json response: %v. partial text: %q", err, partialText(body, 100))
		return nil, Error{Method: method, Path: path, Code: int32(status), Message: fallbackOrGeneric(fallback), cause: err}
	}

	res, err := env.Unwrap(fallback)
	if err != nil {
		var apiErr Error
		if errors.As(err, &apiErr) {
			apiErr.Method, apiErr.Path, apiErr.Code = method, path, int32(status)
			return nil, apiErr
		}
		return nil, err
	}
	return res, nil
}

func get[Res any](ctx context.Context, client Client, path string, values url.Values, fallback string) (*Res, error) {
	resp, body, err := client.do(ctx, http.MethodGet, path, values, nil)
	if err != nil {
		return nil, err
	}
	return unwrap[Res](http.MethodGet, path, resp.StatusCode, body, fallback)
}

func post[Req, Res any](ctx context.Context, client Client, path string, req *Req, fallback string) (*Res, error) {
	resp, body, err := client.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}
	return unwrap[Res](http.MethodPost, path, resp.StatusCode, body, fallback)
}

// list fetches one page from a GET endpoint. Only the non-empty fields of
// filter are sent as query parameters.
func list[T, F any](ctx context.Context, client Client, path string, page PageRequest, filter F, fallback string) (*Page[T], error) {
	values, err := encodeQuery(page, filter)
	if err != nil {
		return nil, err
	}

	res, err := get[Page[T]](ctx, client, path, values, fallback)
	if err != nil {
		return nil, err
	}
	res.normalize(page)
	return res, nil
}

// search fetches one page from a POST endpoint, with the page request and
// the filter flattened into one JSON body.
func search[T, Req any](ctx context.Context, client Client, path string, page PageRequest, req *Req, fallback string) (*Page[T], error) {
	res, err := post[Req, Page[T]](ctx, client, path, req, fallback)
	if err != nil {
		return nil, err
	}
	res.normalize(page)
	return res, nil
}

// download posts req and returns the raw response body. A JSON response to a
// download is treated as an envelope, since the backend reports some failures
// that way with a 200 status.
func download[Req any](ctx context.Context, client Client, path string, req *Req, fallback string) ([]byte, error) {
	resp, body, err := client.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}

	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType == "application/json" {
		var env Envelope[json.RawMessage]
		if err := json.Unmarshal(body, &env); err == nil && !env.Success {
			return nil, Error{Method: http.MethodPost, Path: path, Code: int32(resp.StatusCode), Message: env.failureMessage(fallback), Errors: env.Errors}
		}
	}
	return body, nil
}

func encodeQuery(parts ...any) (url.Values, error) {
	values := url.Values{}
	for _, part := range parts {
		v, err := query.Values(part)
		if err != nil {
			return nil, fmt.Errorf("encode query: %w", err)
		}
		for key, vs := range v {
			for _, s := range vs {
				values.Add(key, s)
			}
		}
	}
	return values, nil
}

func fallbackOrGeneric(fallback string) string {
	if fallback == "" {
		return genericFallback
	}
	return fallback
}

func partialText(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
