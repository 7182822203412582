package goatflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// requestSpec describes one HTTP call: method, path, query, optional JSON
// body, optional header overrides. Built and discarded per call.
type requestSpec struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers http.Header
}

// response is the raw outcome of one dispatch.
type response struct {
	status int
	header http.Header
	body   []byte
}

// transport is the authenticated request pipeline shared by every resource
// client. It owns auth attachment, dispatch, the single 401 refresh-and-retry
// cycle, and status-to-error mapping. It performs no other retries: backoff
// policy belongs to the caller.
type transport struct {
	baseURL    string
	httpClient *http.Client
	auth       AuthStrategy
	userAgent  string
	logger     zerolog.Logger
}

// do executes one logical call and returns the raw 2xx body.
func (t *transport) do(ctx context.Context, spec requestSpec) ([]byte, error) {
	// Pre-emptive refresh: a credential about to expire is renewed before
	// the request is even built, not after the server bounces it.
	if t.auth.IsExpired() {
		if err := t.auth.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := t.dispatch(ctx, spec)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized {
		// One forced refresh, one retry. A server that rejects the retried
		// call too gets surfaced instead of looped against.
		t.logger.Debug().Str("path", spec.path).Msg("Got 401, refreshing credentials and retrying once")
		if err := t.auth.Refresh(ctx); err != nil {
			return nil, err
		}
		resp, err = t.dispatch(ctx, spec)
		if err != nil {
			return nil, err
		}
		if resp.status == http.StatusUnauthorized {
			return nil, errorFromResponse(resp.status, resp.header, resp.body)
		}
	}

	if resp.status < 200 || resp.status > 299 {
		return nil, errorFromResponse(resp.status, resp.header, resp.body)
	}

	return resp.body, nil
}

// dispatch builds and sends a single HTTP request. The body is re-serialized
// on every dispatch so a 401 retry never reuses a drained reader.
func (t *transport) dispatch(ctx context.Context, spec requestSpec) (*response, error) {
	var reader io.Reader
	if spec.body != nil {
		payload, err := json.Marshal(spec.body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("encoding request body: %v", err), cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, t.baseURL+spec.path, reader)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("building request: %v", err), cause: err}
	}
	if len(spec.query) > 0 {
		req.URL.RawQuery = spec.query.Encode()
	}

	req.Header.Set("Accept", "application/json")
	if spec.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	for key, values := range spec.headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	t.auth.Apply(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportError(err)
	}

	t.logger.Debug().
		Str("method", spec.method).
		Str("path", spec.path).
		Int("status", resp.StatusCode).
		Msg("GoatFlow API request")

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// wrapTransportError classifies a failure below the HTTP layer. Timeouts and
// connection problems are distinct outcomes; neither is retried here.
func wrapTransportError(err error) *Error {
	kind := KindNetwork
	message := "request failed"

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
		message = "request deadline exceeded"
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		message = "request canceled"
	}

	return &Error{Kind: kind, Message: fmt.Sprintf("%s: %v", message, err), cause: err}
}
