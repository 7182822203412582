package goatflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline401RetriedExactlyOnce(t *testing.T) {
	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errorEnvelope{Error: "unauthorized", Message: "nope", Code: 401})
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "bad-key")
	require.NoError(t, err)

	_, err = client.Users.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, requests, "one initial attempt plus exactly one retry")
}

func TestPipeline401RecoveredByForcedRefresh(t *testing.T) {
	// The token claims an hour of validity but the server has already
	// invalidated it: the 401 must force a refresh and a single retry the
	// caller never sees.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case refreshPath:
			writeRefreshResponse(w, "renewed-token")
		case "/api/users/me":
			if r.Header.Get("Authorization") != "Bearer renewed-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write(marshalUser())
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewWithToken(server.URL, "invalidated-token", "refresh-token", time.Now().Add(time.Hour))
	require.NoError(t, err)

	user, err := client.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "agent@example.test", user.Email)
}

func TestPipelinePreemptiveRefreshBeforeDispatch(t *testing.T) {
	var order []string
	var sawUnauthorized bool
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case refreshPath:
			writeRefreshResponse(w, "renewed-token")
		case "/api/users/me":
			if r.Header.Get("Authorization") != "Bearer renewed-token" {
				mu.Lock()
				sawUnauthorized = true
				mu.Unlock()
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write(marshalUser())
		}
	}))
	defer server.Close()

	// Expires in 10s: inside the 30s margin, so the refresh must happen
	// before the resource request is dispatched.
	client, err := NewWithToken(server.URL, "nearly-expired", "refresh-token", time.Now().Add(10*time.Second))
	require.NoError(t, err)

	_, err = client.Users.Me(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(order), 2)
	assert.Equal(t, refreshPath, order[0], "refresh must precede the resource call")
	assert.False(t, sawUnauthorized, "the stale token must never reach the server")
}

func TestPipelineRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(errorEnvelope{Error: "rate_limited", Message: "slow down", Code: 429})
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Users.Me(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsRateLimit(err))

	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 5, ge.RetryAfter)
	assert.Equal(t, "slow down", ge.Message)
	assert.Less(t, elapsed, time.Second, "the pipeline must not sleep on a rate limit")
}

func TestPipelineNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	_, err = client.Users.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err), "got %v", err)
}

func TestPipelineTimeout(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(done)

	client, err := NewWithAPIKey(server.URL, "key", WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Users.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
}

func TestPipelineErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"forbidden", http.StatusForbidden, IsForbidden},
		{"not found", http.StatusNotFound, IsNotFound},
		{"conflict is generic", http.StatusConflict, func(err error) bool { return KindOf(err) == KindAPI }},
		{"server error is generic", http.StatusInternalServerError, func(err error) bool { return KindOf(err) == KindAPI }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(errorEnvelope{Error: tt.name, Message: tt.name, Code: tt.status})
			}))
			defer server.Close()

			client, err := NewWithAPIKey(server.URL, "key")
			require.NoError(t, err)

			_, err = client.Users.Me(context.Background())
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)

			var ge *Error
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.status, ge.StatusCode)
		})
	}
}

func TestPipelineMalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1, "email":`)) // truncated
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "key")
	require.NoError(t, err)

	_, err = client.Users.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPipelineHeadersAndAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "goatflow-go/"+Version, r.Header.Get("User-Agent"))
		if r.Method == http.MethodPost {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		}
		w.Write(marshalUser())
	}))
	defer server.Close()

	client, err := NewWithAPIKey(server.URL, "test-key")
	require.NoError(t, err)

	_, err = client.Users.Me(context.Background())
	require.NoError(t, err)
}
