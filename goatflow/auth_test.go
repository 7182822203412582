package goatflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalUser() []byte {
	now := time.Now().UTC().Truncate(time.Second)
	data, _ := json.Marshal(User{
		ID:        1,
		Email:     "agent@example.test",
		FirstName: "Greta",
		LastName:  "Goat",
		Login:     "ggoat",
		Role:      "agent",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return data
}

func writeRefreshResponse(w http.ResponseWriter, token string) {
	json.NewEncoder(w).Encode(refreshResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

func TestAPIKeyStrategy(t *testing.T) {
	s := &apiKeyStrategy{key: "secret"}

	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	s.Apply(req)
	assert.Equal(t, "secret", req.Header.Get("X-API-Key"))
	assert.False(t, s.IsExpired())
	assert.NoError(t, s.Refresh(context.Background()))
}

func TestBearerStrategyExpiry(t *testing.T) {
	o := defaultOptions()
	o.httpClient = http.DefaultClient

	t.Run("fresh token", func(t *testing.T) {
		s := newBearerStrategy("http://gf", refreshPath, "tok", "ref", time.Now().Add(time.Hour), o)
		assert.False(t, s.IsExpired())
	})

	t.Run("expired token", func(t *testing.T) {
		s := newBearerStrategy("http://gf", refreshPath, "tok", "ref", time.Now().Add(-time.Minute), o)
		assert.True(t, s.IsExpired())
	})

	t.Run("inside safety margin", func(t *testing.T) {
		// 10s left with a 30s margin: must count as expired so the token
		// is renewed before dispatch, not after a 401.
		s := newBearerStrategy("http://gf", refreshPath, "tok", "ref", time.Now().Add(10*time.Second), o)
		assert.True(t, s.IsExpired())
	})

	t.Run("no expiry known", func(t *testing.T) {
		s := newBearerStrategy("http://gf", refreshPath, "opaque-token", "ref", time.Time{}, o)
		assert.False(t, s.IsExpired())
	})
}

func TestBearerStrategyJWTExpiryFallback(t *testing.T) {
	o := defaultOptions()
	o.httpClient = http.DefaultClient

	exp := time.Now().Add(10 * time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	s := newBearerStrategy("http://gf", refreshPath, token, "ref", time.Time{}, o)
	assert.WithinDuration(t, exp, s.expiresAt, time.Second)
	assert.True(t, s.IsExpired(), "10s left is inside the default margin")
}

func TestRefreshSingleFlight(t *testing.T) {
	var refreshCalls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case refreshPath:
			refreshCalls.Add(1)
			time.Sleep(100 * time.Millisecond) // keep the flight open so callers pile up
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

	client, err := NewWithToken(server.URL, "stale-token", "refresh-token", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	const callers = 20
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Users.Me(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, int64(1), refreshCalls.Load(), "exactly one refresh must reach the server")
}

func TestRefreshRejectedSharedByWaiters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			time.Sleep(50 * time.Millisecond)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(errorEnvelope{Error: "unauthorized", Message: "refresh token revoked", Code: 401})
			return
		}
		t.Errorf("unexpected request to %s while credential is unrefreshable", r.URL.Path)
	}))
	defer server.Close()

	client, err := NewWithToken(server.URL, "stale-token", "revoked", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Users.Me(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "caller %d", i)
		assert.True(t, IsUnauthorized(err), "caller %d got %v", i, err)
	}
}

func TestRefreshNotCanceledByAbandonedWaiter(t *testing.T) {
	var refreshCalls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case refreshPath:
			refreshCalls.Add(1)
			time.Sleep(200 * time.Millisecond)
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

	client, err := NewWithToken(server.URL, "stale-token", "refresh-token", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var impatientErr, patientErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, impatientErr = client.Users.Me(ctx)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond) // join the refresh the first caller started
		_, patientErr = client.Users.Me(context.Background())
	}()
	wg.Wait()

	require.Error(t, impatientErr)
	assert.True(t, errors.Is(impatientErr, context.DeadlineExceeded), "got %v", impatientErr)
	assert.NoError(t, patientErr, "abandoning one caller must not cancel the shared refresh")
	assert.Equal(t, int64(1), refreshCalls.Load())
}

func TestRefreshTokenRotation(t *testing.T) {
	var gotRefreshTokens []string
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != refreshPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		gotRefreshTokens = append(gotRefreshTokens, payload["refresh_token"])
		mu.Unlock()

		json.NewEncoder(w).Encode(refreshResponse{
			Token:        "tok-2",
			ExpiresAt:    time.Now().Add(-time.Minute), // still stale, forces a second refresh
			RefreshToken: "ref-2",
		})
	}))
	defer server.Close()

	o := defaultOptions()
	o.httpClient = server.Client()
	s := newBearerStrategy(server.URL, refreshPath, "tok-1", "ref-1", time.Now().Add(-time.Minute), o)

	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ref-1", "ref-2"}, gotRefreshTokens, "rotated refresh token must be used on the next exchange")
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	o := defaultOptions()
	o.httpClient = http.DefaultClient

	s := newBearerStrategy("http://gf", refreshPath, "tok", "", time.Now().Add(-time.Minute), o)
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}
