package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) AccessToken() string { return string(s) }

func TestClient_Do(t *testing.T) {
	t.Run("attaches bearer token and request id", func(t *testing.T) {
		var gotAuth, gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotRequestID = r.Header.Get("X-Request-Id")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, staticTokens("tok-1"))
		var out map[string]any
		require.NoError(t, c.Get(context.Background(), "/me/", &out))

		assert.Equal(t, "Bearer tok-1", gotAuth)
		assert.NotEmpty(t, gotRequestID)
	})

	t.Run("no authorization header without a token", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, staticTokens(""))
		require.NoError(t, c.Get(context.Background(), "/charge-points/", nil))
		assert.Empty(t, gotAuth)
	})

	t.Run("posts a JSON body", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		err := c.Post(context.Background(), "/auth/login/", map[string]string{"username": "alice"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", got["username"])
	})

	t.Run("204 is a successful empty result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		var out map[string]any
		require.NoError(t, c.Post(context.Background(), "/auth/logout/", nil, &out))
		assert.Nil(t, out)
	})

	t.Run("adds a leading slash when missing", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		require.NoError(t, c.Get(context.Background(), "charge-points/", nil))
		assert.Equal(t, "/charge-points/", gotPath)
	})
}

func TestStatusError(t *testing.T) {
	t.Run("JSON detail becomes the error detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"token expired"}`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		err := c.Get(context.Background(), "/me/", nil)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusUnauthorized, se.Status)
		assert.Equal(t, "token expired", se.Detail)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("non-JSON body is used as raw text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream exploded"))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		err := c.Get(context.Background(), "/me/", nil)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "upstream exploded", se.Detail)
		assert.False(t, IsUnauthorized(err))
	})

	t.Run("collects per-field validation messages", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"username":["already taken"],"email":["invalid address","required"]}`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		err := c.Post(context.Background(), "/auth/signup/", map[string]string{}, nil)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, []string{"already taken"}, se.Fields["username"])
		assert.Equal(t, []string{"invalid address", "required"}, se.Fields["email"])
		assert.Equal(t, "email: invalid address", se.FirstFieldError(), "fields visited in name order")
	})

	t.Run("empty body falls back to the status line", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		err := c.Get(context.Background(), "/me/", nil)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.NotEmpty(t, se.Detail)
		assert.True(t, IsUnauthorized(err))
	})
}

func TestTokenResponse_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		resp     TokenResponse
		expected string
		ok       bool
	}{
		{"access field", TokenResponse{Access: "a"}, "a", true},
		{"token field", TokenResponse{Token: "b"}, "b", true},
		{"accessToken field", TokenResponse{AccessToken: "c"}, "c", true},
		{"access wins over aliases", TokenResponse{Access: "a", Token: "b", AccessToken: "c"}, "a", true},
		{"no token at all", TokenResponse{Refresh: "r"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, ok := tt.resp.Normalize()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, pair.Access)
		})
	}

	t.Run("carries refresh and role through", func(t *testing.T) {
		pair, ok := TokenResponse{Access: "a", Refresh: "r", Role: "admin"}.Normalize()
		require.True(t, ok)
		assert.Equal(t, "r", pair.Refresh)
		assert.Equal(t, "admin", pair.Role)
	})
}
