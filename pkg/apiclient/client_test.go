package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (m *memTokens) Token(context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memTokens) ClearToken(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Tokens: &memTokens{token: "abc"}})

	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/candidates", nil, &out))
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, true, out["ok"])
}

func TestDoWithoutTokenSendsNoAuthorization(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Values("Authorization")
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Tokens: &memTokens{}})
	require.NoError(t, c.Get(context.Background(), "/x", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestDoUnauthorizedClearsTokenAndNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"expired"}`))
	}))
	defer srv.Close()

	tokens := &memTokens{token: "stale"}
	notified := 0
	c := New(Config{
		BaseURL:        srv.URL,
		Tokens:         tokens,
		OnUnauthorized: func() { notified++ },
	})

	err := c.Get(context.Background(), "/auth/me", nil, nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, "", tokens.Token(context.Background()))
	assert.Equal(t, 1, tokens.cleared)
	assert.Equal(t, 1, notified)
}

func TestDoNon2xxCarriesStatusAndBody(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json message", http.StatusConflict, `{"message":"Email already registered"}`, "Email already registered"},
		{"json error", http.StatusBadRequest, `{"error":"bad input"}`, "bad input"},
		{"plain text", http.StatusInternalServerError, "boom", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(Config{BaseURL: srv.URL})
			err := c.Post(context.Background(), "/candidates", map[string]string{"name": "x"}, nil)
			require.Error(t, err)
			assert.False(t, IsUnauthorized(err))
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Equal(t, tt.body, Body(err))
			assert.Equal(t, tt.message, Message(err))
		})
	}
}

func TestDoEmptyBodyDecodesAsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	var out map[string]any
	require.NoError(t, c.Delete(context.Background(), "/candidates/1", &out))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDoInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	var out map[string]any
	err := c.Get(context.Background(), "/x", nil, &out)
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}

func TestPostFormAndQuery(t *testing.T) {
	var (
		gotType  string
		gotUser  string
		gotQuery url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query()
		_ = r.ParseForm()
		gotUser = r.PostForm.Get("username")
		_, _ = w.Write([]byte(`{"access_token":"t"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/"})
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.Do(context.Background(), "auth/login", RequestOptions{
		Method: http.MethodPost,
		Query:  url.Values{"next": {"me"}},
		Form:   url.Values{"username": {"admin"}, "password": {"pw"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "me", gotQuery.Get("next"))
	assert.Equal(t, "t", out.AccessToken)
}

func TestIdempotencyKeyOnlyOnUnsafeMethods(t *testing.T) {
	keys := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys[r.Method] = r.Header.Get(IdempotencyHeader)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	ctx := WithIdempotencyKey(context.Background(), "k-1")

	require.NoError(t, c.Get(ctx, "/x", nil, nil))
	require.NoError(t, c.Post(ctx, "/x", map[string]int{"a": 1}, nil))
	require.NoError(t, c.Patch(ctx, "/x", map[string]int{"a": 1}, nil))

	assert.Equal(t, "", keys[http.MethodGet])
	assert.Equal(t, "k-1", keys[http.MethodPost])
	assert.Equal(t, "k-1", keys[http.MethodPatch])
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {}\n\n"))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	body, err := c.Stream(context.Background(), "/events/stream", nil)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "data: {}\n\n", string(data))
}

func TestStreamUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &memTokens{token: "x"}
	c := New(Config{BaseURL: srv.URL, Tokens: tokens})
	_, err := c.Stream(context.Background(), "/events/stream", nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, tokens.cleared)
}
