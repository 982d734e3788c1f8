package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersettings/internal/app/settings"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status, code int, message string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = srv.URL
	if cfg.BackoffMin == 0 {
		cfg.BackoffMin = time.Millisecond
		cfg.BackoffMax = 5 * time.Millisecond
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "http", cfg: Config{BaseURL: "http://localhost:8080"}},
		{name: "https with path", cfg: Config{BaseURL: "https://example.com/base/"}},
		{name: "missing scheme", cfg: Config{BaseURL: "localhost:8080"}, wantErr: true},
		{name: "ftp", cfg: Config{BaseURL: "ftp://example.com"}, wantErr: true},
		{name: "negative retries", cfg: Config{BaseURL: "http://localhost", MaxRetries: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_DoDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, settings.PathSettings, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeEnvelope(t, w, http.StatusOK, 0, "Success", settings.UserSettings{Name: "Ada", Email: "ada@example.com"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{Token: "tok"})

	var got settings.UserSettings
	require.NoError(t, c.Do(context.Background(), settings.Request{Method: http.MethodGet, Path: settings.PathSettings}, &got))
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestClient_DoReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusBadRequest, 2101, "Invalid email address.", nil)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	err := c.Do(context.Background(), settings.Request{Method: http.MethodPost, Path: settings.PathUpdate, Body: settings.UserSettings{}}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, 2101, apiErr.Code)
	assert.Equal(t, "Invalid email address.", apiErr.Message)
}

func TestClient_DoNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	err := c.Do(context.Background(), settings.Request{Method: http.MethodPost, Path: settings.PathUpdate}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Zero(t, apiErr.Code)
}

func TestClient_RetriesGetOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeEnvelope(t, w, http.StatusInternalServerError, 5000, "boom", nil)
			return
		}
		writeEnvelope(t, w, http.StatusOK, 0, "Success", settings.UserSettings{Name: "Ada"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{MaxRetries: 2})

	var got settings.UserSettings
	require.NoError(t, c.Do(context.Background(), settings.Request{Method: http.MethodGet, Path: settings.PathSettings}, &got))
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrorsOrWrites(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
	}{
		{name: "get 4xx", method: http.MethodGet, status: http.StatusUnauthorized},
		{name: "post 5xx", method: http.MethodPost, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeEnvelope(t, w, tt.status, 1, "nope", nil)
			}))
			defer srv.Close()

			c := newTestClient(t, srv, Config{MaxRetries: 3})

			err := c.Do(context.Background(), settings.Request{Method: tt.method, Path: settings.PathSettings}, nil)
			assert.Error(t, err)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClient_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body settings.UserSettings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body.Password = ""
		writeEnvelope(t, w, http.StatusOK, 0, "Success", body)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	var got settings.UserSettings
	err := c.Do(context.Background(), settings.Request{
		Method: http.MethodPost,
		Path:   settings.PathUpdate,
		Body:   settings.UserSettings{Name: "Grace", Password: "secret"},
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
}

func TestClient_SendsMultipartAvatar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(settings.AvatarFormField)
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)

		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)

		writeEnvelope(t, w, http.StatusOK, 0, "Success", settings.AvatarResponse{AvatarURL: "https://cdn/a.png"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	var got settings.AvatarResponse
	err := c.Do(context.Background(), settings.Request{
		Method: http.MethodPost,
		Path:   settings.PathAvatar,
		File:   &settings.AvatarFile{Name: "me.png", ContentType: "image/png", Data: []byte("png-bytes")},
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", got.AvatarURL)
}

func TestClient_LoginAdoptsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathLogin:
			var creds Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "ada@example.com", creds.Email)
			writeEnvelope(t, w, http.StatusOK, 0, "Success", Session{Token: "fresh", Settings: settings.UserSettings{Email: creds.Email}})
		case settings.PathSettings:
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			writeEnvelope(t, w, http.StatusOK, 0, "Success", settings.UserSettings{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	session, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", session.Token)
	assert.Equal(t, "fresh", c.Token())

	require.NoError(t, c.Do(context.Background(), settings.Request{Method: http.MethodGet, Path: settings.PathSettings}, nil))
}

func TestClient_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, 0, "Success", nil)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Do(ctx, settings.Request{Method: http.MethodGet, Path: settings.PathSettings}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_WatchURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://example.com/base"})
	require.NoError(t, err)

	assert.Equal(t, "wss://example.com/base/ws/settings?token=a+b", c.watchURL("a b"))

	err = c.Watch(context.Background(), func(settings.UserSettings) {})
	assert.ErrorIs(t, err, ErrNoToken)
}
