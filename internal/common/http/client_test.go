// internal/common/http/client_test.go
package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config.json":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`{"business":{"name":"Remote"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(2 * time.Second)

	body, err := c.GetBytes(context.Background(), srv.URL+"/config.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"business":{"name":"Remote"}}`, string(body))

	_, err = c.GetBytes(context.Background(), srv.URL+"/missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestClient_GetBytes_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(time.Second).GetBytes(ctx, srv.URL)
	assert.Error(t, err)
}

func TestClient_GetBytes_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte(" "), maxBodyBytes+1))
	}))
	defer srv.Close()

	_, err := NewClient(5*time.Second).GetBytes(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config exceeds 10 MiB")
}

func TestClient_GetBytes_AtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte(" "), maxBodyBytes))
	}))
	defer srv.Close()

	body, err := NewClient(5*time.Second).GetBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, maxBodyBytes)
}
