package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateReturnsTrimmedGreeting(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/prompt/say%20hello", r.URL.EscapedPath())
		_, _ = w.Write([]byte("  Good morning! ☀️\n"))
	}))
	defer upstream.Close()

	service, err := NewGreetingService(upstream.URL, upstream.Client())
	require.NoError(t, err)

	greeting, err := service.Generate(context.Background(), "say hello")
	require.NoError(t, err)
	require.Equal(t, "Good morning! ☀️", greeting)
}

func TestGenerateUsesDefaultPromptWhenEmpty(t *testing.T) {
	var requested string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write([]byte("hi"))
	}))
	defer upstream.Close()

	service, err := NewGreetingService(upstream.URL, upstream.Client())
	require.NoError(t, err)

	_, err = service.Generate(context.Background(), "   ")
	require.NoError(t, err)
	require.Contains(t, requested, "greeting")
}

func TestGenerateRejectsUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	service, err := NewGreetingService(upstream.URL, upstream.Client())
	require.NoError(t, err)

	_, err = service.Generate(context.Background(), "hello")
	require.ErrorContains(t, err, "status 502")
}

func TestGenerateRejectsEmptyBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("   "))
	}))
	defer upstream.Close()

	service, err := NewGreetingService(upstream.URL, upstream.Client())
	require.NoError(t, err)

	_, err = service.Generate(context.Background(), "hello")
	require.Error(t, err)
}
