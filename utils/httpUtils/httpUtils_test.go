package httpUtils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRequestDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "lensbot", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"name":"cats"}`))
	}))
	defer server.Close()

	var result struct {
		Name string `json:"name"`
	}
	err := MakeRequest(context.Background(), RequestOptions{
		URL:      server.URL,
		Headers:  map[string]string{"User-Agent": "lensbot"},
		Response: &result,
	})
	require.NoError(t, err)
	require.Equal(t, "cats", result.Name)
}

func TestMakeRequestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := MakeRequest(context.Background(), RequestOptions{URL: server.URL, Response: &struct{}{}})
	var httpErr *HttpError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestMakeRequestMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":`))
	}))
	defer server.Close()

	var result map[string]any
	err := MakeRequest(context.Background(), RequestOptions{URL: server.URL, Response: &result})
	require.ErrorIs(t, err, ErrMalformedResponse)
}
