package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsBodyAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	res, err := New(Options{}).Get(context.Background(), srv.URL+"/search", false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.Status)
	assert.Equal(t, `{"results":[]}`, string(res.Body))
}

func TestGetRedirectPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`{"moved":true}`))
	}))
	defer srv.Close()

	c := New(Options{})

	res, err := c.Get(context.Background(), srv.URL+"/old", true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, `{"moved":true}`, string(res.Body))

	res, err = c.Get(context.Background(), srv.URL+"/old", false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, res.Status)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestGetTransportError(t *testing.T) {
	_, err := New(Options{Transport: failingTransport{}}).Get(context.Background(), "https://backend.invalid/search", false)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsTransportOnOtherErrors(t *testing.T) {
	assert.False(t, IsTransport(errors.New("boom")))
	assert.False(t, IsTransport(nil))
}
