// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/geodataset/pkg/types"
)

func testDispatcher(ts *httptest.Server, interval time.Duration) *Dispatcher {
	cfg := types.ClientConfig{
		BaseURL:     ts.URL,
		Tool:        "geodataset-test",
		MinInterval: interval,
		Timeout:     5 * time.Second,
	}
	return NewDispatcher(cfg, ts.Client(), nil)
}

func TestGetReturnsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		assert.Equal(t, "gds", r.URL.Query().Get("db"))
		w.Write([]byte("<ok/>"))
	}))
	defer ts.Close()

	d := testDispatcher(ts, -1)
	body, err := d.Get(context.Background(), "esearch.fcgi", url.Values{"db": {"gds"}})
	require.NoError(t, err)
	assert.Equal(t, "<ok/>", string(body))
}

func TestGetStampsIdentity(t *testing.T) {
	var got url.Values
	var agent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		agent = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	cfg := types.ClientConfig{
		BaseURL:     ts.URL,
		Tool:        "mytool",
		Email:       "me@example.org",
		APIKey:      "secret",
		MinInterval: -1,
	}
	d := NewDispatcher(cfg, ts.Client(), nil)
	_, err := d.Get(context.Background(), "efetch.fcgi", nil)
	require.NoError(t, err)

	assert.Equal(t, "mytool", got.Get("tool"))
	assert.Equal(t, "me@example.org", got.Get("email"))
	assert.Equal(t, "secret", got.Get("api_key"))
	assert.Equal(t, "mytool/1.0 (email: me@example.org)", agent)
}

func TestGetOmitsUnsetCredentials(t *testing.T) {
	var got url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
	}))
	defer ts.Close()

	_, err := testDispatcher(ts, -1).Get(context.Background(), "efetch.fcgi", nil)
	require.NoError(t, err)
	assert.False(t, got.Has("email"))
	assert.False(t, got.Has("api_key"))
}

func TestGetNon2xxIsUpstreamError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer ts.Close()

	cfg := types.ClientConfig{BaseURL: ts.URL, APIKey: "secret", MinInterval: -1}
	_, err := NewDispatcher(cfg, ts.Client(), nil).Get(context.Background(), "esearch.fcgi", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUpstream)

	var ue *types.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, "slow down", ue.Body)
	assert.NotContains(t, ue.URL, "secret")
	// No retries.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := ts.Client()
	base := ts.URL
	ts.Close()

	cfg := types.ClientConfig{BaseURL: base, MinInterval: -1, Timeout: time.Second}
	_, err := NewDispatcher(cfg, client, nil).Get(context.Background(), "esearch.fcgi", nil)
	require.Error(t, err)

	var ue *types.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 0, ue.StatusCode)
	assert.ErrorIs(t, err, types.ErrUpstream)
}

func TestGetTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	cfg := types.ClientConfig{BaseURL: ts.URL, MinInterval: -1, Timeout: 50 * time.Millisecond}
	_, err := NewDispatcher(cfg, ts.Client(), nil).Get(context.Background(), "esearch.fcgi", nil)
	assert.ErrorIs(t, err, types.ErrUpstream)
}

func TestGetSpacesConsecutiveRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer ts.Close()

	const interval = 150 * time.Millisecond
	d := testDispatcher(ts, interval)
	ctx := context.Background()

	start := time.Now()
	_, err := d.Get(ctx, "esearch.fcgi", nil)
	require.NoError(t, err)
	_, err = d.Get(ctx, "esearch.fcgi", nil)
	require.NoError(t, err)
	elapsed := time.Since(start)

	// Allow for float rounding inside the limiter.
	assert.GreaterOrEqual(t, elapsed, interval-time.Millisecond)
}

func TestGetDefaultInterval(t *testing.T) {
	d := NewDispatcher(types.ClientConfig{}, nil, nil)
	assert.Equal(t, types.DefaultMinInterval, d.MinInterval())
}

func TestGetContextCancelledWhileWaiting(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer ts.Close()

	d := testDispatcher(ts, time.Hour)
	_, err := d.Get(context.Background(), "esearch.fcgi", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = d.Get(ctx, "esearch.fcgi", nil)
	assert.Error(t, err)
}
