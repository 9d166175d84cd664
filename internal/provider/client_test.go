package provider_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/skycast/internal/provider"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "weather", "testdata", name))
	require.NoError(t, err)
	return b
}

func staticHandler(status int, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

func TestSearch_Success(t *testing.T) {
	var gotPath, gotRawQuery string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawQuery = r.URL.RawQuery
		gotQuery = r.URL.Query()
		staticHandler(http.StatusOK, fixture(t, "search.json"))(w, r)
	}))
	defer srv.Close()

	c := provider.NewClientWithURL(srv.URL, "test-key")
	places, err := c.Search(context.Background(), "New York")
	require.NoError(t, err)
	assert.Len(t, places, 4)

	assert.Equal(t, "/search.ashx", gotPath)
	assert.Contains(t, gotRawQuery, "q=New+York")
	assert.Equal(t, []string{"test-key"}, gotQuery["key"])
	assert.Equal(t, []string{"json"}, gotQuery["format"])
	assert.NotContains(t, gotQuery, "num_of_days")
}

func TestSearch_NoMatch(t *testing.T) {
	srv := httptest.NewServer(staticHandler(http.StatusOK, fixture(t, "search_empty.json")))
	defer srv.Close()

	places, err := provider.NewClientWithURL(srv.URL, "k").Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestFetchForecast_Success(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		staticHandler(http.StatusOK, fixture(t, "weather.json"))(w, r)
	}))
	defer srv.Close()

	c := provider.NewClientWithURL(srv.URL, "test-key")
	lw, err := c.FetchForecast(context.Background(), "Athens, Attica, Greece")
	require.NoError(t, err)
	assert.Len(t, lw.Current, 1)
	assert.Len(t, lw.Days, 5)

	assert.Equal(t, "/weather.ashx", gotPath)
	want := map[string]string{
		"key":             "test-key",
		"q":               "Athens, Attica, Greece",
		"format":          "json",
		"num_of_days":     "5",
		"fx":              "yes",
		"cc":              "yes",
		"mca":             "no",
		"includelocation": "no",
		"show_comments":   "no",
		"tp":              "1",
	}
	for k, v := range want {
		assert.Equal(t, []string{v}, gotQuery[k], k)
	}
}

func TestFetchForecast_NotFound(t *testing.T) {
	srv := httptest.NewServer(staticHandler(http.StatusNotFound, []byte(`not found`)))
	defer srv.Close()

	_, err := provider.NewClientWithURL(srv.URL, "k").FetchForecast(context.Background(), "Athens")
	require.Error(t, err)

	code, ok := provider.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "404 - error code from API", err.Error())
}

func TestFetchForecast_BadBody(t *testing.T) {
	srv := httptest.NewServer(staticHandler(http.StatusOK, []byte(`{"data": {"current_condition": [{"temp_C": "16}`)))
	defer srv.Close()

	_, err := provider.NewClientWithURL(srv.URL, "k").FetchForecast(context.Background(), "Athens")
	assert.ErrorIs(t, err, provider.ErrDecoding)
	_, isStatus := provider.StatusCode(err)
	assert.False(t, isStatus)
}

func TestSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(staticHandler(http.StatusInternalServerError, nil))
	defer srv.Close()

	_, err := provider.NewClientWithURL(srv.URL, "k").Search(context.Background(), "Athens")
	code, ok := provider.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestSearch_TransportError(t *testing.T) {
	// Grab a free port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = provider.NewClientWithURL("http://"+addr, "k").Search(context.Background(), "Athens")
	require.Error(t, err)

	code, ok := provider.StatusCode(err)
	require.True(t, ok)
	assert.NotEqual(t, 0, code)
}

func TestSearch_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(staticHandler(http.StatusOK, fixture(t, "search.json")))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.NewClientWithURL(srv.URL, "k").Search(ctx, "Athens")
	code, ok := provider.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, provider.TransportFailure, code)
}

func TestSearch_BadBaseURL(t *testing.T) {
	_, err := provider.NewClientWithURL("://bad", "k").Search(context.Background(), "Athens")
	assert.ErrorIs(t, err, provider.ErrUnknown)
}
