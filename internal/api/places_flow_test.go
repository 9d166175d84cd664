package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/skycast/internal/api"
	"github.com/neexbeast/skycast/internal/session"
	"github.com/neexbeast/skycast/internal/weather"
)

type countingRemote struct {
	mu        sync.Mutex
	forecasts int
	lw        *weather.LocalWeather
}

func (c *countingRemote) Search(_ context.Context, _ string) ([]weather.Place, error) {
	return []weather.Place{}, nil
}

func (c *countingRemote) FetchForecast(_ context.Context, _ string) (*weather.LocalWeather, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forecasts++
	return c.lw, nil
}

func (c *countingRemote) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forecasts
}

type memStore struct {
	mu     sync.Mutex
	places []weather.Place
	saves  int
}

func (m *memStore) Load(_ context.Context) ([]weather.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]weather.Place(nil), m.places...), nil
}

func (m *memStore) Save(_ context.Context, places []weather.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.places = append([]weather.Place(nil), places...)
	m.saves++
	return nil
}

func (m *memStore) snapshot() ([]weather.Place, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]weather.Place(nil), m.places...), m.saves
}

func startSession(t *testing.T, remote session.Forecaster, store session.Store) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(remote, store, log, session.Config{Debounce: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	<-sess.Ready()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return api.NewRouter(api.NewHandlers(sess, log), testToken, &mockPinger{}, log)
}

func savedEntries(t *testing.T, router http.Handler) []any {
	saved, _ := decodeMap(t, do(t, router, http.MethodGet, "/api/v1/session", ""))["saved"].([]any)
	return saved
}

func TestSavedPlaceWithEmptyRegion_RoundTrips(t *testing.T) {
	places, err := weather.DecodePlaces([]byte(`[{
		"areaName": [{"value": "Kato Achaia"}],
		"region": [{"value": ""}],
		"country": [{"value": "Greece"}]
	}]`))
	require.NoError(t, err)
	require.NotNil(t, places[0].Region)

	remote := &countingRemote{lw: sampleWeather(t)}
	store := &memStore{places: places}
	router := startSession(t, remote, store)

	// Startup refresh attaches weather to the saved place.
	require.Eventually(t, func() bool {
		saved := savedEntries(t, router)
		return len(saved) == 1 && saved[0].(map[string]any)["temperature"] == "16°"
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, 1, remote.calls())

	got := decodeMap(t, do(t, router, http.MethodGet, "/api/v1/session", ""))
	entry := got["saved"].([]any)[0].(map[string]any)
	region, ok := entry["region"]
	require.True(t, ok, "empty region must stay on the wire")
	assert.Equal(t, "", region)

	body := `{"name":"Kato Achaia","region":"","country":"Greece"}`

	// Selecting the saved place reuses its weather.
	w := do(t, router, http.MethodPost, "/api/v1/selection", body)
	require.Equal(t, http.StatusAccepted, w.Code)
	got = decodeMap(t, do(t, router, http.MethodGet, "/api/v1/session", ""))
	assert.Equal(t, true, got["selected_is_saved"])
	assert.Equal(t, "primary", got["presentation"])
	assert.Equal(t, 1, remote.calls())

	require.Equal(t, http.StatusNoContent, do(t, router, http.MethodPost, "/api/v1/places/edit", "").Code)
	require.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/v1/places", body).Code)
	require.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/v1/places/edit", "").Code)

	require.Eventually(t, func() bool {
		saved, n := store.snapshot()
		return n == 1 && len(saved) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSavedPlaceWithoutRegion_IsNotTheEmptyRegionPlace(t *testing.T) {
	places, err := weather.DecodePlaces([]byte(`[{
		"areaName": [{"value": "Kato Achaia"}],
		"region": [{"value": ""}],
		"country": [{"value": "Greece"}]
	}]`))
	require.NoError(t, err)

	router := startSession(t, &countingRemote{lw: sampleWeather(t)}, &memStore{places: places})
	require.Eventually(t, func() bool {
		return len(savedEntries(t, router)) == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.Equal(t, http.StatusNoContent, do(t, router, http.MethodPost, "/api/v1/places/edit", "").Code)
	w := do(t, router, http.MethodDelete, "/api/v1/places", `{"name":"Kato Achaia","country":"Greece"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
