package api

import (
	"context"

	"github.com/neexbeast/skycast/internal/session"
	"github.com/neexbeast/skycast/internal/weather"
)

// Session is the subset of *session.Session the handlers drive.
type Session interface {
	Snapshot() (session.View, error)
	SetSearchText(text string) error
	SelectPlace(p weather.Place) error
	DismissWeather() error
	SaveSelectedPlace() error
	EditPlaces() error
	DoneEditingPlaces() error
	RemovePlace(p weather.Place) error
	DismissToast() error
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
