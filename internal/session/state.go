package session

import (
	"errors"

	"github.com/neexbeast/skycast/internal/weather"
)

var (
	// ErrClosed is returned by calls made after Run has returned.
	ErrClosed = errors.New("session closed")
	// ErrNotStarted is returned by calls made before Run has started.
	ErrNotStarted = errors.New("session not started")
	// ErrNotEditing is returned by RemovePlace outside edit mode.
	ErrNotEditing = errors.New("saved places are not being edited")
	// ErrNoSelection is returned when an operation needs a selected place.
	ErrNoSelection = errors.New("no place selected")
	// ErrNotSaved is returned when removing a place that is not in the list.
	ErrNotSaved = errors.New("place is not saved")
)

// StateKind is the orchestrator's current activity.
type StateKind int

const (
	Idle StateKind = iota
	LoadingSearchResults
	FetchingWeatherForPlace
	FetchingAllSavedWeather
	EditingSavedPlaces
)

func (k StateKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case LoadingSearchResults:
		return "loading_search_results"
	case FetchingWeatherForPlace:
		return "fetching_weather_for_place"
	case FetchingAllSavedWeather:
		return "fetching_all_saved_weather"
	case EditingSavedPlaces:
		return "editing_saved_places"
	default:
		return "unknown"
	}
}

// State pairs a StateKind with the place being fetched, when there is one.
type State struct {
	Kind  StateKind
	Place *weather.Place
}

func (s State) fetching(p weather.Place) bool {
	return s.Kind == FetchingWeatherForPlace && s.Place != nil && s.Place.Equal(p)
}

// Presentation describes how the selected place's weather is shown.
type Presentation int

const (
	PresentNone Presentation = iota
	// PresentPrimary is the non-dismissable detail view.
	PresentPrimary
	// PresentOverlay is the dismissable add/cancel view over search results.
	PresentOverlay
)

func (p Presentation) String() string {
	switch p {
	case PresentPrimary:
		return "primary"
	case PresentOverlay:
		return "overlay"
	default:
		return "none"
	}
}

// SavedPlace is a saved place with the weather fetched for it this session.
type SavedPlace struct {
	Place   weather.Place
	Weather *weather.LocalWeather
}

// Toast is a transient notification.
type Toast struct {
	ID      uint64
	Message string
}

// View is a point-in-time copy of the session. LocalWeather values are
// shared and must be treated as read-only.
type View struct {
	State           State
	SearchText      string
	SearchResults   []weather.Place
	Saved           []SavedPlace
	Selected        *weather.Place
	SelectedWeather *weather.LocalWeather
	Presentation    Presentation
	Toast           *Toast
	CanEditPlaces   bool
	SelectedIsSaved bool
	StoreError      error
}
